// Package matcher combines a RingBuffer, a shared RegexCache, and a
// PatternSet into the core matching engine described in spec.md §4.2.
package matcher

import (
	"time"

	"github.com/dcosson/goexpect/internal/pattern"
	"github.com/dcosson/goexpect/internal/ringbuf"
)

// Result is the outcome of a successful match: the index of the pattern
// within the set that matched and absolute buffer offsets of the matched
// region, plus any regex capture groups.
type Result struct {
	PatternIndex int
	Start, End   int
	Captures     []string
}

// Len reports the byte length of the matched region.
func (r Result) Len() int { return r.End - r.Start }

// Matcher owns a RingBuffer, a shared RegexCache reference, a default
// timeout, and an optional search-window size (spec.md §3 "Matcher
// state"). When a search window W is set, matching only examines the last
// W bytes of the buffer; reported positions are translated back to
// absolute buffer offsets so ConsumeMatch stays consistent.
type Matcher struct {
	buffer        *ringbuf.Buffer
	cache         *RegexCache
	defaultTimeout time.Duration
	searchWindow  int // 0 means unset
}

// New creates a Matcher with its own private RegexCache.
func New(bufferSize int) *Matcher {
	return WithCache(bufferSize, WithDefaultSize())
}

// WithCache creates a Matcher sharing the given RegexCache with other
// Matchers — the idiom used when many sessions run concurrently and should
// amortize regex compilation (spec.md §5).
func WithCache(bufferSize int, cache *RegexCache) *Matcher {
	return &Matcher{
		buffer:         ringbuf.New(bufferSize),
		cache:          cache,
		defaultTimeout: 30 * time.Second,
	}
}

// SetDefaultTimeout overrides the default used when a PatternSet carries no
// explicit Timeout(_) member.
func (m *Matcher) SetDefaultTimeout(d time.Duration) { m.defaultTimeout = d }

// SetSearchWindow bounds matching to the most recent n bytes (0 disables
// the window and searches the full buffer).
func (m *Matcher) SetSearchWindow(n int) { m.searchWindow = n }

// Append adds bytes read from the transport to the buffer.
func (m *Matcher) Append(p []byte) { m.buffer.Append(p) }

// Buffer exposes the underlying RingBuffer for direct inspection.
func (m *Matcher) Buffer() *ringbuf.Buffer { return m.buffer }

// BufferString returns the full buffer content, lossily decoded.
func (m *Matcher) BufferString() string { return m.buffer.AsStrLossy() }

// Clear empties the buffer.
func (m *Matcher) Clear() { m.buffer.Clear() }

// Cache returns the shared regex cache.
func (m *Matcher) Cache() *RegexCache { return m.cache }

// GetTimeout returns the PatternSet's own minimum Timeout(_) member if
// present, else the matcher's default.
func (m *Matcher) GetTimeout(set *pattern.Set) time.Duration {
	if d, ok := set.MinTimeout(); ok {
		return d
	}
	return m.defaultTimeout
}

// searchText returns the text to search along with the absolute offset of
// its first byte (the buffer's Base() if the whole buffer is searched).
func (m *Matcher) searchText() (text string, baseOffset int) {
	if m.searchWindow <= 0 {
		return m.buffer.AsStrLossy(), m.buffer.Base()
	}
	tail := m.buffer.Tail(m.searchWindow)
	offset := m.buffer.End() - len(tail)
	return lossyString(tail), offset
}

func lossyString(b []byte) string {
	buf := ringbuf.New(0)
	buf.Append(b)
	return buf.AsStrLossy()
}

// resolveRegex compiles (through the shared cache) a Regex pattern that was
// constructed from source text only, or returns the pattern's own compiled
// regexp if it already carries one.
func (m *Matcher) resolveRegex(p pattern.Pattern) pattern.Pattern {
	if p.Kind != pattern.KindRegex || p.Regex != nil {
		return p
	}
	re, err := m.cache.GetOrCompile(p.Source)
	if err != nil {
		return p
	}
	p.Regex = re
	return p
}

// TryMatch attempts to match a single pattern against the buffer.
func (m *Matcher) TryMatch(p pattern.Pattern) (Result, bool) {
	text, base := m.searchText()
	p = m.resolveRegex(p)
	mm, ok := p.Matches(text)
	if !ok {
		return Result{}, false
	}
	return Result{Start: base + mm.Start, End: base + mm.End, Captures: mm.Captures}, true
}

// TryMatchAny evaluates every member of set against the buffer. Among
// matches, the one with the smallest absolute start wins; ties break by
// earlier index in the set (spec.md §4.2, testable property 2).
func (m *Matcher) TryMatchAny(set *pattern.Set) (Result, bool) {
	text, base := m.searchText()

	var best Result
	found := false
	for idx, named := range set.Items() {
		p := m.resolveRegex(named.Pattern)
		mm, ok := p.Matches(text)
		if !ok {
			continue
		}
		cand := Result{
			PatternIndex: idx,
			Start:        base + mm.Start,
			End:          base + mm.End,
			Captures:     mm.Captures,
		}
		if !found || cand.Start < best.Start {
			best = cand
			found = true
		}
	}
	return best, found
}

// MatchOutcome is the fully-consumed form of a Result: before/matched/after
// text plus the originating index and captures.
type MatchOutcome struct {
	PatternIndex int
	Before       string
	Matched      string
	After        string
	Captures     []string
}

// ConsumeMatch consumes the buffer's "before" region and the matched
// region, returning a MatchOutcome whose After equals the buffer tail at
// this instant (spec.md §4.2). Testable property 3: Before ++ Matched ++
// After reconstructs the buffer view as of the call.
func (m *Matcher) ConsumeMatch(r Result) MatchOutcome {
	before := m.buffer.ConsumeBefore(r.Start)
	matched := m.buffer.Consume(r.End - r.Start)
	after := m.buffer.AsStrLossy()

	return MatchOutcome{
		PatternIndex: r.PatternIndex,
		Before:       lossyString(before),
		Matched:      lossyString(matched),
		After:        after,
		Captures:     r.Captures,
	}
}
