// Package pattern defines the Pattern/PatternSet data model (spec.md §3)
// and the glob matcher used by Pattern.Glob (spec.md §4.2, Open Question 2).
package pattern

import (
	"regexp"
	"time"
)

// Kind tags which variant a Pattern holds.
type Kind int

const (
	KindLiteral Kind = iota
	KindRegex
	KindGlob
	KindEOF
	KindTimeout
	KindBytes
)

// Pattern is the tagged variant over {Literal, Regex, Glob, Eof, Timeout,
// Bytes} from spec.md §3. It is immutable after construction; equality on
// Source suffices for cache keys.
type Pattern struct {
	Kind    Kind
	Source  string         // literal text, glob text, or regex source
	Regex   *regexp.Regexp // non-nil only when Kind == KindRegex
	Timeout time.Duration  // meaningful only when Kind == KindTimeout
	Bytes   int            // meaningful only when Kind == KindBytes
}

// Literal constructs a literal substring pattern.
func Literal(s string) Pattern { return Pattern{Kind: KindLiteral, Source: s} }

// Glob constructs a shell-glob pattern supporting `*`, `?`, and `[...]`
// (including negation via `[!...]` or `[^...]`) — the full semantics
// resolved by spec.md's Open Question 2, not the degenerate subset found
// in the distilled source's matcher.rs.
func Glob(s string) Pattern { return Pattern{Kind: KindGlob, Source: s} }

// EOF constructs the sentinel pattern that matches process/stream end.
func EOF() Pattern { return Pattern{Kind: KindEOF} }

// TimeoutPattern constructs the sentinel pattern that sets the wait to d,
// overriding the engine's default (the shortest one in a set wins). When
// the wait elapses with no match, the engine returns a *TimeoutError.
func TimeoutPattern(d time.Duration) Pattern {
	return Pattern{Kind: KindTimeout, Timeout: d}
}

// BytesPattern constructs a Bytes pattern carrying the count n. Matches
// never reports it as matched and the expect engine has no case for it, so
// it is not satisfied by accumulated bytes.
func BytesPattern(n int) Pattern { return Pattern{Kind: KindBytes, Bytes: n} }

// RegexPattern compiles src and wraps it as a Regex pattern. On compile
// failure it returns the raw regexp error, unwrapped.
func RegexPattern(src string) (Pattern, error) {
	re, err := regexp.Compile(src)
	if err != nil {
		return Pattern{}, err
	}
	return Pattern{Kind: KindRegex, Source: src, Regex: re}, nil
}

// Named pairs an optional name with a Pattern inside a PatternSet.
type Named struct {
	Name    string
	Pattern Pattern
}

// Set is an ordered sequence of (optional name, Pattern) — spec.md §3.
type Set struct {
	items []Named
}

// NewSet creates an empty pattern set.
func NewSet() *Set { return &Set{} }

// FromPatterns builds a Set from bare patterns (no names).
func FromPatterns(ps ...Pattern) *Set {
	s := NewSet()
	for _, p := range ps {
		s.Add(p)
	}
	return s
}

// Add appends a pattern with no name and returns the set for chaining.
func (s *Set) Add(p Pattern) *Set {
	s.items = append(s.items, Named{Pattern: p})
	return s
}

// AddNamed appends a named pattern and returns the set for chaining.
func (s *Set) AddNamed(name string, p Pattern) *Set {
	s.items = append(s.items, Named{Name: name, Pattern: p})
	return s
}

// Items returns the ordered (name, pattern) pairs.
func (s *Set) Items() []Named { return s.items }

// Len reports how many patterns are in the set.
func (s *Set) Len() int { return len(s.items) }

// HasEOF reports whether any member is the Eof sentinel.
func (s *Set) HasEOF() bool {
	for _, it := range s.items {
		if it.Pattern.Kind == KindEOF {
			return true
		}
	}
	return false
}

// MinTimeout returns the smallest explicit Timeout(_) member's duration, if
// any are present.
func (s *Set) MinTimeout() (time.Duration, bool) {
	var min time.Duration
	found := false
	for _, it := range s.items {
		if it.Pattern.Kind != KindTimeout {
			continue
		}
		if !found || it.Pattern.Timeout < min {
			min = it.Pattern.Timeout
			found = true
		}
	}
	return min, found
}

// First returns the first pattern in the set, if any.
func (s *Set) First() (Pattern, bool) {
	if len(s.items) == 0 {
		return Pattern{}, false
	}
	return s.items[0].Pattern, true
}
