package expect

import (
	"time"

	"github.com/dcosson/goexpect/internal/matcher"
	"github.com/dcosson/goexpect/internal/pattern"
	"github.com/dcosson/goexpect/internal/transport"
)

// readChunkSize bounds a single Transport.Read call inside the engine loop.
const readChunkSize = 4096

// Engine drives a Matcher against a Transport within a deadline, following
// spec.md §4.3's exact six-step loop. It performs no retries; retry is a
// caller policy. The only suspension points are the transport read in step
// 6 and any write issued by a Respond handler in step 2.
type Engine struct {
	Transport transport.Transport
	Matcher   *matcher.Matcher
	Patterns  *PatternManager
	eof       bool
}

// NewEngine wires a Transport, a Matcher, and a PatternManager together.
func NewEngine(t transport.Transport, m *matcher.Matcher, pm *PatternManager) *Engine {
	if pm == nil {
		pm = NewPatternManager()
	}
	return &Engine{Transport: t, Matcher: m, Patterns: pm}
}

// Outcome is the successful result of ExpectAny: the matched outcome plus
// whether it was produced by a Before handler's Return action instead of a
// genuine pattern match.
type Outcome struct {
	matcher.MatchOutcome
	FromHandler bool
}

// ExpectAny runs the six-step loop until a member of set matches, a
// deadline elapses, EOF is observed, or a before-handler short-circuits
// the call.
func (e *Engine) ExpectAny(set *pattern.Set) (Outcome, error) {
	// Step 1: compute the deadline.
	timeout := e.Matcher.GetTimeout(set)
	deadline := time.Now().Add(timeout)

	buf := make([]byte, readChunkSize)

	for {
		// Step 2: before-handlers.
		action, matched := e.Patterns.CheckBefore(e.Matcher.BufferString())
		if matched {
			switch action.Kind {
			case ActionReturn:
				return Outcome{MatchOutcome: matcher.MatchOutcome{Matched: action.Payload, After: e.Matcher.BufferString()}, FromHandler: true}, nil
			case ActionAbort:
				return Outcome{}, &InvalidPatternError{Message: action.Payload}
			case ActionRespond:
				if _, err := e.Transport.Write([]byte(action.Payload)); err != nil {
					return Outcome{}, err
				}
			}
		}

		// Step 3: try to match.
		if r, ok := e.Matcher.TryMatchAny(set); ok {
			return Outcome{MatchOutcome: e.Matcher.ConsumeMatch(r)}, nil
		}

		// Step 4: timeout check.
		now := time.Now()
		if !now.Before(deadline) {
			first, _ := set.First()
			return Outcome{}, &TimeoutError{
				Duration: timeout,
				Pattern:  patternDescription(first),
				Buffer:   e.Matcher.BufferString(),
			}
		}

		// Step 5: EOF handling.
		if e.eof {
			if set.HasEOF() {
				return Outcome{MatchOutcome: matcher.MatchOutcome{After: e.Matcher.BufferString()}}, nil
			}
			first, _ := set.First()
			return Outcome{}, &PatternNotFoundError{Pattern: patternDescription(first), Buffer: e.Matcher.BufferString()}
		}

		// Step 6: blocking read with the remaining timeout.
		remaining := deadline.Sub(now)
		result, err := e.Transport.Read(buf, remaining)
		if err != nil {
			return Outcome{}, err
		}
		if result.TimedOut {
			continue // loop back to step 4, which will observe the elapsed deadline
		}
		if result.EOF {
			e.eof = true
			continue
		}
		e.Matcher.Append(buf[:result.N])
	}
}

// Expect is ExpectAny for a single pattern.
func (e *Engine) Expect(p pattern.Pattern) (Outcome, error) {
	return e.ExpectAny(pattern.FromPatterns(p))
}

func patternDescription(p pattern.Pattern) string {
	switch p.Kind {
	case pattern.KindEOF:
		return "<eof>"
	case pattern.KindTimeout:
		return "<timeout>"
	default:
		return p.Source
	}
}
