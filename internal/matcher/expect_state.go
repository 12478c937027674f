package matcher

import (
	"time"

	"github.com/dcosson/goexpect/internal/pattern"
)

// ExpectState tracks the deadline and EOF status of one in-flight expect
// operation, grounded on the distilled source's ExpectState (matcher.rs).
// The ExpectEngine (internal/expect) drives this alongside a Matcher.
type ExpectState struct {
	patterns  *pattern.Set
	startTime time.Time
	timeout   time.Duration
	eof       bool
}

// NewExpectState begins timing an expect operation against set with the
// given deadline-from-now.
func NewExpectState(set *pattern.Set, timeout time.Duration) *ExpectState {
	return &ExpectState{patterns: set, startTime: time.Now(), timeout: timeout}
}

// IsTimedOut reports whether the deadline has elapsed.
func (s *ExpectState) IsTimedOut() bool { return time.Since(s.startTime) >= s.timeout }

// RemainingTime returns the time left until the deadline (never negative).
func (s *ExpectState) RemainingTime() time.Duration {
	rem := s.timeout - time.Since(s.startTime)
	if rem < 0 {
		return 0
	}
	return rem
}

// SetEOF marks that EOF has been observed on the transport.
func (s *ExpectState) SetEOF() { s.eof = true }

// IsEOF reports whether EOF has been observed.
func (s *ExpectState) IsEOF() bool { return s.eof }

// Patterns returns the set being matched.
func (s *ExpectState) Patterns() *pattern.Set { return s.patterns }

// ExpectsEOF reports whether the set includes the Eof sentinel pattern.
func (s *ExpectState) ExpectsEOF() bool { return s.patterns.HasEOF() }
