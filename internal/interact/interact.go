// Package interact implements interactive passthrough between a terminal
// and a transport.Transport, with pattern-triggered hooks layered on top —
// the Go analogue of handing a session to a human at the keyboard while
// still watching its output for patterns (spec.md §4.7).
package interact

import (
	"time"

	"github.com/dcosson/goexpect/internal/pattern"
)

// ActionKind tags what an interact hook asked the runner to do next.
type ActionKind int

const (
	ActionContinue ActionKind = iota
	ActionSend
	ActionStop
	ActionError
)

// Action is the result of an output/input/resize hook callback.
type Action struct {
	Kind    ActionKind
	Payload []byte
	Message string
}

// Continue lets interaction proceed unchanged.
func Continue() Action { return Action{Kind: ActionContinue} }

// Send writes data to the transport and keeps interacting.
func Send(data string) Action { return Action{Kind: ActionSend, Payload: []byte(data)} }

// SendBytes is Send for raw bytes.
func SendBytes(data []byte) Action { return Action{Kind: ActionSend, Payload: data} }

// Stop ends interaction normally.
func Stop() Action { return Action{Kind: ActionStop} }

// Error ends interaction reporting msg as the failure reason.
func Error(msg string) Action { return Action{Kind: ActionError, Message: msg} }

// Context is passed to an output/input pattern hook.
type Context struct {
	Matched      string
	Before       string
	After        string
	Buffer       string
	PatternIndex int
}

// Send is shorthand for Send(data) from within a hook.
func (c *Context) Send(data string) Action { return Send(data) }

// SendLine is Send with a trailing newline appended.
func (c *Context) SendLine(data string) Action { return Send(data + "\n") }

// PatternHook is an output/input callback fired on a pattern match.
type PatternHook func(ctx *Context) Action

// Size is a terminal's row/column dimensions.
type Size struct{ Rows, Cols int }

// ResizeContext is passed to the resize hook.
type ResizeContext struct {
	Size     Size
	Previous Size
	HasPrev  bool
}

// ResizeHook is called whenever the controlling terminal's size changes.
type ResizeHook func(ctx *ResizeContext) Action

// ByteHook transforms a chunk of bytes before it is written out or sent on.
type ByteHook func(data []byte) []byte

// Mode configures polling behavior independent of hooks.
type Mode struct {
	ReadTimeout time.Duration
}

// DefaultMode is used when a Builder doesn't override it.
var DefaultMode = Mode{ReadTimeout: 50 * time.Millisecond}

type outputPatternHook struct {
	pattern  pattern.Pattern
	callback PatternHook
}

type inputPatternHook struct {
	pattern  pattern.Pattern
	callback PatternHook
}

// EndReason explains why Start returned.
type EndReason int

const (
	EndPatternStop EndReason = iota
	EndEscape
	EndTimeout
	EndEOF
	EndError
)

// Result is returned by Start once interaction ends.
type Result struct {
	Reason       EndReason
	PatternIndex int
	Message      string
	Buffer       string
}
