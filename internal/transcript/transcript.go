// Package transcript implements the asciicast v2 recording format named at
// spec.md §6 as the transcript collaborator's external contract: a session
// is out of scope for the core to record, but the wire format itself is
// specified exactly, so this package is a thin, self-contained writer/reader
// for it, grounded on original_source/.../transcript/asciicast.rs.
package transcript

import "time"

// EventType tags an asciicast event's second array element.
type EventType string

const (
	Output EventType = "o"
	Input  EventType = "i"
	Resize EventType = "r"
	Marker EventType = "m"
)

// Event is one asciicast line: `[timestamp, type, data]`.
type Event struct {
	Timestamp time.Duration
	Type      EventType
	Data      []byte
}

// OutputEvent builds an Output event at offset t.
func OutputEvent(t time.Duration, data []byte) Event { return Event{t, Output, data} }

// InputEvent builds an Input event at offset t.
func InputEvent(t time.Duration, data []byte) Event { return Event{t, Input, data} }

// ResizeEvent builds a Resize event whose data is "colsxrows", matching
// asciicast's convention for resize payloads.
func ResizeEvent(t time.Duration, cols, rows int) Event {
	return Event{t, Resize, []byte(formatResize(cols, rows))}
}

// MarkerEvent builds a Marker event carrying a free-text label.
func MarkerEvent(t time.Duration, label string) Event { return Event{t, Marker, []byte(label)} }

// Metadata is the asciicast v2 header's recognized fields (spec.md §6).
type Metadata struct {
	Width, Height int
	Timestamp     *int64
	Duration      *time.Duration
	IdleTimeLimit *time.Duration
	Command       string
	Title         string
	Env           map[string]string
	// RecordingID is an opaque identifier stamped into the header's env
	// under "GOEXPECT_RECORDING_ID" so two recordings of the same command
	// can be told apart; not part of the asciicast spec itself.
	RecordingID string
}

// NewMetadata returns Metadata for a width x height recording with no
// optional fields set.
func NewMetadata(width, height int) Metadata {
	return Metadata{Width: width, Height: height}
}

// Transcript is an in-memory recording: a header plus an ordered event log.
type Transcript struct {
	Metadata Metadata
	Events   []Event
}

// New starts an empty Transcript with the given metadata.
func New(meta Metadata) *Transcript {
	return &Transcript{Metadata: meta}
}

// Push appends an event. Callers are responsible for passing monotonically
// increasing timestamps; Transcript does not enforce ordering.
func (t *Transcript) Push(e Event) {
	t.Events = append(t.Events, e)
}
