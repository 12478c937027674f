package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// header is the asciicast v2 header line (spec.md §6): version, width,
// height are required; the rest are omitted when unset via omitempty.
type header struct {
	Version       int               `json:"version"`
	Width         int               `json:"width"`
	Height        int               `json:"height"`
	Timestamp     *int64            `json:"timestamp,omitempty"`
	Duration      *float64          `json:"duration,omitempty"`
	IdleTimeLimit *float64          `json:"idle_time_limit,omitempty"`
	Command       string            `json:"command,omitempty"`
	Title         string            `json:"title,omitempty"`
	Env           map[string]string `json:"env,omitempty"`
}

func headerFromMetadata(m Metadata) header {
	h := header{Version: 2, Width: m.Width, Height: m.Height, Command: m.Command, Title: m.Title}
	if m.Timestamp != nil {
		h.Timestamp = m.Timestamp
	}
	if m.Duration != nil {
		secs := m.Duration.Seconds()
		h.Duration = &secs
	}
	if m.IdleTimeLimit != nil {
		secs := m.IdleTimeLimit.Seconds()
		h.IdleTimeLimit = &secs
	}
	if len(m.Env) > 0 || m.RecordingID != "" {
		h.Env = make(map[string]string, len(m.Env)+1)
		for k, v := range m.Env {
			h.Env[k] = v
		}
		if m.RecordingID != "" {
			h.Env["GOEXPECT_RECORDING_ID"] = m.RecordingID
		}
	}
	return h
}

func (h header) toMetadata() Metadata {
	m := Metadata{Width: h.Width, Height: h.Height, Command: h.Command, Title: h.Title, Env: h.Env}
	if h.Timestamp != nil {
		m.Timestamp = h.Timestamp
	}
	if h.Duration != nil {
		d := time.Duration(*h.Duration * float64(time.Second))
		m.Duration = &d
	}
	if h.IdleTimeLimit != nil {
		d := time.Duration(*h.IdleTimeLimit * float64(time.Second))
		m.IdleTimeLimit = &d
	}
	if id, ok := h.Env["GOEXPECT_RECORDING_ID"]; ok {
		m.RecordingID = id
	}
	return m
}

// eventLine is the 3-element asciicast event array: [time, type, data].
type eventLine struct {
	Time float64
	Type EventType
	Data string
}

func (e eventLine) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]any{e.Time, string(e.Type), e.Data})
}

func (e *eventLine) UnmarshalJSON(b []byte) error {
	var raw [3]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &e.Time); err != nil {
		return fmt.Errorf("transcript: invalid event timestamp: %w", err)
	}
	var typ, data string
	if err := json.Unmarshal(raw[1], &typ); err != nil {
		return fmt.Errorf("transcript: invalid event type: %w", err)
	}
	if err := json.Unmarshal(raw[2], &data); err != nil {
		return fmt.Errorf("transcript: invalid event data: %w", err)
	}
	e.Type = EventType(typ)
	e.Data = data
	return nil
}

// WriteAsciicast serializes t as asciicast v2: a JSON header line followed
// by one JSON array per event (original_source/.../asciicast.rs's
// write_asciicast, minus its hand-rolled JSON substring scanning — Go's
// encoding/json does the escaping/formatting).
func WriteAsciicast(w io.Writer, t *Transcript) error {
	h := headerFromMetadata(t.Metadata)
	enc := json.NewEncoder(w)
	if err := enc.Encode(h); err != nil {
		return fmt.Errorf("transcript: writing asciicast header: %w", err)
	}
	for _, e := range t.Events {
		line := eventLine{Time: e.Timestamp.Seconds(), Type: e.Type, Data: string(e.Data)}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("transcript: writing asciicast event: %w", err)
		}
	}
	return nil
}

// ReadAsciicast parses an asciicast v2 stream back into a Transcript.
func ReadAsciicast(r io.Reader) (*Transcript, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("transcript: reading asciicast header: %w", err)
		}
		return nil, fmt.Errorf("transcript: empty asciicast stream")
	}
	var h header
	if err := json.Unmarshal(scanner.Bytes(), &h); err != nil {
		return nil, fmt.Errorf("transcript: parsing asciicast header: %w", err)
	}

	t := New(h.toMetadata())
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev eventLine
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, fmt.Errorf("transcript: parsing asciicast event: %w", err)
		}
		t.Push(Event{
			Timestamp: time.Duration(ev.Time * float64(time.Second)),
			Type:      ev.Type,
			Data:      []byte(ev.Data),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("transcript: reading asciicast events: %w", err)
	}
	return t, nil
}

// NewRecordingID returns a fresh opaque identifier for Metadata.RecordingID.
func NewRecordingID() string {
	return uuid.NewString()
}

// Recorder appends events to an on-disk asciicast file, guarding concurrent
// writers from separate CLI invocations sharing the same path with an
// advisory file lock (github.com/gofrs/flock) rather than assuming a single
// writer per path, since `expect record` may be invoked concurrently against
// the same transcript file by a wrapping script.
type Recorder struct {
	path  string
	lock  *flock.Flock
	file  *os.File
	start time.Time
}

// NewRecorder creates (or truncates) path, writes the header immediately,
// and returns a Recorder ready to accept AppendOutput/AppendInput calls.
func NewRecorder(path string, meta Metadata) (*Recorder, error) {
	if meta.RecordingID == "" {
		meta.RecordingID = NewRecordingID()
	}
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("transcript: locking %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("transcript: %s is already being recorded to", path)
	}

	f, err := os.Create(path)
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("transcript: creating %s: %w", path, err)
	}
	if err := json.NewEncoder(f).Encode(headerFromMetadata(meta)); err != nil {
		f.Close()
		lock.Unlock()
		return nil, fmt.Errorf("transcript: writing header to %s: %w", path, err)
	}
	return &Recorder{path: path, lock: lock, file: f, start: nowFunc()}, nil
}

// AppendOutput records data read from the transport at the current offset.
func (r *Recorder) AppendOutput(data []byte) error { return r.append(Output, data) }

// AppendInput records data sent to the transport at the current offset.
func (r *Recorder) AppendInput(data []byte) error { return r.append(Input, data) }

// AppendResize records a resize event.
func (r *Recorder) AppendResize(cols, rows int) error {
	return r.append(Resize, []byte(formatResize(cols, rows)))
}

func (r *Recorder) append(typ EventType, data []byte) error {
	line := eventLine{Time: nowFunc().Sub(r.start).Seconds(), Type: typ, Data: string(data)}
	if err := json.NewEncoder(r.file).Encode(line); err != nil {
		return fmt.Errorf("transcript: appending to %s: %w", r.path, err)
	}
	return nil
}

// Close flushes and releases the recorder's file and advisory lock.
func (r *Recorder) Close() error {
	closeErr := r.file.Close()
	if err := r.lock.Unlock(); err != nil && closeErr == nil {
		closeErr = err
	}
	return closeErr
}

func formatResize(cols, rows int) string {
	return fmt.Sprintf("%dx%d", cols, rows)
}

// nowFunc is a seam for tests; production code always uses time.Now.
var nowFunc = time.Now
