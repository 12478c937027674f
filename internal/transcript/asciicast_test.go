package transcript

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"
)

func TestWriteAsciicastHeader(t *testing.T) {
	tr := New(NewMetadata(80, 24))
	var buf bytes.Buffer
	if err := WriteAsciicast(&buf, tr); err != nil {
		t.Fatalf("WriteAsciicast: %v", err)
	}
	first := strings.SplitN(buf.String(), "\n", 2)[0]
	if !strings.Contains(first, `"version":2`) || !strings.Contains(first, `"width":80`) {
		t.Fatalf("header line = %q", first)
	}
}

func TestEscapeSpecialChars(t *testing.T) {
	esc := string(rune(0x1b))
	tr := New(NewMetadata(80, 24))
	tr.Push(OutputEvent(0, []byte("hello\nworld"+esc)))
	var buf bytes.Buffer
	if err := WriteAsciicast(&buf, tr); err != nil {
		t.Fatalf("WriteAsciicast: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `\n`) {
		t.Fatalf("expected escaped newline, got %q", out)
	}
	if !strings.Contains(strings.ToLower(out), "u001b") {
		t.Fatalf("expected escaped ESC as a unicode sequence, got %q", out)
	}
}

func TestAsciicastRoundtrip(t *testing.T) {
	tr := New(NewMetadata(80, 24))
	tr.Push(OutputEvent(100*time.Millisecond, []byte("hello")))

	var buf bytes.Buffer
	if err := WriteAsciicast(&buf, tr); err != nil {
		t.Fatalf("WriteAsciicast: %v", err)
	}

	parsed, err := ReadAsciicast(&buf)
	if err != nil {
		t.Fatalf("ReadAsciicast: %v", err)
	}
	if len(parsed.Events) != 1 {
		t.Fatalf("events = %d, want 1", len(parsed.Events))
	}
	if string(parsed.Events[0].Data) != "hello" {
		t.Fatalf("data = %q", parsed.Events[0].Data)
	}
}

func TestAsciicastRoundtripWithMetadata(t *testing.T) {
	dur := 30500 * time.Millisecond
	meta := NewMetadata(120, 40)
	meta.Command = "/bin/bash"
	meta.Title = "Test Recording"
	ts := int64(1704067200)
	meta.Timestamp = &ts
	meta.Duration = &dur
	meta.Env = map[string]string{"SHELL": "/bin/bash", "TERM": "xterm"}

	tr := New(meta)
	tr.Push(OutputEvent(100*time.Millisecond, []byte("$ ")))
	tr.Push(InputEvent(200*time.Millisecond, []byte("ls\n")))
	tr.Push(OutputEvent(300*time.Millisecond, []byte("file1.txt\nfile2.txt\n")))

	var buf bytes.Buffer
	if err := WriteAsciicast(&buf, tr); err != nil {
		t.Fatalf("WriteAsciicast: %v", err)
	}

	parsed, err := ReadAsciicast(&buf)
	if err != nil {
		t.Fatalf("ReadAsciicast: %v", err)
	}
	if parsed.Metadata.Width != 120 || parsed.Metadata.Height != 40 {
		t.Fatalf("dims = %dx%d", parsed.Metadata.Width, parsed.Metadata.Height)
	}
	if parsed.Metadata.Command != "/bin/bash" || parsed.Metadata.Title != "Test Recording" {
		t.Fatalf("command/title = %q/%q", parsed.Metadata.Command, parsed.Metadata.Title)
	}
	if parsed.Metadata.Timestamp == nil || *parsed.Metadata.Timestamp != 1704067200 {
		t.Fatalf("timestamp = %v", parsed.Metadata.Timestamp)
	}
	if len(parsed.Events) != 3 {
		t.Fatalf("events = %d, want 3", len(parsed.Events))
	}
	if parsed.Events[1].Type != Input {
		t.Fatalf("events[1].Type = %v, want Input", parsed.Events[1].Type)
	}
}

func TestReadAsciicastEmptyStream(t *testing.T) {
	if _, err := ReadAsciicast(strings.NewReader("")); err == nil {
		t.Fatal("expected error reading an empty stream")
	}
}

func TestRecorderAppendAndLock(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/session.cast"

	rec, err := NewRecorder(path, NewMetadata(80, 24))
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	if err := rec.AppendOutput([]byte("$ ")); err != nil {
		t.Fatalf("AppendOutput: %v", err)
	}
	if err := rec.AppendInput([]byte("ls\n")); err != nil {
		t.Fatalf("AppendInput: %v", err)
	}
	if err := rec.AppendResize(100, 30); err != nil {
		t.Fatalf("AppendResize: %v", err)
	}

	if _, err := NewRecorder(path, NewMetadata(80, 24)); err == nil {
		t.Fatal("expected second concurrent recorder to fail to acquire the lock")
	}

	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("reading back recorded file: %v", err)
	}
	defer f.Close()
	parsed, err := ReadAsciicast(f)
	if err != nil {
		t.Fatalf("ReadAsciicast: %v", err)
	}
	if len(parsed.Events) != 3 {
		t.Fatalf("events = %d, want 3", len(parsed.Events))
	}
	if parsed.Events[2].Type != Resize || string(parsed.Events[2].Data) != "100x30" {
		t.Fatalf("resize event = %+v", parsed.Events[2])
	}
}
