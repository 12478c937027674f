package interact

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/dcosson/goexpect/internal/pattern"
	"github.com/dcosson/goexpect/internal/transport"
)

type fakeTransport struct {
	mu      sync.Mutex
	pending [][]byte
	eof     bool
	writes  [][]byte
}

func (f *fakeTransport) push(b []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, b)
}

func (f *fakeTransport) pushEOF() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.eof = true
}

func (f *fakeTransport) Read(buf []byte, timeout time.Duration) (transport.ReadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) > 0 {
		chunk := f.pending[0]
		f.pending = f.pending[1:]
		n := copy(buf, chunk)
		return transport.ReadResult{N: n}, nil
	}
	if f.eof {
		return transport.ReadResult{EOF: true}, nil
	}
	return transport.ReadResult{TimedOut: true}, nil
}

func (f *fakeTransport) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, append([]byte(nil), p...))
	return len(p), nil
}

func (f *fakeTransport) Flush() error                                 { return nil }
func (f *fakeTransport) Resize(cols, rows int) error                  { return nil }
func (f *fakeTransport) Signal(sig transport.Signal) error            { return nil }
func (f *fakeTransport) Wait() (transport.ExitStatus, error)          { return transport.ExitStatus{}, nil }
func (f *fakeTransport) TryWait() (transport.ExitStatus, bool, error) {
	return transport.ExitStatus{}, false, nil
}
func (f *fakeTransport) Pid() int                         { return 1 }
func (f *fakeTransport) Dimensions() transport.Dimensions { return transport.Dimensions{Cols: 80, Rows: 24} }
func (f *fakeTransport) Close() error                     { return nil }

func (f *fakeTransport) hasWrite(want string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.writes {
		if string(w) == want {
			return true
		}
	}
	return false
}

func TestInteractOutputHookSendsAndStops(t *testing.T) {
	ft := &fakeTransport{}
	ft.push([]byte("password:"))

	var stdout bytes.Buffer
	stdin := bytes.NewReader(nil)

	b := NewBuilder(ft, stdin, &stdout).
		WithMode(Mode{ReadTimeout: 5 * time.Millisecond}).
		OnOutput(pattern.Literal("password:"), func(ctx *Context) Action {
			return Send("secret\n")
		}).
		OnOutput(pattern.Literal("done"), func(ctx *Context) Action {
			return Stop()
		})

	go func() {
		time.Sleep(20 * time.Millisecond)
		ft.push([]byte("done"))
	}()

	result, err := b.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if result.Reason != EndPatternStop {
		t.Fatalf("reason = %v, want EndPatternStop", result.Reason)
	}
	if !ft.hasWrite("secret\n") {
		t.Fatal("expected transport to observe a write of \"secret\\n\"")
	}
	if !bytes.Contains(stdout.Bytes(), []byte("password:")) {
		t.Fatal("expected stdout to receive passthrough output")
	}
}

func TestInteractEOFEndsSession(t *testing.T) {
	ft := &fakeTransport{}
	ft.pushEOF()

	var stdout bytes.Buffer
	stdin := bytes.NewReader(nil)

	b := NewBuilder(ft, stdin, &stdout).WithMode(Mode{ReadTimeout: 5 * time.Millisecond})

	result, err := b.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if result.Reason != EndEOF {
		t.Fatalf("reason = %v, want EndEOF", result.Reason)
	}
}

func TestInteractTimeout(t *testing.T) {
	ft := &fakeTransport{}
	var stdout bytes.Buffer
	stdin := bytes.NewReader(nil)

	b := NewBuilder(ft, stdin, &stdout).
		WithMode(Mode{ReadTimeout: 5 * time.Millisecond}).
		WithTimeout(20 * time.Millisecond)

	result, err := b.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if result.Reason != EndTimeout {
		t.Fatalf("reason = %v, want EndTimeout", result.Reason)
	}
}
