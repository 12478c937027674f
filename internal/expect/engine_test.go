package expect

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dcosson/goexpect/internal/matcher"
	"github.com/dcosson/goexpect/internal/pattern"
	"github.com/dcosson/goexpect/internal/transport"
)

// fakeTransport is an in-memory Transport double driving the ExpectEngine
// tests without spawning a real process. Output is fed via pushOutput;
// written bytes are captured for assertions (scenario S5).
type fakeTransport struct {
	mu      sync.Mutex
	pending [][]byte
	eof     bool
	writes  [][]byte
}

func (f *fakeTransport) pushOutput(b []byte) {
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
	deadline := time.Now().Add(timeout)
	for {
		f.mu.Lock()
		if len(f.pending) > 0 {
			chunk := f.pending[0]
			f.pending = f.pending[1:]
			f.mu.Unlock()
			n := copy(buf, chunk)
			return transport.ReadResult{N: n}, nil
		}
		if f.eof {
			f.mu.Unlock()
			return transport.ReadResult{EOF: true}, nil
		}
		f.mu.Unlock()
		if time.Now().After(deadline) {
			return transport.ReadResult{TimedOut: true}, nil
		}
		time.Sleep(time.Millisecond)
	}
}

func (f *fakeTransport) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := append([]byte(nil), p...)
	f.writes = append(f.writes, cp)
	return len(p), nil
}

func (f *fakeTransport) Flush() error                                { return nil }
func (f *fakeTransport) Resize(cols, rows int) error                 { return nil }
func (f *fakeTransport) Signal(sig transport.Signal) error           { return nil }
func (f *fakeTransport) Wait() (transport.ExitStatus, error)         { return transport.ExitStatus{}, nil }
func (f *fakeTransport) TryWait() (transport.ExitStatus, bool, error) {
	return transport.ExitStatus{}, false, nil
}
func (f *fakeTransport) Pid() int                            { return 1 }
func (f *fakeTransport) Dimensions() transport.Dimensions    { return transport.Dimensions{Cols: 80, Rows: 24} }
func (f *fakeTransport) Close() error                        { return nil }

func TestEngineTimeoutCarriesSnapshot(t *testing.T) {
	ft := &fakeTransport{}
	ft.pushOutput([]byte("output\n"))

	eng := NewEngine(ft, matcher.New(1<<20), nil)
	_, err := eng.Expect(pattern.Literal("nonexistent"))

	timeoutErr, ok := err.(*TimeoutError)
	if !ok {
		t.Fatalf("expected *TimeoutError, got %T (%v)", err, err)
	}
	if !strings.Contains(timeoutErr.Buffer, "output") {
		t.Fatalf("buffer snapshot should contain 'output', got %q", timeoutErr.Buffer)
	}
}

func TestEngineEOFClassification(t *testing.T) {
	ft := &fakeTransport{}
	ft.pushOutput([]byte("abc"))
	ft.pushEOF()

	eng := NewEngine(ft, matcher.New(1<<20), nil)
	_, err := eng.Expect(pattern.Literal("xyz"))

	pnf, ok := err.(*PatternNotFoundError)
	if !ok {
		t.Fatalf("expected *PatternNotFoundError (not Timeout), got %T (%v)", err, err)
	}
	if pnf.Buffer != "abc" {
		t.Fatalf("buffer = %q, want %q", pnf.Buffer, "abc")
	}
}

func TestEngineBeforeHandlerRespond(t *testing.T) {
	ft := &fakeTransport{}
	ft.pushOutput([]byte("continue (yes/no)?"))

	pm := NewPatternManager().WithYesNoHandler("yes")
	eng := NewEngine(ft, matcher.New(1<<20), pm)

	go func() {
		time.Sleep(20 * time.Millisecond)
		ft.pushOutput([]byte("done"))
	}()

	out, err := eng.Expect(pattern.Literal("done"))
	if err != nil {
		t.Fatalf("expect done: %v", err)
	}
	if out.Matched != "done" {
		t.Fatalf("matched = %q", out.Matched)
	}

	ft.mu.Lock()
	defer ft.mu.Unlock()
	found := false
	for _, w := range ft.writes {
		if string(w) == "yes\n" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected transport to observe a write of \"yes\\n\"")
	}
}

