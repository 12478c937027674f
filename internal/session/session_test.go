package session

import (
	"sync"
	"testing"
	"time"

	"github.com/dcosson/goexpect/internal/expect"
	"github.com/dcosson/goexpect/internal/pattern"
	"github.com/dcosson/goexpect/internal/transport"
)

type fakeTransport struct {
	mu      sync.Mutex
	pending [][]byte
	eof     bool
	writes  [][]byte
	dims    transport.Dimensions
}

func (f *fakeTransport) push(b []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, b)
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

func (f *fakeTransport) Flush() error { return nil }
func (f *fakeTransport) Resize(cols, rows int) error {
	f.dims = transport.Dimensions{Cols: cols, Rows: rows}
	return nil
}
func (f *fakeTransport) Signal(sig transport.Signal) error   { return nil }
func (f *fakeTransport) Wait() (transport.ExitStatus, error) { return transport.ExitStatus{}, nil }
func (f *fakeTransport) TryWait() (transport.ExitStatus, bool, error) {
	return transport.ExitStatus{}, false, nil
}
func (f *fakeTransport) Pid() int                      { return 4242 }
func (f *fakeTransport) Dimensions() transport.Dimensions { return f.dims }
func (f *fakeTransport) Close() error                  { return nil }

func newTestSession(t *testing.T) (*Session, *fakeTransport) {
	t.Helper()
	ft := &fakeTransport{}
	cfg := DefaultConfig("fake", nil)
	cfg.Timeout.Default = 50 * time.Millisecond
	s := New(ft, cfg)
	s.state = StateRunning
	return s, ft
}

func TestSessionSendAndExpect(t *testing.T) {
	s, ft := newTestSession(t)
	ft.push([]byte("login: "))

	out, err := s.Expect(pattern.Literal("login:"))
	if err != nil {
		t.Fatalf("Expect: %v", err)
	}
	if out.Matched != "login:" {
		t.Fatalf("Matched = %q, want %q", out.Matched, "login:")
	}

	if err := s.SendLine("admin"); err != nil {
		t.Fatalf("SendLine: %v", err)
	}
	if len(ft.writes) != 1 || string(ft.writes[0]) != "admin\n" {
		t.Fatalf("writes = %v, want [admin\\n]", ft.writes)
	}
}

func TestSessionExpectTimeout(t *testing.T) {
	s, _ := newTestSession(t)
	_, err := s.ExpectTimeout(pattern.Literal("never"), 10*time.Millisecond)
	if !expect.IsTimeout(err) {
		t.Fatalf("err = %v, want timeout", err)
	}
}

func TestSessionSendOnClosedErrors(t *testing.T) {
	s, _ := newTestSession(t)
	s.state = StateClosed
	if err := s.SendStr("x"); err == nil {
		t.Fatal("expected error sending on a closed session")
	}
}

func TestSessionResizeUpdatesDimensionsAndScreen(t *testing.T) {
	s, ft := newTestSession(t)
	_ = s.Screen()

	if err := s.Resize(100, 30); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if ft.dims.Cols != 100 || ft.dims.Rows != 30 {
		t.Fatalf("transport dims = %+v", ft.dims)
	}
	if s.Screen().Cols() != 100 || s.Screen().Rows() != 30 {
		t.Fatalf("screen dims = %dx%d", s.Screen().Cols(), s.Screen().Rows())
	}
}

func TestSessionScreenReceivesOutput(t *testing.T) {
	s, ft := newTestSession(t)
	_ = s.Screen()
	ft.push([]byte("hello"))

	if _, err := s.Expect(pattern.Literal("hello")); err != nil {
		t.Fatalf("Expect: %v", err)
	}
	if !s.Screen().Query().Contains("hello") {
		t.Fatal("expected screen to have received the same bytes as the matcher")
	}
}

func TestSessionIDsAreUnique(t *testing.T) {
	s1, _ := newTestSession(t)
	s2, _ := newTestSession(t)
	if s1.ID() == s2.ID() {
		t.Fatal("expected distinct session IDs")
	}
}

func TestControlCharByteAndParse(t *testing.T) {
	if CtrlC.Byte() != 0x03 {
		t.Fatalf("CtrlC.Byte() = %#x, want 0x03", CtrlC.Byte())
	}
	if Escape.Byte() != 0x1B {
		t.Fatalf("Escape.Byte() = %#x, want 0x1B", Escape.Byte())
	}
	c, ok := ParseControlChar('D')
	if !ok || c != CtrlD {
		t.Fatalf("ParseControlChar('D') = %v, %v; want CtrlD, true", c, ok)
	}
	if _, ok := ParseControlChar('9'); ok {
		t.Fatal("expected '9' to not parse as a control char")
	}
}

func TestStateUsableAndClosed(t *testing.T) {
	if !StateRunning.IsUsable() || !StateInteracting.IsUsable() {
		t.Fatal("Running and Interacting should be usable")
	}
	if StateClosed.IsUsable() {
		t.Fatal("Closed should not be usable")
	}
	if !StateClosed.IsClosed() || !StateExited.IsClosed() {
		t.Fatal("Closed and Exited should report closed")
	}
}
