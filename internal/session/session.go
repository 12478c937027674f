package session

import (
	"fmt"
	"time"

	"github.com/google/shlex"

	"github.com/dcosson/goexpect/internal/expect"
	"github.com/dcosson/goexpect/internal/matcher"
	"github.com/dcosson/goexpect/internal/pattern"
	"github.com/dcosson/goexpect/internal/screen"
	"github.com/dcosson/goexpect/internal/transport"
)

// Session is the library's main handle: it owns a Transport, a Matcher, an
// ExpectEngine, a PatternManager, and (lazily) a Screen, presenting the
// send/expect/buffer/resize/signal/wait surface spec.md §6 names. Grounded
// on original_source/.../session/handle.rs's Session<T>, generalized from
// a generic AsyncRead+AsyncWrite bound to the plain transport.Transport
// interface (unnecessary in Go, since the interface already erases the
// concrete type).
type Session struct {
	id        ID
	transport transport.Transport
	config    Config
	engine    *expect.Engine
	patterns  *expect.PatternManager
	state     State
	screen    *screen.Buffer
}

// New wraps an already-established Transport in a Session. Most callers
// should use Spawn instead.
func New(t transport.Transport, cfg Config) *Session {
	m := matcher.New(cfg.Buffer.MaxSize)
	if cfg.Buffer.SearchWindow > 0 {
		m.SetSearchWindow(cfg.Buffer.SearchWindow)
	}
	if cfg.Timeout.Default > 0 {
		m.SetDefaultTimeout(cfg.Timeout.Default)
	}
	pm := expect.NewPatternManager()
	s := &Session{
		id:        NewID(),
		transport: t,
		config:    cfg,
		patterns:  pm,
		state:     StateStarting,
	}
	s.engine = expect.NewEngine(&screenTap{Transport: t, sess: s}, m, pm)
	return s
}

// screenTap wraps a Transport so every byte the engine reads is also fed to
// the session's Screen, when one has been requested via Session.Screen.
// Nil screen is the common case and costs one pointer check per read.
type screenTap struct {
	transport.Transport
	sess *Session
}

func (t *screenTap) Read(buf []byte, timeout time.Duration) (transport.ReadResult, error) {
	r, err := t.Transport.Read(buf, timeout)
	if err == nil && r.N > 0 && t.sess.screen != nil {
		t.sess.screen.Write(buf[:r.N])
	}
	return r, err
}

// Spawn starts program with args under a PTY using DefaultConfig, and
// returns a ready-to-use Session (spec.md §6 spawn(program, args)).
func Spawn(program string, args []string) (*Session, error) {
	return SpawnWithConfig(DefaultConfig(program, args))
}

// SpawnWithConfig starts a session using the full Config (spec.md §6
// spawn_with_config(program, args, cfg)).
func SpawnWithConfig(cfg Config) (*Session, error) {
	tcfg := transport.Config{
		Env:        cfg.Env,
		InheritEnv: cfg.InheritEnv,
		WorkingDir: cfg.WorkingDir,
		Dimensions: transport.Dimensions{Cols: cfg.Dimensions.Cols, Rows: cfg.Dimensions.Rows},
	}
	t, err := transport.Spawn(cfg.Command, cfg.Args, tcfg)
	if err != nil {
		return nil, err
	}
	cfg.logf("session: spawned %q %v", cfg.Command, cfg.Args)

	s := New(t, cfg)
	s.state = StateRunning
	return s, nil
}

// SpawnString splits a single shell-style command line into argv (via
// google/shlex) and spawns it — a convenience for callers holding one
// string rather than program+args, grounded on the teacher's own use of
// shlex for splitting user-typed commands.
func SpawnString(commandLine string) (*Session, error) {
	argv, err := shlex.Split(commandLine)
	if err != nil {
		return nil, fmt.Errorf("session: split command line: %w", err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("session: empty command line")
	}
	return Spawn(argv[0], argv[1:])
}

// ID returns the session's opaque identifier.
func (s *Session) ID() ID { return s.id }

// State returns the session's current lifecycle state.
func (s *Session) State() State { return s.state }

// Config returns the session's configuration.
func (s *Session) Config() Config { return s.config }

// PatternManager exposes the before/after handler registry so callers can
// install password/sudo/yes-no handlers (internal/expect's PatternManager).
func (s *Session) PatternManager() *expect.PatternManager { return s.patterns }

// Screen lazily creates and returns the session's VT100/ANSI screen buffer,
// fed by every byte the session reads (spec.md §4.6). Most callers that
// never call Screen pay nothing for it.
func (s *Session) Screen() *screen.Buffer {
	if s.screen == nil {
		s.screen = screen.NewBuffer(s.config.Dimensions.Rows, s.config.Dimensions.Cols)
	}
	return s.screen
}

func (s *Session) checkUsable() error {
	if s.state.IsClosed() {
		return expect.ErrSessionClosed
	}
	return nil
}

// Send writes raw bytes to the process.
func (s *Session) Send(data []byte) error {
	if err := s.checkUsable(); err != nil {
		return err
	}
	if s.config.DelayBeforeSend > 0 {
		time.Sleep(s.config.DelayBeforeSend)
	}
	if _, err := s.transport.Write(data); err != nil {
		return err
	}
	return s.transport.Flush()
}

// SendStr writes s as UTF-8 bytes.
func (s *Session) SendStr(str string) error { return s.Send([]byte(str)) }

// SendLine writes line followed by the configured line ending.
func (s *Session) SendLine(line string) error {
	return s.SendStr(line + s.config.LineEnding.String())
}

// SendControl writes a single control-character byte.
func (s *Session) SendControl(c ControlChar) error { return s.Send([]byte{c.Byte()}) }

// Expect blocks until p matches, a deadline elapses, or EOF is observed.
func (s *Session) Expect(p pattern.Pattern) (matcher.MatchOutcome, error) {
	return s.ExpectAny(pattern.FromPatterns(p))
}

// ExpectAny blocks until any member of set matches.
func (s *Session) ExpectAny(set *pattern.Set) (matcher.MatchOutcome, error) {
	if err := s.checkUsable(); err != nil {
		return matcher.MatchOutcome{}, err
	}
	out, err := s.engine.ExpectAny(set)
	if err != nil {
		if expect.IsEOF(err) {
			s.state = StateClosing
		}
		return matcher.MatchOutcome{}, err
	}
	return out.MatchOutcome, nil
}

// ExpectTimeout expects p with an explicit timeout overriding the
// session's default.
func (s *Session) ExpectTimeout(p pattern.Pattern, timeout time.Duration) (matcher.MatchOutcome, error) {
	set := pattern.FromPatterns(p, pattern.TimeoutPattern(timeout))
	return s.ExpectAny(set)
}

// Buffer returns the current unconsumed buffer contents.
func (s *Session) Buffer() string { return s.engine.Matcher.BufferString() }

// ClearBuffer empties the buffer.
func (s *Session) ClearBuffer() { s.engine.Matcher.Clear() }

// Resize changes the PTY's dimensions.
func (s *Session) Resize(cols, rows int) error {
	s.config.Dimensions = Dimensions{Cols: cols, Rows: rows}
	if s.screen != nil {
		s.screen.Resize(rows, cols)
	}
	return s.transport.Resize(cols, rows)
}

// Signal delivers sig to the child process.
func (s *Session) Signal(sig transport.Signal) error { return s.transport.Signal(sig) }

// Wait blocks until the process exits.
func (s *Session) Wait() (ExitStatus, error) {
	st, err := s.transport.Wait()
	if err != nil {
		return ExitStatus{}, err
	}
	s.state = StateExited
	return convertExitStatus(st), nil
}

// TryWait reports whether the process has already exited, without blocking.
func (s *Session) TryWait() (ExitStatus, bool, error) {
	st, exited, err := s.transport.TryWait()
	if err != nil {
		return ExitStatus{}, false, err
	}
	if exited {
		s.state = StateExited
	}
	return convertExitStatus(st), exited, nil
}

// Close marks the session closed and releases the underlying transport.
func (s *Session) Close() error {
	s.state = StateClosing
	err := s.transport.Close()
	s.state = StateClosed
	return err
}

// Pid returns the child process's PID.
func (s *Session) Pid() int { return s.transport.Pid() }

// Transport exposes the underlying transport for interact() wiring.
// Use with caution: direct access bypasses session state tracking.
func (s *Session) Transport() transport.Transport { return s.transport }

func convertExitStatus(st transport.ExitStatus) ExitStatus {
	switch st.Kind {
	case transport.ExitExited:
		return ExitStatus{Kind: ExitExited, Code: st.Code}
	case transport.ExitSignaled:
		return ExitStatus{Kind: ExitSignaled, Signal: st.Signal}
	default:
		return ExitStatus{Kind: ExitUnknown}
	}
}
