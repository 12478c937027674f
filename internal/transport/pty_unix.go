//go:build !windows

package transport

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
)

// ptyTransport is the POSIX Transport implementation, grounded on
// internal/virtualterminal/vt.go's StartPTY/PipeOutput/Resize wiring and on
// the distilled source's unix/child.rs spawn_child (setsid + TIOCSCTTY via
// creack/pty's Setsid/Setctty SysProcAttr fields, which StartWithSize sets
// for us) and backend/pty.rs (read/write/resize/signal/wait surface).
type ptyTransport struct {
	mu   sync.Mutex // serializes writes/resizes, per spec.md §9 "never split reader/writer without a lock"
	ptmx *os.File
	cmd  *exec.Cmd
	dims Dimensions

	waitMu   sync.Mutex
	waited   bool
	exitStat ExitStatus
	waitErr  error
}

// Spawn starts program with args under a PTY sized per cfg.Dimensions. It
// validates command/args for NUL bytes before touching any process state
// (spec.md §4.1 step 1).
func Spawn(program string, args []string, cfg Config) (Transport, error) {
	if err := validateNoNUL(program, args); err != nil {
		return nil, err
	}

	cmd := exec.Command(program, args...)
	if cfg.WorkingDir != "" {
		cmd.Dir = cfg.WorkingDir
	}
	cmd.Env = buildEnv(cfg)

	cols, rows := cfg.Dimensions.Cols, cfg.Dimensions.Rows
	if cols <= 0 {
		cols = 80
	}
	if rows <= 0 {
		rows = 24
	}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &SpawnError{Kind: SpawnCommandNotFound, Err: err}
		}
		if os.IsPermission(err) {
			return nil, &SpawnError{Kind: SpawnPermissionDenied, Err: err}
		}
		return nil, &SpawnError{Kind: SpawnIo, Err: err}
	}

	return &ptyTransport{
		ptmx: ptmx,
		cmd:  cmd,
		dims: Dimensions{Cols: cols, Rows: rows},
	}, nil
}

func buildEnv(cfg Config) []string {
	var base []string
	if cfg.InheritEnv {
		base = os.Environ()
	}
	for k, v := range cfg.Env {
		base = append(base, k+"="+v)
	}
	if cfg.Dimensions.Cols > 0 {
		base = append(base, fmt.Sprintf("COLUMNS=%d", cfg.Dimensions.Cols))
	}
	if cfg.Dimensions.Rows > 0 {
		base = append(base, fmt.Sprintf("LINES=%d", cfg.Dimensions.Rows))
	}
	return base
}

// Read blocks for at most timeout, returning the three-valued ReadResult
// (spec.md §9 Open Question 1) instead of an ambiguous zero-byte read.
func (t *ptyTransport) Read(buf []byte, timeout time.Duration) (ReadResult, error) {
	if timeout > 0 {
		_ = t.ptmx.SetReadDeadline(time.Now().Add(timeout))
		defer t.ptmx.SetReadDeadline(time.Time{})
	}

	n, err := t.ptmx.Read(buf)
	if err != nil {
		if n > 0 {
			return ReadResult{N: n}, nil
		}
		if isTimeout(err) {
			return ReadResult{TimedOut: true}, nil
		}
		if err.Error() == "EOF" || isClosedOrHangup(err) {
			return ReadResult{EOF: true}, nil
		}
		return ReadResult{}, err
	}
	if n == 0 {
		return ReadResult{EOF: true}, nil
	}
	return ReadResult{N: n}, nil
}

func isTimeout(err error) bool {
	type timeoutErr interface{ Timeout() bool }
	te, ok := err.(timeoutErr)
	return ok && te.Timeout()
}

func isClosedOrHangup(err error) bool {
	return err == syscall.EIO || err == os.ErrClosed
}

func (t *ptyTransport) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ptmx.Write(p)
}

func (t *ptyTransport) Flush() error {
	return t.ptmx.Sync()
}

func (t *ptyTransport) Resize(cols, rows int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := pty.Setsize(t.ptmx, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)}); err != nil {
		return err
	}
	t.dims = Dimensions{Cols: cols, Rows: rows}
	return nil
}

func (t *ptyTransport) Signal(sig Signal) error {
	if t.cmd.Process == nil {
		return fmt.Errorf("transport: process not started")
	}
	return t.cmd.Process.Signal(toUnixSignal(sig))
}

func toUnixSignal(sig Signal) syscall.Signal {
	switch sig {
	case SignalInterrupt:
		return syscall.SIGINT
	case SignalQuit:
		return syscall.SIGQUIT
	case SignalTerminate:
		return syscall.SIGTERM
	case SignalKill:
		return syscall.SIGKILL
	case SignalHangup:
		return syscall.SIGHUP
	case SignalWindowChange:
		return syscall.SIGWINCH
	default:
		return syscall.SIGTERM
	}
}

func (t *ptyTransport) Wait() (ExitStatus, error) {
	t.waitMu.Lock()
	defer t.waitMu.Unlock()
	if t.waited {
		return t.exitStat, t.waitErr
	}
	err := t.cmd.Wait()
	t.waited = true
	t.exitStat, t.waitErr = classifyWait(t.cmd, err)
	return t.exitStat, t.waitErr
}

func (t *ptyTransport) TryWait() (ExitStatus, bool, error) {
	t.waitMu.Lock()
	defer t.waitMu.Unlock()
	if t.waited {
		return t.exitStat, true, t.waitErr
	}
	if t.cmd.ProcessState != nil {
		status, err := classifyWait(t.cmd, nil)
		t.waited = true
		t.exitStat = status
		return status, true, err
	}
	return ExitStatus{}, false, nil
}

func classifyWait(cmd *exec.Cmd, waitErr error) (ExitStatus, error) {
	if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			return statusFromProcessState(exitErr.ProcessState), nil
		}
		return ExitStatus{Kind: ExitUnknown}, waitErr
	}
	if cmd.ProcessState == nil {
		return ExitStatus{Kind: ExitUnknown}, nil
	}
	return statusFromProcessState(cmd.ProcessState), nil
}

func statusFromProcessState(ps *os.ProcessState) ExitStatus {
	ws, ok := ps.Sys().(syscall.WaitStatus)
	if !ok {
		return ExitStatus{Kind: ExitExited, Code: ps.ExitCode()}
	}
	switch {
	case ws.Exited():
		return ExitStatus{Kind: ExitExited, Code: ws.ExitStatus()}
	case ws.Signaled():
		return ExitStatus{Kind: ExitSignaled, Signal: int(ws.Signal())}
	default:
		return ExitStatus{Kind: ExitUnknown}
	}
}

func (t *ptyTransport) Pid() int {
	if t.cmd.Process == nil {
		return 0
	}
	return t.cmd.Process.Pid
}

func (t *ptyTransport) Dimensions() Dimensions {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dims
}

func (t *ptyTransport) Close() error {
	return t.ptmx.Close()
}
