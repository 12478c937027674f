//go:build windows

package transport

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"
	"unsafe"

	"github.com/creack/pty"
	"golang.org/x/sys/windows"
)

// ptyTransport is the Windows Transport implementation. It delegates the
// actual ConPTY plumbing to github.com/creack/pty (the teacher's own PTY
// dependency, which already implements CreatePseudoConsole internally on
// this platform) and layers on top the two pieces spec.md §4.1 calls out
// as Windows-specific requirements that creack/pty does not provide on its
// own: exact MSVC argv quoting (see quoting_windows.go, ported from
// windows/child.rs's escape_argument) and a Job Object with
// kill-on-job-close so the child tree dies when the transport is closed,
// mirroring windows/child.rs's terminate_impl/JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE.
type ptyTransport struct {
	mu     sync.Mutex
	ptmx   *os.File
	cmd    *exec.Cmd
	dims   Dimensions
	job    windows.Handle
	hasJob bool

	waitMu   sync.Mutex
	waited   bool
	exitStat ExitStatus
	waitErr  error
}

// Spawn starts program with args under a ConPTY sized per cfg.Dimensions,
// assigning the child to a kill-on-close Job Object.
func Spawn(program string, args []string, cfg Config) (Transport, error) {
	if err := validateNoNUL(program, args); err != nil {
		return nil, err
	}

	cmd := exec.Command(program, args...)
	if cfg.WorkingDir != "" {
		cmd.Dir = cfg.WorkingDir
	}
	cmd.Env = buildEnv(cfg)
	// os/exec on Windows joins Args naively; override with MSVC-correct
	// quoting via SysProcAttr.CmdLine (testable property 8).
	cmd.SysProcAttr = &windows.SysProcAttr{CmdLine: BuildCommandLine(program, args)}

	cols, rows := cfg.Dimensions.Cols, cfg.Dimensions.Rows
	if cols <= 0 {
		cols = 80
	}
	if rows <= 0 {
		rows = 24
	}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return nil, &SpawnError{Kind: classifySpawnErr(err), Err: err}
	}

	t := &ptyTransport{ptmx: ptmx, cmd: cmd, dims: Dimensions{Cols: cols, Rows: rows}}
	if job, err := assignKillOnCloseJob(cmd.Process.Pid); err == nil {
		t.job = job
		t.hasJob = true
	}
	return t, nil
}

func classifySpawnErr(err error) SpawnErrorKind {
	if os.IsNotExist(err) {
		return SpawnCommandNotFound
	}
	if os.IsPermission(err) {
		return SpawnPermissionDenied
	}
	return SpawnIo
}

func buildEnv(cfg Config) []string {
	var base []string
	if cfg.InheritEnv {
		base = os.Environ()
	}
	for k, v := range cfg.Env {
		base = append(base, k+"="+v)
	}
	return base
}

// assignKillOnCloseJob creates a Job Object with
// JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE and assigns pid to it, matching
// windows/child.rs's job-object setup.
func assignKillOnCloseJob(pid int) (windows.Handle, error) {
	job, err := windows.CreateJobObject(nil, nil)
	if err != nil {
		return 0, err
	}

	info := windows.JOBOBJECT_EXTENDED_LIMIT_INFORMATION{
		BasicLimitInformation: windows.JOBOBJECT_BASIC_LIMIT_INFORMATION{
			LimitFlags: windows.JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE,
		},
	}
	if _, err := windows.SetInformationJobObject(
		job,
		windows.JobObjectExtendedLimitInformation,
		uintptr(unsafe.Pointer(&info)),
		uint32(unsafe.Sizeof(info)),
	); err != nil {
		windows.CloseHandle(job)
		return 0, err
	}

	proc, err := windows.OpenProcess(windows.PROCESS_SET_QUOTA|windows.PROCESS_TERMINATE, false, uint32(pid))
	if err != nil {
		windows.CloseHandle(job)
		return 0, err
	}
	defer windows.CloseHandle(proc)

	if err := windows.AssignProcessToJobObject(job, proc); err != nil {
		windows.CloseHandle(job)
		return 0, err
	}
	return job, nil
}

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
		return ReadResult{EOF: true}, nil
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

func (t *ptyTransport) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ptmx.Write(p)
}

func (t *ptyTransport) Flush() error { return nil }

func (t *ptyTransport) Resize(cols, rows int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := pty.Setsize(t.ptmx, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)}); err != nil {
		return err
	}
	t.dims = Dimensions{Cols: cols, Rows: rows}
	return nil
}

// Signal maps the abstract signal set to console control events for
// Interrupt/Quit and to process-tree termination for Terminate/Kill/
// Hangup; WindowChange is a no-op on Windows (spec.md §4.1, §9 "graceful
// degradation").
func (t *ptyTransport) Signal(sig Signal) error {
	switch sig {
	case SignalInterrupt:
		return windows.GenerateConsoleCtrlEvent(windows.CTRL_C_EVENT, uint32(t.cmd.Process.Pid))
	case SignalQuit:
		return windows.GenerateConsoleCtrlEvent(windows.CTRL_BREAK_EVENT, uint32(t.cmd.Process.Pid))
	case SignalTerminate, SignalKill, SignalHangup:
		return t.terminate()
	case SignalWindowChange:
		return nil
	default:
		return fmt.Errorf("transport: unsupported signal %s", sig)
	}
}

func (t *ptyTransport) terminate() error {
	if t.hasJob {
		return windows.TerminateJobObject(t.job, 1)
	}
	return t.cmd.Process.Kill()
}

func (t *ptyTransport) Wait() (ExitStatus, error) {
	t.waitMu.Lock()
	defer t.waitMu.Unlock()
	if t.waited {
		return t.exitStat, t.waitErr
	}
	err := t.cmd.Wait()
	t.waited = true
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			t.exitStat = ExitStatus{Kind: ExitExited, Code: exitErr.ExitCode()}
			t.waitErr = nil
			return t.exitStat, nil
		}
		t.waitErr = err
		return ExitStatus{Kind: ExitUnknown}, err
	}
	t.exitStat = ExitStatus{Kind: ExitExited, Code: t.cmd.ProcessState.ExitCode()}
	return t.exitStat, nil
}

func (t *ptyTransport) TryWait() (ExitStatus, bool, error) {
	t.waitMu.Lock()
	defer t.waitMu.Unlock()
	if t.waited {
		return t.exitStat, true, t.waitErr
	}
	if t.cmd.ProcessState != nil {
		t.waited = true
		t.exitStat = ExitStatus{Kind: ExitExited, Code: t.cmd.ProcessState.ExitCode()}
		return t.exitStat, true, nil
	}
	return ExitStatus{}, false, nil
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
	if t.hasJob {
		windows.CloseHandle(t.job)
	}
	return t.ptmx.Close()
}
