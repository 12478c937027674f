//go:build !windows

package interact

import (
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"
)

// currentTerminalSize reads stdout's current size, if it's a terminal.
func currentTerminalSize() (Size, bool) {
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return Size{}, false
	}
	return Size{Rows: rows, Cols: cols}, true
}

// watchResize returns a channel fed on every SIGWINCH. The returned
// channel is never closed; the runner's goroutine leaks with the process,
// matching the same-lifetime assumption vt.go's PipeOutput makes about its
// reader goroutine.
func watchResize() <-chan Size {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGWINCH)
	out := make(chan Size, 1)
	go func() {
		for range sig {
			if sz, ok := currentTerminalSize(); ok {
				out <- sz
			}
		}
	}()
	return out
}
