//go:build windows

package interact

import (
	"os"

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

// watchResize returns nil: Windows has no SIGWINCH equivalent wired up
// here, matching the distilled source's "resize detection is not
// currently supported" note for this platform. A nil channel simply never
// fires in the runner's select.
func watchResize() <-chan Size {
	return nil
}
