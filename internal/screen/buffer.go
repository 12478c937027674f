package screen

import (
	"fmt"

	"github.com/vito/midterm"
)

// Buffer is the rows x cols cell grid plus cursor/style/scroll-region state
// (spec.md §3 "Screen owns an rows×cols flat grid..."). The grid, cursor
// movement, scroll regions, and SGR rendition are all maintained by
// github.com/vito/midterm's Terminal — the same VT100 engine the teacher
// drives in internal/virtualterminal/vt.go via Vt.Write/Vt.Resize. Buffer's
// own job is narrower: track DECTCEM cursor visibility (which midterm's
// grid API doesn't surface) via the Parser, and translate midterm's
// Content/Format grid into this package's Cell/Style types for ScreenQuery.
type Buffer struct {
	term        *midterm.Terminal
	rows, cols  int
	cursorShown bool
	parser      *Parser
}

// NewBuffer creates a blank rows x cols buffer with the cursor at (0,0) and
// a visible cursor.
func NewBuffer(rows, cols int) *Buffer {
	return &Buffer{
		term:        midterm.NewTerminal(rows, cols),
		rows:        rows,
		cols:        cols,
		cursorShown: true,
		parser:      NewParser(),
	}
}

// Rows reports the buffer's row count.
func (b *Buffer) Rows() int { return b.rows }

// Cols reports the buffer's column count.
func (b *Buffer) Cols() int { return b.cols }

// Cell returns the cell at (row, col), or the zero Cell if out of bounds.
func (b *Buffer) Cell(row, col int) (Cell, bool) {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		return Cell{}, false
	}
	if row >= len(b.term.Content) {
		return blankCell, true
	}
	line := b.term.Content[row]
	ch := ' '
	if col < len(line) {
		ch = rune(line[col])
		if ch == 0 {
			ch = ' '
		}
	}
	return b.styleAt(row, col).apply(ch), true
}

// styleAt derives this package's Style from the Format region covering
// (row, col). midterm's Format doesn't expose structured FG/BG/attribute
// fields directly, only Render() (an ANSI SGR string); parseSGRText decodes
// that string with the same parameter table spec.md §4.6 requires for SGR,
// so the decoding logic lives here rather than trusting an unverified
// field layout on a type this module doesn't define.
func (b *Buffer) styleAt(row, col int) Style {
	if row >= len(b.term.Content) {
		return Style{}
	}
	pos := 0
	for region := range b.term.Format.Regions(row) {
		end := pos + region.Size
		if col >= pos && col < end {
			return parseSGRText(region.F.Render())
		}
		pos = end
	}
	return Style{}
}

// Cursor returns the current cursor position and visibility.
func (b *Buffer) Cursor() (row, col int, visible bool) {
	return b.term.Cursor.Y, b.term.Cursor.X, b.cursorShown
}

// Write feeds raw bytes (as read from a Transport) to midterm's Terminal
// for grid/cursor/SGR interpretation, and in parallel through this
// package's own Parser to track the one piece of state midterm doesn't
// surface: DECTCEM cursor show/hide.
func (b *Buffer) Write(data []byte) {
	b.parser.Feed(data, b.observe)
	b.term.Write(data)
}

func (b *Buffer) observe(ev ParseResult) {
	if ev.IsSequence && ev.Sequence.Kind == SeqDECTCEM {
		b.cursorShown = ev.Sequence.Show
	}
}

// WriteChar writes a single rune at the cursor — a convenience for test
// fixtures and ScreenQuery setup; real byte streams go through Write.
func (b *Buffer) WriteChar(r rune) {
	b.Write([]byte(string(r)))
}

// Goto places the cursor directly via a CUP sequence, clamped to bounds —
// used by tests and by ScreenQuery fixtures that build a buffer from plain
// text.
func (b *Buffer) Goto(row, col int) {
	row = clamp(row, 0, b.rows-1)
	col = clamp(col, 0, b.cols-1)
	fmt.Fprintf(b.term, "\x1b[%d;%dH", row+1, col+1)
}

// Resize preserves the top-left window and clamps the cursor inside the
// new bounds (spec.md §4.6 "Resize"); midterm.Terminal.Resize handles the
// grid reflow.
func (b *Buffer) Resize(rows, cols int) {
	b.term.Resize(rows, cols)
	b.rows, b.cols = rows, cols
}

// Reset clears the grid and returns cursor/style/scroll-region to defaults
// via a full terminal reset (RIS) sequence.
func (b *Buffer) Reset() {
	b.term.Write([]byte("\x1bc"))
	b.cursorShown = true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
