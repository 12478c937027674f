// Package screen implements a VT100/ANSI subset sufficient for pattern
// matching against terminal output (spec.md §4.6): a cell-grid buffer
// backed by github.com/vito/midterm (the teacher's github.com/dcosson/midterm
// fork) for cursor/scroll-region/SGR interpretation, a thin named-state
// Parser for the DECTCEM cursor-visibility signal midterm's grid API
// doesn't expose, and a query facade. Full xterm rendering fidelity is
// explicitly out of scope (spec.md §1 Non-goals, §9 "aim for correctness on
// typical CLI output").
package screen

// Attr is a bitset of SGR text attributes.
type Attr uint16

const (
	AttrBold Attr = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrBlink
	AttrInverse
	AttrHidden
	AttrStrikethrough
)

// ColorMode tags how a Color value should be interpreted.
type ColorMode int

const (
	ColorDefault ColorMode = iota
	ColorIndexed           // Value is a 0-255 palette index (includes basic/bright 8-color ranges folded to 0-15)
	ColorRGB                // Value packs 0xRRGGBB
)

// Color is a foreground or background color in one of three SGR forms.
type Color struct {
	Mode  ColorMode
	Value uint32
}

// DefaultColor is the "no color set / terminal default" value.
var DefaultColor = Color{Mode: ColorDefault}

// Cell is one character position on the screen: a rune plus its rendition
// at the time it was written (spec.md §3 "Screen cell").
type Cell struct {
	Char  rune
	FG    Color
	BG    Color
	Attrs Attr
}

// IsEmpty reports whether the cell holds no visible content — used by
// ScreenQuery.CountNonEmpty/IsEmpty.
func (c Cell) IsEmpty() bool {
	return c.Char == 0 || c.Char == ' '
}

// blankCell is what a freshly-allocated or erased cell looks like.
var blankCell = Cell{Char: ' '}

// Style is the cursor's current graphic rendition register, applied to
// every cell written until the next SGR sequence changes it.
type Style struct {
	FG, BG Color
	Attrs  Attr
}

func (s Style) apply(r rune) Cell {
	return Cell{Char: r, FG: s.FG, BG: s.BG, Attrs: s.Attrs}
}
