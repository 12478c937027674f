package screen

import "testing"

func textCell(b *Buffer, row, col int) rune {
	c, _ := b.Cell(row, col)
	return c.Char
}

func TestWriteAndCursorPosition(t *testing.T) {
	b := NewBuffer(24, 80)
	b.Write([]byte("Hello\x1b[1;1HWorld"))

	if !b.Query().Contains("World") {
		t.Fatal("expected buffer to contain \"World\"")
	}
	row, col, _ := b.Cursor()
	if row != 0 || col != 5 {
		t.Fatalf("cursor = (%d,%d), want (0,5)", row, col)
	}
	if got := textCell(b, 0, 0); got != 'W' {
		t.Fatalf("cell(0,0) = %q, want 'W'", got)
	}
}

func TestNewlineWrapsAndScrolls(t *testing.T) {
	b := NewBuffer(2, 80)
	b.Write([]byte("first\nsecond\nthird"))

	text := b.Query().TrimmedText()
	want := "second\nthird"
	if text != want {
		t.Fatalf("text = %q, want %q", text, want)
	}
}

func TestEraseLineToEnd(t *testing.T) {
	b := NewBuffer(1, 10)
	b.Write([]byte("abcdefghi"))
	b.Goto(0, 3)
	b.Write([]byte("\x1b[K"))

	text := b.Query().Row(0).Text()
	if text != "abc" {
		t.Fatalf("text = %q, want %q", text, "abc")
	}
}

func TestResizePreservesTopLeftAndClampsCursor(t *testing.T) {
	b := NewBuffer(5, 5)
	b.Write([]byte("AB\nCD"))
	b.Goto(4, 4)

	b.Resize(3, 3)

	if b.Rows() != 3 || b.Cols() != 3 {
		t.Fatalf("dims = (%d,%d), want (3,3)", b.Rows(), b.Cols())
	}
	if got := textCell(b, 0, 0); got != 'A' {
		t.Fatalf("cell(0,0) = %q, want 'A'", got)
	}
	row, col, _ := b.Cursor()
	if row >= 3 || col >= 3 {
		t.Fatalf("cursor (%d,%d) not clamped to new bounds", row, col)
	}
}

func TestSGRColorAndAttrs(t *testing.T) {
	b := NewBuffer(1, 20)
	b.Write([]byte("\x1b[1;31mred bold\x1b[0m"))

	c, _ := b.Cell(0, 0)
	if c.Attrs&AttrBold == 0 {
		t.Fatal("expected bold attribute")
	}
	if c.FG.Mode != ColorIndexed || c.FG.Value != 1 {
		t.Fatalf("fg = %+v, want indexed red", c.FG)
	}
}

func TestDECTCEMHidesAndShowsCursor(t *testing.T) {
	b := NewBuffer(5, 5)
	b.Write([]byte("\x1b[?25l"))
	if _, _, visible := b.Cursor(); visible {
		t.Fatal("expected cursor hidden")
	}
	b.Write([]byte("\x1b[?25h"))
	if _, _, visible := b.Cursor(); !visible {
		t.Fatal("expected cursor visible")
	}
}

func TestScrollRegionConfinesScroll(t *testing.T) {
	b := NewBuffer(5, 5)
	b.Write([]byte("0\n1\n2\n3\n4"))
	b.Write([]byte("\x1b[2;4r"))
	b.Goto(3, 0)
	b.Write([]byte("\nZ"))

	if got := textCell(b, 0, 0); got != '0' {
		t.Fatalf("row 0 disturbed outside scroll region: %q", got)
	}
	if got := textCell(b, 4, 0); got != '4' {
		t.Fatalf("row 4 disturbed outside scroll region: %q", got)
	}
}

func TestDiffDetectsChanges(t *testing.T) {
	before := NewBuffer(2, 5)
	before.Write([]byte("abcde"))

	after := NewBuffer(2, 5)
	after.Write([]byte("abXde"))
	after.Goto(0, 0)
	after.Write([]byte("\x1b[1m"))

	changes := Diff(before, after)
	if len(changes) == 0 {
		t.Fatal("expected at least one change")
	}
	found := false
	for _, c := range changes {
		if c.Row == 0 && c.Col == 2 && c.Kind == ChangeChar {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a ChangeChar at (0,2)")
	}
}
