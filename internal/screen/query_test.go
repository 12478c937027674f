package screen

import "testing"

func makeBuffer(t *testing.T, lines ...string) *Buffer {
	t.Helper()
	maxLen := 0
	for _, l := range lines {
		if len(l) > maxLen {
			maxLen = len(l)
		}
	}
	b := NewBuffer(len(lines), maxLen+1)
	for row, l := range lines {
		b.Goto(row, 0)
		for _, r := range l {
			b.WriteChar(r)
		}
	}
	return b
}

func TestQueryText(t *testing.T) {
	b := makeBuffer(t, "Hello", "World")
	if got := b.Query().Text(); got != "Hello\nWorld" {
		t.Fatalf("Text() = %q", got)
	}
}

func TestQueryFind(t *testing.T) {
	b := makeBuffer(t, "Hello World")
	row, col, ok := b.Query().Find("World")
	if !ok || row != 0 || col != 6 {
		t.Fatalf("Find() = (%d,%d,%v), want (0,6,true)", row, col, ok)
	}
}

func TestQueryContains(t *testing.T) {
	b := makeBuffer(t, "Login: ")
	if !b.Query().Contains("Login") {
		t.Fatal("expected Contains(\"Login\") true")
	}
	if b.Query().Contains("Password") {
		t.Fatal("expected Contains(\"Password\") false")
	}
}

func TestQueryRegion(t *testing.T) {
	b := makeBuffer(t, "ABCDE", "FGHIJ", "KLMNO")
	text := b.Query().Region(NewRegion(0, 1, 1, 3)).Text()
	if text != "BCD\nGHI" {
		t.Fatalf("region text = %q, want %q", text, "BCD\nGHI")
	}
}

func TestRegionContains(t *testing.T) {
	r := NewRegion(5, 10, 15, 20)
	if !r.Contains(10, 15) {
		t.Fatal("expected (10,15) inside region")
	}
	if r.Contains(4, 15) {
		t.Fatal("expected (4,15) outside region")
	}
	if r.Contains(10, 21) {
		t.Fatal("expected (10,21) outside region")
	}
}

func TestQueryFindAllNonOverlapping(t *testing.T) {
	b := makeBuffer(t, "aXaXa")
	points := b.Query().FindAll("a")
	if len(points) != 3 {
		t.Fatalf("found %d matches, want 3", len(points))
	}
}

func TestQueryCountNonEmptyAndIsEmpty(t *testing.T) {
	b := NewBuffer(1, 5)
	if !b.Query().IsEmpty() {
		t.Fatal("expected fresh buffer to be empty")
	}
	b.Write([]byte("hi"))
	if b.Query().IsEmpty() {
		t.Fatal("expected non-empty after write")
	}
	if n := b.Query().CountNonEmpty(); n != 2 {
		t.Fatalf("CountNonEmpty() = %d, want 2", n)
	}
}
