package screen

import (
	"regexp"
	"strings"
)

// Region is a rectangular, inclusive-bounds selection of the grid.
type Region struct {
	Top, Left, Bottom, Right int
}

// NewRegion builds a region from explicit bounds.
func NewRegion(top, left, bottom, right int) Region {
	return Region{Top: top, Left: left, Bottom: bottom, Right: right}
}

// CellRegion selects a single cell.
func CellRegion(row, col int) Region { return NewRegion(row, col, row, col) }

// RowRegion selects an entire row.
func RowRegion(row, cols int) Region { return NewRegion(row, 0, row, maxInt(cols-1, 0)) }

// FullRegion selects the entire rows x cols grid.
func FullRegion(rows, cols int) Region { return NewRegion(0, 0, maxInt(rows-1, 0), maxInt(cols-1, 0)) }

// Width reports the region's column count.
func (r Region) Width() int { return r.Right - r.Left + 1 }

// Height reports the region's row count.
func (r Region) Height() int { return r.Bottom - r.Top + 1 }

// Contains reports whether (row, col) falls inside the region.
func (r Region) Contains(row, col int) bool {
	return row >= r.Top && row <= r.Bottom && col >= r.Left && col <= r.Right
}

// Clamp restricts the region to fit within maxRows x maxCols.
func (r Region) Clamp(maxRows, maxCols int) Region {
	return Region{
		Top:    minInt(r.Top, maxInt(maxRows-1, 0)),
		Left:   minInt(r.Left, maxInt(maxCols-1, 0)),
		Bottom: minInt(r.Bottom, maxInt(maxRows-1, 0)),
		Right:  minInt(r.Right, maxInt(maxCols-1, 0)),
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Query reads text and matches content out of a Buffer, optionally
// restricted to a Region (spec.md §4.6 "ScreenQuery").
type Query struct {
	buf    *Buffer
	region *Region
}

// NewQuery creates a query over the entire buffer.
func NewQuery(buf *Buffer) *Query { return &Query{buf: buf} }

// Region restricts the query to r, clamped to the buffer's bounds.
func (q *Query) Region(r Region) *Query {
	clamped := r.Clamp(q.buf.Rows(), q.buf.Cols())
	return &Query{buf: q.buf, region: &clamped}
}

// Row restricts the query to a single row.
func (q *Query) Row(row int) *Query {
	return q.Region(RowRegion(row, q.buf.Cols()))
}

func (q *Query) effectiveRegion() Region {
	if q.region != nil {
		return *q.region
	}
	return FullRegion(q.buf.Rows(), q.buf.Cols())
}

// Text renders the region as newline-joined rows, each right-trimmed of
// trailing whitespace.
func (q *Query) Text() string {
	r := q.effectiveRegion()
	lines := make([]string, 0, r.Height())
	for row := r.Top; row <= r.Bottom; row++ {
		lines = append(lines, strings.TrimRight(q.rowText(row, r), " \t"))
	}
	return strings.Join(lines, "\n")
}

// TrimmedText is Text with every line right-trimmed and trailing blank
// lines removed.
func (q *Query) TrimmedText() string {
	lines := strings.Split(q.Text(), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func (q *Query) rowText(row int, r Region) string {
	if row < r.Top || row > r.Bottom {
		return ""
	}
	var sb strings.Builder
	for col := r.Left; col <= r.Right; col++ {
		if c, ok := q.buf.Cell(row, col); ok {
			sb.WriteRune(c.Char)
		}
	}
	return sb.String()
}

// Find returns the (row, col) of the first occurrence of needle within the
// region, scanning row-major.
func (q *Query) Find(needle string) (row, col int, ok bool) {
	r := q.effectiveRegion()
	for row := r.Top; row <= r.Bottom; row++ {
		line := q.rowText(row, r)
		if idx := strings.Index(line, needle); idx >= 0 {
			return row, r.Left + idx, true
		}
	}
	return 0, 0, false
}

// Point is a single (row, col) match location.
type Point struct{ Row, Col int }

// FindAll returns every occurrence of needle within the region, row-major,
// left-to-right, non-overlapping.
func (q *Query) FindAll(needle string) []Point {
	r := q.effectiveRegion()
	var results []Point
	for row := r.Top; row <= r.Bottom; row++ {
		line := q.rowText(row, r)
		start := 0
		for {
			idx := strings.Index(line[start:], needle)
			if idx < 0 {
				break
			}
			results = append(results, Point{Row: row, Col: r.Left + start + idx})
			step := len(needle)
			if step == 0 {
				step = 1
			}
			start += idx + step
			if start > len(line) {
				break
			}
		}
	}
	return results
}

// RegexMatch is a regex search hit: location plus the matched substring.
type RegexMatch struct {
	Row, Col int
	Text     string
}

// FindRegex searches the region's joined text for the first regexp match.
func (q *Query) FindRegex(re *regexp.Regexp) (RegexMatch, bool) {
	r := q.effectiveRegion()
	text := q.Text()
	loc := re.FindStringIndex(text)
	if loc == nil {
		return RegexMatch{}, false
	}
	row := r.Top
	bytePos := 0
	for _, line := range strings.Split(text, "\n") {
		lineBytes := len(line) + 1
		if bytePos+lineBytes > loc[0] {
			col := r.Left + (loc[0] - bytePos)
			return RegexMatch{Row: row, Col: col, Text: text[loc[0]:loc[1]]}, true
		}
		bytePos += lineBytes
		row++
	}
	return RegexMatch{}, false
}

// Contains reports whether the region contains needle as a literal.
func (q *Query) Contains(needle string) bool {
	_, _, ok := q.Find(needle)
	return ok
}

// Matches reports whether re matches anywhere in the region's text.
func (q *Query) Matches(re *regexp.Regexp) bool {
	return re.MatchString(q.Text())
}

// Cells returns every cell within the region, row-major.
func (q *Query) Cells() []Cell {
	r := q.effectiveRegion()
	cells := make([]Cell, 0, r.Width()*r.Height())
	for row := r.Top; row <= r.Bottom; row++ {
		for col := r.Left; col <= r.Right; col++ {
			if c, ok := q.buf.Cell(row, col); ok {
				cells = append(cells, c)
			}
		}
	}
	return cells
}

// CountNonEmpty returns the number of non-blank cells in the region.
func (q *Query) CountNonEmpty() int {
	n := 0
	for _, c := range q.Cells() {
		if !c.IsEmpty() {
			n++
		}
	}
	return n
}

// IsEmpty reports whether every cell in the region is blank.
func (q *Query) IsEmpty() bool {
	for _, c := range q.Cells() {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// Query returns a fresh Query over the whole buffer — the entry point
// callers reach for (mirrors buf.query() in the distilled source).
func (b *Buffer) Query() *Query { return NewQuery(b) }
