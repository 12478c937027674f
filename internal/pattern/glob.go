package pattern

// globMatch reports whether text anywhere contains a substring matching the
// full shell glob pattern (not just a full-string match), returning the
// [start, end) byte range of the earliest such match. This generalizes the
// distilled source's matcher.rs, which only recognized `*prefix`, `suffix*`,
// `*inner*`, and literal text — here `*`, `?`, and `[...]` character
// classes (with `[!...]`/`[^...]` negation) are supported anywhere in the
// pattern, per spec.md's Open Question 2.
//
// Because glob patterns are not anchored by default in this domain (expect
// output is a growing stream, not a single filename), matching is defined
// as: does some substring of text, starting at some offset, satisfy the
// pattern end-to-end. The earliest viable start position wins, consistent
// with Matcher's earliest-start tie-break rule.
func globMatch(p, text string) (start, end int, ok bool) {
	pr := []rune(p)
	tr := []rune(text)

	for s := 0; s <= len(tr); s++ {
		if e, matched := matchFrom(pr, 0, tr, s); matched {
			return runeIdxToByte(text, s), runeIdxToByte(text, e), true
		}
	}
	return 0, 0, false
}

// matchFrom attempts to match pattern[pi:] against text[ti:] to the end of
// text, returning the text index reached on success. This is the
// generalized state machine: `*` tries every possible consumed length via
// backtracking, `?` and literal/class fragments consume exactly one rune.
func matchFrom(p []rune, pi int, t []rune, ti int) (int, bool) {
	for pi < len(p) {
		switch p[pi] {
		case '*':
			// Collapse consecutive '*' (degenerate but harmless).
			for pi < len(p) && p[pi] == '*' {
				pi++
			}
			if pi == len(p) {
				return len(t), true
			}
			for skip := ti; skip <= len(t); skip++ {
				if end, ok := matchFrom(p, pi, t, skip); ok {
					return end, true
				}
			}
			return ti, false

		case '?':
			if ti >= len(t) {
				return ti, false
			}
			pi++
			ti++

		case '[':
			cls, next, closed := parseClass(p, pi)
			if !closed {
				// Malformed class: treat '[' as a literal character.
				if ti >= len(t) || t[ti] != '[' {
					return ti, false
				}
				pi++
				ti++
				continue
			}
			if ti >= len(t) || !cls.matches(t[ti]) {
				return ti, false
			}
			pi = next
			ti++

		default:
			if ti >= len(t) || t[ti] != p[pi] {
				return ti, false
			}
			pi++
			ti++
		}
	}
	return ti, true
}

type charClass struct {
	negate bool
	runes  map[rune]bool
	ranges [][2]rune
}

func (c charClass) matches(r rune) bool {
	hit := c.runes[r]
	if !hit {
		for _, rg := range c.ranges {
			if r >= rg[0] && r <= rg[1] {
				hit = true
				break
			}
		}
	}
	if c.negate {
		return !hit
	}
	return hit
}

// parseClass parses a `[...]` character class starting at p[start] == '['.
// Returns the parsed class, the index just past the closing ']', and
// whether a closing ']' was found at all.
func parseClass(p []rune, start int) (charClass, int, bool) {
	i := start + 1
	var c charClass
	c.runes = make(map[rune]bool)

	if i < len(p) && (p[i] == '!' || p[i] == '^') {
		c.negate = true
		i++
	}

	first := true
	for i < len(p) {
		if p[i] == ']' && !first {
			return c, i + 1, true
		}
		first = false

		if i+2 < len(p) && p[i+1] == '-' && p[i+2] != ']' {
			c.ranges = append(c.ranges, [2]rune{p[i], p[i+2]})
			i += 3
			continue
		}
		c.runes[p[i]] = true
		i++
	}
	return charClass{}, start, false
}

func runeIdxToByte(s string, runeIdx int) int {
	count := 0
	for i := range s {
		if count == runeIdx {
			return i
		}
		count++
	}
	return len(s)
}
