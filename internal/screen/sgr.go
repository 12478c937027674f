package screen

// parseSGRText decodes the CSI "...m" SGR sequences embedded in s (as
// produced by midterm.Format.Render()) into this package's Style type,
// including 256-color (38/48;5;n) and truecolor (38/48;2;r;g;b) extended
// forms. Unlike live-stream SGR parsing, s may bundle several "\x1b[...m"
// sequences back to back (e.g. a reset followed by the active attributes),
// so every CSI "m" sequence found is applied in order.
func parseSGRText(s string) Style {
	var style Style
	for i := 0; i < len(s); {
		if s[i] == 0x1b && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			if j < len(s) {
				applySGRParams(&style, parseSGRParamList(s[i+2:j]))
				i = j + 1
				continue
			}
		}
		i++
	}
	return style
}

func parseSGRParamList(s string) []int {
	if s == "" {
		return []int{0}
	}
	params := make([]int, 0, 4)
	cur := 0
	for _, r := range s {
		switch {
		case r == ';':
			params = append(params, cur)
			cur = 0
		case r >= '0' && r <= '9':
			cur = cur*10 + int(r-'0')
		}
	}
	return append(params, cur)
}

// applySGRParams updates style from a list of SGR parameters.
func applySGRParams(style *Style, params []int) {
	if len(params) == 0 {
		params = []int{0}
	}
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			*style = Style{}
		case p == 1:
			style.Attrs |= AttrBold
		case p == 2:
			style.Attrs |= AttrDim
		case p == 3:
			style.Attrs |= AttrItalic
		case p == 4:
			style.Attrs |= AttrUnderline
		case p == 5:
			style.Attrs |= AttrBlink
		case p == 7:
			style.Attrs |= AttrInverse
		case p == 8:
			style.Attrs |= AttrHidden
		case p == 9:
			style.Attrs |= AttrStrikethrough
		case p == 22:
			style.Attrs &^= AttrBold | AttrDim
		case p == 23:
			style.Attrs &^= AttrItalic
		case p == 24:
			style.Attrs &^= AttrUnderline
		case p == 25:
			style.Attrs &^= AttrBlink
		case p == 27:
			style.Attrs &^= AttrInverse
		case p == 28:
			style.Attrs &^= AttrHidden
		case p == 29:
			style.Attrs &^= AttrStrikethrough
		case p >= 30 && p <= 37:
			style.FG = Color{Mode: ColorIndexed, Value: uint32(p - 30)}
		case p == 38:
			color, consumed := parseExtendedColor(params[i+1:])
			style.FG = color
			i += consumed
		case p == 39:
			style.FG = DefaultColor
		case p >= 40 && p <= 47:
			style.BG = Color{Mode: ColorIndexed, Value: uint32(p - 40)}
		case p == 48:
			color, consumed := parseExtendedColor(params[i+1:])
			style.BG = color
			i += consumed
		case p == 49:
			style.BG = DefaultColor
		case p >= 90 && p <= 97:
			style.FG = Color{Mode: ColorIndexed, Value: uint32(p-90) + 8}
		case p >= 100 && p <= 107:
			style.BG = Color{Mode: ColorIndexed, Value: uint32(p-100) + 8}
		}
	}
}

// parseExtendedColor reads the tail of a 38;... or 48;... SGR sequence
// (either "5;n" indexed or "2;r;g;b" truecolor) and reports how many
// params it consumed beyond the leading 38/48.
func parseExtendedColor(rest []int) (Color, int) {
	if len(rest) == 0 {
		return DefaultColor, 0
	}
	switch rest[0] {
	case 5:
		if len(rest) >= 2 {
			return Color{Mode: ColorIndexed, Value: uint32(rest[1])}, 2
		}
	case 2:
		if len(rest) >= 4 {
			r, g, bl := uint32(rest[1]), uint32(rest[2]), uint32(rest[3])
			return Color{Mode: ColorRGB, Value: (r << 16) | (g << 8) | bl}, 4
		}
	}
	return DefaultColor, len(rest)
}
