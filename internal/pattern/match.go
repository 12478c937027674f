package pattern

import "strings"

// Match is the low-level match outcome used internally by the matcher
// package: byte offsets relative to the text searched, plus any regex
// capture groups (group 0, the whole match, is excluded).
type Match struct {
	Start, End int
	Captures   []string
}

// Matches attempts to find p within text, returning the earliest match. Eof,
// Timeout, and Bytes patterns never match via this path (spec.md §4.2). The
// ExpectEngine handles Eof once EOF is observed and takes its deadline from
// Timeout patterns; nothing matches a Bytes pattern.
func (p Pattern) Matches(text string) (Match, bool) {
	switch p.Kind {
	case KindLiteral:
		idx := strings.Index(text, p.Source)
		if idx < 0 {
			return Match{}, false
		}
		return Match{Start: idx, End: idx + len(p.Source)}, true

	case KindRegex:
		loc := p.Regex.FindStringSubmatchIndex(text)
		if loc == nil {
			return Match{}, false
		}
		var captures []string
		for i := 2; i < len(loc); i += 2 {
			if loc[i] < 0 {
				captures = append(captures, "")
				continue
			}
			captures = append(captures, text[loc[i]:loc[i+1]])
		}
		return Match{Start: loc[0], End: loc[1], Captures: captures}, true

	case KindGlob:
		start, end, ok := globMatch(p.Source, text)
		if !ok {
			return Match{}, false
		}
		return Match{Start: start, End: end}, true

	default:
		return Match{}, false
	}
}

