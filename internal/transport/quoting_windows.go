//go:build windows

package transport

import (
	"sort"
	"strings"
	"unicode/utf16"
)

// EscapeArgument applies the Microsoft C-runtime argv quoting rules exactly
// (spec.md §4.1, testable property 8), ported from the distilled source's
// windows/child.rs escape_argument: backslashes are doubled only when they
// immediately precede a `"` or fall at the very end of a quoted argument;
// an embedded `"` is emitted as `\"`. Arguments with no special characters
// are passed through unquoted.
func EscapeArgument(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, " \t\n\v\"") {
		return arg
	}

	var b strings.Builder
	b.WriteByte('"')

	backslashes := 0
	for _, r := range arg {
		switch r {
		case '\\':
			backslashes++
		case '"':
			for i := 0; i < backslashes*2+1; i++ {
				b.WriteByte('\\')
			}
			b.WriteByte('"')
			backslashes = 0
		default:
			for i := 0; i < backslashes; i++ {
				b.WriteByte('\\')
			}
			backslashes = 0
			b.WriteRune(r)
		}
	}
	// Trailing backslashes must be doubled since a `"` immediately follows.
	for i := 0; i < backslashes*2; i++ {
		b.WriteByte('\\')
	}
	b.WriteByte('"')
	return b.String()
}

// BuildCommandLine joins program and args into a single Windows command
// line string, quoting each element per EscapeArgument.
func BuildCommandLine(program string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, EscapeArgument(program))
	for _, a := range args {
		parts = append(parts, EscapeArgument(a))
	}
	return strings.Join(parts, " ")
}

// BuildEnvironmentBlock builds a double-NUL-terminated UTF-16 environment
// block accepted by CreateProcessW, matching windows/child.rs's
// build_environment_block. Entries are sorted for determinism.
func BuildEnvironmentBlock(env map[string]string) []uint16 {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var block []uint16
	for _, k := range keys {
		entry := k + "=" + env[k]
		block = append(block, utf16.Encode([]rune(entry))...)
		block = append(block, 0)
	}
	block = append(block, 0)
	return block
}
