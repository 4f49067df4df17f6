package lexer

import "strings"

// NormalizeWhitespace minifies raw template markup before it is split:
// surrounding whitespace is trimmed, runs of whitespace collapse to a single
// space and the gap in "> <" between adjacent tags is removed.
func NormalizeWhitespace(raw string) string {
	s := strings.TrimSpace(raw)
	s = WhitespaceRunRegex.ReplaceAllString(s, " ")
	return strings.ReplaceAll(s, "> <", "><")
}
