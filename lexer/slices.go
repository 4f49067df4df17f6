package lexer

import (
	"strings"

	"github.com/deicod/brace/nodes"
)

// SliceHelperTag splits a helper tag into argument tokens. The first token is
// always the raw helper name; a > sigil glued to a partial name is emitted as
// its own token so callers can normalize it.
//
// Quoted literals may span several whitespace-separated parts and are joined
// back with single spaces. A literal that never closes is discarded. Parts of
// the form name=value become hash arguments, except inside embedded
// expressions (the js helper and the js(...) inline form).
func SliceHelperTag(tag string) []nodes.Arg {
	parts := strings.Fields(trimTag(tag))
	if len(parts) == 0 {
		return nil
	}

	var slices []nodes.Arg
	name := parts[0]
	rest := parts[1:]
	if strings.HasPrefix(name, partialSigil) && len(name) > len(partialSigil) {
		rest = append([]string{name[len(partialSigil):]}, rest...)
		name = partialSigil
	}
	slices = append(slices, nodes.Symbol(name))

	raw := name == scriptHelper
	for i := 0; i < len(rest); i++ {
		part := rest[i]
		switch {
		case raw:
			slices = append(slices, nodes.Symbol(part))
		case strings.HasPrefix(strings.TrimPrefix(part, "!"), inlineScript):
			raw = true
			slices = append(slices, nodes.Symbol(part))
		case isQuote(part[0]):
			literal, end, ok := readLiteral(part, rest, i, part[0])
			if !ok {
				continue
			}
			slices = append(slices, nodes.StringLiteral(literal))
			i = end
		case isHashPart(part):
			eq := strings.IndexByte(part, '=')
			key, value := part[:eq], part[eq+1:]
			if value != "" && isQuote(value[0]) {
				if literal, end, ok := readLiteral(value, rest, i, value[0]); ok {
					value = literal
					i = end
				}
			}
			slices = append(slices, nodes.Hash(key, value))
		default:
			slices = append(slices, nodes.Symbol(part))
		}
	}
	return slices
}

func trimTag(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimPrefix(tag, "{")
	tag = strings.TrimSuffix(tag, "}")
	return strings.TrimPrefix(tag, "#")
}

func isQuote(c byte) bool {
	return c == '"' || c == '\''
}

func isHashPart(part string) bool {
	eq := strings.IndexByte(part, '=')
	if eq <= 0 || strings.HasPrefix(part[eq+1:], "=") {
		return false
	}
	return IdentifierRegex.MatchString(part[:eq])
}

// readLiteral returns the quoted literal starting with first (which is
// rest[i] or its value half). A literal whose quote appears exactly twice in
// first is complete; otherwise the following parts are appended until one
// contains the quote.
func readLiteral(first string, rest []string, i int, quote byte) (string, int, bool) {
	if countQuotes(first, quote) == 2 {
		return first, i, true
	}
	literal := first
	for j := i + 1; j < len(rest); j++ {
		literal += " " + rest[j]
		if countQuotes(rest[j], quote) > 0 {
			return literal, j, true
		}
	}
	return "", i, false
}

// countQuotes counts occurrences of quote not preceded by a backslash.
func countQuotes(s string, quote byte) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == quote && (i == 0 || s[i-1] != '\\') {
			n++
		}
	}
	return n
}
