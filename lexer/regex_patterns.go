package lexer

import (
	"regexp"
)

// Precompiled regular expressions for splitting templates
var (
	// DelimiterRegex matches one brace-delimited tag. It does not span inner
	// braces, so "{a{b}" only matches "{b}".
	DelimiterRegex = regexp.MustCompile(`\{[^{^}]*\}`)

	// WhitespaceRunRegex matches runs of two or more whitespace characters
	WhitespaceRunRegex = regexp.MustCompile(`\s\s+`)

	// IdentifierRegex matches a hash argument name
	IdentifierRegex = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$\-]*$`)
)

// Tag markers
const (
	openMarker    = "{#"
	closeMarker   = "{/"
	partialMarker = "{>"
	partialSigil  = ">"
	elseKeyword   = "else"
	inlineScript  = "js("
	scriptHelper  = "js"
	partialHelper = "partial"
)
