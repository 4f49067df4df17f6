package script

import (
	"strings"
)

// Qualifier maps a free identifier to the expression it should be read
// through, for example "title" to "p.title".
type Qualifier func(name string) string

// Result is the output of Minify
type Result struct {
	Code string
}

// operators that have a different spelling in the evaluated language
var spellings = map[string]string{
	"===":       "==",
	"!==":       "!=",
	"var":       "let",
	"null":      "nil",
	"undefined": "nil",
}

// Rewrite qualifies every free identifier in tokens. Identifiers declared by
// a preceding let or var stay local to the expression, as do member names
// after a dot or a closure pointer, function names before a call and keys of
// object literals.
func Rewrite(tokens []Token, qualify Qualifier) []Token {
	declared := make(map[string]bool)
	out := make([]Token, len(tokens))
	braces := 0

	for i, tok := range tokens {
		if s, ok := spellings[tok.Value]; ok && tok.Type != TypeString {
			tok.Value = s
		}
		switch tok.Value {
		case "{":
			braces++
		case "}":
			braces--
		}

		if tok.Type == TypeIdentifier {
			prev, next := at(tokens, i-1), at(tokens, i+1)
			switch {
			case prev.Value == "let" || prev.Value == "var":
				declared[tok.Value] = true
			case declared[tok.Value]:
			case prev.Value == "." || prev.Value == "?." || prev.Value == "#":
			case next.Value == "(":
			case braces > 0 && next.Value == ":" && (prev.Value == "{" || prev.Value == ","):
			default:
				tok.Value = qualify(tok.Value)
			}
		}
		out[i] = tok
	}
	return out
}

func at(tokens []Token, i int) Token {
	if i < 0 || i >= len(tokens) {
		return Token{}
	}
	return tokens[i]
}

// Minify compacts an expression, keeping a single space only where two
// word-like tokens would otherwise merge.
func Minify(source string) (Result, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return Result{}, err
	}
	return Result{Code: join(tokens)}, nil
}

func join(tokens []Token) string {
	var buf strings.Builder
	for i, tok := range tokens {
		if i > 0 && wordLike(tokens[i-1]) && wordLike(tok) {
			buf.WriteByte(' ')
		}
		buf.WriteString(tok.Value)
	}
	return buf.String()
}

func wordLike(t Token) bool {
	switch t.Type {
	case TypeIdentifier, TypeKeyword, TypeNumber:
		return true
	}
	return false
}
