// Package script prepares embedded template expressions for evaluation. It
// tokenizes the expression text, qualifies free identifiers against the
// active context, minifies the result and compiles it with expr-lang.
package script

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// Token types produced by Tokenize
const (
	TypeIdentifier = "Identifier"
	TypeKeyword    = "Keyword"
	TypeString     = "String"
	TypeNumber     = "Numeric"
	TypePunctuator = "Punctuator"
)

// Token is one lexical unit of an embedded expression
type Token struct {
	Type  string
	Value string
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%s)", t.Type, t.Value)
}

var expressionLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: TypeString, Pattern: `"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'|` + "`[^`]*`"},
	{Name: TypeNumber, Pattern: `0[xX][0-9a-fA-F_]+|\d[\d_]*(?:\.\d+)?(?:[eE][+-]?\d+)?|\.\d+`},
	{Name: TypeIdentifier, Pattern: `[A-Za-z_$][A-Za-z0-9_$]*`},
	{Name: TypePunctuator, Pattern: `===|!==|\?\?|\?\.|\.\.|==|!=|<=|>=|&&|\|\||\*\*|[-+*/%<>!=?:.,;()\[\]{}|&^~#]`},
})

var keywords = map[string]bool{
	"let": true, "var": true, "true": true, "false": true, "nil": true,
	"null": true, "undefined": true, "in": true, "not": true, "and": true,
	"or": true, "matches": true, "contains": true, "startsWith": true,
	"endsWith": true, "if": true, "else": true,
}

// Tokenize splits an embedded expression into tokens, dropping whitespace.
// Identifiers that are language keywords are reported as TypeKeyword.
func Tokenize(source string) ([]Token, error) {
	lex, err := expressionLexer.LexString("", source)
	if err != nil {
		return nil, err
	}
	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, err
	}

	names := make(map[lexer.TokenType]string)
	for name, typ := range expressionLexer.Symbols() {
		names[typ] = name
	}

	tokens := make([]Token, 0, len(raw))
	for _, tok := range raw {
		if tok.EOF() {
			break
		}
		typ := names[tok.Type]
		if typ == "Whitespace" {
			continue
		}
		if typ == TypeIdentifier && keywords[tok.Value] {
			typ = TypeKeyword
		}
		tokens = append(tokens, Token{Type: typ, Value: tok.Value})
	}
	return tokens, nil
}
