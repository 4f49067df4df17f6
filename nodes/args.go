package nodes

import (
	"fmt"
	"strings"
)

// ArgKind classifies a helper argument token
type ArgKind int

const (
	ArgSymbol ArgKind = iota // bare identifier or dotted path
	ArgString                // quoted literal, quotes retained in Value
	ArgHash                  // name=value pair
)

var argKindNames = map[ArgKind]string{
	ArgSymbol: "SYMBOL",
	ArgString: "STRING",
	ArgHash:   "HASH",
}

func (k ArgKind) String() string {
	if name, ok := argKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ArgKind(%d)", int(k))
}

// Arg is one token of a helper tag. For hashes, Name holds the key and
// HashValue the unquoted value, or the boolean false for the literal false.
type Arg struct {
	Kind      ArgKind     `json:"kind"`
	Value     string      `json:"value"`
	Name      string      `json:"name,omitempty"`
	HashValue interface{} `json:"hash_value,omitempty"`
}

// Symbol creates a bare positional argument
func Symbol(value string) Arg {
	return Arg{Kind: ArgSymbol, Value: value}
}

// StringLiteral creates a quoted literal argument
func StringLiteral(value string) Arg {
	return Arg{Kind: ArgString, Value: value}
}

// Hash creates a name=value argument. The raw value is unquoted and the
// literal false becomes the boolean false.
func Hash(name, raw string) Arg {
	unquoted := Unquote(raw)
	var value interface{} = unquoted
	if unquoted == "false" {
		value = false
	}
	return Arg{Kind: ArgHash, Value: raw, Name: name, HashValue: value}
}

// Unquoted returns the argument value without surrounding quotes.
func (a Arg) Unquoted() string {
	if a.Kind == ArgString {
		return Unquote(a.Value)
	}
	return a.Value
}

func (a Arg) String() string {
	if a.Kind == ArgHash {
		return a.Name + "=" + a.Value
	}
	return a.Value
}

// Unquote strips one pair of matching single or double quotes and unescapes
// the quote character inside. Values that are not quoted are returned as is.
func Unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	q := s[0]
	if (q != '"' && q != '\'') || s[len(s)-1] != q {
		return s
	}
	return strings.ReplaceAll(s[1:len(s)-1], `\`+string(q), string(q))
}
