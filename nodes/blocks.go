package nodes

import (
	"fmt"
	"sort"
	"strings"
)

// Position locates a block inside the text it was split from. Piece is the
// zero-based index of the delimiter piece that produced the block.
type Position struct {
	Piece int `json:"piece"`
}

// NoPosition marks errors that are not tied to a block
var NoPosition = Position{Piece: -1}

// IsValid reports whether p refers to a piece
func (p Position) IsValid() bool {
	return p.Piece >= 0
}

// Block is one classified unit of template text.
type Block interface {
	// GetPosition returns the position information for this block
	GetPosition() Position

	// String returns a string representation of the block
	String() string

	// Type returns the block type for identification
	Type() string
}

// BaseBlock provides common functionality for all blocks
type BaseBlock struct {
	Pos Position `json:"pos"`
}

// GetPosition returns the position information
func (b *BaseBlock) GetPosition() Position {
	return b.Pos
}

// Plain is literal output text.
type Plain struct {
	BaseBlock
	Text string `json:"text"`
}

func (b *Plain) Type() string { return "Plain" }

func (b *Plain) String() string {
	return fmt.Sprintf("Plain(%q)", b.Text)
}

// Variable is an accessor path such as birthday.year or person[property],
// resolved relative to the active context.
type Variable struct {
	BaseBlock
	Path string `json:"path"`
}

func (b *Variable) Type() string { return "Variable" }

func (b *Variable) String() string {
	return fmt.Sprintf("Variable(%s)", b.Path)
}

// Helper is a helper invocation. Content and Inverse hold the raw, unparsed
// template text of the "then" and "else" branches and are only meaningful
// when HasContent is set, i.e. when a matching close tag was found.
type Helper struct {
	BaseBlock
	Name       string                 `json:"name"`
	Tag        string                 `json:"tag"`
	Args       []Arg                  `json:"args"`
	Hash       map[string]interface{} `json:"hash"`
	Content    string                 `json:"content"`
	Inverse    string                 `json:"inverse"`
	HasContent bool                   `json:"has_content"`
}

func (b *Helper) Type() string { return "Helper" }

func (b *Helper) String() string {
	var buf strings.Builder
	buf.WriteString("Helper(")
	buf.WriteString(b.Name)
	for _, arg := range b.Args {
		buf.WriteByte(' ')
		buf.WriteString(arg.String())
	}
	keys := make([]string, 0, len(b.Hash))
	for k := range b.Hash {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&buf, " %s=%v", k, b.Hash[k])
	}
	if b.HasContent {
		fmt.Fprintf(&buf, ", content=%q, inverse=%q", b.Content, b.Inverse)
	}
	buf.WriteString(")")
	return buf.String()
}

// ArgValues returns the raw values of the positional arguments.
func (b *Helper) ArgValues() []string {
	values := make([]string, len(b.Args))
	for i, arg := range b.Args {
		values[i] = arg.Value
	}
	return values
}

// Dump returns a string representation of a block sequence for debugging
func Dump(blocks []Block) string {
	if len(blocks) == 0 {
		return "[]"
	}

	var buf strings.Builder
	buf.WriteString("[\n")
	for _, b := range blocks {
		buf.WriteString("  ")
		if b == nil {
			buf.WriteString("nil")
		} else {
			buf.WriteString(b.String())
		}
		buf.WriteString("\n")
	}
	buf.WriteString("]")
	return buf.String()
}
