package lexer

import (
	"strings"
	"unicode"

	"github.com/deicod/brace/nodes"
)

// piece is one fragment of split template text. Tag pieces are the
// brace-delimited matches, everything between them is plain text.
type piece struct {
	text string
	tag  bool
}

func (p piece) inner() string {
	return strings.TrimSuffix(strings.TrimPrefix(p.text, "{"), "}")
}

func (p piece) isOpen() bool {
	return p.tag && strings.HasPrefix(p.text, openMarker)
}

func (p piece) isClose() bool {
	return p.tag && strings.HasPrefix(p.text, closeMarker)
}

func (p piece) isElse() bool {
	return p.tag && strings.TrimSpace(p.inner()) == elseKeyword
}

// name returns the helper name of an open or close tag.
func (p piece) name() string {
	inner := strings.TrimLeft(p.inner(), "#/")
	if fields := strings.Fields(inner); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

func (p piece) isVariable() bool {
	inner := p.inner()
	return inner != "" &&
		!strings.HasPrefix(p.text, openMarker) &&
		!strings.HasPrefix(p.text, partialMarker) &&
		strings.IndexFunc(inner, unicode.IsSpace) < 0 &&
		!p.isElse()
}

func splitPieces(text string) []piece {
	var pieces []piece
	last := 0
	for _, loc := range DelimiterRegex.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			pieces = append(pieces, piece{text: text[last:loc[0]]})
		}
		pieces = append(pieces, piece{text: text[loc[0]:loc[1]], tag: true})
		last = loc[1]
	}
	if last < len(text) {
		pieces = append(pieces, piece{text: text[last:]})
	}
	return pieces
}

// SplitIntoBlocks splits template text into a flat sequence of blocks. Block
// helpers swallow everything up to their matching close tag, including nested
// helpers of the same name; a block helper without a close tag is dropped and
// the pieces after its opener are processed as usual.
func SplitIntoBlocks(text string) []nodes.Block {
	if text == "" {
		return nil
	}

	pieces := splitPieces(text)
	blocks := make([]nodes.Block, 0, len(pieces))
	for i := 0; i < len(pieces); i++ {
		p := pieces[i]
		base := nodes.BaseBlock{Pos: nodes.Position{Piece: i}}

		switch {
		case !p.tag:
			blocks = append(blocks, &nodes.Plain{BaseBlock: base, Text: p.text})
		case p.isClose():
			// consumed by the opener's look-ahead, stray otherwise
			continue
		case p.inner() == "":
			blocks = append(blocks, &nodes.Plain{BaseBlock: base, Text: p.text})
		case p.isVariable():
			blocks = append(blocks, &nodes.Variable{BaseBlock: base, Path: p.inner()})
		default:
			helper := parseHelper(p.text)
			helper.BaseBlock = base
			if !p.isOpen() {
				blocks = append(blocks, helper)
				continue
			}
			end, ok := scanHelperBody(pieces, i, helper)
			if !ok {
				continue
			}
			i = end
			blocks = append(blocks, helper)
		}
	}
	return blocks
}

// parseHelper builds a helper block from a tag, separating positional and
// hash arguments and normalizing the > sigil to the partial helper.
func parseHelper(tag string) *nodes.Helper {
	slices := SliceHelperTag(tag)
	helper := &nodes.Helper{
		Tag:  tag,
		Hash: make(map[string]interface{}),
	}
	if len(slices) == 0 {
		return helper
	}

	helper.Name = slices[0].Value
	if helper.Name == partialSigil {
		helper.Name = partialHelper
	}
	for _, arg := range slices[1:] {
		if arg.Kind == nodes.ArgHash {
			helper.Hash[arg.Name] = arg.HashValue
			continue
		}
		helper.Args = append(helper.Args, arg)
	}
	return helper
}

// scanHelperBody collects the content and else-content of the block helper
// opened at pieces[start]. It returns the index of the matching close tag.
func scanHelperBody(pieces []piece, start int, helper *nodes.Helper) (int, bool) {
	var content, inverse strings.Builder
	target := &content
	depth, toSkip := 0, 0

	for j := start + 1; j < len(pieces); j++ {
		p := pieces[j]
		if p.isOpen() {
			depth++
		}
		if p.isClose() {
			depth--
		}

		switch {
		case p.isOpen() && p.name() == helper.Name:
			toSkip++
			target.WriteString(p.text)
		case p.isClose() && p.name() == helper.Name:
			if toSkip == 0 {
				helper.Content = content.String()
				helper.Inverse = inverse.String()
				helper.HasContent = true
				return j, true
			}
			toSkip--
			target.WriteString(p.text)
		case p.isElse() && depth == 0:
			target = &inverse
		default:
			target.WriteString(p.text)
		}
	}
	return start, false
}
