package lexer

import (
	"testing"

	"github.com/deicod/brace/nodes"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func at(piece int) nodes.BaseBlock {
	return nodes.BaseBlock{Pos: nodes.Position{Piece: piece}}
}

func TestSplitIntoBlocks(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     []nodes.Block
	}{
		{
			name:     "plain text",
			template: "Hello, World!",
			want: []nodes.Block{
				&nodes.Plain{BaseBlock: at(0), Text: "Hello, World!"},
			},
		},
		{
			name:     "variable",
			template: "Hello {name}!",
			want: []nodes.Block{
				&nodes.Plain{BaseBlock: at(0), Text: "Hello "},
				&nodes.Variable{BaseBlock: at(1), Path: "name"},
				&nodes.Plain{BaseBlock: at(2), Text: "!"},
			},
		},
		{
			name:     "indexed variable",
			template: "{person[property]}",
			want: []nodes.Block{
				&nodes.Variable{BaseBlock: at(0), Path: "person[property]"},
			},
		},
		{
			name:     "block helper with else",
			template: "{#if a}x{else}y{/if}",
			want: []nodes.Block{
				&nodes.Helper{
					BaseBlock:  at(0),
					Name:       "if",
					Tag:        "{#if a}",
					Args:       []nodes.Arg{nodes.Symbol("a")},
					Content:    "x",
					Inverse:    "y",
					HasContent: true,
				},
			},
		},
		{
			name:     "nested helper of the same name",
			template: "{#if a}{#if b}x{else}y{/if}{/if}z",
			want: []nodes.Block{
				&nodes.Helper{
					BaseBlock:  at(0),
					Name:       "if",
					Tag:        "{#if a}",
					Args:       []nodes.Arg{nodes.Symbol("a")},
					Content:    "{#if b}x{else}y{/if}",
					HasContent: true,
				},
				&nodes.Plain{BaseBlock: at(7), Text: "z"},
			},
		},
		{
			name:     "else inside a nested helper stays nested",
			template: "{#if a}{#for x of xs}{x}{else}none{/for}{else}no{/if}",
			want: []nodes.Block{
				&nodes.Helper{
					BaseBlock:  at(0),
					Name:       "if",
					Tag:        "{#if a}",
					Args:       []nodes.Arg{nodes.Symbol("a")},
					Content:    "{#for x of xs}{x}{else}none{/for}",
					Inverse:    "no",
					HasContent: true,
				},
			},
		},
		{
			name:     "unclosed helper is dropped",
			template: "{#if a}x",
			want: []nodes.Block{
				&nodes.Plain{BaseBlock: at(1), Text: "x"},
			},
		},
		{
			name:     "stray close tag is ignored",
			template: "a{/if}b",
			want: []nodes.Block{
				&nodes.Plain{BaseBlock: at(0), Text: "a"},
				&nodes.Plain{BaseBlock: at(2), Text: "b"},
			},
		},
		{
			name:     "empty braces are text",
			template: "{}",
			want: []nodes.Block{
				&nodes.Plain{BaseBlock: at(0), Text: "{}"},
			},
		},
		{
			name:     "partial",
			template: "{>item person}",
			want: []nodes.Block{
				&nodes.Helper{
					BaseBlock: at(0),
					Name:      "partial",
					Tag:       "{>item person}",
					Args:      []nodes.Arg{nodes.Symbol("item"), nodes.Symbol("person")},
				},
			},
		},
		{
			name:     "for with hash argument",
			template: "{#for x of items index=n}{x}{/for}",
			want: []nodes.Block{
				&nodes.Helper{
					BaseBlock: at(0),
					Name:      "for",
					Tag:       "{#for x of items index=n}",
					Args: []nodes.Arg{
						nodes.Symbol("x"),
						nodes.Symbol("of"),
						nodes.Symbol("items"),
					},
					Hash:       map[string]interface{}{"index": "n"},
					Content:    "{x}",
					HasContent: true,
				},
			},
		},
		{
			name:     "inline helper",
			template: "<b>{escape title}</b>",
			want: []nodes.Block{
				&nodes.Plain{BaseBlock: at(0), Text: "<b>"},
				&nodes.Helper{
					BaseBlock: at(1),
					Name:      "escape",
					Tag:       "{escape title}",
					Args:      []nodes.Arg{nodes.Symbol("title")},
				},
				&nodes.Plain{BaseBlock: at(2), Text: "</b>"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitIntoBlocks(tt.template)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("SplitIntoBlocks(%q) mismatch (-want +got):\n%s", tt.template, diff)
			}
		})
	}
}

func TestSplitIntoBlocksEmpty(t *testing.T) {
	if blocks := SplitIntoBlocks(""); len(blocks) != 0 {
		t.Fatalf("expected no blocks, got %s", nodes.Dump(blocks))
	}
}

func TestSplitIntoBlocksElseOnlyAtTopLevel(t *testing.T) {
	blocks := SplitIntoBlocks("{#if a}{#if b}1{else}2{/if}{else}3{/if}")
	if len(blocks) != 1 {
		t.Fatalf("expected one block, got %s", nodes.Dump(blocks))
	}
	helper, ok := blocks[0].(*nodes.Helper)
	if !ok {
		t.Fatalf("expected helper, got %T", blocks[0])
	}
	if helper.Content != "{#if b}1{else}2{/if}" {
		t.Errorf("unexpected content %q", helper.Content)
	}
	if helper.Inverse != "3" {
		t.Errorf("unexpected inverse %q", helper.Inverse)
	}
}
