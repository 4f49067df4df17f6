package lexer

import (
	"testing"

	"github.com/deicod/brace/nodes"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestSliceHelperTag(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		want []nodes.Arg
	}{
		{
			name: "block helper",
			tag:  "{#if a}",
			want: []nodes.Arg{nodes.Symbol("if"), nodes.Symbol("a")},
		},
		{
			name: "partial sigil is split off",
			tag:  "{>card}",
			want: []nodes.Arg{nodes.Symbol(">"), nodes.Symbol("card")},
		},
		{
			name: "quoted literal spanning parts",
			tag:  `{foo "hello world" bar}`,
			want: []nodes.Arg{
				nodes.Symbol("foo"),
				nodes.StringLiteral(`"hello world"`),
				nodes.Symbol("bar"),
			},
		},
		{
			name: "single quoted literal",
			tag:  `{foo 'x'}`,
			want: []nodes.Arg{nodes.Symbol("foo"), nodes.StringLiteral(`'x'`)},
		},
		{
			name: "unterminated literal is discarded",
			tag:  `{foo "abc}`,
			want: []nodes.Arg{nodes.Symbol("foo")},
		},
		{
			name: "hash arguments",
			tag:  `{foo a=1 b="x y" c=false}`,
			want: []nodes.Arg{
				nodes.Symbol("foo"),
				nodes.Hash("a", "1"),
				nodes.Hash("b", `"x y"`),
				nodes.Hash("c", "false"),
			},
		},
		{
			name: "comparison is not a hash",
			tag:  "{if a==b}",
			want: []nodes.Arg{nodes.Symbol("if"), nodes.Symbol("a==b")},
		},
		{
			name: "js arguments stay raw",
			tag:  "{js a=1}",
			want: []nodes.Arg{nodes.Symbol("js"), nodes.Symbol("a=1")},
		},
		{
			name: "inline js stays raw",
			tag:  "{#if js(x == 'a b')}",
			want: []nodes.Arg{
				nodes.Symbol("if"),
				nodes.Symbol("js(x"),
				nodes.Symbol("=="),
				nodes.Symbol("'a"),
				nodes.Symbol("b')"),
			},
		},
		{
			name: "empty tag",
			tag:  "{}",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SliceHelperTag(tt.tag)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("SliceHelperTag(%q) mismatch (-want +got):\n%s", tt.tag, diff)
			}
		})
	}
}

func TestHashValues(t *testing.T) {
	args := SliceHelperTag(`{foo b="x y" c=false}`)
	if len(args) != 3 {
		t.Fatalf("expected 3 args, got %v", args)
	}
	if args[1].HashValue != "x y" {
		t.Errorf("expected unquoted value, got %#v", args[1].HashValue)
	}
	if args[2].HashValue != false {
		t.Errorf("expected boolean false, got %#v", args[2].HashValue)
	}
}
