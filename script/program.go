package script

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/vm"
)

// memberFunc is the function member accesses are routed through when a
// MemberResolver is configured. It cannot be spelled in source.
const memberFunc = "$member"

// MemberResolver reads the member key of value. Keys are field names for
// dotted access and the evaluated index for bracket access.
type MemberResolver func(value, key interface{}) interface{}

// Option configures Compile
type Option func(*options)

type options struct {
	member MemberResolver
}

// WithMemberResolver routes every member access of the expression through
// fn instead of the evaluator's own field lookup. Method calls are left
// alone.
func WithMemberResolver(fn MemberResolver) Option {
	return func(o *options) {
		o.member = fn
	}
}

// Program is a compiled embedded expression
type Program struct {
	source  string
	program *vm.Program
}

// Source returns the rewritten, minified text the program was compiled from
func (p *Program) Source() string {
	return p.source
}

// Run evaluates the program against env
func (p *Program) Run(env map[string]interface{}) (interface{}, error) {
	return expr.Run(p.program, env)
}

// Compile tokenizes source, qualifies its free identifiers, minifies the
// rewritten text and compiles it.
func Compile(source string, qualify Qualifier, opts ...Option) (*Program, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("empty expression")
	}

	tokens, err := Tokenize(source)
	if err != nil {
		return nil, fmt.Errorf("tokenize %q: %w", source, err)
	}
	if qualify != nil {
		tokens = Rewrite(tokens, qualify)
	}

	minified, err := Minify(join(tokens))
	if err != nil {
		return nil, fmt.Errorf("minify %q: %w", source, err)
	}

	config := []expr.Option{expr.AllowUndefinedVariables()}
	if o.member != nil {
		resolve := o.member
		config = append(config,
			expr.Function(memberFunc, func(params ...interface{}) (interface{}, error) {
				return resolve(params[0], params[1]), nil
			}),
			expr.Patch(&memberPatcher{patched: make(map[*ast.CallNode]*ast.MemberNode)}),
		)
	}

	program, err := expr.Compile(minified.Code, config...)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", minified.Code, err)
	}
	return &Program{source: minified.Code, program: program}, nil
}

// memberPatcher rewrites a.b and a[i] into calls of memberFunc. The walk is
// post-order, so a member that turns out to be the callee of a method call
// has already been rewritten when its call is visited and is restored there.
type memberPatcher struct {
	patched map[*ast.CallNode]*ast.MemberNode
}

func (m *memberPatcher) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.MemberNode:
		call := &ast.CallNode{
			Callee:    &ast.IdentifierNode{Value: memberFunc},
			Arguments: []ast.Node{n.Node, n.Property},
		}
		m.patched[call] = n
		ast.Patch(node, call)
	case *ast.CallNode:
		if callee, ok := n.Callee.(*ast.CallNode); ok {
			if member, ok := m.patched[callee]; ok {
				n.Callee = member
			}
		}
	}
}
