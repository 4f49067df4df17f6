package runtime

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/deicod/brace/code"
	"github.com/deicod/brace/lexer"
	"github.com/deicod/brace/nodes"
	"github.com/deicod/brace/script"
)

// contextSymbol is the name of the data parameter of a render function
const contextSymbol = "p"

// CompileOption configures a single Compile call
type CompileOption func(*compileOptions)

type compileOptions struct {
	contextPath string
}

// WithContextPath compiles the template for use under a caller's context
// path. The canonical context becomes path + ".p" and the render function's
// data parameter is the first segment of path.
func WithContextPath(path string) CompileOption {
	return func(o *compileOptions) {
		o.contextPath = strings.TrimSpace(path)
	}
}

// Scope is a chain of locally bound names. Identifiers bound anywhere in the
// chain resolve to the local variable; all others resolve against the
// scope's context path.
type Scope struct {
	parent  *Scope
	context *code.Ref
	locals  map[string]bool
}

func newScope(context *code.Ref) *Scope {
	return &Scope{context: context}
}

// Context returns the context path bare identifiers resolve against
func (s *Scope) Context() *code.Ref {
	return s.context
}

// Bind returns a child scope in which names are local
func (s *Scope) Bind(names ...string) *Scope {
	child := &Scope{parent: s, context: s.context, locals: make(map[string]bool, len(names))}
	for _, name := range names {
		child.locals[name] = true
	}
	return child
}

// WithContext returns a child scope resolving bare identifiers against ctx
func (s *Scope) WithContext(ctx *code.Ref) *Scope {
	return &Scope{parent: s, context: ctx}
}

// Bound reports whether name is local in this scope or an enclosing one
func (s *Scope) Bound(name string) bool {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.locals[name] {
			return true
		}
	}
	return false
}

// CompileContext is the generator state while processing one block sequence.
// Helpers receive it to resolve arguments and to compile nested content.
type CompileContext struct {
	env    *Environment
	name   string
	root   *code.Ref
	scope  *Scope
	helper *nodes.Helper
	parent *CompileContext
}

// Environment returns the environment the template is compiled in
func (c *CompileContext) Environment() *Environment { return c.env }

// TemplateName returns the name of the template being compiled
func (c *CompileContext) TemplateName() string { return c.name }

// Registry returns the shared function registry
func (c *CompileContext) Registry() *Registry { return c.env.Registry() }

// Report returns the shared diagnostics accumulator
func (c *CompileContext) Report() *Report { return c.env.Report() }

// Scope returns the active scope
func (c *CompileContext) Scope() *Scope { return c.scope }

// Root returns the canonical context path of the top-level template
func (c *CompileContext) Root() *code.Ref { return c.root }

// Enclosing returns the helper whose content is being compiled, nil at top
// level
func (c *CompileContext) Enclosing() *nodes.Helper { return c.helper }

// ParentContext returns the context path of the enclosing helper's own scope
func (c *CompileContext) ParentContext() *code.Ref {
	if c.parent != nil {
		return c.parent.scope.Context()
	}
	return c.scope.Context()
}

// Compile generates the code fragment for nested helper content. A nil scope
// keeps the active one. Content is already whitespace-normalized, so it is
// split as is.
func (c *CompileContext) Compile(content string, helper *nodes.Helper, scope *Scope) (code.Expr, error) {
	if content == "" {
		return code.Empty, nil
	}
	if scope == nil {
		scope = c.scope
	}

	child := &CompileContext{
		env:    c.env,
		name:   c.name,
		root:   c.root,
		scope:  scope,
		helper: helper,
		parent: c,
	}

	blocks := lexer.SplitIntoBlocks(content)
	if helper != nil {
		if h, ok := c.env.GetHelper(helper.Name); ok {
			if rw, ok := h.(BlockRewriter); ok {
				for i, b := range blocks {
					blocks[i] = rw.RewriteBlock(b)
				}
			}
		}
	}
	return child.generate(blocks)
}

func (c *CompileContext) generate(blocks []nodes.Block) (code.Expr, error) {
	parts := make(code.Concat, 0, len(blocks))
	for _, block := range blocks {
		switch b := block.(type) {
		case nil:
			continue
		case *nodes.Plain:
			parts = append(parts, code.Literal{Text: b.Text})
		case *nodes.Variable:
			ref, err := c.Resolve(b.Path)
			if err != nil {
				return nil, NewErrorWithCause(ErrorTypeTemplate, err.Error(), b.Pos, err)
			}
			parts = append(parts, ref)
		case *nodes.Helper:
			helper, ok := c.env.GetHelper(b.Name)
			if !ok {
				return nil, NewUnknownHelperError(b.Name, b.Tag, b.Pos)
			}
			expr, err := helper.Process(c, b)
			if err != nil {
				return nil, err
			}
			if expr != nil {
				parts = append(parts, expr)
			}
		default:
			return nil, NewError(ErrorTypeTemplate, fmt.Sprintf("unsupported block %s", block.Type()), block.GetPosition())
		}
	}

	switch len(parts) {
	case 0:
		return code.Empty, nil
	case 1:
		return parts[0], nil
	}
	return parts, nil
}

// Resolve turns an accessor path into a reference. The state symbol and
// names bound in the scope chain are read directly; everything else is
// qualified with the scope's context path. Bracket indexes are resolved
// the same way unless they are numbers or quoted strings.
func (c *CompileContext) Resolve(path string) (code.Expr, error) {
	head, steps, err := splitPath(path)
	if err != nil {
		return nil, err
	}

	ref := c.base(head)
	for _, step := range steps {
		if !step.isIndex {
			ref.Path = append(ref.Path, code.Segment{Field: step.field})
			continue
		}
		index, err := c.index(step.index)
		if err != nil {
			return nil, err
		}
		ref.Path = append(ref.Path, code.Segment{Index: index})
	}
	return ref, nil
}

func (c *CompileContext) base(head string) *code.Ref {
	if state := c.env.StateParam(); state != "" && head == state {
		return &code.Ref{Name: head}
	}
	if c.scope.Bound(head) {
		return &code.Ref{Name: head}
	}
	return c.scope.Context().Child(head)
}

func (c *CompileContext) index(raw string) (code.Expr, error) {
	if i, err := strconv.Atoi(raw); err == nil {
		return code.Const{Value: i}, nil
	}
	if raw[0] == '"' || raw[0] == '\'' {
		return code.Const{Value: nodes.Unquote(raw)}, nil
	}
	return c.Resolve(raw)
}

// qualify maps a free identifier of an embedded expression to its
// context-qualified spelling.
func (c *CompileContext) qualify(name string) string {
	if state := c.env.StateParam(); state != "" && name == state {
		return name
	}
	if c.scope.Bound(name) {
		return name
	}
	return c.scope.Context().Child(name).String()
}

// Condition builds the test of a conditional helper from its positional
// arguments: a path, optionally negated with a leading !, or the inline
// js(...) form.
func (c *CompileContext) Condition(block *nodes.Helper) (code.Expr, bool, error) {
	values := block.ArgValues()
	if len(values) == 0 {
		return nil, false, NewError(ErrorTypeHelper, fmt.Sprintf("%s requires a condition", block.Name), block.Pos)
	}

	negate := strings.HasPrefix(values[0], "!")
	if negate {
		values[0] = values[0][1:]
		if values[0] == "" {
			// {#if ! flag}
			values = values[1:]
		}
	}
	if len(values) == 0 {
		return nil, false, NewError(ErrorTypeHelper, fmt.Sprintf("%s requires a condition", block.Name), block.Pos)
	}

	joined := strings.Join(values, " ")
	if strings.HasPrefix(joined, "js(") && strings.HasSuffix(joined, ")") {
		expr, err := c.Script(joined[len("js("):len(joined)-1], block.Pos)
		if err != nil {
			return nil, false, err
		}
		if expr == nil {
			expr = code.Const{Value: false}
		}
		return expr, negate, nil
	}

	if len(values) > 1 {
		return nil, false, NewError(ErrorTypeHelper,
			fmt.Sprintf("%s expects a single condition, got %q", block.Name, joined), block.Pos)
	}

	test, err := c.Resolve(values[0])
	if err != nil {
		return nil, false, NewErrorWithCause(ErrorTypeHelper, err.Error(), block.Pos, err)
	}
	return test, negate, nil
}

// Script compiles an embedded expression. When expressions are disabled it
// records the occurrence in the report and returns a nil expression.
func (c *CompileContext) Script(source string, pos nodes.Position) (code.Expr, error) {
	if !c.env.JSPermission() {
		c.Report().AddSkipped(c.name, source)
		c.env.logf("WARNING", "embedded expression skipped in %q: %s", c.name, source)
		return nil, nil
	}

	program, err := script.Compile(source, c.qualify, script.WithMemberResolver(memberOf))
	if err != nil {
		return nil, NewErrorWithCause(ErrorTypeExpression, err.Error(), pos, err)
	}
	return &code.Eval{Source: program.Source(), Program: program}, nil
}

// Compile compiles text into a render function registered under name. An
// empty name compiles without registering. Compiling a name that earlier
// templates referenced as a partial removes it from the report's missing
// list.
func (env *Environment) Compile(name, text string, opts ...CompileOption) (*Template, error) {
	var o compileOptions
	for _, opt := range opts {
		opt(&o)
	}

	root := canonicalContext(o.contextPath)
	params := []string{root.Name}
	if state := env.StateParam(); state != "" {
		params = append(params, state)
	}

	c := &CompileContext{
		env:   env,
		name:  name,
		root:  root,
		scope: newScope(root),
	}

	blocks := lexer.SplitIntoBlocks(lexer.NormalizeWhitespace(text))
	body, err := c.generate(blocks)
	if err != nil {
		return nil, WrapError(err, name)
	}

	fn := &code.Func{Name: name, Params: params, Body: body}
	evaluator := env.Evaluator()
	if evaluator == nil {
		return nil, NewError(ErrorTypeTemplate, "no evaluator configured", nodes.NoPosition)
	}
	render, err := evaluator.Materialize(fn, env.Registry())
	if err != nil {
		return nil, WrapError(err, name)
	}

	if name != "" {
		env.Registry().Register(name, render)
		if env.Report().Resolve(name) {
			env.logf("DEBUG", "partial %q is now compiled", name)
		}
	}

	return &Template{name: name, env: env, fn: fn, render: render}, nil
}

// CompileSource compiles a template given as a string, []byte, io.Reader or
// fmt.Stringer. Any other source fails with ErrorTypeInvalidTemplate.
func (env *Environment) CompileSource(name string, source interface{}, opts ...CompileOption) (*Template, error) {
	var text string
	switch s := source.(type) {
	case string:
		text = s
	case []byte:
		text = string(s)
	case io.Reader:
		data, err := io.ReadAll(s)
		if err != nil {
			return nil, &Error{
				Type:     ErrorTypeInvalidTemplate,
				Message:  "cannot read template",
				Template: name,
				Position: nodes.NoPosition,
				Cause:    err,
			}
		}
		text = string(data)
	case fmt.Stringer:
		text = s.String()
	default:
		return nil, &Error{
			Type:     ErrorTypeInvalidTemplate,
			Message:  fmt.Sprintf("invalid template source of type %T", source),
			Template: name,
			Position: nodes.NoPosition,
		}
	}
	return env.Compile(name, text, opts...)
}

func canonicalContext(path string) *code.Ref {
	if path == "" {
		return &code.Ref{Name: contextSymbol}
	}
	fields := strings.Split(path, ".")
	ref := &code.Ref{Name: fields[0]}
	return ref.Child(append(fields[1:], contextSymbol)...)
}
