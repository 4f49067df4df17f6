package runtime

import (
	"fmt"
	"strings"

	"github.com/deicod/brace/code"
	"github.com/deicod/brace/nodes"
)

// Evaluator turns a generated function into something callable. The default
// Interpreter walks the code tree directly; other evaluators may translate
// the printed code text instead.
type Evaluator interface {
	Materialize(fn *code.Func, reg *Registry) (RenderFunc, error)
}

// Interpreter evaluates generated code trees
type Interpreter struct{}

// NewInterpreter creates a new interpreter
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// Materialize validates fn and returns a render function evaluating its body.
// Routines must already be registered; partials are looked up on every call,
// so templates compiled later are picked up.
func (in *Interpreter) Materialize(fn *code.Func, reg *Registry) (RenderFunc, error) {
	if fn == nil {
		return nil, NewError(ErrorTypeTemplate, "function cannot be nil", nodes.NoPosition)
	}
	if len(fn.Params) == 0 {
		return nil, NewError(ErrorTypeTemplate, fmt.Sprintf("function %q has no parameters", fn.Name), nodes.NoPosition)
	}
	if reg == nil {
		return nil, NewError(ErrorTypeTemplate, "registry cannot be nil", nodes.NoPosition)
	}
	if err := validate(fn.Body, reg); err != nil {
		return nil, err
	}

	params := append([]string(nil), fn.Params...)
	body := fn.Body
	return func(data, state interface{}) (string, error) {
		f := &frame{vars: make(map[string]interface{}, len(params))}
		f.vars[params[0]] = data
		if len(params) > 1 {
			f.vars[params[1]] = state
		}

		v := &visitor{reg: reg}
		value, err := v.visit(body, f)
		if err != nil {
			return "", WrapError(err, fn.Name)
		}
		return stringify(value), nil
	}, nil
}

func validate(expr code.Expr, reg *Registry) error {
	switch e := expr.(type) {
	case nil, code.Literal, code.Const:
		return nil
	case *code.Ref:
		for _, seg := range e.Path {
			if err := validate(seg.Index, reg); err != nil {
				return err
			}
		}
	case code.Concat:
		for _, part := range e {
			if err := validate(part, reg); err != nil {
				return err
			}
		}
	case *code.Cond:
		return validateAll(reg, e.Test, e.Then, e.Else)
	case *code.Each:
		return validateAll(reg, e.Source, e.Body, e.Else)
	case *code.Invoke:
		if _, ok := reg.Routine(e.Routine); !ok {
			return NewError(ErrorTypeTemplate, fmt.Sprintf("unknown routine %q", e.Routine), nodes.NoPosition)
		}
		return validateAll(reg, e.Args...)
	case *code.Partial:
		return validateAll(reg, e.Arg, e.State)
	case *code.Eval:
		if e.Program == nil {
			return NewError(ErrorTypeExpression, fmt.Sprintf("expression %q was not compiled", e.Source), nodes.NoPosition)
		}
	default:
		return NewError(ErrorTypeTemplate, fmt.Sprintf("unsupported expression %T", expr), nodes.NoPosition)
	}
	return nil
}

func validateAll(reg *Registry, exprs ...code.Expr) error {
	for _, e := range exprs {
		if err := validate(e, reg); err != nil {
			return err
		}
	}
	return nil
}

// frame is one level of local variables. Lookups fall through to the parent.
type frame struct {
	vars   map[string]interface{}
	parent *frame
}

func (f *frame) lookup(name string) interface{} {
	for fr := f; fr != nil; fr = fr.parent {
		if v, ok := fr.vars[name]; ok {
			return v
		}
	}
	return nil
}

// flatten merges the frame chain into one map, inner names winning
func (f *frame) flatten() map[string]interface{} {
	var chain []*frame
	for fr := f; fr != nil; fr = fr.parent {
		chain = append(chain, fr)
	}
	env := make(map[string]interface{})
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].vars {
			env[k] = v
		}
	}
	return env
}

type visitor struct {
	reg *Registry
}

func (v *visitor) visit(expr code.Expr, f *frame) (interface{}, error) {
	switch e := expr.(type) {
	case nil:
		return "", nil
	case code.Literal:
		return e.Text, nil
	case code.Const:
		return e.Value, nil
	case *code.Ref:
		return v.visitRef(e, f)
	case code.Concat:
		var buf strings.Builder
		for _, part := range e {
			value, err := v.visit(part, f)
			if err != nil {
				return nil, err
			}
			buf.WriteString(stringify(value))
		}
		return buf.String(), nil
	case *code.Cond:
		return v.visitCond(e, f)
	case *code.Each:
		return v.visitEach(e, f)
	case *code.Invoke:
		return v.visitInvoke(e, f)
	case *code.Partial:
		return v.visitPartial(e, f)
	case *code.Eval:
		result, err := e.Program.Run(f.flatten())
		if err != nil {
			return nil, NewErrorWithCause(ErrorTypeRender, fmt.Sprintf("evaluating %s: %v", e.Source, err), nodes.NoPosition, err)
		}
		return result, nil
	}
	return nil, NewError(ErrorTypeRender, fmt.Sprintf("unsupported expression %T", expr), nodes.NoPosition)
}

func (v *visitor) visitRef(ref *code.Ref, f *frame) (interface{}, error) {
	value := f.lookup(ref.Name)
	for _, seg := range ref.Path {
		if seg.Index == nil {
			value = resolveField(value, seg.Field)
			continue
		}
		index, err := v.visit(seg.Index, f)
		if err != nil {
			return nil, err
		}
		value = resolveIndex(value, index)
	}
	return value, nil
}

func (v *visitor) visitCond(cond *code.Cond, f *frame) (interface{}, error) {
	test, err := v.visit(cond.Test, f)
	if err != nil {
		return nil, err
	}
	if truthy(test) != cond.Negate {
		return v.visit(cond.Then, f)
	}
	return v.visit(cond.Else, f)
}

func (v *visitor) visitEach(each *code.Each, f *frame) (interface{}, error) {
	source, err := v.visit(each.Source, f)
	if err != nil {
		return nil, err
	}

	items := iterate(source)
	if len(items) == 0 {
		return v.visit(each.Else, f)
	}

	var buf strings.Builder
	for i, item := range items {
		child := &frame{
			vars:   map[string]interface{}{each.Item: item, each.Index: i},
			parent: f,
		}
		value, err := v.visit(each.Body, child)
		if err != nil {
			return nil, err
		}
		buf.WriteString(stringify(value))
	}
	return buf.String(), nil
}

func (v *visitor) visitInvoke(inv *code.Invoke, f *frame) (interface{}, error) {
	routine, ok := v.reg.Routine(inv.Routine)
	if !ok {
		return nil, NewError(ErrorTypeRender, fmt.Sprintf("unknown routine %q", inv.Routine), nodes.NoPosition)
	}

	args := make([]interface{}, len(inv.Args))
	for i, a := range inv.Args {
		value, err := v.visit(a, f)
		if err != nil {
			return nil, err
		}
		args[i] = value
	}

	result, err := routine(args...)
	if err != nil {
		return nil, NewErrorWithCause(ErrorTypeRender, fmt.Sprintf("%s: %v", inv.Routine, err), nodes.NoPosition, err)
	}
	return result, nil
}

// visitPartial renders a partial. Names that are still not registered at
// render time produce no output.
func (v *visitor) visitPartial(p *code.Partial, f *frame) (interface{}, error) {
	fn, ok := v.reg.Lookup(p.Name)
	if !ok {
		return "", nil
	}

	arg, err := v.visit(p.Arg, f)
	if err != nil {
		return nil, err
	}
	var state interface{}
	if p.State != nil {
		if state, err = v.visit(p.State, f); err != nil {
			return nil, err
		}
	}

	return fn(arg, state)
}
