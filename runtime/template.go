package runtime

import (
	"io"

	"github.com/deicod/brace/code"
	"github.com/deicod/brace/nodes"
)

// Template represents a compiled template ready for rendering
type Template struct {
	name   string
	env    *Environment
	fn     *code.Func
	render RenderFunc
}

// Name returns the name the template was compiled under
func (t *Template) Name() string {
	return t.name
}

// Environment returns the environment that compiled the template
func (t *Template) Environment() *Environment {
	return t.env
}

// Func returns the generated function
func (t *Template) Func() *code.Func {
	return t.fn
}

// Code returns the generated function as code text, e.g.
// function(p){return '<p>'+p.name+'</p>'}
func (t *Template) Code() string {
	return t.fn.String()
}

// RenderFunc returns the materialized render function
func (t *Template) RenderFunc() RenderFunc {
	return t.render
}

// Render renders the template with data
func (t *Template) Render(data interface{}) (string, error) {
	return t.RenderWithState(data, nil)
}

// RenderWithState renders the template with data and a state object that is
// forwarded to partials when state threading is enabled.
func (t *Template) RenderWithState(data, state interface{}) (string, error) {
	if t.render == nil {
		return "", NewError(ErrorTypeRender, "template is not compiled", nodes.NoPosition)
	}
	return t.render(data, state)
}

// Execute renders the template with data and writes the output to writer
func (t *Template) Execute(data interface{}, writer io.Writer) error {
	out, err := t.Render(data)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(writer, out); err != nil {
		return WrapError(err, t.name)
	}
	return nil
}
