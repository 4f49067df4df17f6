// Package code defines the intermediate representation emitted by the
// template code generator. Every expression prints itself as code text, so a
// compiled template can be inspected in the same shape an evaluator
// materializes it from.
package code

import (
	"fmt"
	"strconv"
	"strings"
)

// Expr represents a generated expression
type Expr interface {
	// String returns the code text of the expression
	String() string
	isExpr()
}

// Runner executes an embedded expression against a flat variable
// environment.
type Runner interface {
	Run(env map[string]interface{}) (interface{}, error)
}

// Literal is constant output text
type Literal struct {
	Text string
}

// Const is a constant value used as an index, such as items[0]
type Const struct {
	Value interface{}
}

// Segment is one step of a Ref: either .Field or [Index]
type Segment struct {
	Field string
	Index Expr
}

// Ref reads the variable Name and walks Path from it
type Ref struct {
	Name string
	Path []Segment
}

// Concat joins the string forms of its parts
type Concat []Expr

// Cond selects Then or Else depending on the truthiness of Test
type Cond struct {
	Test   Expr
	Negate bool
	Then   Expr
	Else   Expr
}

// Each renders Body once per element of Source, binding the element to Item
// and its zero-based position to Index. Else is rendered when Source is
// falsy or empty.
type Each struct {
	Source Expr
	Item   string
	Index  string
	Body   Expr
	Else   Expr
}

// Invoke calls a routine registered under a fixed internal name
type Invoke struct {
	Routine string
	Args    []Expr
}

// Partial calls another compiled template by name. State is nil when state
// threading is disabled.
type Partial struct {
	Name  string
	Arg   Expr
	State Expr
}

// Eval evaluates an embedded expression. Source is the rewritten, minified
// text that Program was compiled from.
type Eval struct {
	Source  string
	Program Runner
}

// Func is a complete generated render function
type Func struct {
	Name   string
	Params []string
	Body   Expr
}

func (Literal) isExpr() {}
func (Const) isExpr() {}
func (*Ref) isExpr() {}
func (Concat) isExpr() {}
func (*Cond) isExpr() {}
func (*Each) isExpr() {}
func (*Invoke) isExpr() {}
func (*Partial) isExpr() {}
func (*Eval) isExpr() {}

// Empty is the empty output fragment
var Empty Expr = Literal{}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\r", `\r`,
	"\n", `\n`,
	"'", `\'`,
)

func (l Literal) String() string {
	return "'" + literalEscaper.Replace(l.Text) + "'"
}

func (c Const) String() string {
	switch v := c.Value.(type) {
	case string:
		return "'" + literalEscaper.Replace(v) + "'"
	case int:
		return strconv.Itoa(v)
	case nil:
		return "null"
	default:
		return fmt.Sprint(v)
	}
}

func (r *Ref) String() string {
	var buf strings.Builder
	buf.WriteString(r.Name)
	for _, seg := range r.Path {
		if seg.Index != nil {
			buf.WriteString("[")
			buf.WriteString(seg.Index.String())
			buf.WriteString("]")
			continue
		}
		buf.WriteString(".")
		buf.WriteString(seg.Field)
	}
	return buf.String()
}

// Child returns a reference extended by the given field names.
func (r *Ref) Child(fields ...string) *Ref {
	path := make([]Segment, len(r.Path), len(r.Path)+len(fields))
	copy(path, r.Path)
	for _, f := range fields {
		path = append(path, Segment{Field: f})
	}
	return &Ref{Name: r.Name, Path: path}
}

func (c Concat) String() string {
	if len(c) == 0 {
		return Empty.String()
	}
	parts := make([]string, len(c))
	for i, e := range c {
		parts[i] = e.String()
	}
	return strings.Join(parts, "+")
}

func (c *Cond) String() string {
	neg := ""
	if c.Negate {
		neg = "!"
	}
	return fmt.Sprintf("(%s%s?%s:%s)", neg, c.Test, orEmpty(c.Then), orEmpty(c.Else))
}

func (e *Each) String() string {
	src := e.Source.String()
	return fmt.Sprintf("(%s&&%s.length?%s.map((%s,%s)=>{return %s}).join(''):%s)",
		src, src, src, e.Item, e.Index, orEmpty(e.Body), orEmpty(e.Else))
}

func (i *Invoke) String() string {
	return fmt.Sprintf("this.%s(%s)", i.Routine, joinExprs(i.Args))
}

func (p *Partial) String() string {
	args := []Expr{p.Arg}
	if p.State != nil {
		args = append(args, p.State)
	}
	return fmt.Sprintf("this.%s(%s)", p.Name, joinExprs(args))
}

func (e *Eval) String() string {
	return "eval(" + Const{Value: e.Source}.String() + ")"
}

func (f *Func) String() string {
	return fmt.Sprintf("function(%s){return %s}", strings.Join(f.Params, ","), orEmpty(f.Body))
}

func orEmpty(e Expr) string {
	if e == nil {
		return Empty.String()
	}
	return e.String()
}

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = orEmpty(e)
	}
	return strings.Join(parts, ",")
}
