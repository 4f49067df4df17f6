package runtime

import (
	"fmt"
	"strings"

	"github.com/deicod/brace/code"
	"github.com/deicod/brace/nodes"
)

// Helper generates code for a helper tag. It may return nil to emit nothing.
type Helper interface {
	Process(c *CompileContext, block *nodes.Helper) (code.Expr, error)
}

// HelperFunc adapts a function to the Helper interface
type HelperFunc func(c *CompileContext, block *nodes.Helper) (code.Expr, error)

// Process calls f(c, block)
func (f HelperFunc) Process(c *CompileContext, block *nodes.Helper) (code.Expr, error) {
	return f(c, block)
}

// BlockRewriter is implemented by helpers that transform the blocks of their
// nested content before code is generated for them.
type BlockRewriter interface {
	RewriteBlock(block nodes.Block) nodes.Block
}

const (
	routineEscape = "_es"
	routineKeys   = "_keys"

	defaultIndexSymbol = "_i"
)

func (env *Environment) registerBuiltinHelpers() {
	env.helpers["if"] = HelperFunc(ifHelper)
	env.helpers["for"] = HelperFunc(forHelper)
	env.helpers["escape"] = HelperFunc(escapeHelper)
	env.helpers["partial"] = HelperFunc(partialHelper)
	env.helpers["js"] = HelperFunc(scriptHelper)
}

// ifHelper handles {#if path}...{else}...{/if}. The condition may be negated
// with ! or given as js(expression).
func ifHelper(c *CompileContext, block *nodes.Helper) (code.Expr, error) {
	test, negate, err := c.Condition(block)
	if err != nil {
		return nil, err
	}

	then, err := c.Compile(block.Content, block, nil)
	if err != nil {
		return nil, err
	}
	otherwise, err := c.Compile(block.Inverse, block, nil)
	if err != nil {
		return nil, err
	}

	return &code.Cond{Test: test, Negate: negate, Then: then, Else: otherwise}, nil
}

// forHelper handles {#for item of path} over elements and {#for key in path}
// over keys. The loop position is bound as _i unless index=name renames it.
func forHelper(c *CompileContext, block *nodes.Helper) (code.Expr, error) {
	values := block.ArgValues()
	if len(values) != 3 || (values[1] != "of" && values[1] != "in") {
		return nil, NewError(ErrorTypeHelper,
			fmt.Sprintf("for expects <name> of|in <path>, got %q", strings.Join(values, " ")), block.Pos)
	}

	item := values[0]
	index := defaultIndexSymbol
	if name, ok := block.Hash["index"].(string); ok && name != "" {
		index = name
	}

	collection, err := c.Resolve(values[2])
	if err != nil {
		return nil, NewErrorWithCause(ErrorTypeHelper, err.Error(), block.Pos, err)
	}
	source := collection
	if values[1] == "in" {
		c.Registry().EnsureRoutine(routineKeys, keysRoutine)
		source = &code.Invoke{Routine: routineKeys, Args: []code.Expr{collection}}
	}

	body, err := c.Compile(block.Content, block, c.Scope().Bind(item, index))
	if err != nil {
		return nil, err
	}
	otherwise, err := c.Compile(block.Inverse, block, nil)
	if err != nil {
		return nil, err
	}

	return &code.Each{Source: source, Item: item, Index: index, Body: body, Else: otherwise}, nil
}

// escapeHelper handles {escape path}
func escapeHelper(c *CompileContext, block *nodes.Helper) (code.Expr, error) {
	if len(block.Args) == 0 {
		return nil, NewError(ErrorTypeHelper, "escape expects a path", block.Pos)
	}

	value, err := c.Resolve(block.Args[0].Value)
	if err != nil {
		return nil, NewErrorWithCause(ErrorTypeHelper, err.Error(), block.Pos, err)
	}
	c.Registry().EnsureRoutine(routineEscape, escapeRoutine)
	return &code.Invoke{Routine: routineEscape, Args: []code.Expr{value}}, nil
}

// partialHelper handles {>name} and {>name path}. Without a path the partial
// receives the whole canonical context.
func partialHelper(c *CompileContext, block *nodes.Helper) (code.Expr, error) {
	if len(block.Args) == 0 {
		return nil, NewError(ErrorTypeHelper, "partial expects a template name", block.Pos)
	}

	name := block.Args[0].Unquoted()
	var arg code.Expr = c.Root()
	if len(block.Args) > 1 {
		ref, err := c.Resolve(block.Args[1].Value)
		if err != nil {
			return nil, NewErrorWithCause(ErrorTypeHelper, err.Error(), block.Pos, err)
		}
		arg = ref
	}

	var state code.Expr
	if symbol := c.Environment().StateParam(); symbol != "" {
		state = &code.Ref{Name: symbol}
	}

	if !c.Registry().Has(name) {
		c.Report().AddMissing(name)
		c.Environment().logf("WARNING", "partial %q used by %q is not compiled yet", name, c.TemplateName())
	}

	return &code.Partial{Name: name, Arg: arg, State: state}, nil
}

// scriptHelper handles {js expression}
func scriptHelper(c *CompileContext, block *nodes.Helper) (code.Expr, error) {
	source := strings.TrimSpace(strings.Join(block.ArgValues(), " "))
	if source == "" {
		return nil, NewError(ErrorTypeHelper, "js expects an expression", block.Pos)
	}
	return c.Script(source, block.Pos)
}

func escapeRoutine(args ...interface{}) (interface{}, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("expected 1 argument, got %d", len(args))
	}
	return EscapeHTML(stringify(args[0])), nil
}

func keysRoutine(args ...interface{}) (interface{}, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("expected 1 argument, got %d", len(args))
	}
	return objectKeys(args[0]), nil
}
