// Package brace compiles brace-delimited HTML templates into render
// functions.
//
// A template mixes markup with tags such as {name}, {#if cond}...{/if},
// {#for item of items}...{/for}, {escape path}, {>partial} and
// {js expression}. Compiling a template yields generated code that an
// Evaluator turns into a RenderFunc; every compiled template is registered by
// name so others can call it as a partial.
package brace

import (
	"os"
	"path/filepath"

	"github.com/deicod/brace/code"
	"github.com/deicod/brace/nodes"
	"github.com/deicod/brace/runtime"
)

// Version of the brace library
const Version = "0.1.0"

// Template represents a compiled template
type Template = runtime.Template

// Environment holds compiler configuration and the shared function registry
type Environment = runtime.Environment

// RenderFunc is a materialized template
type RenderFunc = runtime.RenderFunc

// Registry maps template names to render functions
type Registry = runtime.Registry

// Report accumulates missing partials and skipped expressions
type Report = runtime.Report

// Helper generates code for a helper tag
type Helper = runtime.Helper

// HelperFunc adapts a function to the Helper interface
type HelperFunc = runtime.HelperFunc

// CompileContext is passed to helpers while generating code
type CompileContext = runtime.CompileContext

// NewEnvironment creates a new environment with the built-in helpers
func NewEnvironment() *Environment {
	return runtime.NewEnvironment()
}

// Compile compiles text in a fresh environment under name
func Compile(name, text string) (*Template, error) {
	return runtime.NewEnvironment().Compile(name, text)
}

// CompileFile compiles the file at filename in a fresh environment. The
// template is registered under the file's base name without extension.
func CompileFile(filename string) (*Template, error) {
	if filename == "" {
		return nil, runtime.NewError(runtime.ErrorTypeInvalidTemplate, "filename must not be empty", nodes.NoPosition)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, runtime.NewTemplateNotFound(filename, []string{filename}, err)
	}

	base := filepath.Base(filename)
	name := base[:len(base)-len(filepath.Ext(base))]
	return runtime.NewEnvironment().Compile(name, string(data))
}

// Node access for inspecting templates

// Block is one classified unit of template text
type Block = nodes.Block

// Expr is a generated code expression
type Expr = code.Expr

// DumpBlocks returns a string representation of a block sequence for
// debugging
func DumpBlocks(blocks []Block) string {
	return nodes.Dump(blocks)
}

// Error types

// Error represents a compile or render error
type Error = runtime.Error

// ErrorType represents the type of error
type ErrorType = runtime.ErrorType

// IsErrorType reports whether err is a template error of the given type
func IsErrorType(err error, errorType ErrorType) bool {
	return runtime.IsErrorType(err, errorType)
}
