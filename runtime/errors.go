package runtime

import (
	"errors"
	"fmt"
	"strings"

	"github.com/deicod/brace/nodes"
)

// ErrorType represents different types of compile and render errors
type ErrorType string

const (
	ErrorTypeTemplate        ErrorType = "template_error"
	ErrorTypeInvalidTemplate ErrorType = "invalid_template"
	ErrorTypeUnknownHelper   ErrorType = "unknown_helper"
	ErrorTypeHelper          ErrorType = "helper_error"
	ErrorTypeExpression      ErrorType = "expression_error"
	ErrorTypeRender          ErrorType = "render_error"
)

// Error represents a template error with position information
type Error struct {
	Type     ErrorType
	Message  string
	Template string
	Position nodes.Position
	Cause    error
}

// Error implements the error interface
func (e *Error) Error() string {
	var buf strings.Builder
	buf.WriteString(string(e.Type))
	if e.Template != "" {
		fmt.Fprintf(&buf, " in %q", e.Template)
	}
	if e.Position.IsValid() {
		fmt.Fprintf(&buf, " at piece %d", e.Position.Piece)
	}
	buf.WriteString(": ")
	buf.WriteString(e.Message)
	return buf.String()
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new template error
func NewError(errorType ErrorType, message string, position nodes.Position) *Error {
	return &Error{
		Type:     errorType,
		Message:  message,
		Position: position,
	}
}

// NewErrorWithCause creates a new template error with an underlying cause
func NewErrorWithCause(errorType ErrorType, message string, position nodes.Position, cause error) *Error {
	return &Error{
		Type:     errorType,
		Message:  message,
		Position: position,
		Cause:    cause,
	}
}

// WrapError attaches the template name to err. Errors that are not already
// template errors become ErrorTypeTemplate errors.
func WrapError(err error, template string) error {
	if err == nil {
		return nil
	}

	var base *Error
	switch e := err.(type) {
	case *Error:
		base = e
	case *UnknownHelperError:
		base = e.runtimeError()
	case *TemplateNotFoundError:
		base = e.runtimeError()
	default:
		return &Error{
			Type:     ErrorTypeTemplate,
			Message:  err.Error(),
			Template: template,
			Position: nodes.NoPosition,
			Cause:    err,
		}
	}
	if base != nil && base.Template == "" {
		base.Template = template
	}
	return err
}

// IsErrorType reports whether err, or an error it wraps, is a template error
// of the given type.
func IsErrorType(err error, errorType ErrorType) bool {
	var base *Error
	if errors.As(err, &base) {
		return base.Type == errorType
	}
	var unknown *UnknownHelperError
	if errors.As(err, &unknown) {
		return errorType == ErrorTypeUnknownHelper
	}
	var notFound *TemplateNotFoundError
	if errors.As(err, &notFound) {
		return errorType == ErrorTypeTemplate
	}
	return false
}

// UnknownHelperError is returned when a tag names a helper that is not
// registered.
type UnknownHelperError struct {
	base   *Error
	Helper string
	Tag    string
}

// NewUnknownHelperError creates an UnknownHelperError for the given tag
func NewUnknownHelperError(helper, tag string, position nodes.Position) *UnknownHelperError {
	return &UnknownHelperError{
		base:   NewError(ErrorTypeUnknownHelper, fmt.Sprintf("missing helper %q in tag %s", helper, tag), position),
		Helper: helper,
		Tag:    tag,
	}
}

// Error returns the message for UnknownHelperError.
func (e *UnknownHelperError) Error() string {
	if e == nil || e.base == nil {
		return "unknown helper"
	}
	return e.base.Error()
}

func (e *UnknownHelperError) runtimeError() *Error {
	if e == nil {
		return nil
	}
	return e.base
}

// TemplateNotFoundError represents an error when a single template cannot be located.
type TemplateNotFoundError struct {
	base  *Error
	Name  string
	Tried []string
}

// NewTemplateNotFound creates a TemplateNotFoundError with optional tried locations and cause.
func NewTemplateNotFound(name string, tried []string, cause error) *TemplateNotFoundError {
	message := fmt.Sprintf("template %s not found", name)
	if len(tried) > 0 {
		message = fmt.Sprintf("%s (tried: %s)", message, strings.Join(tried, ", "))
	}

	return &TemplateNotFoundError{
		base:  NewErrorWithCause(ErrorTypeTemplate, message, nodes.NoPosition, cause),
		Name:  name,
		Tried: append([]string(nil), tried...),
	}
}

// Error returns the message for TemplateNotFoundError.
func (e *TemplateNotFoundError) Error() string {
	if e == nil {
		return "template not found"
	}
	if e.base != nil {
		return e.base.Error()
	}
	return fmt.Sprintf("template %s not found", e.Name)
}

// Unwrap returns the underlying cause for TemplateNotFoundError.
func (e *TemplateNotFoundError) Unwrap() error {
	if e == nil || e.base == nil {
		return nil
	}
	return e.base.Cause
}

func (e *TemplateNotFoundError) runtimeError() *Error {
	if e == nil {
		return nil
	}
	return e.base
}
