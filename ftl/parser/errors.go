package parser

import (
	"fmt"
	"strings"

	"github.com/ftlkit/ftl.go/ftl/parser/ast"
)

// Error codes raised by the parser
const (
	CodeUnexpectedChar    = "E0001"
	CodeExpectedEntry     = "E0002"
	CodeExpectedToken     = "E0003"
	CodeExpectedCharRange = "E0004"
	CodeMessageBlank      = "E0005"
	CodeTermMissingValue  = "E0006"
	CodeCalleeLowercase   = "E0008"
	CodeMissingVariantKey = "E0009"
	CodeMissingDefault    = "E0010"
	CodeMissingVariants   = "E0011"
	CodeMissingValue      = "E0012"
	CodeMultipleDefaults  = "E0015"
	CodeUnterminatedStr   = "E0020"
	CodePositionalOrder   = "E0021"
	CodeDuplicateNamedArg = "E0022"
	CodeNamedArgLiteral   = "E0023"
	CodeInvalidNumber     = "E0024"
	CodeInvalidEscape     = "E0025"
	CodeEscapeTooLarge    = "E0026"
	CodeCommentTooDeep    = "E0027"
	CodeForbiddenSelector = "E0028"
)

// Error represents a structured failure raised by a grammar function.
// It never aborts a whole parse on its own; the entry-level recovery logic
// turns it into a junk annotation instead.
type Error struct {
	Code     string
	Message  string
	Span     ast.Span
	Expected []string
	Hint     string
}

// Error renders the failure as a single human-readable line
func (err *Error) Error() string {
	return fmt.Sprintf("error[%s]: %s", err.Code, err.Message)
}

// Render produces the full multi-line diagnostic form of the error, resolving
// the span against the given source to a line/column position.
func (err *Error) Render(source string) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	line, col := NewCursor(source).Advance(err.Span.Start).LineCol()
	fmt.Fprintf(&sb, "\n --> %d:%d", line, col)
	if len(err.Expected) > 0 {
		fmt.Fprintf(&sb, "\n = note: expected %s", strings.Join(err.Expected, " or "))
	}
	if err.Hint != "" {
		fmt.Fprintf(&sb, "\n = help: %s", err.Hint)
	}
	return sb.String()
}

// annotation converts the error into the junk annotation form
func (err *Error) annotation() ast.Annotation {
	return ast.Annotation{Code: err.Code, Message: err.Message, Span: err.Span}
}

// newError creates a new error covering the source range between the two cursors
func newError(from, to Cursor, code string, msgFormat string, replacements ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(msgFormat, replacements...),
		Span:    ast.Span{Start: from.Pos(), End: to.Pos()},
	}
}

// newErrorAt creates a new zero-width error at the given cursor position
func newErrorAt(at Cursor, code string, msgFormat string, replacements ...interface{}) *Error {
	return newError(at, at, code, msgFormat, replacements...)
}
