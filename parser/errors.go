package parser

import (
	"fmt"

	"github.com/robinvdvleuten/ofx/ast"
)

// location formats a position as "filename:line", or "line N" without a filename.
func location(pos ast.Position) string {
	if pos.Filename == "" {
		return fmt.Sprintf("line %d", pos.Line)
	}
	return fmt.Sprintf("%s:%d", pos.Filename, pos.Line)
}

// StackUnderflowError is recorded when a closing tag appears while no container
// besides the document body is open. The line is ignored.
type StackUnderflowError struct {
	Pos ast.Position
	Tag string
}

func (e *StackUnderflowError) Error() string {
	return fmt.Sprintf("%s: closing tag </%s> has no open container", location(e.Pos), e.Tag)
}

func (e *StackUnderflowError) GetPosition() ast.Position {
	return e.Pos
}

// TagMismatchError is recorded in strict nesting mode when a closing tag does
// not name the innermost open container. The container is closed regardless.
type TagMismatchError struct {
	Pos      ast.Position
	Expected string
	Found    string
	Opened   ast.Position // Where the innermost container was opened
}

func (e *TagMismatchError) Error() string {
	return fmt.Sprintf("%s: closing tag </%s> does not match <%s> opened on line %d",
		location(e.Pos), e.Found, e.Expected, e.Opened.Line)
}

func (e *TagMismatchError) GetPosition() ast.Position {
	return e.Pos
}

// UnclosedContainerError is recorded in strict nesting mode for every
// container still open at the end of the input.
type UnclosedContainerError struct {
	Pos ast.Position
	Tag string
}

func (e *UnclosedContainerError) Error() string {
	return fmt.Sprintf("%s: container <%s> is never closed", location(e.Pos), e.Tag)
}

func (e *UnclosedContainerError) GetPosition() ast.Position {
	return e.Pos
}

// Errors collects the structural problems found while parsing. It is returned
// next to a best-effort document, never instead of one.
type Errors struct {
	Errors []error
}

func (e *Errors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d structural errors found", len(e.Errors))
}

// Unwrap returns the underlying errors for error unwrapping.
func (e *Errors) Unwrap() []error {
	return e.Errors
}
