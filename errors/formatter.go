// Package errors renders diagnostics for the different consumers of the tool:
// TextFormatter for the command line and JSONFormatter for the viewer API.
//
// The error types themselves live with the code that produces them, e.g. the
// structural errors in package parser. Anything exposing
//
//	GetPosition() ast.Position
//
// is rendered with its location and, when the source is known, the
// surrounding lines.
package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/robinvdvleuten/ofx/ast"
	"github.com/robinvdvleuten/ofx/converter"
	"github.com/robinvdvleuten/ofx/parser"
)

// Formatter formats errors for output in different formats.
type Formatter interface {
	// Format formats a single error.
	Format(err error) string

	// FormatAll formats multiple errors.
	FormatAll(errs []error) string
}

// positioned is implemented by errors that know where they occurred.
type positioned interface {
	error
	GetPosition() ast.Position
}

// Flatten expands aggregate errors such as *parser.Errors into their parts.
func Flatten(err error) []error {
	if err == nil {
		return nil
	}
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		var flat []error
		for _, e := range multi.Unwrap() {
			flat = append(flat, Flatten(e)...)
		}
		return flat
	}
	return []error{err}
}

// TextFormatter formats errors for command-line output.
type TextFormatter struct {
	source       []byte
	contextLines int
}

// TextFormatterOption is an option for configuring TextFormatter.
type TextFormatterOption func(*TextFormatter)

// WithSource sets the statement text shown around positioned errors.
func WithSource(source []byte) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.source = source
	}
}

// WithContextLines sets how many lines are shown before and after the error
// line. The default is 2.
func WithContextLines(n int) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.contextLines = max(n, 0)
	}
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(opts ...TextFormatterOption) *TextFormatter {
	tf := &TextFormatter{contextLines: 2}
	for _, opt := range opts {
		opt(tf)
	}
	return tf
}

// Format formats a single error. Positioned errors get the source lines
// around them with a caret under the offending column.
func (tf *TextFormatter) Format(err error) string {
	var pe positioned
	if !stderrors.As(err, &pe) || tf.source == nil {
		return err.Error()
	}

	var buf bytes.Buffer
	buf.WriteString(err.Error())
	buf.WriteString("\n\n")
	tf.writeSourceContext(&buf, pe.GetPosition())

	// A mismatch also shows where the container it closed was opened.
	var mismatch *parser.TagMismatchError
	if stderrors.As(err, &mismatch) && !mismatch.Opened.IsZero() {
		fmt.Fprintf(&buf, "\n   opened here:\n")
		tf.writeLine(&buf, mismatch.Opened)
	}

	return buf.String()
}

// FormatAll formats multiple errors, separating them with blank lines.
func (tf *TextFormatter) FormatAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	parts := make([]string, 0, len(errs))
	for _, err := range errs {
		parts = append(parts, strings.TrimRight(tf.Format(err), "\n"))
	}
	return strings.Join(parts, "\n\n")
}

func (tf *TextFormatter) sourceLines() []string {
	return strings.Split(strings.ReplaceAll(string(tf.source), "\r\n", "\n"), "\n")
}

// writeSourceContext writes the lines around pos, indented by three spaces.
func (tf *TextFormatter) writeSourceContext(buf *bytes.Buffer, pos ast.Position) {
	lines := tf.sourceLines()
	if pos.Line < 1 || pos.Line > len(lines) {
		return
	}

	start := max(pos.Line-1-tf.contextLines, 0)
	end := min(pos.Line-1+tf.contextLines, len(lines)-1)

	for i := start; i <= end; i++ {
		buf.WriteString("   ")
		buf.WriteString(lines[i])
		buf.WriteByte('\n')

		if i == pos.Line-1 && pos.Column > 0 {
			buf.WriteString("   ")
			buf.WriteString(strings.Repeat(" ", pos.Column-1))
			buf.WriteString("^\n")
		}
	}
}

func (tf *TextFormatter) writeLine(buf *bytes.Buffer, pos ast.Position) {
	lines := tf.sourceLines()
	if pos.Line < 1 || pos.Line > len(lines) {
		return
	}
	fmt.Fprintf(buf, "   %s\n", lines[pos.Line-1])
}

// JSONFormatter formats errors as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// ErrorJSON represents an error in JSON format.
type ErrorJSON struct {
	Type     string            `json:"type"`
	Message  string            `json:"message"`
	Position *PositionJSON     `json:"position,omitempty"`
	Details  map[string]string `json:"details,omitempty"`
}

// PositionJSON represents a file position in JSON format.
type PositionJSON struct {
	Filename string `json:"filename,omitempty"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// Format formats a single error as JSON.
func (jf *JSONFormatter) Format(err error) string {
	data, _ := json.Marshal(jf.toJSON(err))
	return string(data)
}

// FormatAll formats multiple errors as a JSON array.
func (jf *JSONFormatter) FormatAll(errs []error) string {
	data, _ := json.MarshalIndent(jf.FormatAllToSlice(errs), "", "  ")
	return string(data)
}

// FormatAllToSlice returns errors as a slice of ErrorJSON structs.
func (jf *JSONFormatter) FormatAllToSlice(errs []error) []ErrorJSON {
	result := make([]ErrorJSON, 0, len(errs))
	for _, err := range errs {
		result = append(result, jf.toJSON(err))
	}
	return result
}

func (jf *JSONFormatter) toJSON(err error) ErrorJSON {
	errJSON := ErrorJSON{
		Type:    "error",
		Message: err.Error(),
	}

	var pe positioned
	if stderrors.As(err, &pe) {
		pos := pe.GetPosition()
		errJSON.Position = &PositionJSON{
			Filename: pos.Filename,
			Line:     pos.Line,
			Column:   pos.Column,
		}
	}

	var (
		underflow   *parser.StackUnderflowError
		mismatch    *parser.TagMismatchError
		unclosed    *parser.UnclosedContainerError
		unsupported *converter.UnsupportedFormatError
	)

	switch {
	case stderrors.As(err, &underflow):
		errJSON.Type = "stack_underflow"
		errJSON.Details = map[string]string{"tag": underflow.Tag}
	case stderrors.As(err, &mismatch):
		errJSON.Type = "tag_mismatch"
		errJSON.Details = map[string]string{
			"expected":    mismatch.Expected,
			"found":       mismatch.Found,
			"opened_line": fmt.Sprint(mismatch.Opened.Line),
		}
	case stderrors.As(err, &unclosed):
		errJSON.Type = "unclosed_container"
		errJSON.Details = map[string]string{"tag": unclosed.Tag}
	case stderrors.As(err, &unsupported):
		errJSON.Type = "unsupported_format"
		errJSON.Details = map[string]string{"format": string(unsupported.Format)}
	}

	return errJSON
}
