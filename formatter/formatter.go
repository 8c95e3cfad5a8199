// Package formatter re-indents OFX statements.
//
// Formatting is purely line based: every line is trimmed and re-indented by the
// nesting depth of the containers around it. Header lines stay flush left, tag
// text is never rewritten and the tree is never built, so malformed statements
// format as well as they parse.
package formatter

import (
	"context"
	"io"
	"strings"

	"github.com/robinvdvleuten/ofx/parser"
	"github.com/robinvdvleuten/ofx/telemetry"
)

const (
	// DefaultIndentation is the number of spaces per nesting level.
	DefaultIndentation = 2
)

// Formatter holds the indentation settings.
type Formatter struct {
	// Indentation is the number of spaces per level when UseTabs is false.
	Indentation int

	// UseTabs indents with one tab per level.
	UseTabs bool

	// Enabled turns formatting off when false; the source is written back
	// unchanged.
	Enabled bool
}

// Option is a functional option for configuring a Formatter.
type Option func(*Formatter)

// WithIndentation sets the number of spaces per nesting level.
func WithIndentation(spaces int) Option {
	return func(f *Formatter) {
		f.Indentation = spaces
	}
}

// WithTabs indents with tabs instead of spaces.
func WithTabs() Option {
	return func(f *Formatter) {
		f.UseTabs = true
	}
}

// WithEnabled switches formatting on or off.
func WithEnabled(enabled bool) Option {
	return func(f *Formatter) {
		f.Enabled = enabled
	}
}

// New creates a new Formatter with the given options.
func New(opts ...Option) *Formatter {
	f := &Formatter{
		Indentation: DefaultIndentation,
		Enabled:     true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// indentUnit returns the text written once per nesting level.
func (f *Formatter) indentUnit() string {
	if f.UseTabs {
		return "\t"
	}
	return strings.Repeat(" ", max(f.Indentation, 0))
}

// Format writes the re-indented source to w. Lines are joined with "\n"
// whatever line endings the source used.
func (f *Formatter) Format(ctx context.Context, source []byte, w io.Writer) error {
	timer := telemetry.StartTimer(ctx, "formatter.format")
	defer timer.End()

	if !f.Enabled {
		_, err := w.Write(source)
		return err
	}

	lines := parser.NewLexer(source, "").ScanAll()
	unit := f.indentUnit()

	var buf strings.Builder
	buf.Grow(len(source) + len(lines)*len(unit)*2)

	depth := 0
	inHeader := true

	for i, line := range lines {
		if i > 0 {
			buf.WriteByte('\n')
		}

		if line.Kind == parser.BLANK {
			continue
		}

		if inHeader && isHeaderLine(line.Text) {
			buf.WriteString(line.Text)
			continue
		}

		if strings.HasPrefix(line.Text, "<") {
			inHeader = false
		}

		switch line.Kind {
		case parser.CLOSE:
			depth = max(depth-1, 0)
			writeIndented(&buf, unit, depth, line.Text)
		case parser.OPEN:
			writeIndented(&buf, unit, depth, line.Text)
			depth++
		default:
			writeIndented(&buf, unit, depth, line.Text)
		}
	}

	_, err := io.WriteString(w, buf.String())
	return err
}

// FormatString formats a statement held in a string.
func (f *Formatter) FormatString(ctx context.Context, source string) string {
	var buf strings.Builder
	_ = f.Format(ctx, []byte(source), &buf)
	return buf.String()
}

func writeIndented(buf *strings.Builder, unit string, depth int, text string) {
	for range depth {
		buf.WriteString(unit)
	}
	buf.WriteString(text)
}

// isHeaderLine reports whether text starts with one or more uppercase ASCII
// letters followed by a colon.
func isHeaderLine(text string) bool {
	i := 0
	for i < len(text) && text[i] >= 'A' && text[i] <= 'Z' {
		i++
	}
	return i > 0 && i < len(text) && text[i] == ':'
}
