package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	ofxerrors "github.com/robinvdvleuten/ofx/errors"
	"github.com/robinvdvleuten/ofx/loader"
)

var errContextStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})

// ErrorRenderer renders diagnostics with terminal styling and source context.
type ErrorRenderer struct {
	formatter *ofxerrors.TextFormatter
}

// NewErrorRenderer creates a renderer with source content for context.
func NewErrorRenderer(source []byte) *ErrorRenderer {
	return &ErrorRenderer{formatter: ofxerrors.NewTextFormatter(ofxerrors.WithSource(source))}
}

// Render formats a single error. The message is highlighted and the source
// lines below it are dimmed.
func (r *ErrorRenderer) Render(err error) string {
	lines := strings.Split(strings.TrimRight(r.formatter.Format(err), "\n"), "\n")

	var buf strings.Builder
	buf.WriteString(errorStyle.Render(lines[0]))
	for _, line := range lines[1:] {
		buf.WriteByte('\n')
		if strings.TrimSpace(line) == "^" {
			buf.WriteString(strings.TrimSuffix(line, "^"))
			buf.WriteString(errorStyle.Render("^"))
			continue
		}
		buf.WriteString(errContextStyle.Render(line))
	}
	return buf.String()
}

// RenderAll formats multiple errors, separating them with blank lines.
func (r *ErrorRenderer) RenderAll(errs []error) string {
	parts := make([]string, 0, len(errs))
	for _, err := range errs {
		parts = append(parts, r.Render(err))
	}
	return strings.Join(parts, "\n\n")
}

// reportWarnings prints the structural problems of stmt and a count line.
// It returns the number of warnings.
func reportWarnings(w io.Writer, stmt *loader.Statement) int {
	if len(stmt.Warnings) == 0 {
		return 0
	}

	renderer := NewErrorRenderer(stmt.Source)
	_, _ = fmt.Fprintln(w, renderer.RenderAll(stmt.Warnings))
	_, _ = fmt.Fprintln(w)
	printWarning(w, fmt.Sprintf("%d structural problem(s) in %s", len(stmt.Warnings), stmt.Filename))
	return len(stmt.Warnings)
}
