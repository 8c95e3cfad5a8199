// Package output provides styling helpers for terminal output.
package output

import (
	"io"

	"github.com/muesli/termenv"
)

// Styles colors report tables, tag listings and timing trees.
type Styles struct {
	output *termenv.Output
}

// NewStyles creates a new Styles instance for the given writer.
func NewStyles(w io.Writer) *Styles {
	return &Styles{
		output: termenv.NewOutput(w),
	}
}

// Tag returns a styled OFX tag name (yellow).
func (s *Styles) Tag(text string) string {
	return s.output.String(text).
		Foreground(s.output.Color("3")).
		String()
}

// Income returns a styled incoming amount (green).
func (s *Styles) Income(text string) string {
	return s.output.String(text).
		Foreground(s.output.Color("2")).
		String()
}

// Expense returns a styled outgoing amount (red).
func (s *Styles) Expense(text string) string {
	return s.output.String(text).
		Foreground(s.output.Color("1")).
		String()
}

// Amount styles a formatted amount by its sign.
func (s *Styles) Amount(text string, negative bool) string {
	if negative {
		return s.Expense(text)
	}
	return s.Income(text)
}

// Keyword returns a styled keyword (bold).
func (s *Styles) Keyword(text string) string {
	return s.output.String(text).
		Bold().
		String()
}

// Dim returns dimmed text (for secondary information).
func (s *Styles) Dim(text string) string {
	return s.output.String(text).
		Faint().
		String()
}

// Timing returns a styled timing string. Slow stages are red, the rest dimmed.
func (s *Styles) Timing(text string, isSlowOperation bool) string {
	if isSlowOperation {
		return s.output.String(text).
			Foreground(s.output.Color("1")).
			String()
	}
	return s.Dim(text)
}
