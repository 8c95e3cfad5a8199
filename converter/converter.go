// Package converter renders parsed statements in other formats.
package converter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/robinvdvleuten/ofx/parser"
	"github.com/robinvdvleuten/ofx/telemetry"
)

// Format is an output format.
type Format string

// JSON renders the header and body as indented JSON objects.
const JSON Format = "json"

// Formats lists the supported formats.
var Formats = []Format{JSON}

// UnsupportedFormatError is returned for formats other than those in Formats.
type UnsupportedFormatError struct {
	Format Format
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format: %s", e.Format)
}

// ParseFormat validates a format name, ignoring case.
func ParseFormat(name string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, f := range Formats {
		if f == format {
			return f, nil
		}
	}
	return "", &UnsupportedFormatError{Format: Format(name)}
}

// Result is a converted statement.
type Result struct {
	Content string
	Format  Format

	// Warnings holds the structural problems the parser tolerated.
	Warnings []error
}

// Convert parses source and renders it in format. An unsupported format fails
// before the source is parsed.
func Convert(ctx context.Context, source []byte, format Format, opts ...parser.Option) (*Result, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}

	timer := telemetry.StartTimer(ctx, fmt.Sprintf("converter.convert (%s)", format))
	defer timer.End()

	doc, err := parser.ParseBytes(ctx, source, opts...)

	var structural *parser.Errors
	if err != nil && !errors.As(err, &structural) {
		return nil, err
	}

	content, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode statement: %w", err)
	}

	result := &Result{Content: string(content), Format: JSON}
	if structural != nil {
		result.Warnings = structural.Errors
	}
	return result, nil
}
