// Package ofx reads OFX bank statements, both the SGML flavour of OFX 1.x and
// the XML flavour of OFX 2.x, into a generic document tree.
//
// The functions here cover the common one-shot uses. The packages below it
// (parser, formatter, report, converter, loader) expose the same steps with
// more control.
package ofx

import (
	"context"
	"errors"
	"strings"

	"github.com/robinvdvleuten/ofx/ast"
	"github.com/robinvdvleuten/ofx/converter"
	"github.com/robinvdvleuten/ofx/formatter"
	"github.com/robinvdvleuten/ofx/i18n"
	"github.com/robinvdvleuten/ofx/parser"
	"github.com/robinvdvleuten/ofx/report"
)

// Parse parses a statement. Structural problems are returned as a
// *parser.Errors next to a usable document.
func Parse(ctx context.Context, source []byte, opts ...parser.Option) (*ast.Document, error) {
	return parser.ParseBytes(ctx, source, opts...)
}

// Format re-indents a statement.
func Format(ctx context.Context, source []byte, opts ...formatter.Option) (string, error) {
	var buf strings.Builder
	if err := formatter.New(opts...).Format(ctx, source, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Summarize parses a statement and builds its report with the labels of
// locale. Structural problems are tolerated; the report covers whatever could
// be read.
func Summarize(ctx context.Context, source []byte, locale string) (*report.Report, error) {
	doc, err := Parse(ctx, source)

	var structural *parser.Errors
	if err != nil && !errors.As(err, &structural) {
		return nil, err
	}

	return report.Build(ctx, doc, report.WithLabels(i18n.Resolve(locale))), nil
}

// Convert renders a statement in the named format, e.g. "json".
func Convert(ctx context.Context, source []byte, format string) (string, error) {
	f, err := converter.ParseFormat(format)
	if err != nil {
		return "", err
	}

	result, err := converter.Convert(ctx, source, f)
	if err != nil {
		return "", err
	}
	return result.Content, nil
}
