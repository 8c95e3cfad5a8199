// Package parser turns OFX statement text into an ast.Document.
//
// The input grammar is the loose one banks actually produce: an optional block
// of KEY:VALUE header lines followed by one tag per line, where aggregates are
// opened with <TAG> and closed with </TAG>, and leaves are either written as
// <TAG>value</TAG> or SGML style as <TAG>value without a closing tag.
//
// Parsing never aborts on irregular nesting. Structural problems such as a
// closing tag without an open container are collected into an *Errors value
// that is returned together with the best-effort document:
//
//	doc, err := parser.ParseString(ctx, source)
//	var structural *parser.Errors
//	if errors.As(err, &structural) {
//	    // doc is still usable
//	}
package parser

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/robinvdvleuten/ofx/ast"
	"github.com/robinvdvleuten/ofx/telemetry"
)

// Parser holds the parse configuration. It keeps no state between calls, so
// one Parser can be shared by concurrent callers.
type Parser struct {
	// Filename is attached to the positions of reported errors.
	Filename string

	// StrictNesting reports closing tags that do not name the innermost
	// container and containers left open at the end of the input.
	StrictNesting bool

	// FullHeaderValues keeps everything after the first colon of a header
	// line. By default the value stops at a second colon.
	FullHeaderValues bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithFilename sets the filename used in error positions.
func WithFilename(filename string) Option {
	return func(p *Parser) {
		p.Filename = filename
	}
}

// WithStrictNesting enables tag name checks on closing tags.
func WithStrictNesting() Option {
	return func(p *Parser) {
		p.StrictNesting = true
	}
}

// WithFullHeaderValues keeps colons inside header values, e.g. timestamps.
func WithFullHeaderValues() Option {
	return func(p *Parser) {
		p.FullHeaderValues = true
	}
}

// New creates a Parser with the given options.
func New(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// frame is an open container on the parse stack.
type frame struct {
	obj *ast.Object
	tag string
	pos ast.Position
}

// Parse builds the document for source. Structural problems are returned as
// an *Errors next to the document; any other error comes with a nil document.
func (p *Parser) Parse(ctx context.Context, source []byte) (*ast.Document, error) {
	timer := telemetry.StartTimer(ctx, "parser.parse")
	defer timer.End()

	lexTimer := timer.Child("parser.lex")
	lines := NewLexer(source, p.Filename).ScanAll()
	lexTimer.End()

	buildTimer := timer.Child(fmt.Sprintf("parser.build (%d lines)", len(lines)))
	defer buildTimer.End()

	doc := ast.NewDocument()
	stack := []frame{{obj: doc.Body}}
	inBody := false

	var errs []error

	for _, line := range lines {
		if line.Kind == BLANK {
			continue
		}

		if line.Kind.IsTag() {
			inBody = true
		}

		if !inBody {
			if key, value, ok := p.splitHeader(line.Text); ok {
				doc.Header.Set(key, value)
			}
			continue
		}

		current := stack[len(stack)-1].obj

		switch line.Kind {
		case CLOSE:
			if len(stack) == 1 {
				errs = append(errs, &StackUnderflowError{Pos: p.position(line), Tag: line.Tag})
				continue
			}

			top := stack[len(stack)-1]
			if p.StrictNesting && top.tag != line.Tag {
				errs = append(errs, &TagMismatchError{
					Pos:      p.position(line),
					Expected: top.tag,
					Found:    line.Tag,
					Opened:   top.pos,
				})
			}

			top.obj.Seal()
			stack = stack[:len(stack)-1]

		case INLINE, SGML:
			if err := current.Insert(line.Tag, Normalize(line.Value)); err != nil {
				return nil, fmt.Errorf("%s: %w", location(p.position(line)), err)
			}

		case OPEN:
			child := ast.NewObject()
			if err := current.Insert(line.Tag, child); err != nil {
				return nil, fmt.Errorf("%s: %w", location(p.position(line)), err)
			}
			stack = append(stack, frame{obj: child, tag: line.Tag, pos: p.position(line)})
		}
	}

	if p.StrictNesting {
		for i := len(stack) - 1; i > 0; i-- {
			errs = append(errs, &UnclosedContainerError{Pos: stack[i].pos, Tag: stack[i].tag})
		}
	}

	doc.Body.Seal()

	if len(errs) > 0 {
		return doc, &Errors{Errors: errs}
	}
	return doc, nil
}

// splitHeader splits a header line on its first colon.
func (p *Parser) splitHeader(text string) (string, string, bool) {
	key, value, ok := strings.Cut(text, ":")
	if !ok {
		return "", "", false
	}

	if !p.FullHeaderValues {
		value, _, _ = strings.Cut(value, ":")
	}
	return key, value, true
}

func (p *Parser) position(line Line) ast.Position {
	return ast.Position{Filename: p.Filename, Line: line.Line, Column: line.Column}
}

// Parse reads all of r and parses it.
func Parse(ctx context.Context, r io.Reader, opts ...Option) (*ast.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read statement: %w", err)
	}
	return New(opts...).Parse(ctx, data)
}

// ParseString parses a statement held in a string.
func ParseString(ctx context.Context, str string, opts ...Option) (*ast.Document, error) {
	return New(opts...).Parse(ctx, []byte(str))
}

// ParseBytes parses a statement held in a byte slice.
func ParseBytes(ctx context.Context, data []byte, opts ...Option) (*ast.Document, error) {
	return New(opts...).Parse(ctx, data)
}
