// Package loader reads statement files, converts legacy character sets to
// UTF-8 and parses them.
//
// OFX 1.x files declare their encoding in the header, e.g.
//
//	ENCODING:USASCII
//	CHARSET:1252
//
// and banks routinely ship them in Windows-1252 or ISO-8859-1. Sources that
// are already valid UTF-8 are used as they are; anything else is decoded with
// the declared charset, or Windows-1252 when none is declared.
//
// Example usage:
//
//	ldr := loader.New(loader.WithParserOptions(parser.WithStrictNesting()))
//	stmt, err := ldr.Load(ctx, "statement.ofx")
//	for _, w := range stmt.Warnings {
//	    fmt.Println(w)
//	}
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/robinvdvleuten/ofx/ast"
	"github.com/robinvdvleuten/ofx/parser"
	"github.com/robinvdvleuten/ofx/telemetry"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// StdinName is the filename used for statements read from standard input.
const StdinName = "<stdin>"

// Loader reads and parses statements.
type Loader struct {
	// ParserOptions are passed to every parse.
	ParserOptions []parser.Option

	// KeepEncoding disables charset conversion.
	KeepEncoding bool
}

// Option configures how files are loaded.
type Option func(*Loader)

// WithParserOptions adds parser options, e.g. strict nesting.
func WithParserOptions(opts ...parser.Option) Option {
	return func(l *Loader) {
		l.ParserOptions = append(l.ParserOptions, opts...)
	}
}

// WithKeepEncoding passes sources to the parser without charset conversion.
func WithKeepEncoding() Option {
	return func(l *Loader) {
		l.KeepEncoding = true
	}
}

// New creates a new Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Statement is a loaded statement file.
type Statement struct {
	// Filename is the path as given, or StdinName.
	Filename string

	// Source is the UTF-8 text that was parsed.
	Source []byte

	// Charset names the encoding the file was decoded from, or "UTF-8".
	Charset string

	Document *ast.Document

	// Warnings holds the structural problems the parser tolerated.
	Warnings []error
}

// Load reads and parses a statement file.
func (l *Loader) Load(ctx context.Context, filename string) (*Statement, error) {
	timer := telemetry.StartTimer(ctx, "loader.load "+filepath.Base(filename))
	defer timer.End()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return l.parse(ctx, filename, data)
}

// LoadReader reads a statement from r. name is used in error positions.
func (l *Loader) LoadReader(ctx context.Context, name string, r io.Reader) (*Statement, error) {
	timer := telemetry.StartTimer(ctx, "loader.load "+name)
	defer timer.End()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return l.parse(ctx, name, data)
}

// LoadAll loads several statement files in order. A file named more than
// once, by any path, is loaded once.
func (l *Loader) LoadAll(ctx context.Context, filenames ...string) ([]*Statement, error) {
	visited := make(map[string]bool, len(filenames))
	statements := make([]*Statement, 0, len(filenames))

	for _, filename := range filenames {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		absPath, err := filepath.Abs(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for %s: %w", filename, err)
		}
		if visited[absPath] {
			continue
		}
		visited[absPath] = true

		stmt, err := l.Load(ctx, filename)
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}

	return statements, nil
}

func (l *Loader) parse(ctx context.Context, filename string, data []byte) (*Statement, error) {
	stmt := &Statement{Filename: filename, Source: data, Charset: "UTF-8"}

	if !l.KeepEncoding {
		decoded, charset, err := Decode(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
		}
		stmt.Source = decoded
		stmt.Charset = charset
	}

	opts := append([]parser.Option{parser.WithFilename(filename)}, l.ParserOptions...)
	doc, err := parser.ParseBytes(ctx, stmt.Source, opts...)

	var structural *parser.Errors
	switch {
	case err == nil:
	case errors.As(err, &structural):
		stmt.Warnings = structural.Errors
	default:
		return nil, err
	}

	stmt.Document = doc
	return stmt, nil
}

// Decode converts data to UTF-8. Valid UTF-8 is returned unchanged.
func Decode(data []byte) ([]byte, string, error) {
	if utf8.Valid(data) {
		return data, "UTF-8", nil
	}

	name, enc := declaredCharset(data)
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, "", err
	}
	return decoded, name, nil
}

// declaredCharset reads the CHARSET header line, or the encoding of an XML
// declaration, and falls back to Windows-1252.
func declaredCharset(data []byte) (string, encoding.Encoding) {
	for _, line := range bytes.Split(data, []byte("\n")) {
		text := strings.ToUpper(strings.TrimSpace(string(line)))
		if text == "" {
			continue
		}

		var value string
		switch {
		case strings.HasPrefix(text, "CHARSET:"):
			value = strings.TrimPrefix(text, "CHARSET:")
		case strings.HasPrefix(text, "<?XML"):
			_, rest, ok := strings.Cut(text, "ENCODING=")
			if !ok {
				continue
			}
			value, _, _ = strings.Cut(strings.Trim(rest, `"'?> `), `"`)
			value = strings.Trim(value, `'"`)
		case strings.HasPrefix(text, "<"):
			return "Windows-1252", charmap.Windows1252
		default:
			continue
		}

		switch value {
		case "ISO-8859-1", "8859-1", "LATIN1", "ISO8859-1":
			return "ISO-8859-1", charmap.ISO8859_1
		case "ISO-8859-15", "8859-15":
			return "ISO-8859-15", charmap.ISO8859_15
		default:
			return "Windows-1252", charmap.Windows1252
		}
	}
	return "Windows-1252", charmap.Windows1252
}
