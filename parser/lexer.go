package parser

// The lexer works line by line. Every line is trimmed and classified by its
// punctuation alone: the classifier has no knowledge of which OFX elements are
// aggregates and which are leaves, that distinction only exists in the shape a
// line happens to take.

import (
	"bytes"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Lexer splits a statement into classified lines.
type Lexer struct {
	source   []byte // Source buffer
	filename string // Filename for error reporting
	pos      int    // Current byte position
	line     int    // Current line (1-indexed)
	lines    []Line // Line buffer (pre-allocated)
}

// NewLexer creates a new lexer for the given source.
func NewLexer(source []byte, filename string) *Lexer {
	for bytes.HasPrefix(source, utf8BOM) {
		source = source[len(utf8BOM):]
	}

	return &Lexer{
		source:   source,
		filename: filename,
		lines:    make([]Line, 0, bytes.Count(source, []byte{'\n'})+1),
	}
}

// Filename returns the name the lexer reports positions against.
func (l *Lexer) Filename() string {
	return l.filename
}

// ScanAll classifies every line of the source. Both "\n" and "\r\n" line
// breaks are accepted. A trailing line break yields a final BLANK line.
func (l *Lexer) ScanAll() []Line {
	for {
		raw, ok := l.nextLine()
		if !ok {
			break
		}
		l.line++

		trimmed := strings.TrimSpace(raw)
		line := Classify(trimmed)
		line.Line = l.line
		line.Column = leadingColumn(raw, trimmed)
		l.lines = append(l.lines, line)
	}

	return l.lines
}

// nextLine returns the next raw line without its line terminator.
func (l *Lexer) nextLine() (string, bool) {
	if l.pos > len(l.source) {
		return "", false
	}

	rest := l.source[l.pos:]
	end := bytes.IndexByte(rest, '\n')
	if end < 0 {
		l.pos = len(l.source) + 1
		return string(rest), true
	}

	l.pos += end + 1
	return string(bytes.TrimSuffix(rest[:end], []byte{'\r'})), true
}

func leadingColumn(raw, trimmed string) int {
	if trimmed == "" {
		return 1
	}
	return strings.Index(raw, trimmed) + 1
}

// Classify determines the shape of a trimmed line. Shapes are checked in
// priority order: comment, closing tag, inline leaf, SGML leaf, opening tag.
// Anything else is PLAIN.
func Classify(text string) Line {
	line := Line{Kind: PLAIN, Text: text}

	switch {
	case text == "":
		line.Kind = BLANK
		return line
	case strings.HasPrefix(text, "<!--"):
		line.Kind = COMMENT
		return line
	case text[0] != '<':
		return line
	}

	if len(text) > 1 && text[1] == '/' {
		if tag, ok := closingTag(text); ok {
			line.Kind = CLOSE
			line.Tag = tag
		}
		return line
	}

	tag, end := scanTagName(text, 1)
	if tag == "" || end >= len(text) || text[end] != '>' {
		return line
	}
	line.Tag = tag

	rest := text[end+1:]
	if rest == "" {
		line.Kind = OPEN
		return line
	}

	if value, closeTag, ok := splitInline(rest); ok {
		line.Kind = INLINE
		line.Value = value
		line.CloseTag = closeTag
		return line
	}

	line.Kind = SGML
	line.Value = rest
	return line
}

// closingTag matches exactly "</TAG>".
func closingTag(s string) (string, bool) {
	if len(s) < 4 || s[0] != '<' || s[1] != '/' {
		return "", false
	}
	tag, end := scanTagName(s, 2)
	if tag == "" || end != len(s)-1 || s[end] != '>' {
		return "", false
	}
	return tag, true
}

// splitInline matches "value</TAG>" where value is non-empty and holds no '<'.
func splitInline(rest string) (value, closeTag string, ok bool) {
	i := strings.LastIndex(rest, "</")
	if i <= 0 {
		return "", "", false
	}

	closeTag, ok = closingTag(rest[i:])
	if !ok {
		return "", "", false
	}

	value = rest[:i]
	if strings.IndexByte(value, '<') >= 0 {
		return "", "", false
	}
	return value, closeTag, true
}

// scanTagName scans [A-Z][A-Z0-9]* starting at start and returns the name and
// the offset just past it.
func scanTagName(s string, start int) (string, int) {
	if start >= len(s) || !isUpper(s[start]) {
		return "", start
	}

	end := start + 1
	for end < len(s) && (isUpper(s[end]) || isDigit(s[end])) {
		end++
	}
	return s[start:end], end
}

func isUpper(ch byte) bool {
	return ch >= 'A' && ch <= 'Z'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
