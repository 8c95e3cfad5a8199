package parser

// LineKind identifies the shape of a single trimmed source line.
type LineKind uint8

const (
	BLANK LineKind = iota
	PLAIN

	// Tag shapes
	COMMENT // <!-- ... -->
	CLOSE   // </TAG>
	INLINE  // <TAG>value</TAG>
	SGML    // <TAG>value
	OPEN    // <TAG>
)

var lineKindNames = map[LineKind]string{
	BLANK:   "BLANK",
	PLAIN:   "PLAIN",
	COMMENT: "COMMENT",
	CLOSE:   "CLOSE",
	INLINE:  "INLINE",
	SGML:    "SGML",
	OPEN:    "OPEN",
}

func (k LineKind) String() string {
	if name, ok := lineKindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsTag reports whether the kind is one of the tag shapes. The first tag
// shaped line of a document ends its header.
func (k LineKind) IsTag() bool {
	return k >= COMMENT && k <= OPEN
}

// Line is one classified source line.
type Line struct {
	Kind     LineKind
	Text     string // Trimmed line text
	Tag      string // Tag name for CLOSE, INLINE, SGML and OPEN
	Value    string // Leaf value for INLINE and SGML
	CloseTag string // Closing tag name of an INLINE leaf
	Line     int    // Line number (1-indexed)
	Column   int    // Column of the first non-blank byte (1-indexed)
}
