package ast

import (
	"bytes"
	"encoding/json"
)

// Header holds the KEY:VALUE lines that precede the tag tree, in the order they
// first appeared. Setting an existing key overwrites its value in place.
type Header struct {
	keys   []string
	values map[string]string
}

// NewHeader creates an empty header.
func NewHeader() *Header {
	return &Header{values: make(map[string]string)}
}

// Set stores value under key.
func (h *Header) Set(key, value string) {
	if _, ok := h.values[key]; !ok {
		h.keys = append(h.keys, key)
	}
	h.values[key] = value
}

// Get returns the value stored under key.
func (h *Header) Get(key string) (string, bool) {
	v, ok := h.values[key]
	return v, ok
}

// Keys returns the header keys in order.
func (h *Header) Keys() []string {
	keys := make([]string, len(h.keys))
	copy(keys, h.keys)
	return keys
}

// Len returns the number of header entries.
func (h *Header) Len() int {
	return len(h.keys)
}

func (h *Header) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range h.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(h.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Document is a parsed statement: its header and the body tree. The body is
// sealed once parsing completes.
type Document struct {
	Header *Header `json:"header"`
	Body   *Object `json:"body"`
}

// NewDocument creates an empty document with an open body.
func NewDocument() *Document {
	return &Document{
		Header: NewHeader(),
		Body:   NewObject(),
	}
}

// Root returns the OFX element of the body. When the element occurs more than
// once the first occurrence is used.
func (d *Document) Root() (*Object, bool) {
	if d == nil || d.Body == nil {
		return nil, false
	}
	return LookupObject(d.Body, "OFX")
}
