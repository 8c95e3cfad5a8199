package ast

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

// ErrSealed is returned when inserting into an object whose container has
// already been closed.
var ErrSealed = errors.New("object is sealed")

// Kind identifies the concrete variant behind a Value.
type Kind uint8

const (
	NumberKind Kind = iota
	StringKind
	ObjectKind
	ListKind
)

var kindNames = map[Kind]string{
	NumberKind: "number",
	StringKind: "string",
	ObjectKind: "object",
	ListKind:   "list",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Value is a node of the statement tree. The set of implementations is closed:
// Number, String, *Object and *List.
type Value interface {
	Kind() Kind

	isValue()
}

// Number is a leaf whose text passed numeric normalization. Literal keeps the
// source text so identifiers made of digits are not subject to float rounding.
type Number struct {
	Float   float64
	Literal string
}

// NewNumber creates a Number from a float, deriving its literal.
func NewNumber(f float64) Number {
	return Number{Float: f, Literal: strconv.FormatFloat(f, 'f', -1, 64)}
}

func (Number) Kind() Kind { return NumberKind }
func (Number) isValue()   {}

// String returns the source literal of the number.
func (n Number) String() string {
	if n.Literal != "" {
		return n.Literal
	}
	return strconv.FormatFloat(n.Float, 'f', -1, 64)
}

// MarshalJSON renders the number unquoted in its shortest form.
func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(n.Float, 'f', -1, 64)), nil
}

// String is a leaf kept verbatim because it is not a numeric literal.
type String string

func (String) Kind() Kind { return StringKind }
func (String) isValue()   {}

// List holds the values of a key that occurred more than once in the same
// container.
type List struct {
	Items []Value
}

func (*List) Kind() Kind { return ListKind }
func (*List) isValue()   {}

// Len returns the number of items in the list.
func (l *List) Len() int {
	return len(l.Items)
}

func (l *List) MarshalJSON() ([]byte, error) {
	if l.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.Items)
}

// Object is an ordered mapping from tag name to value.
type Object struct {
	keys   []string
	values map[string]Value
	sealed bool
}

// NewObject creates an empty, open object.
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

func (*Object) Kind() Kind { return ObjectKind }
func (*Object) isValue()   {}

// Insert adds value under key, coalescing repeated keys: the first repeat
// promotes the existing value to a two element List, later repeats append.
// This is the only place the tree grows.
func (o *Object) Insert(key string, value Value) error {
	if o.sealed {
		return ErrSealed
	}

	existing, ok := o.values[key]
	if !ok {
		o.keys = append(o.keys, key)
		o.values[key] = value
		return nil
	}

	if list, ok := existing.(*List); ok {
		list.Items = append(list.Items, value)
		return nil
	}

	o.values[key] = &List{Items: []Value{existing, value}}
	return nil
}

// Seal marks the object as closed. Nested objects are sealed along with it.
func (o *Object) Seal() {
	if o.sealed {
		return
	}
	o.sealed = true
	for _, v := range o.values {
		sealValue(v)
	}
}

func sealValue(v Value) {
	switch v := v.(type) {
	case *Object:
		v.Seal()
	case *List:
		for _, item := range v.Items {
			sealValue(item)
		}
	}
}

// Sealed reports whether the object rejects further inserts.
func (o *Object) Sealed() bool {
	return o.sealed
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Len returns the number of distinct keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// MarshalJSON renders the object with keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')

		v, err := json.Marshal(o.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
