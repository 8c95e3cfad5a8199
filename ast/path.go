package ast

// Items normalizes a value at a fan-out point to a slice: a List yields its
// items, nil yields nothing and anything else is wrapped in a one element slice.
func Items(v Value) []Value {
	switch v := v.(type) {
	case nil:
		return nil
	case *List:
		return v.Items
	default:
		return []Value{v}
	}
}

// First returns the first item of a possibly repeated value.
func First(v Value) Value {
	items := Items(v)
	if len(items) == 0 {
		return nil
	}
	return items[0]
}

// Lookup follows path from obj, taking the first occurrence at every repeated
// step. It returns false as soon as a segment is missing.
func Lookup(obj *Object, path ...string) (Value, bool) {
	var current Value = obj
	for _, key := range path {
		o, ok := First(current).(*Object)
		if !ok || o == nil {
			return nil, false
		}
		next, ok := o.Get(key)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// LookupObject is Lookup restricted to object results.
func LookupObject(obj *Object, path ...string) (*Object, bool) {
	v, ok := Lookup(obj, path...)
	if !ok {
		return nil, false
	}
	o, ok := First(v).(*Object)
	return o, ok
}

// Text returns the textual form of a scalar. Numbers render from their source
// literal. Objects and lists have no text.
func Text(v Value) (string, bool) {
	switch v := v.(type) {
	case String:
		return string(v), true
	case Number:
		return v.String(), true
	default:
		return "", false
	}
}

// LookupText is Lookup followed by Text on the first occurrence.
func LookupText(obj *Object, path ...string) (string, bool) {
	v, ok := Lookup(obj, path...)
	if !ok {
		return "", false
	}
	return Text(First(v))
}
