// Package ordered decodes JSON objects while preserving key order.
//
// encoding/json unmarshals objects into maps, which lose the order keys
// appeared in on the wire. The schedule flattener derives its output column
// order from the upstream response, so it needs to see keys in response order.
package ordered

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Object is a JSON object whose keys are kept in wire order.
// Nested objects decode as *Object, arrays as []any, and numbers as
// json.Number to avoid float precision loss on large identifiers.
type Object struct {
	keys   []string
	values map[string]any
}

var _ json.Unmarshaler = (*Object)(nil)

// Keys returns the object's keys in the order they appeared in the input.
func (o *Object) Keys() []string {
	return o.keys
}

// Get returns the value for key and whether the key is present.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Lookup walks a path of nested object keys and returns the value at the end.
// It returns false if any step is missing or not an object.
func (o *Object) Lookup(path ...string) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}
	cur := o
	for _, key := range path[:len(path)-1] {
		v, ok := cur.values[key]
		if !ok {
			return nil, false
		}
		cur, ok = v.(*Object)
		if !ok {
			return nil, false
		}
	}
	v, ok := cur.values[path[len(path)-1]]
	return v, ok
}

// UnmarshalJSON decodes a JSON object, recording key order.
func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode object: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("decode object: expected '{', got %v", tok)
	}

	obj, err := decodeObject(dec)
	if err != nil {
		return err
	}
	*o = *obj
	return nil
}

// decodeObject consumes key/value pairs up to the matching '}'.
// The opening '{' must already have been read.
func decodeObject(dec *json.Decoder) (*Object, error) {
	obj := &Object{values: make(map[string]any)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode object key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("decode object key: expected string, got %v", tok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		if _, seen := obj.values[key]; !seen {
			obj.keys = append(obj.keys, key)
		}
		obj.values[key] = val
	}
	// Consume the closing '}'.
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode object end: %w", err)
	}
	return obj, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("decode value: unexpected delimiter %v", t)
		}
	default:
		// string, json.Number, bool, or nil.
		return tok, nil
	}
}

func decodeArray(dec *json.Decoder) ([]any, error) {
	arr := []any{}
	for dec.More() {
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)
	}
	// Consume the closing ']'.
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode array end: %w", err)
	}
	return arr, nil
}
