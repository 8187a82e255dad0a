// Package optional provides a tri-state field for partial updates: a JSON
// body can leave a field out, set it to null, or give it a value.
package optional

import (
	"bytes"
	"encoding/json"
)

// Value holds a field that may be absent, explicitly null, or set.
type Value[T any] struct {
	set   bool
	null  bool
	value T
}

// Of returns a Value carrying v.
func Of[T any](v T) Value[T] {
	return Value[T]{set: true, value: v}
}

// Null returns a Value that was explicitly cleared.
func Null[T any]() Value[T] {
	return Value[T]{set: true, null: true}
}

// IsSet reports whether the field was present at all, null included.
func (v Value[T]) IsSet() bool { return v.set }

// IsNull reports whether the field was present and null.
func (v Value[T]) IsNull() bool { return v.set && v.null }

// Get returns the carried value and true when the field holds a non-null value.
func (v Value[T]) Get() (T, bool) {
	if !v.set || v.null {
		var zero T
		return zero, false
	}
	return v.value, true
}

func (v *Value[T]) UnmarshalJSON(data []byte) error {
	v.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		v.null = true
		v.value = zero
		return nil
	}
	v.null = false
	return json.Unmarshal(data, &v.value)
}

func (v Value[T]) MarshalJSON() ([]byte, error) {
	if !v.set || v.null {
		return []byte("null"), nil
	}
	return json.Marshal(v.value)
}
