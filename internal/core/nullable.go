// AngelaMos | 2026
// nullable.go

package core

import (
	"bytes"
	"encoding/json"
)

// Nullable is a PATCH field that tells apart a key that was left out of the
// payload, a key explicitly set to null, and a key carrying a value.
type Nullable[T any] struct {
	Value T
	Set   bool
	Null  bool
}

func Of[T any](v T) Nullable[T] {
	return Nullable[T]{Value: v, Set: true}
}

func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true, Null: true}
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		n.Value = zero
		n.Null = true
		return nil
	}

	n.Null = false
	return json.Unmarshal(data, &n.Value)
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Present() {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Present reports whether the payload carried a non-null value.
func (n Nullable[T]) Present() bool {
	return n.Set && !n.Null
}

// IsNull reports whether the payload explicitly nulled the field.
func (n Nullable[T]) IsNull() bool {
	return n.Set && n.Null
}

// ValidationValue is what the validator sees: the inner value, or nil when
// there is nothing to validate.
func (n Nullable[T]) ValidationValue() any {
	if !n.Present() {
		return nil
	}
	return n.Value
}
