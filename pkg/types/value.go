package types

import (
	"bytes"
	"fmt"
)

// Value is a typed runtime value. Only the field matching Type is meaningful.
//
// Value is passed by value through generated code so integers, floats and
// booleans never need boxing.
type Value struct {
	Type  ValueType
	Int   int64
	Float float64
	Bool  bool
	Bytes []byte
	Str   string
}

// Int returns an Integer value.
func Int(v int64) Value { return Value{Type: Integer, Int: v} }

// Float returns a Numeric value.
func Float(v float64) Value { return Value{Type: Numeric, Float: v} }

// Bool returns a Boolean value.
func Bool(v bool) Value { return Value{Type: Boolean, Bool: v} }

// Bytes returns a ByteArray value. The slice is not copied.
func Bytes(v []byte) Value { return Value{Type: ByteArray, Bytes: v} }

// Str returns a String value.
func Str(v string) Value { return Value{Type: String, Str: v} }

// Interface returns the value as a plain Go value:
// int64, float64, bool, []byte or string.
func (v Value) Interface() any {
	switch v.Type {
	case Integer:
		return v.Int
	case Numeric:
		return v.Float
	case Boolean:
		return v.Bool
	case ByteArray:
		return v.Bytes
	case String:
		return v.Str
	}
	return nil
}

// Equal reports whether two values have the same type and content.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case Integer:
		return v.Int == o.Int
	case Numeric:
		return v.Float == o.Float
	case Boolean:
		return v.Bool == o.Bool
	case ByteArray:
		return bytes.Equal(v.Bytes, o.Bytes)
	case String:
		return v.Str == o.Str
	}
	return true
}

// String returns a debugging representation of the value.
func (v Value) String() string {
	switch v.Type {
	case Integer:
		return fmt.Sprintf("%d", v.Int)
	case Numeric:
		return fmt.Sprintf("%g", v.Float)
	case Boolean:
		return fmt.Sprintf("%t", v.Bool)
	case ByteArray:
		return fmt.Sprintf("0x%X", v.Bytes)
	case String:
		return fmt.Sprintf("%q", v.Str)
	}
	return "<invalid>"
}
