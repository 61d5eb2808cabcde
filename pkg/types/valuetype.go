package types

import (
	"math/bits"
	"strings"
)

// ValueType identifies one of the value types an expression node can produce.
type ValueType uint8

// Value types, listed in the default tie-break preference order
// (least to most expensive).
const (
	Integer ValueType = iota
	Numeric
	Boolean
	ByteArray
	String

	// NumValueTypes is the number of supported value types.
	NumValueTypes = 5
)

// Invalid is returned where no value type applies.
const Invalid ValueType = 0xff

var valueTypeNames = [NumValueTypes]string{"integer", "numeric", "boolean", "bytes", "string"}

// String returns the lower-case name of the value type.
func (t ValueType) String() string {
	if int(t) < NumValueTypes {
		return valueTypeNames[t]
	}
	return "invalid"
}

// Valid reports whether t is one of the supported value types.
func (t ValueType) Valid() bool {
	return int(t) < NumValueTypes
}

// IsNumber reports whether t is Integer or Numeric.
func (t ValueType) IsNumber() bool {
	return t == Integer || t == Numeric
}

// ParseValueType parses a value type name as produced by String.
// "int", "float", "bool" and "bytearray" are accepted as aliases.
func ParseValueType(s string) (ValueType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "integer", "int", "int64":
		return Integer, true
	case "numeric", "float", "float64", "number":
		return Numeric, true
	case "boolean", "bool":
		return Boolean, true
	case "bytes", "bytearray", "byte-array":
		return ByteArray, true
	case "string", "str":
		return String, true
	}
	return Invalid, false
}

// TypeSet is a set of value types. The zero value is the empty set.
type TypeSet uint8

// AllTypes is the universe of supportable value types.
const AllTypes TypeSet = 1<<NumValueTypes - 1

// NumberTypes is {Integer, Numeric}.
const NumberTypes = TypeSet(1<<Integer | 1<<Numeric)

// SetOf builds a set from the given types.
func SetOf(ts ...ValueType) TypeSet {
	var s TypeSet
	for _, t := range ts {
		s = s.With(t)
	}
	return s
}

// Has reports whether t is a member of s.
func (s TypeSet) Has(t ValueType) bool {
	return t.Valid() && s&(1<<t) != 0
}

// With returns s with t added.
func (s TypeSet) With(t ValueType) TypeSet {
	if !t.Valid() {
		return s
	}
	return s | 1<<t
}

// Without returns s with t removed.
func (s TypeSet) Without(t ValueType) TypeSet {
	if !t.Valid() {
		return s
	}
	return s &^ (1 << t)
}

// Intersect returns the intersection of s and o.
func (s TypeSet) Intersect(o TypeSet) TypeSet { return s & o }

// Union returns the union of s and o.
func (s TypeSet) Union(o TypeSet) TypeSet { return s | o }

// Empty reports whether s has no members.
func (s TypeSet) Empty() bool { return s&AllTypes == 0 }

// Len returns the number of members.
func (s TypeSet) Len() int { return bits.OnesCount8(uint8(s & AllTypes)) }

// Types returns the members in preference order.
func (s TypeSet) Types() []ValueType {
	out := make([]ValueType, 0, s.Len())
	for t := ValueType(0); t < NumValueTypes; t++ {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// First returns the most preferred member, or Invalid when s is empty.
func (s TypeSet) First() ValueType {
	for t := ValueType(0); t < NumValueTypes; t++ {
		if s.Has(t) {
			return t
		}
	}
	return Invalid
}

// String formats the set as {a,b}.
func (s TypeSet) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, t := range s.Types() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(t.String())
	}
	b.WriteByte('}')
	return b.String()
}
