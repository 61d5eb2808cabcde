package ops

import (
	"github.com/sandrolain/goformula/pkg/types"
)

// Byte arrays have no native shift or bitwise primitives; the helpers below
// treat them as big-endian bit strings.

// ShiftBytes shifts b by n bits, left for positive n and right for negative
// n, keeping the length of b. Bits shifted out are lost and zeros are
// shifted in.
func ShiftBytes(b []byte, n int64) []byte {
	out := make([]byte, len(b))
	if len(b) == 0 || n == 0 {
		copy(out, b)
		return out
	}
	total := int64(len(b)) * 8
	if n >= total || n <= -total {
		return out
	}
	if n > 0 {
		byteShift := int(n / 8)
		bitShift := uint(n % 8)
		for i := range out {
			src := i + byteShift
			if src >= len(b) {
				break
			}
			v := b[src] << bitShift
			if bitShift > 0 && src+1 < len(b) {
				v |= b[src+1] >> (8 - bitShift)
			}
			out[i] = v
		}
		return out
	}
	n = -n
	byteShift := int(n / 8)
	bitShift := uint(n % 8)
	for i := len(out) - 1; i >= 0; i-- {
		src := i - byteShift
		if src < 0 {
			break
		}
		v := b[src] >> bitShift
		if bitShift > 0 && src-1 >= 0 {
			v |= b[src-1] << (8 - bitShift)
		}
		out[i] = v
	}
	return out
}

// alignBytes left-pads the shorter operand with zero bytes.
func alignBytes(a, b []byte) ([]byte, []byte) {
	switch {
	case len(a) < len(b):
		p := make([]byte, len(b))
		copy(p[len(b)-len(a):], a)
		return p, b
	case len(b) < len(a):
		p := make([]byte, len(a))
		copy(p[len(a)-len(b):], b)
		return a, p
	}
	return a, b
}

// BitwiseBytes applies fn byte by byte after aligning the operands to the
// right.
func BitwiseBytes(a, b []byte, fn func(x, y byte) byte) []byte {
	a, b = alignBytes(a, b)
	out := make([]byte, len(a))
	for i := range a {
		out[i] = fn(a[i], b[i])
	}
	return out
}

// InvertBytes returns the bitwise complement of b.
func InvertBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[i] = ^v
	}
	return out
}

func init() {
	registerBinary(OpShiftLeft, tBytes, tInt, func(_ *Env, a, b types.Value) (types.Value, error) {
		return types.Bytes(ShiftBytes(a.Bytes, b.Int)), nil
	})
	registerBinary(OpShiftRight, tBytes, tInt, func(_ *Env, a, b types.Value) (types.Value, error) {
		n := b.Int
		if n == -n {
			// zero or MinInt64
			if n == 0 {
				return types.Bytes(ShiftBytes(a.Bytes, 0)), nil
			}
			return types.Bytes(make([]byte, len(a.Bytes))), nil
		}
		return types.Bytes(ShiftBytes(a.Bytes, -n)), nil
	})
	registerBinary(OpAnd, tBytes, tBytes, func(_ *Env, a, b types.Value) (types.Value, error) {
		return types.Bytes(BitwiseBytes(a.Bytes, b.Bytes, func(x, y byte) byte { return x & y })), nil
	})
	registerBinary(OpOr, tBytes, tBytes, func(_ *Env, a, b types.Value) (types.Value, error) {
		return types.Bytes(BitwiseBytes(a.Bytes, b.Bytes, func(x, y byte) byte { return x | y })), nil
	})
	registerBinary(OpXor, tBytes, tBytes, func(_ *Env, a, b types.Value) (types.Value, error) {
		return types.Bytes(BitwiseBytes(a.Bytes, b.Bytes, func(x, y byte) byte { return x ^ y })), nil
	})
	registerUnary(OpInvert, tBytes, func(_ *Env, a types.Value) (types.Value, error) {
		return types.Bytes(InvertBytes(a.Bytes)), nil
	})
}
