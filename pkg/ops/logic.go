package ops

import (
	"github.com/sandrolain/goformula/pkg/types"
)

func init() {
	registerBinary(OpAnd, tBool, tBool, func(_ *Env, a, b types.Value) (types.Value, error) {
		return types.Bool(a.Bool && b.Bool), nil
	})
	registerBinary(OpOr, tBool, tBool, func(_ *Env, a, b types.Value) (types.Value, error) {
		return types.Bool(a.Bool || b.Bool), nil
	})
	registerBinary(OpXor, tBool, tBool, func(_ *Env, a, b types.Value) (types.Value, error) {
		return types.Bool(a.Bool != b.Bool), nil
	})

	registerBinary(OpAnd, tInt, tInt, func(_ *Env, a, b types.Value) (types.Value, error) {
		return types.Int(a.Int & b.Int), nil
	})
	registerBinary(OpOr, tInt, tInt, func(_ *Env, a, b types.Value) (types.Value, error) {
		return types.Int(a.Int | b.Int), nil
	})
	registerBinary(OpXor, tInt, tInt, func(_ *Env, a, b types.Value) (types.Value, error) {
		return types.Int(a.Int ^ b.Int), nil
	})

	registerUnary(OpNot, tBool, func(_ *Env, a types.Value) (types.Value, error) {
		return types.Bool(!a.Bool), nil
	})
}

// ShortCircuits reports whether op on booleans may skip its right operand:
// it returns the left value that decides the result.
func ShortCircuits(op Op) (decisive bool, ok bool) {
	switch op {
	case OpAnd:
		return false, true
	case OpOr:
		return true, true
	}
	return false, false
}
