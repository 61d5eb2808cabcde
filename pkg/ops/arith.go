package ops

import (
	"math"

	"github.com/sandrolain/goformula/pkg/types"
)

func init() {
	registerBinary(OpAdd, tInt, tInt, addInt)
	registerBinary(OpAdd, tNum, tNum, addFloat)
	registerBinary(OpAdd, tStr, tStr, concatString)
	registerBinary(OpAdd, tBytes, tBytes, concatBytes)

	registerBinary(OpSubtract, tInt, tInt, subInt)
	registerBinary(OpSubtract, tNum, tNum, subFloat)

	registerBinary(OpMultiply, tInt, tInt, mulInt)
	registerBinary(OpMultiply, tNum, tNum, mulFloat)

	registerBinary(OpDivide, tNum, tNum, divFloat)
	registerBinary(OpIntDivide, tInt, tInt, divInt)

	registerBinary(OpModulo, tInt, tInt, modInt)
	registerBinary(OpModulo, tNum, tNum, modFloat)

	registerBinary(OpPower, tNum, tNum, powFloat)

	registerUnary(OpNegate, tInt, negInt)
	registerUnary(OpNegate, tNum, negFloat)
	registerUnary(OpPlus, tInt, identity)
	registerUnary(OpPlus, tNum, identity)
}

func overflow(op Op) *types.Error {
	return types.Errorf(types.ErrIntegerOverflow, "integer overflow in %s", op)
}

// Integer +, -, * and negation widen to Numeric when the exact result does
// not fit in int64, so a node resolved as Integer may yield a Numeric value.

// AddInt adds with overflow detection.
func AddInt(a, b int64) (int64, bool) {
	c := a + b
	if (c > a) == (b > 0) {
		return c, true
	}
	return c, false
}

// SubInt subtracts with overflow detection.
func SubInt(a, b int64) (int64, bool) {
	c := a - b
	if (c < a) == (b > 0) {
		return c, true
	}
	return c, false
}

// MulInt multiplies with overflow detection.
func MulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if (c < 0) != ((a < 0) != (b < 0)) {
		return c, false
	}
	if c/b != a {
		return c, false
	}
	return c, true
}

func addInt(_ *Env, a, b types.Value) (types.Value, error) {
	c, ok := AddInt(a.Int, b.Int)
	if !ok {
		return types.Float(float64(a.Int) + float64(b.Int)), nil
	}
	return types.Int(c), nil
}

func subInt(_ *Env, a, b types.Value) (types.Value, error) {
	c, ok := SubInt(a.Int, b.Int)
	if !ok {
		return types.Float(float64(a.Int) - float64(b.Int)), nil
	}
	return types.Int(c), nil
}

func mulInt(_ *Env, a, b types.Value) (types.Value, error) {
	c, ok := MulInt(a.Int, b.Int)
	if !ok {
		return types.Float(float64(a.Int) * float64(b.Int)), nil
	}
	return types.Int(c), nil
}

func divInt(_ *Env, a, b types.Value) (types.Value, error) {
	if b.Int == 0 {
		return types.Value{}, types.Errorf(types.ErrDivisionByZero, "integer division by zero")
	}
	if a.Int == math.MinInt64 && b.Int == -1 {
		return types.Float(-float64(a.Int)), nil
	}
	return types.Int(a.Int / b.Int), nil
}

func modInt(_ *Env, a, b types.Value) (types.Value, error) {
	if b.Int == 0 {
		return types.Value{}, types.Errorf(types.ErrDivisionByZero, "integer modulo by zero")
	}
	if b.Int == -1 {
		return types.Int(0), nil
	}
	return types.Int(a.Int % b.Int), nil
}

func addFloat(_ *Env, a, b types.Value) (types.Value, error) {
	return types.Float(a.Float + b.Float), nil
}

func subFloat(_ *Env, a, b types.Value) (types.Value, error) {
	return types.Float(a.Float - b.Float), nil
}

func mulFloat(_ *Env, a, b types.Value) (types.Value, error) {
	return types.Float(a.Float * b.Float), nil
}

func divFloat(_ *Env, a, b types.Value) (types.Value, error) {
	if b.Float == 0 {
		return types.Value{}, types.Errorf(types.ErrDivisionByZero, "division by zero")
	}
	return types.Float(a.Float / b.Float), nil
}

func modFloat(_ *Env, a, b types.Value) (types.Value, error) {
	if b.Float == 0 {
		return types.Value{}, types.Errorf(types.ErrDivisionByZero, "modulo by zero")
	}
	return types.Float(math.Mod(a.Float, b.Float)), nil
}

func powFloat(_ *Env, a, b types.Value) (types.Value, error) {
	return types.Float(math.Pow(a.Float, b.Float)), nil
}

func negInt(_ *Env, a types.Value) (types.Value, error) {
	if a.Int == math.MinInt64 {
		return types.Float(-float64(a.Int)), nil
	}
	return types.Int(-a.Int), nil
}

func negFloat(_ *Env, a types.Value) (types.Value, error) {
	return types.Float(-a.Float), nil
}

func concatString(_ *Env, a, b types.Value) (types.Value, error) {
	return types.Str(a.Str + b.Str), nil
}

func concatBytes(_ *Env, a, b types.Value) (types.Value, error) {
	out := make([]byte, 0, len(a.Bytes)+len(b.Bytes))
	out = append(out, a.Bytes...)
	return types.Bytes(append(out, b.Bytes...)), nil
}

// ShiftInt shifts a by n bits: left for positive n, right (arithmetic) for
// negative n.
func ShiftInt(a, n int64) int64 {
	switch {
	case n >= 64:
		return 0
	case n >= 0:
		return a << uint(n)
	case n <= -64:
		if a < 0 {
			return -1
		}
		return 0
	default:
		return a >> uint(-n)
	}
}

func init() {
	registerBinary(OpShiftLeft, tInt, tInt, func(_ *Env, a, b types.Value) (types.Value, error) {
		return types.Int(ShiftInt(a.Int, b.Int)), nil
	})
	registerBinary(OpShiftRight, tInt, tInt, func(_ *Env, a, b types.Value) (types.Value, error) {
		if b.Int == math.MinInt64 {
			return types.Int(0), nil
		}
		return types.Int(ShiftInt(a.Int, -b.Int)), nil
	})
	registerUnary(OpInvert, tInt, func(_ *Env, a types.Value) (types.Value, error) {
		return types.Int(^a.Int), nil
	})
}

// PromoteBinary applies op after an Integer operand widened to Numeric,
// using the operator's Numeric rule. Operators without one fail with
// ErrIntegerOverflow.
func PromoteBinary(env *Env, op Op, a, b types.Value) (types.Value, error) {
	a, b = widen(a), widen(b)
	fn, ok := LookupBinary(op, a.Type, b.Type)
	if !ok {
		return types.Value{}, overflow(op)
	}
	return fn(env, a, b)
}

// PromoteUnary is the unary form of PromoteBinary.
func PromoteUnary(env *Env, op Op, a types.Value) (types.Value, error) {
	a = widen(a)
	fn, ok := LookupUnary(op, a.Type)
	if !ok {
		return types.Value{}, overflow(op)
	}
	return fn(env, a)
}

// Widen converts the Integer values of args to Numeric in place and
// returns their types.
func Widen(args []types.Value) []types.ValueType {
	in := make([]types.ValueType, len(args))
	for i, v := range args {
		args[i] = widen(v)
		in[i] = args[i].Type
	}
	return in
}

func widen(v types.Value) types.Value {
	if v.Type == tInt {
		return types.Float(float64(v.Int))
	}
	return v
}
