package functions

import (
	"math"

	"github.com/sandrolain/goformula/pkg/ops"
	"github.com/sandrolain/goformula/pkg/types"
)

const (
	tInt   = types.Integer
	tNum   = types.Numeric
	tBool  = types.Boolean
	tBytes = types.ByteArray
	tStr   = types.String
)

func domainError(name string, args ...float64) error {
	vals := make([]any, len(args))
	for i, a := range args {
		vals[i] = ops.FormatFloat(a)
	}
	return types.Errorf(types.ErrDomain, "%s is not defined for %v", name, vals)
}

// float1 wraps a float64 function of one argument, with an optional
// domain check.
func float1(name string, fn func(float64) float64, valid func(float64) bool) Overload {
	return over(tNum, func(_ *ops.Env, args []types.Value) (types.Value, error) {
		x := args[0].Float
		if valid != nil && !valid(x) {
			return types.Value{}, domainError(name, x)
		}
		return types.Float(fn(x)), nil
	}, tNum)
}

func float2(name string, fn func(a, b float64) float64, valid func(a, b float64) bool) Overload {
	return over(tNum, func(_ *ops.Env, args []types.Value) (types.Value, error) {
		a, b := args[0].Float, args[1].Float
		if valid != nil && !valid(a, b) {
			return types.Value{}, domainError(name, a, b)
		}
		return types.Float(fn(a, b)), nil
	}, tNum, tNum)
}

func nonNegative(x float64) bool { return x >= 0 || math.IsNaN(x) }
func positive(x float64) bool    { return x > 0 || math.IsNaN(x) }
func unitRange(x float64) bool   { return (x >= -1 && x <= 1) || math.IsNaN(x) }

// intIdentity keeps integer arguments of rounding functions integral.
func intIdentity() Overload {
	return over(tInt, func(_ *ops.Env, args []types.Value) (types.Value, error) {
		return args[0], nil
	}, tInt)
}

func mathFunctions() []*Def {
	return []*Def{
		def("abs", ops.HintNone,
			over(tInt, func(_ *ops.Env, args []types.Value) (types.Value, error) {
				n := args[0].Int
				if n == math.MinInt64 {
					return types.Float(-float64(n)), nil
				}
				if n < 0 {
					n = -n
				}
				return types.Int(n), nil
			}, tInt),
			float1("abs", math.Abs, nil),
		),
		def("sign", ops.HintNone,
			over(tInt, func(_ *ops.Env, args []types.Value) (types.Value, error) {
				switch n := args[0].Int; {
				case n > 0:
					return types.Int(1), nil
				case n < 0:
					return types.Int(-1), nil
				}
				return types.Int(0), nil
			}, tInt),
			over(tInt, func(_ *ops.Env, args []types.Value) (types.Value, error) {
				switch f := args[0].Float; {
				case math.IsNaN(f):
					return types.Value{}, domainError("sign", f)
				case f > 0:
					return types.Int(1), nil
				case f < 0:
					return types.Int(-1), nil
				}
				return types.Int(0), nil
			}, tNum),
		),
		def("sqrt", ops.HintFloat, float1("sqrt", math.Sqrt, nonNegative)),
		def("exp", ops.HintFloat, float1("exp", math.Exp, nil)),
		def("ln", ops.HintFloat, float1("ln", math.Log, positive)),
		def("log10", ops.HintFloat, float1("log10", math.Log10, positive)),
		def("log", ops.HintFloat, float2("log", func(x, base float64) float64 {
			return math.Log(x) / math.Log(base)
		}, func(x, base float64) bool {
			return positive(x) && positive(base) && base != 1
		})),
		def("pow", ops.HintFloat, float2("pow", math.Pow, nil)),
		def("sin", ops.HintFloat, float1("sin", math.Sin, nil)),
		def("cos", ops.HintFloat, float1("cos", math.Cos, nil)),
		def("tan", ops.HintFloat, float1("tan", math.Tan, nil)),
		def("asin", ops.HintFloat, float1("asin", math.Asin, unitRange)),
		def("acos", ops.HintFloat, float1("acos", math.Acos, unitRange)),
		def("atan", ops.HintFloat, float1("atan", math.Atan, nil)),
		def("atan2", ops.HintFloat, float2("atan2", math.Atan2, nil)),
		def("hypot", ops.HintFloat, float2("hypot", math.Hypot, nil)),
		def("floor", ops.HintNone, intIdentity(), float1("floor", math.Floor, nil)),
		def("ceiling", ops.HintNone, intIdentity(), float1("ceiling", math.Ceil, nil)),
		def("round", ops.HintNone, intIdentity(), float1("round", math.Round, nil)),
		def("trunc", ops.HintNone, intIdentity(), float1("trunc", math.Trunc, nil)),
		def("min", ops.HintNone, extremum(true)...),
		def("max", ops.HintNone, extremum(false)...),
		def("clamp", ops.HintNone,
			over(tInt, func(_ *ops.Env, args []types.Value) (types.Value, error) {
				x, lo, hi := args[0].Int, args[1].Int, args[2].Int
				if lo > hi {
					return types.Value{}, types.Errorf(types.ErrDomain, "clamp bounds out of order: %d > %d", lo, hi)
				}
				return types.Int(min(max(x, lo), hi)), nil
			}, tInt, tInt, tInt),
			over(tNum, func(_ *ops.Env, args []types.Value) (types.Value, error) {
				x, lo, hi := args[0].Float, args[1].Float, args[2].Float
				if lo > hi {
					return types.Value{}, domainError("clamp", x, lo, hi)
				}
				return types.Float(math.Min(math.Max(x, lo), hi)), nil
			}, tNum, tNum, tNum),
		),
	}
}

func extremum(lowest bool) []Overload {
	pick := func(less bool) bool { return less == lowest }
	return []Overload{
		over(tInt, func(_ *ops.Env, args []types.Value) (types.Value, error) {
			if pick(args[1].Int < args[0].Int) {
				return args[1], nil
			}
			return args[0], nil
		}, tInt, tInt),
		over(tNum, func(_ *ops.Env, args []types.Value) (types.Value, error) {
			if lowest {
				return types.Float(math.Min(args[0].Float, args[1].Float)), nil
			}
			return types.Float(math.Max(args[0].Float, args[1].Float)), nil
		}, tNum, tNum),
		over(tStr, func(_ *ops.Env, args []types.Value) (types.Value, error) {
			if pick(args[1].Str < args[0].Str) {
				return args[1], nil
			}
			return args[0], nil
		}, tStr, tStr),
	}
}
