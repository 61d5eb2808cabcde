package functions

import (
	"encoding/binary"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/sandrolain/goformula/pkg/ops"
	"github.com/sandrolain/goformula/pkg/types"
)

// String positions and lengths count runes, not bytes. Out-of-range
// positions are clamped rather than rejected.

func clampIndex(n int64, length int) int {
	if n < 0 {
		return 0
	}
	if n > int64(length) {
		return length
	}
	return int(n)
}

func str1(fn func(string) string) Overload {
	return over(tStr, func(_ *ops.Env, args []types.Value) (types.Value, error) {
		return types.Str(fn(args[0].Str)), nil
	}, tStr)
}

func predicate(fn func(s, sub string) bool) Overload {
	return over(tBool, func(_ *ops.Env, args []types.Value) (types.Value, error) {
		return types.Bool(fn(args[0].Str, args[1].Str)), nil
	}, tStr, tStr)
}

func stringFunctions() []*Def {
	return []*Def{
		def("len", ops.HintNone,
			over(tInt, func(_ *ops.Env, args []types.Value) (types.Value, error) {
				return types.Int(int64(utf8.RuneCountInString(args[0].Str))), nil
			}, tStr),
			over(tInt, func(_ *ops.Env, args []types.Value) (types.Value, error) {
				return types.Int(int64(len(args[0].Bytes))), nil
			}, tBytes),
		),
		def("upper", ops.HintNone, str1(strings.ToUpper)),
		def("lower", ops.HintNone, str1(strings.ToLower)),
		def("trim", ops.HintNone, str1(strings.TrimSpace)),
		def("left", ops.HintInteger, over(tStr, func(_ *ops.Env, args []types.Value) (types.Value, error) {
			r := []rune(args[0].Str)
			return types.Str(string(r[:clampIndex(args[1].Int, len(r))])), nil
		}, tStr, tInt)),
		def("right", ops.HintInteger, over(tStr, func(_ *ops.Env, args []types.Value) (types.Value, error) {
			r := []rune(args[0].Str)
			n := clampIndex(args[1].Int, len(r))
			return types.Str(string(r[len(r)-n:])), nil
		}, tStr, tInt)),
		def("substr", ops.HintInteger, over(tStr, func(_ *ops.Env, args []types.Value) (types.Value, error) {
			r := []rune(args[0].Str)
			start := clampIndex(args[1].Int, len(r))
			length := clampIndex(args[2].Int, len(r)-start)
			return types.Str(string(r[start : start+length])), nil
		}, tStr, tInt, tInt)),
		def("contains", ops.HintNone, predicate(strings.Contains)),
		def("startswith", ops.HintNone, predicate(strings.HasPrefix)),
		def("endswith", ops.HintNone, predicate(strings.HasSuffix)),
		def("replace", ops.HintNone, over(tStr, func(_ *ops.Env, args []types.Value) (types.Value, error) {
			if args[1].Str == "" {
				return args[0], nil
			}
			return types.Str(strings.ReplaceAll(args[0].Str, args[1].Str, args[2].Str)), nil
		}, tStr, tStr, tStr)),
		def("indexof", ops.HintNone, over(tInt, func(_ *ops.Env, args []types.Value) (types.Value, error) {
			i := strings.Index(args[0].Str, args[1].Str)
			if i < 0 {
				return types.Int(-1), nil
			}
			return types.Int(int64(utf8.RuneCountInString(args[0].Str[:i]))), nil
		}, tStr, tStr)),
		def("hex", ops.HintNone,
			over(tStr, func(_ *ops.Env, args []types.Value) (types.Value, error) {
				return types.Str(strings.ToUpper(hex.EncodeToString(args[0].Bytes))), nil
			}, tBytes),
			over(tStr, func(_ *ops.Env, args []types.Value) (types.Value, error) {
				var b [8]byte
				binary.BigEndian.PutUint64(b[:], uint64(args[0].Int))
				s := strings.TrimLeft(strings.ToUpper(hex.EncodeToString(b[:])), "0")
				if s == "" {
					s = "0"
				}
				return types.Str(s), nil
			}, tInt),
		),
	}
}

func controlFunctions() []*Def {
	branches := make([]Overload, 0, types.NumValueTypes)
	for _, t := range []types.ValueType{tInt, tNum, tBool, tBytes, tStr} {
		branches = append(branches, over(t, func(_ *ops.Env, args []types.Value) (types.Value, error) {
			if args[0].Bool {
				return args[1], nil
			}
			return args[2], nil
		}, tBool, t, t))
	}
	d := def("if", ops.HintNone, branches...)
	d.Kind = KindConditional
	return []*Def{d}
}

// conversionFunctions returns int, float, bool, bytes and str. Their
// overloads carry the explicit conversion costs; the code generator emits
// conversion nodes for them instead of calls.
func conversionFunctions() []*Def {
	targets := []struct {
		name string
		to   types.ValueType
	}{
		{"int", tInt},
		{"float", tNum},
		{"bool", tBool},
		{"bytes", tBytes},
		{"str", tStr},
	}
	out := make([]*Def, 0, len(targets))
	for _, tg := range targets {
		d := &Def{Name: tg.name, Arity: 1, Kind: KindConversion, Target: tg.to}
		for _, from := range []types.ValueType{tInt, tNum, tBool, tBytes, tStr} {
			cost := ops.ExplicitCost(from, tg.to)
			conv := ops.Converter(from, tg.to)
			if cost == ops.NoConversion || conv == nil {
				continue
			}
			d.Overloads = append(d.Overloads, Overload{
				Signature: ops.Signature{In: []types.ValueType{from}, Out: tg.to, Cost: cost},
				Impl: func(env *ops.Env, args []types.Value) (types.Value, error) {
					return conv(env, args[0])
				},
			})
		}
		out = append(out, d)
	}
	return out
}
