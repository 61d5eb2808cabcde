package ops

import (
	"bytes"
	"strings"

	"github.com/sandrolain/goformula/pkg/types"
)

// ordering is the result of a three-way comparison under tolerance.
type ordering int8

const (
	less    ordering = -1
	equal   ordering = 0
	greater ordering = 1
)

func compareInt(env *Env, a, b int64) ordering {
	var tol *types.Tolerance
	if env != nil {
		tol = env.Tolerance
	}
	switch {
	case tol.IntEqual(a, b):
		return equal
	case a < b:
		return less
	default:
		return greater
	}
}

func compareFloat(env *Env, a, b float64) ordering {
	var tol *types.Tolerance
	if env != nil {
		tol = env.Tolerance
	}
	switch {
	case tol.FloatEqual(a, b):
		return equal
	case a < b:
		return less
	default:
		return greater
	}
}

func compareValues(env *Env, a, b types.Value) ordering {
	switch a.Type {
	case types.Integer:
		return compareInt(env, a.Int, b.Int)
	case types.Numeric:
		return compareFloat(env, a.Float, b.Float)
	case types.String:
		return ordering(strings.Compare(a.Str, b.Str))
	case types.ByteArray:
		return ordering(bytes.Compare(a.Bytes, b.Bytes))
	case types.Boolean:
		switch {
		case a.Bool == b.Bool:
			return equal
		case !a.Bool:
			return less
		default:
			return greater
		}
	}
	return equal
}

func comparator(accept func(ordering) bool) BinaryFn {
	return func(env *Env, a, b types.Value) (types.Value, error) {
		return types.Bool(accept(compareValues(env, a, b))), nil
	}
}

// NaN never compares equal, less or greater, whatever the tolerance.
func floatComparator(accept func(ordering) bool, nanResult bool) BinaryFn {
	return func(env *Env, a, b types.Value) (types.Value, error) {
		if a.Float != a.Float || b.Float != b.Float {
			return types.Bool(nanResult), nil
		}
		return types.Bool(accept(compareFloat(env, a.Float, b.Float))), nil
	}
}

func init() {
	accepts := map[Op]func(ordering) bool{
		OpEqual:        func(o ordering) bool { return o == equal },
		OpNotEqual:     func(o ordering) bool { return o != equal },
		OpLess:         func(o ordering) bool { return o == less },
		OpGreater:      func(o ordering) bool { return o == greater },
		OpLessEqual:    func(o ordering) bool { return o != greater },
		OpGreaterEqual: func(o ordering) bool { return o != less },
	}
	for op, accept := range accepts {
		for _, s := range signatures[op] {
			t := s.In[0]
			if t == tNum {
				registerBinary(op, t, t, floatComparator(accept, op == OpNotEqual))
				continue
			}
			registerBinary(op, t, t, comparator(accept))
		}
	}
}
