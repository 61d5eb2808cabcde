package ops

import (
	"github.com/sandrolain/goformula/pkg/types"
)

// Signature is one typing rule of an operator: operand types, result type
// and the cost of choosing this rule.
type Signature struct {
	In   []types.ValueType
	Out  types.ValueType
	Cost int
}

func sig(out types.ValueType, cost int, in ...types.ValueType) Signature {
	return Signature{In: in, Out: out, Cost: cost}
}

func homogeneous(cost int, ts ...types.ValueType) []Signature {
	out := make([]Signature, 0, len(ts))
	for _, t := range ts {
		out = append(out, sig(t, cost, t, t))
	}
	return out
}

// costStringOrder makes a numeric literal string order numerically against
// a number: "3" < 10 compares 3 with 10.
const costStringOrder = 6

func comparisons(ts ...types.ValueType) []Signature {
	out := make([]Signature, 0, len(ts))
	for _, t := range ts {
		out = append(out, sig(tBool, 0, t, t))
	}
	return out
}

func orderings(ts ...types.ValueType) []Signature {
	out := comparisons(ts...)
	for i := range out {
		if out[i].In[0] == tStr {
			out[i].Cost = costStringOrder
		}
	}
	return out
}

// signatures lists, per operator, the typing rules in preference order.
var signatures = map[Op][]Signature{
	OpEqual:        comparisons(tInt, tNum, tBool, tBytes, tStr),
	OpNotEqual:     comparisons(tInt, tNum, tBool, tBytes, tStr),
	OpLess:         orderings(tInt, tNum, tStr),
	OpGreater:      orderings(tInt, tNum, tStr),
	OpLessEqual:    orderings(tInt, tNum, tStr),
	OpGreaterEqual: orderings(tInt, tNum, tStr),

	OpOr:  homogeneous(0, tBool, tInt, tBytes),
	OpXor: homogeneous(0, tBool, tInt, tBytes),
	OpAnd: homogeneous(0, tBool, tInt, tBytes),

	OpAdd:      homogeneous(0, tInt, tNum, tStr, tBytes),
	OpSubtract: homogeneous(0, tInt, tNum),
	OpMultiply: homogeneous(0, tInt, tNum),
	OpDivide:   homogeneous(0, tNum),
	OpIntDivide: {
		sig(tInt, 0, tInt, tInt),
	},
	OpModulo: homogeneous(0, tInt, tNum),
	OpPower:  homogeneous(0, tNum),

	OpShiftLeft: {
		sig(tInt, 0, tInt, tInt),
		sig(tBytes, 0, tBytes, tInt),
	},
	OpShiftRight: {
		sig(tInt, 0, tInt, tInt),
		sig(tBytes, 0, tBytes, tInt),
	},

	OpNegate: {sig(tInt, 0, tInt), sig(tNum, 0, tNum)},
	OpPlus:   {sig(tInt, 0, tInt), sig(tNum, 0, tNum)},
	OpNot:    {sig(tBool, 0, tBool)},
	OpInvert: {sig(tInt, 0, tInt), sig(tBytes, 0, tBytes)},
}

// Signatures returns the typing rules of op. The slice must not be modified.
func Signatures(op Op) []Signature {
	return signatures[op]
}

// Produces returns the result types op can produce at all.
func Produces(op Op) types.TypeSet {
	var out types.TypeSet
	for _, s := range signatures[op] {
		out = out.With(s.Out)
	}
	return out
}

// UnaryFn implements a unary operator for one operand type.
type UnaryFn func(env *Env, a types.Value) (types.Value, error)

// BinaryFn implements a binary operator for one pair of operand types.
type BinaryFn func(env *Env, a, b types.Value) (types.Value, error)

type helperKey struct {
	op   Op
	a, b types.ValueType
}

var (
	unaryHelpers  = map[helperKey]UnaryFn{}
	binaryHelpers = map[helperKey]BinaryFn{}
)

func registerUnary(op Op, a types.ValueType, fn UnaryFn) {
	unaryHelpers[helperKey{op: op, a: a, b: types.Invalid}] = fn
}

func registerBinary(op Op, a, b types.ValueType, fn BinaryFn) {
	binaryHelpers[helperKey{op: op, a: a, b: b}] = fn
}

// LookupUnary returns the runtime helper of a unary operator.
func LookupUnary(op Op, a types.ValueType) (UnaryFn, bool) {
	fn, ok := unaryHelpers[helperKey{op: op, a: a, b: types.Invalid}]
	return fn, ok
}

// LookupBinary returns the runtime helper of a binary operator.
func LookupBinary(op Op, a, b types.ValueType) (BinaryFn, bool) {
	fn, ok := binaryHelpers[helperKey{op: op, a: a, b: b}]
	return fn, ok
}
