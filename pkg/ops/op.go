// Package ops holds the operator registry of the formula language:
// operator kinds and their precedence tiers, the per-operator signature
// tables used by type resolution, the implicit and explicit conversion
// cost matrices, and the runtime helpers generated code calls into.
//
// Everything the type resolver weighs is data in this package, so the
// resolution algorithm can be audited and tested independently of the
// parser and the code generator.
package ops

import "strings"

// Op identifies an operator.
type Op uint8

// Binary operators.
const (
	OpInvalid Op = iota

	OpEqual
	OpNotEqual
	OpLess
	OpGreater
	OpLessEqual
	OpGreaterEqual

	OpOr
	OpXor
	OpAnd

	OpAdd
	OpSubtract

	OpMultiply
	OpDivide
	OpIntDivide
	OpModulo

	OpPower

	OpShiftLeft
	OpShiftRight

	// Unary operators.
	OpNegate
	OpPlus
	OpNot
	OpInvert

	numOps
)

// Tier is a precedence level. Higher tiers bind tighter.
type Tier uint8

// Precedence tiers, lowest first.
const (
	TierNone Tier = iota
	TierComparison
	TierOr
	TierXor
	TierAnd
	TierAdditive
	TierMultiplicative
	TierPower
	TierShift
	TierUnary
)

// Hint is the float-vs-integer preference an operator passes to a
// parameter operand it touches directly.
type Hint uint8

// Parameter hints.
const (
	HintNone Hint = iota
	HintFloat
	HintInteger
)

type opInfo struct {
	name  string
	tier  Tier
	unary bool
	hint  Hint
}

var opTable = [numOps]opInfo{
	OpEqual:        {name: "equal", tier: TierComparison},
	OpNotEqual:     {name: "not_equal", tier: TierComparison},
	OpLess:         {name: "less", tier: TierComparison},
	OpGreater:      {name: "greater", tier: TierComparison},
	OpLessEqual:    {name: "less_equal", tier: TierComparison},
	OpGreaterEqual: {name: "greater_equal", tier: TierComparison},
	OpOr:           {name: "or", tier: TierOr},
	OpXor:          {name: "xor", tier: TierXor},
	OpAnd:          {name: "and", tier: TierAnd},
	OpAdd:          {name: "add", tier: TierAdditive},
	OpSubtract:     {name: "subtract", tier: TierAdditive},
	OpMultiply:     {name: "multiply", tier: TierMultiplicative},
	OpDivide:       {name: "divide", tier: TierMultiplicative, hint: HintFloat},
	OpIntDivide:    {name: "int_divide", tier: TierMultiplicative, hint: HintInteger},
	OpModulo:       {name: "modulo", tier: TierMultiplicative, hint: HintInteger},
	OpPower:        {name: "power", tier: TierPower, hint: HintFloat},
	OpShiftLeft:    {name: "shift_left", tier: TierShift, hint: HintInteger},
	OpShiftRight:   {name: "shift_right", tier: TierShift, hint: HintInteger},
	OpNegate:       {name: "negate", tier: TierUnary, unary: true},
	OpPlus:         {name: "plus", tier: TierUnary, unary: true},
	OpNot:          {name: "not", tier: TierUnary, unary: true},
	OpInvert:       {name: "invert", tier: TierUnary, unary: true, hint: HintInteger},
}

// String returns the configuration name of the operator.
func (o Op) String() string {
	if o > OpInvalid && o < numOps {
		return opTable[o].name
	}
	return "invalid"
}

// Tier returns the precedence tier of the operator.
func (o Op) Tier() Tier {
	if o < numOps {
		return opTable[o].tier
	}
	return TierNone
}

// IsUnary reports whether the operator is a prefix unary operator.
func (o Op) IsUnary() bool {
	return o < numOps && opTable[o].unary
}

// IsComparison reports whether the operator is in the comparison tier.
func (o Op) IsComparison() bool {
	return o.Tier() == TierComparison
}

// Hint returns the parameter preference hint of the operator.
func (o Op) Hint() Hint {
	if o < numOps {
		return opTable[o].hint
	}
	return HintNone
}

// All returns every valid operator.
func All() []Op {
	out := make([]Op, 0, numOps-1)
	for o := OpInvalid + 1; o < numOps; o++ {
		out = append(out, o)
	}
	return out
}

// ByName looks an operator up by its configuration name.
func ByName(name string) (Op, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for o := OpInvalid + 1; o < numOps; o++ {
		if opTable[o].name == name {
			return o, true
		}
	}
	return OpInvalid, false
}
