// Package resolver decides the value type of every node of a formula tree.
//
// Resolution runs in five steps:
//
//  1. Constraint narrowing. Every node reports the set of types it could
//     produce; every consumer narrows the types its parameter operands may
//     take. The narrowing repeats until no parameter changes.
//  2. Cost tables. Every node computes, per target type, the cheapest way to
//     produce it: signature costs, child costs and implicit conversion costs
//     from the ops matrices.
//  3. Parameter choice. Parameters are fixed one at a time in ordinal order,
//     each to the type minimising the cost of the whole tree.
//  4. Materialisation. The cheapest root type is chosen and pushed down the
//     tree; implicit conversions become Conversion nodes and constants are
//     converted in place.
//  5. Verification. Every node's chosen type must be one it reported in
//     step 1 and every operator's operands must match its signature.
package resolver

import (
	"math"

	"github.com/sandrolain/goformula/pkg/ast"
	"github.com/sandrolain/goformula/pkg/ops"
	"github.com/sandrolain/goformula/pkg/types"
)

// Options configures type resolution.
type Options struct {
	// Preference applies to parameters no consumer hinted; PreferNone means
	// PreferFloat.
	Preference ast.Preference
	// ResultType forces the type of the whole expression; types.Invalid
	// lets the cheapest type win.
	ResultType types.ValueType
	// Env converts constants at compile time.
	Env *ops.Env
}

// costStringParse is the cost of reading a string literal as a number.
const costStringParse = 10

const unreachable = math.MaxInt32

// choice is one cell of a cost table.
type choice struct {
	ok   bool
	cost int
	// native is the type the node itself produces; it differs from the
	// cell's type when an implicit conversion follows.
	native types.ValueType
	// sig indexes the node's signatures, -1 for leaves.
	sig int
}

type table [types.NumValueTypes]choice

// Resolver holds the state of one resolution.
type Resolver struct {
	opts Options
	ctx  *ast.Context

	possible map[ast.Node]types.TypeSet
	costs    map[ast.Node]*table
	reported map[ast.Node]types.TypeSet
	changed  bool
}

// New returns a resolver for the tree of ctx.
func New(ctx *ast.Context, opts Options) *Resolver {
	if opts.Preference == ast.PreferNone {
		opts.Preference = ast.PreferFloat
	}
	if opts.ResultType != types.Invalid && !opts.ResultType.Valid() {
		opts.ResultType = types.Invalid
	}
	if opts.Env == nil {
		opts.Env = ops.DefaultEnv()
	}
	return &Resolver{
		opts:     opts,
		ctx:      ctx,
		possible: map[ast.Node]types.TypeSet{},
		costs:    map[ast.Node]*table{},
		reported: map[ast.Node]types.TypeSet{},
	}
}

// Resolve types the tree rooted at root and returns the materialised root.
func Resolve(ctx *ast.Context, root ast.Node, opts Options) (ast.Node, error) {
	return New(ctx, opts).Resolve(root)
}

// Resolve types the tree rooted at root and returns the materialised root.
func (r *Resolver) Resolve(root ast.Node) (ast.Node, error) {
	r.hintParameters(root)
	if err := r.narrow(root); err != nil {
		return nil, err
	}
	if err := r.chooseParameters(root); err != nil {
		return nil, err
	}

	r.resetPossible()
	ast.Walk(root, func(n ast.Node) bool {
		r.reported[n] = r.possibleOf(n)
		return true
	})

	r.resetCosts()
	target, err := r.rootTarget(root)
	if err != nil {
		return nil, err
	}
	out, err := r.materialize(root, target)
	if err != nil {
		return nil, err
	}
	if err := verify(out); err != nil {
		return nil, err
	}
	return out, nil
}

// rootAccept is the set of types the caller accepts for the whole tree.
func (r *Resolver) rootAccept() types.TypeSet {
	if r.opts.ResultType.Valid() {
		return types.SetOf(r.opts.ResultType)
	}
	return types.AllTypes
}

func (r *Resolver) resetPossible() {
	clear(r.possible)
}

func (r *Resolver) resetCosts() {
	clear(r.costs)
}

// hintParameters sets the float-vs-integer preference of parameters from
// the first hinting consumer in source order.
func (r *Resolver) hintParameters(root ast.Node) {
	ast.Walk(root, func(n ast.Node) bool {
		hint := hintOf(n)
		if hint == ops.HintNone {
			return true
		}
		for _, c := range ast.Children(n) {
			p, ok := c.(*ast.Parameter)
			if !ok || p.Ref.Preference != ast.PreferNone {
				continue
			}
			if hint == ops.HintFloat {
				p.Ref.Preference = ast.PreferFloat
			} else {
				p.Ref.Preference = ast.PreferInteger
			}
		}
		return true
	})
}

func hintOf(n ast.Node) ops.Hint {
	switch n := n.(type) {
	case *ast.Unary:
		return n.Op.Hint()
	case *ast.Binary:
		return n.Op.Hint()
	case *ast.Call:
		return n.Func.Hint
	case *ast.Conversion:
		switch n.To {
		case types.Numeric:
			return ops.HintFloat
		case types.Integer:
			return ops.HintInteger
		}
	}
	return ops.HintNone
}

// preferenceOrder lists the types a free parameter tries, cheapest first.
// Its index is the parameter's base cost for that type.
func (r *Resolver) preferenceOrder(p *ast.Param) []types.ValueType {
	pref := p.Preference
	if pref == ast.PreferNone {
		pref = r.opts.Preference
	}
	if pref == ast.PreferInteger {
		return integerFirst
	}
	return floatFirst
}

var (
	floatFirst   = []types.ValueType{types.Numeric, types.Boolean, types.Integer, types.String, types.ByteArray}
	integerFirst = []types.ValueType{types.Integer, types.Boolean, types.Numeric, types.String, types.ByteArray}
)

func (r *Resolver) baseCost(p *ast.Param, t types.ValueType) int {
	for i, o := range r.preferenceOrder(p) {
		if o == t {
			return i
		}
	}
	return unreachable
}

// signaturesOf returns the typing rules of an operator-like node.
func signaturesOf(n ast.Node) []ops.Signature {
	switch n := n.(type) {
	case *ast.Unary:
		return ops.Signatures(n.Op)
	case *ast.Binary:
		return ops.Signatures(n.Op)
	case *ast.Call:
		return n.Func.Signatures()
	case *ast.Conversion:
		return conversionSignatures(n)
	}
	return nil
}

func conversionSignatures(n *ast.Conversion) []ops.Signature {
	if !n.Explicit {
		return []ops.Signature{{In: []types.ValueType{n.From}, Out: n.To}}
	}
	var out []ops.Signature
	for from := types.ValueType(0); from < types.NumValueTypes; from++ {
		cost := ops.ExplicitCost(from, n.To)
		if cost == ops.NoConversion || ops.Converter(from, n.To) == nil {
			continue
		}
		out = append(out, ops.Signature{In: []types.ValueType{from}, Out: n.To, Cost: cost})
	}
	return out
}

func notValid(n ast.Node) *types.Error {
	return types.Errorf(types.ErrNotLogicallyValid, "expression is not logically valid").WithToken(ast.String(n))
}
