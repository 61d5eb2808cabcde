package resolver

import (
	"github.com/sandrolain/goformula/pkg/ast"
	"github.com/sandrolain/goformula/pkg/ops"
	"github.com/sandrolain/goformula/pkg/types"
)

// rootOrder breaks ties between equally cheap result types.
var rootOrder = []types.ValueType{types.Integer, types.Numeric, types.Boolean, types.ByteArray, types.String}

// tableOf returns the cost table of n, memoised until the next resetCosts.
func (r *Resolver) tableOf(n ast.Node) *table {
	if t, ok := r.costs[n]; ok {
		return t
	}
	var native table
	switch n := n.(type) {
	case *ast.Constant:
		native = constantCosts(n.Value)
	case *ast.Parameter:
		p := n.Ref
		if p.Type.Valid() {
			native[p.Type] = choice{ok: true, cost: r.baseCost(p, p.Type), native: p.Type, sig: -1}
			break
		}
		for _, t := range p.Allowed.Types() {
			native[t] = choice{ok: true, cost: r.baseCost(p, t), native: t, sig: -1}
		}
	default:
		native = r.operatorCosts(n)
	}
	closed := closeTable(&native)
	r.costs[n] = closed
	return closed
}

func constantCosts(v types.Value) table {
	var t table
	t[v.Type] = choice{ok: true, native: v.Type, sig: -1}
	switch v.Type {
	case types.Integer:
		t[types.Numeric] = choice{ok: true, cost: 1, native: types.Numeric, sig: -1}
	case types.String:
		if _, ok := ops.ParseIntString(v.Str); ok {
			t[types.Integer] = choice{ok: true, cost: costStringParse, native: types.Integer, sig: -1}
		}
		if _, ok := ops.ParseFloatString(v.Str); ok {
			t[types.Numeric] = choice{ok: true, cost: costStringParse, native: types.Numeric, sig: -1}
		}
	}
	return t
}

// operatorCosts prices every signature of n and keeps the cheapest per
// result type. Signatures listed first win ties.
func (r *Resolver) operatorCosts(n ast.Node) table {
	var native table
	children := ast.Children(n)
	for si, s := range signaturesOf(n) {
		if len(s.In) != len(children) {
			continue
		}
		total, ok := s.Cost, true
		for i, c := range children {
			cell := r.tableOf(c)[s.In[i]]
			if !cell.ok {
				ok = false
				break
			}
			total += cell.cost
		}
		if !ok {
			continue
		}
		if cur := native[s.Out]; !cur.ok || total < cur.cost {
			native[s.Out] = choice{ok: true, cost: total, native: s.Out, sig: si}
		}
	}
	return native
}

// closeTable extends native costs with implicit conversions.
func closeTable(native *table) *table {
	var out table
	for to := types.ValueType(0); to < types.NumValueTypes; to++ {
		if native[to].ok {
			out[to] = native[to]
		}
		for from := types.ValueType(0); from < types.NumValueTypes; from++ {
			src := native[from]
			if from == to || !src.ok {
				continue
			}
			conv := ops.ImplicitCost(from, to)
			if conv == ops.NoConversion {
				continue
			}
			if cost := src.cost + conv; !out[to].ok || cost < out[to].cost {
				out[to] = choice{ok: true, cost: cost, native: from, sig: src.sig}
			}
		}
	}
	return &out
}

// rootCost returns the cheapest cost of the whole tree under the current
// parameter choices.
func (r *Resolver) rootCost(root ast.Node) (int, bool) {
	r.resetCosts()
	t := r.tableOf(root)
	best, found := unreachable, false
	for _, rt := range r.rootAccept().Types() {
		if c := t[rt]; c.ok && c.cost < best {
			best, found = c.cost, true
		}
	}
	return best, found
}

// chooseParameters fixes every free parameter in ordinal order to the type
// of its narrowed set that minimises the root cost. Candidates are tried in
// preference order and only a strictly cheaper one replaces the current
// best.
func (r *Resolver) chooseParameters(root ast.Node) error {
	for _, p := range r.ctx.Params() {
		if p.Type.Valid() {
			continue
		}
		best, bestCost := types.Invalid, unreachable
		for _, t := range r.preferenceOrder(p) {
			if !p.Allowed.Has(t) {
				continue
			}
			p.Type = t
			if c, ok := r.rootCost(root); ok && c < bestCost {
				best, bestCost = t, c
			}
		}
		p.Type = best
		if !best.Valid() {
			return types.Errorf(types.ErrUnresolvedParam, "no type of parameter %q makes the expression valid", p.Name).WithToken(p.Name)
		}
		p.Allowed = types.SetOf(best)
	}
	return nil
}

// rootTarget picks the result type: the forced one if any, otherwise the
// cheapest.
func (r *Resolver) rootTarget(root ast.Node) (types.ValueType, error) {
	t := r.tableOf(root)
	if rt := r.opts.ResultType; rt.Valid() {
		if !t[rt].ok {
			return types.Invalid, types.Errorf(types.ErrNotLogicallyValid, "expression cannot produce a %s result", rt).
				WithToken(ast.String(root))
		}
		return rt, nil
	}
	best, bestCost := types.Invalid, unreachable
	for _, rt := range rootOrder {
		if c := t[rt]; c.ok && c.cost < bestCost {
			best, bestCost = rt, c.cost
		}
	}
	if !best.Valid() {
		return types.Invalid, notValid(root)
	}
	return best, nil
}
