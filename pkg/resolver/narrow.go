package resolver

import (
	"github.com/sandrolain/goformula/pkg/ast"
	"github.com/sandrolain/goformula/pkg/ops"
	"github.com/sandrolain/goformula/pkg/types"
)

// constantTypes returns the types a constant may be read as.
func constantTypes(v types.Value) types.TypeSet {
	set := types.SetOf(v.Type)
	switch v.Type {
	case types.Integer:
		set = set.With(types.Numeric)
	case types.String:
		if _, ok := ops.ParseIntString(v.Str); ok {
			set = set.With(types.Integer)
		}
		if _, ok := ops.ParseFloatString(v.Str); ok {
			set = set.With(types.Numeric)
		}
	}
	return set
}

// possibleOf returns the types n can produce before any implicit conversion
// given the current parameter sets. Results are memoised until the next
// resetPossible.
func (r *Resolver) possibleOf(n ast.Node) types.TypeSet {
	if set, ok := r.possible[n]; ok {
		return set
	}
	var set types.TypeSet
	switch n := n.(type) {
	case *ast.Constant:
		set = constantTypes(n.Value)
	case *ast.Parameter:
		if n.Ref.Type.Valid() {
			set = types.SetOf(n.Ref.Type)
		} else {
			set = n.Ref.Allowed
		}
	default:
		for _, s := range r.applicable(n) {
			set = set.With(s.Out)
		}
	}
	r.possible[n] = set
	return set
}

// applicable returns the signatures of n whose operands its children can
// provide.
func (r *Resolver) applicable(n ast.Node) []ops.Signature {
	children := ast.Children(n)
	var out []ops.Signature
	for _, s := range signaturesOf(n) {
		if len(s.In) != len(children) {
			continue
		}
		ok := true
		for i, c := range children {
			if !ops.ImplicitTargets(r.possibleOf(c)).Has(s.In[i]) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, s)
		}
	}
	return out
}

// narrow repeats constraint propagation from the root until no parameter
// set changes.
func (r *Resolver) narrow(root ast.Node) error {
	for {
		r.changed = false
		r.resetPossible()
		if err := r.constrain(root, r.rootAccept()); err != nil {
			return err
		}
		if !r.changed {
			return nil
		}
	}
}

// constrain narrows n to the types whose values its consumer can accept,
// possibly after an implicit conversion, and recurses into the operands of
// the signatures that remain viable.
func (r *Resolver) constrain(n ast.Node, accept types.TypeSet) error {
	outputs := ops.ImplicitSources(accept)
	switch n := n.(type) {
	case *ast.Constant:
		if constantTypes(n.Value).Intersect(outputs).Empty() {
			return notValid(n)
		}
		return nil
	case *ast.Parameter:
		p := n.Ref
		if p.Type.Valid() {
			if !outputs.Has(p.Type) {
				return conflict(p)
			}
			return nil
		}
		narrowed := p.Allowed.Intersect(outputs)
		if narrowed.Empty() {
			return conflict(p)
		}
		if narrowed != p.Allowed {
			p.Allowed = narrowed
			r.changed = true
		}
		return nil
	}

	var viable []ops.Signature
	for _, s := range r.applicable(n) {
		if outputs.Has(s.Out) {
			viable = append(viable, s)
		}
	}
	if len(viable) == 0 {
		return notValid(n)
	}
	for i, c := range ast.Children(n) {
		var childAccept types.TypeSet
		for _, s := range viable {
			childAccept = childAccept.With(s.In[i])
		}
		if err := r.constrain(c, childAccept); err != nil {
			return err
		}
	}
	return nil
}

func conflict(p *ast.Param) *types.Error {
	return types.Errorf(types.ErrParameterConflict, "parameter %q cannot satisfy all its uses", p.Name).WithToken(p.Name)
}
