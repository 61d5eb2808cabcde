package resolver

import (
	"github.com/sandrolain/goformula/pkg/ast"
	"github.com/sandrolain/goformula/pkg/ops"
	"github.com/sandrolain/goformula/pkg/types"
)

// materialize fixes n to produce target: operator nodes take the signature
// of the cheapest way to target, constants are converted in place and an
// implicit Conversion is wrapped around anything whose own type differs.
func (r *Resolver) materialize(n ast.Node, target types.ValueType) (ast.Node, error) {
	ch := r.tableOf(n)[target]
	if !ch.ok {
		return nil, types.Errorf(types.ErrInvariant, "no way to produce %s", target).WithToken(ast.String(n))
	}
	if rep, ok := r.reported[n]; ok && !rep.Has(ch.native) {
		return nil, types.Errorf(types.ErrInvariant, "chosen type %s was not reported (%s)", ch.native, rep).
			WithToken(ast.String(n))
	}

	if c, ok := n.(*ast.Constant); ok {
		v, err := r.convertConstant(c.Value, ch.native)
		if err != nil {
			return nil, err
		}
		if v, err = r.convertConstant(v, target); err != nil {
			return nil, err
		}
		c.Value = v
		return c, nil
	}

	var sig ops.Signature
	if ch.sig >= 0 {
		sig = signaturesOf(n)[ch.sig]
	}
	var err error
	switch n := n.(type) {
	case *ast.Parameter:
	case *ast.Unary:
		n.Sig, n.Type = sig, sig.Out
		n.Operand, err = r.materialize(n.Operand, sig.In[0])
	case *ast.Binary:
		n.Sig, n.Type = sig, sig.Out
		if n.Left, err = r.materialize(n.Left, sig.In[0]); err == nil {
			n.Right, err = r.materialize(n.Right, sig.In[1])
		}
	case *ast.Call:
		n.Sig, n.Type = sig, sig.Out
		for i := range n.Args {
			if n.Args[i], err = r.materialize(n.Args[i], sig.In[i]); err != nil {
				break
			}
		}
	case *ast.Conversion:
		n.From = sig.In[0]
		n.Operand, err = r.materialize(n.Operand, sig.In[0])
	}
	if err != nil {
		return nil, err
	}
	if ch.native != target {
		return &ast.Conversion{From: ch.native, To: target, Operand: n}, nil
	}
	return n, nil
}

// convertConstant converts a literal at compile time. String literals read
// as numbers go through the explicit converters.
func (r *Resolver) convertConstant(v types.Value, to types.ValueType) (types.Value, error) {
	if v.Type == to {
		return v, nil
	}
	conv := ops.Converter(v.Type, to)
	if conv == nil {
		return types.Value{}, types.Errorf(types.ErrInvariant, "no converter from %s to %s", v.Type, to)
	}
	out, err := conv(r.opts.Env, v)
	if err != nil {
		return types.Value{}, types.Errorf(types.ErrNotLogicallyValid, "constant cannot be read as %s", to).
			WithToken(v.String()).WithCause(err)
	}
	return out, nil
}

// verify checks that the materialised tree is consistent: every type is
// valid and every operator's operands match its signature.
func verify(root ast.Node) error {
	var err error
	ast.Walk(root, func(n ast.Node) bool {
		if err != nil {
			return false
		}
		if !ast.TypeOf(n).Valid() {
			err = types.Errorf(types.ErrInvariant, "node left untyped").WithToken(ast.String(n))
			return false
		}
		var in []types.ValueType
		switch n := n.(type) {
		case *ast.Unary:
			in = n.Sig.In
		case *ast.Binary:
			in = n.Sig.In
		case *ast.Call:
			in = n.Sig.In
		case *ast.Conversion:
			in = []types.ValueType{n.From}
		}
		for i, c := range ast.Children(n) {
			if i >= len(in) || ast.TypeOf(c) != in[i] {
				err = types.Errorf(types.ErrInvariant, "operand %d does not match its signature", i).WithToken(ast.String(n))
				return false
			}
		}
		return true
	})
	return err
}
