// Package codegen translates a typed formula tree into executable code.
//
// Every node becomes a Fragment, a closure over the fragments of its
// children and the runtime helper its signature selects. Helpers are looked
// up once, at generation time; a missing helper is an engine error, never a
// runtime one. Boolean and/or skip their right operand when the left one
// decides the result, and if() evaluates only the branch it selects.
package codegen

import (
	"github.com/sandrolain/goformula/pkg/ast"
	"github.com/sandrolain/goformula/pkg/functions"
	"github.com/sandrolain/goformula/pkg/ops"
	"github.com/sandrolain/goformula/pkg/types"
)

// Fragment is the generated code of one node.
type Fragment func(f *Frame) (types.Value, error)

// Generator turns typed trees into fragments.
type Generator struct {
	env *ops.Env
}

// New returns a generator whose code consults env at run time.
func New(env *ops.Env) *Generator {
	if env == nil {
		env = ops.DefaultEnv()
	}
	return &Generator{env: env}
}

// Env returns the runtime environment of generated code.
func (g *Generator) Env() *ops.Env {
	return g.env
}

// Program generates the whole tree and wraps it as an Expression.
func (g *Generator) Program(ctx *ast.Context, root ast.Node) (*types.Expression, error) {
	frag, err := g.Fragment(root)
	if err != nil {
		return nil, err
	}
	params := ctx.ParamInfo()
	slots := len(params)
	env := g.env
	run := func(b types.Binder) (types.Value, error) {
		f := acquireFrame(env, b, slots)
		defer releaseFrame(f)
		return frag(f)
	}
	return types.NewExpression(ctx.Source, params, ast.TypeOf(root), run), nil
}

// Eval generates n and runs it without any parameter binding. Reaching a
// parameter fails with ErrMissingParameter.
func (g *Generator) Eval(n ast.Node) (types.Value, error) {
	frag, err := g.Fragment(n)
	if err != nil {
		return types.Value{}, err
	}
	f := acquireFrame(g.env, nil, 0)
	defer releaseFrame(f)
	return frag(f)
}

// Fragment generates the code of n.
func (g *Generator) Fragment(n ast.Node) (Fragment, error) {
	switch n := n.(type) {
	case *ast.Constant:
		v := n.Value
		return func(*Frame) (types.Value, error) { return v, nil }, nil
	case *ast.Parameter:
		p := n.Ref
		if !p.Type.Valid() {
			return nil, types.Errorf(types.ErrInvariant, "parameter %q has no type", p.Name)
		}
		return func(f *Frame) (types.Value, error) { return f.param(p) }, nil
	case *ast.Unary:
		return g.unary(n)
	case *ast.Binary:
		return g.binary(n)
	case *ast.Call:
		if n.Func.Kind == functions.KindConditional {
			return g.conditional(n)
		}
		return g.call(n)
	case *ast.Conversion:
		return g.conversion(n)
	}
	return nil, types.Errorf(types.ErrInvariant, "unknown node %T", n)
}

func notFound(what string, n ast.Node) *types.Error {
	return types.Errorf(types.ErrFunctionNotFound, "no runtime helper for %s", what).WithToken(ast.String(n))
}

func (g *Generator) unary(n *ast.Unary) (Fragment, error) {
	if len(n.Sig.In) != 1 {
		return nil, types.Errorf(types.ErrInvariant, "unresolved unary operator").WithToken(ast.String(n))
	}
	fn, ok := ops.LookupUnary(n.Op, n.Sig.In[0])
	if !ok {
		return nil, notFound(n.Op.String()+"("+n.Sig.In[0].String()+")", n)
	}
	operand, err := g.Fragment(n.Operand)
	if err != nil {
		return nil, err
	}
	env, op, in := g.env, n.Op, n.Sig.In[0]
	return func(f *Frame) (types.Value, error) {
		a, err := operand(f)
		if err != nil {
			return types.Value{}, err
		}
		if a.Type != in {
			return ops.PromoteUnary(env, op, a)
		}
		return fn(env, a)
	}, nil
}

func (g *Generator) binary(n *ast.Binary) (Fragment, error) {
	if len(n.Sig.In) != 2 {
		return nil, types.Errorf(types.ErrInvariant, "unresolved binary operator").WithToken(ast.String(n))
	}
	fn, ok := ops.LookupBinary(n.Op, n.Sig.In[0], n.Sig.In[1])
	if !ok {
		return nil, notFound(n.Op.String()+"("+n.Sig.In[0].String()+", "+n.Sig.In[1].String()+")", n)
	}
	left, err := g.Fragment(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := g.Fragment(n.Right)
	if err != nil {
		return nil, err
	}
	env, op := g.env, n.Op
	in0, in1 := n.Sig.In[0], n.Sig.In[1]
	apply := func(a, b types.Value) (types.Value, error) {
		// an Integer operand overflowed into a Numeric
		if a.Type != in0 || b.Type != in1 {
			return ops.PromoteBinary(env, op, a, b)
		}
		return fn(env, a, b)
	}

	if decisive, ok := ops.ShortCircuits(n.Op); ok && n.Sig.In[0] == types.Boolean {
		return func(f *Frame) (types.Value, error) {
			a, err := left(f)
			if err != nil {
				return types.Value{}, err
			}
			if a.Bool == decisive {
				return types.Bool(decisive), nil
			}
			b, err := right(f)
			if err != nil {
				return types.Value{}, err
			}
			return apply(a, b)
		}, nil
	}

	return func(f *Frame) (types.Value, error) {
		a, err := left(f)
		if err != nil {
			return types.Value{}, err
		}
		b, err := right(f)
		if err != nil {
			return types.Value{}, err
		}
		return apply(a, b)
	}, nil
}

func (g *Generator) args(args []ast.Node) ([]Fragment, error) {
	out := make([]Fragment, len(args))
	for i, a := range args {
		frag, err := g.Fragment(a)
		if err != nil {
			return nil, err
		}
		out[i] = frag
	}
	return out, nil
}

func (g *Generator) call(n *ast.Call) (Fragment, error) {
	impl, ok := n.Func.Impl(n.Sig.In)
	if !ok {
		return nil, notFound(n.Func.Name+"("+types.SetOf(n.Sig.In...).String()+")", n)
	}
	frags, err := g.args(n.Args)
	if err != nil {
		return nil, err
	}
	env, fn, in := g.env, n.Func, n.Sig.In
	return func(f *Frame) (types.Value, error) {
		vals := make([]types.Value, len(frags))
		widened := false
		for i, frag := range frags {
			v, err := frag(f)
			if err != nil {
				return types.Value{}, err
			}
			vals[i] = v
			widened = widened || v.Type != in[i]
		}
		if !widened {
			return impl(env, vals)
		}
		alt, ok := fn.Impl(ops.Widen(vals))
		if !ok {
			return types.Value{}, types.Errorf(types.ErrIntegerOverflow, "integer overflow in %s", fn.Name)
		}
		return alt(env, vals)
	}, nil
}

// conditional evaluates the condition and then only the selected branch.
func (g *Generator) conditional(n *ast.Call) (Fragment, error) {
	if len(n.Args) != 3 {
		return nil, types.Errorf(types.ErrInvariant, "%s takes 3 arguments", n.Func.Name).WithToken(ast.String(n))
	}
	frags, err := g.args(n.Args)
	if err != nil {
		return nil, err
	}
	cond, then, otherwise := frags[0], frags[1], frags[2]
	return func(f *Frame) (types.Value, error) {
		c, err := cond(f)
		if err != nil {
			return types.Value{}, err
		}
		if c.Bool {
			return then(f)
		}
		return otherwise(f)
	}, nil
}

func (g *Generator) conversion(n *ast.Conversion) (Fragment, error) {
	operand, err := g.Fragment(n.Operand)
	if err != nil {
		return nil, err
	}
	if n.From == n.To {
		return operand, nil
	}
	conv := ops.Converter(n.From, n.To)
	if conv == nil {
		return nil, notFound(n.From.String()+" to "+n.To.String(), n)
	}
	env, from, to := g.env, n.From, n.To
	return func(f *Frame) (types.Value, error) {
		v, err := operand(f)
		if err != nil {
			return types.Value{}, err
		}
		if v.Type != from {
			if v.Type == to {
				return v, nil
			}
			if c := ops.Converter(v.Type, to); c != nil {
				return c(env, v)
			}
			return types.Value{}, types.Errorf(types.ErrIntegerOverflow, "integer overflow converting to %s", to)
		}
		return conv(env, v)
	}, nil
}
