package codegen

import (
	"sync"

	"github.com/sandrolain/goformula/pkg/ast"
	"github.com/sandrolain/goformula/pkg/ops"
	"github.com/sandrolain/goformula/pkg/types"
)

// Frame is the per-invocation state of generated code: the binder that
// supplies raw arguments and the parameter values converted so far.
//
// THREAD-SAFETY AUDIT: a Frame is owned by exactly one invocation between
// acquireFrame and releaseFrame and is never shared between goroutines.
type Frame struct {
	env    *ops.Env
	binder types.Binder
	values []types.Value
	bound  []bool
}

// framePool recycles frames across invocations of every expression.
//
// THREAD-SAFETY AUDIT: safe.
//   - sync.Pool is designed for concurrent use.
//   - Frames are reset by acquireFrame before use, so no value bound by a
//     previous owner is visible.
var framePool = sync.Pool{
	New: func() any { return new(Frame) },
}

// maxPooledSlots bounds the frames kept by the pool.
const maxPooledSlots = 256

func acquireFrame(env *ops.Env, binder types.Binder, slots int) *Frame {
	f := framePool.Get().(*Frame)
	f.env = env
	f.binder = binder
	if cap(f.values) < slots {
		f.values = make([]types.Value, slots)
		f.bound = make([]bool, slots)
	} else {
		f.values = f.values[:slots]
		f.bound = f.bound[:slots]
		clear(f.bound)
	}
	return f
}

func releaseFrame(f *Frame) {
	if cap(f.values) > maxPooledSlots {
		return
	}
	clear(f.values)
	f.env = nil
	f.binder = nil
	framePool.Put(f)
}

// param returns the value of p, asking the binder on first use. Deferred
// parameters are re-invoked on every use.
func (f *Frame) param(p *ast.Param) (types.Value, error) {
	slot := p.Ordinal
	if !p.IsFunc && slot < len(f.bound) && f.bound[slot] {
		return f.values[slot], nil
	}
	if f.binder == nil {
		return types.Value{}, types.Errorf(types.ErrMissingParameter, "no argument supplied for parameter %q", p.Name)
	}
	raw, err := f.binder.Bind(slot, p.Name)
	if err != nil {
		return types.Value{}, err
	}
	if p.IsFunc {
		if raw, err = callThunk(p, raw); err != nil {
			return types.Value{}, err
		}
	}
	v, err := ops.FromHost(f.env, raw, p.Type)
	if err != nil {
		if te, ok := types.AsError(err); ok && te.Token == "" {
			te.WithToken(p.Name)
		}
		return types.Value{}, err
	}
	if !p.IsFunc && slot < len(f.bound) {
		f.values[slot] = v
		f.bound[slot] = true
	}
	return v, nil
}

func callThunk(p *ast.Param, raw any) (any, error) {
	switch fn := raw.(type) {
	case func() any:
		return fn(), nil
	case func() (any, error):
		v, err := fn()
		if err != nil {
			return nil, types.Errorf(types.ErrThunk, "parameter %q callable failed", p.Name).WithCause(err)
		}
		return v, nil
	}
	return nil, types.Errorf(types.ErrThunk, "parameter %q expects a zero-argument callable, got %T", p.Name, raw).
		WithToken(p.Name)
}
