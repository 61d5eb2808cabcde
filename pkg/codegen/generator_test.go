package codegen

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goformula/pkg/ast"
	"github.com/sandrolain/goformula/pkg/ops"
	"github.com/sandrolain/goformula/pkg/parser"
	"github.com/sandrolain/goformula/pkg/resolver"
	"github.com/sandrolain/goformula/pkg/types"
)

func program(t *testing.T, text string, env *ops.Env, funcParams ...string) *types.Expression {
	t.Helper()
	ctx, root, err := parser.Parse(text, parser.Config{FuncParams: funcParams})
	require.NoError(t, err)
	root, err = resolver.Resolve(ctx, root, resolver.Options{Env: env})
	require.NoError(t, err)
	expr, err := New(env).Program(ctx, root)
	require.NoError(t, err)
	return expr
}

func TestProgramResults(t *testing.T) {
	tests := []struct {
		input string
		args  []any
		want  any
	}{
		{"3+6", nil, int64(9)},
		{`"3"+6`, nil, "36"},
		{"2*x-7*y", []any{12, 2}, 10.0},
		{"sqrt(4)", nil, 2.0},
		{"(sqrt(16)+1)*4-max(20,13)", nil, 0.0},
		{"1<<1 + 2 << 1", nil, int64(6)},
		{"x and y", []any{true, false}, false},
		{"x or y", []any{false, true}, true},
		{"if(x > 0, \"pos\", \"neg\")", []any{-3}, "neg"},
		{"0xFF xor 0x0F", nil, int64(0xF0)},
		{"upper(s) + \"!\"", []any{"hi"}, "HI!"},
		{"7 \\ 2", nil, int64(3)},
		{"-2^2", nil, 4.0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := program(t, tt.input, nil).Invoke(tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTolerance(t *testing.T) {
	env := ops.DefaultEnv()
	env.Tolerance = types.Absolute(0.01)
	got, err := program(t, "-1.00<-1", env).Invoke()
	require.NoError(t, err)
	assert.Equal(t, false, got)

	got, err = program(t, "x = 1.005", env).Invoke(1)
	require.NoError(t, err)
	assert.Equal(t, true, got)
}

func TestShortCircuit(t *testing.T) {
	expr := program(t, "a and b", nil)
	calls := 0
	finder := types.DataFinderFunc(func(name string) (any, bool) {
		calls++
		if name == "a" {
			return false, true
		}
		return nil, false
	})
	got, err := expr.InvokeWith(finder)
	require.NoError(t, err)
	assert.Equal(t, false, got)
	assert.Equal(t, 1, calls, "b is never looked up")
}

func TestConditionalIsLazy(t *testing.T) {
	expr := program(t, "if(c, 1 / x, 0)", nil)
	got, err := expr.InvokeMap(map[string]any{"c": false})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	_, err = expr.InvokeMap(map[string]any{"c": true})
	require.Error(t, err)
	assert.Equal(t, types.ErrMissingParameter, types.CodeOf(err))
}

func TestThunkParameters(t *testing.T) {
	expr := program(t, "now + now", nil, "now")
	require.True(t, expr.ParameterInfo()[0].Func)

	n := 0
	got, err := expr.Invoke(func() any { n++; return n })
	require.NoError(t, err)
	assert.Equal(t, 3.0, got, "callable runs at every use")

	_, err = expr.Invoke(func() (any, error) { return nil, errors.New("boom") })
	assert.Equal(t, types.ErrThunk, types.CodeOf(err))

	_, err = expr.Invoke(5)
	assert.Equal(t, types.ErrThunk, types.CodeOf(err))
}

func TestIntegerOverflowWidens(t *testing.T) {
	tests := []struct {
		input string
		args  []any
		want  any
	}{
		{"x + 1", []any{int64(math.MaxInt64)}, 9.223372036854775808e18},
		{"x * 4 > 0", []any{int64(1) << 62}, true},
		{"-x", []any{int64(math.MinInt64)}, 9.223372036854775808e18},
		{"max(x * 4, 1)", []any{int64(1) << 62}, 1.8446744073709552e19},
		{"(x + 1) - x", []any{int64(math.MaxInt64)}, 0.0},
		{"x + 1", []any{int64(41)}, int64(42)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ctx, root, err := parser.Parse(tt.input, parser.Config{})
			require.NoError(t, err)
			root, err = resolver.Resolve(ctx, root, resolver.Options{Preference: ast.PreferInteger})
			require.NoError(t, err)
			expr, err := New(nil).Program(ctx, root)
			require.NoError(t, err)
			got, err := expr.Invoke(tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		input string
		args  []any
		code  types.ErrorCode
	}{
		{"x / y", []any{1, 0}, types.ErrDivisionByZero},
		{"x \\ y", []any{1, 0}, types.ErrDivisionByZero},
		{"x + 1", []any{"abc"}, types.ErrParameterType},
		{"x + 1", nil, types.ErrArgumentCount},
		{"(x * 2) << 1", []any{int64(1) << 62}, types.ErrIntegerOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ctx, root, err := parser.Parse(tt.input, parser.Config{})
			require.NoError(t, err)
			root, err = resolver.Resolve(ctx, root, resolver.Options{Preference: ast.PreferInteger})
			require.NoError(t, err)
			expr, err := New(nil).Program(ctx, root)
			require.NoError(t, err)
			_, err = expr.Invoke(tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, types.CodeOf(err), err.Error())
			assert.True(t, types.IsCategory(err, types.CategoryRuntime))
		})
	}
}

func TestMissingHelperIsEngineError(t *testing.T) {
	n := &ast.Binary{
		Op:    ops.OpPower,
		Left:  &ast.Constant{Value: types.Int(2)},
		Right: &ast.Constant{Value: types.Int(3)},
		Type:  types.Integer,
		Sig:   ops.Signature{In: []types.ValueType{types.Integer, types.Integer}, Out: types.Integer},
	}
	_, err := New(nil).Fragment(n)
	require.Error(t, err)
	assert.Equal(t, types.ErrFunctionNotFound, types.CodeOf(err))
	assert.True(t, types.IsCategory(err, types.CategoryEngine))
}

func TestConcurrentInvocations(t *testing.T) {
	expr := program(t, "x * y + x", nil)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				got, err := expr.Invoke(i, j)
				if assert.NoError(t, err) {
					assert.Equal(t, float64(i*j+i), got)
				}
			}
		}(i)
	}
	wg.Wait()
}
