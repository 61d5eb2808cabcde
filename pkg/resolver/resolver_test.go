package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goformula/pkg/ast"
	"github.com/sandrolain/goformula/pkg/parser"
	"github.com/sandrolain/goformula/pkg/types"
)

func resolve(t *testing.T, text string, opts Options) (*ast.Context, ast.Node, error) {
	t.Helper()
	ctx, root, err := parser.Parse(text, parser.Config{StringFallback: true})
	require.NoError(t, err, text)
	out, err := Resolve(ctx, root, opts)
	return ctx, out, err
}

func typed(n ast.Node) string {
	return (&ast.Printer{Types: true}).Print(n)
}

func TestResultTypes(t *testing.T) {
	tests := []struct {
		input string
		want  types.ValueType
	}{
		{"3+6", types.Integer},
		{`"3"+6`, types.String},
		{"2*x-7*y", types.Numeric},
		{"x and y", types.Boolean},
		{"sqrt(4)", types.Numeric},
		{"(sqrt(16)+1)*4-max(20,13)", types.Numeric},
		{"1<<1 + 2 << 1", types.Integer},
		{"7 / 2", types.Numeric},
		{"7 \\ 2", types.Integer},
		{"x > 1", types.Boolean},
		{"len(s) + 1", types.Integer},
		{`"a" + "b"`, types.String},
		{"0x0102030405060708090A << 8", types.ByteArray},
		{"if(c, 1, 2.5)", types.Numeric},
		{"int(x) \\ 2", types.Integer},
		{"String is wonderful", types.String},
		{"true", types.Boolean},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, root, err := resolve(t, tt.input, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ast.TypeOf(root), typed(root))
		})
	}
}

func TestParameterTypes(t *testing.T) {
	tests := []struct {
		input string
		opts  Options
		want  map[string]types.ValueType
	}{
		{"2*x-7*y", Options{}, map[string]types.ValueType{"x": types.Numeric, "y": types.Numeric}},
		{"2*x-7*y", Options{Preference: ast.PreferInteger}, map[string]types.ValueType{"x": types.Integer, "y": types.Integer}},
		{"x and y", Options{}, map[string]types.ValueType{"x": types.Boolean, "y": types.Boolean}},
		{"x << 2", Options{}, map[string]types.ValueType{"x": types.Integer}},
		{"x \\ y", Options{}, map[string]types.ValueType{"x": types.Integer, "y": types.Integer}},
		{"x / y", Options{Preference: ast.PreferInteger}, map[string]types.ValueType{"x": types.Numeric, "y": types.Numeric}},
		{"len(s) > n", Options{}, map[string]types.ValueType{"s": types.String, "n": types.Numeric}},
		{"not a or b", Options{}, map[string]types.ValueType{"a": types.Boolean, "b": types.Boolean}},
		{"if(c, x, 0)", Options{}, map[string]types.ValueType{"c": types.Boolean, "x": types.Numeric}},
		{`upper(s) + "!"`, Options{}, map[string]types.ValueType{"s": types.String}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ctx, root, err := resolve(t, tt.input, tt.opts)
			require.NoError(t, err)
			got := map[string]types.ValueType{}
			for _, p := range ctx.Params() {
				got[p.Name] = p.Type
			}
			assert.Equal(t, tt.want, got, typed(root))
		})
	}
}

func TestMaterializedTrees(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"3+6", "(3:integer + 6:integer):integer"},
		{`"3"+6`, `("3":string + "6":string):string`},
		{"sqrt(4)", "sqrt(4.0:numeric):numeric"},
		{"x+1", "(x:numeric + 1.0:numeric):numeric"},
		{"max(20,13)-x", "(implicit_numeric(max(20:integer, 13:integer):integer):numeric - x:numeric):numeric"},
		{`int("42")+1`, "(int(42:integer):integer + 1:integer):integer"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, root, err := resolve(t, tt.input, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, typed(root))
		})
	}
}

func TestForcedResultType(t *testing.T) {
	_, root, err := resolve(t, "1 + 2", Options{ResultType: types.Numeric})
	require.NoError(t, err)
	assert.Equal(t, types.Numeric, ast.TypeOf(root))

	_, root, err = resolve(t, "1 + 2", Options{ResultType: types.String})
	require.NoError(t, err)
	assert.Equal(t, types.String, ast.TypeOf(root))

	_, _, err = resolve(t, "1 + 2", Options{ResultType: types.Boolean})
	require.Error(t, err)
	assert.Equal(t, types.ErrNotLogicallyValid, types.CodeOf(err))
}

func TestLogicalErrors(t *testing.T) {
	tests := []struct {
		input string
		code  types.ErrorCode
	}{
		{`"a" - 1`, types.ErrNotLogicallyValid},
		{`"a" * true`, types.ErrNotLogicallyValid},
		{`"a" and 1`, types.ErrNotLogicallyValid},
		{"not 2.5", types.ErrNotLogicallyValid},
		{"sqrt(true)", types.ErrNotLogicallyValid},
		{"not x + (x << 1)", types.ErrParameterConflict},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, _, err := resolve(t, tt.input, Options{})
			require.Error(t, err)
			assert.Equal(t, tt.code, types.CodeOf(err), err.Error())
			assert.True(t, types.IsCategory(err, types.CategoryLogical))
		})
	}
}

func TestVerifiedTreeIsConsistent(t *testing.T) {
	for _, text := range []string{
		"(a+b)*(a+b)",
		"if(x > y, x, y) + 1",
		`left(s, n) + str(n)`,
		"~x xor 0xFF",
		"-x ^ 2",
	} {
		t.Run(text, func(t *testing.T) {
			_, root, err := resolve(t, text, Options{})
			require.NoError(t, err)
			assert.NoError(t, verify(root))
		})
	}
}
