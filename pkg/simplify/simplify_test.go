package simplify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goformula/pkg/ast"
	"github.com/sandrolain/goformula/pkg/codegen"
	"github.com/sandrolain/goformula/pkg/parser"
	"github.com/sandrolain/goformula/pkg/resolver"
	"github.com/sandrolain/goformula/pkg/types"
)

func typedTree(t *testing.T, text string) ast.Node {
	t.Helper()
	ctx, root, err := parser.Parse(text, parser.Config{})
	require.NoError(t, err)
	root, err = resolver.Resolve(ctx, root, resolver.Options{})
	require.NoError(t, err)
	return root
}

func TestFolding(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"3+6", "9"},
		{"(sqrt(16)+1)*4-max(20,13)", "0.0"},
		{"2*x+3*4", "((2.0 * x) + 12.0)"},
		{`"3"+6`, `"36"`},
		{"x + (1 < 2)", `(x + "true")`},
		{"if(true, 1, 2) + x", "(1.0 + x)"},
		{"x / 0", "(x / 0.0)"},
		{"1 / 0", "(1.0 / 0.0)"},
		{"5 \\ 0", "(5 \\ 0)"},
	}
	gen := codegen.New(nil)
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			root := Simplify(gen, typedTree(t, tt.input))
			assert.Equal(t, tt.want, ast.String(root))
		})
	}
}

func TestFoldedConstantKeepsText(t *testing.T) {
	root := Simplify(codegen.New(nil), typedTree(t, "3+6"))
	c, ok := root.(*ast.Constant)
	require.True(t, ok)
	assert.Empty(t, c.Name)
	assert.Equal(t, "(3 + 6)", c.Text)
	assert.True(t, types.Int(9).Equal(c.Value))
}

func TestIdempotent(t *testing.T) {
	gen := codegen.New(nil)
	for _, text := range []string{"2*x+3*4", "1 / 0 + x", "max(1, 2) * y - len(\"abc\")"} {
		t.Run(text, func(t *testing.T) {
			s := New(gen)
			once := s.Simplify(typedTree(t, text))
			first := ast.String(once)
			twice := s.Simplify(once)
			assert.Equal(t, first, ast.String(twice))
			assert.Zero(t, s.Folded())
		})
	}
}
