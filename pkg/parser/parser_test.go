package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goformula/pkg/ast"
	"github.com/sandrolain/goformula/pkg/functions"
	"github.com/sandrolain/goformula/pkg/symbols"
	"github.com/sandrolain/goformula/pkg/types"
)

func parse(t *testing.T, text string) (*ast.Context, ast.Node) {
	t.Helper()
	ctx, root, err := Parse(text, Config{StringFallback: true})
	require.NoError(t, err, text)
	return ctx, root
}

func TestParseTrees(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"3+6", "(3 + 6)"},
		{"3+6-2*4", "((3 + 6) - (2 * 4))"},
		{"3+(6-2)*2", "(3 + ((6 - 2) * 2))"},
		{"1<<1 + 2 << 1", "((1 << 1) + (2 << 1))"},
		{"-2^2", "((-2) ^ 2)"},
		{"2*-3", "(2 * (-3))"},
		{"a < b and c", "(a < (b & c))"},
		{"not x or y", "((!x) | y)"},
		{"x xor y and z", "(x xor (y & z))"},
		{"2 mod 3", "(2 % 3)"},
		{"7 \\ 2", "(7 \\ 2)"},
		{"2**3", "(2 ^ 3)"},
		{"a<=b", "(a <= b)"},
		{"a<>b", "(a <> b)"},
		{"a!=b", "(a <> b)"},
		{"(sqrt(16)+1)*4-max(20,13)", "(((sqrt(16) + 1) * 4) - max(20, 13))"},
		{`"3"+6`, `("3" + 6)`},
		{`"say ""hi"""`, `"say \"hi\""`},
		{"0x1e+5", "(30 + 5)"},
		{"1e-5*2", "(0.00001 * 2)"},
		{"&hFF", "255"},
		{"x&hFF", "(x & hFF)"},
		{"0b1010_1010", "170"},
		{"[pi]*2", "(3.141592653589793 * 2)"},
		{"[ Tau ]", "6.283185307179586"},
		{`int("42")+1`, `(int("42") + 1)`},
		{`if(x>1, "a", "b")`, `if((x > 1), "a", "b")`},
		{"MAX(a, b)", "max(a, b)"},
		{"((a))", "a"},
		{"true and FALSE", "(true & false)"},
		{"String is wonderful", `"String is wonderful"`},
		{"  3  ", "3"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, root := parse(t, tt.input)
			assert.Equal(t, tt.want, ast.String(root))
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		code  types.ErrorCode
	}{
		{"", types.ErrEmptyExpression},
		{"   ", types.ErrEmptyExpression},
		{"(1+2", types.ErrUnbalancedParens},
		{"1+2)", types.ErrUnbalancedParens},
		{"max(1,2", types.ErrUnbalancedParens},
		{`"abc`, types.ErrStringNotClosed},
		{"()", types.ErrEmptyGroup},
		{"max(1,)", types.ErrEmptyGroup},
		{"1,2", types.ErrMisplacedSep},
		{"(1,2)+3", types.ErrMisplacedSep},
		{"foo(1)", types.ErrUnknownFunction},
		{"max(1)", types.ErrArityMismatch},
		{"sqrt()", types.ErrArityMismatch},
		{"[nope]", types.ErrUnknownConstant},
		{"[pi", types.ErrSyntax},
		{"pi]", types.ErrSyntax},
		{"x y+1", types.ErrSyntax},
		{"1+", types.ErrSyntax},
		{"*2", types.ErrSyntax},
		{"2(3)", types.ErrSyntax},
		{"1#2", types.ErrSyntax},
		{"12abc", types.ErrInvalidLiteral},
		{"0x_1", types.ErrInvalidLiteral},
		{"0b102", types.ErrInvalidLiteral},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, _, err := Parse(tt.input, Config{StringFallback: true})
			require.Error(t, err)
			assert.Equal(t, tt.code, types.CodeOf(err), err.Error())
			assert.True(t, types.IsCategory(err, types.CategoryStructural))
		})
	}
}

func TestParameterRegistry(t *testing.T) {
	ctx, _ := parse(t, "2*x-7*y+X")
	params := ctx.Params()
	require.Len(t, params, 2)
	assert.Equal(t, "x", params[0].Name)
	assert.Equal(t, 0, params[0].Ordinal)
	assert.Equal(t, "y", params[1].Name)
	assert.Equal(t, 1, params[1].Ordinal)
}

func TestRepeatedGroupsAreCloned(t *testing.T) {
	ctx, root := parse(t, "(a+b)*(a+b)")
	bin, ok := root.(*ast.Binary)
	require.True(t, ok)
	assert.NotSame(t, bin.Left, bin.Right)
	assert.Equal(t, ast.String(bin.Left), ast.String(bin.Right))
	assert.Len(t, ctx.Params(), 2)

	groups := 0
	for _, e := range ctx.Entries() {
		if e.Text == "a+b" {
			groups++
		}
	}
	assert.Equal(t, 1, groups, "identical groups share one entry")
}

func TestSymbolTable(t *testing.T) {
	ctx, _ := parse(t, `max("a", x)`)
	var str, call *ast.Entry
	for _, e := range ctx.Entries() {
		switch {
		case e.IsStringLiteral:
			str = e
		case e.IsFunctionCall:
			call = e
		}
	}
	require.NotNil(t, str)
	require.NotNil(t, call)
	assert.Equal(t, "a", str.Text)
	assert.Equal(t, "max", call.Func)
	assert.Len(t, call.Args, 2)
	for _, a := range call.Args {
		assert.Less(t, a, call.Index, "entries only reference earlier entries")
	}
}

func TestCustomSymbols(t *testing.T) {
	cfg, err := symbols.Parse([]byte(`
string_indicator: "'"
separator: ";"
operators:
  and: ["&&", "also"]
`))
	require.NoError(t, err)
	_, root, err := Parse("max(1;2) also 'it''s'", Config{Symbols: cfg})
	require.NoError(t, err)
	p := &ast.Printer{Symbols: cfg}
	assert.Equal(t, `(max(1, 2) && "it's")`, p.Print(root))
}

func TestPlugins(t *testing.T) {
	today := functions.ConstantExtractorFunc(func(text string, _ *symbols.Config) (types.Value, int, int, bool) {
		const tag = "#today#"
		for i := 0; i+len(tag) <= len(text); i++ {
			if text[i:i+len(tag)] == tag {
				return types.Str("2024-01-02"), i, len(tag), true
			}
		}
		return types.Value{}, 0, 0, false
	})
	answer := functions.ConstantInterpreterFunc(func(tok string) (types.Value, bool) {
		if tok == "answer" {
			return types.Int(42), true
		}
		return types.Value{}, false
	})
	cfg := Config{
		Extractors:   []functions.ConstantExtractor{today},
		Interpreters: []functions.ConstantInterpreter{answer},
	}
	_, root, err := Parse(`#today# + "#today#" + answer + [answer]`, cfg)
	require.NoError(t, err)
	assert.Equal(t, `((("2024-01-02" + "#today#") + 42) + 42)`, ast.String(root))
}

func TestFuncParams(t *testing.T) {
	ctx, _, err := Parse("now + 1", Config{FuncParams: []string{"NOW"}})
	require.NoError(t, err)
	require.Len(t, ctx.Params(), 1)
	assert.True(t, ctx.Params()[0].IsFunc)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "x+1", Normalize("  x + 1 ", nil))
	assert.Equal(t, `"a  b"+x`, Normalize(`"a  b" + x`, nil))
	assert.Equal(t, "x and y", Normalize("x   and\ty", nil))
	assert.Equal(t, Normalize("a*(b + c)", nil), Normalize("a * (b+c)", nil))
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		tok  string
		want types.Value
	}{
		{"42", types.Int(42)},
		{"9223372036854775808", types.Float(9223372036854775808)},
		{"1.5", types.Float(1.5)},
		{".5", types.Float(0.5)},
		{"2e3", types.Float(2000)},
		{"0xFF", types.Int(255)},
		{"0XFF_FF", types.Int(65535)},
		{"&h10", types.Int(16)},
		{"0xFFFFFFFFFFFFFFFF", types.Int(-1)},
		{"0x0102030405060708090A", types.Bytes([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})},
		{"0b1_0000_0001", types.Int(257)},
	}
	for _, tt := range tests {
		t.Run(tt.tok, func(t *testing.T) {
			v, ok, err := ParseNumber(tt.tok)
			require.NoError(t, err)
			require.True(t, ok)
			assert.True(t, tt.want.Equal(v), "got %s want %s", v, tt.want)
		})
	}

	_, ok, err := ParseNumber("abc")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestLexer(t *testing.T) {
	toks, err := NewLexer("a<=-1.5e-3 and b", symbols.Default()).Tokens()
	require.NoError(t, err)
	require.Len(t, toks, 6)
	assert.Equal(t, "a", toks[0].Value)
	assert.Equal(t, "<=", toks[1].Value)
	assert.Equal(t, "-", toks[2].Value)
	assert.Equal(t, "1.5e-3", toks[3].Value)
	assert.Equal(t, TokenOperator, toks[4].Type)
	assert.Equal(t, "b", toks[5].Value)
}
