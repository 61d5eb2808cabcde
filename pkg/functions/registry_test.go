package functions

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goformula/pkg/ops"
	"github.com/sandrolain/goformula/pkg/types"
)

func call(t *testing.T, name string, args ...types.Value) (types.Value, error) {
	t.Helper()
	d, ok := Lookup(name)
	require.True(t, ok, "function %s", name)
	in := make([]types.ValueType, len(args))
	for i, a := range args {
		in[i] = a.Type
	}
	impl, ok := d.Impl(in)
	require.True(t, ok, "overload %s%v", name, in)
	return impl(ops.DefaultEnv(), args)
}

func TestRegistryConsistency(t *testing.T) {
	names := Names()
	require.NotEmpty(t, names)
	for _, name := range names {
		d, ok := Lookup(name)
		require.True(t, ok)
		assert.NotEmpty(t, d.Overloads, name)
		for _, o := range d.Overloads {
			assert.Len(t, o.In, d.Arity, "%s overload arity", name)
			assert.NotNil(t, o.Impl, name)
		}
	}
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	d, ok := Lookup("SqRt")
	require.True(t, ok)
	assert.Equal(t, "sqrt", d.Name)
	assert.Equal(t, ops.HintFloat, d.Hint)
	_, ok = Lookup("nosuch")
	assert.False(t, ok)
}

func TestMath(t *testing.T) {
	v, err := call(t, "sqrt", types.Float(16))
	require.NoError(t, err)
	assert.Equal(t, 4.0, v.Float)

	_, err = call(t, "sqrt", types.Float(-1))
	assert.Equal(t, types.ErrDomain, types.CodeOf(err))

	v, err = call(t, "max", types.Int(20), types.Int(13))
	require.NoError(t, err)
	assert.Equal(t, int64(20), v.Int)

	v, err = call(t, "min", types.Float(2.5), types.Float(-1))
	require.NoError(t, err)
	assert.Equal(t, -1.0, v.Float)

	v, err = call(t, "round", types.Float(2.5))
	require.NoError(t, err)
	assert.Equal(t, 3.0, v.Float)

	v, err = call(t, "abs", types.Int(math.MinInt64))
	require.NoError(t, err)
	assert.Equal(t, types.Float(9.223372036854775808e18), v)

	v, err = call(t, "clamp", types.Int(15), types.Int(0), types.Int(10))
	require.NoError(t, err)
	assert.Equal(t, int64(10), v.Int)

	v, err = call(t, "log", types.Float(8), types.Float(2))
	require.NoError(t, err)
	assert.InDelta(t, 3.0, v.Float, 1e-12)

	v, err = call(t, "sign", types.Float(-0.5))
	require.NoError(t, err)
	assert.Equal(t, int64(-1), v.Int)
}

func TestStrings(t *testing.T) {
	tests := []struct {
		name string
		fn   string
		args []types.Value
		want types.Value
	}{
		{"len counts runes", "len", []types.Value{types.Str("héllo")}, types.Int(5)},
		{"left clamps", "left", []types.Value{types.Str("abc"), types.Int(10)}, types.Str("abc")},
		{"right", "right", []types.Value{types.Str("abcdef"), types.Int(2)}, types.Str("ef")},
		{"substr", "substr", []types.Value{types.Str("abcdef"), types.Int(1), types.Int(3)}, types.Str("bcd")},
		{"substr past end", "substr", []types.Value{types.Str("abc"), types.Int(5), types.Int(3)}, types.Str("")},
		{"indexof", "indexof", []types.Value{types.Str("héllo"), types.Str("l")}, types.Int(2)},
		{"indexof missing", "indexof", []types.Value{types.Str("abc"), types.Str("z")}, types.Int(-1)},
		{"contains", "contains", []types.Value{types.Str("abc"), types.Str("b")}, types.Bool(true)},
		{"replace", "replace", []types.Value{types.Str("a-b-c"), types.Str("-"), types.Str("+")}, types.Str("a+b+c")},
		{"upper", "upper", []types.Value{types.Str("abc")}, types.Str("ABC")},
		{"hex bytes", "hex", []types.Value{types.Bytes([]byte{0xAB, 0x01})}, types.Str("AB01")},
		{"hex int", "hex", []types.Value{types.Int(255)}, types.Str("FF")},
		{"hex zero", "hex", []types.Value{types.Int(0)}, types.Str("0")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := call(t, tt.fn, tt.args...)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestConditional(t *testing.T) {
	d, ok := Lookup("if")
	require.True(t, ok)
	assert.Equal(t, KindConditional, d.Kind)
	assert.Equal(t, 3, d.Arity)
	v, err := call(t, "if", types.Bool(false), types.Str("a"), types.Str("b"))
	require.NoError(t, err)
	assert.Equal(t, "b", v.Str)
}

func TestConversions(t *testing.T) {
	d, ok := Lookup("int")
	require.True(t, ok)
	assert.Equal(t, KindConversion, d.Kind)
	assert.Equal(t, types.Integer, d.Target)
	for _, s := range d.Signatures() {
		assert.Equal(t, ops.ExplicitCost(s.In[0], types.Integer), s.Cost)
	}

	v, err := call(t, "int", types.Str("42"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Int)

	d, _ = Lookup("bytes")
	_, ok = d.Impl([]types.ValueType{types.Numeric})
	assert.False(t, ok, "numeric has no byte array conversion")
}
