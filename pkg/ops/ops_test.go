package ops

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goformula/pkg/types"
)

func TestEverySignatureHasHelper(t *testing.T) {
	for _, op := range All() {
		for _, s := range Signatures(op) {
			if op.IsUnary() {
				_, ok := LookupUnary(op, s.In[0])
				assert.True(t, ok, "missing unary helper %s(%s)", op, s.In[0])
				continue
			}
			_, ok := LookupBinary(op, s.In[0], s.In[1])
			assert.True(t, ok, "missing binary helper %s(%s,%s)", op, s.In[0], s.In[1])
		}
	}
}

func TestTiers(t *testing.T) {
	assert.Less(t, OpEqual.Tier(), OpOr.Tier())
	assert.Less(t, OpOr.Tier(), OpXor.Tier())
	assert.Less(t, OpXor.Tier(), OpAnd.Tier())
	assert.Less(t, OpAnd.Tier(), OpAdd.Tier())
	assert.Less(t, OpAdd.Tier(), OpMultiply.Tier())
	assert.Less(t, OpMultiply.Tier(), OpPower.Tier())
	assert.Less(t, OpPower.Tier(), OpShiftLeft.Tier())
	assert.Less(t, OpShiftLeft.Tier(), OpNegate.Tier())
}

func TestByName(t *testing.T) {
	op, ok := ByName("shift_left")
	require.True(t, ok)
	assert.Equal(t, OpShiftLeft, op)
	_, ok = ByName("nope")
	assert.False(t, ok)
}

func TestImplicitMatrix(t *testing.T) {
	assert.Equal(t, 0, ImplicitCost(types.Integer, types.Integer))
	assert.Equal(t, 1, ImplicitCost(types.Integer, types.Numeric))
	assert.Equal(t, NoConversion, ImplicitCost(types.Numeric, types.Integer))
	assert.Equal(t, NoConversion, ImplicitCost(types.String, types.Numeric))
	assert.Less(t, ImplicitCost(types.Integer, types.Numeric), ImplicitCost(types.Integer, types.String))

	src := ImplicitSources(types.SetOf(types.Numeric))
	assert.Equal(t, types.SetOf(types.Integer, types.Numeric), src)
	assert.Equal(t, types.AllTypes, ImplicitSources(types.SetOf(types.String)))
}

func TestIntegerOverflowWidens(t *testing.T) {
	tests := []struct {
		name string
		op   Op
		a, b int64
		want types.Value
	}{
		{"add", OpAdd, math.MaxInt64, 1, types.Float(9.223372036854775808e18)},
		{"subtract", OpSubtract, math.MinInt64, 1, types.Float(-9.223372036854775808e18)},
		{"multiply", OpMultiply, 1 << 62, 4, types.Float(1.8446744073709552e19)},
		{"multiply min", OpMultiply, math.MinInt64, -1, types.Float(9.223372036854775808e18)},
		{"int divide", OpIntDivide, math.MinInt64, -1, types.Float(9.223372036854775808e18)},
		{"in range", OpMultiply, 1 << 31, 1 << 31, types.Int(1 << 62)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, ok := LookupBinary(tt.op, types.Integer, types.Integer)
			require.True(t, ok)
			v, err := fn(nil, types.Int(tt.a), types.Int(tt.b))
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}

	neg, ok := LookupUnary(OpNegate, types.Integer)
	require.True(t, ok)
	v, err := neg(nil, types.Int(math.MinInt64))
	require.NoError(t, err)
	assert.Equal(t, types.Float(9.223372036854775808e18), v)
}

func TestPromote(t *testing.T) {
	wide := types.Float(9.223372036854775808e18)

	v, err := PromoteBinary(nil, OpLess, types.Int(0), wide)
	require.NoError(t, err)
	assert.Equal(t, types.Bool(true), v)

	v, err = PromoteBinary(nil, OpAdd, wide, types.Int(1))
	require.NoError(t, err)
	assert.Equal(t, types.Numeric, v.Type)

	v, err = PromoteUnary(nil, OpNegate, wide)
	require.NoError(t, err)
	assert.Equal(t, types.Float(-9.223372036854775808e18), v)

	_, err = PromoteBinary(nil, OpShiftLeft, wide, types.Int(1))
	assert.Equal(t, types.ErrIntegerOverflow, types.CodeOf(err))
	_, err2 := PromoteUnary(nil, OpInvert, wide)
	assert.Equal(t, types.ErrIntegerOverflow, types.CodeOf(err2))

	// each failure carries its own error value
	var e1, e2 *types.Error
	require.True(t, errors.As(err, &e1))
	require.True(t, errors.As(err2, &e2))
	assert.NotSame(t, e1, e2)

	args := []types.Value{types.Int(2), types.Str("a"), wide}
	assert.Equal(t, []types.ValueType{types.Numeric, types.String, types.Numeric}, Widen(args))
	assert.Equal(t, types.Float(2), args[0])
}

func TestIntegerDivisionByZero(t *testing.T) {
	fn, ok := LookupBinary(OpIntDivide, types.Integer, types.Integer)
	require.True(t, ok)
	_, err := fn(nil, types.Int(5), types.Int(0))
	assert.Equal(t, types.ErrDivisionByZero, types.CodeOf(err))
	assert.True(t, types.IsCategory(err, types.CategoryRuntime))
}

func TestTolerantComparison(t *testing.T) {
	less, _ := LookupBinary(OpLess, types.Numeric, types.Numeric)
	eq, _ := LookupBinary(OpEqual, types.Numeric, types.Numeric)

	exact := DefaultEnv()
	v, _ := less(exact, types.Float(-1.001), types.Float(-1))
	assert.True(t, v.Bool)

	tolerant := &Env{Tolerance: types.Absolute(0.01)}
	v, _ = less(tolerant, types.Float(-1.001), types.Float(-1))
	assert.False(t, v.Bool, "tolerant-equal values are not less")
	v, _ = eq(tolerant, types.Float(-1.001), types.Float(-1))
	assert.True(t, v.Bool)

	pct := &Env{Tolerance: types.Proportional(1)}
	v, _ = eq(pct, types.Float(100), types.Float(100.9))
	assert.True(t, v.Bool)
	v, _ = eq(pct, types.Float(100), types.Float(102))
	assert.False(t, v.Bool)

	ieq, _ := LookupBinary(OpEqual, types.Integer, types.Integer)
	rng := &Env{Tolerance: types.IntegerRange(2)}
	v, _ = ieq(rng, types.Int(10), types.Int(12))
	assert.True(t, v.Bool)
	v, _ = ieq(rng, types.Int(10), types.Int(13))
	assert.False(t, v.Bool)
}

func TestNaNComparisons(t *testing.T) {
	nan := types.Float(math.NaN())
	for _, op := range []Op{OpEqual, OpLess, OpGreater, OpLessEqual, OpGreaterEqual} {
		fn, _ := LookupBinary(op, types.Numeric, types.Numeric)
		v, _ := fn(nil, nan, types.Float(1))
		assert.False(t, v.Bool, op.String())
	}
	ne, _ := LookupBinary(OpNotEqual, types.Numeric, types.Numeric)
	v, _ := ne(nil, nan, nan)
	assert.True(t, v.Bool)
}

func TestShiftBytes(t *testing.T) {
	assert.Equal(t, []byte{0x02, 0x00}, ShiftBytes([]byte{0x01, 0x00}, 1))
	assert.Equal(t, []byte{0x01, 0x00}, ShiftBytes([]byte{0x00, 0x80}, 1))
	assert.Equal(t, []byte{0x00, 0x80}, ShiftBytes([]byte{0x01, 0x00}, -1))
	assert.Equal(t, []byte{0x34, 0x00}, ShiftBytes([]byte{0x12, 0x34}, 8))
	assert.Equal(t, []byte{0x00, 0x00}, ShiftBytes([]byte{0x12, 0x34}, 16))
	assert.Equal(t, []byte{0xFF, 0xFF}, BitwiseBytes([]byte{0xFF, 0xF0}, []byte{0x0F}, func(x, y byte) byte { return x ^ y }))
}

func TestShiftInt(t *testing.T) {
	assert.Equal(t, int64(8), ShiftInt(1, 3))
	assert.Equal(t, int64(1), ShiftInt(8, -3))
	assert.Equal(t, int64(0), ShiftInt(1, 64))
	assert.Equal(t, int64(-1), ShiftInt(-8, -100))
}

func TestConverters(t *testing.T) {
	env := DefaultEnv()
	v, err := Converter(types.Numeric, types.Integer)(env, types.Float(-3.9))
	require.NoError(t, err)
	assert.Equal(t, int64(-3), v.Int)

	_, err = Converter(types.Numeric, types.Integer)(env, types.Float(math.Inf(1)))
	assert.Equal(t, types.ErrInvalidConversion, types.CodeOf(err))

	v, err = Converter(types.String, types.Integer)(env, types.Str(" 42 "))
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Int)

	v, err = Converter(types.ByteArray, types.String)(env, types.Bytes([]byte{0xAB, 0x01}))
	require.NoError(t, err)
	assert.Equal(t, "0xAB01", v.Str)

	v, err = Converter(types.Integer, types.ByteArray)(env, types.Int(258))
	require.NoError(t, err)
	back, err := Converter(types.ByteArray, types.Integer)(env, v)
	require.NoError(t, err)
	assert.Equal(t, int64(258), back.Int)

	assert.Nil(t, Converter(types.Numeric, types.ByteArray))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "3.5", FormatFloat(3.5))
	assert.Equal(t, "2", FormatFloat(2))
	assert.Equal(t, "1e+21", FormatFloat(1e21))
	assert.Equal(t, "Infinity", FormatFloat(math.Inf(1)))
}

func TestFromHost(t *testing.T) {
	env := DefaultEnv()
	tests := []struct {
		name    string
		raw     any
		typ     types.ValueType
		want    types.Value
		wantErr bool
	}{
		{"int to integer", 12, types.Integer, types.Int(12), false},
		{"whole float to integer", 3.0, types.Integer, types.Int(3), false},
		{"fraction to integer", 3.5, types.Integer, types.Value{}, true},
		{"int to numeric", int32(2), types.Numeric, types.Float(2), false},
		{"numeric string", "2.5", types.Numeric, types.Float(2.5), false},
		{"bool word", "TRUE", types.Boolean, types.Bool(true), false},
		{"number to string", 7, types.String, types.Str("7"), false},
		{"bool to numeric", true, types.Numeric, types.Value{}, true},
		{"bytes", []byte{1}, types.ByteArray, types.Bytes([]byte{1}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromHost(env, tt.raw, tt.typ)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, types.ErrParameterType, types.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}
}
