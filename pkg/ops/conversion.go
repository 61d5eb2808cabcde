package ops

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/sandrolain/goformula/pkg/types"
)

// NoConversion marks a missing entry in a conversion matrix.
const NoConversion = -1

// ConvFn converts a value of one type into another at run time.
type ConvFn func(env *Env, v types.Value) (types.Value, error)

const (
	tInt   = types.Integer
	tNum   = types.Numeric
	tBool  = types.Boolean
	tBytes = types.ByteArray
	tStr   = types.String
)

// implicitCost is the cost of a conversion the resolver may insert on its
// own. Rows are the source type, columns the target type.
var implicitCost = [types.NumValueTypes][types.NumValueTypes]int{
	//     int           num           bool          bytes         str
	tInt:   {0, 1, NoConversion, NoConversion, 5},
	tNum:   {NoConversion, 0, NoConversion, NoConversion, 5},
	tBool:  {NoConversion, NoConversion, 0, NoConversion, 5},
	tBytes: {NoConversion, NoConversion, NoConversion, 0, 6},
	tStr:   {NoConversion, NoConversion, NoConversion, NoConversion, 0},
}

// explicitCost is the cost of a conversion requested by a conversion
// function (int, float, bool, bytes, str).
var explicitCost = [types.NumValueTypes][types.NumValueTypes]int{
	//     int num bool bytes str
	tInt:   {0, 1, 2, 2, 5},
	tNum:   {2, 0, 2, NoConversion, 5},
	tBool:  {1, 1, 0, NoConversion, 5},
	tBytes: {3, NoConversion, NoConversion, 0, 6},
	tStr:   {10, 10, 10, 4, 0},
}

// ImplicitCost returns the cost of an implicit conversion, or NoConversion.
func ImplicitCost(from, to types.ValueType) int {
	if !from.Valid() || !to.Valid() {
		return NoConversion
	}
	return implicitCost[from][to]
}

// ExplicitCost returns the cost of an explicit conversion, or NoConversion.
func ExplicitCost(from, to types.ValueType) int {
	if !from.Valid() || !to.Valid() {
		return NoConversion
	}
	return explicitCost[from][to]
}

// ImplicitSources returns the types that implicitly convert into any
// member of targets, targets included.
func ImplicitSources(targets types.TypeSet) types.TypeSet {
	var out types.TypeSet
	for from := types.ValueType(0); from < types.NumValueTypes; from++ {
		for _, to := range targets.Types() {
			if implicitCost[from][to] != NoConversion {
				out = out.With(from)
				break
			}
		}
	}
	return out
}

// ImplicitTargets returns the types reachable from any member of sources.
func ImplicitTargets(sources types.TypeSet) types.TypeSet {
	var out types.TypeSet
	for _, from := range sources.Types() {
		for to := types.ValueType(0); to < types.NumValueTypes; to++ {
			if implicitCost[from][to] != NoConversion {
				out = out.With(to)
			}
		}
	}
	return out
}

// ExplicitSources returns the types that explicitly convert into to.
func ExplicitSources(to types.ValueType) types.TypeSet {
	var out types.TypeSet
	for from := types.ValueType(0); from < types.NumValueTypes; from++ {
		if ExplicitCost(from, to) != NoConversion {
			out = out.With(from)
		}
	}
	return out
}

// Converter returns the runtime helper converting from into to, or nil when
// no helper exists.
func Converter(from, to types.ValueType) ConvFn {
	if !from.Valid() || !to.Valid() {
		return nil
	}
	if from == to {
		return identity
	}
	if to == types.String {
		return toString
	}
	switch from {
	case types.Integer:
		switch to {
		case types.Numeric:
			return intToFloat
		case types.Boolean:
			return intToBool
		case types.ByteArray:
			return intToBytes
		}
	case types.Numeric:
		switch to {
		case types.Integer:
			return floatToInt
		case types.Boolean:
			return floatToBool
		}
	case types.Boolean:
		switch to {
		case types.Integer:
			return boolToInt
		case types.Numeric:
			return boolToFloat
		}
	case types.ByteArray:
		if to == types.Integer {
			return bytesToInt
		}
	case types.String:
		switch to {
		case types.Integer:
			return stringToInt
		case types.Numeric:
			return stringToFloat
		case types.Boolean:
			return stringToBool
		case types.ByteArray:
			return stringToBytes
		}
	}
	return nil
}

func identity(_ *Env, v types.Value) (types.Value, error) { return v, nil }

func toString(env *Env, v types.Value) (types.Value, error) {
	return types.Str(env.FormatValue(v)), nil
}

func intToFloat(_ *Env, v types.Value) (types.Value, error) {
	return types.Float(float64(v.Int)), nil
}

func intToBool(_ *Env, v types.Value) (types.Value, error) {
	return types.Bool(v.Int != 0), nil
}

func intToBytes(_ *Env, v types.Value) (types.Value, error) {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v.Int))
	return types.Bytes(b), nil
}

func floatToInt(_ *Env, v types.Value) (types.Value, error) {
	n, err := FloatToInt(v.Float)
	if err != nil {
		return types.Value{}, err
	}
	return types.Int(n), nil
}

func floatToBool(_ *Env, v types.Value) (types.Value, error) {
	return types.Bool(v.Float != 0), nil
}

func boolToInt(_ *Env, v types.Value) (types.Value, error) {
	if v.Bool {
		return types.Int(1), nil
	}
	return types.Int(0), nil
}

func boolToFloat(_ *Env, v types.Value) (types.Value, error) {
	if v.Bool {
		return types.Float(1), nil
	}
	return types.Float(0), nil
}

func bytesToInt(_ *Env, v types.Value) (types.Value, error) {
	if len(v.Bytes) > 8 {
		return types.Value{}, types.Errorf(types.ErrInvalidConversion, "byte array of length %d does not fit an integer", len(v.Bytes))
	}
	var buf [8]byte
	copy(buf[8-len(v.Bytes):], v.Bytes)
	return types.Int(int64(binary.BigEndian.Uint64(buf[:]))), nil
}

func stringToInt(_ *Env, v types.Value) (types.Value, error) {
	n, ok := ParseIntString(v.Str)
	if !ok {
		return types.Value{}, types.Errorf(types.ErrInvalidConversion, "cannot convert %q to integer", v.Str)
	}
	return types.Int(n), nil
}

func stringToFloat(_ *Env, v types.Value) (types.Value, error) {
	f, ok := ParseFloatString(v.Str)
	if !ok {
		return types.Value{}, types.Errorf(types.ErrInvalidConversion, "cannot convert %q to numeric", v.Str)
	}
	return types.Float(f), nil
}

func stringToBool(env *Env, v types.Value) (types.Value, error) {
	b, ok := env.ParseBoolString(v.Str)
	if !ok {
		return types.Value{}, types.Errorf(types.ErrInvalidConversion, "cannot convert %q to boolean", v.Str)
	}
	return types.Bool(b), nil
}

func stringToBytes(_ *Env, v types.Value) (types.Value, error) {
	return types.Bytes([]byte(v.Str)), nil
}

// FloatToInt truncates f toward zero, failing for NaN, infinities and
// values outside the int64 range.
func FloatToInt(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= 9.223372036854775807e18 || f < -9.223372036854775808e18 {
		return 0, types.Errorf(types.ErrInvalidConversion, "numeric value %s does not fit an integer", FormatFloat(f))
	}
	return int64(f), nil
}

// ParseIntString parses a decimal integer, also accepting whole-valued
// decimal fractions such as "3.0".
func ParseIntString(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	n, err := FloatToInt(f)
	return n, err == nil
}

// ParseFloatString parses a decimal floating point number.
func ParseFloatString(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

// ParseBoolString parses the configured boolean words, case-insensitively.
func (e *Env) ParseBoolString(s string) (bool, bool) {
	s = strings.TrimSpace(s)
	t, f := "true", "false"
	if e != nil && e.TrueWord != "" {
		t = e.TrueWord
	}
	if e != nil && e.FalseWord != "" {
		f = e.FalseWord
	}
	switch {
	case strings.EqualFold(s, t), strings.EqualFold(s, "true"):
		return true, true
	case strings.EqualFold(s, f), strings.EqualFold(s, "false"):
		return false, true
	}
	return false, false
}
