package ops

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/sandrolain/goformula/pkg/types"
)

// FromHost converts a value supplied by the caller into a Value of type t.
// Integers, floats, booleans, strings, byte slices, json.Number and Value
// itself are accepted; anything else is a parameter type error.
func FromHost(env *Env, raw any, t types.ValueType) (types.Value, error) {
	if v, ok := raw.(types.Value); ok {
		if v.Type == t {
			return v, nil
		}
		if conv := Converter(v.Type, t); conv != nil && ExplicitCost(v.Type, t) != NoConversion {
			return conv(env, v)
		}
		return types.Value{}, mismatch(raw, t)
	}
	switch t {
	case types.Integer:
		return hostInt(raw)
	case types.Numeric:
		return hostFloat(raw)
	case types.Boolean:
		return hostBool(env, raw)
	case types.ByteArray:
		switch v := raw.(type) {
		case []byte:
			return types.Bytes(v), nil
		case string:
			return types.Bytes([]byte(v)), nil
		}
	case types.String:
		switch v := raw.(type) {
		case string:
			return types.Str(v), nil
		case []byte:
			return types.Str(string(v)), nil
		case fmt.Stringer:
			return types.Str(v.String()), nil
		}
		for _, src := range []types.ValueType{types.Integer, types.Numeric, types.Boolean} {
			if v, err := FromHost(env, raw, src); err == nil {
				return types.Str(env.FormatValue(v)), nil
			}
		}
	}
	return types.Value{}, mismatch(raw, t)
}

func mismatch(raw any, t types.ValueType) *types.Error {
	return types.Errorf(types.ErrParameterType, "cannot use %v (%T) as %s", raw, raw, t)
}

func hostInt(raw any) (types.Value, error) {
	switch v := raw.(type) {
	case int:
		return types.Int(int64(v)), nil
	case int8:
		return types.Int(int64(v)), nil
	case int16:
		return types.Int(int64(v)), nil
	case int32:
		return types.Int(int64(v)), nil
	case int64:
		return types.Int(v), nil
	case uint8:
		return types.Int(int64(v)), nil
	case uint16:
		return types.Int(int64(v)), nil
	case uint32:
		return types.Int(int64(v)), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			break
		}
		return types.Int(int64(v)), nil
	case uint64:
		if v > math.MaxInt64 {
			break
		}
		return types.Int(int64(v)), nil
	case float32:
		return wholeFloat(float64(v), raw)
	case float64:
		return wholeFloat(v, raw)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return types.Int(n), nil
		}
		if f, err := v.Float64(); err == nil {
			return wholeFloat(f, raw)
		}
	case string:
		if n, ok := ParseIntString(v); ok {
			return types.Int(n), nil
		}
	}
	return types.Value{}, mismatch(raw, types.Integer)
}

func wholeFloat(f float64, raw any) (types.Value, error) {
	if f != math.Trunc(f) {
		return types.Value{}, mismatch(raw, types.Integer)
	}
	n, err := FloatToInt(f)
	if err != nil {
		return types.Value{}, mismatch(raw, types.Integer)
	}
	return types.Int(n), nil
}

func hostFloat(raw any) (types.Value, error) {
	switch v := raw.(type) {
	case float64:
		return types.Float(v), nil
	case float32:
		return types.Float(float64(v)), nil
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return types.Float(f), nil
		}
	case string:
		if f, ok := ParseFloatString(v); ok {
			return types.Float(f), nil
		}
	default:
		if n, err := hostInt(raw); err == nil {
			return types.Float(float64(n.Int)), nil
		}
	}
	return types.Value{}, mismatch(raw, types.Numeric)
}

func hostBool(env *Env, raw any) (types.Value, error) {
	switch v := raw.(type) {
	case bool:
		return types.Bool(v), nil
	case string:
		if b, ok := env.ParseBoolString(v); ok {
			return types.Bool(b), nil
		}
		if b, err := strconv.ParseBool(v); err == nil {
			return types.Bool(b), nil
		}
	}
	return types.Value{}, mismatch(raw, types.Boolean)
}
