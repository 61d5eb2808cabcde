package ops

import (
	"encoding/hex"
	"math"
	"strconv"
	"strings"

	"github.com/sandrolain/goformula/pkg/types"
)

// Formatter produces the canonical string form of a value for string
// coercions. It returns false when it does not handle the value.
type Formatter interface {
	Format(v types.Value) (string, bool)
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(v types.Value) (string, bool)

// Format calls f(v).
func (f FormatterFunc) Format(v types.Value) (string, bool) { return f(v) }

// Env carries the compile-time settings generated code consults at run time.
// It is immutable once code generation starts.
type Env struct {
	Tolerance  *types.Tolerance
	Formatters []Formatter
	TrueWord   string
	FalseWord  string
}

// DefaultEnv returns an Env with exact comparisons and default formatting.
func DefaultEnv() *Env {
	return &Env{TrueWord: "true", FalseWord: "false"}
}

// FormatValue returns the string form of v, asking plugin formatters first.
func (e *Env) FormatValue(v types.Value) string {
	if e != nil {
		for _, f := range e.Formatters {
			if s, ok := f.Format(v); ok {
				return s
			}
		}
	}
	return e.defaultFormat(v)
}

func (e *Env) defaultFormat(v types.Value) string {
	switch v.Type {
	case types.Integer:
		return strconv.FormatInt(v.Int, 10)
	case types.Numeric:
		return FormatFloat(v.Float)
	case types.Boolean:
		t, f := "true", "false"
		if e != nil && e.TrueWord != "" {
			t = e.TrueWord
		}
		if e != nil && e.FalseWord != "" {
			f = e.FalseWord
		}
		if v.Bool {
			return t
		}
		return f
	case types.ByteArray:
		return "0x" + strings.ToUpper(hex.EncodeToString(v.Bytes))
	case types.String:
		return v.Str
	}
	return ""
}

// FormatFloat formats f without exponent for ordinary magnitudes and with
// the shortest exponent form otherwise.
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	}
	a := math.Abs(f)
	if a != 0 && (a >= 1e21 || a < 1e-7) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
