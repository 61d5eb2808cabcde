// Package extnumeric provides constant interpreters for numeric literals
// with units, such as byte sizes ("10KB", "1.5GiB") and SI quantities
// ("2.5kHz").
//
// Interpreters claim an isolated token, or the name of a bracketed
// constant, so both "size > 10MB" and "size > [10MB]" work.
package extnumeric

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/sandrolain/goformula/pkg/functions"
	"github.com/sandrolain/goformula/pkg/types"
)

// All returns every interpreter of this package that needs no argument.
func All() []functions.ConstantInterpreter {
	return []functions.ConstantInterpreter{ByteSizes()}
}

// ByteSizes interprets byte sizes in decimal (KB, MB, ...) or binary (KiB,
// MiB, ...) units as integers. A bare number is left to the default
// numeric literal rules.
func ByteSizes() functions.ConstantInterpreter {
	return functions.ConstantInterpreterFunc(func(tok string) (types.Value, bool) {
		if !quantity(tok) {
			return types.Value{}, false
		}
		n, err := humanize.ParseBytes(tok)
		if err != nil || n > math.MaxInt64 {
			return types.Value{}, false
		}
		return types.Int(int64(n)), true
	})
}

// SI interprets quantities with an SI prefix and the given unit, such as
// "2.5kHz" for unit "Hz", as numerics. The unit is matched exactly.
func SI(unit string) functions.ConstantInterpreter {
	return functions.ConstantInterpreterFunc(func(tok string) (types.Value, bool) {
		if !quantity(tok) || !strings.HasSuffix(tok, unit) {
			return types.Value{}, false
		}
		v, got, err := humanize.ParseSI(tok)
		if err != nil || got != unit {
			return types.Value{}, false
		}
		return types.Float(v), true
	})
}

// quantity reports whether tok starts with a digit and ends with a letter.
func quantity(tok string) bool {
	first, _ := utf8.DecodeRuneInString(tok)
	last, _ := utf8.DecodeLastRuneInString(tok)
	return unicode.IsDigit(first) && unicode.IsLetter(last)
}
