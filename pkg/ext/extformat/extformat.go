// Package extformat provides string formatters that change how values
// read when a formula turns them into strings.
package extformat

import (
	"github.com/dustin/go-humanize"

	"github.com/sandrolain/goformula/pkg/functions"
	"github.com/sandrolain/goformula/pkg/types"
)

// Thousands formats integers and numerics with comma thousands separators:
// 1234567 reads "1,234,567".
func Thousands() functions.StringFormatter {
	return functions.StringFormatterFunc(func(v types.Value) (string, bool) {
		switch v.Type {
		case types.Integer:
			return humanize.Comma(v.Int), true
		case types.Numeric:
			return humanize.Commaf(v.Float), true
		}
		return "", false
	})
}

// ByteSizes formats non-negative integers as binary byte sizes: 1536
// reads "1.5 KiB".
func ByteSizes() functions.StringFormatter {
	return functions.StringFormatterFunc(func(v types.Value) (string, bool) {
		if v.Type != types.Integer || v.Int < 0 {
			return "", false
		}
		return humanize.IBytes(uint64(v.Int)), true
	})
}

// Words formats booleans with the given words instead of the configured
// true and false words.
func Words(yes, no string) functions.StringFormatter {
	return functions.StringFormatterFunc(func(v types.Value) (string, bool) {
		if v.Type != types.Boolean {
			return "", false
		}
		if v.Bool {
			return yes, true
		}
		return no, true
	})
}
