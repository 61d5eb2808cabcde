// Package ext bundles the optional constant plugins shipped with goformula.
//
// The plugins live in sub-packages grouped by category:
//   - extnumeric  – byte sizes (10KB, 1.5GiB) and SI quantities (2.5kHz)
//   - extdatetime – date literals between hash signs (#2024-03-01#)
//   - extformat   – thousands separators, byte sizes and boolean words in
//     string conversions
//
// # Integration – all literal plugins at once
//
//	import "github.com/sandrolain/goformula/pkg/ext"
//
//	expr, err := formula.Compile("size > 10MB and day >= #2024-03-01#", ext.WithAll()...)
//
// # Integration – single plugin from a sub-package
//
//	import "github.com/sandrolain/goformula/pkg/ext/extformat"
//
//	expr, err := formula.Compile(`"total: " + n`,
//	    compiler.WithFormatters(extformat.Thousands()),
//	)
package ext

import (
	"github.com/sandrolain/goformula/pkg/compiler"
	"github.com/sandrolain/goformula/pkg/ext/extdatetime"
	"github.com/sandrolain/goformula/pkg/ext/extnumeric"
)

// WithAll returns the options registering every literal plugin. String
// formatters change existing output and are opt-in.
func WithAll() []compiler.Option {
	return []compiler.Option{WithNumeric(), WithDateTime()}
}

// WithNumeric registers the unit literal interpreters.
func WithNumeric() compiler.Option {
	return compiler.WithInterpreters(extnumeric.All()...)
}

// WithDateTime registers the date literal extractor.
func WithDateTime() compiler.Option {
	return compiler.WithExtractors(extdatetime.All()...)
}
