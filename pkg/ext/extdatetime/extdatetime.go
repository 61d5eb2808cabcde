// Package extdatetime provides a constant extractor for date literals
// written between hash signs, such as #2024-03-01# or
// #2024-03-01T12:30:00Z#.
//
// Dates become integers of milliseconds since the Unix epoch, so they
// compare and subtract like numbers: "#2024-03-02# - #2024-03-01#" is
// 86400000.
package extdatetime

import (
	"strings"
	"time"

	"github.com/sandrolain/goformula/pkg/functions"
	"github.com/sandrolain/goformula/pkg/symbols"
	"github.com/sandrolain/goformula/pkg/types"
)

// Delimiter encloses date literals.
const Delimiter = "#"

// MillisPerDay is the length of one day in the date representation.
const MillisPerDay = int64(24 * time.Hour / time.Millisecond)

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// All returns every extractor of this package.
func All() []functions.ConstantExtractor {
	return []functions.ConstantExtractor{Dates(time.UTC)}
}

// Dates extracts date literals. Literals without a zone are read in loc.
func Dates(loc *time.Location) functions.ConstantExtractor {
	if loc == nil {
		loc = time.UTC
	}
	return functions.ConstantExtractorFunc(func(text string, _ *symbols.Config) (types.Value, int, int, bool) {
		from := 0
		for {
			start := strings.Index(text[from:], Delimiter)
			if start < 0 {
				return types.Value{}, 0, 0, false
			}
			start += from
			end := strings.Index(text[start+1:], Delimiter)
			if end < 0 {
				return types.Value{}, 0, 0, false
			}
			end += start + 1
			if t, ok := parse(text[start+1:end], loc); ok {
				return types.Int(t.UnixMilli()), start, end + 1 - start, true
			}
			from = start + 1
		}
	})
}

func parse(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
