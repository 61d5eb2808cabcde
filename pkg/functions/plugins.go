package functions

import (
	"github.com/sandrolain/goformula/pkg/ops"
	"github.com/sandrolain/goformula/pkg/symbols"
	"github.com/sandrolain/goformula/pkg/types"
)

// ConstantExtractor claims a substring of the expression as a constant
// before tokenization. String literals have already been replaced by
// placeholders when Extract runs, so extractors never see their content.
//
// start and length are byte offsets into text.
type ConstantExtractor interface {
	Extract(text string, cfg *symbols.Config) (value types.Value, start, length int, ok bool)
}

// ConstantExtractorFunc adapts a function to ConstantExtractor.
type ConstantExtractorFunc func(text string, cfg *symbols.Config) (types.Value, int, int, bool)

// Extract calls f.
func (f ConstantExtractorFunc) Extract(text string, cfg *symbols.Config) (types.Value, int, int, bool) {
	return f(text, cfg)
}

// ConstantInterpreter claims an isolated token, or the name of a bracketed
// constant, as a constant value.
type ConstantInterpreter interface {
	Interpret(token string) (types.Value, bool)
}

// ConstantInterpreterFunc adapts a function to ConstantInterpreter.
type ConstantInterpreterFunc func(token string) (types.Value, bool)

// Interpret calls f(token).
func (f ConstantInterpreterFunc) Interpret(token string) (types.Value, bool) { return f(token) }

// StringFormatter produces the canonical string form of a value in string
// contexts. The default per-type formatting applies when none claims it.
type StringFormatter = ops.Formatter

// StringFormatterFunc adapts a function to StringFormatter.
type StringFormatterFunc = ops.FormatterFunc
