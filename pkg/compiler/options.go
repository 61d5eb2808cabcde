package compiler

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/sandrolain/goformula/pkg/ast"
	"github.com/sandrolain/goformula/pkg/functions"
	"github.com/sandrolain/goformula/pkg/symbols"
	"github.com/sandrolain/goformula/pkg/types"
)

// Options configures a Compiler.
type Options struct {
	// Symbols is the vocabulary. Defaults to symbols.Default().
	Symbols *symbols.Config
	// Tolerance makes numeric comparisons tolerant. Nil compares exactly.
	Tolerance *types.Tolerance
	// Logger receives one debug record per compilation stage.
	Logger *slog.Logger
	// Tracer records one span per compilation with an event per stage.
	Tracer trace.Tracer
	// Preference decides between float and integer for parameters no
	// operator hints. Defaults to ast.PreferFloat.
	Preference ast.Preference
	// FuncParams names the parameters bound to zero-argument callables.
	FuncParams []string
	// ResultType forces the type of the result; types.Invalid leaves it free.
	ResultType types.ValueType
	// Extractors, Interpreters and Formatters are constant plugins.
	Extractors   []functions.ConstantExtractor
	Interpreters []functions.ConstantInterpreter
	Formatters   []functions.StringFormatter
	// StringFallback compiles operator-free multi-word text to a string
	// constant. Enabled by default.
	StringFallback bool
	// Simplify folds constant subtrees. Enabled by default.
	Simplify bool
}

// Option configures a Compiler.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Preference:     ast.PreferFloat,
		ResultType:     types.Invalid,
		StringFallback: true,
		Simplify:       true,
	}
}

// WithSymbols sets the vocabulary.
func WithSymbols(cfg *symbols.Config) Option {
	return func(opts *Options) {
		opts.Symbols = cfg
	}
}

// WithTolerance sets the comparison tolerance.
func WithTolerance(t *types.Tolerance) Option {
	return func(opts *Options) {
		opts.Tolerance = t
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithTracer sets the tracer compilations are recorded with.
func WithTracer(tracer trace.Tracer) Option {
	return func(opts *Options) {
		opts.Tracer = tracer
	}
}

// WithPreference sets the default float-vs-integer preference.
func WithPreference(p ast.Preference) Option {
	return func(opts *Options) {
		opts.Preference = p
	}
}

// WithIntegerPreference makes unhinted parameters integers.
func WithIntegerPreference() Option {
	return WithPreference(ast.PreferInteger)
}

// WithFuncParams marks parameters as deferred: the bound value is a
// func() any or func() (any, error) called at every use.
func WithFuncParams(names ...string) Option {
	return func(opts *Options) {
		opts.FuncParams = append(opts.FuncParams, names...)
	}
}

// WithResultType forces the result type.
func WithResultType(t types.ValueType) Option {
	return func(opts *Options) {
		opts.ResultType = t
	}
}

// WithExtractors adds constant extractors.
func WithExtractors(e ...functions.ConstantExtractor) Option {
	return func(opts *Options) {
		opts.Extractors = append(opts.Extractors, e...)
	}
}

// WithInterpreters adds constant interpreters.
func WithInterpreters(i ...functions.ConstantInterpreter) Option {
	return func(opts *Options) {
		opts.Interpreters = append(opts.Interpreters, i...)
	}
}

// WithFormatters adds string formatters.
func WithFormatters(f ...functions.StringFormatter) Option {
	return func(opts *Options) {
		opts.Formatters = append(opts.Formatters, f...)
	}
}

// WithStringFallback enables or disables the plain-text fallback.
func WithStringFallback(enabled bool) Option {
	return func(opts *Options) {
		opts.StringFallback = enabled
	}
}

// WithSimplify enables or disables constant folding.
func WithSimplify(enabled bool) Option {
	return func(opts *Options) {
		opts.Simplify = enabled
	}
}
