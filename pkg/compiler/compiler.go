// Package compiler runs the formula pipeline: parse, resolve types, fold
// constants and generate code.
//
// A Compiler is configured once and is safe for concurrent use; every
// Compile call owns its own parse context. Each stage is logged at debug
// level and recorded as an event on the compilation span.
//
// # Example
//
//	c, err := compiler.New(compiler.WithTolerance(types.Absolute(0.001)))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	expr, err := c.Compile(ctx, "2*x-7*y")
//	result, err := expr.Invoke(12, 2) // 10.0
package compiler

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sandrolain/goformula/pkg/ast"
	"github.com/sandrolain/goformula/pkg/codegen"
	"github.com/sandrolain/goformula/pkg/ops"
	"github.com/sandrolain/goformula/pkg/parser"
	"github.com/sandrolain/goformula/pkg/resolver"
	"github.com/sandrolain/goformula/pkg/simplify"
	"github.com/sandrolain/goformula/pkg/symbols"
	"github.com/sandrolain/goformula/pkg/types"
)

const tracerName = "github.com/sandrolain/goformula/pkg/compiler"

// Compiler compiles formula text into executable expressions.
type Compiler struct {
	opts   Options
	logger *slog.Logger
	tracer trace.Tracer
	env    *ops.Env
	gen    *codegen.Generator
}

// New creates a Compiler. It fails when the symbol configuration is invalid.
func New(opts ...Option) (*Compiler, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	if options.Symbols == nil {
		options.Symbols = symbols.Default()
	}
	if err := options.Symbols.Validate(); err != nil {
		return nil, errors.Wrap(err, "compiler: invalid symbol configuration")
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Tracer == nil {
		options.Tracer = otel.Tracer(tracerName)
	}

	env := &ops.Env{
		Tolerance:  options.Tolerance,
		TrueWord:   options.Symbols.TrueWords[0],
		FalseWord:  options.Symbols.FalseWords[0],
		Formatters: append([]ops.Formatter(nil), options.Formatters...),
	}

	return &Compiler{
		opts:   options,
		logger: options.Logger,
		tracer: options.Tracer,
		env:    env,
		gen:    codegen.New(env),
	}, nil
}

// Options returns the effective options.
func (c *Compiler) Options() Options {
	return c.opts
}

// Key returns the cache key of text: texts with equal keys compile to
// equal expressions under this compiler.
func (c *Compiler) Key(text string) string {
	return parser.Normalize(text, c.opts.Symbols)
}

// Compile compiles text into an executable expression.
func (c *Compiler) Compile(ctx context.Context, text string) (*types.Expression, error) {
	ctx, span := c.tracer.Start(ctx, "formula.compile",
		trace.WithAttributes(attribute.String("formula.source", text)))
	defer span.End()

	expr, err := c.compile(ctx, span, text)
	if err != nil {
		c.fail(ctx, span, text, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("formula.result_type", expr.ResultType().String()),
		attribute.Int("formula.parameters", len(expr.Parameters())),
	)
	return expr, nil
}

// Explain compiles text up to code generation and returns the typed tree
// with implicit conversions spelled out.
func (c *Compiler) Explain(ctx context.Context, text string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "formula.explain",
		trace.WithAttributes(attribute.String("formula.source", text)))
	defer span.End()

	_, root, err := c.build(ctx, span, text)
	if err != nil {
		c.fail(ctx, span, text, err)
		return "", err
	}
	p := &ast.Printer{Symbols: c.opts.Symbols, Types: true, Env: c.env}
	return p.Print(root), nil
}

func (c *Compiler) compile(ctx context.Context, span trace.Span, text string) (*types.Expression, error) {
	actx, root, err := c.build(ctx, span, text)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	expr, err := c.gen.Program(actx, root)
	if err != nil {
		return nil, err
	}
	c.stage(ctx, span, "generate", start,
		attribute.String("result_type", expr.ResultType().String()))
	return expr, nil
}

// build runs every stage before code generation.
func (c *Compiler) build(ctx context.Context, span trace.Span, text string) (*ast.Context, ast.Node, error) {
	start := time.Now()
	actx, root, err := parser.Parse(text, parser.Config{
		Symbols:        c.opts.Symbols,
		Extractors:     c.opts.Extractors,
		Interpreters:   c.opts.Interpreters,
		StringFallback: c.opts.StringFallback,
		FuncParams:     c.opts.FuncParams,
	})
	if err != nil {
		return nil, nil, err
	}
	c.stage(ctx, span, "parse", start,
		attribute.Int("entries", len(actx.Entries())),
		attribute.Int("constants", len(actx.Constants())),
		attribute.Int("parameters", len(actx.Params())))

	start = time.Now()
	root, err = resolver.Resolve(actx, root, resolver.Options{
		Preference: c.opts.Preference,
		ResultType: c.opts.ResultType,
		Env:        c.env,
	})
	if err != nil {
		return nil, nil, err
	}
	c.stage(ctx, span, "resolve", start,
		attribute.String("result_type", ast.TypeOf(root).String()))

	if c.opts.Simplify {
		start = time.Now()
		s := simplify.New(c.gen)
		root = s.Simplify(root)
		c.stage(ctx, span, "simplify", start, attribute.Int("folded", s.Folded()))
	}
	return actx, root, nil
}

func (c *Compiler) stage(ctx context.Context, span trace.Span, name string, start time.Time, attrs ...attribute.KeyValue) {
	elapsed := time.Since(start)
	span.AddEvent(name, trace.WithAttributes(append(attrs, attribute.Int64("duration_ns", elapsed.Nanoseconds()))...))

	if !c.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	args := make([]any, 0, 2+len(attrs))
	args = append(args, slog.String("stage", name), slog.Duration("duration", elapsed))
	for _, a := range attrs {
		args = append(args, slog.Any(string(a.Key), a.Value.AsInterface()))
	}
	c.logger.DebugContext(ctx, "formula stage done", args...)
}

func (c *Compiler) fail(ctx context.Context, span trace.Span, text string, err error) {
	category := types.CategoryUnknown
	if e, ok := types.AsError(err); ok {
		category = e.Category()
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, string(category))
	c.logger.DebugContext(ctx, "formula compilation failed",
		slog.String("source", text),
		slog.String("category", string(category)),
		slog.Any("error", err))
}
