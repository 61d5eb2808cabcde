// Package goformula compiles formula text into typed, reusable Go closures.
//
// A formula is an infix expression over named parameters, literals, named
// constants and a closed set of built-in functions. Compilation resolves
// one concrete type per node at compile time, choosing integer arithmetic
// when every operand allows it, so "3+6" yields the integer 9 while
// "\"3\"+6" yields the string "36".
//
// # Quick Start
//
//	// Compile and evaluate in one call
//	result, err := goformula.Eval("2*x-7*y", 12, 2) // 10
//
//	// Compile once, invoke many times
//	expr, err := goformula.Compile("price * (1 + vat)")
//	a, _ := expr.Invoke(100.0, 0.22)
//	b, _ := expr.InvokeMap(map[string]any{"price": 80, "vat": 0.1})
//
//	// Cached compilation shared across goroutines
//	in, err := goformula.New(goformula.WithCacheSize(1024))
//	expr, err = in.Interpret(ctx, "(x > 10) and (y <> \"\")")
//
// # More Information
//
//   - Compilation pipeline: github.com/sandrolain/goformula/pkg/compiler
//   - Cache: github.com/sandrolain/goformula/pkg/cache
//   - Vocabulary: github.com/sandrolain/goformula/pkg/symbols
//   - Values and errors: github.com/sandrolain/goformula/pkg/types
//   - Literal plugins: github.com/sandrolain/goformula/pkg/ext
package goformula

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sandrolain/goformula/pkg/cache"
	"github.com/sandrolain/goformula/pkg/compiler"
	"github.com/sandrolain/goformula/pkg/types"
)

// Version returns the current version of goformula.
func Version() string {
	return "v0.1.0-dev"
}

// Options configures an Interpreter.
type Options struct {
	// Compiler holds the compilation options.
	Compiler []compiler.Option
	// CacheSize bounds the number of cached expressions. Zero uses
	// cache.DefaultSize.
	CacheSize int
	// Registerer receives the cache metrics. Nil leaves them unregistered.
	Registerer prometheus.Registerer
	// CacheName labels the cache metrics.
	CacheName string
	// Logger is shared by the compiler and the cache.
	Logger *slog.Logger
}

// Option configures an Interpreter.
type Option func(*Options)

// WithCompilerOptions appends compilation options.
func WithCompilerOptions(opts ...compiler.Option) Option {
	return func(o *Options) {
		o.Compiler = append(o.Compiler, opts...)
	}
}

// WithCacheSize bounds the expression cache.
func WithCacheSize(n int) Option {
	return func(o *Options) {
		o.CacheSize = n
	}
}

// WithMetrics registers the cache metrics with reg under the given cache
// label.
func WithMetrics(reg prometheus.Registerer, name string) Option {
	return func(o *Options) {
		o.Registerer = reg
		o.CacheName = name
	}
}

// WithLogger sets the logger of the compiler and the cache.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// Interpreter compiles formulas through a shared cache.
//
// Safe for concurrent use by multiple goroutines.
type Interpreter struct {
	compiler *compiler.Compiler
	cache    *cache.Cache
}

// New creates an Interpreter.
func New(opts ...Option) (*Interpreter, error) {
	var options Options
	for _, opt := range opts {
		opt(&options)
	}

	compOpts := options.Compiler
	var cacheOpts []cache.Option
	if options.Logger != nil {
		compOpts = append([]compiler.Option{compiler.WithLogger(options.Logger)}, compOpts...)
		cacheOpts = append(cacheOpts, cache.WithLogger(options.Logger))
	}
	comp, err := compiler.New(compOpts...)
	if err != nil {
		return nil, err
	}

	cacheOpts = append(cacheOpts, cache.WithKeyFunc(comp.Key), cache.WithRegisterer(options.Registerer))
	if options.CacheName != "" {
		cacheOpts = append(cacheOpts, cache.WithName(options.CacheName))
	}
	c, err := cache.New(options.CacheSize, comp.Compile, cacheOpts...)
	if err != nil {
		return nil, err
	}
	return &Interpreter{compiler: comp, cache: c}, nil
}

// Interpret returns the compiled expression for text, compiling it at most
// once while it stays cached.
//
// Texts with the same cache key share one expression, so its Source is the
// text that was compiled first: after "x + 1" any later "  x+1 " returns an
// expression whose Source is "x + 1".
func (in *Interpreter) Interpret(ctx context.Context, text string) (*types.Expression, error) {
	return in.cache.GetOrCompile(ctx, text)
}

// ExecuteExpression interprets text and invokes it with positional args.
func (in *Interpreter) ExecuteExpression(ctx context.Context, text string, args ...any) (any, error) {
	expr, err := in.Interpret(ctx, text)
	if err != nil {
		return nil, err
	}
	return expr.Invoke(args...)
}

// ExecuteWith interprets text and invokes it pulling parameters from
// finder.
func (in *Interpreter) ExecuteWith(ctx context.Context, text string, finder types.DataFinder) (any, error) {
	expr, err := in.Interpret(ctx, text)
	if err != nil {
		return nil, err
	}
	return expr.InvokeWith(finder)
}

// Explain returns the resolved tree of text with node types.
func (in *Interpreter) Explain(ctx context.Context, text string) (string, error) {
	return in.compiler.Explain(ctx, text)
}

// Compiler returns the underlying compiler.
func (in *Interpreter) Compiler() *compiler.Compiler {
	return in.compiler
}

// Cache returns the expression cache.
func (in *Interpreter) Cache() *cache.Cache {
	return in.cache
}

var defaultInterpreter = sync.OnceValues(func() (*Interpreter, error) {
	return New()
})

// Default returns the process-wide Interpreter with default options.
func Default() *Interpreter {
	in, err := defaultInterpreter()
	if err != nil {
		// default options always compile
		panic(fmt.Sprintf("goformula: default interpreter: %v", err))
	}
	return in
}

// Interpret compiles text through the default Interpreter's cache.
func Interpret(text string) (*types.Expression, error) {
	return Default().Interpret(context.Background(), text)
}

// ExecuteExpression compiles text through the default Interpreter's cache
// and invokes it with positional args.
func ExecuteExpression(text string, args ...any) (any, error) {
	return Default().ExecuteExpression(context.Background(), text, args...)
}

// Compile compiles text without caching.
//
// The compiled expression can be invoked many times with different
// arguments. It is safe for concurrent use.
//
// Example:
//
//	expr, err := goformula.Compile("2*x-7*y")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, _ := expr.Invoke(12, 2)
func Compile(text string, opts ...compiler.Option) (*types.Expression, error) {
	c, err := compiler.New(opts...)
	if err != nil {
		return nil, err
	}
	return c.Compile(context.Background(), text)
}

// MustCompile is like Compile but panics if the text cannot be compiled.
// It simplifies safe initialization of global variables.
func MustCompile(text string, opts ...compiler.Option) *types.Expression {
	expr, err := Compile(text, opts...)
	if err != nil {
		panic(fmt.Sprintf("goformula: Compile(%q): %v", text, err))
	}
	return expr
}

// Eval is a convenience function that compiles text through the default
// Interpreter and invokes it with positional args.
//
// Example:
//
//	result, err := goformula.Eval("3+6") // int64(9)
func Eval(text string, args ...any) (any, error) {
	return ExecuteExpression(text, args...)
}
