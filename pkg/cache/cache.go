// Package cache provides a thread-safe LRU cache for compiled formulas.
//
// It avoids re-parsing and re-compiling the same formula text on every
// call, which matters when one formula is evaluated against many inputs.
// Concurrent requests for the same missing key share a single compilation.
// Failed compilations are never cached.
//
// # Example
//
//	c, err := cache.New(1024, comp.Compile)
//	expr, err := c.GetOrCompile(ctx, "2*x-7*y")
package cache

import (
	"context"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/atomic"
	"golang.org/x/sync/singleflight"

	"github.com/sandrolain/goformula/pkg/types"
)

// DefaultSize is the capacity used when New is given a size <= 0.
const DefaultSize = 256

// CompileFunc compiles formula text.
type CompileFunc func(ctx context.Context, text string) (*types.Expression, error)

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits          int64
	Misses        int64
	Compilations  int64
	CompileErrors int64
	// Evictions counts every entry dropped: capacity evictions, Remove and
	// Purge alike.
	Evictions int64
}

type metrics struct {
	hits          prometheus.Counter
	misses        prometheus.Counter
	compilations  prometheus.Counter
	compileErrors prometheus.Counter
	evictions     prometheus.Counter
}

// Cache is a thread-safe LRU (Least Recently Used) cache of compiled
// expressions keyed by normalised formula text.
//
// Safe for concurrent use by multiple goroutines.
type Cache struct {
	lru     *lru.Cache[string, *types.Expression]
	group   singleflight.Group
	compile CompileFunc
	key     func(string) string
	size    int
	logger  *slog.Logger

	hits          atomic.Int64
	misses        atomic.Int64
	compilations  atomic.Int64
	compileErrors atomic.Int64
	evictions     atomic.Int64

	metrics metrics
}

// Options configures a Cache.
type Options struct {
	// Registerer receives the cache metrics. Nil leaves them unregistered.
	Registerer prometheus.Registerer
	// Name is the value of the "cache" label, distinguishing several
	// caches on one registry. Defaults to "default".
	Name string
	// KeyFunc maps formula text to its cache key. Defaults to the identity.
	KeyFunc func(string) string
	// Logger receives a debug record per compilation.
	Logger *slog.Logger
}

// Option configures a Cache.
type Option func(*Options)

// WithRegisterer registers the cache metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(opts *Options) {
		opts.Registerer = reg
	}
}

// WithName sets the "cache" metric label.
func WithName(name string) Option {
	return func(opts *Options) {
		opts.Name = name
	}
}

// WithKeyFunc sets the function deriving cache keys from formula text.
func WithKeyFunc(fn func(string) string) Option {
	return func(opts *Options) {
		opts.KeyFunc = fn
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// New creates a cache holding up to size expressions, compiling misses
// with compile.
func New(size int, compile CompileFunc, opts ...Option) (*Cache, error) {
	if compile == nil {
		return nil, errors.New("cache: nil compile function")
	}
	if size <= 0 {
		size = DefaultSize
	}
	options := Options{Name: "default"}
	for _, opt := range opts {
		opt(&options)
	}
	if options.KeyFunc == nil {
		options.KeyFunc = func(s string) string { return s }
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	c := &Cache{
		compile: compile,
		key:     options.KeyFunc,
		size:    size,
		logger:  options.Logger,
	}
	l, err := lru.NewWithEvict(size, c.onEvict)
	if err != nil {
		return nil, errors.Wrap(err, "cache: create LRU")
	}
	c.lru = l

	reg := promauto.With(options.Registerer)
	labels := prometheus.Labels{"cache": options.Name}
	counter := func(name, help string) prometheus.Counter {
		return reg.NewCounter(prometheus.CounterOpts{
			Namespace:   "goformula",
			Subsystem:   "cache",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}
	c.metrics = metrics{
		hits:          counter("hits_total", "Total number of lookups served from the cache."),
		misses:        counter("misses_total", "Total number of lookups that missed the cache."),
		compilations:  counter("compilations_total", "Total number of formula compilations run by the cache."),
		compileErrors: counter("compile_errors_total", "Total number of compilations that failed."),
		evictions:     counter("evictions_total", "Total number of expressions evicted from the cache."),
	}
	_ = reg.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   "goformula",
		Subsystem:   "cache",
		Name:        "entries",
		Help:        "Current number of expressions in the cache.",
		ConstLabels: labels,
	}, func() float64 {
		return float64(c.lru.Len())
	})
	return c, nil
}

func (c *Cache) onEvict(string, *types.Expression) {
	c.evictions.Inc()
	c.metrics.evictions.Inc()
}

// Key returns the cache key of text.
func (c *Cache) Key(text string) string {
	return c.key(text)
}

// Get retrieves the compiled expression of text without compiling it.
func (c *Cache) Get(text string) (*types.Expression, bool) {
	expr, ok := c.lru.Get(c.key(text))
	if ok {
		c.hit()
	} else {
		c.miss()
	}
	return expr, ok
}

// GetOrCompile returns the cached expression of text, compiling and caching
// it on a miss. Concurrent misses for one key run a single compilation
// with the context of the first caller; the others wait for its result.
func (c *Cache) GetOrCompile(ctx context.Context, text string) (*types.Expression, error) {
	key := c.key(text)
	if expr, ok := c.lru.Get(key); ok {
		c.hit()
		return expr, nil
	}
	c.miss()

	v, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent flight may have filled the key since the lookup above.
		if expr, ok := c.lru.Peek(key); ok {
			return expr, nil
		}
		c.compilations.Inc()
		c.metrics.compilations.Inc()
		start := time.Now()
		expr, err := c.compile(ctx, text)
		if err != nil {
			c.compileErrors.Inc()
			c.metrics.compileErrors.Inc()
			c.logger.DebugContext(ctx, "formula cache compilation failed", "key", key, "error", err)
			return nil, err
		}
		c.logger.DebugContext(ctx, "formula cache compiled", "key", key, "duration", time.Since(start))
		c.lru.Add(key, expr)
		return expr, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.Expression), nil
}

// Set stores expr under the key of text.
func (c *Cache) Set(text string, expr *types.Expression) {
	c.lru.Add(c.key(text), expr)
}

// Remove deletes the entry of text and reports whether it was present.
func (c *Cache) Remove(text string) bool {
	return c.lru.Remove(c.key(text))
}

// Purge removes all entries.
func (c *Cache) Purge() {
	c.lru.Purge()
}

// Len returns the number of entries currently in the cache.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Capacity returns the maximum number of entries the cache can hold.
func (c *Cache) Capacity() int {
	return c.size
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Compilations:  c.compilations.Load(),
		CompileErrors: c.compileErrors.Load(),
		Evictions:     c.evictions.Load(),
	}
}

func (c *Cache) hit() {
	c.hits.Inc()
	c.metrics.hits.Inc()
}

func (c *Cache) miss() {
	c.misses.Inc()
	c.metrics.misses.Inc()
}
