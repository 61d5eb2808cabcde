// Package types defines the core type system for goformula.
//
// This package contains type definitions for:
//   - ValueType and TypeSet: the value types a formula node can produce
//   - Value: typed runtime values passed through generated code
//   - Expression: compiled, immutable, concurrently invocable formulas
//   - Tolerance: tolerant numeric comparison policies
//   - Error: structured errors with codes and categories
package types

import (
	"strings"
)

// Parameter describes one named parameter of a compiled expression.
type Parameter struct {
	// Name is the spelling of the first appearance in the source text.
	Name string
	// Ordinal is the position of the first appearance; it defines positional binding.
	Ordinal int
	// Type is the resolved value type arguments are converted to.
	Type ValueType
	// Func marks a deferred parameter: the bound value is a zero-argument callable.
	Func bool
}

// Binder supplies raw parameter values to a running expression.
type Binder interface {
	// Bind returns the raw value for the parameter at slot.
	Bind(slot int, name string) (any, error)
}

// DataFinder pulls named parameter values on demand.
type DataFinder interface {
	Find(name string) (any, bool)
}

// DataFinderFunc adapts a function to DataFinder.
type DataFinderFunc func(name string) (any, bool)

// Find calls f(name).
func (f DataFinderFunc) Find(name string) (any, bool) { return f(name) }

// MapFinder is a DataFinder over a map. Lookups fall back to a
// case-insensitive match because parameter names are case-insensitive.
type MapFinder map[string]any

// Find implements DataFinder.
func (m MapFinder) Find(name string) (any, bool) {
	if v, ok := m[name]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

type positionalBinder []any

func (p positionalBinder) Bind(slot int, name string) (any, error) {
	if slot < 0 || slot >= len(p) {
		return nil, Errorf(ErrMissingParameter, "no argument supplied for parameter %q", name)
	}
	return p[slot], nil
}

type finderBinder struct {
	finder DataFinder
}

func (f finderBinder) Bind(_ int, name string) (any, error) {
	if f.finder == nil {
		return nil, Errorf(ErrMissingParameter, "no data finder supplied for parameter %q", name)
	}
	v, ok := f.finder.Find(name)
	if !ok {
		return nil, Errorf(ErrMissingParameter, "no data found for parameter %q", name)
	}
	return v, nil
}

// RunFunc executes generated code against a binder.
type RunFunc func(Binder) (Value, error)

// Expression represents a compiled formula.
//
// An Expression is immutable and safe for concurrent use by multiple
// goroutines; every invocation gets its own evaluation frame.
type Expression struct {
	source string
	params []Parameter
	result ValueType
	run    RunFunc
}

// NewExpression creates a new Expression from generated code.
func NewExpression(source string, params []Parameter, result ValueType, run RunFunc) *Expression {
	return &Expression{
		source: source,
		params: params,
		result: result,
		run:    run,
	}
}

// Source returns the source text the expression was compiled from.
func (e *Expression) Source() string {
	return e.source
}

// ResultType returns the value type produced by the expression. An Integer
// result widens to Numeric when the integer arithmetic overflows int64.
func (e *Expression) ResultType() ValueType {
	return e.result
}

// Parameters returns the parameter names in positional order.
func (e *Expression) Parameters() []string {
	names := make([]string, len(e.params))
	for i, p := range e.params {
		names[i] = p.Name
	}
	return names
}

// ParameterInfo returns a copy of the parameter descriptions in positional order.
func (e *Expression) ParameterInfo() []Parameter {
	out := make([]Parameter, len(e.params))
	copy(out, e.params)
	return out
}

// Invoke binds args positionally, in order of first appearance in the
// source text, and evaluates the expression.
func (e *Expression) Invoke(args ...any) (any, error) {
	v, err := e.InvokeValue(args...)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// InvokeValue is like Invoke but returns the typed Value.
func (e *Expression) InvokeValue(args ...any) (Value, error) {
	if len(args) != len(e.params) {
		return Value{}, Errorf(ErrArgumentCount, "expression takes %d argument(s), got %d", len(e.params), len(args))
	}
	return e.run(positionalBinder(args))
}

// InvokeWith evaluates the expression pulling parameter values from finder.
// The finder is only consulted for parameters the evaluation reaches.
func (e *Expression) InvokeWith(finder DataFinder) (any, error) {
	v, err := e.InvokeValueWith(finder)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// InvokeValueWith is like InvokeWith but returns the typed Value.
func (e *Expression) InvokeValueWith(finder DataFinder) (Value, error) {
	return e.run(finderBinder{finder: finder})
}

// InvokeMap is a shorthand for InvokeWith(MapFinder(data)).
func (e *Expression) InvokeMap(data map[string]any) (any, error) {
	return e.InvokeWith(MapFinder(data))
}

// String returns the source text.
func (e *Expression) String() string {
	return e.source
}
