// Package functions provides the closed set of built-in formula functions
// and the plugin interfaces the compiler accepts.
//
// Built-ins are registered in a static table, name to definition, built once
// on first use. Names are case-insensitive. Every definition has a fixed
// arity and a list of overloads; type resolution picks an overload exactly
// as it does for operators.
//
// # Example
//
//	def, ok := functions.Lookup("MAX")
//	// def.Name == "max", def.Arity == 2
package functions

import (
	"sort"
	"strings"
	"sync"

	"github.com/sandrolain/goformula/pkg/ops"
	"github.com/sandrolain/goformula/pkg/types"
)

// Kind distinguishes functions the code generator treats specially.
type Kind uint8

// Function kinds.
const (
	// KindNormal functions evaluate every argument, then call Impl.
	KindNormal Kind = iota
	// KindConditional functions evaluate the first argument and then
	// only the argument it selects.
	KindConditional
	// KindConversion functions become explicit conversion nodes.
	KindConversion
)

// Impl implements one overload of a function.
type Impl func(env *ops.Env, args []types.Value) (types.Value, error)

// Overload is one typing rule of a function with its implementation.
type Overload struct {
	ops.Signature
	Impl Impl
}

// Def describes a built-in function.
type Def struct {
	Name      string
	Arity     int
	Kind      Kind
	Hint      ops.Hint
	Overloads []Overload
	// Target is the result type of a conversion function.
	Target types.ValueType
}

// Signatures returns the typing rules of the function in preference order.
func (d *Def) Signatures() []ops.Signature {
	out := make([]ops.Signature, len(d.Overloads))
	for i, o := range d.Overloads {
		out[i] = o.Signature
	}
	return out
}

// Impl returns the implementation of the overload taking in.
func (d *Def) Impl(in []types.ValueType) (Impl, bool) {
	for _, o := range d.Overloads {
		if sameTypes(o.In, in) {
			return o.Impl, o.Impl != nil
		}
	}
	return nil, false
}

func sameTypes(a, b []types.ValueType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var (
	registry     map[string]*Def
	registryOnce sync.Once
)

func initRegistry() {
	registryOnce.Do(func() {
		registry = make(map[string]*Def, 64)
		for _, group := range [][]*Def{mathFunctions(), stringFunctions(), controlFunctions(), conversionFunctions()} {
			for _, d := range group {
				registry[d.Name] = d
			}
		}
	})
}

// Lookup returns the built-in function called name, case-insensitively.
func Lookup(name string) (*Def, bool) {
	initRegistry()
	d, ok := registry[strings.ToLower(name)]
	return d, ok
}

// Names returns the sorted names of all built-in functions.
func Names() []string {
	initRegistry()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func def(name string, hint ops.Hint, overloads ...Overload) *Def {
	arity := 0
	if len(overloads) > 0 {
		arity = len(overloads[0].In)
	}
	return &Def{Name: name, Arity: arity, Hint: hint, Overloads: overloads}
}

func over(out types.ValueType, impl Impl, in ...types.ValueType) Overload {
	return Overload{Signature: ops.Signature{In: in, Out: out}, Impl: impl}
}
