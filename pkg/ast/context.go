package ast

import (
	"fmt"
	"strings"

	"github.com/sandrolain/goformula/pkg/symbols"
	"github.com/sandrolain/goformula/pkg/types"
)

// Preference is the float-vs-integer preference of a parameter. It stays
// PreferNone until a consumer hints one.
type Preference uint8

// Parameter preferences.
const (
	PreferNone Preference = iota
	PreferFloat
	PreferInteger
)

func (p Preference) String() string {
	switch p {
	case PreferFloat:
		return "float"
	case PreferInteger:
		return "integer"
	}
	return "none"
}

// Param is a parameter registry entry.
type Param struct {
	// Name is the spelling of the first appearance.
	Name    string
	Ordinal int
	// Type is types.Invalid until type resolution fixes it.
	Type types.ValueType
	// Allowed is narrowed by every consumer during type resolution.
	Allowed    types.TypeSet
	Preference Preference
	// IsFunc marks a deferred parameter bound to a zero-argument callable.
	IsFunc bool
}

// Info returns the public description of p.
func (p *Param) Info() types.Parameter {
	return types.Parameter{Name: p.Name, Ordinal: p.Ordinal, Type: p.Type, Func: p.IsFunc}
}

// Entry is a symbol table entry: a flattened sub-expression.
type Entry struct {
	// Name is the generated placeholder name (item<N>).
	Name  string
	Index int
	// Text is the sub-expression with nested groups, literals and named
	// constants replaced by placeholders. For string literals it is the
	// decoded literal content.
	Text            string
	IsFunctionCall  bool
	IsStringLiteral bool
	// Func is the function name of a call; Args holds the placeholder
	// entry index of each argument.
	Func string
	Args []int
}

type entryKey struct {
	text string
	fn   bool
	str  bool
}

// Context is the state of one compilation. It is created by the parser and
// handed from stage to stage; it is never shared between compilations.
type Context struct {
	Source  string
	Symbols *symbols.Config

	entries   []*Entry
	entryKeys map[entryKey]*Entry

	consts      []*Constant
	constByText map[string]int

	params      []*Param
	paramByName map[string]*Param
	funcParams  map[string]bool

	// Root is the entry index of the whole expression, or -1 when the
	// expression is a single constant (see RootConst).
	Root      int
	RootConst int
}

// NewContext returns an empty context for source.
func NewContext(source string, cfg *symbols.Config, funcParams ...string) *Context {
	c := &Context{
		Source:      source,
		Symbols:     cfg,
		entryKeys:   map[entryKey]*Entry{},
		constByText: map[string]int{},
		paramByName: map[string]*Param{},
		funcParams:  map[string]bool{},
		Root:        -1,
		RootConst:   -1,
	}
	for _, name := range funcParams {
		c.funcParams[strings.ToLower(name)] = true
	}
	return c
}

// AddEntry adds a symbol table entry, or returns the existing one with the
// same content.
func (c *Context) AddEntry(e Entry) *Entry {
	key := entryKey{text: e.Text, fn: e.IsFunctionCall, str: e.IsStringLiteral}
	if e.IsFunctionCall {
		key.text = e.Func + "\x00" + fmt.Sprint(e.Args)
	}
	if prev, ok := c.entryKeys[key]; ok {
		return prev
	}
	e.Index = len(c.entries)
	e.Name = fmt.Sprintf("item%d", e.Index)
	entry := &e
	c.entries = append(c.entries, entry)
	c.entryKeys[key] = entry
	return entry
}

// Entry returns the entry at index i.
func (c *Context) Entry(i int) (*Entry, bool) {
	if i < 0 || i >= len(c.entries) {
		return nil, false
	}
	return c.entries[i], true
}

// Entries returns the symbol table.
func (c *Context) Entries() []*Entry {
	return c.entries
}

// AddConstant adds a literal to the constant pool, or returns the index of
// the constant already registered for text.
func (c *Context) AddConstant(text string, v types.Value) int {
	key := v.Type.String() + ":" + text
	if i, ok := c.constByText[key]; ok {
		return i
	}
	i := len(c.consts)
	c.consts = append(c.consts, &Constant{Name: fmt.Sprintf("Const%d", i), Value: v, Text: text})
	c.constByText[key] = i
	return i
}

// Constant returns a fresh node for the pooled constant at index i.
func (c *Context) Constant(i int) (*Constant, bool) {
	if i < 0 || i >= len(c.consts) {
		return nil, false
	}
	return Clone(c.consts[i]).(*Constant), true
}

// Constants returns the constant pool.
func (c *Context) Constants() []*Constant {
	return c.consts
}

// Param returns the registry entry for name, creating it on first use.
// Names are case-insensitive; ordinals follow first appearance.
func (c *Context) Param(name string) *Param {
	key := strings.ToLower(name)
	if p, ok := c.paramByName[key]; ok {
		return p
	}
	p := &Param{
		Name:    name,
		Ordinal: len(c.params),
		Type:    types.Invalid,
		Allowed: types.AllTypes,
		IsFunc:  c.funcParams[key],
	}
	c.params = append(c.params, p)
	c.paramByName[key] = p
	return p
}

// LookupParam returns the registry entry for name if it exists.
func (c *Context) LookupParam(name string) (*Param, bool) {
	p, ok := c.paramByName[strings.ToLower(name)]
	return p, ok
}

// Params returns the parameter registry in ordinal order.
func (c *Context) Params() []*Param {
	return c.params
}

// ParamInfo returns the public parameter descriptions in ordinal order.
func (c *Context) ParamInfo() []types.Parameter {
	out := make([]types.Parameter, len(c.params))
	for i, p := range c.params {
		out[i] = p.Info()
	}
	return out
}
