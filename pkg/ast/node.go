// Package ast defines the syntax tree of a formula and the per-compilation
// Context the pipeline stages share.
//
// Node is a closed sum type: Constant, Parameter, Unary, Binary, Call and
// Conversion are its only variants, and every stage dispatches on them with
// a type switch. Each node owns its children; the tree has no cycles.
// Parameter nodes are the only shared state, pointing into the Context's
// parameter registry so that every occurrence of a name resolves to the
// same logical parameter.
package ast

import (
	"github.com/sandrolain/goformula/pkg/functions"
	"github.com/sandrolain/goformula/pkg/ops"
	"github.com/sandrolain/goformula/pkg/types"
)

// Node is a formula syntax tree node.
type Node interface {
	node()
}

// Constant is a typed literal.
type Constant struct {
	// Name is the constant pool name (Const<N>), empty for folded values.
	Name  string
	Value types.Value
	// Text is the source spelling.
	Text string
}

// Parameter references an entry of the parameter registry.
type Parameter struct {
	Ref *Param
}

// Unary is a prefix operator application.
type Unary struct {
	Op      ops.Op
	Operand Node
	// Type and Sig are set by type resolution.
	Type types.ValueType
	Sig  ops.Signature
}

// Binary is an infix operator application.
type Binary struct {
	Op          ops.Op
	Left, Right Node
	Type        types.ValueType
	Sig         ops.Signature
}

// Call is a built-in function call.
type Call struct {
	Func *functions.Def
	Args []Node
	Type types.ValueType
	Sig  ops.Signature
}

// Conversion converts its operand from one value type to another.
// Explicit conversions come from the conversion functions; implicit ones
// are inserted by type resolution.
type Conversion struct {
	From, To types.ValueType
	Operand  Node
	Explicit bool
}

func (*Constant) node()   {}
func (*Parameter) node()  {}
func (*Unary) node()      {}
func (*Binary) node()     {}
func (*Call) node()       {}
func (*Conversion) node() {}

// TypeOf returns the resolved type of n, or types.Invalid before
// resolution.
func TypeOf(n Node) types.ValueType {
	switch n := n.(type) {
	case *Constant:
		return n.Value.Type
	case *Parameter:
		return n.Ref.Type
	case *Unary:
		return n.Type
	case *Binary:
		return n.Type
	case *Call:
		return n.Type
	case *Conversion:
		return n.To
	}
	return types.Invalid
}

// NewUnary returns an unresolved unary node.
func NewUnary(op ops.Op, operand Node) *Unary {
	return &Unary{Op: op, Operand: operand, Type: types.Invalid}
}

// NewBinary returns an unresolved binary node.
func NewBinary(op ops.Op, left, right Node) *Binary {
	return &Binary{Op: op, Left: left, Right: right, Type: types.Invalid}
}

// NewCall returns an unresolved call node.
func NewCall(fn *functions.Def, args ...Node) *Call {
	return &Call{Func: fn, Args: args, Type: types.Invalid}
}

// NewConversion returns an explicit conversion to to whose source type is
// decided by type resolution.
func NewConversion(to types.ValueType, operand Node) *Conversion {
	return &Conversion{From: types.Invalid, To: to, Operand: operand, Explicit: true}
}

// Children returns the direct children of n in evaluation order.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Unary:
		return []Node{n.Operand}
	case *Binary:
		return []Node{n.Left, n.Right}
	case *Call:
		return n.Args
	case *Conversion:
		return []Node{n.Operand}
	}
	return nil
}

// Walk calls fn for n and its descendants in pre-order. Returning false
// from fn skips the children of that node.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}

// Clone returns a deep copy of n. Parameter nodes keep pointing at the same
// registry entry.
func Clone(n Node) Node {
	switch n := n.(type) {
	case *Constant:
		c := *n
		if n.Value.Bytes != nil {
			c.Value.Bytes = append([]byte(nil), n.Value.Bytes...)
		}
		return &c
	case *Parameter:
		return &Parameter{Ref: n.Ref}
	case *Unary:
		c := *n
		c.Operand = Clone(n.Operand)
		return &c
	case *Binary:
		c := *n
		c.Left = Clone(n.Left)
		c.Right = Clone(n.Right)
		return &c
	case *Call:
		c := *n
		c.Args = make([]Node, len(n.Args))
		for i, a := range n.Args {
			c.Args[i] = Clone(a)
		}
		return &c
	case *Conversion:
		c := *n
		c.Operand = Clone(n.Operand)
		return &c
	}
	return nil
}

// IsConstant reports whether n is a Constant.
func IsConstant(n Node) bool {
	_, ok := n.(*Constant)
	return ok
}
