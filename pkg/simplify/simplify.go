// Package simplify folds constant subtrees of a typed formula tree.
//
// A node whose children are all constants is evaluated once, with the code
// the generator would emit for it, and replaced by the resulting constant.
// Folding runs bottom-up so whole constant subtrees collapse in one pass.
// A fold that fails, such as a division by a literal zero, leaves the node
// in place so the error surfaces at run time.
package simplify

import (
	"github.com/sandrolain/goformula/pkg/ast"
	"github.com/sandrolain/goformula/pkg/codegen"
)

// Simplifier folds constant subtrees.
type Simplifier struct {
	gen     *codegen.Generator
	printer *ast.Printer
	folded  int
}

// New returns a simplifier evaluating with gen.
func New(gen *codegen.Generator) *Simplifier {
	return &Simplifier{gen: gen, printer: &ast.Printer{Env: gen.Env()}}
}

// Simplify folds n and returns the new root. Applying it twice yields the
// same tree.
func Simplify(gen *codegen.Generator, n ast.Node) ast.Node {
	return New(gen).Simplify(n)
}

// Folded reports how many nodes the last Simplify call replaced.
func (s *Simplifier) Folded() int {
	return s.folded
}

// Simplify folds n and returns the new root.
func (s *Simplifier) Simplify(n ast.Node) ast.Node {
	s.folded = 0
	return s.fold(n)
}

func (s *Simplifier) fold(n ast.Node) ast.Node {
	switch n := n.(type) {
	case *ast.Unary:
		n.Operand = s.fold(n.Operand)
	case *ast.Binary:
		n.Left = s.fold(n.Left)
		n.Right = s.fold(n.Right)
	case *ast.Call:
		for i := range n.Args {
			n.Args[i] = s.fold(n.Args[i])
		}
	case *ast.Conversion:
		n.Operand = s.fold(n.Operand)
	default:
		return n
	}
	for _, c := range ast.Children(n) {
		if !ast.IsConstant(c) {
			return n
		}
	}
	v, err := s.gen.Eval(n)
	if err != nil {
		return n
	}
	s.folded++
	return &ast.Constant{Value: v, Text: s.printer.Print(n)}
}
