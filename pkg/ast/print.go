package ast

import (
	"strconv"
	"strings"

	"github.com/sandrolain/goformula/pkg/ops"
	"github.com/sandrolain/goformula/pkg/symbols"
	"github.com/sandrolain/goformula/pkg/types"
)

// Printer renders trees back into formula text. Every operator application
// is parenthesised, so the output shows how the tree was bound.
type Printer struct {
	Symbols *symbols.Config
	// Types appends ":type" to every resolved node.
	Types bool
	// Env formats constants; nil uses the default formatting.
	Env *ops.Env
}

// String renders n with the default vocabulary and no type annotations.
func String(n Node) string {
	return (&Printer{}).Print(n)
}

// Print renders n.
func (p *Printer) Print(n Node) string {
	var sb strings.Builder
	p.print(&sb, n)
	return sb.String()
}

func (p *Printer) symbol(op ops.Op) string {
	cfg := p.Symbols
	if cfg == nil {
		cfg = symbols.Default()
	}
	if syms := cfg.Operators[op.String()]; len(syms) > 0 {
		return syms[0]
	}
	return op.String()
}

func (p *Printer) annotate(sb *strings.Builder, n Node) {
	if !p.Types {
		return
	}
	if t := TypeOf(n); t.Valid() {
		sb.WriteByte(':')
		sb.WriteString(t.String())
	}
}

func (p *Printer) print(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Constant:
		p.constant(sb, n)
	case *Parameter:
		sb.WriteString(n.Ref.Name)
		if n.Ref.IsFunc {
			sb.WriteString("()")
		}
	case *Unary:
		op := p.symbol(n.Op)
		sb.WriteByte('(')
		sb.WriteString(op)
		if symbols.IsWord(op) {
			sb.WriteByte(' ')
		}
		p.print(sb, n.Operand)
		sb.WriteByte(')')
	case *Binary:
		sb.WriteByte('(')
		p.print(sb, n.Left)
		sb.WriteByte(' ')
		sb.WriteString(p.symbol(n.Op))
		sb.WriteByte(' ')
		p.print(sb, n.Right)
		sb.WriteByte(')')
	case *Call:
		sb.WriteString(n.Func.Name)
		sb.WriteByte('(')
		for i, a := range n.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			p.print(sb, a)
		}
		sb.WriteByte(')')
	case *Conversion:
		if n.Explicit {
			sb.WriteString(conversionName(n.To))
		} else {
			sb.WriteString("implicit_")
			sb.WriteString(n.To.String())
		}
		sb.WriteByte('(')
		p.print(sb, n.Operand)
		sb.WriteByte(')')
	default:
		sb.WriteString("<nil>")
		return
	}
	p.annotate(sb, n)
}

func (p *Printer) constant(sb *strings.Builder, n *Constant) {
	v := n.Value
	switch v.Type {
	case types.String:
		sb.WriteString(strconv.Quote(v.Str))
	case types.Numeric:
		s := ops.FormatFloat(v.Float)
		sb.WriteString(s)
		if !strings.ContainsAny(s, ".eEIN") {
			sb.WriteString(".0")
		}
	default:
		sb.WriteString(p.Env.FormatValue(v))
	}
}

func conversionName(t types.ValueType) string {
	switch t {
	case types.Integer:
		return "int"
	case types.Numeric:
		return "float"
	case types.Boolean:
		return "bool"
	case types.ByteArray:
		return "bytes"
	}
	return "str"
}
