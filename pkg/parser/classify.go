package parser

import (
	"unicode"
	"unicode/utf8"

	"github.com/sandrolain/goformula/pkg/ast"
	"github.com/sandrolain/goformula/pkg/types"
)

// classify turns an atom into a constant or a parameter. Plugin
// interpreters are asked first, then numeric literals, then boolean words;
// anything else names a parameter.
func (b *builder) classify(tok string) (ast.Node, error) {
	for _, it := range b.opts.Interpreters {
		if v, ok := it.Interpret(tok); ok {
			return b.constant(tok, v), nil
		}
	}
	v, ok, err := ParseNumber(tok)
	if err != nil {
		return nil, err
	}
	if ok {
		return b.constant(tok, v), nil
	}
	if bv, ok := b.ctx.Symbols.BoolWord(tok); ok {
		return b.constant(tok, types.Bool(bv)), nil
	}
	if !isParamName(tok) {
		return nil, types.Errorf(types.ErrInvalidLiteral, "invalid parameter name").WithToken(tok)
	}
	return &ast.Parameter{Ref: b.ctx.Param(tok)}, nil
}

func (b *builder) constant(text string, v types.Value) ast.Node {
	c, _ := b.ctx.Constant(b.ctx.AddConstant(text, v))
	return c
}

func isParamName(tok string) bool {
	r, _ := utf8.DecodeRuneInString(tok)
	return r == '_' || r == '$' || r == '@' || unicode.IsLetter(r)
}
