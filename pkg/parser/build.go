package parser

import (
	"github.com/sandrolain/goformula/pkg/ast"
	"github.com/sandrolain/goformula/pkg/functions"
	"github.com/sandrolain/goformula/pkg/ops"
	"github.com/sandrolain/goformula/pkg/types"
)

// builder turns symbol table entries into syntax trees.
type builder struct {
	ctx   *ast.Context
	opts  *Config
	vocab *vocabulary
	built map[int]ast.Node
}

func newBuilder(ctx *ast.Context, opts *Config) *builder {
	return &builder{
		ctx:   ctx,
		opts:  opts,
		vocab: newVocabulary(ctx.Symbols),
		built: map[int]ast.Node{},
	}
}

func (b *builder) root() (ast.Node, error) {
	if b.ctx.RootConst >= 0 {
		c, _ := b.ctx.Constant(b.ctx.RootConst)
		return c, nil
	}
	return b.entry(b.ctx.Root, len(b.ctx.Entries()))
}

// entry builds the tree of the entry at idx, referenced from the entry at
// from. Entries only reference entries created before them, which rules
// out cycles. A tree built before is cloned so that every reference owns
// its nodes.
func (b *builder) entry(idx, from int) (ast.Node, error) {
	if idx >= from {
		return nil, types.Errorf(types.ErrInvariant, "symbol table entry %d references later entry %d", from, idx)
	}
	if n, ok := b.built[idx]; ok {
		return ast.Clone(n), nil
	}
	e, ok := b.ctx.Entry(idx)
	if !ok {
		return nil, types.Errorf(types.ErrInvariant, "unknown symbol table entry %d", idx)
	}
	var (
		n   ast.Node
		err error
	)
	switch {
	case e.IsStringLiteral:
		n, _ = b.ctx.Constant(b.ctx.AddConstant(e.Text, types.Str(e.Text)))
	case e.IsFunctionCall:
		n, err = b.call(e)
	default:
		n, err = b.expression(e)
	}
	if err != nil {
		return nil, err
	}
	b.built[idx] = n
	return n, nil
}

func (b *builder) call(e *ast.Entry) (ast.Node, error) {
	def, ok := functions.Lookup(e.Func)
	if !ok {
		return nil, types.Errorf(types.ErrUnknownFunction, "unknown function").WithToken(e.Func)
	}
	if len(e.Args) != def.Arity {
		return nil, types.Errorf(types.ErrArityMismatch, "%s takes %d argument(s), got %d", def.Name, def.Arity, len(e.Args)).
			WithToken(readable(e.Text))
	}
	args := make([]ast.Node, len(e.Args))
	for i, a := range e.Args {
		n, err := b.entry(a, e.Index)
		if err != nil {
			return nil, err
		}
		args[i] = n
	}
	if def.Kind == functions.KindConversion {
		return ast.NewConversion(def.Target, args[0]), nil
	}
	return ast.NewCall(def, args...), nil
}

func (b *builder) expression(e *ast.Entry) (ast.Node, error) {
	toks, err := newLexer(e.Text, b.vocab).Tokens()
	if err != nil {
		return nil, err
	}
	p := &exprParser{b: b, entry: e, toks: toks}
	n, err := p.parse(ops.TierComparison)
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.Type != TokenEOF {
		return nil, p.syntax("unexpected operator", t)
	}
	return n, nil
}

// exprParser is a precedence climbing parser over the tokens of one entry.
type exprParser struct {
	b     *builder
	entry *ast.Entry
	toks  []Token
	pos   int
}

func (p *exprParser) peek() Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return Token{Type: TokenEOF, Position: len(p.entry.Text)}
}

func (p *exprParser) advance() Token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *exprParser) syntax(msg string, t Token) *types.Error {
	return types.Errorf(types.ErrSyntax, "%s in %q", msg, readable(p.entry.Text)).WithToken(readable(t.Value))
}

// parse reads a binary expression whose operators bind at least as tight
// as minTier. Operators of one tier associate to the left.
func (p *exprParser) parse(minTier ops.Tier) (ast.Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.Type != TokenOperator || t.Binary == ops.OpInvalid {
			return left, nil
		}
		tier := t.Binary.Tier()
		if tier < minTier {
			return left, nil
		}
		p.advance()
		right, err := p.parse(tier + 1)
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(t.Binary, left, right)
	}
}

// unary reads prefix operators and one operand. Prefix operators bind
// tighter than every binary operator.
func (p *exprParser) unary() (ast.Node, error) {
	t := p.peek()
	switch {
	case t.Type == TokenEOF:
		return nil, p.syntax("missing operand", t)
	case t.Type == TokenOperator:
		if t.Unary == ops.OpInvalid {
			return nil, p.syntax("missing operand before operator", t)
		}
		p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(t.Unary, operand), nil
	}
	p.advance()
	n, err := p.operand(t)
	if err != nil {
		return nil, err
	}
	if next := p.peek(); next.isOperand() {
		return nil, p.syntax("missing operator", next)
	}
	return n, nil
}

func (p *exprParser) operand(t Token) (ast.Node, error) {
	switch t.Type {
	case TokenConst:
		c, ok := p.b.ctx.Constant(t.Ref)
		if !ok {
			return nil, types.Errorf(types.ErrInvariant, "unknown constant placeholder %d", t.Ref)
		}
		return c, nil
	case TokenItem:
		return p.b.entry(t.Ref, p.entry.Index)
	}
	return p.b.classify(t.Value)
}
