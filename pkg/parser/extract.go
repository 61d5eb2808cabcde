package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sandrolain/goformula/pkg/ast"
	"github.com/sandrolain/goformula/pkg/symbols"
	"github.com/sandrolain/goformula/pkg/types"
)

// extractor flattens the raw text into the symbol table of a Context.
//
// Work happens in passes over the text: string literals, plugin constants,
// whitespace, bracketed named constants and finally parenthesised groups
// and call argument lists. Every pass replaces what it consumed with a
// placeholder, so later passes never look inside literals.
type extractor struct {
	ctx  *ast.Context
	cfg  *symbols.Config
	opts *Config

	quote, open, close, sep, constOpen, constClose rune
}

func newExtractor(ctx *ast.Context, opts *Config) *extractor {
	cfg := ctx.Symbols
	first := func(s string) rune {
		r, _ := utf8.DecodeRuneInString(s)
		return r
	}
	return &extractor{
		ctx:        ctx,
		cfg:        cfg,
		opts:       opts,
		quote:      first(cfg.StringIndicator),
		open:       first(cfg.ParenOpen),
		close:      first(cfg.ParenClose),
		sep:        first(cfg.Separator),
		constOpen:  first(cfg.ConstantOpen),
		constClose: first(cfg.ConstantClose),
	}
}

func (x *extractor) run() error {
	text := strings.TrimSpace(x.ctx.Source)
	if text == "" {
		return types.NewError(types.ErrEmptyExpression, "empty expression", 0)
	}
	if x.opts.StringFallback && x.isPlainText(text) {
		x.ctx.RootConst = x.ctx.AddConstant(text, types.Str(text))
		return nil
	}

	var err error
	if text, err = x.literals(text); err != nil {
		return err
	}
	if text, err = x.plugins(text); err != nil {
		return err
	}
	text = normalizeSpace(text)
	if text, err = x.namedConstants(text); err != nil {
		return err
	}
	root, err := x.flatten(text)
	if err != nil {
		return err
	}
	x.ctx.Root = root.Index
	return nil
}

// isPlainText reports whether text is prose the parser should take as a
// single string constant: several words, and nothing the grammar knows.
func (x *extractor) isPlainText(text string) bool {
	if !strings.ContainsFunc(text, unicode.IsSpace) {
		return false
	}
	if strings.ContainsFunc(text, func(r rune) bool {
		return r == x.quote || r == x.open || r == x.close || r == x.sep || r == x.constOpen || r == x.constClose || isMarker(r)
	}) {
		return false
	}
	for _, sym := range x.cfg.OperatorSymbols() {
		if !sym.Word && strings.Contains(text, sym.Text) {
			return false
		}
	}
	for _, word := range strings.FieldsFunc(text, func(r rune) bool { return !symbols.IsIdentRune(r) }) {
		if x.cfg.IsKeyword(word) {
			return false
		}
	}
	return true
}

// literals replaces every string literal by a placeholder. A doubled
// indicator inside a literal stands for the indicator itself.
func (x *extractor) literals(text string) (string, error) {
	if !strings.ContainsRune(text, x.quote) {
		return text, nil
	}
	var out, lit strings.Builder
	q := string(x.quote)
	for i := 0; i < len(text); {
		r, w := utf8.DecodeRuneInString(text[i:])
		if r != x.quote {
			out.WriteRune(r)
			i += w
			continue
		}
		start := i
		i += w
		lit.Reset()
		closed := false
		for i < len(text) {
			c, cw := utf8.DecodeRuneInString(text[i:])
			i += cw
			if c != x.quote {
				lit.WriteRune(c)
				continue
			}
			if strings.HasPrefix(text[i:], q) {
				lit.WriteString(q)
				i += len(q)
				continue
			}
			closed = true
			break
		}
		if !closed {
			return "", types.NewError(types.ErrStringNotClosed, "string literal is not closed", start).
				WithToken(text[start:])
		}
		e := x.ctx.AddEntry(ast.Entry{Text: lit.String(), IsStringLiteral: true})
		out.WriteString(itemRef(e.Index))
	}
	return out.String(), nil
}

// plugins lets every constant extractor claim substrings, repeatedly, until
// it claims nothing more.
func (x *extractor) plugins(text string) (string, error) {
	for _, ex := range x.opts.Extractors {
		for guard := len(text); guard >= 0; guard-- {
			v, start, length, ok := ex.Extract(text, x.cfg)
			if !ok {
				break
			}
			if start < 0 || length <= 0 || start+length > len(text) {
				return "", types.NewError(types.ErrInvalidLiteral, "constant extractor claimed an invalid range", start)
			}
			i := x.ctx.AddConstant(text[start:start+length], v)
			text = text[:start] + constRef(i) + text[start+length:]
		}
	}
	return text, nil
}

// atomRune reports whether r belongs to an operand: identifiers, literals
// and placeholders.
func atomRune(r rune) bool {
	return symbols.IsIdentRune(r) || isMarker(r)
}

// normalizeSpace removes whitespace, keeping a single space between two
// operand characters so that "a b" is not read as "ab".
func normalizeSpace(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	pending := false
	var prev rune
	for _, r := range text {
		if unicode.IsSpace(r) {
			pending = true
			continue
		}
		if pending && prev != 0 && atomRune(prev) && atomRune(r) {
			sb.WriteByte(' ')
		}
		pending = false
		sb.WriteRune(r)
		prev = r
	}
	return sb.String()
}

// namedConstants resolves bracketed names like [pi]: configured constants
// and built-ins first, then the constant interpreters.
func (x *extractor) namedConstants(text string) (string, error) {
	if !strings.ContainsRune(text, x.constOpen) && !strings.ContainsRune(text, x.constClose) {
		return text, nil
	}
	open, closing := string(x.constOpen), string(x.constClose)
	var out strings.Builder
	for {
		i := strings.Index(text, open)
		j := strings.Index(text, closing)
		if i < 0 {
			if j >= 0 {
				return "", types.NewError(types.ErrSyntax, "named constant closed but never opened", j).WithToken(readable(text[j:]))
			}
			out.WriteString(text)
			return out.String(), nil
		}
		if j >= 0 && j < i {
			return "", types.NewError(types.ErrSyntax, "named constant closed but never opened", j).WithToken(readable(text[j:]))
		}
		end := strings.Index(text[i+len(open):], closing)
		if end < 0 {
			return "", types.NewError(types.ErrSyntax, "named constant is not closed", i).WithToken(readable(text[i:]))
		}
		raw := text[i : i+len(open)+end+len(closing)]
		name := strings.TrimSpace(text[i+len(open) : i+len(open)+end])
		v, err := x.lookupConstant(name, i)
		if err != nil {
			return "", err
		}
		out.WriteString(text[:i])
		out.WriteString(constRef(x.ctx.AddConstant(raw, v)))
		text = text[i+len(raw):]
	}
}

func (x *extractor) lookupConstant(name string, pos int) (types.Value, error) {
	if name == "" || !symbols.IsWord(name) {
		return types.Value{}, types.NewError(types.ErrUnknownConstant, "invalid constant name", pos).WithToken(readable(name))
	}
	v, ok, err := x.cfg.LookupConstant(name)
	if err != nil {
		return types.Value{}, types.NewError(types.ErrInvalidSymbolConf, "unusable configured constant", pos).
			WithToken(name).WithCause(err)
	}
	if ok {
		return v, nil
	}
	for _, it := range x.opts.Interpreters {
		if v, ok := it.Interpret(name); ok {
			return v, nil
		}
	}
	return types.Value{}, types.NewError(types.ErrUnknownConstant, "unknown named constant", pos).WithToken(name)
}

type flattenMode uint8

const (
	modeTop flattenMode = iota
	modeGroup
	modeArg
)

// flattener resolves parentheses by recursive descent over the rune view
// of the text. Each group and each call argument becomes a symbol table
// entry; the entries reference each other only through placeholders.
type flattener struct {
	x   *extractor
	src []rune
	pos int
}

func (x *extractor) flatten(text string) (*ast.Entry, error) {
	f := &flattener{x: x, src: []rune(text)}
	body, _, err := f.sequence(modeTop, -1)
	if err != nil {
		return nil, err
	}
	if body == "" {
		return nil, types.NewError(types.ErrEmptyExpression, "empty expression", 0)
	}
	return x.ctx.AddEntry(ast.Entry{Text: body}), nil
}

// sequence reads up to the terminator of mode m and returns the flattened
// text together with the terminating rune.
func (f *flattener) sequence(m flattenMode, openedAt int) (string, rune, error) {
	var buf []rune
	for f.pos < len(f.src) {
		r := f.src[f.pos]
		switch r {
		case f.x.open:
			at := f.pos
			f.pos++
			ref, cut, err := f.parenthesis(buf, at)
			if err != nil {
				return "", 0, err
			}
			buf = append(buf[:cut], []rune(ref)...)
		case f.x.close:
			if m == modeTop {
				return "", 0, types.NewError(types.ErrUnbalancedParens, "closing parenthesis without opening", f.pos).
					WithToken(string(r))
			}
			f.pos++
			return string(buf), r, nil
		case f.x.sep:
			if m != modeArg {
				return "", 0, types.NewError(types.ErrMisplacedSep, "separator outside a function call", f.pos).
					WithToken(string(r))
			}
			f.pos++
			return string(buf), r, nil
		default:
			buf = append(buf, r)
			f.pos++
		}
	}
	if m != modeTop {
		return "", 0, types.NewError(types.ErrUnbalancedParens, "opening parenthesis without closing", openedAt).
			WithToken(string(f.x.open))
	}
	return string(buf), 0, nil
}

// parenthesis handles the group or call opened at position at. It returns
// the placeholder to append and how much of buf to keep: a call consumes
// the function name at the end of buf.
func (f *flattener) parenthesis(buf []rune, at int) (string, int, error) {
	name, cut := f.callee(buf)
	if name == "" {
		inner, _, err := f.sequence(modeGroup, at)
		if err != nil {
			return "", 0, err
		}
		if inner == "" {
			return "", 0, types.NewError(types.ErrEmptyGroup, "empty parentheses", at)
		}
		e := f.x.ctx.AddEntry(ast.Entry{Text: inner})
		return itemRef(e.Index), len(buf), nil
	}

	var args []int
	if f.pos < len(f.src) && f.src[f.pos] == f.x.close {
		f.pos++
	} else {
		for {
			arg, term, err := f.sequence(modeArg, at)
			if err != nil {
				return "", 0, err
			}
			if arg == "" {
				return "", 0, types.NewError(types.ErrEmptyGroup, "empty function argument", f.pos-1).WithToken(name)
			}
			args = append(args, f.x.ctx.AddEntry(ast.Entry{Text: arg}).Index)
			if term == f.x.close {
				break
			}
		}
	}
	e := f.x.ctx.AddEntry(ast.Entry{
		Text:           callText(name, args, f.x.cfg),
		IsFunctionCall: true,
		Func:           name,
		Args:           args,
	})
	return itemRef(e.Index), cut, nil
}

// callee returns the function name ending buf, if any, and the length of
// buf without it. A name starts with a letter or underscore and is not a
// keyword operator.
func (f *flattener) callee(buf []rune) (string, int) {
	k := len(buf)
	for k > 0 && symbols.IsIdentRune(buf[k-1]) {
		k--
	}
	if k == len(buf) {
		return "", len(buf)
	}
	if first := buf[k]; first != '_' && !unicode.IsLetter(first) {
		return "", len(buf)
	}
	name := string(buf[k:])
	if f.x.cfg.IsKeyword(name) {
		return "", len(buf)
	}
	return name, k
}

func callText(name string, args []int, cfg *symbols.Config) string {
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteString(cfg.ParenOpen)
	for i, a := range args {
		if i > 0 {
			sb.WriteString(cfg.Separator)
		}
		sb.WriteString(itemRef(a))
	}
	sb.WriteString(cfg.ParenClose)
	return sb.String()
}
