package parser

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sandrolain/goformula/pkg/ops"
	"github.com/sandrolain/goformula/pkg/symbols"
	"github.com/sandrolain/goformula/pkg/types"
)

const eof = -1

// opSpelling is what one operator symbol can mean.
type opSpelling struct {
	binary, unary ops.Op
}

// vocabulary is the operator view of a symbol configuration the lexer
// works with.
type vocabulary struct {
	cfg *symbols.Config
	// punct holds the non-keyword symbols, longest first.
	punct []string
	// spell maps symbols to their operators; keywords are lower-cased.
	spell map[string]opSpelling
}

func newVocabulary(cfg *symbols.Config) *vocabulary {
	v := &vocabulary{cfg: cfg, spell: map[string]opSpelling{}}
	for _, s := range cfg.OperatorSymbols() {
		key := s.Text
		if s.Word {
			key = strings.ToLower(key)
		}
		sp, seen := v.spell[key]
		if s.Unary {
			sp.unary = s.Op
		} else {
			sp.binary = s.Op
		}
		v.spell[key] = sp
		if !s.Word && !seen {
			v.punct = append(v.punct, s.Text)
		}
	}
	return v
}

// keyword returns the operators of a keyword spelling.
func (v *vocabulary) keyword(word string) (opSpelling, bool) {
	if !symbols.IsWord(word) {
		return opSpelling{}, false
	}
	sp, ok := v.spell[strings.ToLower(word)]
	return sp, ok
}

// Lexer splits a flattened sub-expression into tokens.
// The implementation is based on Rob Pike's "Lexical Scanning in Go" technique.
type Lexer struct {
	input   string // Input string being scanned
	length  int    // Length of input string
	start   int    // Start position of current token
	current int    // Current position in input
	width   int    // Width of last rune read
	vocab   *vocabulary

	// afterOperand is set once the previous token ended an operand; a
	// hex prefix like &h is only recognised where an operand may start.
	afterOperand bool
}

// NewLexer creates a new lexer for input using the operators of cfg.
func NewLexer(input string, cfg *symbols.Config) *Lexer {
	return newLexer(input, newVocabulary(cfg))
}

func newLexer(input string, vocab *vocabulary) *Lexer {
	return &Lexer{
		input:  input,
		length: len(input),
		vocab:  vocab,
	}
}

// Next returns the next token from the input. When the end of the input is
// reached, Next returns TokenEOF for all subsequent calls.
func (l *Lexer) Next() (Token, error) {
	l.acceptAll(isSpace)
	l.ignore()

	ch := l.nextRune()
	if ch == eof {
		return l.newToken(TokenEOF), nil
	}

	if ch == markConst || ch == markItem {
		return l.scanPlaceholder(ch)
	}

	if !l.afterOperand && ch == '&' && l.peekHexPrefix() {
		l.nextRune() // h
		l.acceptAll(symbols.IsIdentRune)
		return l.operand(TokenAtom), nil
	}

	if symbols.IsIdentRune(ch) {
		l.backup()
		return l.scanWord(), nil
	}

	l.backup()
	rest := l.input[l.current:]
	for _, sym := range l.vocab.punct {
		if strings.HasPrefix(rest, sym) {
			l.current += len(sym)
			sp := l.vocab.spell[sym]
			return l.operator(sp), nil
		}
	}
	l.nextRune()
	return Token{}, l.error(types.ErrSyntax, "unexpected character")
}

// Tokens returns all remaining tokens, without the final TokenEOF.
func (l *Lexer) Tokens() ([]Token, error) {
	var out []Token
	for {
		t, err := l.Next()
		if err != nil {
			return nil, err
		}
		if t.Type == TokenEOF {
			return out, nil
		}
		out = append(out, t)
	}
}

func (l *Lexer) scanPlaceholder(kind rune) (Token, error) {
	l.acceptAll(isDigit)
	digits := l.input[l.start+utf8.RuneLen(kind) : l.current]
	if !l.acceptRune(markEnd) || digits == "" {
		return Token{}, l.error(types.ErrInvariant, "malformed placeholder")
	}
	ref, err := strconv.Atoi(digits)
	if err != nil {
		return Token{}, l.error(types.ErrInvariant, "malformed placeholder")
	}
	tt := TokenConst
	if kind == markItem {
		tt = TokenItem
	}
	t := l.operand(tt)
	t.Ref = ref
	return t, nil
}

// scanWord reads an identifier run: a parameter name, a literal or a
// keyword operator. A decimal mantissa ending in e or E followed by a sign
// keeps the signed exponent in the same token.
func (l *Lexer) scanWord() Token {
	l.acceptAll(symbols.IsIdentRune)
	word := l.input[l.start:l.current]
	if mark := l.current; hasOpenExponent(word) && l.acceptRunes2('+', '-') {
		if l.accept(isDigit) {
			l.acceptAll(symbols.IsIdentRune)
			word = l.input[l.start:l.current]
		} else {
			l.current = mark
		}
	}
	if sp, ok := l.vocab.keyword(word); ok {
		return l.operator(sp)
	}
	return l.operand(TokenAtom)
}

// hasOpenExponent reports whether s looks like 1.5e or 2E, waiting for a
// signed exponent.
func hasOpenExponent(s string) bool {
	n := len(s)
	if n < 2 || (s[n-1] != 'e' && s[n-1] != 'E') {
		return false
	}
	if !isDigit(rune(s[0])) && s[0] != '.' {
		return false
	}
	digits := false
	for i := 0; i < n-1; i++ {
		switch {
		case isDigit(rune(s[i])):
			digits = true
		case s[i] == '.':
		default:
			return false
		}
	}
	return digits
}

func (l *Lexer) peekHexPrefix() bool {
	rest := l.input[l.current:]
	if len(rest) < 2 || (rest[0] != 'h' && rest[0] != 'H') {
		return false
	}
	return isHexDigit(rune(rest[1]))
}

func (l *Lexer) operand(tt TokenType) Token {
	t := l.newToken(tt)
	l.afterOperand = true
	return t
}

func (l *Lexer) operator(sp opSpelling) Token {
	t := l.newToken(TokenOperator)
	t.Binary = sp.binary
	t.Unary = sp.unary
	l.afterOperand = false
	return t
}

func (l *Lexer) error(code types.ErrorCode, message string) *types.Error {
	return types.NewError(code, message, l.start).WithToken(readable(l.input[l.start:l.current]))
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{
		Type:     tt,
		Value:    l.input[l.start:l.current],
		Position: l.start,
	}
	l.width = 0
	l.start = l.current
	return t
}

func (l *Lexer) nextRune() rune {
	if l.current >= l.length {
		l.width = 0
		return eof
	}

	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool {
		return c == r
	})
}

func (l *Lexer) acceptRunes2(r1, r2 rune) bool {
	return l.accept(func(c rune) bool {
		return c == r1 || c == r2
	})
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

// Character classification functions

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
