package parser

import (
	"strconv"
	"strings"

	"github.com/sandrolain/goformula/pkg/ops"
)

// TokenType represents the type of a lexical token.
type TokenType uint8

const (
	TokenEOF TokenType = iota

	TokenAtom     // identifier or literal text: x, 42, 0xFF, true
	TokenConst    // constant pool placeholder
	TokenItem     // symbol table placeholder
	TokenOperator // operator symbol or keyword
)

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "(eof)"
	case TokenAtom:
		return "(atom)"
	case TokenConst:
		return "(constant)"
	case TokenItem:
		return "(item)"
	case TokenOperator:
		return "(operator)"
	}
	return "(unknown)"
}

// Token is a lexical token of a flattened sub-expression.
type Token struct {
	Type     TokenType
	Value    string
	Position int
	// Ref is the placeholder index of TokenConst and TokenItem.
	Ref int
	// Binary and Unary are the operators a TokenOperator spells; either may
	// be ops.OpInvalid.
	Binary ops.Op
	Unary  ops.Op
}

// isOperand reports whether the token starts an operand.
func (t Token) isOperand() bool {
	return t.Type == TokenAtom || t.Type == TokenConst || t.Type == TokenItem
}

// Placeholders use private-use runes so they can never collide with
// expression text: markConst/markItem, the decimal index, markEnd.
const (
	markConst = '\uE000'
	markItem  = '\uE001'
	markEnd   = '\uE002'
)

func isMarker(r rune) bool {
	return r == markConst || r == markItem || r == markEnd
}

func constRef(i int) string {
	return string(markConst) + strconv.Itoa(i) + string(markEnd)
}

func itemRef(i int) string {
	return string(markItem) + strconv.Itoa(i) + string(markEnd)
}

// readable replaces placeholders with their generated names, for error
// messages.
func readable(s string) string {
	if !strings.ContainsFunc(s, isMarker) {
		return s
	}
	r := strings.NewReplacer(string(markConst), "Const", string(markItem), "item", string(markEnd), "")
	return r.Replace(s)
}
