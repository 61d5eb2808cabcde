// Package parser turns formula text into a syntax tree.
//
// # Architecture
//
// The parser consists of three main components:
//   - Extractor: replaces string literals, plugin constants and bracketed
//     named constants with placeholders, then flattens parenthesised groups
//     and call argument lists into a symbol table of sub-expressions
//   - Lexer: tokenizes one flattened sub-expression, matching operator
//     symbols longest first
//   - Builder: binds tokens by precedence climbing and classifies atoms as
//     constants or parameters
//
// Every delimiter and operator symbol comes from a symbols.Config, so the
// grammar is reconfigurable without touching this package.
//
// # Example
//
//	ctx, root, err := parser.Parse("(sqrt(16)+1)*4-max(20,13)", parser.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(ast.String(root))
package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/sandrolain/goformula/pkg/ast"
	"github.com/sandrolain/goformula/pkg/functions"
	"github.com/sandrolain/goformula/pkg/symbols"
)

// Config holds parser configuration.
type Config struct {
	// Symbols is the vocabulary; nil means symbols.Default().
	Symbols *symbols.Config
	// Extractors claim constants in the raw text before tokenization.
	Extractors []functions.ConstantExtractor
	// Interpreters claim isolated tokens and bracketed names as constants.
	Interpreters []functions.ConstantInterpreter
	// StringFallback takes multi-word text without any operator, delimiter
	// or literal as one string constant.
	StringFallback bool
	// FuncParams names the parameters bound to zero-argument callables.
	FuncParams []string
}

// Parse extracts, classifies and builds text into a syntax tree. The
// returned Context holds the symbol table, the constant pool and the
// parameter registry of this compilation.
func Parse(text string, cfg Config) (*ast.Context, ast.Node, error) {
	if cfg.Symbols == nil {
		cfg.Symbols = symbols.Default()
	}
	ctx := ast.NewContext(text, cfg.Symbols, cfg.FuncParams...)
	if err := newExtractor(ctx, &cfg).run(); err != nil {
		return nil, nil, err
	}
	root, err := newBuilder(ctx, &cfg).root()
	if err != nil {
		return nil, nil, err
	}
	return ctx, root, nil
}

// Normalize returns text trimmed and with insignificant whitespace removed
// outside string literals. Texts with the same normal form compile to the
// same expression.
func Normalize(text string, cfg *symbols.Config) string {
	if cfg == nil {
		cfg = symbols.Default()
	}
	text = strings.TrimSpace(text)
	quote, _ := utf8.DecodeRuneInString(cfg.StringIndicator)
	var sb strings.Builder
	sb.Grow(len(text))
	inString := false
	segment := 0
	for i, r := range text {
		if r != quote {
			continue
		}
		if !inString {
			sb.WriteString(normalizeSpace(text[segment:i]))
			segment = i
		} else {
			sb.WriteString(text[segment : i+utf8.RuneLen(r)])
			segment = i + utf8.RuneLen(r)
		}
		inString = !inString
	}
	if inString {
		sb.WriteString(text[segment:])
	} else {
		sb.WriteString(normalizeSpace(text[segment:]))
	}
	return sb.String()
}
