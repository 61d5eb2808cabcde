// Package symbols holds the configurable vocabulary of the formula
// language: operator symbols, delimiters, boolean words and named constants.
//
// The parser treats everything here as data. A Config can be built in code,
// starting from Default, or loaded from YAML:
//
//	string_indicator: "'"
//	operators:
//	  and: ["&&", "and"]
//	constants:
//	  answer: 42
package symbols

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sandrolain/goformula/pkg/ops"
	"github.com/sandrolain/goformula/pkg/types"
)

// Config is the symbol configuration of the language.
type Config struct {
	// StringIndicator delimits string literals; doubled inside a literal it
	// stands for itself.
	StringIndicator string `yaml:"string_indicator"`
	ParenOpen       string `yaml:"paren_open"`
	ParenClose      string `yaml:"paren_close"`
	// Separator splits function-call arguments.
	Separator string `yaml:"separator"`
	// ConstantOpen and ConstantClose bracket named constants, as in [pi].
	ConstantOpen  string `yaml:"constant_open"`
	ConstantClose string `yaml:"constant_close"`

	TrueWords  []string `yaml:"true_words"`
	FalseWords []string `yaml:"false_words"`

	// Operators maps operator names (see ops.ByName) to their symbols.
	Operators map[string][]string `yaml:"operators"`

	// Constants adds or overrides named constants. Values may be integers,
	// floats, booleans or strings.
	Constants map[string]any `yaml:"constants"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		StringIndicator: `"`,
		ParenOpen:       "(",
		ParenClose:      ")",
		Separator:       ",",
		ConstantOpen:    "[",
		ConstantClose:   "]",
		TrueWords:       []string{"true"},
		FalseWords:      []string{"false"},
		Operators: map[string][]string{
			"equal":         {"=", "=="},
			"not_equal":     {"<>", "!="},
			"less":          {"<"},
			"greater":       {">"},
			"less_equal":    {"<="},
			"greater_equal": {">="},
			"or":            {"|", "||", "or"},
			"xor":           {"xor"},
			"and":           {"&", "&&", "and"},
			"add":           {"+"},
			"subtract":      {"-"},
			"multiply":      {"*"},
			"divide":        {"/"},
			"int_divide":    {`\`},
			"modulo":        {"%", "mod"},
			"power":         {"^", "**"},
			"shift_left":    {"<<"},
			"shift_right":   {">>"},
			"negate":        {"-"},
			"plus":          {"+"},
			"not":           {"!", "not"},
			"invert":        {"~"},
		},
	}
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.TrueWords = append([]string(nil), c.TrueWords...)
	out.FalseWords = append([]string(nil), c.FalseWords...)
	out.Operators = make(map[string][]string, len(c.Operators))
	for k, v := range c.Operators {
		out.Operators[k] = append([]string(nil), v...)
	}
	if c.Constants != nil {
		out.Constants = make(map[string]any, len(c.Constants))
		for k, v := range c.Constants {
			out.Constants[k] = v
		}
	}
	return &out
}

// Parse decodes YAML and merges it onto the default configuration.
// Operators listed in the document replace the default symbols of that
// operator; the others keep their defaults.
func Parse(data []byte) (*Config, error) {
	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, errors.Wrap(err, "decoding symbol configuration")
	}
	cfg := Default().Merge(&overlay)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses a YAML symbol configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path supplied by the caller
	if err != nil {
		return nil, errors.Wrapf(err, "reading symbol configuration %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return cfg, nil
}

// Merge returns a copy of c with every non-empty field of o applied.
func (c *Config) Merge(o *Config) *Config {
	out := c.Clone()
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&out.StringIndicator, o.StringIndicator)
	set(&out.ParenOpen, o.ParenOpen)
	set(&out.ParenClose, o.ParenClose)
	set(&out.Separator, o.Separator)
	set(&out.ConstantOpen, o.ConstantOpen)
	set(&out.ConstantClose, o.ConstantClose)
	if len(o.TrueWords) > 0 {
		out.TrueWords = append([]string(nil), o.TrueWords...)
	}
	if len(o.FalseWords) > 0 {
		out.FalseWords = append([]string(nil), o.FalseWords...)
	}
	for k, v := range o.Operators {
		out.Operators[strings.ToLower(k)] = append([]string(nil), v...)
	}
	if len(o.Constants) > 0 && out.Constants == nil {
		out.Constants = make(map[string]any, len(o.Constants))
	}
	for k, v := range o.Constants {
		out.Constants[k] = v
	}
	return out
}

func invalid(format string, args ...any) error {
	return types.Errorf(types.ErrInvalidSymbolConf, format, args...)
}

// Validate checks the configuration for unusable or ambiguous symbols.
func (c *Config) Validate() error {
	delims := map[string]string{
		"string_indicator": c.StringIndicator,
		"paren_open":       c.ParenOpen,
		"paren_close":      c.ParenClose,
		"separator":        c.Separator,
		"constant_open":    c.ConstantOpen,
		"constant_close":   c.ConstantClose,
	}
	seen := map[string]string{}
	for _, name := range []string{"string_indicator", "paren_open", "paren_close", "separator", "constant_open", "constant_close"} {
		d := delims[name]
		if utf8.RuneCountInString(d) != 1 {
			return invalid("%s must be a single character, got %q", name, d)
		}
		r, _ := utf8.DecodeRuneInString(d)
		if IsIdentRune(r) || r == ' ' {
			return invalid("%s cannot be an identifier character or space: %q", name, d)
		}
		if other, ok := seen[d]; ok {
			return invalid("%s and %s share the symbol %q", name, other, d)
		}
		seen[d] = name
	}
	if len(c.TrueWords) == 0 || len(c.FalseWords) == 0 {
		return invalid("true_words and false_words must not be empty")
	}
	for name, syms := range c.Operators {
		op, ok := ops.ByName(name)
		if !ok {
			return invalid("unknown operator %q", name)
		}
		for _, s := range syms {
			if strings.TrimSpace(s) == "" || strings.ContainsAny(s, " \t\r\n") {
				return invalid("operator %s has an empty or blank symbol %q", op, s)
			}
			for _, d := range delims {
				if strings.Contains(s, d) {
					return invalid("operator %s symbol %q contains delimiter %q", op, s, d)
				}
			}
			if IsWord(s) && !isLetterWord(s) {
				return invalid("operator %s symbol %q mixes digits into a keyword", op, s)
			}
		}
	}
	for _, op := range ops.All() {
		if len(c.Operators[op.String()]) == 0 {
			return invalid("operator %s has no symbol", op)
		}
	}
	for name := range c.Constants {
		if name == "" {
			return invalid("empty constant name")
		}
	}
	return nil
}

// Symbol is one operator spelling.
type Symbol struct {
	Text  string
	Op    ops.Op
	Word  bool // keyword operators match only at identifier boundaries
	Unary bool
}

// OperatorSymbols returns every operator spelling sorted longest first, so
// that a scanner trying them in order always makes the longest match.
func (c *Config) OperatorSymbols() []Symbol {
	var out []Symbol
	for name, syms := range c.Operators {
		op, ok := ops.ByName(name)
		if !ok {
			continue
		}
		for _, s := range syms {
			out = append(out, Symbol{Text: s, Op: op, Word: IsWord(s), Unary: op.IsUnary()})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(out[i].Text), utf8.RuneCountInString(out[j].Text)
		if li != lj {
			return li > lj
		}
		if out[i].Text != out[j].Text {
			return out[i].Text < out[j].Text
		}
		// binary before unary for shared spellings
		return !out[i].Unary && out[j].Unary
	})
	return out
}

// IsKeyword reports whether s (case-insensitively) is a keyword operator.
func (c *Config) IsKeyword(s string) bool {
	for _, syms := range c.Operators {
		for _, sym := range syms {
			if IsWord(sym) && strings.EqualFold(sym, s) {
				return true
			}
		}
	}
	return false
}

// BoolWord classifies s as a boolean word.
func (c *Config) BoolWord(s string) (value bool, ok bool) {
	for _, w := range c.TrueWords {
		if strings.EqualFold(w, s) {
			return true, true
		}
	}
	for _, w := range c.FalseWords {
		if strings.EqualFold(w, s) {
			return false, true
		}
	}
	return false, false
}

// LookupConstant resolves a named constant, configured constants first.
func (c *Config) LookupConstant(name string) (types.Value, bool, error) {
	for k, v := range c.Constants {
		if strings.EqualFold(k, name) {
			val, err := constantValue(v)
			if err != nil {
				return types.Value{}, false, errors.Wrapf(err, "constant %s", k)
			}
			return val, true, nil
		}
	}
	v, ok := builtinConstants[strings.ToLower(name)]
	return v, ok, nil
}

func constantValue(v any) (types.Value, error) {
	switch x := v.(type) {
	case int:
		return types.Int(int64(x)), nil
	case int64:
		return types.Int(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return types.Float(float64(x)), nil
		}
		return types.Int(int64(x)), nil
	case float64:
		return types.Float(x), nil
	case bool:
		return types.Bool(x), nil
	case string:
		return types.Str(x), nil
	case []byte:
		return types.Bytes(x), nil
	}
	return types.Value{}, fmt.Errorf("unsupported constant value %v (%T)", v, v)
}

var builtinConstants = map[string]types.Value{
	"pi":     types.Float(math.Pi),
	"e":      types.Float(math.E),
	"tau":    types.Float(2 * math.Pi),
	"phi":    types.Float(math.Phi),
	"sqrt2":  types.Float(math.Sqrt2),
	"ln2":    types.Float(math.Ln2),
	"ln10":   types.Float(math.Ln10),
	"maxint": types.Int(math.MaxInt64),
	"minint": types.Int(math.MinInt64),
	"inf":    types.Float(math.Inf(1)),
	"nan":    types.Float(math.NaN()),
}

// IsIdentRune reports whether r can appear inside an identifier.
func IsIdentRune(r rune) bool {
	return r == '_' || r == '.' || r == '$' || r == '@' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
		(r > utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)))
}

// IsWord reports whether s consists of identifier characters only.
func IsWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !IsIdentRune(r) {
			return false
		}
	}
	return true
}

func isLetterWord(s string) bool {
	for _, r := range s {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r > utf8.RuneSelf && unicode.IsLetter(r))) {
			return false
		}
	}
	return true
}
