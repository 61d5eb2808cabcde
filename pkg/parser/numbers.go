package parser

import (
	"encoding/hex"
	"errors"
	"strconv"
	"strings"

	"github.com/sandrolain/goformula/pkg/types"
)

// ParseNumber parses a numeric literal token.
//
// Decimal integers become Integer values, or Numeric when they overflow
// int64; decimals with a fraction or exponent are Numeric. Hexadecimal
// (0x or &h prefix) and binary (0b prefix) literals may contain underscores
// between digit groups; up to 64 bits they are Integer, wider literals are
// ByteArray values of the written width.
//
// ok is false when the token is not numeric at all; err is set when it
// starts like a number but is malformed.
func ParseNumber(tok string) (v types.Value, ok bool, err error) {
	if tok == "" {
		return types.Value{}, false, nil
	}
	if len(tok) >= 2 {
		switch strings.ToLower(tok[:2]) {
		case "0x", "&h":
			return parseRadix(tok, tok[2:], 16)
		case "0b":
			return parseRadix(tok, tok[2:], 2)
		}
	}
	if !isDigit(rune(tok[0])) && tok[0] != '.' {
		return types.Value{}, false, nil
	}
	if isDecimalDigits(tok) {
		n, perr := strconv.ParseInt(tok, 10, 64)
		if perr == nil {
			return types.Int(n), true, nil
		}
		if !errors.Is(perr, strconv.ErrRange) {
			return types.Value{}, true, invalidLiteral(tok)
		}
	}
	f, perr := strconv.ParseFloat(tok, 64)
	if perr != nil || strings.ContainsAny(tok, "_xXpP") {
		return types.Value{}, true, invalidLiteral(tok)
	}
	return types.Float(f), true, nil
}

func invalidLiteral(tok string) *types.Error {
	return types.Errorf(types.ErrInvalidLiteral, "invalid numeric literal").WithToken(tok)
}

func isDecimalDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(rune(s[i])) {
			return false
		}
	}
	return s != ""
}

func parseRadix(tok, digits string, base int) (types.Value, bool, error) {
	if strings.HasPrefix(digits, "_") || strings.HasSuffix(digits, "_") || strings.Contains(digits, "__") {
		return types.Value{}, true, invalidLiteral(tok)
	}
	digits = strings.ReplaceAll(digits, "_", "")
	if digits == "" {
		return types.Value{}, true, invalidLiteral(tok)
	}
	valid := isHexDigit
	bitsPer := 4
	if base == 2 {
		valid = func(r rune) bool { return r == '0' || r == '1' }
		bitsPer = 1
	}
	for _, r := range digits {
		if !valid(r) {
			return types.Value{}, true, invalidLiteral(tok)
		}
	}
	if len(digits)*bitsPer <= 64 {
		u, err := strconv.ParseUint(digits, base, 64)
		if err != nil {
			return types.Value{}, true, invalidLiteral(tok)
		}
		return types.Int(int64(u)), true, nil
	}
	if base == 16 {
		if len(digits)%2 == 1 {
			digits = "0" + digits
		}
		b, err := hex.DecodeString(digits)
		if err != nil {
			return types.Value{}, true, invalidLiteral(tok)
		}
		return types.Bytes(b), true, nil
	}
	return types.Bytes(packBits(digits)), true, nil
}

// packBits packs a string of binary digits into big-endian bytes,
// left-padding to a whole number of bytes.
func packBits(digits string) []byte {
	if pad := len(digits) % 8; pad != 0 {
		digits = strings.Repeat("0", 8-pad) + digits
	}
	out := make([]byte, len(digits)/8)
	for i := range out {
		var b byte
		for _, c := range digits[i*8 : i*8+8] {
			b = b<<1 | byte(c-'0')
		}
		out[i] = b
	}
	return out
}
