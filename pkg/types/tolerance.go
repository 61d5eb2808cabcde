package types

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ToleranceKind selects how a Tolerance widens numeric equality.
type ToleranceKind uint8

// Tolerance kinds.
const (
	// ToleranceAbsolute treats a and b as equal when |a-b| <= Amount.
	ToleranceAbsolute ToleranceKind = iota + 1
	// ToleranceProportional treats a and b as equal when |a-b| <= Amount% of max(|a|,|b|).
	ToleranceProportional
	// ToleranceIntegerRange treats a and b as equal when |a-b| <= Range.
	ToleranceIntegerRange
)

// Tolerance configures tolerant numeric comparisons. A nil *Tolerance means
// exact comparison.
type Tolerance struct {
	Kind   ToleranceKind
	Amount float64
	Range  int64
}

// Absolute returns an absolute-range tolerance.
func Absolute(amount float64) *Tolerance {
	return &Tolerance{Kind: ToleranceAbsolute, Amount: math.Abs(amount)}
}

// Proportional returns a tolerance of percent % of the larger magnitude.
func Proportional(percent float64) *Tolerance {
	return &Tolerance{Kind: ToleranceProportional, Amount: math.Abs(percent)}
}

// IntegerRange returns an integer-range tolerance.
func IntegerRange(r int64) *Tolerance {
	if r < 0 {
		r = -r
	}
	return &Tolerance{Kind: ToleranceIntegerRange, Range: r}
}

// IsEmpty reports whether t degenerates to exact comparison.
func (t *Tolerance) IsEmpty() bool {
	if t == nil {
		return true
	}
	switch t.Kind {
	case ToleranceAbsolute, ToleranceProportional:
		return t.Amount == 0
	case ToleranceIntegerRange:
		return t.Range == 0
	}
	return true
}

// FloatEqual reports whether a and b are equal under t.
func (t *Tolerance) FloatEqual(a, b float64) bool {
	if t.IsEmpty() {
		return a == b
	}
	d := math.Abs(a - b)
	switch t.Kind {
	case ToleranceAbsolute:
		return d <= t.Amount
	case ToleranceProportional:
		return d <= math.Max(math.Abs(a), math.Abs(b))*t.Amount/100
	case ToleranceIntegerRange:
		return d <= float64(t.Range)
	}
	return a == b
}

// IntEqual reports whether a and b are equal under t.
func (t *Tolerance) IntEqual(a, b int64) bool {
	if t.IsEmpty() {
		return a == b
	}
	if t.Kind == ToleranceIntegerRange {
		var d uint64
		if a >= b {
			d = uint64(a) - uint64(b)
		} else {
			d = uint64(b) - uint64(a)
		}
		return d <= uint64(t.Range)
	}
	return t.FloatEqual(float64(a), float64(b))
}

// String formats t in the form accepted by ParseTolerance.
func (t *Tolerance) String() string {
	if t.IsEmpty() {
		return "exact"
	}
	switch t.Kind {
	case ToleranceAbsolute:
		return "abs:" + strconv.FormatFloat(t.Amount, 'g', -1, 64)
	case ToleranceProportional:
		return "pct:" + strconv.FormatFloat(t.Amount, 'g', -1, 64)
	case ToleranceIntegerRange:
		return "int:" + strconv.FormatInt(t.Range, 10)
	}
	return "exact"
}

// ParseTolerance parses "abs:<float>", "pct:<float>", "int:<int>" or
// "exact"/"" (nil tolerance).
func ParseTolerance(s string) (*Tolerance, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "exact") {
		return nil, nil
	}
	kind, amount, ok := strings.Cut(s, ":")
	if !ok {
		return nil, errors.Errorf("invalid tolerance %q: expected <kind>:<amount>", s)
	}
	switch strings.ToLower(kind) {
	case "abs", "absolute":
		f, err := strconv.ParseFloat(amount, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid absolute tolerance %q", amount)
		}
		return Absolute(f), nil
	case "pct", "percent", "proportional":
		f, err := strconv.ParseFloat(strings.TrimSuffix(amount, "%"), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid proportional tolerance %q", amount)
		}
		return Proportional(f), nil
	case "int", "integer":
		n, err := strconv.ParseInt(amount, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid integer tolerance %q", amount)
		}
		return IntegerRange(n), nil
	}
	return nil, errors.Errorf("unknown tolerance kind %q", kind)
}
