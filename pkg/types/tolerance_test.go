package types

import (
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTolerance(t *testing.T) {
	tests := []struct {
		in   string
		want *Tolerance
	}{
		{"", nil},
		{"exact", nil},
		{"abs:0.01", Absolute(0.01)},
		{"pct:5%", Proportional(5)},
		{"Percent:2", Proportional(2)},
		{"int:3", IntegerRange(3)},
		{" integer:-2 ", IntegerRange(2)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTolerance(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseToleranceErrors(t *testing.T) {
	tests := []struct {
		in      string
		msg     string
		numeric bool
	}{
		{"wide", `invalid tolerance "wide": expected <kind>:<amount>`, false},
		{"rel:1", `unknown tolerance kind "rel"`, false},
		{"abs:x", `invalid absolute tolerance "x"`, true},
		{"int:1.5", `invalid integer tolerance "1.5"`, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ParseTolerance(tt.in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)

			var numErr *strconv.NumError
			assert.Equal(t, tt.numeric, errors.As(errors.Cause(err), &numErr))
		})
	}
}

func TestToleranceRoundTrip(t *testing.T) {
	for _, tol := range []*Tolerance{Absolute(0.5), Proportional(1), IntegerRange(4)} {
		got, err := ParseTolerance(tol.String())
		require.NoError(t, err)
		assert.Equal(t, tol, got)
	}
}
