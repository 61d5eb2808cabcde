package ext_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goformula/pkg/compiler"
	"github.com/sandrolain/goformula/pkg/ext"
	"github.com/sandrolain/goformula/pkg/ext/extdatetime"
	"github.com/sandrolain/goformula/pkg/ext/extformat"
	"github.com/sandrolain/goformula/pkg/ext/extnumeric"
	"github.com/sandrolain/goformula/pkg/symbols"
	"github.com/sandrolain/goformula/pkg/types"
)

func run(t *testing.T, text string, opts []compiler.Option, args ...any) any {
	t.Helper()
	c, err := compiler.New(opts...)
	require.NoError(t, err)
	expr, err := c.Compile(context.Background(), text)
	require.NoError(t, err)
	got, err := expr.Invoke(args...)
	require.NoError(t, err)
	return got
}

func TestByteSizes(t *testing.T) {
	it := extnumeric.ByteSizes()
	tests := []struct {
		tok  string
		want int64
		ok   bool
	}{
		{"10KB", 10000, true},
		{"1KiB", 1024, true},
		{"1.5GiB", 1610612736, true},
		{"42", 0, false},
		{"KB", 0, false},
		{"10 parsecs", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.tok, func(t *testing.T) {
			v, ok := it.Interpret(tt.tok)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, types.Int(tt.want).Equal(v), v.String())
			}
		})
	}
}

func TestSI(t *testing.T) {
	v, ok := extnumeric.SI("Hz").Interpret("2.5kHz")
	require.True(t, ok)
	assert.InDelta(t, 2500.0, v.Float, 1e-9)

	_, ok = extnumeric.SI("Hz").Interpret("2.5kV")
	assert.False(t, ok)
}

func TestDates(t *testing.T) {
	ex := extdatetime.Dates(nil)
	text := "d >= #2024-03-01#"
	v, start, length, ok := ex.Extract(text, symbols.Default())
	require.True(t, ok)
	assert.Equal(t, "#2024-03-01#", text[start:start+length])
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	assert.True(t, types.Int(want).Equal(v))

	_, _, _, ok = ex.Extract("a # b # c", symbols.Default())
	assert.False(t, ok)
}

func TestWithAll(t *testing.T) {
	assert.Equal(t, true, run(t, "size > 10MB", ext.WithAll(), 20_000_000))
	assert.Equal(t, int64(2048), run(t, "[2KiB]", ext.WithAll()))
	assert.Equal(t, extdatetime.MillisPerDay, run(t, "#2024-03-02# - #2024-03-01#", ext.WithAll()))
	assert.Equal(t, true, run(t, "#2024-03-01T12:00:00Z# > #2024-03-01#", ext.WithAll()))
}

func TestFormatters(t *testing.T) {
	opts := []compiler.Option{compiler.WithFormatters(extformat.Thousands())}
	assert.Equal(t, "total: 1,234,567", run(t, `"total: " + 1234567`, opts))

	opts = []compiler.Option{compiler.WithFormatters(extformat.ByteSizes())}
	assert.Equal(t, "1.5 KiB", run(t, `"" + 1536`, opts))

	opts = []compiler.Option{compiler.WithFormatters(extformat.Words("yes", "no"))}
	assert.Equal(t, "ok: no", run(t, `"ok: " + (1 > 2)`, opts))
}
