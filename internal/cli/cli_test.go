package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRoot creates a fresh command tree per test to avoid shared flag state.
func newTestRoot() *cobra.Command {
	return NewRootCmd("test")
}

// executeCommand runs a cobra command with the given args and captures stdout/stderr.
func executeCommand(root *cobra.Command, args ...string) (stdout, stderr string, err error) {
	var outBuf, errBuf bytes.Buffer
	root.SetOut(&outBuf)
	root.SetErr(&errBuf)
	root.SetArgs(args)
	err = root.Execute()
	return outBuf.String(), errBuf.String(), err
}

func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return -1
}

func TestEval(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"integer", []string{"eval", "3+6"}, "9"},
		{"string", []string{"eval", `"3"+6`}, "36"},
		{"positional", []string{"eval", "2*x-7*y", "12", "2"}, "10"},
		{"integer preference", []string{"eval", "--int", "x \\ 2", "7"}, "3"},
		{"named", []string{"eval", "price * qty", "--param", "price=2.5", "-p", "qty=4"}, "10"},
		{"typed", []string{"eval", "--type", "1 < 2"}, "boolean\ttrue"},
		{"tolerance", []string{"eval", "--tolerance", "abs:0.1", "x = 1", "1.05"}, "true"},
		{"plugins", []string{"eval", "--ext", "#2024-03-02# - #2024-03-01#"}, "86400000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := executeCommand(newTestRoot(), tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, strings.TrimSpace(out))
		})
	}
}

func TestEvalExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"unbalanced", []string{"eval", "(1+2"}, exitCompile},
		{"not logical", []string{"eval", `"a" - 1`}, exitCompile},
		{"division by zero", []string{"eval", "--int", "10 \\ x", "0"}, exitRuntime},
		{"missing named", []string{"eval", "a + b", "-p", "a=1"}, exitRuntime},
		{"bad param", []string{"eval", "a", "-p", "a"}, exitUsage},
		{"mixed binding", []string{"eval", "a", "1", "-p", "a=1"}, exitUsage},
		{"bad tolerance", []string{"eval", "--tolerance", "wide", "1"}, exitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeCommand(newTestRoot(), tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, exitCode(err))
		})
	}
}

func TestCompileErrorMessage(t *testing.T) {
	_, _, err := executeCommand(newTestRoot(), "eval", `"a" - 1`)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "logical error:"), err.Error())
}

func TestParams(t *testing.T) {
	out, _, err := executeCommand(newTestRoot(), "params", "len(s) > n")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"0", "s", "string", "value"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"1", "n", "numeric", "value"}, strings.Fields(lines[1]))
}

func TestExplain(t *testing.T) {
	out, _, err := executeCommand(newTestRoot(), "explain", "2*x+3*4")
	require.NoError(t, err)
	assert.Equal(t, "((2.0:numeric * x:numeric):numeric + 12.0:numeric):numeric", strings.TrimSpace(out))
}

func TestVerboseLogsStages(t *testing.T) {
	_, stderr, err := executeCommand(newTestRoot(), "eval", "--verbose", "1+1")
	require.NoError(t, err)
	assert.Contains(t, stderr, "stage=parse")
}

func TestSymbolsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symbols.yaml")
	require.NoError(t, os.WriteFile(path, []byte("operators:\n  add: [plus]\n"), 0o600))

	out, _, err := executeCommand(newTestRoot(), "eval", "--symbols", path, "1 plus 2")
	require.NoError(t, err)
	assert.Equal(t, "3", strings.TrimSpace(out))

	_, _, err = executeCommand(newTestRoot(), "eval", "--symbols", filepath.Join(t.TempDir(), "missing.yaml"), "1")
	assert.Equal(t, exitUsage, exitCode(err))
}
