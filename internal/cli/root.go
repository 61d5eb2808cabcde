// Package cli implements the formula command line tool.
package cli

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sandrolain/goformula/pkg/compiler"
	"github.com/sandrolain/goformula/pkg/ext"
	"github.com/sandrolain/goformula/pkg/symbols"
	"github.com/sandrolain/goformula/pkg/types"
)

// NewRootCmd creates the root command wired to all subcommands.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "formula",
		Short: "Compile and evaluate formulas",
		Long:  "formula compiles infix formulas to typed closures and evaluates them.",
		// SilenceUsage prevents printing usage on every error
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	flags := root.PersistentFlags()
	flags.Bool("verbose", false, "Log compilation stages to stderr")
	flags.String("symbols", "", "YAML file overriding the operator and delimiter symbols")
	flags.String("tolerance", "", "Comparison tolerance: abs:<float> | pct:<float> | int:<int>")
	flags.Bool("int", false, "Prefer integer parameters where no operator decides")
	flags.Bool("ext", false, "Enable the byte-size and date literal plugins")

	root.AddCommand(NewEvalCmd())
	root.AddCommand(NewParamsCmd())
	root.AddCommand(NewExplainCmd())
	return root
}

// newCompiler builds a compiler from the persistent flags.
func newCompiler(cmd *cobra.Command) (*compiler.Compiler, error) {
	flags := cmd.Flags()
	verbose, _ := flags.GetBool("verbose")
	symbolsPath, _ := flags.GetString("symbols")
	tolerance, _ := flags.GetString("tolerance")
	preferInt, _ := flags.GetBool("int")
	withExt, _ := flags.GetBool("ext")

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	opts := []compiler.Option{
		compiler.WithLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))),
	}

	if symbolsPath != "" {
		cfg, err := symbols.Load(symbolsPath)
		if err != nil {
			return nil, exitError(exitUsage, err, "%v", err)
		}
		opts = append(opts, compiler.WithSymbols(cfg))
	}
	if tolerance != "" {
		tol, err := types.ParseTolerance(tolerance)
		if err != nil {
			return nil, exitError(exitUsage, err, "%v", errors.Wrap(err, "--tolerance"))
		}
		opts = append(opts, compiler.WithTolerance(tol))
	}
	if preferInt {
		opts = append(opts, compiler.WithIntegerPreference())
	}
	if withExt {
		opts = append(opts, ext.WithAll()...)
	}

	c, err := compiler.New(opts...)
	if err != nil {
		return nil, exitError(exitUsage, err, "%v", err)
	}
	return c, nil
}

// compile compiles text, mapping failures to the compile exit code.
func compile(cmd *cobra.Command, text string) (*types.Expression, error) {
	c, err := newCompiler(cmd)
	if err != nil {
		return nil, err
	}
	expr, err := c.Compile(cmd.Context(), text)
	if err != nil {
		return nil, compileError(err)
	}
	return expr, nil
}

func compileError(err error) *ExitError {
	category := "compile"
	var fe *types.Error
	if errors.As(err, &fe) {
		category = string(fe.Category())
	}
	return exitError(exitCompile, err, "%s error: %v", category, err)
}

// parseValue reads a command line argument as an integer, a float, a
// boolean or, failing those, a string.
func parseValue(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// parseParams reads name=value pairs.
func parseParams(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.Errorf("invalid parameter %q: expected name=value", pair)
		}
		out[name] = parseValue(value)
	}
	return out, nil
}
