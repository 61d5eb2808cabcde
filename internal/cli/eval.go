package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandrolain/goformula/pkg/types"
)

// NewEvalCmd creates the "eval" subcommand.
func NewEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval <expr> [args...]",
		Short: "Compile a formula and evaluate it",
		Long: `Compile a formula and evaluate it.

Arguments after the formula bind positionally, in order of first
appearance of each parameter. With --param, values are looked up by name
instead and positional arguments are not accepted.`,
		Example: `  formula eval "2*x-7*y" 12 2
  formula eval "price * qty" --param price=2.5 --param qty=4`,
		Args: cobra.MinimumNArgs(1),
		RunE: runEval,
	}
	cmd.Flags().StringArrayP("param", "p", nil, "Named parameter value as name=value (repeatable)")
	cmd.Flags().Bool("type", false, "Print the result type before the value")
	return cmd
}

func runEval(cmd *cobra.Command, args []string) error {
	pairs, _ := cmd.Flags().GetStringArray("param")
	showType, _ := cmd.Flags().GetBool("type")

	if len(pairs) > 0 && len(args) > 1 {
		return exitError(exitUsage, nil, "positional arguments cannot be combined with --param")
	}
	named, err := parseParams(pairs)
	if err != nil {
		return exitError(exitUsage, err, "%v", err)
	}

	expr, err := compile(cmd, args[0])
	if err != nil {
		return err
	}

	var v types.Value
	if len(pairs) > 0 {
		v, err = expr.InvokeValueWith(types.MapFinder(named))
	} else {
		values := make([]any, 0, len(args)-1)
		for _, a := range args[1:] {
			values = append(values, parseValue(a))
		}
		v, err = expr.InvokeValue(values...)
	}
	if err != nil {
		return exitError(exitRuntime, err, "runtime error: %v", err)
	}

	out := cmd.OutOrStdout()
	if showType {
		fmt.Fprintf(out, "%s\t", v.Type)
	}
	if v.Type == types.String {
		fmt.Fprintln(out, v.Str)
	} else {
		fmt.Fprintln(out, v.String())
	}
	return nil
}
