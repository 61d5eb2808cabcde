package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewParamsCmd creates the "params" subcommand.
func NewParamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "params <expr>",
		Short: "List the parameters of a formula with their resolved types",
		Args:  cobra.ExactArgs(1),
		RunE:  runParams,
	}
}

func runParams(cmd *cobra.Command, args []string) error {
	expr, err := compile(cmd, args[0])
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, p := range expr.ParameterInfo() {
		kind := "value"
		if p.Func {
			kind = "func"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.Ordinal, p.Name, p.Type, kind)
	}
	return w.Flush()
}
