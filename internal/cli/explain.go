package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewExplainCmd creates the "explain" subcommand.
func NewExplainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain <expr>",
		Short: "Print the resolved and simplified tree with node types",
		Args:  cobra.ExactArgs(1),
		RunE:  runExplain,
	}
}

func runExplain(cmd *cobra.Command, args []string) error {
	c, err := newCompiler(cmd)
	if err != nil {
		return err
	}
	tree, err := c.Explain(cmd.Context(), args[0])
	if err != nil {
		return compileError(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), tree)
	return nil
}
