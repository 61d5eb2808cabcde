package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sandrolain/goformula"
	"github.com/sandrolain/goformula/internal/cli"
)

func main() {
	root := cli.NewRootCmd(goformula.Version())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "formula:", err)
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
