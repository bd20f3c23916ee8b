// Command syscov computes systematic-uncertainty covariance matrices.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/syscov/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands report their own errors; only flag and usage errors
		// reach here unprinted.
		if _, ok := err.(*cli.ExitError); !ok {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
