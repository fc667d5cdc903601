// Command graphomotor analyzes captured handwriting sessions.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/graphomotor/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
