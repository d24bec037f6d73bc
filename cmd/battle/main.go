// Command battle runs, validates, tests and replays turn-based battles.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/battle/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
