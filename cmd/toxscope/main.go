// Command toxscope is the CLI entry point: the API server under `serve`
// plus the offline margin-analysis and dataset-validation commands.
package main

import (
	"fmt"
	"os"

	"github.com/toxscope/toxscope/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
