package main

import (
	"context"
	"fmt"
	"os"

	cliadapter "github.com/example/fleetops/internal/adapters/cli"
	"github.com/example/fleetops/internal/cli"
)

func main() {
	rootCmd := cli.NewRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if hint := cliadapter.Hint(err); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
		os.Exit(1)
	}
}
