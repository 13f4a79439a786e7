// Package main provides the entry point for the bidiboard CLI tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/afero"

	"github.com/Sumatoshi-tech/bidiboard/cmd/bidiboard/commands"
	"github.com/Sumatoshi-tech/bidiboard/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := commands.NewRootCommand(afero.NewOsFs()).ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
