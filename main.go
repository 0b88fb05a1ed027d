// Package main implements the main entry point for a CHIP-8 interpreter, debugger, disassembler and assembler
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/retrochip8/internal/cli"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	application := cli.New(ctx, os.Stdout, cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})

	err := application.Execute(os.Args[1:])
	if err == nil {
		return
	}

	var usageErr *cli.UsageError
	switch {
	case errors.As(err, &usageErr):
		usageErr.ShowUsage()
		if usageErr.IsHelp() {
			return
		}
		os.Exit(1)

	case errors.Is(err, context.Canceled):
		// Handle context cancellation (Ctrl+C) gracefully
		application.Logger().Info("Operation cancelled")

	default:
		application.Logger().Error("Command failed", log.Err(err))
		os.Exit(1)
	}
}
