// Package main is the entry point for the track-issues CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ka-sarthak/track-github-issues/cmd"
	"github.com/ka-sarthak/track-github-issues/internal/logging"
)

// main executes the root command and maps its error to an exit code.
func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	logging.Debug("starting track-issues", "args", os.Args[1:])

	err := cmd.Execute(ctx)
	stop()
	if err != nil {
		logging.Error("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cmd.ExitCode(err))
}
