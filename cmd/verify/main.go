// Package main is the entry point for the verify CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/verify/cmd/verify/commands"
	"go.trai.ch/verify/internal/app"
	_ "go.trai.ch/verify/internal/wiring"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	if err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 2
	}

	cli := commands.New(components.App, components.Logger)
	code, err := cli.Execute(ctx)
	if err != nil {
		components.Logger.Error(err)
	}
	return code
}
