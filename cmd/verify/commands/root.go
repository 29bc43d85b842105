// Package commands implements the verify CLI's cobra command tree.
package commands

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"go.trai.ch/verify/internal/adapters/detector"
	"go.trai.ch/verify/internal/app"
	"go.trai.ch/verify/internal/build"
	"go.trai.ch/verify/internal/core/ports"
)

// jsonModeSetter is satisfied by the logger adapter; asserted rather than
// added to ports.Logger so the port stays minimal for every other caller.
type jsonModeSetter interface {
	SetJSONMode(bool)
}

// CLI represents the command line interface for verify.
type CLI struct {
	app      *app.App
	logger   ports.Logger
	rootCmd  *cobra.Command
	exitCode int
}

// New creates a new CLI instance with the given app. logger may be nil.
func New(a *app.App, logger ports.Logger) *CLI {
	rootCmd := &cobra.Command{
		Use:           "verify",
		Short:         "A project-agnostic verification orchestrator",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.PersistentFlags().StringP("root", "C", ".", "project root to operate on")
	rootCmd.PersistentFlags().Bool("json", false, "force machine-readable JSON log output (default: auto-detected)")

	c := &CLI{app: a, logger: logger, rootCmd: rootCmd}

	// A correlation ID identifies this invocation's log lines across the
	// otherwise-stateless App (spec.md §6's "invocation" is otherwise
	// unobservable once several runs interleave in a CI log stream).
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if setter, ok := c.logger.(jsonModeSetter); ok {
			var override *bool
			if cmd.Flags().Changed("json") {
				v, _ := cmd.Flags().GetBool("json")
				override = &v
			}
			setter.SetJSONMode(detector.ResolveLogFormat(detector.DetectLogFormat(), override) == detector.FormatJSON)
		}
		if c.logger != nil {
			c.logger.Info("invocation " + uuid.NewString())
		}
	}

	rootCmd.AddCommand(
		c.newRunCmd(),
		c.newStatusCmd(),
		c.newCleanCmd(),
		c.newHashCmd(),
		c.newSignCmd(),
		c.newCheckCmd(),
		c.newSyncCmd(),
		c.newInitCmd(),
		c.newVersionCmd(),
	)

	return c
}

// Execute runs the root command and returns the process exit code per the
// run/status/check/sync contract (0 success, 1 failure/unverified,
// 2 configuration or infrastructure error).
func (c *CLI) Execute(ctx context.Context) (int, error) {
	c.rootCmd.SetContext(ctx)
	if err := c.rootCmd.Execute(); err != nil {
		return 2, err
	}
	return c.exitCode, nil
}

func projectRoot(cmd *cobra.Command) string {
	root, _ := cmd.Flags().GetString("root")
	return root
}
