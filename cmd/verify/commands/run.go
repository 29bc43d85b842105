package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/verify/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [targets...]",
		Short: "Resolve staleness and execute the non-Verified checks",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			verbose, _ := cmd.Flags().GetBool("verbose")
			all, _ := cmd.Flags().GetBool("all")

			opts := app.RunOptions{Targets: args, Force: force}
			if all {
				opts.Targets = nil
			}
			if verbose {
				opts.Tee = os.Stdout
			}

			summary, err := c.app.Run(cmd.Context(), projectRoot(cmd), opts)
			if err != nil {
				c.exitCode = 2
				return err
			}

			for _, o := range summary.Outcomes {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", o.Name, o.Result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d passed, %d failed, %d skipped\n",
				summary.Passed(), summary.Failed(), summary.Skipped())

			if summary.Failed() > 0 {
				c.exitCode = 1
			}
			return nil
		},
	}
	cmd.Flags().BoolP("force", "f", false, "re-execute every selected check regardless of cache state")
	cmd.Flags().Bool("all", false, "select every check in the project (default when no targets are given)")
	cmd.Flags().BoolP("verbose", "v", false, "tee command output to the terminal as it runs")
	return cmd
}
