package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/verify/internal/app"
)

func (c *CLI) newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Seed the local cache from a recent commit's consistent Verified trailer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			depth, _ := cmd.Flags().GetInt("depth")
			seeded, err := c.app.Sync(projectRoot(cmd), depth)
			if err != nil {
				c.exitCode = 2
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d entries\n", seeded)
			return nil
		},
	}
	cmd.Flags().Int("depth", app.DefaultSyncDepth, "number of recent commits to search")
	return cmd
}
