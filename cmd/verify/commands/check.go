package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [name]",
		Short: "Validate the HEAD commit's Verified trailer against current file state",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}

			diffs, ok, err := c.app.Check(projectRoot(cmd), name)
			if err != nil {
				c.exitCode = 2
				return err
			}

			for _, d := range diffs {
				if d.InTrailer == d.Computable && d.Matches {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: trailer=%s current=%s\n", d.Name, d.Expected, d.Actual)
			}

			if !ok {
				c.exitCode = 1
			}
			return nil
		},
	}
}
