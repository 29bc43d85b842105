package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func (c *CLI) newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash",
		Short: "Print the combined hash of every tracked check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := c.app.Hash(projectRoot(cmd))
			if err != nil {
				c.exitCode = 2
				return err
			}
			sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s:%s\n", e.Name, e.Full)
			}
			return nil
		},
	}
}
