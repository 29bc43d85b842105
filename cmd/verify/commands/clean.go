package commands

import "github.com/spf13/cobra"

func (c *CLI) newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [name]",
		Short: "Remove one check's cache entry, or the whole cache document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			if err := c.app.Clean(projectRoot(cmd), name); err != nil {
				c.exitCode = 2
				return err
			}
			return nil
		},
	}
}
