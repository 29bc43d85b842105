package commands

import "github.com/spf13/cobra"

func (c *CLI) newSignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sign FILE",
		Short: "Insert or replace the Verified trailer in a commit-message file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Sign(projectRoot(cmd), args[0]); err != nil {
				c.exitCode = 2
				return err
			}
			return nil
		},
	}
}
