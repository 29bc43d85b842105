package commands

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func (c *CLI) newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [name]",
		Short: "Print each check's current verification classification",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := c.app.StatusRecords(projectRoot(cmd))
			if err != nil {
				c.exitCode = 2
				return err
			}

			verify, _ := cmd.Flags().GetBool("verify")
			asJSON, _ := cmd.Flags().GetBool("json")
			var only string
			if len(args) == 1 {
				only = args[0]
			}

			filtered := records[:0:0]
			for _, r := range records {
				if only != "" && r.Name != only {
					continue
				}
				filtered = append(filtered, r)
			}
			sort.Slice(filtered, func(i, j int) bool { return filtered[i].Name < filtered[j].Name })

			anyUnverified := false
			for _, r := range filtered {
				if r.Reason != "" {
					anyUnverified = true
				}
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(filtered); err != nil {
					return err
				}
			} else {
				for _, r := range filtered {
					line := fmt.Sprintf("%-20s %s", r.Name, r.Status)
					if r.Reason != "" {
						line += "(" + r.Reason + ")"
					}
					fmt.Fprintln(cmd.OutOrStdout(), line)
				}
			}

			if verify && anyUnverified {
				c.exitCode = 1
			}
			return nil
		},
	}
	cmd.Flags().Bool("verify", false, "exit 1 if any selected check is unverified")
	return cmd
}
