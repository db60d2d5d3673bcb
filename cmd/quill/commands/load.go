package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <package>",
		Short: "Load a package and record it in the manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.LoadPackage(args[0]); err != nil {
				return err
			}
			cmd.Printf("loaded %s\n", args[0])
			return nil
		},
	}
}
