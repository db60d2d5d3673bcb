package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newUnloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unload <package>",
		Short: "Release a loaded package and drop it from the manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Boot(); err != nil {
				return err
			}
			if err := c.app.UnloadPackage(args[0]); err != nil {
				return err
			}
			cmd.Printf("unloaded %s\n", args[0])
			return nil
		},
	}
}
