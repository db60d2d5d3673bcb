package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload <package>",
		Short: "Swap a package for the current contents of its shared object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Boot(); err != nil {
				return err
			}
			if err := c.app.Reload(args[0]); err != nil {
				return err
			}
			cmd.Printf("reloaded %s\n", args[0])
			return nil
		},
	}
}
