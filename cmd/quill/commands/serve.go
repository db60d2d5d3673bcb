package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Restore the manifest, bind preloads and serve until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Boot(); err != nil {
				return err
			}
			cmd.Println("quill: serving extensions, press ctrl-c to stop")
			<-cmd.Context().Done()
			return nil
		},
	}
}
