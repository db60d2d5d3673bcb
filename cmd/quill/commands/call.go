package commands

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

func (c *CLI) newCallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call <package.function> [request]",
		Short: "Invoke an extension function and print its response",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Boot(); err != nil {
				return err
			}

			var req []byte
			switch {
			case len(args) == 2 && args[1] == "-":
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return err
				}
				req = data
			case len(args) == 2:
				req = []byte(args[1])
			}

			resp, err := c.app.Call(args[0], req)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(resp)
			return err
		},
	}
}
