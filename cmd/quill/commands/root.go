// Package commands implements the CLI commands for the quill extension server.
package commands

import (
	"context"
	"io"

	"github.com/quilldb/quill/internal/app"
	"github.com/quilldb/quill/internal/build"
	"github.com/spf13/cobra"
)

// CLI represents the command line interface for quill.
type CLI struct {
	app     *app.App
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app.
func New(a *app.App) *CLI {
	rootCmd := &cobra.Command{
		Use:           "quill",
		Short:         "A native-extension server for quilldb",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newServeCmd())
	rootCmd.AddCommand(c.newCallCmd())
	rootCmd.AddCommand(c.newLoadCmd())
	rootCmd.AddCommand(c.newUnloadCmd())
	rootCmd.AddCommand(c.newReloadCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOut sets the output writer for the root command. Used for testing.
func (c *CLI) SetOut(w io.Writer) {
	c.rootCmd.SetOut(w)
}
