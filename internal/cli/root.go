package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the plangraph CLI and returns an error if any command fails.
//
// Logging goes to stderr at info level; --verbose (-v) switches to debug,
// which also reports every graph level as it is built. The logger is attached
// to the command context and reachable through loggerFromContext.
//
// Example:
//
//	func main() {
//	    if err := cli.Execute(context.Background()); err != nil {
//	        os.Exit(1)
//	    }
//	}
func Execute(ctx context.Context) error {
	var verbose bool

	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	loadConfig := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(LogDebug)
		}
		return loadConfig(cmd, args)
	}

	return root.ExecuteContext(ctx)
}
