// arraycreate - run the ArrayCreate operation and inspect call-site specialization
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/chazu/arraycreate/config"
)

type globalOptions struct {
	configDir string
	verbosity int
	cfg       *config.Config
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}

	root := &cobra.Command{
		Use:   "arraycreate",
		Short: "Create arrays and inspect call-site specialization",
		Long: `arraycreate evaluates the ArrayCreate operation for length literals.

Lengths up to 2^31-1 produce dense arrays, valid lengths above that produce
sparse arrays, and anything that is not an integer in [0, 2^32-1] raises
RangeError: Invalid array length.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FindAndLoad(g.configDir)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cmd.Flags().Changed("verbose") {
				cfg.Log.Verbosity = g.verbosity
			}
			cfg.ConfigureLogging()
			g.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&g.configDir, "config", ".", "Directory to search upward for "+config.FileName)
	root.PersistentFlags().IntVarP(&g.verbosity, "verbose", "v", 0, "Log verbosity (-4 none .. 2 debug)")

	root.AddCommand(newCreateCmd(g), newStatsCmd(g), newHistoryCmd(g))
	return root
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
