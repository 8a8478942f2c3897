// Package cli assembles the kombio command tree.
package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	ConfigPath string
}

// NewRootCommand creates the root command for the kombio CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "kombio",
		Short: "Kombio card game engine",
		Long:  "Headless tooling for the Kombio card game: deterministic match simulation and local settings management.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.Verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to JSON config file")

	cmd.AddCommand(NewSimulateCommand(opts))
	cmd.AddCommand(NewSettingsCommand(opts))

	return cmd
}
