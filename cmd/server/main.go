package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "server",
		Short:         "OSF project comments service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a config file (default ./config.yaml)")

	rootCmd.AddCommand(
		newServeCmd(&configFile),
		newMigrateCmd(&configFile),
	)
	return rootCmd
}
