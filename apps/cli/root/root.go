package root

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command for the Conductor admin CLI. Subcommands
// (bootstrap, tenant, etc.) are attached here.
var rootCmd = &cobra.Command{
	Use:           "conductor",
	Short:         "Conductor admin CLI",
	Long:          "Administrative utilities for Conductor (admin-schema bootstrap, tenant provisioning and audits).",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the mutable root command for wiring from subpackages.
func Root() *cobra.Command {
	return rootCmd
}
