package cmd

import (
	"github.com/spf13/cobra"
)

// ConfigCmd is the top-level config command.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage kaitiaki configuration",
	Long: `Provides commands for managing the engine configuration.

The configuration selects the gpg binary, its home directory, the default
output directory and any extra options passed to every invocation.

Examples:
  # Write the default config and create the gpg home directory
  kaitiaki config init

  # Use a dedicated keyring
  kaitiaki config init --homedir ~/.kaitiaki-gnupg

  # Show the effective configuration
  kaitiaki config show`,
}

func init() {
	ConfigCmd.AddCommand(configInitCmd)
	ConfigCmd.AddCommand(configShowCmd)
}

// GetConfigCmd returns the ConfigCmd for testing.
func GetConfigCmd() *cobra.Command {
	return ConfigCmd
}

func resetConfigState() {
	resetConfigInitState()
	resetConfigShowState()
}
