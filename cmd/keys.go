package cmd

import (
	"github.com/spf13/cobra"
)

// KeysCmd groups the keyring management commands.
var KeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage keys in the gpg keyring",
	Long: `Provides listing, generation, import, export, deletion, ownertrust and
revocation of keys in the configured gpg home directory.`,
}

func init() {
	KeysCmd.AddCommand(keysListCmd)
	KeysCmd.AddCommand(keysGenerateCmd)
	KeysCmd.AddCommand(keysImportCmd)
	KeysCmd.AddCommand(keysExportCmd)
	KeysCmd.AddCommand(keysDeleteCmd)
	KeysCmd.AddCommand(keysTrustCmd)
	KeysCmd.AddCommand(keysRevokeCmd)
}

// GetKeysCmd returns the KeysCmd for testing.
func GetKeysCmd() *cobra.Command {
	return KeysCmd
}

func resetKeysState() {
	resetKeysListState()
	resetKeysGenerateState()
	resetKeysImportState()
	resetKeysExportState()
	resetKeysDeleteState()
	resetKeysTrustState()
	resetKeysRevokeState()
}
