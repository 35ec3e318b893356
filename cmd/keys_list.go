package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/PolarWolf314/kaitiaki/internal/ui"
	"github.com/PolarWolf314/kaitiaki/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	keysListSecret bool
	keysListSigs   bool
	keysListJSON   bool
)

func init() {
	keysListCmd.Flags().BoolVarP(&keysListSecret, "secret", "s", false, "list secret keys")
	keysListCmd.Flags().BoolVar(&keysListSigs, "sigs", false, "include signatures on each user ID")
	keysListCmd.Flags().BoolVar(&keysListJSON, "json", false, "output as JSON array")
}

func resetKeysListState() {
	keysListSecret = false
	keysListSigs = false
	keysListJSON = false
}

var keysListCmd = &cobra.Command{
	Use:   "list [pattern...]",
	Short: "List keys in the keyring",
	Long: `Lists public keys, or secret keys with --secret. Patterns restrict the
listing to matching user IDs, key IDs or fingerprints.

Examples:
  kaitiaki keys list
  kaitiaki keys list --secret
  kaitiaki keys list alice@example.com --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys list command")
		spinner, cleanup := startSpinner("Listing keys...")
		defer cleanup()

		result, err := workflows.ListKeys(context.Background(), workflows.ListKeysOptions{
			Engine:     engineSettings(),
			Patterns:   args,
			Secret:     keysListSecret,
			Signatures: keysListSigs,
		})
		if err != nil {
			spinner.FinalMSG = formatError("list keys", err)
			return err
		}
		Logger.Debugf("Decoded %d keys", len(result.Keys))

		// The listing is printed after the spinner line is cleared.
		spinner.Stop()
		if keysListJSON {
			data, err := json.MarshalIndent(result.Keys, "", "  ")
			if err != nil {
				return Logger.ErrorfAndReturn("Failed to marshal keys to JSON: %v", err)
			}
			fmt.Println(string(data))
			return nil
		}

		if len(result.Keys) == 0 {
			fmt.Println("No keys found.")
			return nil
		}
		for i, k := range result.Keys {
			if i > 0 {
				fmt.Println()
			}
			fmt.Print(ui.EnsureNewline(ui.FormatKey(k)))
		}
		return nil
	},
}
