package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/PolarWolf314/kaitiaki/internal/ui"
	"github.com/PolarWolf314/kaitiaki/internal/utils"
	"github.com/PolarWolf314/kaitiaki/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	keysDeleteSecret     bool
	keysDeleteYes        bool
	keysDeletePassphrase passphraseSource
)

func init() {
	keysDeleteCmd.Flags().BoolVarP(&keysDeleteSecret, "secret", "s", false, "delete the secret keys as well")
	keysDeleteCmd.Flags().BoolVarP(&keysDeleteYes, "yes", "y", false, "do not ask for confirmation")
	keysDeleteCmd.Flags().StringVar(&keysDeletePassphrase.file, "passphrase-file", "", "read the passphrase from a file")
	keysDeleteCmd.Flags().BoolVar(&keysDeletePassphrase.ask, "ask-passphrase", false, "prompt for the passphrase")
}

func resetKeysDeleteState() {
	keysDeleteSecret = false
	keysDeleteYes = false
	keysDeletePassphrase.reset()
}

var keysDeleteCmd = &cobra.Command{
	Use:   "delete <pattern>...",
	Short: "Delete keys from the keyring",
	Long: `Deletes every key matching the patterns. With --secret the secret keys
are deleted first, then the public keys.

Examples:
  kaitiaki keys delete bob@example.com
  kaitiaki keys delete --secret --yes AAAA1111`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys delete command")

		if !keysDeleteYes {
			what := "public"
			if keysDeleteSecret {
				what = "secret and public"
			}
			ok, err := utils.Confirm(os.Stdin, os.Stdout,
				fmt.Sprintf("Delete the %s keys matching %s?", what, strings.Join(args, ", ")))
			if err != nil {
				return Logger.ErrorfAndReturn("%v", err)
			}
			if !ok {
				fmt.Println(ui.Info.Sprint("ℹ") + " Aborted, no keys were deleted")
				return nil
			}
		}

		passphrase, err := keysDeletePassphrase.resolve("Passphrase: ")
		if err != nil {
			return Logger.ErrorfAndReturn("%v", err)
		}

		spinner, cleanup := startSpinner("Deleting keys...")
		defer cleanup()

		result, err := workflows.DeleteKeys(context.Background(), workflows.DeleteKeysOptions{
			Engine:     engineSettings(),
			Patterns:   args,
			Secret:     keysDeleteSecret,
			Passphrase: passphrase,
		})
		if err != nil {
			msg := formatError("delete keys", err)
			if result != nil {
				for _, res := range result.Results {
					for _, p := range res.Problems {
						if reason := p["delete_problem"]; reason != "" {
							msg += "\n" + ui.Info.Sprint("→") + " " + reason
						}
					}
				}
			}
			spinner.FinalMSG = msg
			return err
		}

		msg := ui.Success.Sprint("✓") + fmt.Sprintf(" Deleted %d key(s):", len(result.Fingerprints))
		for _, fpr := range result.Fingerprints {
			msg += "\n    " + ui.KeyID.Sprint(fpr)
		}
		spinner.FinalMSG = msg
		return nil
	},
}
