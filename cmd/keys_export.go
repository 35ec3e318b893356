package cmd

import (
	"context"
	"os"

	"github.com/PolarWolf314/kaitiaki/internal/ui"
	"github.com/PolarWolf314/kaitiaki/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	keysExportSecret     bool
	keysExportArmor      bool
	keysExportOutput     string
	keysExportPassphrase passphraseSource
)

func init() {
	keysExportCmd.Flags().BoolVarP(&keysExportSecret, "secret", "s", false, "export secret keys")
	keysExportCmd.Flags().BoolVarP(&keysExportArmor, "armor", "a", true, "ASCII-armor the output")
	keysExportCmd.Flags().StringVarP(&keysExportOutput, "output", "o", "", "write to a file instead of stdout")
	keysExportCmd.Flags().StringVar(&keysExportPassphrase.file, "passphrase-file", "", "read the passphrase unlocking secret keys from a file")
	keysExportCmd.Flags().BoolVar(&keysExportPassphrase.ask, "ask-passphrase", false, "prompt for the passphrase unlocking secret keys")
}

func resetKeysExportState() {
	keysExportSecret = false
	keysExportArmor = true
	keysExportOutput = ""
	keysExportPassphrase.reset()
}

var keysExportCmd = &cobra.Command{
	Use:   "export <key-id>...",
	Short: "Export public or secret keys",
	Long: `Exports keys to stdout or a file. Secret exports skip keys that cannot be
unlocked and still succeed if anything was exported.

Examples:
  kaitiaki keys export alice@example.com > alice.asc
  kaitiaki keys export --secret -o backup.asc --ask-passphrase AAAA1111`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys export command")

		var passphrase string
		if keysExportSecret {
			var err error
			if passphrase, err = keysExportPassphrase.resolve("Passphrase: "); err != nil {
				return Logger.ErrorfAndReturn("%v", err)
			}
		}

		spinner, cleanup := startSpinner("Exporting keys...")
		defer cleanup()

		result, err := workflows.ExportKeys(context.Background(), workflows.ExportKeysOptions{
			Engine:     engineSettings(),
			KeyIDs:     args,
			Secret:     keysExportSecret,
			Armor:      keysExportArmor,
			Output:     keysExportOutput,
			Passphrase: passphrase,
		})
		if err != nil {
			spinner.FinalMSG = formatError("export keys", err)
			return err
		}

		if result.Output != "" {
			spinner.FinalMSG = ui.Success.Sprint("✓") + " Exported to " + ui.Path.Sprint(result.Output)
			if keysExportSecret {
				spinner.FinalMSG += "\n" + ui.Warning.Sprint("⚠") + " This file contains secret key material"
			}
			return nil
		}

		spinner.Stop()
		_, err = os.Stdout.Write(result.Data)
		return err
	},
}
