package cmd

import (
	"context"

	"github.com/PolarWolf314/kaitiaki/internal/ui"
	"github.com/PolarWolf314/kaitiaki/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	keysRevokeOutput     string
	keysRevokePassphrase passphraseSource
)

func init() {
	keysRevokeCmd.Flags().StringVarP(&keysRevokeOutput, "output", "o", "", "certificate path (default <output_dir>/<key-id>.rev.asc)")
	keysRevokeCmd.Flags().StringVar(&keysRevokePassphrase.file, "passphrase-file", "", "read the passphrase from a file")
	keysRevokeCmd.Flags().BoolVar(&keysRevokePassphrase.ask, "ask-passphrase", false, "prompt for the passphrase")
}

func resetKeysRevokeState() {
	keysRevokeOutput = ""
	keysRevokePassphrase.reset()
}

var keysRevokeCmd = &cobra.Command{
	Use:   "revoke <key-id>",
	Short: "Generate a revocation certificate",
	Long: `Writes a revocation certificate for a key. The key is not revoked until
the certificate is imported with 'kaitiaki keys import'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys revoke command")

		passphrase, err := keysRevokePassphrase.resolve("Passphrase: ")
		if err != nil {
			return Logger.ErrorfAndReturn("%v", err)
		}

		spinner, cleanup := startSpinner("Generating revocation certificate...")
		defer cleanup()

		result, err := workflows.Revoke(context.Background(), workflows.RevokeOptions{
			Engine:     engineSettings(),
			KeyID:      args[0],
			Passphrase: passphrase,
			Output:     keysRevokeOutput,
		})
		if err != nil {
			spinner.FinalMSG = formatError("generate the revocation certificate", err)
			return err
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Revocation certificate written to " + ui.Path.Sprint(result.Output) + "\n" +
			ui.Info.Sprint("→") + " Store it somewhere safe; importing it revokes " + ui.KeyID.Sprint(args[0])
		return nil
	},
}
