package cmd

import (
	"context"

	"github.com/PolarWolf314/kaitiaki/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	decryptPassphrase passphraseSource
	decryptFiles      fileFlags
)

func init() {
	decryptCmd.Flags().StringVar(&decryptPassphrase.file, "passphrase-file", "", "read the passphrase from a file")
	decryptCmd.Flags().BoolVar(&decryptPassphrase.ask, "ask-passphrase", false, "prompt for the passphrase")
	decryptFiles.register(decryptCmd)
}

func resetDecryptCommandState() {
	decryptPassphrase.reset()
	decryptFiles.reset()
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt <file|dir|glob>...",
	Short: "Decrypt files",
	Long: `Decrypts each matching .gpg, .asc or .pgp file next to the original with
the suffix removed. A named file without one of those suffixes decrypts to
<file>.out.

Examples:
  kaitiaki decrypt report.pdf.gpg
  kaitiaki decrypt --ask-passphrase --output-dir /tmp/plain secrets/`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting decrypt command")

		passphrase, err := decryptPassphrase.resolve("Passphrase: ")
		if err != nil {
			return Logger.ErrorfAndReturn("%v", err)
		}

		spinner, cleanup := startSpinner("Decrypting files...")
		defer cleanup()

		result, err := workflows.DecryptFiles(context.Background(), workflows.DecryptFilesOptions{
			Engine:     engineSettings(),
			Files:      decryptFiles.options(args),
			Passphrase: passphrase,
		})
		if err != nil {
			spinner.FinalMSG = formatError("decrypt", err)
			return err
		}

		spinner.FinalMSG = batchSummary(result, "Decrypted")
		return batchError(result)
	},
}
