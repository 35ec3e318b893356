package cmd

import (
	"context"

	"github.com/PolarWolf314/kaitiaki/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	encryptRecipients  []string
	encryptSymmetric   bool
	encryptSignWith    string
	encryptArmor       bool
	encryptAlwaysTrust bool
	encryptPassphrase  passphraseSource
	encryptFiles       fileFlags
)

func init() {
	encryptCmd.Flags().StringSliceVarP(&encryptRecipients, "recipient", "r", nil, "encrypt for this key (repeatable)")
	encryptCmd.Flags().BoolVarP(&encryptSymmetric, "symmetric", "c", false, "encrypt with a passphrase instead of keys")
	encryptCmd.Flags().StringVar(&encryptSignWith, "sign-with", "", "also sign with this key")
	encryptCmd.Flags().BoolVarP(&encryptArmor, "armor", "a", false, "ASCII-armor the output (.asc)")
	encryptCmd.Flags().BoolVar(&encryptAlwaysTrust, "always-trust", false, "skip the recipient key validity check")
	encryptCmd.Flags().StringVar(&encryptPassphrase.file, "passphrase-file", "", "read the passphrase from a file")
	encryptCmd.Flags().BoolVar(&encryptPassphrase.ask, "ask-passphrase", false, "prompt for the passphrase")
	encryptFiles.register(encryptCmd)
}

func resetEncryptCommandState() {
	encryptRecipients = nil
	encryptSymmetric = false
	encryptSignWith = ""
	encryptArmor = false
	encryptAlwaysTrust = false
	encryptPassphrase.reset()
	encryptFiles.reset()
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt <file|dir|glob>...",
	Short: "Encrypt files",
	Long: `Encrypts each matching file to <file>.gpg, or <file>.asc with --armor.
Directories are searched recursively and ** globs are supported; files that
already look like OpenPGP output are skipped unless named explicitly.

Examples:
  kaitiaki encrypt -r alice@example.com report.pdf
  kaitiaki encrypt -r alice -r bob --armor "docs/**/*.md"
  kaitiaki encrypt --symmetric --ask-passphrase backups/`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting encrypt command")

		var passphrase string
		if encryptSymmetric || encryptSignWith != "" {
			var err error
			if passphrase, err = encryptPassphrase.resolve("Passphrase: "); err != nil {
				return Logger.ErrorfAndReturn("%v", err)
			}
		}

		spinner, cleanup := startSpinner("Encrypting files...")
		defer cleanup()

		result, err := workflows.EncryptFiles(context.Background(), workflows.EncryptFilesOptions{
			Engine:      engineSettings(),
			Files:       encryptFiles.options(args),
			Recipients:  encryptRecipients,
			Symmetric:   encryptSymmetric,
			SignWith:    encryptSignWith,
			Passphrase:  passphrase,
			Armor:       encryptArmor,
			AlwaysTrust: encryptAlwaysTrust,
		})
		if err != nil {
			spinner.FinalMSG = formatError("encrypt", err)
			return err
		}

		spinner.FinalMSG = batchSummary(result, "Encrypted")
		return batchError(result)
	},
}
