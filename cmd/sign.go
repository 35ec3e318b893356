package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/kaitiaki/internal/gnupg"
	"github.com/PolarWolf314/kaitiaki/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	signKeyID      string
	signDetached   bool
	signClear      bool
	signArmor      bool
	signPassphrase passphraseSource
	signFiles      fileFlags
)

func init() {
	signCmd.Flags().StringVarP(&signKeyID, "local-user", "u", "", "sign with this key instead of the default")
	signCmd.Flags().BoolVarP(&signDetached, "detach", "b", false, "write a detached signature (.sig)")
	signCmd.Flags().BoolVar(&signClear, "clear", false, "write a clearsigned message (.asc)")
	signCmd.Flags().BoolVarP(&signArmor, "armor", "a", false, "ASCII-armor the output (.asc)")
	signCmd.Flags().StringVar(&signPassphrase.file, "passphrase-file", "", "read the passphrase from a file")
	signCmd.Flags().BoolVar(&signPassphrase.ask, "ask-passphrase", false, "prompt for the passphrase")
	signCmd.MarkFlagsMutuallyExclusive("detach", "clear")
	signFiles.register(signCmd)
}

func resetSignCommandState() {
	signKeyID = ""
	signDetached = false
	signClear = false
	signArmor = false
	signPassphrase.reset()
	signFiles.reset()
}

var signCmd = &cobra.Command{
	Use:   "sign <file|dir|glob>...",
	Short: "Sign files",
	Long: `Signs each matching file. Attached signatures go to <file>.gpg, detached
ones to <file>.sig and clearsigned ones to <file>.asc; --armor turns .gpg
and .sig into .asc.

Examples:
  kaitiaki sign --detach release.tar.gz
  kaitiaki sign -u alice@example.com --clear --ask-passphrase NOTES.md`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting sign command")

		mode := gnupg.SignAttached
		switch {
		case signDetached:
			mode = gnupg.SignDetached
		case signClear:
			mode = gnupg.SignClear
		}
		Logger.Debugf("Sign mode %d, armor=%t", mode, signArmor)

		passphrase, err := signPassphrase.resolve(fmt.Sprintf("Passphrase for %s: ", keyLabel(signKeyID)))
		if err != nil {
			return Logger.ErrorfAndReturn("%v", err)
		}

		spinner, cleanup := startSpinner("Signing files...")
		defer cleanup()

		result, err := workflows.SignFiles(context.Background(), workflows.SignFilesOptions{
			Engine:     engineSettings(),
			Files:      signFiles.options(args),
			KeyID:      signKeyID,
			Passphrase: passphrase,
			Mode:       mode,
			Armor:      signArmor,
		})
		if err != nil {
			spinner.FinalMSG = formatError("sign", err)
			return err
		}

		spinner.FinalMSG = batchSummary(result, "Signed")
		return batchError(result)
	},
}

func keyLabel(keyID string) string {
	if keyID == "" {
		return "the default key"
	}
	return keyID
}
