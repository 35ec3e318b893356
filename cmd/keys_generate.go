package cmd

import (
	"context"
	"errors"

	kerrors "github.com/PolarWolf314/kaitiaki/internal/errors"
	"github.com/PolarWolf314/kaitiaki/internal/gnupg"
	"github.com/PolarWolf314/kaitiaki/internal/ui"
	"github.com/PolarWolf314/kaitiaki/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	keysGenerateName       string
	keysGenerateEmail      string
	keysGenerateComment    string
	keysGenerateType       string
	keysGenerateLength     int
	keysGenerateUsage      string
	keysGenerateExpire     string
	keysGeneratePassphrase passphraseSource
)

func init() {
	keysGenerateCmd.Flags().StringVarP(&keysGenerateName, "name", "n", "", "real name for the user ID")
	keysGenerateCmd.Flags().StringVarP(&keysGenerateEmail, "email", "e", "", "email for the user ID (defaults to user@hostname)")
	keysGenerateCmd.Flags().StringVar(&keysGenerateComment, "comment", "", "comment for the user ID")
	keysGenerateCmd.Flags().StringVar(&keysGenerateType, "type", "RSA", "key algorithm")
	keysGenerateCmd.Flags().IntVar(&keysGenerateLength, "length", 2048, "key length in bits")
	keysGenerateCmd.Flags().StringVar(&keysGenerateUsage, "usage", "", "key usage, e.g. sign,cert")
	keysGenerateCmd.Flags().StringVar(&keysGenerateExpire, "expire", "", "expiry, e.g. 1y or 2030-01-01 (default never)")
	keysGenerateCmd.Flags().StringVar(&keysGeneratePassphrase.file, "passphrase-file", "", "read the new key's passphrase from a file")
	keysGenerateCmd.Flags().BoolVar(&keysGeneratePassphrase.ask, "ask-passphrase", false, "prompt for the new key's passphrase")
}

func resetKeysGenerateState() {
	keysGenerateName = ""
	keysGenerateEmail = ""
	keysGenerateComment = ""
	keysGenerateType = "RSA"
	keysGenerateLength = 2048
	keysGenerateUsage = ""
	keysGenerateExpire = ""
	keysGeneratePassphrase.reset()
}

var keysGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new key pair",
	Long: `Generates a key pair unattended. Without a passphrase the secret key is
stored unprotected.

Examples:
  kaitiaki keys generate --name "Alice" --email alice@example.com
  kaitiaki keys generate --name "CI" --type ed25519 --expire 1y --ask-passphrase`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys generate command")

		passphrase, err := keysGeneratePassphrase.resolve("Passphrase for the new key: ")
		if err != nil {
			return Logger.ErrorfAndReturn("%v", err)
		}

		spinner, cleanup := startSpinner("Generating key...")
		defer cleanup()

		result, err := workflows.GenerateKey(context.Background(), workflows.GenerateKeyOptions{
			Engine: engineSettings(),
			Params: gnupg.KeyParams{
				KeyType:     keysGenerateType,
				KeyLength:   keysGenerateLength,
				KeyUsage:    keysGenerateUsage,
				NameReal:    keysGenerateName,
				NameEmail:   keysGenerateEmail,
				NameComment: keysGenerateComment,
				ExpireDate:  keysGenerateExpire,
			},
			Passphrase: passphrase,
		})
		if err != nil {
			if errors.Is(err, kerrors.ErrInvalidEmail) {
				spinner.FinalMSG = ui.Error.Sprint("✗") + " " + ui.Highlight.Sprint(keysGenerateEmail) + " is not a valid email address"
				return err
			}
			spinner.FinalMSG = formatError("generate a key", err)
			return err
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Generated key " + ui.KeyID.Sprint(result.Fingerprint)
		if passphrase == "" {
			spinner.FinalMSG += "\n" + ui.Warning.Sprint("⚠") + " The secret key has no passphrase"
		}
		return nil
	},
}
