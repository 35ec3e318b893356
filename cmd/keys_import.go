package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/kaitiaki/internal/ui"
	"github.com/PolarWolf314/kaitiaki/internal/utils"
	"github.com/PolarWolf314/kaitiaki/internal/workflows"

	"github.com/spf13/cobra"
)

func resetKeysImportState() {}

var keysImportCmd = &cobra.Command{
	Use:   "import [file...]",
	Short: "Import keys from files or stdin",
	Long: `Imports armored or binary key material. With no files the key material
is read from stdin.

Examples:
  kaitiaki keys import alice.asc bob.asc
  curl -s https://example.com/key.asc | kaitiaki keys import`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys import command")

		opts := workflows.ImportKeysOptions{Engine: engineSettings(), Paths: args}
		if len(args) == 0 {
			data, err := utils.ReadStdin()
			if err != nil {
				return Logger.ErrorfAndReturn("%v", err)
			}
			opts.Data = data
		}

		spinner, cleanup := startSpinner("Importing keys...")
		defer cleanup()

		result, err := workflows.ImportKeys(context.Background(), opts)
		if err != nil {
			spinner.FinalMSG = formatError("import keys", err)
			return err
		}

		if len(result.Fingerprints) == 0 {
			spinner.FinalMSG = ui.Warning.Sprint("⚠") + " No keys were imported"
			return nil
		}
		msg := ui.Success.Sprint("✓") + fmt.Sprintf(" Imported %d key(s):", len(result.Fingerprints))
		for _, fpr := range result.Fingerprints {
			msg += "\n    " + ui.KeyID.Sprint(fpr)
		}
		spinner.FinalMSG = msg
		return nil
	},
}
