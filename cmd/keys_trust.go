package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/kaitiaki/internal/ui"
	"github.com/PolarWolf314/kaitiaki/internal/workflows"

	"github.com/spf13/cobra"
)

var keysTrustLevel string

func init() {
	keysTrustCmd.Flags().StringVarP(&keysTrustLevel, "level", "l", "", "undefined, never, marginal, full or ultimate")
	_ = keysTrustCmd.MarkFlagRequired("level")
}

func resetKeysTrustState() {
	keysTrustLevel = ""
}

var keysTrustCmd = &cobra.Command{
	Use:   "trust <pattern>... --level <level>",
	Short: "Set the ownertrust of keys",
	Long: `Sets the ownertrust of every key matching the patterns.

Examples:
  kaitiaki keys trust bob@example.com --level full
  kaitiaki keys trust AAAA1111 --level ultimate`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys trust command")
		spinner, cleanup := startSpinner("Updating ownertrust...")
		defer cleanup()

		result, err := workflows.Trust(context.Background(), workflows.TrustOptions{
			Engine:   engineSettings(),
			Patterns: args,
			Level:    keysTrustLevel,
		})
		if err != nil {
			spinner.FinalMSG = formatError("set ownertrust", err)
			return err
		}

		msg := ui.Success.Sprint("✓") + fmt.Sprintf(" Set ownertrust to %s on %d key(s):",
			ui.Highlight.Sprint(keysTrustLevel), len(result.Fingerprints))
		for _, fpr := range result.Fingerprints {
			msg += "\n    " + ui.KeyID.Sprint(fpr)
		}
		spinner.FinalMSG = msg
		return nil
	},
}
