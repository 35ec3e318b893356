package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/PolarWolf314/kaitiaki/internal/ui"
	"github.com/PolarWolf314/kaitiaki/internal/workflows"

	"github.com/spf13/cobra"
)

var verifyFiles fileFlags

func init() {
	verifyFiles.register(verifyCmd)
}

func resetVerifyCommandState() {
	verifyFiles.reset()
}

var verifyCmd = &cobra.Command{
	Use:   "verify <file|dir|glob>...",
	Short: "Verify signatures",
	Long: `Verifies each matching .sig, .asc or .gpg file. A .sig or .asc file next to
the file it is named after is checked as a detached signature over that
file; anything else is verified as a signed message.

Examples:
  kaitiaki verify release.tar.gz.sig
  kaitiaki verify --jobs 4 dist/`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting verify command")
		spinner, cleanup := startSpinner("Verifying signatures...")
		defer cleanup()

		result, err := workflows.VerifyFiles(context.Background(), workflows.VerifyFilesOptions{
			Engine: engineSettings(),
			Files:  verifyFiles.options(args),
		})
		if err != nil {
			spinner.FinalMSG = formatError("verify", err)
			return err
		}

		if result.DryRun {
			spinner.FinalMSG = batchSummary(result, "Verified")
			return nil
		}
		spinner.FinalMSG = verifySummary(result)
		return batchError(result)
	},
}

func verifySummary(result *workflows.BatchResult) string {
	var lines []string
	for _, o := range result.Outcomes {
		name := ui.Path.Sprint(relPath(o.Source))
		if o.OK() {
			line := fmt.Sprintf("%s Good signature on %s", ui.Success.Sprint("✓"), name)
			if o.Signer != "" {
				line += " from " + ui.Highlight.Sprint(o.Signer) + " " + ui.Muted.Sprint(ui.KeyID.Sprint(o.SignerKeyID))
			}
			lines = append(lines, line)
			continue
		}
		line := fmt.Sprintf("%s Verification failed for %s", ui.Error.Sprint("✗"), name)
		for _, p := range o.Result.Problems {
			if user := p["username"]; user != "" {
				line += ": bad signature from " + ui.Highlight.Sprint(user)
			}
		}
		if len(o.Result.Problems) == 0 && o.Err != nil {
			line += ": " + o.Err.Error()
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
