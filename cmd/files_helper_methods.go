package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/PolarWolf314/kaitiaki/internal/ui"
	"github.com/PolarWolf314/kaitiaki/internal/workflows"

	"github.com/spf13/cobra"
)

// fileFlags are shared by the batch file commands.
type fileFlags struct {
	outputDir string
	jobs      int
	dryRun    bool
}

func (f *fileFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.outputDir, "output-dir", "", "write outputs here instead of next to each file")
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", 1, "number of gpg processes to run at once")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "show what would be done without running gpg")
}

func (f *fileFlags) reset() {
	f.outputDir = ""
	f.jobs = 1
	f.dryRun = false
}

func (f *fileFlags) options(patterns []string) workflows.FileOptions {
	return workflows.FileOptions{
		Patterns:  patterns,
		OutputDir: f.outputDir,
		Jobs:      f.jobs,
		DryRun:    f.dryRun,
	}
}

func resetFileCommandsState() {
	resetEncryptCommandState()
	resetDecryptCommandState()
	resetSignCommandState()
	resetVerifyCommandState()
}

// relPath shortens path relative to the working directory when possible.
func relPath(path string) string {
	abs, err := filepath.Abs(".")
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(abs, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

// batchSummary renders a batch result as a spinner final message. verb is
// the past tense shown for each file, e.g. "Encrypted".
func batchSummary(result *workflows.BatchResult, verb string) string {
	var b strings.Builder
	if result.DryRun {
		fmt.Fprintf(&b, "%s Dry run: %d file(s) would be processed", ui.Info.Sprint("ℹ"), len(result.Outcomes))
		for _, o := range result.Outcomes {
			fmt.Fprintf(&b, "\n    %s", ui.Path.Sprint(relPath(o.Source)))
			if o.Output != "" {
				fmt.Fprintf(&b, " → %s", ui.Path.Sprint(relPath(o.Output)))
			}
		}
		return b.String()
	}

	for i, o := range result.Outcomes {
		if i > 0 {
			b.WriteString("\n")
		}
		if !o.OK() {
			fmt.Fprintf(&b, "%s %s: %v", ui.Error.Sprint("✗"), ui.Path.Sprint(relPath(o.Source)), o.Err)
			continue
		}
		fmt.Fprintf(&b, "%s %s %s", ui.Success.Sprint("✓"), verb, ui.Path.Sprint(relPath(o.Source)))
		if o.Output != "" {
			fmt.Fprintf(&b, " → %s", ui.Path.Sprint(relPath(o.Output)))
		}
	}

	if failed := len(result.Failed()); failed > 0 {
		fmt.Fprintf(&b, "\n%s %d of %d file(s) failed", ui.Error.Sprint("✗"), failed, len(result.Outcomes))
	}
	return b.String()
}

// batchError returns a non-nil error when any file in result failed.
func batchError(result *workflows.BatchResult) error {
	if failed := len(result.Failed()); failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(result.Outcomes))
	}
	return nil
}
