package workflows

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PolarWolf314/kaitiaki/internal/audit"
	"github.com/PolarWolf314/kaitiaki/internal/gnupg"
	"github.com/PolarWolf314/kaitiaki/internal/utils"

	"golang.org/x/sync/errgroup"
)

// FileOutcome is the result of one per-file invocation.
type FileOutcome struct {
	Source string
	Output string
	Result gnupg.Result
	Err    error

	// Signer and SignerKeyID are set by VerifyFiles for a good signature.
	Signer      string
	SignerKeyID string
}

// OK reports whether the file was processed successfully.
func (o FileOutcome) OK() bool {
	return o.Err == nil
}

// BatchResult contains one outcome per resolved file, in resolution order.
type BatchResult struct {
	Outcomes []FileOutcome
	DryRun   bool
}

// Failed returns the outcomes that did not succeed.
func (b *BatchResult) Failed() []FileOutcome {
	var failed []FileOutcome
	for _, o := range b.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}

// FileOptions are shared by every batch file workflow.
type FileOptions struct {
	// Patterns are file paths, directories or ** globs.
	Patterns []string

	// Base resolves relative patterns. Defaults to the working directory.
	Base string

	// OutputDir places outputs there instead of next to each source.
	OutputDir string

	// Jobs is the number of gpg processes run at once. Defaults to 1.
	Jobs int

	// DryRun resolves files and output names without running gpg.
	DryRun bool
}

func (f FileOptions) resolve(filter utils.FileFilter) ([]string, error) {
	base := f.Base
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	return utils.ResolveFiles(f.Patterns, base, filter)
}

// outputPath places src+ext in outputDir, or next to src.
func (f FileOptions) outputPath(src, ext string) string {
	dir := f.OutputDir
	if dir == "" {
		dir = filepath.Dir(src)
	}
	return filepath.Join(dir, filepath.Base(src)+ext)
}

// strippedPath removes a known suffix from src, or appends ".out" when src
// has none of them.
func (f FileOptions) strippedPath(src string, exts ...string) string {
	name := filepath.Base(src)
	stripped := name + ".out"
	for _, ext := range exts {
		if trimmed, ok := strings.CutSuffix(name, ext); ok && trimmed != "" {
			stripped = trimmed
			break
		}
	}
	dir := f.OutputDir
	if dir == "" {
		dir = filepath.Dir(src)
	}
	return filepath.Join(dir, stripped)
}

// fileStep runs one invocation for a source file.
type fileStep func(ctx context.Context, src string) FileOutcome

// runBatch resolves files and runs step on each, at most jobs at a time.
// A failing file does not stop the others.
func runBatch(ctx context.Context, f FileOptions, filter utils.FileFilter, name func(src string) string, step fileStep) (*BatchResult, error) {
	files, err := f.resolve(filter)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{Outcomes: make([]FileOutcome, len(files)), DryRun: f.DryRun}
	if f.DryRun {
		for i, src := range files {
			result.Outcomes[i] = FileOutcome{Source: src, Output: name(src)}
		}
		return result, nil
	}

	jobs := f.Jobs
	if jobs < 1 {
		jobs = 1
	}
	var g errgroup.Group
	g.SetLimit(jobs)
	for i, src := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				result.Outcomes[i] = FileOutcome{Source: src, Output: name(src), Err: err}
				return nil
			}
			result.Outcomes[i] = step(ctx, src)
			return nil
		})
	}
	_ = g.Wait()
	return result, nil
}

// finish applies the success rule and writes the audit entry for a file.
func finish(o FileOutcome, err error) FileOutcome {
	o.Err = check(o.Result, err)
	record(o.Result, err, func(e *audit.Entry) {
		e.Files = []string{o.Source}
		e.OutputPath = o.Output
	})
	return o
}
