package gnupg

import (
	"context"
	"fmt"
	"os"

	kerrors "github.com/PolarWolf314/kaitiaki/internal/errors"
	logger "github.com/PolarWolf314/kaitiaki/internal/logging"
)

// DefaultBinary is the engine executable looked up on PATH.
const DefaultBinary = "gpg"

// Options configures an Engine.
type Options struct {
	// Binary is the gpg executable. Defaults to DefaultBinary.
	Binary string

	// Homedir is passed as --homedir and must be an existing directory.
	Homedir string

	// OutputDir is where operations without an explicit output path write
	// their files. It must be an existing directory.
	OutputDir string

	// Env is added to the environment of every gpg process.
	Env map[string]string

	// Keyrings replace the default public keyring when set.
	Keyrings       []string
	SecretKeyrings []string

	UseAgent bool

	// ExtraOptions are appended after the fixed flags on every run.
	ExtraOptions []string

	Logger logger.Logger
}

// Engine runs gpg against one home directory.
type Engine struct {
	binary         string
	homedir        string
	outputDir      string
	env            map[string]string
	keyrings       []string
	secretKeyrings []string
	useAgent       bool
	options        []string
	version        Version
	log            logger.Logger
}

// New validates the directories in opts and probes gpg for its version.
//
// Returns ErrHomedir or ErrOutputDir if a directory is unusable, and
// ErrEngineInit (wrapping the launch error) if gpg cannot be run.
func New(ctx context.Context, opts Options) (*Engine, error) {
	if !isDir(opts.Homedir) {
		return nil, fmt.Errorf("%w: %s is not a directory", kerrors.ErrHomedir, opts.Homedir)
	}
	if !isDir(opts.OutputDir) {
		return nil, fmt.Errorf("%w: %s is not a directory", kerrors.ErrOutputDir, opts.OutputDir)
	}

	binary := opts.Binary
	if binary == "" {
		binary = DefaultBinary
	}

	e := &Engine{
		binary:         binary,
		homedir:        opts.Homedir,
		outputDir:      opts.OutputDir,
		env:            opts.Env,
		keyrings:       opts.Keyrings,
		secretKeyrings: opts.SecretKeyrings,
		useAgent:       opts.UseAgent,
		options:        opts.ExtraOptions,
		log:            opts.Logger,
	}

	res, err := e.Run(ctx, Invocation{
		Operation: OpListConfig,
		Args:      []string{"--list-config", "--with-colons"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrEngineInit, err)
	}
	e.version = ParseVersion(res.Output)
	e.log.Debugf("Detected gpg %s at %s", e.version, binary)

	return e, nil
}

// Version returns the version detected by New.
func (e *Engine) Version() Version {
	return e.version
}

// Homedir returns the --homedir passed to gpg.
func (e *Engine) Homedir() string {
	return e.homedir
}

// OutputDir returns the default directory for output files.
func (e *Engine) OutputDir() string {
	return e.outputDir
}

func isDir(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
