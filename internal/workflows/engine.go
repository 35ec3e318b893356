package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/kaitiaki/internal/audit"
	"github.com/PolarWolf314/kaitiaki/internal/configs"
	kerrors "github.com/PolarWolf314/kaitiaki/internal/errors"
	"github.com/PolarWolf314/kaitiaki/internal/gnupg"
	logger "github.com/PolarWolf314/kaitiaki/internal/logging"
)

// EngineSettings selects the configuration an engine is built from. It is
// embedded in every workflow's options.
type EngineSettings struct {
	// ConfigPath overrides the user config file.
	ConfigPath string

	// Homedir overrides engine.homedir from the config.
	Homedir string

	Logger logger.Logger
}

// LoadEngineConfig loads the config and applies overrides, with paths expanded.
func LoadEngineConfig(s EngineSettings) (configs.EngineConfig, error) {
	config, err := configs.LoadConfig(s.ConfigPath)
	if err != nil {
		return configs.EngineConfig{}, err
	}
	for _, key := range config.UnknownKeys {
		s.Logger.Warnf("Ignoring unknown config key %q", key)
	}

	engineConfig := config.Engine
	if s.Homedir != "" {
		engineConfig.Homedir = s.Homedir
	}
	return engineConfig.Expanded()
}

// OpenEngine prepares the directories named by the config and probes gpg.
func OpenEngine(ctx context.Context, s EngineSettings) (*gnupg.Engine, error) {
	engineConfig, err := LoadEngineConfig(s)
	if err != nil {
		return nil, err
	}
	if err := engineConfig.PrepareDirs(); err != nil {
		return nil, err
	}

	s.Logger.Debugf("Opening engine %s with homedir %s", engineConfig.Binary, engineConfig.Homedir)
	eng, err := gnupg.New(ctx, gnupg.Options{
		Binary:         engineConfig.Binary,
		Homedir:        engineConfig.Homedir,
		OutputDir:      engineConfig.OutputDir,
		Env:            engineConfig.Env,
		Keyrings:       engineConfig.Keyrings,
		SecretKeyrings: engineConfig.SecretKeyrings,
		UseAgent:       engineConfig.UseAgent,
		ExtraOptions:   engineConfig.Options,
		Logger:         s.Logger,
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Infof("Using gpg %s", eng.Version())
	return eng, nil
}

// Succeeded applies the success rule to one invocation.
func Succeeded(res gnupg.Result) bool {
	if !res.Success {
		return false
	}
	return res.ExitCode == 0 || res.Operation == gnupg.OpExportSecretKey
}

// check converts a finished invocation into the workflow error, if any.
func check(res gnupg.Result, err error) error {
	if err != nil {
		return err
	}
	if !Succeeded(res) {
		return fmt.Errorf("%w: %s (exit code %d)", kerrors.ErrOperationFailed, res.ErrorMessage(), res.ExitCode)
	}
	return nil
}

// record writes the audit entry for one invocation. fill customizes the
// entry before it is written.
func record(res gnupg.Result, err error, fill func(*audit.Entry)) {
	entry := audit.FromResult(res)
	if err != nil {
		entry.Error = err.Error()
	}
	if fill != nil {
		fill(&entry)
	}
	audit.Log(entry)
}
