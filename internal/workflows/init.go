package workflows

import (
	"context"

	"github.com/PolarWolf314/kaitiaki/internal/configs"
)

// InitConfigOptions configures the config init workflow.
type InitConfigOptions struct {
	ConfigPath string

	// Homedir, when set, is written to a newly created config.
	Homedir string
}

// InitConfigResult describes the prepared configuration.
type InitConfigResult struct {
	ConfigPath string
	Created    bool
	Engine     configs.EngineConfig
}

// InitConfig writes the default config if none exists and creates the gpg
// home directory (mode 0700) and output directory.
func InitConfig(ctx context.Context, opts InitConfigOptions) (*InitConfigResult, error) {
	path := opts.ConfigPath
	if path == "" {
		path = configs.UserKaitiakiSettings.ConfigPath
	}

	config, created, err := configs.EnsureConfig(path)
	if err != nil {
		return nil, err
	}
	if created && opts.Homedir != "" {
		config.Engine.Homedir = opts.Homedir
		if err := configs.SaveConfig(path, config); err != nil {
			return nil, err
		}
	}

	engineConfig, err := config.Engine.Expanded()
	if err != nil {
		return nil, err
	}
	if err := engineConfig.PrepareDirs(); err != nil {
		return nil, err
	}

	return &InitConfigResult{ConfigPath: path, Created: created, Engine: engineConfig}, nil
}
