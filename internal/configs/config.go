package configs

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/kaitiaki/internal/utils"
)

// Config is the user configuration file.
type Config struct {
	Engine EngineConfig `toml:"engine"`

	// UnknownKeys lists keys in the file that no field decoded.
	UnknownKeys []string `toml:"-"`
}

// EngineConfig describes how gpg is located and invoked.
type EngineConfig struct {
	Binary         string            `toml:"binary" json:"binary"`
	Homedir        string            `toml:"homedir" json:"homedir"`
	OutputDir      string            `toml:"output_dir" json:"output_dir"`
	UseAgent       bool              `toml:"use_agent" json:"use_agent"`
	Options        []string          `toml:"options" json:"options,omitempty"`
	Keyrings       []string          `toml:"keyrings" json:"keyrings,omitempty"`
	SecretKeyrings []string          `toml:"secret_keyrings" json:"secret_keyrings,omitempty"`
	Env            map[string]string `toml:"env" json:"env,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Binary:         "gpg",
			Homedir:        "~/.gnupg",
			OutputDir:      "~/gnupg/output",
			Options:        []string{},
			Keyrings:       []string{},
			SecretKeyrings: []string{},
			Env:            map[string]string{},
		},
	}
}

func configPath(path string) string {
	if path == "" {
		return UserKaitiakiSettings.ConfigPath
	}
	return path
}

// LoadConfig loads the configuration at path, or the user config when path
// is empty. Values missing from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	path = configPath(path)
	config := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	md, err := LoadTOML(path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	for _, key := range md.Undecoded() {
		config.UnknownKeys = append(config.UnknownKeys, key.String())
	}

	return config, nil
}

// SaveConfig writes config to path, or to the user config when path is empty.
func SaveConfig(path string, config *Config) error {
	if err := SaveTOML(configPath(path), config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// EnsureConfig loads the config at path, writing the defaults first if the
// file does not exist. created reports whether a new file was written.
func EnsureConfig(path string) (config *Config, created bool, err error) {
	path = configPath(path)
	if _, err := os.Stat(path); err == nil {
		config, err = LoadConfig(path)
		return config, false, err
	}

	config = DefaultConfig()
	if err := SaveConfig(path, config); err != nil {
		return nil, false, err
	}
	return config, true, nil
}

// Expanded returns a copy with "~" expanded in every path.
func (e EngineConfig) Expanded() (EngineConfig, error) {
	var err error
	if e.Homedir, err = utils.ExpandHome(e.Homedir); err != nil {
		return e, err
	}
	if e.OutputDir, err = utils.ExpandHome(e.OutputDir); err != nil {
		return e, err
	}
	e.Keyrings, err = expandAll(e.Keyrings)
	if err != nil {
		return e, err
	}
	e.SecretKeyrings, err = expandAll(e.SecretKeyrings)
	return e, err
}

func expandAll(paths []string) ([]string, error) {
	out := make([]string, len(paths))
	for i, p := range paths {
		expanded, err := utils.ExpandHome(p)
		if err != nil {
			return nil, err
		}
		out[i] = expanded
	}
	return out, nil
}

// PrepareDirs creates the gpg home directory with private permissions and
// the output directory, so the engine can be constructed.
func (e EngineConfig) PrepareDirs() error {
	if err := utils.EnsurePrivateDir(e.Homedir); err != nil {
		return fmt.Errorf("preparing homedir: %w", err)
	}
	if err := utils.EnsureDir(e.OutputDir); err != nil {
		return fmt.Errorf("preparing output dir: %w", err)
	}
	return nil
}
