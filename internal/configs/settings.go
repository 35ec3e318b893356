package configs

import (
	"log"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/kaitiaki/internal/utils"
)

type UserSettings struct {
	ConfigDir    string
	ConfigPath   string
	DataDir      string
	AuditLogPath string
	Username     string
}

var UserKaitiakiSettings *UserSettings

func init() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("error getting home directory: %s", err)
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		log.Fatalf("error getting config directory: %s", err)
	}

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	username, err := utils.GetUsername()
	if err != nil {
		log.Fatalf("error getting username: %s", err)
	}

	UserKaitiakiSettings = NewUserSettings(filepath.Join(configDir, "kaitiaki"), filepath.Join(dataDir, "kaitiaki"), username)
}

// NewUserSettings derives every user path from the config and data directories.
func NewUserSettings(configDir, dataDir, username string) *UserSettings {
	return &UserSettings{
		ConfigDir:    configDir,
		ConfigPath:   filepath.Join(configDir, "config.toml"),
		DataDir:      dataDir,
		AuditLogPath: filepath.Join(dataDir, "audit.jsonl"),
		Username:     username,
	}
}
