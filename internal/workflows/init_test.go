package workflows

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/PolarWolf314/kaitiaki/internal/configs"
)

func TestInitConfig(t *testing.T) {
	root := t.TempDir()
	configPath := filepath.Join(root, "config.toml")
	homedir := filepath.Join(root, "gnupg")
	// The default output_dir lives under the home directory.
	t.Setenv("HOME", root)

	result, err := InitConfig(context.Background(), InitConfigOptions{ConfigPath: configPath, Homedir: homedir})
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}
	if !result.Created {
		t.Error("Expected the config to be created")
	}
	if result.Engine.Homedir != homedir {
		t.Errorf("Expected homedir %s, got %s", homedir, result.Engine.Homedir)
	}

	info, err := os.Stat(homedir)
	if err != nil {
		t.Fatalf("Homedir not created: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0700 {
		t.Errorf("Expected homedir mode 0700, got %o", info.Mode().Perm())
	}

	config, err := configs.LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Engine.Homedir != homedir {
		t.Errorf("Expected saved homedir %s, got %s", homedir, config.Engine.Homedir)
	}
}

func TestInitConfig_KeepsExisting(t *testing.T) {
	root := t.TempDir()
	configPath := filepath.Join(root, "config.toml")

	existing := configs.DefaultConfig()
	existing.Engine.Homedir = filepath.Join(root, "existing-home")
	existing.Engine.OutputDir = filepath.Join(root, "out")
	if err := configs.SaveConfig(configPath, existing); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	result, err := InitConfig(context.Background(), InitConfigOptions{
		ConfigPath: configPath,
		Homedir:    filepath.Join(root, "ignored"),
	})
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}
	if result.Created {
		t.Error("Expected the existing config to be kept")
	}
	if result.Engine.Homedir != existing.Engine.Homedir {
		t.Errorf("Expected homedir %s, got %s", existing.Engine.Homedir, result.Engine.Homedir)
	}
	if _, err := os.Stat(filepath.Join(root, "ignored")); !os.IsNotExist(err) {
		t.Error("Homedir override should not apply to an existing config")
	}
}
