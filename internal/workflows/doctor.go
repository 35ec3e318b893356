package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/PolarWolf314/kaitiaki/internal/configs"
	"github.com/PolarWolf314/kaitiaki/internal/gnupg"
	"github.com/PolarWolf314/kaitiaki/internal/utils"
)

// CheckStatus represents the result status of a health check.
type CheckStatus int

const (
	// CheckPass means the check passed.
	CheckPass CheckStatus = iota
	// CheckWarning means the check found a non-critical issue.
	CheckWarning
	// CheckError means the check found a critical issue.
	CheckError
)

// String returns a string representation of CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "pass"
	case CheckWarning:
		return "warning"
	case CheckError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for CheckStatus.
func (s CheckStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// CheckResult holds the result of a single health check.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// DoctorResult holds the complete result of the doctor workflow.
type DoctorResult struct {
	Checks      []CheckResult `json:"checks"`
	Summary     DoctorSummary `json:"summary"`
	Suggestions []string      `json:"suggestions,omitempty"`
}

// DoctorSummary holds counts of checks by status.
type DoctorSummary struct {
	Passed   int `json:"passed"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// DoctorOptions configures the doctor workflow.
type DoctorOptions struct {
	Engine EngineSettings
}

// doctorState carries what earlier checks found to later ones.
type doctorState struct {
	settings EngineSettings
	config   configs.EngineConfig
	engine   *gnupg.Engine
}

// Doctor runs health checks on the gpg setup without modifying anything.
//
// The doctor workflow checks:
//   - Config file validity
//   - The gpg binary is on PATH
//   - gpg starts and is new enough for loopback pinentry
//   - Home directory permissions
//   - Output directory existence
//   - At least one secret key is available
func Doctor(ctx context.Context, opts DoctorOptions) (*DoctorResult, error) {
	state := &doctorState{settings: opts.Engine}
	checks := []func(context.Context, *doctorState) CheckResult{
		checkConfig,
		checkBinary,
		checkHomedir,
		checkOutputDir,
		checkEngineVersion,
		checkSecretKeys,
	}

	var results []CheckResult
	for _, check := range checks {
		results = append(results, check(ctx, state))
	}

	var suggestions []string
	seen := make(map[string]bool)
	for _, result := range results {
		if result.Suggestion != "" && result.Status != CheckPass && !seen[result.Suggestion] {
			suggestions = append(suggestions, result.Suggestion)
			seen[result.Suggestion] = true
		}
	}

	return &DoctorResult{
		Checks:      results,
		Summary:     calculateDoctorSummary(results),
		Suggestions: suggestions,
	}, nil
}

func calculateDoctorSummary(results []CheckResult) DoctorSummary {
	var summary DoctorSummary
	for _, r := range results {
		switch r.Status {
		case CheckPass:
			summary.Passed++
		case CheckWarning:
			summary.Warnings++
		case CheckError:
			summary.Errors++
		}
	}
	return summary
}

func checkConfig(ctx context.Context, s *doctorState) CheckResult {
	const name = "Configuration"
	path := s.settings.ConfigPath
	if path == "" {
		path = configs.UserKaitiakiSettings.ConfigPath
	}

	config, err := configs.LoadConfig(path)
	if err != nil {
		s.config = configs.DefaultConfig().Engine
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("Failed to parse %s: %v", path, err),
			Suggestion: "Check the config file for TOML syntax errors",
		}
	}

	engineConfig := config.Engine
	if s.settings.Homedir != "" {
		engineConfig.Homedir = s.settings.Homedir
	}
	if expanded, err := engineConfig.Expanded(); err == nil {
		engineConfig = expanded
	}
	s.config = engineConfig

	if len(config.UnknownKeys) > 0 {
		return CheckResult{
			Name:       name,
			Status:     CheckWarning,
			Message:    fmt.Sprintf("Unknown keys in %s: %v", path, config.UnknownKeys),
			Suggestion: "Remove or correct the unknown config keys",
		}
	}
	if !utils.FileExists(path) {
		return CheckResult{
			Name:       name,
			Status:     CheckWarning,
			Message:    "No config file, using defaults",
			Suggestion: "Run 'kaitiaki config init' to write a config file",
		}
	}
	return CheckResult{Name: name, Status: CheckPass, Message: "Configuration valid"}
}

func checkBinary(ctx context.Context, s *doctorState) CheckResult {
	const name = "gpg binary"
	path, err := exec.LookPath(s.config.Binary)
	if err != nil {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("%q not found on PATH", s.config.Binary),
			Suggestion: "Install GnuPG or set engine.binary in the config",
		}
	}
	return CheckResult{Name: name, Status: CheckPass, Message: "Found " + path}
}

func checkHomedir(ctx context.Context, s *doctorState) CheckResult {
	const name = "Home directory"
	info, err := os.Stat(s.config.Homedir)
	if os.IsNotExist(err) {
		return CheckResult{
			Name:       name,
			Status:     CheckWarning,
			Message:    s.config.Homedir + " does not exist",
			Suggestion: "Run 'kaitiaki config init' to create it",
		}
	}
	if err != nil || !info.IsDir() {
		return CheckResult{
			Name:    name,
			Status:  CheckError,
			Message: s.config.Homedir + " is not a directory",
		}
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0077 != 0 {
		return CheckResult{
			Name:       name,
			Status:     CheckWarning,
			Message:    fmt.Sprintf("%s has permissions %o, gpg will warn about unsafe permissions", s.config.Homedir, info.Mode().Perm()),
			Suggestion: fmt.Sprintf("Run 'chmod 700 %s'", s.config.Homedir),
		}
	}
	return CheckResult{Name: name, Status: CheckPass, Message: s.config.Homedir + " is private"}
}

func checkOutputDir(ctx context.Context, s *doctorState) CheckResult {
	const name = "Output directory"
	if !utils.IsDir(s.config.OutputDir) {
		return CheckResult{
			Name:       name,
			Status:     CheckWarning,
			Message:    s.config.OutputDir + " does not exist",
			Suggestion: "Run 'kaitiaki config init' to create it",
		}
	}
	return CheckResult{Name: name, Status: CheckPass, Message: s.config.OutputDir + " exists"}
}

func checkEngineVersion(ctx context.Context, s *doctorState) CheckResult {
	const name = "gpg version"
	if !utils.IsDir(s.config.Homedir) || !utils.IsDir(s.config.OutputDir) {
		return CheckResult{Name: name, Status: CheckWarning, Message: "Skipped until the directories exist"}
	}

	eng, err := gnupg.New(ctx, gnupg.Options{
		Binary:    s.config.Binary,
		Homedir:   s.config.Homedir,
		OutputDir: s.config.OutputDir,
		Env:       s.config.Env,
		Logger:    s.settings.Logger,
	})
	if err != nil {
		return CheckResult{
			Name:    name,
			Status:  CheckError,
			Message: fmt.Sprintf("Failed to run gpg: %v", err),
		}
	}
	s.engine = eng

	v := eng.Version()
	if !v.AtLeast(gnupg.Version{Major: 2, Minor: 1}) {
		return CheckResult{
			Name:       name,
			Status:     CheckWarning,
			Message:    fmt.Sprintf("gpg %s does not support loopback pinentry", v),
			Suggestion: "Upgrade to GnuPG 2.1 or newer for non-interactive passphrases",
		}
	}
	return CheckResult{Name: name, Status: CheckPass, Message: "gpg " + v.String()}
}

func checkSecretKeys(ctx context.Context, s *doctorState) CheckResult {
	const name = "Secret keys"
	if s.engine == nil {
		return CheckResult{Name: name, Status: CheckWarning, Message: "Skipped because gpg is unavailable"}
	}
	keys, res, err := s.engine.ListKeys(ctx, true, false)
	if err != nil || !Succeeded(res) {
		return CheckResult{
			Name:    name,
			Status:  CheckError,
			Message: fmt.Sprintf("Failed to list secret keys: %s", res.ErrorMessage()),
		}
	}
	if len(keys) == 0 {
		return CheckResult{
			Name:       name,
			Status:     CheckWarning,
			Message:    "No secret keys in the keyring",
			Suggestion: "Run 'kaitiaki keys generate' or import an existing key",
		}
	}
	return CheckResult{Name: name, Status: CheckPass, Message: fmt.Sprintf("%d secret key(s) available", len(keys))}
}
