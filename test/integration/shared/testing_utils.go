// Package shared contains testing utilities shared between integration tests.
// The tests drive a real gpg in a throwaway home directory and are skipped
// when gpg is not installed or -short is set.
package shared

import (
	"bytes"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/PolarWolf314/kaitiaki/cmd"
	"github.com/PolarWolf314/kaitiaki/internal/configs"

	"github.com/spf13/cobra"
)

// Env is an isolated kaitiaki setup backed by a real gpg.
type Env struct {
	Root    string
	Homedir string
	Output  string
}

// RequireGPG skips the test unless a gpg binary is available.
func RequireGPG(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping gpg integration test in short mode")
	}
	path, err := exec.LookPath("gpg")
	if err != nil {
		t.Skip("gpg not installed")
	}
	return path
}

// SetupTestEnvironment writes a config pointing at a temp gpg home directory
// and redirects the user settings and audit log into the same temp tree.
func SetupTestEnvironment(t *testing.T) *Env {
	t.Helper()
	binary := RequireGPG(t)

	root, err := os.MkdirTemp("", "kaitiaki-it-*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	env := &Env{
		Root:    root,
		Homedir: filepath.Join(root, "gnupg"),
		Output:  filepath.Join(root, "out"),
	}

	originalUserSettings := configs.UserKaitiakiSettings
	configs.UserKaitiakiSettings = configs.NewUserSettings(filepath.Join(root, "config"), filepath.Join(root, "data"), "testuser")
	cmd.ResetGlobalState()

	t.Cleanup(func() {
		configs.UserKaitiakiSettings = originalUserSettings
		cmd.ResetGlobalState()
		// Stop the agent started for this homedir before removing it.
		_ = exec.Command("gpgconf", "--homedir", env.Homedir, "--kill", "all").Run()
		os.RemoveAll(root)
	})

	config := configs.DefaultConfig()
	config.Engine.Binary = binary
	config.Engine.Homedir = env.Homedir
	config.Engine.OutputDir = env.Output
	if err := configs.SaveConfig("", config); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	return env
}

// CaptureOutput captures both stdout and stderr during function execution.
func CaptureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	outputChan := make(chan string, 2)
	for _, r := range []io.Reader{stdoutReader, stderrReader} {
		go func(r io.Reader) {
			var buf bytes.Buffer
			if _, err := io.Copy(&buf, r); err != nil {
				log.Fatalf("Failed to run copy command: %s", err)
			}
			outputChan <- buf.String()
		}(r)
	}

	err := fn()

	stdoutWriter.Close()
	stderrWriter.Close()

	os.Stdout = originalStdout
	os.Stderr = originalStderr

	first := <-outputChan
	second := <-outputChan
	return first + second, err
}

// CreateTestCLI creates a complete CLI instance carrying every command.
func CreateTestCLI(args ...string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "kaitiaki",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.RegisterPersistentFlags(rootCmd)
	rootCmd.AddCommand(cmd.Commands()...)
	rootCmd.SetArgs(args)
	return rootCmd
}

// Run executes the CLI and returns its combined output.
func Run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd.ResetGlobalState()
	return CaptureOutput(func() error {
		return CreateTestCLI(args...).Execute()
	})
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	// #nosec G306 -- test fixture
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}
