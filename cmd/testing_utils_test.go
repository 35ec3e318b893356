package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/PolarWolf314/kaitiaki/internal/configs"

	"github.com/spf13/cobra"
)

// fakeEngineEnv makes the test binary act as a minimal gpg for the CLI tests.
const fakeEngineEnv = "KAITIAKI_FAKE_CLI"

const fakeListing = "pub:u:3072:1:CCCC3333CCCC3333:1700000000:::u:::scESC:\n" +
	"fpr:::::::::FPRCAROL:\n" +
	"uid:u::::1700000000::H3::Carol <carol@example.com>::\n"

func TestMain(m *testing.M) {
	if os.Getenv(fakeEngineEnv) != "" {
		os.Exit(runFakeEngine(os.Args[1:]))
	}
	os.Exit(m.Run())
}

func runFakeEngine(args []string) int {
	_, _ = io.Copy(io.Discard, os.Stdin)
	switch {
	case slices.Contains(args, "--list-config"):
		fmt.Println("cfg:version:2.4.5")
	case slices.Contains(args, "--list-keys"), slices.Contains(args, "--list-secret-keys"):
		fmt.Print(fakeListing)
	default:
		fmt.Fprintln(os.Stderr, "[GNUPG:] FAILURE unsupported 1")
		return 2
	}
	return 0
}

// testEnv is a temporary user config directory, audit log and gpg homedir.
type testEnv struct {
	Root    string
	Homedir string
}

// setupTestEnvironment points the user settings at a temp directory and
// resets the command globals. With fake set, the saved config runs the test
// binary as gpg.
func setupTestEnvironment(t *testing.T, fake bool) *testEnv {
	t.Helper()
	root := t.TempDir()

	original := configs.UserKaitiakiSettings
	configs.UserKaitiakiSettings = configs.NewUserSettings(filepath.Join(root, "config"), filepath.Join(root, "data"), "testuser")
	ResetGlobalState()
	t.Cleanup(func() {
		configs.UserKaitiakiSettings = original
		ResetGlobalState()
	})

	env := &testEnv{Root: root, Homedir: filepath.Join(root, "gnupg")}
	if !fake {
		return env
	}

	binary, err := os.Executable()
	if err != nil {
		t.Fatalf("os.Executable failed: %v", err)
	}
	config := configs.DefaultConfig()
	config.Engine.Binary = binary
	config.Engine.Homedir = env.Homedir
	config.Engine.OutputDir = filepath.Join(root, "out")
	config.Engine.Env = map[string]string{fakeEngineEnv: "1"}
	if err := configs.SaveConfig("", config); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	return env
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
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

	// Close writers to signal EOF
	stdoutWriter.Close()
	stderrWriter.Close()

	os.Stdout = originalStdout
	os.Stderr = originalStderr

	first := <-outputChan
	second := <-outputChan
	return first + second, err
}

// newTestCLI creates a fresh root command carrying every kaitiaki command.
func newTestCLI(args ...string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "kaitiaki",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	RegisterPersistentFlags(rootCmd)
	rootCmd.AddCommand(Commands()...)
	rootCmd.SetArgs(args)
	return rootCmd
}

// runCLI executes the CLI with args and returns the combined output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return captureOutput(func() error {
		return newTestCLI(args...).Execute()
	})
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}
