package gnupg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	kerrors "github.com/PolarWolf314/kaitiaki/internal/errors"
)

func TestNew_DetectsVersion(t *testing.T) {
	eng := newFakeEngine(t, "echo", nil)

	v := eng.Version()
	if v.Major != 2 || v.Minor != 4 || v.Full != "2.4.5" {
		t.Errorf("Version() = %+v, expected 2.4 (2.4.5)", v)
	}
}

func TestNew_RejectsMissingDirectories(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")

	t.Run("Homedir", func(t *testing.T) {
		_, err := New(context.Background(), Options{Binary: testBinary(t), Homedir: missing, OutputDir: t.TempDir()})
		if !errors.Is(err, kerrors.ErrHomedir) {
			t.Errorf("Expected ErrHomedir, got %v", err)
		}
	})

	t.Run("OutputDir", func(t *testing.T) {
		_, err := New(context.Background(), Options{Binary: testBinary(t), Homedir: t.TempDir(), OutputDir: missing})
		if !errors.Is(err, kerrors.ErrOutputDir) {
			t.Errorf("Expected ErrOutputDir, got %v", err)
		}
	})
}

func TestRun_EngineNotFound(t *testing.T) {
	eng := &Engine{binary: "kaitiaki-no-such-gpg-binary", homedir: t.TempDir()}

	res, err := eng.Run(context.Background(), Invocation{Operation: OpListKeys, Args: []string{"--list-keys"}})
	if !errors.Is(err, kerrors.ErrEngineNotFound) {
		t.Errorf("Expected ErrEngineNotFound, got %v", err)
	}
	if res.Operation != OpListKeys || res.ExitCode != ExitCodeUnknown || res.Success {
		t.Errorf("Unexpected result for a failed launch: %+v", res)
	}
	if !errors.Is(err, kerrors.ErrLaunchFailed) {
		t.Errorf("Expected ErrLaunchFailed, got %v", err)
	}
}

func TestNew_WrapsLaunchFailure(t *testing.T) {
	_, err := New(context.Background(), Options{
		Binary:    "kaitiaki-no-such-gpg-binary",
		Homedir:   t.TempDir(),
		OutputDir: t.TempDir(),
	})
	if !errors.Is(err, kerrors.ErrEngineInit) || !errors.Is(err, kerrors.ErrEngineNotFound) {
		t.Errorf("Expected ErrEngineInit wrapping ErrEngineNotFound, got %v", err)
	}
}

func TestRun_PassesInputThrough(t *testing.T) {
	eng := newFakeEngine(t, "echo", nil)

	res, err := eng.Run(context.Background(), Invocation{Operation: OpImport, Input: []byte("key material")})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Output != "key material" {
		t.Errorf("Output = %q, expected %q", res.Output, "key material")
	}
	if !res.Success || res.ExitCode != 0 {
		t.Errorf("Expected success with exit 0, got success=%t exit=%d", res.Success, res.ExitCode)
	}
	if res.Status != "PLAINTEXT" || res.StatusMessage != "12" {
		t.Errorf("Last status = %q %q, expected PLAINTEXT 12", res.Status, res.StatusMessage)
	}
	if len(res.DebugLog) != 1 || res.DebugLog[0] != "read 12 bytes" {
		t.Errorf("DebugLog = %q", res.DebugLog)
	}
	if res.Operation != OpImport || res.InvocationID == "" {
		t.Errorf("Expected operation and invocation id to be set, got %v %q", res.Operation, res.InvocationID)
	}
}

func TestRun_PassphraseLineComesFirst(t *testing.T) {
	eng := newFakeEngine(t, "echo", nil)

	res, err := eng.Run(context.Background(), Invocation{
		Operation:  OpDecrypt,
		Passphrase: "correct horse",
		Input:      []byte("ciphertext"),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Output != "correct horse\nciphertext" {
		t.Errorf("Output = %q", res.Output)
	}
}

func TestRun_StreamsInputFile(t *testing.T) {
	eng := newFakeEngine(t, "echo", nil)

	// Larger than one feeder buffer so the read/write loop turns over.
	content := strings.Repeat("0123456789abcdef", 3*bufferSize/16+7)
	path := filepath.Join(t.TempDir(), "plain.txt")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write input file: %v", err)
	}

	t.Run("InputPath", func(t *testing.T) {
		res, err := eng.Run(context.Background(), Invocation{Operation: OpEncrypt, InputPath: path})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if res.Output != content {
			t.Errorf("Output length = %d, expected %d", len(res.Output), len(content))
		}
	})

	t.Run("InputFile", func(t *testing.T) {
		res, err := eng.Run(context.Background(), Invocation{Operation: OpEncrypt, InputFile: strings.NewReader(content)})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if res.Output != content {
			t.Errorf("Output length = %d, expected %d", len(res.Output), len(content))
		}
	})

	t.Run("LiteralInputWins", func(t *testing.T) {
		res, err := eng.Run(context.Background(), Invocation{Operation: OpEncrypt, Input: []byte("literal"), InputPath: path})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if res.Output != "literal" {
			t.Errorf("Output = %q, expected literal payload", res.Output)
		}
	})
}

func TestRun_MissingInputFile(t *testing.T) {
	eng := newFakeEngine(t, "echo", nil)

	_, err := eng.Run(context.Background(), Invocation{
		Operation: OpEncrypt,
		InputPath: filepath.Join(t.TempDir(), "nope.txt"),
	})
	if !errors.Is(err, kerrors.ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound, got %v", err)
	}
}

func TestRun_InterleavedStreamsLoseNothing(t *testing.T) {
	tests := []struct {
		name  string
		bytes int
		lines int
	}{
		{"Empty", 0, 1},
		{"SmallOutput", 10, 3},
		{"ManyLines", 1000, 200},
		{"LargeChunks", 5 * bufferSize, 4},
		{"UnevenSplit", 3*bufferSize + 13, 7},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			eng := newFakeEngine(t, "interleave", map[string]string{
				"FAKE_BYTES": strconv.Itoa(tc.bytes),
				"FAKE_LINES": strconv.Itoa(tc.lines),
			})

			res, err := eng.Run(context.Background(), Invocation{Operation: OpNotSet})
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}

			statusBytes := 0
			for i := 0; i < tc.lines; i++ {
				statusBytes += len(StatusPrefix + "PROGRESS line " + strconv.Itoa(i) + "\n")
			}
			if len(res.RawData) != tc.bytes+statusBytes {
				t.Errorf("len(RawData) = %d, expected %d", len(res.RawData), tc.bytes+statusBytes)
			}
			if len(res.Output) != tc.bytes {
				t.Errorf("len(Output) = %d, expected %d", len(res.Output), tc.bytes)
			}
			if res.Status != "PROGRESS" || res.StatusMessage != "line "+strconv.Itoa(tc.lines-1) {
				t.Errorf("Last status = %q %q", res.Status, res.StatusMessage)
			}
		})
	}
}

func TestRun_DrainsLargeStreamsConcurrently(t *testing.T) {
	const size = 1 << 20
	eng := newFakeEngine(t, "flood", map[string]string{"FAKE_BYTES": strconv.Itoa(size)})
	input := []byte(strings.Repeat("i", size))

	done := make(chan Result, 1)
	go func() {
		res, err := eng.Run(context.Background(), Invocation{Operation: OpEncrypt, Input: input})
		if err != nil {
			t.Errorf("Run failed: %v", err)
		}
		done <- res
	}()

	select {
	case res := <-done:
		if len(res.Output) != size {
			t.Errorf("len(Output) = %d, expected %d", len(res.Output), size)
		}
		if res.Status != "STDIN_BYTES" || res.StatusMessage != strconv.Itoa(size) {
			t.Errorf("Last status = %q %q, expected all stdin to arrive", res.Status, res.StatusMessage)
		}
		if len(res.DebugLog) != size/64 {
			t.Errorf("len(DebugLog) = %d, expected %d", len(res.DebugLog), size/64)
		}
	case <-time.After(60 * time.Second):
		t.Fatal("Run did not finish; pipes are not drained concurrently")
	}
}

func TestRun_ExitCode(t *testing.T) {
	eng := newFakeEngine(t, "exit", map[string]string{"FAKE_EXIT": "2"})

	res, err := eng.Run(context.Background(), Invocation{Operation: OpSign, Input: []byte("data")})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.ExitCode != 2 {
		t.Errorf("ExitCode = %d, expected 2", res.ExitCode)
	}
	if res.Success {
		t.Error("Expected FAILURE to mark the result unsuccessful")
	}
	if res.ErrorMessage() != "sign 17" {
		t.Errorf("ErrorMessage() = %q", res.ErrorMessage())
	}
}

func TestRun_ExportSecretKeyPartialFailure(t *testing.T) {
	t.Run("SomethingExported", func(t *testing.T) {
		eng := newFakeEngine(t, "export-partial", nil)

		res, err := eng.ExportSecretKeys(context.Background(), ExportOptions{Armor: true, Passphrase: "pw"})
		if err != nil {
			t.Fatalf("ExportSecretKeys failed: %v", err)
		}
		if !res.Success {
			t.Error("Expected partial export to count as success")
		}
		if !strings.Contains(res.Output, "BEGIN PGP PRIVATE KEY BLOCK") {
			t.Errorf("Output = %q", res.Output)
		}
	})

	t.Run("NothingExported", func(t *testing.T) {
		eng := newFakeEngine(t, "export-partial", map[string]string{"FAKE_NOTHING": "1"})

		res, err := eng.ExportSecretKeys(context.Background(), ExportOptions{Passphrase: "pw"})
		if err != nil {
			t.Fatalf("ExportSecretKeys failed: %v", err)
		}
		if res.Success {
			t.Error("Expected export with nothing exported to fail")
		}
	})

	t.Run("PublicExportFails", func(t *testing.T) {
		eng := newFakeEngine(t, "export-partial", nil)

		res, err := eng.ExportPublicKeys(context.Background(), ExportOptions{})
		if err != nil {
			t.Fatalf("ExportPublicKeys failed: %v", err)
		}
		if res.Success {
			t.Error("Expected FAILURE outside secret export to fail")
		}
	})
}

func TestRun_StatusProblems(t *testing.T) {
	status := "gpg: Signature made today\n" +
		"[GNUPG:] NEWSIG\n" +
		"[GNUPG:] BADSIG 0000111122223333 Bob <bob@example.com>\n"
	eng := newFakeEngine(t, "status", map[string]string{"FAKE_STATUS": status})

	res, err := eng.Verify(context.Background(), VerifyOptions{InputFile: strings.NewReader("signed")})
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if res.Success {
		t.Error("Expected BADSIG to fail verification")
	}
	if res.Status != "bad signature" {
		t.Errorf("Status = %q, expected %q", res.Status, "bad signature")
	}
	if len(res.Problems) != 1 || res.Problems[0]["key_id"] != "0000111122223333" || res.Problems[0]["username"] != "Bob <bob@example.com>" {
		t.Errorf("Problems = %v", res.Problems)
	}
}

func TestRun_ListKeys(t *testing.T) {
	eng := newFakeEngine(t, "listing", nil)

	keys, res, err := eng.ListKeys(context.Background(), false, false)
	if err != nil {
		t.Fatalf("ListKeys failed: %v", err)
	}
	if !res.Success {
		t.Errorf("Expected success, status %q", res.Status)
	}
	if len(keys) != 2 {
		t.Fatalf("len(keys) = %d, expected 2", len(keys))
	}
	if keys[0].KeyID != "ABCD1234ABCD1234" || len(keys[0].UserIDs) != 2 || len(keys[0].Subkeys) != 1 {
		t.Errorf("First key decoded incorrectly: %+v", keys[0])
	}
	if keys[1].Expires != "1900000000" || keys[1].UserIDs[0] != "Bob <bob@example.com>" {
		t.Errorf("Second key decoded incorrectly: %+v", keys[1])
	}
}

func TestRun_EnvironmentPassthrough(t *testing.T) {
	eng := newFakeEngine(t, "env", map[string]string{"FAKE_PROBE": "from engine"})

	t.Run("EngineEnv", func(t *testing.T) {
		res, err := eng.Run(context.Background(), Invocation{})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if res.Output != "from engine" {
			t.Errorf("Output = %q", res.Output)
		}
	})

	t.Run("InvocationOverrides", func(t *testing.T) {
		res, err := eng.Run(context.Background(), Invocation{Env: map[string]string{"FAKE_PROBE": "from invocation"}})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if res.Output != "from invocation" {
			t.Errorf("Output = %q", res.Output)
		}
	})
}

func TestRun_WorkingDirectory(t *testing.T) {
	eng := newFakeEngine(t, "pwd", nil)
	dir := t.TempDir()

	res, err := eng.Run(context.Background(), Invocation{Dir: dir})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	want, _ := filepath.EvalSymlinks(dir)
	got, _ := filepath.EvalSymlinks(res.Output)
	if got != want {
		t.Errorf("Working directory = %q, expected %q", got, want)
	}
}

func TestRun_ArgumentVector(t *testing.T) {
	eng := newFakeEngine(t, "args", nil)

	res, err := eng.Run(context.Background(), Invocation{
		Operation:  OpSign,
		Args:       []string{"--detach-sign"},
		Passphrase: "pw",
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	got := strings.Split(strings.TrimSpace(res.Output), "\n")
	want := eng.BuildArgs(Invocation{Args: []string{"--detach-sign"}, Passphrase: "pw"})[1:]
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("Engine saw %q, expected %q", got, want)
	}
	if got[0] != "--pinentry-mode" || got[1] != "loopback" {
		t.Errorf("Expected loopback pinentry first on gpg 2.4, got %q", got[:2])
	}
}
