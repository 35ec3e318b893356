package workflows

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	kerrors "github.com/PolarWolf314/kaitiaki/internal/errors"
	"github.com/PolarWolf314/kaitiaki/internal/gnupg"
)

func TestListKeys(t *testing.T) {
	s := newFakeSetup(t, nil)
	ctx := context.Background()

	t.Run("AllKeys", func(t *testing.T) {
		result, err := ListKeys(ctx, ListKeysOptions{Engine: s.Settings})
		if err != nil {
			t.Fatalf("ListKeys failed: %v", err)
		}
		if len(result.Keys) != 2 {
			t.Fatalf("Expected 2 keys, got %d", len(result.Keys))
		}
		if result.Keys[0].Fingerprint != "FPRALICE" || result.Keys[0].Subkeys[0].Fingerprint != "FPRALICESUB" {
			t.Errorf("Unexpected first key: %+v", result.Keys[0])
		}
	})

	t.Run("SecretKeys", func(t *testing.T) {
		result, err := ListKeys(ctx, ListKeysOptions{Engine: s.Settings, Secret: true})
		if err != nil {
			t.Fatalf("ListKeys failed: %v", err)
		}
		if len(result.Keys) != 2 || result.Keys[0].Type != "sec" {
			t.Errorf("Expected 2 secret keys, got %+v", result.Keys)
		}
	})

	t.Run("NoMatchIsEmpty", func(t *testing.T) {
		result, err := ListKeys(ctx, ListKeysOptions{Engine: s.Settings, Patterns: []string{"nobody"}})
		if err != nil {
			t.Fatalf("ListKeys failed: %v", err)
		}
		if len(result.Keys) != 0 {
			t.Errorf("Expected no keys, got %d", len(result.Keys))
		}
	})
}

func TestOpenEngine_PreparesHomedir(t *testing.T) {
	s := newFakeSetup(t, nil)

	eng, err := OpenEngine(context.Background(), s.Settings)
	if err != nil {
		t.Fatalf("OpenEngine failed: %v", err)
	}
	if eng.Version().String() != "2.4.5" {
		t.Errorf("Expected version 2.4.5, got %s", eng.Version())
	}
	info, err := os.Stat(s.Homedir)
	if err != nil {
		t.Fatalf("Homedir not created: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0700 {
		t.Errorf("Expected homedir mode 0700, got %o", info.Mode().Perm())
	}
}

func TestOpenEngine_HomedirOverride(t *testing.T) {
	s := newFakeSetup(t, nil)
	override := filepath.Join(t.TempDir(), "other-home")
	s.Settings.Homedir = override

	eng, err := OpenEngine(context.Background(), s.Settings)
	if err != nil {
		t.Fatalf("OpenEngine failed: %v", err)
	}
	if eng.Homedir() != override {
		t.Errorf("Expected homedir %s, got %s", override, eng.Homedir())
	}
}

func TestGenerateKey(t *testing.T) {
	s := newFakeSetup(t, nil)

	t.Run("ReportsFingerprint", func(t *testing.T) {
		result, err := GenerateKey(context.Background(), GenerateKeyOptions{
			Engine: s.Settings,
			Params: gnupg.KeyParams{NameReal: "Alice", NameEmail: "alice@example.com"},
		})
		if err != nil {
			t.Fatalf("GenerateKey failed: %v", err)
		}
		if result.Fingerprint != "FPRNEWKEY" {
			t.Errorf("Expected fingerprint FPRNEWKEY, got %q", result.Fingerprint)
		}
	})

	t.Run("RejectsInvalidEmail", func(t *testing.T) {
		_, err := GenerateKey(context.Background(), GenerateKeyOptions{
			Engine: s.Settings,
			Params: gnupg.KeyParams{NameEmail: "not-an-email"},
		})
		if !errors.Is(err, kerrors.ErrInvalidEmail) {
			t.Errorf("Expected ErrInvalidEmail, got %v", err)
		}
	})
}

func TestImportKeys(t *testing.T) {
	s := newFakeSetup(t, nil)
	keyFile := filepath.Join(t.TempDir(), "alice.asc")
	writeFile(t, keyFile, "-----BEGIN PGP PUBLIC KEY BLOCK-----\n")

	result, err := ImportKeys(context.Background(), ImportKeysOptions{
		Engine: s.Settings,
		Paths:  []string{keyFile},
		Data:   []byte("piped key"),
	})
	if err != nil {
		t.Fatalf("ImportKeys failed: %v", err)
	}
	if len(result.Results) != 2 {
		t.Errorf("Expected one invocation per source, got %d", len(result.Results))
	}
	if len(result.Fingerprints) != 1 || result.Fingerprints[0] != "FPRIMPORTED" {
		t.Errorf("Expected deduplicated [FPRIMPORTED], got %q", result.Fingerprints)
	}

	entries := s.auditEntries(t)
	if len(entries) < 2 || entries[len(entries)-1].Files[0] != keyFile {
		t.Errorf("Expected audit entries for both imports, got %+v", entries)
	}
}

func TestImportKeys_NothingToImport(t *testing.T) {
	s := newFakeSetup(t, nil)
	if _, err := ImportKeys(context.Background(), ImportKeysOptions{Engine: s.Settings}); !errors.Is(err, kerrors.ErrFileNotProvided) {
		t.Errorf("Expected ErrFileNotProvided, got %v", err)
	}
}

func TestExportKeys(t *testing.T) {
	s := newFakeSetup(t, nil)
	ctx := context.Background()

	t.Run("ToMemory", func(t *testing.T) {
		result, err := ExportKeys(ctx, ExportKeysOptions{Engine: s.Settings, KeyIDs: []string{"alice"}, Armor: true})
		if err != nil {
			t.Fatalf("ExportKeys failed: %v", err)
		}
		if !strings.HasPrefix(string(result.Data), "-----BEGIN PGP") {
			t.Errorf("Expected armored key data, got %q", result.Data)
		}
	})

	t.Run("SecretToFile", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "secret.asc")
		result, err := ExportKeys(ctx, ExportKeysOptions{
			Engine:     s.Settings,
			KeyIDs:     []string{"alice"},
			Secret:     true,
			Output:     out,
			Passphrase: "pw",
		})
		if err != nil {
			t.Fatalf("ExportKeys failed: %v", err)
		}
		if result.Output != out {
			t.Errorf("Expected output %s, got %s", out, result.Output)
		}
		if _, err := os.Stat(out); err != nil {
			t.Errorf("Expected exported file: %v", err)
		}
	})

	t.Run("NothingExported", func(t *testing.T) {
		_, err := ExportKeys(ctx, ExportKeysOptions{Engine: s.Settings, KeyIDs: []string{"NOKEY"}})
		if !errors.Is(err, kerrors.ErrKeyNotFound) {
			t.Errorf("Expected ErrKeyNotFound, got %v", err)
		}
	})

	t.Run("NothingExportedToFile", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "missing.asc")
		_, err := ExportKeys(ctx, ExportKeysOptions{Engine: s.Settings, KeyIDs: []string{"NOKEY"}, Output: out})
		if !errors.Is(err, kerrors.ErrKeyNotFound) {
			t.Errorf("Expected ErrKeyNotFound, got %v", err)
		}
		if _, err := os.Stat(out); !os.IsNotExist(err) {
			t.Errorf("Expected no file at %s, got %v", out, err)
		}
	})
}

func TestDeleteKeys(t *testing.T) {
	t.Run("SecretThenPublic", func(t *testing.T) {
		s := newFakeSetup(t, nil)
		result, err := DeleteKeys(context.Background(), DeleteKeysOptions{
			Engine:   s.Settings,
			Patterns: []string{"bob"},
			Secret:   true,
		})
		if err != nil {
			t.Fatalf("DeleteKeys failed: %v", err)
		}
		if !slices.Equal(result.Fingerprints, []string{"FPRBOB"}) {
			t.Errorf("Expected [FPRBOB], got %q", result.Fingerprints)
		}

		var deletes []string
		for _, line := range s.recorded(t) {
			if strings.Contains(line, "--delete-") {
				deletes = append(deletes, line)
			}
		}
		if len(deletes) != 2 ||
			!strings.HasSuffix(deletes[0], "--yes --delete-secret-keys FPRBOB") ||
			!strings.HasSuffix(deletes[1], "--yes --delete-keys FPRBOB") {
			t.Errorf("Expected secret then public deletion, got %q", deletes)
		}
	})

	t.Run("NoMatch", func(t *testing.T) {
		s := newFakeSetup(t, nil)
		_, err := DeleteKeys(context.Background(), DeleteKeysOptions{Engine: s.Settings, Patterns: []string{"nobody"}})
		if !errors.Is(err, kerrors.ErrKeyNotFound) {
			t.Errorf("Expected ErrKeyNotFound, got %v", err)
		}
	})

	t.Run("DeleteProblem", func(t *testing.T) {
		s := newFakeSetup(t, map[string]string{"FAKE_DELETE_PROBLEM": "1"})
		result, err := DeleteKeys(context.Background(), DeleteKeysOptions{Engine: s.Settings, Patterns: []string{"bob"}})
		if !errors.Is(err, kerrors.ErrOperationFailed) {
			t.Fatalf("Expected ErrOperationFailed, got %v", err)
		}
		problems := result.Results[0].Problems
		if len(problems) != 1 || problems[0]["delete_problem"] != gnupg.DeleteProblemReason("2") {
			t.Errorf("Expected a delete problem, got %v", problems)
		}
	})
}

func TestTrust(t *testing.T) {
	s := newFakeSetup(t, nil)

	t.Run("WritesOwnertrust", func(t *testing.T) {
		result, err := Trust(context.Background(), TrustOptions{Engine: s.Settings, Patterns: []string{"bob"}, Level: "full"})
		if err != nil {
			t.Fatalf("Trust failed: %v", err)
		}
		if result.Level != gnupg.TrustFully {
			t.Errorf("Expected TrustFully, got %d", result.Level)
		}
		if !slices.Contains(s.recorded(t), "FPRBOB:5:") {
			t.Errorf("Expected ownertrust line FPRBOB:5:, got %q", s.recorded(t))
		}
	})

	t.Run("InvalidLevel", func(t *testing.T) {
		_, err := Trust(context.Background(), TrustOptions{Engine: s.Settings, Patterns: []string{"bob"}, Level: "absolute"})
		if !errors.Is(err, kerrors.ErrInvalidTrustLevel) {
			t.Errorf("Expected ErrInvalidTrustLevel, got %v", err)
		}
	})
}

func TestRevoke_DefaultOutput(t *testing.T) {
	s := newFakeSetup(t, nil)

	result, err := Revoke(context.Background(), RevokeOptions{Engine: s.Settings, KeyID: "AAAA1111"})
	if err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	want := filepath.Join(s.Output, "AAAA1111.rev.asc")
	if result.Output != want {
		t.Errorf("Expected output %s, got %s", want, result.Output)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("Expected revocation certificate: %v", err)
	}
}

func TestSucceeded(t *testing.T) {
	tests := []struct {
		name string
		res  gnupg.Result
		want bool
	}{
		{"Clean", gnupg.Result{Success: true, ExitCode: 0}, true},
		{"NonZeroExit", gnupg.Result{Success: true, ExitCode: 2}, false},
		{"StatusFailure", gnupg.Result{Success: false, ExitCode: 0}, false},
		{"PartialSecretExport", gnupg.Result{Success: true, ExitCode: 2, Operation: gnupg.OpExportSecretKey}, true},
		{"FailedSecretExport", gnupg.Result{Success: false, ExitCode: 2, Operation: gnupg.OpExportSecretKey}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Succeeded(tc.res); got != tc.want {
				t.Errorf("Succeeded() = %v, want %v", got, tc.want)
			}
		})
	}
}
