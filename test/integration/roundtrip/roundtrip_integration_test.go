package roundtrip_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PolarWolf314/kaitiaki/internal/audit"
	"github.com/PolarWolf314/kaitiaki/internal/gnupg"
	"github.com/PolarWolf314/kaitiaki/internal/workflows"
	"github.com/PolarWolf314/kaitiaki/test/integration/shared"
)

const testEmail = "integration@example.com"

// generateKey creates an unprotected key for testEmail and returns its fingerprint.
func generateKey(t *testing.T) string {
	t.Helper()
	output, err := shared.Run(t, "keys", "generate", "--name", "Integration Test", "--email", testEmail)
	if err != nil {
		t.Fatalf("keys generate failed: %v\n%s", err, output)
	}

	output, err = shared.Run(t, "keys", "list", "--secret", "--json", testEmail)
	if err != nil {
		t.Fatalf("keys list failed: %v\n%s", err, output)
	}
	var keys []gnupg.Key
	if err := json.Unmarshal([]byte(output[strings.Index(output, "["):]), &keys); err != nil {
		t.Fatalf("Failed to decode key listing: %v\n%s", err, output)
	}
	if len(keys) != 1 || keys[0].Type != "sec" {
		t.Fatalf("Expected one secret key, got %+v", keys)
	}
	if len(keys[0].UserIDs) != 1 || !strings.Contains(keys[0].UserIDs[0], testEmail) {
		t.Errorf("Unexpected user IDs %q", keys[0].UserIDs)
	}
	return keys[0].Fingerprint
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	env := shared.SetupTestEnvironment(t)
	generateKey(t)

	src := filepath.Join(env.Root, "files", "notes.txt")
	nested := filepath.Join(env.Root, "files", "deep", "plan.md")
	shared.WriteFile(t, src, "meet at noon\n")
	shared.WriteFile(t, nested, "# plan\n")

	output, err := shared.Run(t, "encrypt", "-r", testEmail, "--jobs", "2", filepath.Join(env.Root, "files"))
	if err != nil {
		t.Fatalf("encrypt failed: %v\n%s", err, output)
	}
	for _, p := range []string{src + ".gpg", nested + ".gpg"} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("Expected %s: %v", p, err)
		}
	}

	plainDir := filepath.Join(env.Root, "plain")
	if err := os.MkdirAll(plainDir, 0700); err != nil {
		t.Fatalf("Failed to create %s: %v", plainDir, err)
	}
	output, err = shared.Run(t, "decrypt", "--output-dir", plainDir, src+".gpg")
	if err != nil {
		t.Fatalf("decrypt failed: %v\n%s", err, output)
	}
	data, err := os.ReadFile(filepath.Join(plainDir, "notes.txt"))
	if err != nil {
		t.Fatalf("Failed to read decrypted file: %v", err)
	}
	if string(data) != "meet at noon\n" {
		t.Errorf("Decrypted content mismatch: %q", data)
	}
}

func TestSignVerify(t *testing.T) {
	env := shared.SetupTestEnvironment(t)
	generateKey(t)

	doc := filepath.Join(env.Root, "release.txt")
	shared.WriteFile(t, doc, "v1.0.0\n")

	output, err := shared.Run(t, "sign", "--detach", doc)
	if err != nil {
		t.Fatalf("sign failed: %v\n%s", err, output)
	}

	output, err = shared.Run(t, "verify", doc+".sig")
	if err != nil {
		t.Fatalf("verify failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Good signature") || !strings.Contains(output, testEmail) {
		t.Errorf("Expected a good signature from %s, got: %s", testEmail, output)
	}

	shared.WriteFile(t, doc, "v1.0.1\n")
	output, err = shared.Run(t, "verify", doc+".sig")
	if err == nil {
		t.Fatalf("Expected verification of tampered data to fail:\n%s", output)
	}
	if !strings.Contains(output, "Verification failed") {
		t.Errorf("Expected a failure line, got: %s", output)
	}
}

func TestKeyLifecycle(t *testing.T) {
	env := shared.SetupTestEnvironment(t)
	fpr := generateKey(t)

	exported := filepath.Join(env.Root, "public.asc")
	output, err := shared.Run(t, "keys", "export", "-o", exported, fpr)
	if err != nil {
		t.Fatalf("keys export failed: %v\n%s", err, output)
	}
	data, err := os.ReadFile(exported)
	if err != nil || !strings.Contains(string(data), "BEGIN PGP PUBLIC KEY BLOCK") {
		t.Fatalf("Expected an armored public key, got %q (%v)", data, err)
	}

	if output, err := shared.Run(t, "keys", "trust", fpr, "--level", "ultimate"); err != nil {
		t.Fatalf("keys trust failed: %v\n%s", err, output)
	}

	output, err = shared.Run(t, "keys", "revoke", fpr)
	if err != nil {
		t.Fatalf("keys revoke failed: %v\n%s", err, output)
	}
	if _, err := os.Stat(filepath.Join(env.Output, fpr+".rev.asc")); err != nil {
		t.Errorf("Expected a revocation certificate: %v", err)
	}

	if output, err := shared.Run(t, "keys", "delete", "--secret", "--yes", fpr); err != nil {
		t.Fatalf("keys delete failed: %v\n%s", err, output)
	}
	output, err = shared.Run(t, "keys", "list")
	if err != nil {
		t.Fatalf("keys list failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "No keys found.") {
		t.Errorf("Expected an empty keyring, got: %s", output)
	}

	output, err = shared.Run(t, "keys", "import", exported)
	if err != nil {
		t.Fatalf("keys import failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, fpr) {
		t.Errorf("Expected %s to be imported, got: %s", fpr, output)
	}

	entries, err := audit.ReadEntries()
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	ops := make(map[string]bool)
	for _, e := range entries {
		ops[e.Operation] = true
	}
	for _, op := range []string{"GenerateKey", "ExportPublicKey", "Trust", "Revoke", "DeleteKey", "Import"} {
		if !ops[op] {
			t.Errorf("Expected an audit entry for %s, got %v", op, ops)
		}
	}
}

func TestDoctorHealthy(t *testing.T) {
	shared.SetupTestEnvironment(t)
	generateKey(t)

	result, err := workflows.Doctor(context.Background(), workflows.DoctorOptions{})
	if err != nil {
		t.Fatalf("Doctor failed: %v", err)
	}
	if result.Summary.Errors != 0 {
		t.Errorf("Expected no doctor errors, got %+v", result.Checks)
	}
}
