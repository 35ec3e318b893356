package gnupg

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
)

// ListKeys lists public keys, or secret keys when secret is true. With
// signatures set, sig lines are included for each user ID.
func (e *Engine) ListKeys(ctx context.Context, secret, signatures bool, keys ...string) ([]Key, Result, error) {
	args := []string{"--list-keys"}
	switch {
	case secret:
		args = []string{"--list-secret-keys"}
	case signatures:
		args = []string{"--list-sigs"}
	}
	args = append(args, "--with-fingerprint", "--with-keygrip")
	args = append(args, keys...)

	res, err := e.Run(ctx, Invocation{Operation: OpListKeys, Args: args})
	if err != nil {
		return nil, res, err
	}
	return res.Keys(), res, nil
}

// KeyParams are the parameters of an unattended key generation script.
// Extra holds additional "Name: value" lines such as Subkey-Type.
type KeyParams struct {
	KeyType     string
	KeyLength   int
	KeyUsage    string
	NameReal    string
	NameEmail   string
	NameComment string
	ExpireDate  string
	Extra       map[string]string
}

// GenKeyInput renders the batch script gpg --gen-key reads from stdin. An
// empty passphrase produces an unprotected key.
func GenKeyInput(p KeyParams, passphrase string) string {
	if p.KeyType == "" {
		p.KeyType = "RSA"
	}
	if p.KeyLength == 0 {
		p.KeyLength = 2048
	}
	if p.NameReal == "" {
		p.NameReal = "Autogenerated Key"
	}
	if p.NameEmail == "" {
		p.NameEmail = defaultEmail()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Key-Type: %s\n", p.KeyType)
	fmt.Fprintf(&b, "Key-Length: %d\n", p.KeyLength)
	if p.KeyUsage != "" {
		fmt.Fprintf(&b, "Key-Usage: %s\n", p.KeyUsage)
	}
	fmt.Fprintf(&b, "Name-Real: %s\n", p.NameReal)
	if p.NameComment != "" {
		fmt.Fprintf(&b, "Name-Comment: %s\n", p.NameComment)
	}
	fmt.Fprintf(&b, "Name-Email: %s\n", p.NameEmail)
	if p.ExpireDate != "" {
		fmt.Fprintf(&b, "Expire-Date: %s\n", p.ExpireDate)
	}

	names := make([]string, 0, len(p.Extra))
	for k := range p.Extra {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(&b, "%s: %s\n", k, p.Extra[k])
	}

	if passphrase != "" {
		fmt.Fprintf(&b, "Passphrase: %s\n", passphrase)
	} else {
		b.WriteString("%no-protection\n")
	}
	b.WriteString("%commit\n")
	return b.String()
}

func defaultEmail() string {
	user := os.Getenv("LOGNAME")
	if user == "" {
		user = os.Getenv("USER")
	}
	if user == "" {
		user = "user"
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return user + "@" + host
}

// GenerateKey creates a key pair from params. The passphrase travels inside
// the script, not on --passphrase-fd, because stdin carries the script.
func (e *Engine) GenerateKey(ctx context.Context, p KeyParams, passphrase string) (Result, error) {
	return e.Run(ctx, Invocation{
		Operation: OpGenerateKey,
		Args:      []string{"--gen-key"},
		Input:     []byte(GenKeyInput(p, passphrase)),
	})
}

// ImportKeys imports armored or binary key material.
func (e *Engine) ImportKeys(ctx context.Context, data []byte) (Result, error) {
	return e.Run(ctx, Invocation{
		Operation: OpImport,
		Args:      []string{"--import"},
		Input:     data,
	})
}

// ImportKeysFromFile streams a key file into --import.
func (e *Engine) ImportKeysFromFile(ctx context.Context, path string) (Result, error) {
	return e.Run(ctx, Invocation{
		Operation: OpImport,
		Args:      []string{"--import"},
		InputPath: path,
	})
}

// ExportOptions selects keys and formatting for an export.
type ExportOptions struct {
	KeyIDs []string
	Armor  bool

	// Output is a file path; empty means the key material is returned in Result.Output.
	Output string

	// Passphrase unlocks secret keys; ignored for public exports.
	Passphrase string
}

func exportArgs(command string, opts ExportOptions) []string {
	var args []string
	if opts.Armor {
		args = append(args, "--armor")
	}
	if opts.Output != "" {
		args = append(args, "--yes", "--output", opts.Output)
	}
	args = append(args, command)
	return append(args, opts.KeyIDs...)
}

// ExportPublicKeys exports public keys.
func (e *Engine) ExportPublicKeys(ctx context.Context, opts ExportOptions) (Result, error) {
	return e.Run(ctx, Invocation{
		Operation: OpExportPublicKey,
		Args:      exportArgs("--export", opts),
	})
}

// ExportSecretKeys exports secret keys. Keys that cannot be unlocked are
// skipped by gpg; the Result is still successful if anything was exported.
func (e *Engine) ExportSecretKeys(ctx context.Context, opts ExportOptions) (Result, error) {
	return e.Run(ctx, Invocation{
		Operation:  OpExportSecretKey,
		Args:       exportArgs("--export-secret-keys", opts),
		Passphrase: opts.Passphrase,
	})
}

// DeleteKeys deletes keys by fingerprint. With secret set the secret keys
// are removed, otherwise the public keys; gpg refuses the latter while a
// secret key still exists (DELETE_PROBLEM 2).
func (e *Engine) DeleteKeys(ctx context.Context, fingerprints []string, secret bool, passphrase string) (Result, error) {
	command := "--delete-keys"
	if secret {
		command = "--delete-secret-keys"
	}
	args := append([]string{"--yes", command}, fingerprints...)
	return e.Run(ctx, Invocation{
		Operation:  OpDeleteKey,
		Args:       args,
		Passphrase: passphrase,
	})
}

// TrustLevel is an ownertrust value as understood by --import-ownertrust.
type TrustLevel int

const (
	TrustUndefined TrustLevel = 2
	TrustNever     TrustLevel = 3
	TrustMarginal  TrustLevel = 4
	TrustFully     TrustLevel = 5
	TrustUltimate  TrustLevel = 6
)

var trustLevelNames = map[string]TrustLevel{
	"undefined": TrustUndefined,
	"never":     TrustNever,
	"marginal":  TrustMarginal,
	"full":      TrustFully,
	"ultimate":  TrustUltimate,
}

// ParseTrustLevel maps a name such as "full" to its TrustLevel.
func ParseTrustLevel(name string) (TrustLevel, bool) {
	level, ok := trustLevelNames[strings.ToLower(strings.TrimSpace(name))]
	return level, ok
}

// ImportOwnertrust feeds "FINGERPRINT:LEVEL:" lines to --import-ownertrust.
func (e *Engine) ImportOwnertrust(ctx context.Context, lines []string) (Result, error) {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(strings.TrimRight(l, "\n"))
		b.WriteString("\n")
	}
	return e.Run(ctx, Invocation{
		Operation: OpTrust,
		Args:      []string{"--import-ownertrust"},
		Input:     []byte(b.String()),
	})
}

// TrustKeys sets the same ownertrust level on every fingerprint.
func (e *Engine) TrustKeys(ctx context.Context, fingerprints []string, level TrustLevel) (Result, error) {
	lines := make([]string, len(fingerprints))
	for i, fpr := range fingerprints {
		lines[i] = fmt.Sprintf("%s:%d:", fpr, level)
	}
	return e.ImportOwnertrust(ctx, lines)
}

// revocationScript answers the --gen-revoke prompts: confirm, reason 0 (no
// reason), empty description, confirm.
const revocationScript = "y\n0\n\ny\n"

// GenerateRevocation writes a revocation certificate for keyID to output.
// gpg refuses --gen-revoke in batch mode, so --no-batch overrides the fixed
// --batch flag and the prompts are answered over --command-fd.
func (e *Engine) GenerateRevocation(ctx context.Context, keyID, passphrase, output string) (Result, error) {
	return e.Run(ctx, Invocation{
		Operation:  OpRevoke,
		Args:       []string{"--no-batch", "--command-fd", "0", "--armor", "--yes", "--output", output, "--gen-revoke", keyID},
		Passphrase: passphrase,
		Input:      []byte(revocationScript),
	})
}
