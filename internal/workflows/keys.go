package workflows

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/PolarWolf314/kaitiaki/internal/audit"
	kerrors "github.com/PolarWolf314/kaitiaki/internal/errors"
	"github.com/PolarWolf314/kaitiaki/internal/gnupg"
	"github.com/PolarWolf314/kaitiaki/internal/utils"
)

// ListKeysOptions configures the list workflow.
type ListKeysOptions struct {
	Engine EngineSettings

	// Patterns restrict the listing to matching user IDs or key IDs.
	Patterns []string

	Secret     bool
	Signatures bool
}

// ListKeysResult contains the decoded listing.
type ListKeysResult struct {
	Keys   []gnupg.Key
	Result gnupg.Result
}

// ListKeys lists public or secret keys.
func ListKeys(ctx context.Context, opts ListKeysOptions) (*ListKeysResult, error) {
	eng, err := OpenEngine(ctx, opts.Engine)
	if err != nil {
		return nil, err
	}
	return listKeys(ctx, eng, opts)
}

func listKeys(ctx context.Context, eng *gnupg.Engine, opts ListKeysOptions) (*ListKeysResult, error) {
	keys, res, err := eng.ListKeys(ctx, opts.Secret, opts.Signatures, opts.Patterns...)
	// gpg exits 2 when a pattern matches nothing; that is an empty listing.
	if err == nil && res.Success && res.ExitCode == 2 && len(opts.Patterns) > 0 {
		res.ExitCode = 0
	}
	record(res, err, func(e *audit.Entry) { e.KeyIDs = gnupg.Fingerprints(keys) })
	if err := check(res, err); err != nil {
		return nil, err
	}
	return &ListKeysResult{Keys: keys, Result: res}, nil
}

// GenerateKeyOptions configures key generation.
type GenerateKeyOptions struct {
	Engine     EngineSettings
	Params     gnupg.KeyParams
	Passphrase string
}

// GenerateKeyResult contains the new key's fingerprint.
type GenerateKeyResult struct {
	Fingerprint string
	Result      gnupg.Result
}

// GenerateKey generates a key pair.
//
// Returns ErrInvalidEmail if Params.NameEmail is set but malformed.
func GenerateKey(ctx context.Context, opts GenerateKeyOptions) (*GenerateKeyResult, error) {
	if opts.Params.NameEmail != "" && !utils.IsValidEmail(opts.Params.NameEmail) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrInvalidEmail, opts.Params.NameEmail)
	}
	if opts.Params.NameEmail == "" {
		opts.Params.NameEmail = utils.DefaultEmail()
	}

	eng, err := OpenEngine(ctx, opts.Engine)
	if err != nil {
		return nil, err
	}

	res, err := eng.GenerateKey(ctx, opts.Params, opts.Passphrase)
	result := &GenerateKeyResult{Result: res}
	// KEY_CREATED <type> <fingerprint> [<handle>]
	if v, ok := res.LastStatusValue("KEY_CREATED"); ok {
		if fields := strings.Fields(v); len(fields) >= 2 {
			result.Fingerprint = fields[1]
		}
	}
	record(res, err, func(e *audit.Entry) {
		if result.Fingerprint != "" {
			e.KeyIDs = []string{result.Fingerprint}
		}
	})
	if err := check(res, err); err != nil {
		return nil, err
	}
	return result, nil
}

// ImportKeysOptions configures the import workflow. Data, when set, is
// imported in addition to every file in Paths.
type ImportKeysOptions struct {
	Engine EngineSettings
	Paths  []string
	Data   []byte
}

// ImportKeysResult contains the fingerprints gpg reported as imported.
type ImportKeysResult struct {
	Fingerprints []string
	Results      []gnupg.Result
}

// ImportKeys imports key material from files and/or piped data.
//
// Returns ErrFileNotProvided if there is nothing to import.
func ImportKeys(ctx context.Context, opts ImportKeysOptions) (*ImportKeysResult, error) {
	if len(opts.Paths) == 0 && len(opts.Data) == 0 {
		return nil, kerrors.ErrFileNotProvided
	}

	eng, err := OpenEngine(ctx, opts.Engine)
	if err != nil {
		return nil, err
	}

	result := &ImportKeysResult{}
	seen := make(map[string]bool)
	collect := func(res gnupg.Result) {
		result.Results = append(result.Results, res)
		// IMPORT_OK <reason> [<fingerprint>]
		for _, v := range res.StatusValues("IMPORT_OK") {
			fields := strings.Fields(v)
			if len(fields) >= 2 && !seen[fields[1]] {
				seen[fields[1]] = true
				result.Fingerprints = append(result.Fingerprints, fields[1])
			}
		}
	}

	if len(opts.Data) > 0 {
		res, err := eng.ImportKeys(ctx, opts.Data)
		record(res, err, nil)
		if err := check(res, err); err != nil {
			return nil, err
		}
		collect(res)
	}
	for _, path := range opts.Paths {
		res, err := eng.ImportKeysFromFile(ctx, path)
		record(res, err, func(e *audit.Entry) { e.Files = []string{path} })
		if err := check(res, err); err != nil {
			return nil, fmt.Errorf("importing %s: %w", path, err)
		}
		collect(res)
	}
	return result, nil
}

// ExportKeysOptions configures the export workflow.
type ExportKeysOptions struct {
	Engine EngineSettings
	KeyIDs []string
	Secret bool
	Armor  bool

	// Output is a file path; empty returns the key material in Data.
	Output     string
	Passphrase string
}

// ExportKeysResult contains the exported material when no Output was given.
type ExportKeysResult struct {
	Data   []byte
	Output string
	Result gnupg.Result
}

// ExportKeys exports public or secret keys.
//
// Returns ErrKeyNotFound if gpg exported nothing.
func ExportKeys(ctx context.Context, opts ExportKeysOptions) (*ExportKeysResult, error) {
	eng, err := OpenEngine(ctx, opts.Engine)
	if err != nil {
		return nil, err
	}

	exportOpts := gnupg.ExportOptions{
		KeyIDs:     opts.KeyIDs,
		Armor:      opts.Armor,
		Output:     opts.Output,
		Passphrase: opts.Passphrase,
	}
	var res gnupg.Result
	if opts.Secret {
		res, err = eng.ExportSecretKeys(ctx, exportOpts)
	} else {
		res, err = eng.ExportPublicKeys(ctx, exportOpts)
	}
	record(res, err, func(e *audit.Entry) {
		e.KeyIDs = opts.KeyIDs
		e.OutputPath = opts.Output
	})
	if err := check(res, err); err != nil {
		return nil, err
	}

	// EXPORTED is emitted once per exported key, with or without --output.
	if len(res.StatusValues("EXPORTED")) == 0 {
		return nil, kerrors.ErrKeyNotFound
	}
	return &ExportKeysResult{Data: []byte(res.Output), Output: opts.Output, Result: res}, nil
}

// DeleteKeysOptions configures key deletion.
type DeleteKeysOptions struct {
	Engine   EngineSettings
	Patterns []string

	// Secret deletes the secret keys first, then the public keys.
	Secret     bool
	Passphrase string
}

// DeleteKeysResult lists what was deleted.
type DeleteKeysResult struct {
	Fingerprints []string
	Results      []gnupg.Result
}

// DeleteKeys resolves Patterns to fingerprints and deletes those keys.
//
// Returns ErrKeyNotFound if no key matches.
func DeleteKeys(ctx context.Context, opts DeleteKeysOptions) (*DeleteKeysResult, error) {
	eng, err := OpenEngine(ctx, opts.Engine)
	if err != nil {
		return nil, err
	}

	fprs, err := resolveFingerprints(ctx, eng, opts.Patterns, opts.Secret)
	if err != nil {
		return nil, err
	}

	result := &DeleteKeysResult{Fingerprints: fprs}
	passes := []bool{false}
	if opts.Secret {
		passes = []bool{true, false}
	}
	for _, secret := range passes {
		res, err := eng.DeleteKeys(ctx, fprs, secret, opts.Passphrase)
		record(res, err, func(e *audit.Entry) { e.KeyIDs = fprs })
		result.Results = append(result.Results, res)
		if err := check(res, err); err != nil {
			return result, err
		}
	}
	return result, nil
}

// TrustOptions configures ownertrust changes.
type TrustOptions struct {
	Engine   EngineSettings
	Patterns []string
	Level    string
}

// TrustResult lists the keys whose ownertrust was set.
type TrustResult struct {
	Fingerprints []string
	Level        gnupg.TrustLevel
	Result       gnupg.Result
}

// Trust sets the ownertrust of every key matching Patterns.
//
// Returns ErrInvalidTrustLevel for an unknown level and ErrKeyNotFound if
// no key matches.
func Trust(ctx context.Context, opts TrustOptions) (*TrustResult, error) {
	level, ok := gnupg.ParseTrustLevel(opts.Level)
	if !ok {
		return nil, fmt.Errorf("%w: %q (use undefined, never, marginal, full or ultimate)", kerrors.ErrInvalidTrustLevel, opts.Level)
	}

	eng, err := OpenEngine(ctx, opts.Engine)
	if err != nil {
		return nil, err
	}

	fprs, err := resolveFingerprints(ctx, eng, opts.Patterns, false)
	if err != nil {
		return nil, err
	}

	res, err := eng.TrustKeys(ctx, fprs, level)
	record(res, err, func(e *audit.Entry) { e.KeyIDs = fprs })
	if err := check(res, err); err != nil {
		return nil, err
	}
	return &TrustResult{Fingerprints: fprs, Level: level, Result: res}, nil
}

// RevokeOptions configures revocation certificate generation.
type RevokeOptions struct {
	Engine     EngineSettings
	KeyID      string
	Passphrase string

	// Output defaults to <output_dir>/<keyid>.rev.asc.
	Output string
}

// RevokeResult names the certificate written.
type RevokeResult struct {
	Output string
	Result gnupg.Result
}

// Revoke writes a revocation certificate for KeyID. The key itself is not
// revoked until the certificate is imported.
func Revoke(ctx context.Context, opts RevokeOptions) (*RevokeResult, error) {
	eng, err := OpenEngine(ctx, opts.Engine)
	if err != nil {
		return nil, err
	}

	output := opts.Output
	if output == "" {
		output = filepath.Join(eng.OutputDir(), opts.KeyID+".rev.asc")
	}

	res, err := eng.GenerateRevocation(ctx, opts.KeyID, opts.Passphrase, output)
	record(res, err, func(e *audit.Entry) {
		e.KeyIDs = []string{opts.KeyID}
		e.OutputPath = output
	})
	if err := check(res, err); err != nil {
		return nil, err
	}
	return &RevokeResult{Output: output, Result: res}, nil
}

// resolveFingerprints lists the keys matching patterns and returns their
// primary fingerprints.
func resolveFingerprints(ctx context.Context, eng *gnupg.Engine, patterns []string, secret bool) ([]string, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("%w: no key IDs given", kerrors.ErrKeyNotFound)
	}
	listed, err := listKeys(ctx, eng, ListKeysOptions{Patterns: patterns, Secret: secret})
	if err != nil {
		return nil, err
	}
	fprs := gnupg.Fingerprints(listed.Keys)
	if len(fprs) == 0 {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrKeyNotFound, strings.Join(patterns, ", "))
	}
	return fprs, nil
}
