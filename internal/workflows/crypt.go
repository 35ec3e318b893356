package workflows

import (
	"context"
	"strings"

	kerrors "github.com/PolarWolf314/kaitiaki/internal/errors"
	"github.com/PolarWolf314/kaitiaki/internal/gnupg"
	"github.com/PolarWolf314/kaitiaki/internal/utils"
)

// Suffixes of files gpg produced, skipped when expanding directories and
// globs for encryption and signing.
var openPGPSuffixes = []string{".gpg", ".asc", ".pgp", ".sig"}

func armoredSuffix(armor bool, binary string) string {
	if armor {
		return ".asc"
	}
	return binary
}

// EncryptFilesOptions configures the encrypt workflow.
type EncryptFilesOptions struct {
	Engine EngineSettings
	Files  FileOptions

	Recipients []string
	Symmetric  bool

	// SignWith also signs each file with this key.
	SignWith string

	// Passphrase is the symmetric passphrase, or unlocks SignWith.
	Passphrase string

	Armor       bool
	AlwaysTrust bool
}

// EncryptFiles encrypts each resolved file to <file>.gpg (or .asc when armored).
//
// Returns ErrNoRecipients if neither recipients nor symmetric mode are given.
func EncryptFiles(ctx context.Context, opts EncryptFilesOptions) (*BatchResult, error) {
	if len(opts.Recipients) == 0 && !opts.Symmetric {
		return nil, kerrors.ErrNoRecipients
	}

	ext := armoredSuffix(opts.Armor, ".gpg")
	name := func(src string) string { return opts.Files.outputPath(src, ext) }

	var eng *gnupg.Engine
	if !opts.Files.DryRun {
		var err error
		if eng, err = OpenEngine(ctx, opts.Engine); err != nil {
			return nil, err
		}
	}

	return runBatch(ctx, opts.Files, utils.Not(utils.HasExtension(openPGPSuffixes...)), name,
		func(ctx context.Context, src string) FileOutcome {
			out := name(src)
			res, err := eng.Encrypt(ctx, gnupg.EncryptOptions{
				InputPath:   src,
				Recipients:  opts.Recipients,
				Symmetric:   opts.Symmetric,
				SignWith:    opts.SignWith,
				Passphrase:  opts.Passphrase,
				Armor:       opts.Armor,
				AlwaysTrust: opts.AlwaysTrust,
				Output:      out,
			})
			return finish(FileOutcome{Source: src, Output: out, Result: res}, err)
		})
}

// DecryptFilesOptions configures the decrypt workflow.
type DecryptFilesOptions struct {
	Engine     EngineSettings
	Files      FileOptions
	Passphrase string
}

// DecryptFiles decrypts each resolved .gpg, .asc or .pgp file next to the
// original with the suffix removed.
func DecryptFiles(ctx context.Context, opts DecryptFilesOptions) (*BatchResult, error) {
	exts := []string{".gpg", ".asc", ".pgp"}
	name := func(src string) string { return opts.Files.strippedPath(src, exts...) }

	var eng *gnupg.Engine
	if !opts.Files.DryRun {
		var err error
		if eng, err = OpenEngine(ctx, opts.Engine); err != nil {
			return nil, err
		}
	}

	return runBatch(ctx, opts.Files, utils.HasExtension(exts...), name,
		func(ctx context.Context, src string) FileOutcome {
			out := name(src)
			res, err := eng.Decrypt(ctx, gnupg.DecryptOptions{
				InputPath:  src,
				Passphrase: opts.Passphrase,
				Output:     out,
			})
			return finish(FileOutcome{Source: src, Output: out, Result: res}, err)
		})
}

// SignFilesOptions configures the sign workflow.
type SignFilesOptions struct {
	Engine     EngineSettings
	Files      FileOptions
	KeyID      string
	Passphrase string
	Mode       gnupg.SignMode
	Armor      bool
}

// SignFiles signs each resolved file. Detached signatures go to <file>.sig,
// attached ones to <file>.gpg, clearsigned ones to <file>.asc. Armoring
// turns .sig and .gpg into .asc.
func SignFiles(ctx context.Context, opts SignFilesOptions) (*BatchResult, error) {
	var ext string
	switch opts.Mode {
	case gnupg.SignDetached:
		ext = armoredSuffix(opts.Armor, ".sig")
	case gnupg.SignClear:
		ext = ".asc"
	default:
		ext = armoredSuffix(opts.Armor, ".gpg")
	}
	name := func(src string) string { return opts.Files.outputPath(src, ext) }

	var eng *gnupg.Engine
	if !opts.Files.DryRun {
		var err error
		if eng, err = OpenEngine(ctx, opts.Engine); err != nil {
			return nil, err
		}
	}

	return runBatch(ctx, opts.Files, utils.Not(utils.HasExtension(openPGPSuffixes...)), name,
		func(ctx context.Context, src string) FileOutcome {
			out := name(src)
			res, err := eng.Sign(ctx, gnupg.SignOptions{
				InputPath:  src,
				KeyID:      opts.KeyID,
				Passphrase: opts.Passphrase,
				Mode:       opts.Mode,
				Armor:      opts.Armor,
				Output:     out,
			})
			return finish(FileOutcome{Source: src, Output: out, Result: res}, err)
		})
}

// VerifyFilesOptions configures the verify workflow.
type VerifyFilesOptions struct {
	Engine EngineSettings
	Files  FileOptions
}

// VerifyFiles verifies each resolved signature file. A .sig or .asc file
// whose name without the suffix exists is treated as a detached signature
// over that file; anything else is verified as a signed message.
func VerifyFiles(ctx context.Context, opts VerifyFilesOptions) (*BatchResult, error) {
	exts := []string{".sig", ".asc", ".gpg"}
	name := func(src string) string { return detachedData(src) }

	var eng *gnupg.Engine
	if !opts.Files.DryRun {
		var err error
		if eng, err = OpenEngine(ctx, opts.Engine); err != nil {
			return nil, err
		}
	}

	return runBatch(ctx, opts.Files, utils.HasExtension(exts...), name,
		func(ctx context.Context, src string) FileOutcome {
			verifyOpts := gnupg.VerifyOptions{InputPath: src}
			data := detachedData(src)
			if data != "" {
				verifyOpts = gnupg.VerifyOptions{InputPath: data, SignaturePath: src}
			}
			res, err := eng.Verify(ctx, verifyOpts)
			o := finish(FileOutcome{Source: src, Output: data, Result: res}, err)
			// GOODSIG <long_keyid> <username>
			if v, ok := res.LastStatusValue("GOODSIG"); ok && o.OK() {
				o.SignerKeyID, o.Signer, _ = strings.Cut(v, " ")
			}
			return o
		})
}

// detachedData returns the file a detached signature covers, or "" when
// sig is not a detached signature.
func detachedData(sig string) string {
	for _, ext := range []string{".sig", ".asc"} {
		if data, ok := strings.CutSuffix(sig, ext); ok && utils.FileExists(data) {
			return data
		}
	}
	return ""
}
