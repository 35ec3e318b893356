package gnupg

import (
	"context"
	"io"
)

// EncryptOptions configures Encrypt. The plaintext comes from InputPath or
// InputFile and is always streamed through stdin.
type EncryptOptions struct {
	InputPath string
	InputFile io.Reader

	Recipients []string

	// Symmetric encrypts with Passphrase instead of recipient keys.
	Symmetric bool

	// SignWith additionally signs with the given key; Passphrase unlocks it.
	SignWith   string
	Passphrase string

	Armor       bool
	AlwaysTrust bool
	Output      string
}

// Encrypt encrypts a file to recipients or symmetrically.
func (e *Engine) Encrypt(ctx context.Context, opts EncryptOptions) (Result, error) {
	var args []string
	if opts.Symmetric {
		args = append(args, "--symmetric")
	} else {
		args = append(args, "--encrypt")
		for _, r := range opts.Recipients {
			args = append(args, "--recipient", r)
		}
	}
	if opts.SignWith != "" {
		args = append(args, "--sign", "--local-user", opts.SignWith)
	}
	if opts.Armor {
		args = append(args, "--armor")
	}
	if opts.AlwaysTrust {
		args = append(args, "--trust-model", "always")
	}
	args = append(args, outputArgs(opts.Output)...)

	return e.Run(ctx, Invocation{
		Operation:  OpEncrypt,
		Args:       args,
		Passphrase: opts.Passphrase,
		InputPath:  opts.InputPath,
		InputFile:  opts.InputFile,
	})
}

// DecryptOptions configures Decrypt.
type DecryptOptions struct {
	InputPath  string
	InputFile  io.Reader
	Passphrase string
	Output     string
}

// Decrypt decrypts a file. Without Output the plaintext is in Result.Output.
func (e *Engine) Decrypt(ctx context.Context, opts DecryptOptions) (Result, error) {
	args := append(outputArgs(opts.Output), "--decrypt")
	return e.Run(ctx, Invocation{
		Operation:  OpDecrypt,
		Args:       args,
		Passphrase: opts.Passphrase,
		InputPath:  opts.InputPath,
		InputFile:  opts.InputFile,
	})
}

// SignMode selects the shape of a signature.
type SignMode int

const (
	SignAttached SignMode = iota
	SignDetached
	SignClear
)

// SignOptions configures Sign.
type SignOptions struct {
	InputPath  string
	InputFile  io.Reader
	KeyID      string
	Passphrase string
	Mode       SignMode
	Armor      bool
	Output     string
}

// Sign signs a file with KeyID, or the default key when it is empty.
func (e *Engine) Sign(ctx context.Context, opts SignOptions) (Result, error) {
	var args []string
	switch opts.Mode {
	case SignDetached:
		args = append(args, "--detach-sign")
	case SignClear:
		args = append(args, "--clearsign")
	default:
		args = append(args, "--sign")
	}
	if opts.KeyID != "" {
		args = append(args, "--local-user", opts.KeyID)
	}
	if opts.Armor {
		args = append(args, "--armor")
	}
	args = append(args, outputArgs(opts.Output)...)

	return e.Run(ctx, Invocation{
		Operation:  OpSign,
		Args:       args,
		Passphrase: opts.Passphrase,
		InputPath:  opts.InputPath,
		InputFile:  opts.InputFile,
	})
}

// VerifyOptions configures Verify. With SignaturePath set, InputPath is the
// signed data of a detached signature; otherwise InputPath holds the signed
// message itself.
type VerifyOptions struct {
	InputPath     string
	InputFile     io.Reader
	SignaturePath string
}

// Verify checks a signature. A bad signature yields Success=false with a
// "bad signature" problem naming the signer.
func (e *Engine) Verify(ctx context.Context, opts VerifyOptions) (Result, error) {
	args := []string{"--verify"}
	if opts.SignaturePath != "" {
		args = append(args, opts.SignaturePath, "-")
	}
	return e.Run(ctx, Invocation{
		Operation: OpVerify,
		Args:      args,
		InputPath: opts.InputPath,
		InputFile: opts.InputFile,
	})
}

func outputArgs(output string) []string {
	if output == "" {
		return nil
	}
	return []string{"--yes", "--output", output}
}
