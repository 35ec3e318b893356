package gnupg

import (
	"io"
)

// Invocation describes one gpg run. Args are the operation-specific tokens
// appended after the fixed flags that BuildArgs always emits.
type Invocation struct {
	Operation Operation
	Args      []string

	// Passphrase, when non-empty, is written as the first line on stdin and
	// gpg is told to read it from fd 0.
	Passphrase string

	// Input is a literal payload written to stdin (key data, a generation
	// script, ownertrust lines). It takes precedence over the file inputs.
	Input []byte

	// InputFile or InputPath stream a file to stdin.
	InputFile io.Reader
	InputPath string

	// Env is merged over the engine environment for this run only.
	Env map[string]string

	// Dir is the working directory of the gpg process.
	Dir string
}

func (inv Invocation) hasPassphrase() bool {
	return inv.Passphrase != ""
}

// BuildArgs assembles the full argument vector, binary first.
func (e *Engine) BuildArgs(inv Invocation) []string {
	args := []string{e.binary}
	if inv.hasPassphrase() && e.version.AtLeast(loopbackVersion) {
		args = append(args, "--pinentry-mode", "loopback")
	}
	args = append(args,
		"--status-fd", "2",
		"--no-tty",
		"--no-verbose",
		"--fixed-list-mode",
		"--batch",
		"--with-colons",
		"--homedir", e.homedir,
	)
	if inv.hasPassphrase() {
		args = append(args, "--passphrase-fd", "0")
	}
	if e.useAgent {
		args = append(args, "--use-agent")
	}
	if len(e.keyrings) > 0 {
		args = append(args, "--no-default-keyring")
		for _, k := range e.keyrings {
			args = append(args, "--keyring", k)
		}
	}
	for _, k := range e.secretKeyrings {
		args = append(args, "--secret-keyring", k)
	}
	args = append(args, e.options...)
	return append(args, inv.Args...)
}
