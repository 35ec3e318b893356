// Package workflows provides high-level orchestration for kaitiaki commands.
//
// Workflows sit between the CLI and the gnupg engine. Each one loads the
// user configuration, prepares the gpg home directory, constructs an
// Engine, runs one or more invocations and records every invocation in the
// audit log. CLI concerns like flag parsing, prompts, spinners and output
// formatting stay in cmd/.
//
// # Available Workflows
//
//   - InitConfig: writes the default config and creates the gpg directories
//   - ListKeys, GenerateKey, ImportKeys, ExportKeys, DeleteKeys, Trust, Revoke
//   - EncryptFiles, DecryptFiles, SignFiles, VerifyFiles: one invocation per file
//   - Log: reads and filters the audit trail
//   - Doctor: health checks for the gpg setup
//
// # Success
//
// An invocation succeeded when its status channel reported no failure and
// gpg exited with code 0. A secret-key export is the exception: gpg exits
// non-zero when some keys could not be exported, so only the status
// channel counts.
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package. A failed
// single invocation is reported as ErrOperationFailed wrapping the status
// message. Batch file workflows never fail as a whole because one file
// failed; each FileOutcome carries its own Result and error.
//
//	result, err := workflows.ListKeys(ctx, opts)
//	if errors.Is(err, kerrors.ErrEngineNotFound) {
//	    // Tell the user to install gpg
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// Cancelling it kills any running gpg process.
package workflows
