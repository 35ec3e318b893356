// Package errors provides typed error values for the Kaitiaki application.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Launch errors: the engine binary is missing or cannot be spawned (ErrEngineNotFound, ErrLaunchFailed)
//   - Pipe errors: writing to or reading from the engine failed (ErrWriteFailed, ErrReadFailed)
//   - Filesystem errors: directories or input files are unusable (ErrHomedir, ErrFileNotFound)
//   - Engine errors: the engine could not be initialized (ErrEngineInit)
//   - Workflow errors: a request was rejected before gpg ran (ErrNoRecipients, ErrInvalidTrustLevel)
//
// Protocol failures reported on the engine's status channel (bad signature,
// bad passphrase, and so on) are NOT errors. They are recorded on
// gnupg.Result as Success=false plus structured problems.
//
// # Usage
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("%w: %v", errors.ErrLaunchFailed, err)
//
// Handle errors in the CLI layer:
//
//	result, err := engine.Run(ctx, inv)
//	if errors.Is(err, kerrors.ErrEngineNotFound) {
//	    // Tell the user to install gpg
//	}
package errors
