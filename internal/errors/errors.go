package errors

import "errors"

// Launch errors indicate the engine process could not be started. They are
// fatal for the invocation and never retried.
var (
	// ErrEngineNotFound indicates the engine binary could not be located on PATH.
	ErrEngineNotFound = errors.New("gpg binary not found")

	// ErrLaunchFailed indicates the engine process could not be spawned.
	ErrLaunchFailed = errors.New("failed to start gpg process")

	// ErrPipeFailed indicates one of the engine's standard streams could not be opened.
	ErrPipeFailed = errors.New("failed to open gpg pipe")
)

// Pipe I/O errors indicate a failure moving bytes to or from the engine.
var (
	// ErrWriteFailed indicates writing to the engine's input stream failed.
	ErrWriteFailed = errors.New("failed to write to gpg input")

	// ErrReadFailed indicates reading an input source for the engine failed.
	ErrReadFailed = errors.New("failed to read gpg input source")
)

// Filesystem errors indicate issues with directories or input files.
var (
	// ErrHomedir indicates the engine home directory is missing or not a directory.
	ErrHomedir = errors.New("invalid gpg home directory")

	// ErrOutputDir indicates the output directory is missing or not a directory.
	ErrOutputDir = errors.New("invalid output directory")

	// ErrFileNotFound indicates a specific input file could not be located.
	ErrFileNotFound = errors.New("file not found")

	// ErrFileNotProvided indicates an operation needing file input got none.
	ErrFileNotProvided = errors.New("file or file path not provided")

	// ErrNoFilesFound indicates no files matched the provided patterns.
	ErrNoFilesFound = errors.New("no matching files found")
)

// Engine errors indicate the engine could not be prepared for use.
var (
	// ErrEngineInit indicates probing the engine (version detection) failed.
	ErrEngineInit = errors.New("failed to initialize gpg")

	// ErrOperationFailed indicates the engine reported failure for an operation.
	// Workflows return it when a Result is unsuccessful and the caller asked for an error.
	ErrOperationFailed = errors.New("gpg operation failed")

	// ErrPassphraseRequired indicates a passphrase was needed but none could be read.
	ErrPassphraseRequired = errors.New("passphrase required")
)

// Workflow errors indicate invalid requests detected before gpg is run.
var (
	// ErrNoRecipients indicates public-key encryption was requested without recipients.
	ErrNoRecipients = errors.New("no recipients specified")

	// ErrInvalidTrustLevel indicates an unknown ownertrust level name.
	ErrInvalidTrustLevel = errors.New("invalid trust level")

	// ErrKeyNotFound indicates no key in the keyring matched the given IDs.
	ErrKeyNotFound = errors.New("no matching key found")

	// ErrInvalidEmail indicates a malformed email for key generation.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrInvalidDateFormat indicates a log filter date was not YYYY-MM-DD.
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrNoAuditLog indicates the audit log has not been written yet.
	ErrNoAuditLog = errors.New("no audit log found")
)
