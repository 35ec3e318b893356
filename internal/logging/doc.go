// Package logger provides leveled console logging for Kaitiaki.
//
// Verbosity is controlled by two flags:
//
//   - --verbose: Shows info messages
//   - --debug: Shows everything, including the engine's own diagnostic lines
//
// Warnings and errors are always written to stderr.
//
// # Usage
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Encrypting %d files", count)
//
// The zero Logger is silent except for warnings and errors, which makes it
// a safe default for library callers of the gnupg package.
package logger
