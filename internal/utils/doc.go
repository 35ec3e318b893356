// Package utils provides shared helpers used across kaitiaki packages.
//
// # Filesystem Utilities
//
//   - EnsureDir, EnsurePrivateDir: create directories with fixed permissions
//   - IsDir, ExpandHome: path checks and "~" expansion
//   - ResolveFiles: expands paths, directories and ** globs into a file list
//
// # System Utilities
//
//   - GetUsername, GetHostname, DefaultEmail
//
// # String Utilities
//
//   - FormatPaths: formats file paths for human-readable output
//   - IsValidEmail: checks the address used when generating keys
//
// # I/O and Terminal Utilities
//
//   - ReadStdin: reads piped key material
//   - ReadPassphrase, ReadPassphraseFromTTY: prompt without echo
//   - Confirm: yes/no prompt for destructive commands
//   - IsTerminal, IsTTYAvailable
package utils
