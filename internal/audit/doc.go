// Package audit records every gpg invocation kaitiaki makes.
//
// # Log Format
//
// The audit log is stored as JSON Lines (one JSON object per line) at:
//
//	$XDG_DATA_HOME/kaitiaki/audit.jsonl
//
// Each entry contains the timestamp (RFC3339 with microseconds, UTC), the
// invocation ID shared with gnupg.Result, the operation name, success, exit
// code, the last status keyword and the number of problems reported. File
// operations also list the files involved.
//
// # Usage
//
//	res, err := eng.Encrypt(ctx, opts)
//	entry := audit.FromResult(res)
//	entry.Files = []string{path}
//	audit.Log(entry)
//
// # Failure Handling
//
// Audit logging is best-effort. If logging fails (permissions, disk full,
// etc.), the operation continues without error.
//
// # Reading Logs
//
// ReadEntries parses the audit log for display. Malformed entries are
// silently skipped to handle partial writes.
package audit
