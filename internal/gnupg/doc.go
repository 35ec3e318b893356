// Package gnupg supervises the gpg command-line engine.
//
// Every operation is a single gpg subprocess. The package launches it with
// three pipes, feeds stdin from a separate goroutine, drains stdout and the
// status channel concurrently, and folds everything into a Result. Nothing
// here implements cryptography: pass/fail is taken from gpg's own status
// lines.
//
// # Running a command
//
//	eng, err := gnupg.New(ctx, gnupg.Options{Homedir: home, OutputDir: out})
//	if err != nil {
//	    return err
//	}
//	res, err := eng.Run(ctx, gnupg.Invocation{
//	    Operation: gnupg.OpImport,
//	    Args:      []string{"--import"},
//	    Input:     armoredKey,
//	})
//
// err is non-nil only for launch and pipe I/O failures. Protocol failures
// (a bad signature, a wrong passphrase) leave err nil and set
// res.Success=false with entries in res.Problems.
//
// # Status channel
//
// gpg is always started with --status-fd 2, so stderr carries both the
// machine-readable "[GNUPG:] KEYWORD payload" lines and the human-oriented
// "gpg: ..." diagnostics. The former drive the Result; the latter are kept
// in Result.DebugLog.
//
// # Key listings
//
// DecodeKeyList turns --with-colons listing output into Key values with
// their user IDs, signatures and subkeys.
package gnupg
