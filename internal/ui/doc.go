// Package ui provides semantic text formatting for CLI output.
//
// Formatters render content according to terminal capabilities. When colors
// are available, content is colorized. When NO_COLOR is set or the terminal
// doesn't support colors, text decorations (backticks, quotes) are used
// instead.
//
// # Semantic Formatters
//
//	ui.Code.Sprint("kaitiaki keys list")      // Commands and code
//	ui.Path.Sprint("~/.gnupg")                // File paths
//	ui.KeyID.Sprint("ABCD1234")               // Key IDs and fingerprints
//	ui.Highlight.Sprint("Alice <a@b.org>")    // User IDs and values
//	ui.Success.Sprint("✓")                     // Success indicators
//	ui.Error.Sprint("✗")                       // Error indicators
//	ui.Muted.Sprint("expired")                // De-emphasized text
//
// # Key Listings
//
// FormatKey renders a decoded key the way "kaitiaki keys list" prints it,
// with ValidityName and CapabilityNames translating gpg's single-letter
// codes.
package ui
