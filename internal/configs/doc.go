// Package configs manages kaitiaki's user configuration.
//
// Configuration is stored in TOML at ~/.config/kaitiaki/config.toml (the
// platform config directory on other systems). A single [engine] table
// describes how gpg is run:
//
//	[engine]
//	binary = "gpg"
//	homedir = "~/.gnupg"
//	output_dir = "~/gnupg/output"
//	use_agent = false
//	options = []
//	keyrings = []
//	secret_keyrings = []
//
//	[engine.env]
//	LANG = "C"
//
// A missing file is not an error: LoadConfig returns DefaultConfig. Keys
// the decoder does not recognize are collected in Config.UnknownKeys so
// the CLI can warn about typos.
//
// # Settings
//
// UserKaitiakiSettings is initialized at startup with the config path and
// the data directory that holds the audit log ($XDG_DATA_HOME/kaitiaki).
package configs
