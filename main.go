package main

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/kaitiaki/cmd"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kaitiaki",
	Short: "Kaitiaki - a supervisor for GnuPG.",
	Long: `Kaitiaki drives gpg as a subprocess and turns its status protocol and
key listings into readable results.

Features:
  - List, generate, import, export, delete and trust keys
  - Encrypt, decrypt, sign and verify many files at once
  - Keep an audit log of every gpg invocation

Run 'kaitiaki help <command>' for more details on a specific command.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(_ *cobra.Command, _ []string) {
		cmd.PrintBanner()
	},
}

func init() {
	cmd.RegisterPersistentFlags(rootCmd)
	rootCmd.AddCommand(cmd.Commands()...)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
