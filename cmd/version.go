package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/kaitiaki/internal/ui"
	"github.com/PolarWolf314/kaitiaki/internal/workflows"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

var versionEngine bool

func init() {
	versionCmd.Flags().BoolVar(&versionEngine, "engine", false, "also report the detected gpg version")
}

func resetVersionState() {
	versionEngine = false
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the kaitiaki version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("kaitiaki %s\n", Version)
		if !versionEngine {
			return nil
		}

		eng, err := workflows.OpenEngine(context.Background(), engineSettings())
		if err != nil {
			fmt.Println(ui.Error.Sprint("✗") + " Failed to start gpg: " + err.Error())
			return err
		}
		fmt.Printf("gpg %s (homedir %s)\n", eng.Version(), ui.Path.Sprint(eng.Homedir()))
		return nil
	},
}
