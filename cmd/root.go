package cmd

import (
	"fmt"

	logger "github.com/PolarWolf314/kaitiaki/internal/logging"
	"github.com/PolarWolf314/kaitiaki/internal/ui"
	"github.com/PolarWolf314/kaitiaki/internal/workflows"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose     bool
	debug       bool
	homedirFlag string
	configFlag  string
	Logger      logger.Logger
)

// RegisterPersistentFlags adds the global flags to root and builds Logger
// before any subcommand runs.
func RegisterPersistentFlags(root *cobra.Command) {
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output, including gpg's own diagnostics")
	root.PersistentFlags().StringVar(&homedirFlag, "homedir", "", "gpg home directory (overrides engine.homedir)")
	root.PersistentFlags().StringVar(&configFlag, "config", "", "config file (defaults to ~/.config/kaitiaki/config.toml)")

	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		Logger = logger.Logger{
			Verbose: verbose,
			Debug:   debug,
		}
		Logger.Debugf("Initializing %s command with verbose=%t, debug=%t", cmd.Name(), verbose, debug)
	}
}

// Commands returns every top-level command.
func Commands() []*cobra.Command {
	return []*cobra.Command{
		versionCmd,
		ConfigCmd,
		KeysCmd,
		encryptCmd,
		decryptCmd,
		signCmd,
		verifyCmd,
		logCmd,
		doctorCmd,
	}
}

// PrintBanner prints the kaitiaki ASCII art.
func PrintBanner() {
	fmt.Println()
	figure.NewColorFigure("Kaitiaki", "alligator2", "green", true).Print()
	fmt.Println()
	fmt.Printf("%s Run %s to see available commands.\n", ui.Info.Sprint("→"), ui.Code.Sprint("kaitiaki --help"))
}

// engineSettings builds the workflow engine settings from the global flags.
func engineSettings() workflows.EngineSettings {
	return workflows.EngineSettings{
		ConfigPath: configFlag,
		Homedir:    homedirFlag,
		Logger:     Logger,
	}
}

// Helper functions for testing

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	homedirFlag = ""
	configFlag = ""
	Logger = logger.Logger{}
	resetVersionState()
	resetConfigState()
	resetKeysState()
	resetFileCommandsState()
	resetLogCommandState()
	resetDoctorCommandState()
	for _, c := range Commands() {
		resetCobraFlagState(c)
	}
}

// resetCobraFlagState clears the Changed marker on every flag of c and its
// subcommands to prevent test pollution.
func resetCobraFlagState(c *cobra.Command) {
	c.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
	})
	for _, sub := range c.Commands() {
		resetCobraFlagState(sub)
	}
}

// SetLogger sets the logger for testing.
func SetLogger(l logger.Logger) {
	Logger = l
}
