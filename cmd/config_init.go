package cmd

import (
	"context"

	"github.com/PolarWolf314/kaitiaki/internal/ui"
	"github.com/PolarWolf314/kaitiaki/internal/workflows"

	"github.com/spf13/cobra"
)

func resetConfigInitState() {}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config and prepare the gpg directories",
	Long: `Writes the default configuration if none exists, then creates the gpg
home directory with private permissions (0700) and the output directory.

An existing configuration is never overwritten. The global --homedir flag
is saved into a newly written config.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config init command")
		spinner, cleanup := startSpinner("Preparing configuration...")
		defer cleanup()

		result, err := workflows.InitConfig(context.Background(), workflows.InitConfigOptions{
			ConfigPath: configFlag,
			Homedir:    homedirFlag,
		})
		if err != nil {
			spinner.FinalMSG = formatError("initialize the configuration", err)
			return err
		}

		if !result.Created {
			Logger.Infof("Config already exists at %s", result.ConfigPath)
			spinner.FinalMSG = ui.Warning.Sprint("⚠") + " Configuration already exists at " + ui.Path.Sprint(result.ConfigPath) + "\n" +
				ui.Success.Sprint("✓") + " gpg home directory " + ui.Path.Sprint(result.Engine.Homedir) + " is ready"
			return nil
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Configuration written to " + ui.Path.Sprint(result.ConfigPath) + "\n" +
			ui.Success.Sprint("✓") + " gpg home directory " + ui.Path.Sprint(result.Engine.Homedir) + " is ready\n" +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("kaitiaki keys generate") + " to create your first key"
		return nil
	},
}
