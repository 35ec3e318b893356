package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/PolarWolf314/kaitiaki/internal/configs"
	"github.com/PolarWolf314/kaitiaki/internal/ui"
	"github.com/PolarWolf314/kaitiaki/internal/workflows"

	"github.com/spf13/cobra"
)

var configShowJSON bool

func init() {
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "output in JSON format")
}

// resetConfigShowState resets the config show command's global state for testing.
func resetConfigShowState() {
	configShowJSON = false
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long: `Displays the engine configuration after defaults, the --homedir override
and ~ expansion are applied.

Examples:
  kaitiaki config show
  kaitiaki config show --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config show command")

		engineConfig, err := workflows.LoadEngineConfig(engineSettings())
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to load config: %v", err)
		}

		if configShowJSON {
			output, err := json.MarshalIndent(engineConfig, "", "  ")
			if err != nil {
				return Logger.ErrorfAndReturn("Failed to marshal config to JSON: %v", err)
			}
			fmt.Println(string(output))
			return nil
		}

		path := configFlag
		if path == "" {
			path = configs.UserKaitiakiSettings.ConfigPath
		}
		printEngineConfig(path, engineConfig)
		return nil
	},
}

func printEngineConfig(path string, c configs.EngineConfig) {
	fmt.Println(ui.Info.Sprint("Engine Configuration") + " (" + ui.Path.Sprint(path) + "):")
	fmt.Println()
	fmt.Printf("  %-16s %s\n", "Binary:", ui.Success.Sprint(c.Binary))
	fmt.Printf("  %-16s %s\n", "Home directory:", ui.Path.Sprint(c.Homedir))
	fmt.Printf("  %-16s %s\n", "Output dir:", ui.Path.Sprint(c.OutputDir))
	fmt.Printf("  %-16s %t\n", "Use agent:", c.UseAgent)
	if len(c.Options) > 0 {
		fmt.Printf("  %-16s %s\n", "Options:", strings.Join(c.Options, " "))
	}
	if len(c.Keyrings) > 0 {
		fmt.Printf("  %-16s %s\n", "Keyrings:", strings.Join(c.Keyrings, ", "))
	}
	if len(c.SecretKeyrings) > 0 {
		fmt.Printf("  %-16s %s\n", "Secret keyrings:", strings.Join(c.SecretKeyrings, ", "))
	}
	if len(c.Env) > 0 {
		names := make([]string, 0, len(c.Env))
		for k := range c.Env {
			names = append(names, k)
		}
		sort.Strings(names)
		fmt.Println()
		fmt.Println("  Environment:")
		for _, k := range names {
			fmt.Printf("    %s=%s\n", k, c.Env[k])
		}
	}
}
