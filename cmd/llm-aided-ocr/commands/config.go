package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/webboty/llm-aided-ocr/config"
)

// ConfigCmd inspects the resolved configuration
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect llm-aided-ocr configuration",
}

var configShowFile string

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	Long:  `Print the configuration after merging defaults, the config file, and environment variable overrides.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configShowFile)
		if err != nil {
			return err
		}

		fmt.Println("[server]")
		fmt.Printf("host = %q\n", cfg.Server.Host)
		fmt.Printf("port = %d\n", cfg.Server.Port)
		if cfg.Server.SecretToken != "" {
			fmt.Println("secret_token = (set)")
		} else {
			fmt.Println("secret_token = (not set, authentication disabled)")
		}
		fmt.Println()
		fmt.Println("[results]")
		fmt.Printf("dir = %q\n", cfg.Results.Dir)
		fmt.Println()
		fmt.Println("[pipeline]")
		fmt.Printf("command = %q\n", cfg.Pipeline.Command)
		fmt.Printf("dir = %q\n", cfg.Pipeline.Dir)
		fmt.Printf("provider = %q\n", cfg.Pipeline.Provider)
		fmt.Printf("model = %q\n", cfg.Pipeline.Model)
		fmt.Println()
		fmt.Println("[jobs]")
		fmt.Printf("max_concurrent = %d\n", cfg.Jobs.MaxConcurrent)
		return nil
	},
}

func init() {
	configShowCmd.Flags().StringVar(&configShowFile, "config", "", "Config file path (default: llm-aided-ocr.toml)")
	ConfigCmd.AddCommand(configShowCmd)
}

// loadConfig resolves configuration from an explicit file or the search path
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}
