package commands

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/webboty/llm-aided-ocr/config"
	"github.com/webboty/llm-aided-ocr/version"
)

// printStartupBanner prints the user-friendly startup message
func printStartupBanner(cfg *config.Config) {
	info := version.Get()

	pterm.DefaultBox.
		WithTitle("LLM-Aided OCR").
		WithTitleTopCenter().
		Println(fmt.Sprintf("Version:  %s (commit %s)\nAddress:  %s:%d\nResults:  %s\nProvider: %s",
			info.Version, info.Short(),
			cfg.Server.Host, cfg.Server.Port,
			cfg.Results.Dir,
			cfg.Pipeline.Provider,
		))

	if cfg.Server.SecretToken == "" {
		pterm.Warning.Println("API_SECRET_TOKEN not set - the API is open to anyone who can reach it")
	}
	pterm.Info.Println("Press Ctrl+C to stop")
}
