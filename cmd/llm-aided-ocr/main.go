package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/webboty/llm-aided-ocr/cmd/llm-aided-ocr/commands"
	"github.com/webboty/llm-aided-ocr/logger"
)

var rootCmd = &cobra.Command{
	Use:   "llm-aided-ocr",
	Short: "LLM-Aided OCR - PDF processing with LLM-corrected OCR output",
	Long: `LLM-Aided OCR - job orchestration service for OCR processing with LLM correction.

Submit PDF documents, track processing jobs, and retrieve corrected output
over a REST API or the Model Context Protocol.

Available commands:
  serve   - Start the REST API server
  mcp     - Start the MCP server on stdio
  config  - Inspect the resolved configuration
  version - Show version information

Examples:
  llm-aided-ocr serve                 # Start the REST API on the configured port
  llm-aided-ocr serve --port 9000     # Override the listen port
  llm-aided-ocr mcp                   # Serve MCP over stdio
  llm-aided-ocr config show           # Print the resolved configuration`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The MCP transport owns stdout, so its logs go to stderr
		if cmd.Name() == "mcp" {
			if err := logger.InitializeStderr(); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		}
		if err := logger.Initialize(false); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.MCPCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
