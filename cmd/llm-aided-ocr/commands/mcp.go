package commands

import (
	"github.com/spf13/cobra"

	"github.com/webboty/llm-aided-ocr/errors"
	"github.com/webboty/llm-aided-ocr/logger"
	"github.com/webboty/llm-aided-ocr/mcpserver"
)

// MCPCmd starts the MCP server on stdio
var MCPCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server on stdio",
	Long:  `Serve the OCR job operations over the Model Context Protocol. The wire protocol runs on stdout/stdin; all logging goes to stderr.`,
	RunE:  runMCP,
}

var mcpConfigFile string

func init() {
	MCPCmd.Flags().StringVar(&mcpConfigFile, "config", "", "Config file path (default: llm-aided-ocr.toml)")
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(mcpConfigFile)
	if err != nil {
		return err
	}

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	s := mcpserver.NewMCPServer(svc, logger.Logger)
	logger.Infow("MCP server starting on stdio")

	if err := s.Serve(); err != nil {
		return errors.Wrap(err, "MCP server failed")
	}
	return nil
}
