package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/webboty/llm-aided-ocr/config"
	"github.com/webboty/llm-aided-ocr/errors"
	"github.com/webboty/llm-aided-ocr/job"
	"github.com/webboty/llm-aided-ocr/logger"
	"github.com/webboty/llm-aided-ocr/ocr"
	"github.com/webboty/llm-aided-ocr/pipeline"
	"github.com/webboty/llm-aided-ocr/server"
)

// ServeCmd starts the REST API server
var ServeCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the LLM-Aided OCR REST API server",
	Long:    `Launch the REST API server for PDF OCR processing. Submit documents with POST /process or POST /upload, poll GET /job/{id}, and fetch results from GET /download/{id}/{filename}.`,
	RunE:    runServe,
}

var (
	serveHost       string
	servePort       int
	serveResultsDir string
	serveConfigFile string
)

func init() {
	ServeCmd.Flags().StringVar(&serveHost, "host", "", "Listen address (overrides config)")
	ServeCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides config)")
	ServeCmd.Flags().StringVar(&serveResultsDir, "results-dir", "", "Results directory (overrides config)")
	ServeCmd.Flags().StringVar(&serveConfigFile, "config", "", "Config file path (default: llm-aided-ocr.toml)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(serveConfigFile)
	if err != nil {
		return err
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveResultsDir != "" {
		cfg.Results.Dir = serveResultsDir
	}

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	printStartupBanner(cfg)

	srv := server.NewServer(svc, server.Options{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		SecretToken: cfg.Server.SecretToken,
	}, logger.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return errors.Wrap(err, "server failed")
	case <-sigChan:
		pterm.Info.Println("\nShutting down gracefully (press Ctrl+C again to force)...")
		cancel()

		select {
		case err := <-errChan:
			if err != nil {
				return errors.Wrap(err, "shutdown error")
			}
			pterm.Success.Println("Server stopped cleanly")
			return nil
		case <-sigChan:
			pterm.Warning.Println("\nForce shutdown - exiting immediately")
			os.Exit(1)
			return nil // unreachable
		}
	}
}

// newService wires the job registry, pipeline runner, and orchestration
// service from the resolved configuration.
func newService(cfg *config.Config) (*ocr.Service, error) {
	runner := pipeline.NewExecRunner(cfg.Pipeline.Command, cfg.Pipeline.Dir, logger.Logger)

	svc, err := ocr.NewService(job.NewRegistry(), runner, ocr.Options{
		ResultsDir:      cfg.Results.Dir,
		DefaultProvider: cfg.Pipeline.Provider,
		DefaultModel:    cfg.Pipeline.Model,
		MaxConcurrent:   cfg.Jobs.MaxConcurrent,
	}, logger.Logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create OCR service")
	}
	return svc, nil
}
