// Package mcpserver exposes the OCR job service over the Model Context
// Protocol. Tools mirror the REST endpoints one-to-one; completed job
// artifacts are additionally published as readable resources.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/webboty/llm-aided-ocr/errors"
	"github.com/webboty/llm-aided-ocr/ocr"
	"github.com/webboty/llm-aided-ocr/version"
)

// MCPServer wraps ocr.Service and exposes it via Model Context Protocol
type MCPServer struct {
	svc    *ocr.Service
	server *server.MCPServer
	logger *zap.SugaredLogger
}

// NewMCPServer creates a new MCP server over the job service
func NewMCPServer(svc *ocr.Service, logger *zap.SugaredLogger) *MCPServer {
	s := &MCPServer{
		svc:    svc,
		logger: logger,
	}

	s.server = server.NewMCPServer(
		"llm-aided-ocr-mcp",
		version.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
	)

	s.registerTools()
	s.registerResources()

	// Artifacts become visible in resources/list the moment a job completes
	svc.SetCompletionHook(s.publishJobResources)

	return s
}

// registerTools registers all MCP tools for OCR job operations
func (s *MCPServer) registerTools() {
	processPDFTool := mcp.NewTool("process_pdf",
		mcp.WithDescription("Process a PDF file with OCR and LLM correction"),
		mcp.WithString("pdf_path",
			mcp.Required(),
			mcp.Description("Path to the PDF file to process"),
		),
		mcp.WithString("output_path",
			mcp.Description("Optional output path for results"),
		),
		mcp.WithString("provider",
			mcp.Description("LLM provider to use for correction"),
			mcp.Enum("openai", "claude", "lm-studio"),
		),
		mcp.WithString("model",
			mcp.Description("Model name (for lm-studio provider)"),
		),
	)
	s.server.AddTool(processPDFTool, s.handleProcessPDF)

	getJobStatusTool := mcp.NewTool("get_job_status",
		mcp.WithDescription("Get the status of a processing job"),
		mcp.WithString("job_id",
			mcp.Required(),
			mcp.Description("Job ID to check status for"),
		),
	)
	s.server.AddTool(getJobStatusTool, s.handleGetJobStatus)

	listJobsTool := mcp.NewTool("list_jobs",
		mcp.WithDescription("List all processing jobs"),
	)
	s.server.AddTool(listJobsTool, s.handleListJobs)

	deleteJobTool := mcp.NewTool("delete_job",
		mcp.WithDescription("Delete a job and its associated files"),
		mcp.WithString("job_id",
			mcp.Required(),
			mcp.Description("Job ID to delete"),
		),
	)
	s.server.AddTool(deleteJobTool, s.handleDeleteJob)
}

// handleProcessPDF handles process_pdf tool calls
func (s *MCPServer) handleProcessPDF(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := ocr.ProcessRequest{
		PDFPath:    request.GetString("pdf_path", ""),
		OutputPath: request.GetString("output_path", ""),
		Provider:   request.GetString("provider", ""),
		Model:      request.GetString("model", ""),
	}

	j, err := s.svc.Process(req)
	if err != nil {
		return mcp.NewToolResultError("Error: " + cleanMessage(err)), nil
	}

	text := fmt.Sprintf("PDF processing started. Job ID: %s\n"+
		"PDF path: %s\n"+
		"Output path: %s\n"+
		"Provider: %s\n"+
		"Model: %s",
		j.ID,
		req.PDFPath,
		orDefault(req.OutputPath),
		orDefault(req.Provider),
		orDefault(req.Model),
	)
	return mcp.NewToolResultText(text), nil
}

// handleGetJobStatus handles get_job_status tool calls
func (s *MCPServer) handleGetJobStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID, err := request.RequireString("job_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	j, err := s.svc.GetJob(jobID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: Job not found: %s", jobID)), nil
	}

	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: Failed to encode job: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// handleListJobs handles list_jobs tool calls
func (s *MCPServer) handleListJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobs := s.svc.ListJobs()

	data, err := json.MarshalIndent(map[string]interface{}{
		"jobs":  jobs,
		"total": len(jobs),
	}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: Failed to encode jobs: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// handleDeleteJob handles delete_job tool calls
func (s *MCPServer) handleDeleteJob(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID, err := request.RequireString("job_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Snapshot the record first so published resources can be retracted
	j, err := s.svc.GetJob(jobID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: Job not found: %s", jobID)), nil
	}

	if err := s.svc.DeleteJob(jobID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: Job not found: %s", jobID)), nil
	}
	s.retractJobResources(j)

	return mcp.NewToolResultText(fmt.Sprintf("Job %s deleted successfully", jobID)), nil
}

// cleanMessage strips the sentinel suffix from a service error for display
func cleanMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{
		errors.ErrNotFound,
		errors.ErrInvalidRequest,
		errors.ErrJobNotCompleted,
	} {
		suffix := ": " + sentinel.Error()
		if strings.HasSuffix(msg, suffix) {
			return strings.TrimSuffix(msg, suffix)
		}
	}
	return msg
}

func orDefault(v string) string {
	if v == "" {
		return "Default"
	}
	return v
}

// Serve starts the MCP server using stdio transport
func (s *MCPServer) Serve() error {
	return server.ServeStdio(s.server)
}

// Close shuts down the underlying job service
func (s *MCPServer) Close() {
	s.svc.Close()
}
