// Package ocr is the job orchestration core: it validates submissions,
// tracks job records, drives the external pipeline in the background, and
// resolves output artifacts for download.
//
// Both transport facades (REST in package server, MCP in package mcpserver)
// are thin translations onto the Service defined here, so the two surfaces
// present identical semantics over the same jobs.
package ocr

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/webboty/llm-aided-ocr/errors"
	"github.com/webboty/llm-aided-ocr/job"
	"github.com/webboty/llm-aided-ocr/pipeline"
)

// Client-visible lifecycle messages. Clients key off these strings, so they
// are part of the wire contract.
const (
	msgQueued     = "Job queued for processing"
	msgUploaded   = "File uploaded, queued for processing"
	msgStarting   = "Starting OCR processing..."
	msgProcessing = "Processing document..."
	msgCompleted  = "Processing completed successfully"
)

// providerLMStudio is the local-server provider variant; it is the only
// provider for which a model override is honored.
const providerLMStudio = "lm-studio"

// Options configures a Service
type Options struct {
	ResultsDir      string // Root for per-job output trees (default "results")
	DefaultProvider string // Provider used when a job requests none
	DefaultModel    string // Model used for lm-studio jobs that request none
	MaxConcurrent   int    // Bound on concurrent pipeline runs, 0 = unbounded
}

// ProcessRequest carries one submission's arguments
type ProcessRequest struct {
	PDFPath    string
	OutputPath string
	Provider   string
	Model      string
}

// Service implements the four core job operations shared by every transport
type Service struct {
	registry   *job.Registry
	runner     pipeline.Runner
	dispatcher *Dispatcher
	resultsDir string
	defaults   Options
	logger     *zap.SugaredLogger

	onComplete func(job.Job)
}

// NewService creates the orchestration service. The results directory is
// created eagerly and resolved to an absolute path so every downstream
// consumer works with absolute paths only.
func NewService(registry *job.Registry, runner pipeline.Runner, opts Options, logger *zap.SugaredLogger) (*Service, error) {
	if opts.ResultsDir == "" {
		opts.ResultsDir = "results"
	}
	resultsDir, err := filepath.Abs(opts.ResultsDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve results directory %s", opts.ResultsDir)
	}
	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create results directory %s", resultsDir)
	}

	return &Service{
		registry:   registry,
		runner:     runner,
		dispatcher: NewDispatcher(registry, opts.MaxConcurrent, logger),
		resultsDir: resultsDir,
		defaults:   opts,
		logger:     logger,
	}, nil
}

// SetCompletionHook registers a callback invoked after a job reaches
// completed. Used by the MCP facade to publish artifact resources.
// Must be called before any job is submitted.
func (s *Service) SetCompletionHook(fn func(job.Job)) {
	s.onComplete = fn
}

// ResultsDir returns the absolute results root
func (s *Service) ResultsDir() string {
	return s.resultsDir
}

// Process validates a submit-by-path request, creates the job record, and
// schedules the pipeline invocation. The returned record is pending; all
// later state is observed by polling.
func (s *Service) Process(req ProcessRequest) (job.Job, error) {
	if !ValidatePDFPath(req.PDFPath) {
		return job.Job{}, errors.NewInvalidRequestError("Invalid PDF file path or file not found")
	}
	if req.OutputPath != "" && !ValidateOutputPath(req.OutputPath) {
		return job.Job{}, errors.NewInvalidRequestError("Invalid output path or insufficient permissions")
	}

	j := s.registry.Create(msgQueued)
	s.logger.Infow("Job created", "job_id", j.ID, "pdf_path", req.PDFPath, "provider", req.Provider)

	s.submit(j.ID, req)
	return j, nil
}

// Upload stores the received bytes under a job-namespaced upload directory,
// then proceeds exactly like Process. Save failures roll the record back and
// surface as a plain (server) error, not a validation error.
func (s *Service) Upload(filename string, src io.Reader, req ProcessRequest) (job.Job, error) {
	filename = filepath.Base(filename)
	if !hasPDFExtension(filename) {
		return job.Job{}, errors.NewInvalidRequestError("Only PDF files are allowed")
	}
	if req.OutputPath != "" && !ValidateOutputPath(req.OutputPath) {
		return job.Job{}, errors.NewInvalidRequestError("Invalid output path or insufficient permissions")
	}

	j := s.registry.Create(msgUploaded)

	uploadDir := filepath.Join(s.resultsDir, "uploads", j.ID)
	pdfPath, err := saveUpload(uploadDir, filename, src)
	if err != nil {
		s.registry.Delete(j.ID)
		os.RemoveAll(uploadDir)
		return job.Job{}, errors.Wrap(err, "failed to save uploaded file")
	}

	s.logger.Infow("File uploaded", "job_id", j.ID, "filename", filename, "path", pdfPath)

	req.PDFPath = pdfPath
	s.submit(j.ID, req)
	return j, nil
}

// GetJob returns the current record for id
func (s *Service) GetJob(id string) (job.Job, error) {
	return s.registry.Get(id)
}

// ListJobs returns all records, running and terminal alike
func (s *Service) ListJobs() []job.Job {
	return s.registry.List()
}

// DeleteJob removes the record and best-effort removes the job's on-disk
// output and upload directories.
func (s *Service) DeleteJob(id string) error {
	if !s.registry.Delete(id) {
		return errors.NewNotFoundError("job %s not found", id)
	}

	for _, dir := range []string{
		filepath.Join(s.resultsDir, id),
		filepath.Join(s.resultsDir, "uploads", id),
	} {
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warnw("Failed to remove job directory", "job_id", id, "dir", dir, "error", err)
		}
	}

	s.logger.Infow("Job deleted", "job_id", id)
	return nil
}

// Close waits for in-flight pipeline invocations to finish
func (s *Service) Close() {
	s.dispatcher.Close()
}

func (s *Service) submit(jobID string, req ProcessRequest) {
	s.dispatcher.Submit(jobID, func(ctx context.Context) error {
		return s.runJob(ctx, jobID, req)
	})
}

// runJob is the pipeline invocation adapter. It owns every registry mutation
// after submission: pending -> processing -> {completed | failed}. A returned
// error is recorded as the terminal failure by the dispatcher, so no partial
// state is ever visible and nothing here mutates process-wide state.
func (s *Service) runJob(ctx context.Context, jobID string, req ProcessRequest) error {
	if _, err := s.registry.Update(jobID, func(j *job.Job) {
		j.StartProcessing(0.1, msgStarting)
	}); err != nil {
		// Deleted between submission and execution; nothing to run.
		return nil
	}

	outputDir, err := s.resolveOutputDir(jobID, req.OutputPath)
	if err != nil {
		return err
	}

	pdfPath, err := filepath.Abs(req.PDFPath)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve document path %s", req.PDFPath)
	}

	if _, err := s.registry.Update(jobID, func(j *job.Job) {
		j.SetProgress(0.3)
		j.Message = msgProcessing
	}); err != nil {
		return nil
	}

	provider, model := s.resolveProviderModel(req)

	files, err := s.runner.Run(ctx, pipeline.Request{
		PDFPath:            pdfPath,
		OutputDir:          outputDir,
		Provider:           provider,
		Model:              model,
		MaxTestPages:       0,
		SkipFirstNPages:    0,
		ReformatAsMarkdown: true,
	})
	if err != nil {
		return err
	}

	completed, err := s.registry.Update(jobID, func(j *job.Job) {
		j.Complete(files, msgCompleted)
	})
	if err != nil {
		return nil
	}

	s.logger.Infow("Job completed", "job_id", jobID, "artifacts", len(files))
	if s.onComplete != nil {
		s.onComplete(completed)
	}
	return nil
}

// resolveOutputDir picks the directory the pipeline writes into: the
// supplied output path's parent when it passes the writability probe,
// otherwise the job's namespace under the results root.
func (s *Service) resolveOutputDir(jobID, outputPath string) (string, error) {
	if outputPath != "" && ValidateOutputPath(outputPath) {
		return filepath.Abs(filepath.Dir(outputPath))
	}

	dir := filepath.Join(s.resultsDir, jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create output directory %s", dir)
	}
	return dir, nil
}

// resolveProviderModel applies configured defaults and the lm-studio-only
// model rule. Both values are call-scoped from here on.
func (s *Service) resolveProviderModel(req ProcessRequest) (provider, model string) {
	provider = req.Provider
	if provider == "" {
		provider = s.defaults.DefaultProvider
	}
	if provider == providerLMStudio {
		model = req.Model
		if model == "" {
			model = s.defaults.DefaultModel
		}
	}
	return provider, model
}

func saveUpload(dir, filename string, src io.Reader) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create upload directory %s", dir)
	}

	path := filepath.Join(dir, filename)
	dest, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create %s", path)
	}

	if _, err := io.Copy(dest, src); err != nil {
		dest.Close()
		os.Remove(path)
		return "", errors.Wrapf(err, "failed to write %s", path)
	}
	if err := dest.Close(); err != nil {
		return "", errors.Wrapf(err, "failed to flush %s", path)
	}
	return path, nil
}

func hasPDFExtension(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
