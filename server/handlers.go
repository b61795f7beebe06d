package server

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/webboty/llm-aided-ocr/ocr"
	"github.com/webboty/llm-aided-ocr/version"
)

// handleRoot describes the API
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":        "LLM-Aided OCR API",
		"version":     version.Version,
		"description": "API for advanced OCR processing with LLM correction",
		"endpoints": map[string]string{
			"process_pdf":        "POST /process",
			"upload_and_process": "POST /upload",
			"job_status":         "GET /job/{job_id}",
			"download_file":      "GET /download/{job_id}/{filename}",
			"list_jobs":          "GET /jobs",
			"delete_job":         "DELETE /job/{job_id}",
			"health":             "GET /health",
		},
	})
}

// handleHealth reports liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleProcess submits a PDF already on the server's filesystem.
// Form fields: pdf_path (required), output_path, provider, model.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid form data")
			return
		}
	}

	pdfPath := r.FormValue("pdf_path")
	if pdfPath == "" {
		writeError(w, http.StatusBadRequest, "pdf_path is required")
		return
	}

	req := ocr.ProcessRequest{
		PDFPath:    pdfPath,
		OutputPath: r.FormValue("output_path"),
		Provider:   r.FormValue("provider"),
		Model:      r.FormValue("model"),
	}

	j, err := s.svc.Process(req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"job_id":      j.ID,
		"status":      j.Status,
		"message":     "PDF processing started",
		"pdf_path":    req.PDFPath,
		"output_path": req.OutputPath,
	})
}

// handleUpload receives a PDF as multipart form data and submits it.
// Form fields: file (required), output_path, provider, model.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	req := ocr.ProcessRequest{
		OutputPath: r.FormValue("output_path"),
		Provider:   r.FormValue("provider"),
		Model:      r.FormValue("model"),
	}

	j, err := s.svc.Upload(header.Filename, file, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"job_id":      j.ID,
		"status":      j.Status,
		"message":     "PDF uploaded and processing started",
		"filename":    filepath.Base(header.Filename),
		"output_path": req.OutputPath,
	})
}

// handleJob serves GET (status) and DELETE on /job/{job_id}
func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	parts := extractPathParts(r.URL.Path, "/job/")
	if len(parts) != 1 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	jobID := parts[0]

	switch r.Method {
	case http.MethodGet:
		j, err := s.svc.GetJob(jobID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, j)

	case http.MethodDelete:
		if err := s.svc.DeleteJob(jobID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Job deleted successfully"})

	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleJobs lists every job record
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	jobs := s.svc.ListJobs()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"total": len(jobs),
	})
}

// handleDownload streams an output file of a completed job.
// Path: /download/{job_id}/{filename}.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	parts := extractPathParts(r.URL.Path, "/download/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	jobID, filename := parts[0], parts[1]

	path, err := s.svc.ResolveArtifact(jobID, filename)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(path)+`"`)
	http.ServeFile(w, r, path)
}
