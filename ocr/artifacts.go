package ocr

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/webboty/llm-aided-ocr/errors"
	"github.com/webboty/llm-aided-ocr/job"
)

// Resource describes one downloadable artifact of a completed job
type Resource struct {
	JobID    string
	Kind     string // Artifact kind, e.g. "raw_ocr" or "corrected"
	Path     string // Absolute path on disk
	MIMEType string
}

// URI returns the tool-transport address of the resource
func (r Resource) URI() string {
	return "ocr://job/" + r.JobID + "/" + r.Kind
}

// ResolveArtifact maps a requested filename to a concrete path for download.
// The job's declared output files are searched by base name first; when none
// matches, the job's directory under the results root is probed for a
// same-named file. Requires the job to be completed.
func (s *Service) ResolveArtifact(jobID, filename string) (string, error) {
	j, err := s.registry.Get(jobID)
	if err != nil {
		return "", err
	}
	if j.Status != job.StatusCompleted {
		return "", errors.Wrapf(errors.ErrJobNotCompleted, "job %s is %s", jobID, j.Status)
	}

	filename = filepath.Base(filename)
	for _, path := range j.OutputFiles {
		if filepath.Base(path) == filename {
			if fileExists(path) {
				return path, nil
			}
			return "", errors.NewNotFoundError("file %s no longer exists for job %s", filename, jobID)
		}
	}

	candidate := filepath.Join(s.resultsDir, jobID, filename)
	if fileExists(candidate) {
		return candidate, nil
	}
	return "", errors.NewNotFoundError("file %s not found for job %s", filename, jobID)
}

// ResolveArtifactKind maps an artifact-kind name (the ocr:// URI form) to its
// concrete path. Requires the job to be completed and the file to exist.
func (s *Service) ResolveArtifactKind(jobID, kind string) (string, error) {
	j, err := s.registry.Get(jobID)
	if err != nil {
		return "", err
	}
	if j.Status != job.StatusCompleted {
		return "", errors.Wrapf(errors.ErrJobNotCompleted, "job %s is %s", jobID, j.Status)
	}

	path, ok := j.OutputFiles[kind]
	if !ok || !fileExists(path) {
		return "", errors.NewNotFoundError("artifact %s not found for job %s", kind, jobID)
	}
	return path, nil
}

// ListResources enumerates every artifact of every completed job whose
// backing file still exists on disk.
func (s *Service) ListResources() []Resource {
	var out []Resource
	for _, j := range s.registry.List() {
		if j.Status != job.StatusCompleted {
			continue
		}
		for kind, path := range j.OutputFiles {
			if !fileExists(path) {
				continue
			}
			out = append(out, Resource{
				JobID:    j.ID,
				Kind:     kind,
				Path:     path,
				MIMEType: ArtifactMIMEType(path),
			})
		}
	}
	return out
}

// ArtifactMIMEType reports the artifact's content type from its extension:
// plain text for .txt, markdown for everything else the pipeline emits.
func ArtifactMIMEType(path string) string {
	if strings.HasSuffix(strings.ToLower(path), ".txt") {
		return "text/plain"
	}
	return "text/markdown"
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
