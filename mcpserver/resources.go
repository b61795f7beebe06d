package mcpserver

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/webboty/llm-aided-ocr/errors"
	"github.com/webboty/llm-aided-ocr/job"
	"github.com/webboty/llm-aided-ocr/ocr"
)

const resourceURIPrefix = "ocr://job/"

// registerResources registers the artifact resource template. Concrete
// resources are published per job as they complete.
func (s *MCPServer) registerResources() {
	template := mcp.NewResourceTemplate(
		resourceURIPrefix+"{job_id}/{artifact_kind}",
		"OCR job output",
		mcp.WithTemplateDescription("Output file of a completed OCR processing job"),
	)
	s.server.AddResourceTemplate(template, s.handleReadResource)
}

// publishJobResources announces a completed job's artifacts. Reads go back
// through the service, so a file deleted after publication surfaces as a
// read error rather than stale content.
func (s *MCPServer) publishJobResources(j job.Job) {
	for kind, path := range j.OutputFiles {
		resource := mcp.NewResource(
			resourceURIPrefix+j.ID+"/"+kind,
			fmt.Sprintf("%s - %s", j.ID, kind),
			mcp.WithResourceDescription(fmt.Sprintf("OCR output file: %s", kind)),
			mcp.WithMIMEType(ocr.ArtifactMIMEType(path)),
		)
		s.server.AddResource(resource, s.handleReadResource)
		s.logger.Infow("Published artifact resource", "job_id", j.ID, "kind", kind)
	}
}

// retractJobResources withdraws a deleted job's published artifacts
func (s *MCPServer) retractJobResources(j job.Job) {
	for kind := range j.OutputFiles {
		s.server.RemoveResource(resourceURIPrefix + j.ID + "/" + kind)
	}
}

// handleReadResource serves ocr://job/{job_id}/{artifact_kind} reads
func (s *MCPServer) handleReadResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI

	jobID, kind, ok := parseResourceURI(uri)
	if !ok {
		return nil, errors.NewNotFoundError("Resource not found: %s", uri)
	}

	path, err := s.svc.ResolveArtifactKind(jobID, kind)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read resource %s", uri)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read artifact file %s", path)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: ocr.ArtifactMIMEType(path),
			Text:     string(data),
		},
	}, nil
}

// parseResourceURI splits ocr://job/{job_id}/{artifact_kind}
func parseResourceURI(uri string) (jobID, kind string, ok bool) {
	if !strings.HasPrefix(uri, resourceURIPrefix) {
		return "", "", false
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, resourceURIPrefix), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
