// Package pipeline defines the contract with the external OCR extraction and
// LLM correction pipeline, and a subprocess-backed implementation of it.
//
// The pipeline itself is an external collaborator: this package never looks
// inside documents and never constructs prompts. It only describes one
// invocation and collects the artifact mapping the pipeline reports back.
package pipeline

import (
	"context"
)

// Known artifact kinds produced by the pipeline
const (
	ArtifactRawOCR    = "raw_ocr"
	ArtifactCorrected = "corrected"
)

// Request describes a single pipeline invocation.
//
// PDFPath and OutputDir must be absolute: the pipeline runs concurrently for
// independent jobs, and absolute paths are what removes any dependency on a
// shared working directory.
type Request struct {
	PDFPath   string // Absolute path of the document to process
	OutputDir string // Absolute directory the pipeline writes artifacts into

	// Provider and Model are call-scoped. They apply to this invocation only
	// and are never written into any shared configuration.
	Provider string
	Model    string

	// Paging options. The orchestration layer always requests the full
	// document: MaxTestPages 0, SkipFirstNPages 0.
	MaxTestPages    int
	SkipFirstNPages int

	// ReformatAsMarkdown asks the pipeline for markdown-formatted corrected
	// output. The orchestration layer always requests it.
	ReformatAsMarkdown bool
}

// Runner invokes the external pipeline once per call.
//
// Run blocks for the full duration of the invocation, which may take minutes
// and perform many LLM sub-calls. On success it returns the mapping of
// artifact kind (e.g. "raw_ocr", "corrected") to the absolute path of the
// produced file.
type Runner interface {
	Run(ctx context.Context, req Request) (map[string]string, error)
}
