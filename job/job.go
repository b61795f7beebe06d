// Package job tracks OCR processing jobs through their lifecycle.
//
// A Job is created pending, moves to processing when its pipeline invocation
// starts, and ends in exactly one of the terminal states completed or failed.
// Records live only in the process-local Registry; nothing survives a restart
// except artifacts the pipeline already wrote to disk.
package job

import (
	"time"
)

// Status represents the current state of a job
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// IsValidStatus returns true if the status string is a valid Status
func IsValidStatus(s string) bool {
	switch Status(s) {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status admits no further transitions
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job represents one submitted document's processing request.
//
// Field invariants, enforced by the mutators and the Registry:
//   - OutputFiles is non-nil iff Status == completed
//   - Error is non-empty iff Status == failed
//   - Progress never decreases while the job has not failed
//   - UpdatedAt advances on every mutation
//
// OutputFiles is serialized without omitempty: the field is part of the wire
// shape for every status (null until completed), and a completed job with an
// empty artifact mapping must still show output_files on the wire.
type Job struct {
	ID          string            `json:"job_id"`
	Status      Status            `json:"status"`
	Progress    float64           `json:"progress"`
	Message     string            `json:"message,omitempty"`
	OutputFiles map[string]string `json:"output_files"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// StartProcessing marks the job as processing with an initial progress value
func (j *Job) StartProcessing(progress float64, message string) {
	j.Status = StatusProcessing
	j.SetProgress(progress)
	j.Message = message
}

// SetProgress advances progress, clamped to [0,1] and monotone non-decreasing
func (j *Job) SetProgress(progress float64) {
	if progress > 1 {
		progress = 1
	}
	if progress > j.Progress {
		j.Progress = progress
	}
}

// Complete marks the job as completed with its output artifact mapping.
// An empty mapping still yields a non-nil OutputFiles so the
// outputFiles-iff-completed invariant holds for readers.
func (j *Job) Complete(outputFiles map[string]string, message string) {
	if outputFiles == nil {
		outputFiles = map[string]string{}
	}
	j.Status = StatusCompleted
	j.Progress = 1.0
	j.Message = message
	j.OutputFiles = outputFiles
	j.Error = ""
}

// Fail marks the job as failed with an error description
func (j *Job) Fail(err error, message string) {
	j.Status = StatusFailed
	j.Message = message
	j.Error = err.Error()
	j.OutputFiles = nil
}

// clone returns a deep copy so registry internals never escape to callers
func (j *Job) clone() Job {
	out := *j
	if j.OutputFiles != nil {
		out.OutputFiles = make(map[string]string, len(j.OutputFiles))
		for k, v := range j.OutputFiles {
			out.OutputFiles[k] = v
		}
	}
	return out
}
