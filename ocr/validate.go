package ocr

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ValidatePDFPath returns true iff the path exists on the filesystem and its
// name ends in the PDF extension, case-insensitive. No content sniffing: a
// mislabeled file is the pipeline's problem to report.
func ValidatePDFPath(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(path), ".pdf")
}

// ValidateOutputPath returns true iff the path's parent directory is
// writable. The parent is created if absent, then writability is probed by
// creating and removing a uniquely named marker file. The parent directory
// may be left behind even when the probe fails.
func ValidateOutputPath(path string) bool {
	parent := filepath.Dir(path)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return false
	}

	marker := filepath.Join(parent, ".write_probe_"+uuid.NewString()[:8])
	f, err := os.Create(marker)
	if err != nil {
		return false
	}
	f.Close()
	os.Remove(marker)
	return true
}
