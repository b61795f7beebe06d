package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/webboty/llm-aided-ocr/errors"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		return errors.Wrap(err, "failed to encode JSON")
	}
	return nil
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps a service error onto its HTTP status
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.IsNotFoundError(err):
		writeError(w, http.StatusNotFound, errorMessage(err))
	case errors.IsInvalidRequestError(err), errors.Is(err, errors.ErrJobNotCompleted):
		writeError(w, http.StatusBadRequest, errorMessage(err))
	case errors.Is(err, errors.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, errorMessage(err))
	default:
		writeError(w, http.StatusInternalServerError, errorMessage(err))
	}
}

// errorMessage strips the sentinel suffix that cockroachdb/errors appends on
// wrapping, keeping client-facing messages clean.
func errorMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{
		errors.ErrNotFound,
		errors.ErrInvalidRequest,
		errors.ErrUnauthorized,
		errors.ErrJobNotCompleted,
	} {
		suffix := ": " + sentinel.Error()
		if strings.HasSuffix(msg, suffix) {
			return strings.TrimSuffix(msg, suffix)
		}
	}
	return msg
}

// requireMethod checks if the request method matches the expected method
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

// extractPathParts extracts path segments after removing a prefix
func extractPathParts(urlPath, prefix string) []string {
	return strings.Split(strings.TrimPrefix(urlPath, prefix), "/")
}
