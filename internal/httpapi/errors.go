package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/surajmandalcell/asrpro-sub001/internal/orchestrator"
	"github.com/surajmandalcell/asrpro-sub001/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// lifecycleStatus maps well-known orchestrator errors to HTTP status codes.
func lifecycleStatus(err error) int {
	switch {
	case orchestrator.IsModelNotFound(err):
		return http.StatusNotFound
	case orchestrator.IsCapacityExceeded(err):
		return http.StatusServiceUnavailable
	case orchestrator.IsImageUnavailable(err):
		return http.StatusBadGateway
	case orchestrator.IsReadinessTimeout(err):
		return http.StatusGatewayTimeout
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	// RuntimeStartFailed, RuntimeStopFailed, anything else
	return http.StatusInternalServerError
}

// writeLifecycleError maps err and writes the JSON payload in one step.
func writeLifecycleError(w http.ResponseWriter, err error) {
	writeJSONError(w, lifecycleStatus(err), err.Error())
}
