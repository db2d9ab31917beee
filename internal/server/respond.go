package server

import (
	"encoding/json"
	"net/http"

	"github.com/numflow/numflow/pkg/errors"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	OK    bool        `json:"ok"`
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error code to an HTTP status and writes the
// standard error body.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidDefinition,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPrecision:
		status = http.StatusBadRequest
	case errors.ErrCodeUnknownNode:
		status = http.StatusUnprocessableEntity
	case errors.ErrCodeCycleRejected:
		status = http.StatusConflict
	case errors.ErrCodeNotFound, errors.ErrCodeGraphNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	}

	writeJSON(w, status, errorBody{
		OK:    false,
		Error: errors.UserMessage(err),
		Code:  errors.GetCode(err),
	})
}
