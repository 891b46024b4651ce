// Package api provides HTTP handlers for the debate trainer.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/ashureev/debate-trainer/internal/debate"
	"github.com/ashureev/debate-trainer/internal/trainer"
)

const maxBodyBytes = 64 << 10

// Renderer renders a named template into out, optionally inside layouts.
type Renderer interface {
	Render(out io.Writer, name string, binding interface{}, layout ...string) error
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// writeServiceError maps trainer errors onto HTTP statuses. Unknown errors
// are logged and reported with the generic fallback message.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	var validation *trainer.ValidationError
	switch {
	case errors.As(err, &validation), errors.Is(err, debate.ErrInvalidPersona):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, trainer.ErrUnauthorized):
		Error(w, http.StatusForbidden, "Invalid debate or unauthorized")
	case errors.Is(err, trainer.ErrDebateEnded), errors.Is(err, trainer.ErrBusy):
		Error(w, http.StatusConflict, err.Error())
	default:
		slog.Error(fallback, "error", err)
		Error(w, http.StatusInternalServerError, fallback)
	}
}
