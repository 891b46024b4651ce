package shared

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// WriteJSONError writes {"error": message} with an application/json content
// type. Middleware uses it where the api package cannot be imported.
func WriteJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}
