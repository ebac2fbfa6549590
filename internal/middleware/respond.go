package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// errorBody is the failure envelope shared with the handlers package.
type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// writeError writes a JSON failure envelope with status.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorBody{Success: false, Error: msg}); err != nil {
		slog.Error("write error response", "error", err)
	}
}
