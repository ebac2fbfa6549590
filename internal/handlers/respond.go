// Package handlers exposes the blog services as JSON over HTTP. Every
// response uses the {success, ...} envelope.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"inkwell/internal/blog"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// payload is the body of a successful response, without the success flag.
type payload map[string]any

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeOK writes {success:true, ...p}.
func writeOK(w http.ResponseWriter, status int, p payload) {
	body := make(map[string]any, len(p)+1)
	for k, v := range p {
		body[k] = v
	}
	body["success"] = true
	writeJSON(w, status, body)
}

// writeFail writes {success:false, error:msg}.
func writeFail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

// writeError maps a service error to its status code. Errors that carry no
// kind are logged and reported as "Server Error".
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fields blog.FieldErrors
	if errors.As(err, &fields) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "errors": fields})
		return
	}

	var be *blog.Error
	if errors.As(err, &be) {
		body := map[string]any{}
		for k, v := range be.Meta {
			body[k] = v
		}
		body["success"] = false
		body["error"] = be.Message
		writeJSON(w, statusFor(be.Kind), body)
		return
	}

	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeFail(w, http.StatusInternalServerError, "Server Error")
}

// statusFor returns the HTTP status of an error kind. Conflicts are
// reported as 400.
func statusFor(kind error) int {
	switch kind {
	case blog.ErrValidation, blog.ErrConflict:
		return http.StatusBadRequest
	case blog.ErrUnauthenticated:
		return http.StatusUnauthorized
	case blog.ErrForbidden:
		return http.StatusForbidden
	case blog.ErrNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into dst. It reports false after writing the
// failure response.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeFail(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// pathID parses a uuid route parameter. Anything that is not an id cannot
// name an entity, so it is reported as notFound.
func pathID(w http.ResponseWriter, raw, notFound string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		writeFail(w, http.StatusNotFound, notFound)
		return uuid.Nil, false
	}
	return id, true
}
