package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"movimenti/internal/core"
	"movimenti/internal/services"
	"movimenti/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("Failed to encode response", "error", err)
		}
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

// validationErrs are domain rejections a client can fix; they map to 422.
var validationErrs = []error{
	core.ErrInvalidAmount,
	core.ErrEmptyDescription,
	core.ErrEmptyCategory,
	core.ErrInvalidKind,
	core.ErrInvalidFrequency,
	core.ErrInvalidInterval,
	core.ErrEndBeforeStart,
	core.ErrTooLong,
	core.ErrEmptyName,
	core.ErrInvalidAccount,
	core.ErrEmptyUser,
}

// writeError translates service errors into HTTP status codes. Ownership
// violations are indistinguishable from missing rows on the wire.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound) || errors.Is(err, services.ErrNotOwned):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	case errors.Is(err, core.ErrInvalidRange),
		errors.Is(err, core.ErrUnparsableDate),
		errors.Is(err, core.ErrMissingDate),
		errors.Is(err, errInvalidRRule):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	for _, verr := range validationErrs {
		if errors.Is(err, verr) {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
			return
		}
	}

	slog.ErrorContext(r.Context(), "Request failed",
		"method", r.Method, "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}
