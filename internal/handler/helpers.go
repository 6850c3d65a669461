package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/bagshot/internal/rotation"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeEngineError maps the rotation error taxonomy onto HTTP statuses.
// Anything unrecognized is logged and reported as a 500.
func writeEngineError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var verr *rotation.ValidationError
	switch {
	case errors.Is(err, rotation.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, rotation.ErrForbidden):
		writeError(w, http.StatusForbidden, "not allowed for this user")
	case errors.Is(err, rotation.ErrInvalidState):
		writeError(w, http.StatusConflict, "assignment is not in a state that allows this")
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	default:
		logger.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
