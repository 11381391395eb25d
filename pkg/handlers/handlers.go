// Package handlers provides JSON response helpers shared by domain HTTP handlers.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// RespondJSON writes data as a JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes {"error": err.Error()} with the given status code.
// Server errors log at Error level; client errors log at Warn.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	logError(logger, status, err)
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}

// RespondErrorDetail writes an error body that carries an additional structured
// field under key, such as a list of declaration issues or validation violations.
func RespondErrorDetail(
	w http.ResponseWriter,
	logger *slog.Logger,
	status int,
	err error,
	key string,
	detail any,
) {
	logError(logger, status, err)
	RespondJSON(w, status, map[string]any{
		"error": err.Error(),
		key:     detail,
	})
}

func logError(logger *slog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
		return
	}
	logger.Warn("request rejected", "status", status, "error", err)
}
