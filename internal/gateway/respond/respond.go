// Package respond writes the gateway's JSON bodies.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"issuescout/internal/apperr"
	"issuescout/internal/logging"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes {"error": msg} for err using the apperr status mapping.
// Server-side failures are logged with their full cause.
func Error(w http.ResponseWriter, r *http.Request, fallback *slog.Logger, err error) {
	status := apperr.Status(err)
	var limited *apperr.RateLimitedError
	if errors.As(err, &limited) {
		w.Header().Set("Retry-After", strconv.Itoa(limited.RetryAfterSeconds()))
	}
	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context(), fallback).Error("request failed", "status", status, "error", err)
	}
	JSON(w, status, map[string]string{"error": apperr.PublicMessage(err)})
}
