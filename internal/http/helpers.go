package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"budsjett/internal/core"
	"budsjett/internal/log"
	"budsjett/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeError maps domain errors onto status codes and emits a JSON body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrMonthLocked):
		status = http.StatusLocked
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrInvalidMonthKey),
		errors.Is(err, core.ErrInvalidPayday),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidBucket),
		errors.Is(err, core.ErrInvalidForecast),
		errors.Is(err, core.ErrInvalidTxnType),
		errors.Is(err, core.ErrInvalidActiveDay):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "request failed",
			"method", r.Method, "url", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// monthPath reads and validates the {month} path segment.
func monthPath(r *http.Request) (core.MonthKey, error) {
	return core.ParseMonthKey(r.PathValue("month"))
}

// monthQuery reads the ?month= parameter, defaulting to the current month.
func monthQuery(r *http.Request) (core.MonthKey, error) {
	v := strings.TrimSpace(r.URL.Query().Get("month"))
	if v == "" {
		return core.MonthKeyOf(time.Now()), nil
	}
	return core.ParseMonthKey(v)
}

// parseWriteMode maps the request's mode field; empty means override.
func parseWriteMode(mode string) (storage.WriteMode, bool) {
	switch storage.WriteMode(strings.ToUpper(strings.TrimSpace(mode))) {
	case storage.WriteTemplate:
		return storage.WriteTemplate, true
	case storage.WriteOverride, "":
		return storage.WriteOverride, true
	default:
		return "", false
	}
}
