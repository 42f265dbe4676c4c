package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/lumen-core/internal/daemon"
	"github.com/nerrad567/lumen-core/internal/device"
	"github.com/nerrad567/lumen-core/internal/driver"
	"github.com/nerrad567/lumen-core/internal/effect"
	"github.com/nerrad567/lumen-core/internal/zone"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeNotFound       = "not_found"
	ErrCodeUnauthorized   = "unauthorised"
	ErrCodeForbidden      = "forbidden"
	ErrCodeConflict       = "conflict"
	ErrCodeUnsupported    = "unsupported"
	ErrCodeInternal       = "internal_error"
	ErrCodeValidation     = "validation_error"
	ErrCodeMethodNotAllow = "method_not_allowed"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeForbidden writes a 403 error response.
func writeForbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDeviceError maps a daemon or device error onto a response.
func writeDeviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, daemon.ErrDeviceNotFound),
		errors.Is(err, driver.ErrUnknownModel),
		errors.Is(err, zone.ErrUnknownZone),
		errors.Is(err, zone.ErrNotPresent):
		writeError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())

	case errors.Is(err, daemon.ErrInvalidCommand),
		errors.Is(err, daemon.ErrUnknownCommand),
		errors.Is(err, zone.ErrInvalidValue),
		errors.Is(err, effect.ErrArgumentCount),
		errors.Is(err, device.ErrInvalidDPI),
		errors.Is(err, device.ErrInvalidPollRate),
		errors.Is(err, device.ErrInvalidPayload):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())

	case errors.Is(err, effect.ErrSetterNotFound),
		errors.Is(err, device.ErrNotSupported):
		writeError(w, http.StatusUnprocessableEntity, ErrCodeUnsupported, err.Error())

	case errors.Is(err, device.ErrSuspended),
		errors.Is(err, device.ErrClosed),
		errors.Is(err, daemon.ErrDeviceExists):
		writeError(w, http.StatusConflict, ErrCodeConflict, err.Error())

	default:
		writeInternalError(w, err.Error())
	}
}
