package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"patrolwatch/db"
	"patrolwatch/patrol"
)

// Error codes surfaced to clients. GEOFENCE_VIOLATION is deliberately
// distinct from VALIDATION_ERROR so the client can tell "move closer and
// resubmit" apart from "fix the payload".
const (
	codeValidation = "VALIDATION_ERROR"
	codeNotFound   = "NOT_FOUND"
	codeGeofence   = "GEOFENCE_VIOLATION"
	codeConflict   = "CONFLICT"
	codeInternal   = "INTERNAL"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code, message string, status int) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}

// writeSubmitError maps submission service errors onto the API taxonomy.
func writeSubmitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, patrol.ErrValidation):
		writeError(w, codeValidation, err.Error(), http.StatusBadRequest)
	case errors.Is(err, db.ErrNotFound):
		writeError(w, codeNotFound, "Checkpoint not found", http.StatusNotFound)
	case errors.Is(err, patrol.ErrGeofenceViolation):
		writeError(w, codeGeofence, err.Error(), http.StatusBadRequest)
	default:
		writeError(w, codeInternal, "Failed to record patrol", http.StatusInternalServerError)
	}
}
