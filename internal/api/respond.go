package api

import (
	"encoding/json"
	"net/http"

	apperrors "vehiculos/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperrors.StatusCode(err), map[string]string{"detail": err.Error()})
}
