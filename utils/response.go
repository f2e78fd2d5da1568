package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"agromandi/models"
	"agromandi/store"
)

func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, M{"success": false, "message": msg})
}

// Sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

type M map[string]interface{}

// RespondWithStoreError maps the error taxonomy to HTTP statuses:
// missing entity 404, illegal transition or bad fields 400, claim
// conflicts 403, anything else 500.
func RespondWithStoreError(w http.ResponseWriter, err error) {
	var ve *models.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		RespondWithError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, store.ErrAlreadyClaimed):
		RespondWithError(w, http.StatusForbidden, "Transport request already claimed")
	case errors.Is(err, models.ErrInvalidTransition):
		RespondWithError(w, http.StatusBadRequest, "Invalid status transition")
	case errors.As(err, &ve):
		RespondWithValidationError(w, ve)
	default:
		RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func RespondWithValidationError(w http.ResponseWriter, ve *models.ValidationError) {
	RespondWithJSON(w, http.StatusBadRequest, M{
		"success": false,
		"message": "Validation failed",
		"errors":  ve.Fields,
	})
}
