package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"almostArchiveAPI/internal/identity"
	"almostArchiveAPI/internal/validation"
	"almostArchiveAPI/middleware"
)

const maxBodyBytes = 64 << 10

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithValidation renders every field violation at once.
func respondWithValidation(w http.ResponseWriter, err error) bool {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return false
	}
	respondWithJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"errors": verrs})
	return true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}

// trackerFrom returns the request's Tracker, or a throwaway one when the
// identity middleware did not run.
func trackerFrom(ctx context.Context) *identity.Tracker {
	if tracker, ok := middleware.GetTracker(ctx); ok {
		return tracker
	}
	return identity.Open(identity.NewMemoryStorage())
}
