package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"almostArchiveAPI/internal/identity"
	"almostArchiveAPI/internal/logger"
)

type contextKey string

const TrackerKey contextKey = "tracker"
const FingerprintKey contextKey = "fingerprint"

// IdentityMiddleware opens the browser session and puts its Tracker and
// anonymous fingerprint in the request context. A session that cannot be
// decoded is replaced by a fresh one.
func IdentityMiddleware(store sessions.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var storage identity.Storage
			session, err := store.Get(r, identity.SessionName)
			if err != nil {
				logger.Log.Debug("session_decode_failed", zap.Error(err))
			}
			if session != nil {
				storage = identity.NewSessionStorage(session, r, w)
			} else {
				storage = identity.NewMemoryStorage()
			}

			tracker := identity.Open(storage)
			ctx := context.WithValue(r.Context(), TrackerKey, tracker)
			ctx = context.WithValue(ctx, FingerprintKey, tracker.Fingerprint())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetTracker extracts the browser Tracker from context
func GetTracker(ctx context.Context) (*identity.Tracker, bool) {
	tracker, ok := ctx.Value(TrackerKey).(*identity.Tracker)
	return tracker, ok
}

// GetFingerprint extracts the anonymous browser id from context
func GetFingerprint(ctx context.Context) (string, bool) {
	fp, ok := ctx.Value(FingerprintKey).(string)
	return fp, ok
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
