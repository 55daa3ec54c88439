package middleware

import (
	"net/http"

	"github.com/gorilla/handlers"
)

// CORS lets the listed front-end origins call the API with the session
// cookie. With no origins the API is same-origin only and no CORS headers
// are written.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.ExposedHeaders([]string{"Content-Length"}),
		handlers.AllowCredentials(),
	)
}
