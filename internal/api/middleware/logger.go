package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger returns a middleware that logs HTTP requests through the
// application's structured logger.
func Logger(log zerolog.Logger) func(http.Handler) http.Handler {
	log = log.With().Str("component", "http").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap the response writer to capture the status code
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			// Strip CR/LF from user-supplied values to prevent log injection.
			sanitize := strings.NewReplacer("\n", "", "\r", "").Replace
			log.Info().
				Str("method", sanitize(r.Method)).
				Str("path", sanitize(r.URL.Path)).
				Int("status", wrapped.statusCode).
				Dur("duration", time.Since(start)).
				Msg("Request")
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
