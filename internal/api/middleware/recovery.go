package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/rohanmhetar/failsight/internal/api/response"
)

// Recovery converts handler panics into a 500 envelope. A panic mid-analysis
// must never take the server down with it.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic recovered",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				response.Error(w, http.StatusInternalServerError,
					"INTERNAL_ERROR", "An unexpected error occurred", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
