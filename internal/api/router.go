package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/rohanmhetar/failsight/internal/api/middleware"
	"github.com/rohanmhetar/failsight/internal/api/response"
)

// Dependencies holds all handler dependencies for the router.
type Dependencies struct {
	HealthHandler         http.HandlerFunc
	AnalyzeHandler        http.HandlerFunc
	DatasetSummaryHandler http.HandlerFunc
	DatasetReloadHandler  http.HandlerFunc
}

// NewRouter builds the Chi router with the middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	r.Post("/api/v1/analyze", orNotImplemented(deps.AnalyzeHandler))
	r.Get("/api/v1/dataset/summary", orNotImplemented(deps.DatasetSummaryHandler))
	r.Post("/api/v1/dataset/reload", orNotImplemented(deps.DatasetReloadHandler))

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
