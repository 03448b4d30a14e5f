package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rohanmhetar/failsight/internal/api/response"
	"github.com/rohanmhetar/failsight/internal/engine"
	"github.com/rohanmhetar/failsight/pkg/models"
)

// Analyzer defines the interface the analyze handler depends on.
type Analyzer interface {
	Analyze(ctx context.Context, query string, ref time.Time) (*models.AnalysisResult, error)
}

// NewAnalyzeHandler returns an http.HandlerFunc for POST /api/v1/analyze.
func NewAnalyzeHandler(svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query         string `json:"query"`
			ReferenceTime string `json:"reference_time"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		ref := time.Now().UTC()
		if req.ReferenceTime != "" {
			parsed, err := time.Parse(time.RFC3339, req.ReferenceTime)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"reference_time must be a valid RFC3339 timestamp", nil)
				return
			}
			ref = parsed.UTC()
		}

		result, err := svc.Analyze(r.Context(), req.Query, ref)
		if err != nil {
			switch {
			case errors.Is(err, engine.ErrEmptyQuery):
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"query must not be empty", nil)
			case errors.Is(err, engine.ErrNoData):
				response.Error(w, http.StatusServiceUnavailable, "DATA_UNAVAILABLE",
					"No delivery data is loaded", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		response.JSON(w, result)
	}
}
