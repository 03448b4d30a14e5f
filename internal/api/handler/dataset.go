package handler

import (
	"context"
	"net/http"

	"github.com/rohanmhetar/failsight/internal/api/response"
	"github.com/rohanmhetar/failsight/internal/dataset"
)

// DatasetHolder is the slice of the engine the dataset handlers depend on.
type DatasetHolder interface {
	Dataset() *dataset.Dataset
	Reload(ctx context.Context) error
}

// NewDatasetSummaryHandler returns an http.HandlerFunc for
// GET /api/v1/dataset/summary.
func NewDatasetSummaryHandler(holder DatasetHolder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds := holder.Dataset()
		if ds == nil || ds.Empty() {
			response.Error(w, http.StatusServiceUnavailable, "DATA_UNAVAILABLE",
				"No delivery data is loaded", nil)
			return
		}
		response.JSON(w, map[string]any{
			"loaded_at":   ds.LoadedAt,
			"total_rows":  ds.TotalRows(),
			"collections": ds.Summarize(),
		})
	}
}

// NewDatasetReloadHandler returns an http.HandlerFunc for
// POST /api/v1/dataset/reload.
func NewDatasetReloadHandler(holder DatasetHolder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := holder.Reload(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "DATA_UNAVAILABLE",
				"Dataset reload failed", err.Error())
			return
		}
		ds := holder.Dataset()
		response.Accepted(w, map[string]any{
			"loaded_at":  ds.LoadedAt,
			"total_rows": ds.TotalRows(),
		})
	}
}
