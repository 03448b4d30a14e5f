package handler

import (
	"context"
	"net/http"

	"github.com/rohanmhetar/failsight/internal/api/response"
)

// Pinger checks connectivity to the record store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewHealthHandler returns an http.HandlerFunc for GET /api/v1/health.
func NewHealthHandler(st Pinger, holder DatasetHolder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		storeStatus := "ok"
		if err := st.Ping(r.Context()); err != nil {
			status = "degraded"
			storeStatus = err.Error()
		}
		dataStatus := "loaded"
		if ds := holder.Dataset(); ds == nil || ds.Empty() {
			status = "degraded"
			dataStatus = "empty"
		}
		response.JSON(w, map[string]string{
			"status":  status,
			"store":   storeStatus,
			"dataset": dataStatus,
		})
	}
}
