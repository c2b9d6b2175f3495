package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/merchke/storefront/internal/endpoints"
)

const upstreamHealthTimeout = 3 * time.Second

type HealthResponse struct {
	Status   string `json:"status"`
	Upstream string `json:"upstream"`
}

// Healthz reports the gateway as up and includes the backend's health.
// An unreachable backend degrades the response but still answers 200.
func Healthz(api *endpoints.API) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), upstreamHealthTimeout)
		defer cancel()

		resp := HealthResponse{Status: "ok", Upstream: "ok"}
		if _, err := api.Health(ctx); err != nil {
			resp.Upstream = "unavailable"
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
