// Package endpoints has one method per backend route. Each method performs
// exactly one HTTP call and returns the typed payload; errors are returned
// untouched for the caller to present.
package endpoints

import (
	"context"

	"github.com/merchke/storefront/internal/apiclient"
)

// API binds the endpoint methods to a configured client.
type API struct {
	client *apiclient.Client
}

func New(client *apiclient.Client) *API {
	return &API{client: client}
}

// Client returns the underlying HTTP client.
func (a *API) Client() *apiclient.Client {
	return a.client
}

// HealthResponse is the backend health payload.
type HealthResponse struct {
	Status string `json:"status"`
}

func (a *API) Health(ctx context.Context) (HealthResponse, error) {
	var resp HealthResponse
	err := a.client.Get(ctx, "/health", &resp)
	return resp, err
}
