package endpoints

import (
	"context"
	"fmt"

	"github.com/merchke/storefront/internal/apiclient"
	"github.com/merchke/storefront/types"
)

func (a *API) AddToCart(ctx context.Context, req types.AddToCartRequest) (types.MessageResponse, error) {
	var resp types.MessageResponse
	err := a.client.Post(ctx, "/api/cart", req, &resp)
	return resp, err
}

func (a *API) Cart(ctx context.Context) (types.CartResponse, error) {
	var resp types.CartResponse
	err := a.client.Get(ctx, "/api/cart", &resp)
	return resp, err
}

func (a *API) UpdateCartItem(ctx context.Context, productID, quantity int) (types.MessageResponse, error) {
	var resp types.MessageResponse
	body := map[string]int{"quantity": quantity}
	err := a.client.Put(ctx, fmt.Sprintf("/api/cart/%d", productID), body, &resp)
	return resp, err
}

func (a *API) RemoveFromCart(ctx context.Context, productID int) (types.MessageResponse, error) {
	var resp types.MessageResponse
	err := a.client.Delete(ctx, fmt.Sprintf("/api/cart/%d", productID), &resp)
	return resp, err
}

// MigrateCart moves the guest cart to the signed-in user. The guest session
// id is forgotten once the backend accepts the migration.
func (a *API) MigrateCart(ctx context.Context) (types.MessageResponse, error) {
	var resp types.MessageResponse
	if err := a.client.Post(ctx, "/api/cart/migrate", nil, &resp, apiclient.WithGuestSession()); err != nil {
		return types.MessageResponse{}, err
	}
	if err := a.client.Credentials().ClearSessionID(ctx); err != nil {
		return resp, fmt.Errorf("clear guest session: %w", err)
	}
	return resp, nil
}
