package endpoints

import (
	"context"
	"fmt"

	"github.com/merchke/storefront/types"
)

func (a *API) CreateOrder(ctx context.Context, req types.CreateOrderRequest) (types.OrderResponse, error) {
	var resp types.OrderResponse
	err := a.client.Post(ctx, "/api/orders", req, &resp)
	return resp, err
}

func (a *API) Order(ctx context.Context, id int) (types.Order, error) {
	var resp types.Order
	err := a.client.Get(ctx, fmt.Sprintf("/api/orders/%d", id), &resp)
	return resp, err
}

func (a *API) Orders(ctx context.Context) (types.OrdersResponse, error) {
	var resp types.OrdersResponse
	err := a.client.Get(ctx, "/api/orders", &resp)
	return resp, err
}

func (a *API) Points(ctx context.Context) (types.PointsResponse, error) {
	var resp types.PointsResponse
	err := a.client.Get(ctx, "/api/points", &resp)
	return resp, err
}

func (a *API) WalletBalance(ctx context.Context) (types.WalletBalance, error) {
	var resp types.WalletBalance
	err := a.client.Get(ctx, "/api/wallet/balance", &resp)
	return resp, err
}

func (a *API) WalletTransactions(ctx context.Context) (types.WalletTransactionsResponse, error) {
	var resp types.WalletTransactionsResponse
	err := a.client.Get(ctx, "/api/wallet/transactions", &resp)
	return resp, err
}

func (a *API) AddWalletTokens(ctx context.Context, amount float64) (types.MessageResponse, error) {
	var resp types.MessageResponse
	err := a.client.Post(ctx, "/api/wallet/add-tokens", types.AddTokensRequest{Amount: amount}, &resp)
	return resp, err
}
