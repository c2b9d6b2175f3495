package endpoints

import (
	"context"
	"fmt"

	"github.com/merchke/storefront/types"
)

func (a *API) AdminProducts(ctx context.Context) (types.ProductsResponse, error) {
	var resp types.ProductsResponse
	err := a.client.Get(ctx, "/api/admin/products", &resp)
	return resp, err
}

func (a *API) AdminCreateProduct(ctx context.Context, in types.ProductInput) (types.ProductResponse, error) {
	var resp types.ProductResponse
	err := a.client.Post(ctx, "/api/admin/products", in, &resp)
	return resp, err
}

func (a *API) AdminUpdateProduct(ctx context.Context, id int, in types.ProductInput) (types.ProductResponse, error) {
	var resp types.ProductResponse
	err := a.client.Put(ctx, fmt.Sprintf("/api/admin/products/%d", id), in, &resp)
	return resp, err
}

func (a *API) AdminDeleteProduct(ctx context.Context, id int) error {
	return a.client.Delete(ctx, fmt.Sprintf("/api/admin/products/%d", id), nil)
}

func (a *API) AdminCategories(ctx context.Context) (types.CategoriesResponse, error) {
	var resp types.CategoriesResponse
	err := a.client.Get(ctx, "/api/admin/categories", &resp)
	return resp, err
}

func (a *API) AdminCreateCategory(ctx context.Context, in types.CategoryInput) (types.CategoryResponse, error) {
	var resp types.CategoryResponse
	err := a.client.Post(ctx, "/api/admin/categories", in, &resp)
	return resp, err
}

func (a *API) AdminUpdateCategory(ctx context.Context, id int, in types.CategoryInput) (types.CategoryResponse, error) {
	var resp types.CategoryResponse
	err := a.client.Put(ctx, fmt.Sprintf("/api/admin/categories/%d", id), in, &resp)
	return resp, err
}

func (a *API) AdminDeleteCategory(ctx context.Context, id int) error {
	return a.client.Delete(ctx, fmt.Sprintf("/api/admin/categories/%d", id), nil)
}

func (a *API) AdminOrders(ctx context.Context) (types.OrdersResponse, error) {
	var resp types.OrdersResponse
	err := a.client.Get(ctx, "/api/admin/orders", &resp)
	return resp, err
}

func (a *API) AdminOrder(ctx context.Context, id int) (types.Order, error) {
	var resp types.OrderResponse
	if err := a.client.Get(ctx, fmt.Sprintf("/api/admin/orders/%d", id), &resp); err != nil {
		return types.Order{}, err
	}
	return resp.Order, nil
}

func (a *API) AdminUpdateOrderStatus(ctx context.Context, id int, status types.OrderStatus) (types.OrderResponse, error) {
	var resp types.OrderResponse
	req := types.UpdateOrderStatusRequest{Status: status}
	err := a.client.Put(ctx, fmt.Sprintf("/api/admin/orders/%d/status", id), req, &resp)
	return resp, err
}

func (a *API) AdminCustomers(ctx context.Context) (types.CustomersResponse, error) {
	var resp types.CustomersResponse
	err := a.client.Get(ctx, "/api/admin/customers", &resp)
	return resp, err
}
