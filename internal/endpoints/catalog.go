package endpoints

import (
	"context"
	"fmt"

	"github.com/merchke/storefront/types"
)

func (a *API) Products(ctx context.Context) (types.ProductsResponse, error) {
	var resp types.ProductsResponse
	err := a.client.Get(ctx, "/api/products", &resp)
	return resp, err
}

func (a *API) Product(ctx context.Context, id int) (types.Product, error) {
	var resp types.Product
	err := a.client.Get(ctx, fmt.Sprintf("/api/products/%d", id), &resp)
	return resp, err
}

func (a *API) ProductImages(ctx context.Context, productID int) (types.ProductImagesResponse, error) {
	var resp types.ProductImagesResponse
	err := a.client.Get(ctx, fmt.Sprintf("/api/products/%d/images", productID), &resp)
	return resp, err
}

func (a *API) Categories(ctx context.Context) (types.CategoriesResponse, error) {
	var resp types.CategoriesResponse
	err := a.client.Get(ctx, "/api/categories", &resp)
	return resp, err
}
