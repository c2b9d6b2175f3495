package services

import (
	"context"
	"strings"

	"github.com/merchke/storefront/internal/catalog"
	"github.com/merchke/storefront/internal/forms"
	"github.com/merchke/storefront/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// AdminAPI defines the backend calls behind the admin pages.
type AdminAPI interface {
	AdminProducts(ctx context.Context) (types.ProductsResponse, error)
	AdminCreateProduct(ctx context.Context, in types.ProductInput) (types.ProductResponse, error)
	AdminUpdateProduct(ctx context.Context, id int, in types.ProductInput) (types.ProductResponse, error)
	AdminDeleteProduct(ctx context.Context, id int) error
	AdminCategories(ctx context.Context) (types.CategoriesResponse, error)
	AdminCreateCategory(ctx context.Context, in types.CategoryInput) (types.CategoryResponse, error)
	AdminUpdateCategory(ctx context.Context, id int, in types.CategoryInput) (types.CategoryResponse, error)
	AdminDeleteCategory(ctx context.Context, id int) error
	AdminOrders(ctx context.Context) (types.OrdersResponse, error)
	AdminOrder(ctx context.Context, id int) (types.Order, error)
	AdminUpdateOrderStatus(ctx context.Context, id int, status types.OrderStatus) (types.OrderResponse, error)
	AdminCustomers(ctx context.Context) (types.CustomersResponse, error)
}

// AdminService encapsulates the admin use-cases.
type AdminService struct {
	api AdminAPI
	log logrus.FieldLogger
}

func NewAdminService(api AdminAPI, logger logrus.FieldLogger) *AdminService {
	return &AdminService{api: api, log: orDiscard(logger)}
}

// Dashboard loads products, orders and customers concurrently. Products are
// required; orders and customers count as empty when they fail.
func (s *AdminService) Dashboard(ctx context.Context) (catalog.DashboardStats, error) {
	var (
		products  types.ProductsResponse
		orders    types.OrdersResponse
		customers types.CustomersResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.api.AdminProducts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		if orders, err = s.api.AdminOrders(gctx); err != nil {
			s.log.WithError(err).Warn("dashboard orders unavailable")
			orders = types.OrdersResponse{}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if customers, err = s.api.AdminCustomers(gctx); err != nil {
			s.log.WithError(err).Warn("dashboard customers unavailable")
			customers = types.CustomersResponse{}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return catalog.DashboardStats{}, err
	}

	return catalog.Dashboard(products, orders, customers), nil
}

func (s *AdminService) Products(ctx context.Context) (types.ProductsResponse, error) {
	return s.api.AdminProducts(ctx)
}

// SaveProduct creates the product when id is zero and updates it
// otherwise. An empty slug is derived from the name.
func (s *AdminService) SaveProduct(ctx context.Context, id int, in types.ProductInput) (types.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if strings.TrimSpace(in.Slug) == "" {
		in.Slug = catalog.Slug(in.Name)
	}
	if err := forms.Product(in); err != nil {
		return types.Product{}, err
	}

	var (
		resp types.ProductResponse
		err  error
	)
	if id == 0 {
		resp, err = s.api.AdminCreateProduct(ctx, in)
	} else {
		resp, err = s.api.AdminUpdateProduct(ctx, id, in)
	}
	if err != nil {
		return types.Product{}, err
	}
	s.log.WithFields(logrus.Fields{"product_id": resp.Product.ID, "slug": resp.Product.Slug}).Info("product saved")
	return resp.Product, nil
}

func (s *AdminService) DeleteProduct(ctx context.Context, id int) error {
	return s.api.AdminDeleteProduct(ctx, id)
}

func (s *AdminService) Categories(ctx context.Context) (types.CategoriesResponse, error) {
	return s.api.AdminCategories(ctx)
}

// SaveCategory creates or updates a category like SaveProduct.
func (s *AdminService) SaveCategory(ctx context.Context, id int, in types.CategoryInput) (types.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if strings.TrimSpace(in.Slug) == "" {
		in.Slug = catalog.Slug(in.Name)
	}
	if err := forms.Category(in); err != nil {
		return types.Category{}, err
	}

	var (
		resp types.CategoryResponse
		err  error
	)
	if id == 0 {
		resp, err = s.api.AdminCreateCategory(ctx, in)
	} else {
		resp, err = s.api.AdminUpdateCategory(ctx, id, in)
	}
	if err != nil {
		return types.Category{}, err
	}
	s.log.WithFields(logrus.Fields{"category_id": resp.Category.ID, "slug": resp.Category.Slug}).Info("category saved")
	return resp.Category, nil
}

func (s *AdminService) DeleteCategory(ctx context.Context, id int) error {
	return s.api.AdminDeleteCategory(ctx, id)
}

func (s *AdminService) Orders(ctx context.Context) ([]OrderView, error) {
	resp, err := s.api.AdminOrders(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]OrderView, 0, len(resp.Orders))
	for _, o := range resp.Orders {
		views = append(views, orderView(o))
	}
	return views, nil
}

func (s *AdminService) Order(ctx context.Context, id int) (OrderView, error) {
	order, err := s.api.AdminOrder(ctx, id)
	if err != nil {
		return OrderView{}, err
	}
	return orderView(order), nil
}

// UpdateOrderStatus moves an order along. The transition itself is
// checked by the backend.
func (s *AdminService) UpdateOrderStatus(ctx context.Context, id int, status types.OrderStatus) (OrderView, error) {
	status = types.OrderStatus(strings.ToLower(strings.TrimSpace(string(status))))
	if !status.Valid() {
		return OrderView{}, ErrInvalidStatus
	}
	resp, err := s.api.AdminUpdateOrderStatus(ctx, id, status)
	if err != nil {
		return OrderView{}, err
	}
	s.log.WithFields(logrus.Fields{"order_id": id, "status": status}).Info("order status updated")
	return orderView(resp.Order), nil
}

// Customers lists customers whose username, email or name contains query.
func (s *AdminService) Customers(ctx context.Context, query string) ([]types.Customer, error) {
	resp, err := s.api.AdminCustomers(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.FilterCustomers(resp.Customers, query), nil
}
