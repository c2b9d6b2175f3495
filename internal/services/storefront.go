package services

import (
	"context"

	"github.com/merchke/storefront/internal/catalog"
	"github.com/merchke/storefront/internal/forms"
	"github.com/merchke/storefront/internal/session"
	"github.com/merchke/storefront/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const featuredLimit = 6

// StorefrontAPI defines the backend calls behind the shopper pages.
type StorefrontAPI interface {
	Products(ctx context.Context) (types.ProductsResponse, error)
	Product(ctx context.Context, id int) (types.Product, error)
	ProductImages(ctx context.Context, productID int) (types.ProductImagesResponse, error)
	Categories(ctx context.Context) (types.CategoriesResponse, error)
	Cart(ctx context.Context) (types.CartResponse, error)
	AddToCart(ctx context.Context, req types.AddToCartRequest) (types.MessageResponse, error)
	UpdateCartItem(ctx context.Context, productID, quantity int) (types.MessageResponse, error)
	RemoveFromCart(ctx context.Context, productID int) (types.MessageResponse, error)
	CreateOrder(ctx context.Context, req types.CreateOrderRequest) (types.OrderResponse, error)
	Orders(ctx context.Context) (types.OrdersResponse, error)
	Order(ctx context.Context, id int) (types.Order, error)
	HasToken(ctx context.Context) (bool, error)
}

// StorefrontService builds the shopper page views.
type StorefrontService struct {
	api  StorefrontAPI
	cart *session.CartState
	log  logrus.FieldLogger
}

func NewStorefrontService(api StorefrontAPI, cart *session.CartState, logger logrus.FieldLogger) *StorefrontService {
	return &StorefrontService{api: api, cart: cart, log: orDiscard(logger)}
}

// CatalogQuery selects and orders the product listing.
type CatalogQuery struct {
	catalog.Filter
	Sort catalog.SortKey
}

type CatalogView struct {
	Products      []types.Product        `json:"products"`
	Total         int                    `json:"total"`
	Featured      []types.Product        `json:"featured"`
	Categories    []types.Category       `json:"categories"`
	CategoryTree  []catalog.CategoryNode `json:"category_tree"`
	ProductCounts map[int]int            `json:"product_counts"`
}

// CatalogPage fetches categories and products concurrently and derives the
// listing. Only active categories are shown.
func (s *StorefrontService) CatalogPage(ctx context.Context, q CatalogQuery) (CatalogView, error) {
	var (
		products   types.ProductsResponse
		categories types.CategoriesResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.api.Products(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.api.Categories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return CatalogView{}, err
	}

	active := catalog.ActiveCategories(categories.Categories)
	available := catalog.FilterProducts(products.Products, catalog.Filter{})
	listing := catalog.FilterProducts(products.Products, q.Filter)
	catalog.SortProducts(listing, q.Sort)

	return CatalogView{
		Products:      listing,
		Total:         len(listing),
		Featured:      catalog.Featured(available, featuredLimit),
		Categories:    active,
		CategoryTree:  catalog.CategoryTree(active),
		ProductCounts: catalog.ProductCountByCategory(available),
	}, nil
}

type CategoriesView struct {
	Categories   []types.Category       `json:"categories"`
	CategoryTree []catalog.CategoryNode `json:"category_tree"`
}

// CategoriesPage lists the active categories flat and as a tree.
func (s *StorefrontService) CategoriesPage(ctx context.Context) (CategoriesView, error) {
	resp, err := s.api.Categories(ctx)
	if err != nil {
		return CategoriesView{}, err
	}
	active := catalog.ActiveCategories(resp.Categories)
	return CategoriesView{Categories: active, CategoryTree: catalog.CategoryTree(active)}, nil
}

type ProductView struct {
	Product  types.Product        `json:"product"`
	Images   []types.ProductImage `json:"images"`
	Category *types.Category      `json:"category,omitempty"`
}

// ProductPage loads a product with its images and category. Only the
// product itself is required; the rest degrades to empty.
func (s *StorefrontService) ProductPage(ctx context.Context, id int) (ProductView, error) {
	var (
		view       ProductView
		images     types.ProductImagesResponse
		categories types.CategoriesResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		view.Product, err = s.api.Product(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		if images, err = s.api.ProductImages(gctx, id); err != nil {
			s.log.WithError(err).WithField("product_id", id).Debug("product images unavailable")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if categories, err = s.api.Categories(gctx); err != nil {
			s.log.WithError(err).Debug("categories unavailable")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return ProductView{}, err
	}

	view.Images = images.Images
	if view.Images == nil {
		view.Images = []types.ProductImage{}
	}
	for _, c := range categories.Categories {
		if c.ID == view.Product.CategoryID {
			c := c
			view.Category = &c
			break
		}
	}
	return view, nil
}

type CartView struct {
	Items     []types.CartItem `json:"items"`
	ItemCount int              `json:"item_count"`
	Subtotal  float64          `json:"subtotal"`
}

// CartPage loads the cart and refreshes the badge count.
func (s *StorefrontService) CartPage(ctx context.Context) (CartView, error) {
	cart, err := s.api.Cart(ctx)
	if err != nil {
		return CartView{}, err
	}
	s.cart.Refresh(ctx)
	return cartView(cart), nil
}

func cartView(cart types.CartResponse) CartView {
	items := cart.Items
	if items == nil {
		items = []types.CartItem{}
	}
	return CartView{
		Items:     items,
		ItemCount: catalog.CartItemCount(cart),
		Subtotal:  catalog.CartSubtotal(cart),
	}
}

func (s *StorefrontService) AddToCart(ctx context.Context, productID, quantity int) (CartView, error) {
	if quantity < 1 {
		return CartView{}, ErrInvalidQuantity
	}
	if _, err := s.api.AddToCart(ctx, types.AddToCartRequest{ProductID: productID, Quantity: quantity}); err != nil {
		return CartView{}, err
	}
	return s.CartPage(ctx)
}

func (s *StorefrontService) UpdateCartItem(ctx context.Context, productID, quantity int) (CartView, error) {
	if quantity < 1 {
		return CartView{}, ErrInvalidQuantity
	}
	if _, err := s.api.UpdateCartItem(ctx, productID, quantity); err != nil {
		return CartView{}, err
	}
	return s.CartPage(ctx)
}

func (s *StorefrontService) RemoveFromCart(ctx context.Context, productID int) (CartView, error) {
	if _, err := s.api.RemoveFromCart(ctx, productID); err != nil {
		return CartView{}, err
	}
	return s.CartPage(ctx)
}

// PlaceOrder validates the checkout form, re-reads the cart so an empty or
// zero-value cart never reaches the backend, and places the order.
func (s *StorefrontService) PlaceOrder(ctx context.Context, req types.CreateOrderRequest) (types.Order, error) {
	signedIn, err := s.api.HasToken(ctx)
	if err != nil {
		return types.Order{}, err
	}
	if signedIn {
		req.GuestEmail = ""
	}
	if err := forms.Checkout(req, !signedIn); err != nil {
		return types.Order{}, err
	}

	cart, err := s.api.Cart(ctx)
	if err != nil {
		return types.Order{}, err
	}
	if len(cart.Items) == 0 {
		return types.Order{}, ErrEmptyCart
	}
	if catalog.CartSubtotal(cart) <= 0 {
		return types.Order{}, ErrInvalidTotal
	}

	resp, err := s.api.CreateOrder(ctx, req)
	if err != nil {
		return types.Order{}, err
	}
	s.log.WithFields(logrus.Fields{
		"order_number": resp.Order.OrderNumber,
		"payment":      req.PaymentMethod,
	}).Info("order placed")

	s.cart.Refresh(ctx)
	return resp.Order, nil
}

// OrderView is an order with its delivery progress.
type OrderView struct {
	types.Order
	Progress int    `json:"progress"`
	Badge    string `json:"badge"`
}

func orderView(o types.Order) OrderView {
	return OrderView{Order: o, Progress: catalog.OrderProgress(o.Status), Badge: catalog.StatusBadge(o.Status)}
}

func (s *StorefrontService) OrdersPage(ctx context.Context) ([]OrderView, error) {
	resp, err := s.api.Orders(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]OrderView, 0, len(resp.Orders))
	for _, o := range resp.Orders {
		views = append(views, orderView(o))
	}
	return views, nil
}

func (s *StorefrontService) OrderPage(ctx context.Context, id int) (OrderView, error) {
	order, err := s.api.Order(ctx, id)
	if err != nil {
		return OrderView{}, err
	}
	return orderView(order), nil
}
