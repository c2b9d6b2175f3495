package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/merchke/storefront/internal/catalog"
	"github.com/merchke/storefront/internal/services"
	"github.com/merchke/storefront/types"
	"github.com/sirupsen/logrus"
)

// StorefrontHandler serves the shopper pages.
type StorefrontHandler struct {
	responder
}

func NewStorefrontHandler(logger logrus.FieldLogger, loginPath string) *StorefrontHandler {
	return &StorefrontHandler{responder{log: logger, loginPath: loginPath}}
}

// StorefrontRouter registers catalog, cart, checkout and account routes.
func StorefrontRouter(r chi.Router, logger logrus.FieldLogger, loginPath string) {
	handler := NewStorefrontHandler(logger, loginPath)

	r.Get("/products", handler.ListProducts)
	r.Get("/products/{productID}", handler.GetProduct)
	r.Get("/categories", handler.ListCategories)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", handler.GetCart)
		r.Post("/", handler.AddToCart)
		r.Put("/{productID}", handler.UpdateCartItem)
		r.Delete("/{productID}", handler.RemoveFromCart)
	})
	r.Post("/checkout", handler.Checkout)

	r.Get("/orders", handler.ListOrders)
	r.Get("/orders/{orderID}", handler.GetOrder)
	r.Get("/points", handler.Points)
	r.Get("/wallet", handler.Wallet)
	r.Post("/wallet/top-up", handler.TopUpWallet)
}

// ListProducts serves the shop page: q, category, min, max and sort.
func (h *StorefrontHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query, err := parseCatalogQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := visitorFrom(r.Context()).Storefront.CatalogPage(r.Context(), query)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func parseCatalogQuery(r *http.Request) (services.CatalogQuery, error) {
	values := r.URL.Query()
	q := services.CatalogQuery{Sort: catalog.ParseSortKey(values.Get("sort"))}
	q.Query = values.Get("q")

	if raw := strings.TrimSpace(values.Get("category")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			return q, errInvalidParam("category")
		}
		q.CategoryID = id
	}
	for name, dst := range map[string]*float64{"min": &q.Min, "max": &q.Max} {
		raw := strings.TrimSpace(values.Get(name))
		if raw == "" {
			continue
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || n < 0 {
			return q, errInvalidParam(name)
		}
		*dst = n
	}
	return q, nil
}

type errInvalidParam string

func (e errInvalidParam) Error() string {
	return "invalid " + string(e)
}

func (h *StorefrontHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "productID")
	if !ok {
		return
	}

	view, err := visitorFrom(r.Context()).Storefront.ProductPage(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *StorefrontHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	view, err := visitorFrom(r.Context()).Storefront.CategoriesPage(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *StorefrontHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	view, err := visitorFrom(r.Context()).Storefront.CartPage(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// AddToCart adds one unit unless a quantity is given.
func (h *StorefrontHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req types.AddToCartRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID < 1 {
		writeError(w, http.StatusBadRequest, "invalid product_id")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	view, err := visitorFrom(r.Context()).Storefront.AddToCart(r.Context(), req.ProductID, req.Quantity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *StorefrontHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseID(w, r, "productID")
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	view, err := visitorFrom(r.Context()).Storefront.UpdateCartItem(r.Context(), productID, req.Quantity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *StorefrontHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseID(w, r, "productID")
	if !ok {
		return
	}

	view, err := visitorFrom(r.Context()).Storefront.RemoveFromCart(r.Context(), productID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Checkout places an order for a guest or a signed-in user.
func (h *StorefrontHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req types.CreateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := visitorFrom(r.Context()).Storefront.PlaceOrder(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

type OrdersResponse struct {
	Orders []services.OrderView `json:"orders"`
	Total  int                  `json:"total"`
}

func (h *StorefrontHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := visitorFrom(r.Context()).Storefront.OrdersPage(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OrdersResponse{Orders: orders, Total: len(orders)})
}

func (h *StorefrontHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "orderID")
	if !ok {
		return
	}

	order, err := visitorFrom(r.Context()).Storefront.OrderPage(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *StorefrontHandler) Points(w http.ResponseWriter, r *http.Request) {
	points, err := visitorFrom(r.Context()).Users.Points(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (h *StorefrontHandler) Wallet(w http.ResponseWriter, r *http.Request) {
	wallet, err := visitorFrom(r.Context()).Users.Wallet(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wallet)
}

func (h *StorefrontHandler) TopUpWallet(w http.ResponseWriter, r *http.Request) {
	var req types.AddTokensRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	wallet, err := visitorFrom(r.Context()).Users.TopUpWallet(r.Context(), req.Amount)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wallet)
}
