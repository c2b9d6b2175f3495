package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/merchke/storefront/internal/services"
	"github.com/merchke/storefront/types"
	"github.com/sirupsen/logrus"
)

// AdminHandler serves the admin pages.
type AdminHandler struct {
	responder
}

func NewAdminHandler(logger logrus.FieldLogger, loginPath string) *AdminHandler {
	return &AdminHandler{responder{log: logger, loginPath: loginPath}}
}

// AdminRouter registers admin routes on the given router. Every route
// requires a signed-in admin.
func AdminRouter(r chi.Router, logger logrus.FieldLogger, loginPath string) {
	handler := NewAdminHandler(logger, loginPath)

	r.Use(handler.requireAdmin)
	r.Get("/dashboard", handler.Dashboard)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", handler.ListProducts)
		r.Post("/", handler.CreateProduct)
		r.Put("/{productID}", handler.UpdateProduct)
		r.Delete("/{productID}", handler.DeleteProduct)
	})
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", handler.ListCategories)
		r.Post("/", handler.CreateCategory)
		r.Put("/{categoryID}", handler.UpdateCategory)
		r.Delete("/{categoryID}", handler.DeleteCategory)
	})
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", handler.ListOrders)
		r.Get("/{orderID}", handler.GetOrder)
		r.Put("/{orderID}/status", handler.UpdateOrderStatus)
	})
	r.Get("/customers", handler.ListCustomers)
}

// requireAdmin loads the profile behind the visitor's token.
func (h *AdminHandler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v := visitorFrom(r.Context())
		v.Auth.Init(r.Context())

		if !v.Auth.IsAuthenticated() {
			h.fail(w, r, services.ErrNotSignedIn)
			return
		}
		if !v.Auth.IsAdmin() {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := visitorFrom(r.Context()).Admin.Dashboard(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := visitorFrom(r.Context()).Admin.Products(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	h.saveProduct(w, r, 0, http.StatusCreated)
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "productID")
	if !ok {
		return
	}
	h.saveProduct(w, r, id, http.StatusOK)
}

func (h *AdminHandler) saveProduct(w http.ResponseWriter, r *http.Request, id, status int) {
	var in types.ProductInput
	if !decodeJSON(w, r, &in) {
		return
	}

	product, err := visitorFrom(r.Context()).Admin.SaveProduct(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, status, product)
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "productID")
	if !ok {
		return
	}
	if err := visitorFrom(r.Context()).Admin.DeleteProduct(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := visitorFrom(r.Context()).Admin.Categories(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	h.saveCategory(w, r, 0, http.StatusCreated)
}

func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "categoryID")
	if !ok {
		return
	}
	h.saveCategory(w, r, id, http.StatusOK)
}

func (h *AdminHandler) saveCategory(w http.ResponseWriter, r *http.Request, id, status int) {
	var in types.CategoryInput
	if !decodeJSON(w, r, &in) {
		return
	}

	category, err := visitorFrom(r.Context()).Admin.SaveCategory(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, status, category)
}

func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "categoryID")
	if !ok {
		return
	}
	if err := visitorFrom(r.Context()).Admin.DeleteCategory(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := visitorFrom(r.Context()).Admin.Orders(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OrdersResponse{Orders: orders, Total: len(orders)})
}

func (h *AdminHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "orderID")
	if !ok {
		return
	}

	order, err := visitorFrom(r.Context()).Admin.Order(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "orderID")
	if !ok {
		return
	}
	var req types.UpdateOrderStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := visitorFrom(r.Context()).Admin.UpdateOrderStatus(r.Context(), id, req.Status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type CustomersResponse struct {
	Customers []types.Customer `json:"customers"`
	Total     int              `json:"total"`
}

// ListCustomers filters by the q parameter.
func (h *AdminHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := visitorFrom(r.Context()).Admin.Customers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CustomersResponse{Customers: customers, Total: len(customers)})
}
