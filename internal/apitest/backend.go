// Package apitest runs an in-memory Merch KE backend for tests.
package apitest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/merchke/storefront/types"
)

const (
	// Password is accepted for every seeded account.
	Password = "secret123"

	CustomerEmail = "wanjiru@example.com"
	AdminEmail    = "admin@merch.ke"

	tokenTTL = time.Hour
)

var secret = []byte("apitest-secret")

// Backend is a fake of the storefront API.
type Backend struct {
	URL string

	mu         sync.Mutex
	users      map[int]*types.User
	products   []types.Product
	categories []types.Category
	carts      map[string][]types.CartItem
	orders     []types.Order
	calls      []Call
	nextID     int
	wallets    map[int]float64

	migrateStatus  int
	omitCartTotals bool
	failPaths      map[string]bool
}

// Call records one request seen by the backend.
type Call struct {
	Method    string
	Path      string
	Auth      string
	SessionID string
}

// NewBackend seeds the fake and serves it until the test ends.
func NewBackend(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{
		users:     make(map[int]*types.User),
		carts:     make(map[string][]types.CartItem),
		failPaths: make(map[string]bool),
		wallets:   make(map[int]float64),
		nextID:    100,
	}
	b.seed()

	srv := httptest.NewServer(b.routes())
	t.Cleanup(srv.Close)
	b.URL = srv.URL
	return b
}

// SetMigrateStatus makes POST /api/cart/migrate answer status. Zero
// restores normal behaviour.
func (b *Backend) SetMigrateStatus(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.migrateStatus = status
}

// OmitCartTotals makes GET /api/cart leave every total and subtotal zero.
func (b *Backend) OmitCartTotals(omit bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.omitCartTotals = omit
}

// Fail answers method and path with 500 until the test ends.
func (b *Backend) Fail(method, path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failPaths[method+" "+path] = true
}

// Calls returns the requests seen so far.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// CallCount counts requests to method and path.
func (b *Backend) CallCount(method, path string) int {
	n := 0
	for _, c := range b.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// Token mints a valid token for the seeded account with the given email.
func (b *Backend) Token(email string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.Email == email {
			token, _ := IssueToken(u.ID, tokenTTL)
			return token
		}
	}
	return ""
}

// CartFor returns the cart stored for a guest session id.
func (b *Backend) CartFor(sessionID string) []types.CartItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]types.CartItem(nil), b.carts["guest:"+sessionID]...)
}

// IssueToken signs an HS256 token for userID.
func IssueToken(userID int, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (b *Backend) seed() {
	created := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	b.users[1] = &types.User{ID: 1, Username: "wanjiru", Email: CustomerEmail, FirstName: "Wanjiru", LastName: "Kamau", Phone: "0712345678", Role: types.RoleCustomer, IsActive: true, EmailVerified: true, CreatedAt: created}
	b.users[2] = &types.User{ID: 2, Username: "admin", Email: AdminEmail, FirstName: "Merch", LastName: "Admin", Role: types.RoleAdmin, IsActive: true, EmailVerified: true, CreatedAt: created}

	apparel := 1
	b.categories = []types.Category{
		{ID: 1, Name: "Apparel", Slug: "apparel", IsActive: true, SortOrder: 1, CreatedAt: created},
		{ID: 2, Name: "Hoodies", Slug: "hoodies", ParentID: &apparel, IsActive: true, SortOrder: 2, CreatedAt: created},
		{ID: 3, Name: "Stickers", Slug: "stickers", IsActive: true, SortOrder: 3, CreatedAt: created},
		{ID: 4, Name: "Archived", Slug: "archived", IsActive: false, SortOrder: 4, CreatedAt: created},
	}

	stock := func(n int) *int { return &n }
	b.products = []types.Product{
		{ID: 1, Name: "Python Developer Hoodie", Slug: "python-developer-hoodie", CategoryID: 2, BasePrice: 3500, StockQuantity: stock(4), IsActive: true, IsFeatured: true, CreatedAt: created},
		{ID: 2, Name: "Gopher Sticker", Slug: "gopher-sticker", CategoryID: 3, BasePrice: 250, StockQuantity: stock(120), IsActive: true, CreatedAt: created},
		{ID: 3, Name: "Nairobi Tech Tee", Slug: "nairobi-tech-tee", CategoryID: 1, BasePrice: 1800, StockQuantity: stock(30), IsActive: true, CreatedAt: created},
		{ID: 4, Name: "Retired Mug", Slug: "retired-mug", CategoryID: 3, BasePrice: 900, StockQuantity: stock(0), IsActive: false, CreatedAt: created},
	}

	b.orders = []types.Order{
		{ID: 1, OrderNumber: "MKE-0001", UserID: 1, TotalAmount: 3750, Status: types.OrderShipped, PaymentMethod: "mpesa", PaymentStatus: "paid", CreatedAt: created, UpdatedAt: created,
			Items: []types.OrderItem{{ID: 1, ProductID: 1, ProductName: "Python Developer Hoodie", Quantity: 1, Price: 3500, Subtotal: 3500}, {ID: 2, ProductID: 2, ProductName: "Gopher Sticker", Quantity: 1, Price: 250, Subtotal: 250}}},
	}
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record, b.failures)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", b.register)
		r.Post("/auth/login", b.login)
		r.With(b.requireAuth).Get("/auth/profile", b.profile)

		r.Get("/products", b.listProducts)
		r.Get("/products/{id}", b.getProduct)
		r.Get("/products/{id}/images", b.productImages)
		r.Get("/categories", b.listCategories)

		r.Get("/cart", b.getCart)
		r.Post("/cart", b.addToCart)
		r.Put("/cart/{id}", b.updateCartItem)
		r.Delete("/cart/{id}", b.removeCartItem)
		r.With(b.requireAuth).Post("/cart/migrate", b.migrateCart)

		r.Post("/orders", b.createOrder)
		r.With(b.requireAuth).Get("/orders", b.listOrders)
		r.With(b.requireAuth).Get("/orders/{id}", b.getOrder)
		r.With(b.requireAuth).Get("/points", b.points)
		r.With(b.requireAuth).Get("/wallet/balance", b.walletBalance)
		r.With(b.requireAuth).Get("/wallet/transactions", b.walletTransactions)
		r.With(b.requireAuth).Post("/wallet/add-tokens", b.addWalletTokens)

		r.Route("/admin", func(r chi.Router) {
			r.Use(b.requireAuth, b.requireAdmin)
			r.Get("/products", b.adminProducts)
			r.Post("/products", b.adminCreateProduct)
			r.Put("/products/{id}", b.adminUpdateProduct)
			r.Delete("/products/{id}", b.adminDeleteProduct)
			r.Get("/categories", b.listCategories)
			r.Post("/categories", b.adminCreateCategory)
			r.Put("/categories/{id}", b.adminUpdateCategory)
			r.Delete("/categories/{id}", b.adminDeleteCategory)
			r.Get("/orders", b.adminOrders)
			r.Get("/orders/{id}", b.adminOrder)
			r.Put("/orders/{id}/status", b.adminUpdateOrderStatus)
			r.Get("/customers", b.adminCustomers)
		})
	})
	return r
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls = append(b.calls, Call{
			Method:    r.Method,
			Path:      r.URL.Path,
			Auth:      r.Header.Get("Authorization"),
			SessionID: r.Header.Get("X-Session-ID"),
		})
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) failures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		fail := b.failPaths[r.Method+" "+r.URL.Path]
		b.mu.Unlock()
		if fail {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type contextKey string

const userKey contextKey = "user"

func (b *Backend) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := b.userFromRequest(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

func (b *Backend) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := userFrom(r.Context())
		if user == nil || !user.IsAdmin() {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) userFromRequest(r *http.Request) (types.User, bool) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return types.User{}, false
	}

	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(parts[1]), &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return types.User{}, false
	}
	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return types.User{}, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	user, ok := b.users[id]
	if !ok {
		return types.User{}, false
	}
	return *user, true
}

// cartKey identifies the cart a request operates on.
func (b *Backend) cartKey(r *http.Request) (string, bool) {
	if user, ok := b.userFromRequest(r); ok {
		return fmt.Sprintf("user:%d", user.ID), true
	}
	if sid := r.Header.Get("X-Session-ID"); sid != "" {
		return "guest:" + sid, true
	}
	return "", false
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Email == "" || req.Password == "" || req.Username == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	b.mu.Lock()
	for _, u := range b.users {
		if strings.EqualFold(u.Email, req.Email) {
			b.mu.Unlock()
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
	}
	b.nextID++
	user := &types.User{
		ID: b.nextID, Username: req.Username, Email: req.Email, FirstName: req.FirstName,
		LastName: req.LastName, Phone: req.Phone, Role: types.RoleCustomer, IsActive: true, CreatedAt: time.Now().UTC(),
	}
	b.users[user.ID] = user
	b.mu.Unlock()

	token, err := IssueToken(user.ID, tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}
	writeJSON(w, http.StatusCreated, types.AuthResponse{Message: "registered", User: *user, Token: token})
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	b.mu.Lock()
	var found *types.User
	for _, u := range b.users {
		if strings.EqualFold(u.Email, req.Email) {
			found = u
		}
	}
	b.mu.Unlock()

	if found == nil || req.Password != Password {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	token, err := IssueToken(found.ID, tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}
	writeJSON(w, http.StatusOK, types.AuthResponse{Message: "login successful", User: *found, Token: token})
}

func (b *Backend) profile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.ProfileResponse{User: *userFrom(r.Context())})
}

func (b *Backend) listProducts(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, types.ProductsResponse{Products: b.products, Total: len(b.products)})
}

func (b *Backend) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.products {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeError(w, http.StatusNotFound, "product not found")
}

func (b *Backend) productImages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, types.ProductImagesResponse{Images: []types.ProductImage{
		{ID: id*10 + 1, ProductID: id, ImageURL: fmt.Sprintf("https://cdn.merch.ke/products/%d/front.jpg", id), AltText: "front", DisplayOrder: 1, IsPrimary: true},
	}})
}

func (b *Backend) listCategories(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, types.CategoriesResponse{Categories: b.categories, Total: len(b.categories)})
}

func (b *Backend) getCart(w http.ResponseWriter, r *http.Request) {
	key, ok := b.cartKey(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing session")
		return
	}

	b.mu.Lock()
	items := append([]types.CartItem{}, b.carts[key]...)
	omit := b.omitCartTotals
	b.mu.Unlock()

	resp := types.CartResponse{Items: items}
	for i := range resp.Items {
		if omit {
			resp.Items[i].Subtotal = 0
			continue
		}
		resp.Items[i].Subtotal = resp.Items[i].Price * float64(resp.Items[i].Quantity)
		resp.Subtotal += resp.Items[i].Subtotal
		resp.TotalItems += resp.Items[i].Quantity
	}
	writeJSON(w, http.StatusOK, resp)
}

func (b *Backend) addToCart(w http.ResponseWriter, r *http.Request) {
	key, ok := b.cartKey(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing session")
		return
	}
	var req types.AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var product *types.Product
	for i := range b.products {
		if b.products[i].ID == req.ProductID {
			product = &b.products[i]
		}
	}
	if product == nil || !product.IsActive {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	items := b.carts[key]
	for i := range items {
		if items[i].ProductID == req.ProductID {
			items[i].Quantity += req.Quantity
			writeJSON(w, http.StatusOK, types.MessageResponse{Message: "cart updated"})
			return
		}
	}
	b.nextID++
	b.carts[key] = append(items, types.CartItem{
		ID: b.nextID, ProductID: product.ID, ProductName: product.Name, ProductSlug: product.Slug,
		Quantity: req.Quantity, Price: product.BasePrice,
	})
	writeJSON(w, http.StatusCreated, types.MessageResponse{Message: "added to cart"})
}

func (b *Backend) updateCartItem(w http.ResponseWriter, r *http.Request) {
	key, ok := b.cartKey(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing session")
		return
	}
	productID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.carts[key] {
		if b.carts[key][i].ProductID == productID {
			b.carts[key][i].Quantity = req.Quantity
			writeJSON(w, http.StatusOK, types.MessageResponse{Message: "cart updated"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "item not in cart")
}

func (b *Backend) removeCartItem(w http.ResponseWriter, r *http.Request) {
	key, ok := b.cartKey(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing session")
		return
	}
	productID, ok := pathID(w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	items := b.carts[key]
	for i := range items {
		if items[i].ProductID == productID {
			b.carts[key] = append(items[:i], items[i+1:]...)
			writeJSON(w, http.StatusOK, types.MessageResponse{Message: "item removed"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "item not in cart")
}

func (b *Backend) migrateCart(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	status := b.migrateStatus
	b.mu.Unlock()
	if status != 0 {
		writeError(w, status, "cart migration failed")
		return
	}

	user := userFrom(r.Context())
	sid := r.Header.Get("X-Session-ID")
	if sid == "" {
		writeError(w, http.StatusBadRequest, "no guest session")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	userKey := fmt.Sprintf("user:%d", user.ID)
	b.carts[userKey] = append(b.carts[userKey], b.carts["guest:"+sid]...)
	delete(b.carts, "guest:"+sid)
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: "cart migrated"})
}

func (b *Backend) createOrder(w http.ResponseWriter, r *http.Request) {
	key, ok := b.cartKey(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing session")
		return
	}
	var req types.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PaymentMethod == "" {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	userID := 0
	if user, ok := b.userFromRequest(r); ok {
		userID = user.ID
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	items := b.carts[key]
	if len(items) == 0 {
		writeError(w, http.StatusBadRequest, "cart is empty")
		return
	}

	b.nextID++
	order := types.Order{
		ID: b.nextID, OrderNumber: fmt.Sprintf("MKE-%04d", b.nextID), UserID: userID,
		Status: types.OrderPending, PaymentMethod: req.PaymentMethod, PaymentStatus: "pending",
		Notes: req.Notes, CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	for i, item := range items {
		sub := item.Price * float64(item.Quantity)
		order.Items = append(order.Items, types.OrderItem{ID: i + 1, ProductID: item.ProductID, ProductName: item.ProductName, Quantity: item.Quantity, Price: item.Price, Subtotal: sub})
		order.TotalAmount += sub
	}
	b.orders = append(b.orders, order)
	delete(b.carts, key)
	writeJSON(w, http.StatusCreated, types.OrderResponse{Message: "order placed", Order: order})
}

func (b *Backend) listOrders(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	b.mu.Lock()
	defer b.mu.Unlock()
	var orders []types.Order
	for _, o := range b.orders {
		if o.UserID == user.ID {
			orders = append(orders, o)
		}
	}
	writeJSON(w, http.StatusOK, types.OrdersResponse{Orders: orders, Total: len(orders)})
}

func (b *Backend) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	user := userFrom(r.Context())
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, o := range b.orders {
		if o.ID == id && (o.UserID == user.ID || user.IsAdmin()) {
			writeJSON(w, http.StatusOK, o)
			return
		}
	}
	writeError(w, http.StatusNotFound, "order not found")
}

func (b *Backend) points(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.PointsResponse{Balance: 37, Transactions: []types.PointsTransaction{
		{ID: 1, Points: 37, TransactionType: "earned", Description: "Order MKE-0001"},
	}})
}

func (b *Backend) walletBalance(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, types.WalletBalance{Balance: b.wallets[user.ID]})
}

func (b *Backend) walletTransactions(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	b.mu.Lock()
	defer b.mu.Unlock()
	txs := []types.WalletTransaction{}
	if balance := b.wallets[user.ID]; balance > 0 {
		txs = append(txs, types.WalletTransaction{ID: 1, Amount: balance, Type: "credit", Description: "Top up"})
	}
	writeJSON(w, http.StatusOK, types.WalletTransactionsResponse{Transactions: txs})
}

func (b *Backend) addWalletTokens(w http.ResponseWriter, r *http.Request) {
	var req types.AddTokensRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	user := userFrom(r.Context())
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wallets[user.ID] += req.Amount
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: "tokens added"})
}

func (b *Backend) adminProducts(w http.ResponseWriter, r *http.Request) {
	b.listProducts(w, r)
}

func (b *Backend) adminCreateProduct(w http.ResponseWriter, r *http.Request) {
	var in types.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid product")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	p := productFromInput(b.nextID, in)
	b.products = append(b.products, p)
	writeJSON(w, http.StatusCreated, types.ProductResponse{Message: "product created", Product: p})
}

func (b *Backend) adminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in types.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid product")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.products {
		if b.products[i].ID == id {
			b.products[i] = productFromInput(id, in)
			writeJSON(w, http.StatusOK, types.ProductResponse{Message: "product updated", Product: b.products[i]})
			return
		}
	}
	writeError(w, http.StatusNotFound, "product not found")
}

func (b *Backend) adminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.products {
		if b.products[i].ID == id {
			b.products = append(b.products[:i], b.products[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "product not found")
}

func (b *Backend) adminCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in types.CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	c := categoryFromInput(b.nextID, in)
	b.categories = append(b.categories, c)
	writeJSON(w, http.StatusCreated, types.CategoryResponse{Message: "category created", Category: c})
}

func (b *Backend) adminUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in types.CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.categories {
		if b.categories[i].ID == id {
			b.categories[i] = categoryFromInput(id, in)
			writeJSON(w, http.StatusOK, types.CategoryResponse{Message: "category updated", Category: b.categories[i]})
			return
		}
	}
	writeError(w, http.StatusNotFound, "category not found")
}

func (b *Backend) adminDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.categories {
		if b.categories[i].ID == id {
			b.categories = append(b.categories[:i], b.categories[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "category not found")
}

func (b *Backend) adminOrders(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	orders := append([]types.Order(nil), b.orders...)
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	writeJSON(w, http.StatusOK, types.OrdersResponse{Orders: orders, Total: len(orders)})
}

func (b *Backend) adminOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, o := range b.orders {
		if o.ID == id {
			writeJSON(w, http.StatusOK, types.OrderResponse{Order: o})
			return
		}
	}
	writeError(w, http.StatusNotFound, "order not found")
}

func (b *Backend) adminUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req types.UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.orders {
		if b.orders[i].ID == id {
			b.orders[i].Status = req.Status
			b.orders[i].UpdatedAt = time.Now().UTC()
			writeJSON(w, http.StatusOK, types.OrderResponse{Message: "status updated", Order: b.orders[i]})
			return
		}
	}
	writeError(w, http.StatusNotFound, "order not found")
}

func (b *Backend) adminCustomers(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var customers []types.Customer
	for _, u := range b.users {
		if u.Role != types.RoleCustomer {
			continue
		}
		c := types.Customer{User: *u}
		for _, o := range b.orders {
			if o.UserID == u.ID {
				c.OrderCount++
				c.TotalSpent += o.TotalAmount
			}
		}
		customers = append(customers, c)
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].ID < customers[j].ID })
	writeJSON(w, http.StatusOK, types.CustomersResponse{Customers: customers, Total: len(customers)})
}

func productFromInput(id int, in types.ProductInput) types.Product {
	return types.Product{
		ID: id, Name: in.Name, Slug: in.Slug, Description: in.Description, CategoryID: in.CategoryID,
		BasePrice: in.BasePrice, StockQuantity: in.StockQuantity, IsActive: in.IsActive, IsFeatured: in.IsFeatured,
		CreatedAt: time.Now().UTC(),
	}
}

func categoryFromInput(id int, in types.CategoryInput) types.Category {
	return types.Category{
		ID: id, Name: in.Name, Slug: in.Slug, Description: in.Description, ParentID: in.ParentID,
		IsActive: in.IsActive, SortOrder: in.SortOrder, CreatedAt: time.Now().UTC(),
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, types.ErrorResponse{Error: message})
}
