package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/merchke/storefront/config"
	"github.com/merchke/storefront/internal/apiclient"
	"github.com/merchke/storefront/internal/apitest"
	"github.com/merchke/storefront/internal/handlers"
	"github.com/merchke/storefront/internal/storage"
	"github.com/merchke/storefront/types"
)

type gateway struct {
	backend *apitest.Backend
	store   *storage.Storage
	server  *httptest.Server
}

func newGateway(t *testing.T) *gateway {
	t.Helper()

	backend := apitest.NewBackend(t)
	store := storage.NewStorage(storage.NewMemoryBackend())
	cfg := config.Config{
		API:    config.APIConfig{BaseURL: backend.URL},
		Server: config.ServerConfig{LoginPath: "/auth/login"},
	}

	router, err := NewRouter(store, cfg, nil)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &gateway{backend: backend, store: store, server: srv}
}

// browser is an HTTP client with its own cookie jar, i.e. one visitor.
func (g *gateway) browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func (g *gateway) do(t *testing.T, client *http.Client, method, path string, body, out any) int {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, g.server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (g *gateway) login(t *testing.T, client *http.Client, email string) {
	t.Helper()
	status := g.do(t, client, http.MethodPost, "/auth/login", types.LoginRequest{Email: email, Password: apitest.Password}, nil)
	if status != http.StatusOK {
		t.Fatalf("login %s: status %d", email, status)
	}
}

func (g *gateway) visitorID(t *testing.T, client *http.Client) string {
	t.Helper()
	u, _ := url.Parse(g.server.URL)
	for _, c := range client.Jar.Cookies(u) {
		if c.Name == handlers.VisitorCookie {
			return c.Value
		}
	}
	t.Fatal("visitor cookie not set")
	return ""
}

func TestHealthz(t *testing.T) {
	g := newGateway(t)

	var resp handlers.HealthResponse
	if status := g.do(t, http.DefaultClient, http.MethodGet, "/healthz", nil, &resp); status != http.StatusOK {
		t.Fatalf("status %d", status)
	}
	if resp.Status != "ok" || resp.Upstream != "ok" {
		t.Fatalf("unexpected health: %+v", resp)
	}
}

func TestGuestCartCarriesOverOnLogin(t *testing.T) {
	g := newGateway(t)
	browser := g.browser(t)

	var cart struct {
		ItemCount int     `json:"item_count"`
		Subtotal  float64 `json:"subtotal"`
	}
	status := g.do(t, browser, http.MethodPost, "/cart", types.AddToCartRequest{ProductID: 2, Quantity: 2}, &cart)
	if status != http.StatusOK || cart.ItemCount != 2 || cart.Subtotal != 500 {
		t.Fatalf("add to cart: status %d, cart %+v", status, cart)
	}

	var session handlers.SessionResponse
	status = g.do(t, browser, http.MethodPost, "/auth/login", types.LoginRequest{Email: apitest.CustomerEmail, Password: apitest.Password}, &session)
	if status != http.StatusOK {
		t.Fatalf("login status %d", status)
	}
	if session.User.ID != 1 || session.CartCount != 2 || session.IsAdmin {
		t.Fatalf("unexpected session: %+v", session)
	}
	if n := g.backend.CallCount(http.MethodPost, "/api/cart/migrate"); n != 1 {
		t.Fatalf("migrate calls = %d, want 1", n)
	}

	if status := g.do(t, browser, http.MethodGet, "/auth/me", nil, &session); status != http.StatusOK || session.User.Email != apitest.CustomerEmail {
		t.Fatalf("me: status %d, %+v", status, session)
	}
}

func TestVisitorsAreIsolated(t *testing.T) {
	g := newGateway(t)
	alice, bob := g.browser(t), g.browser(t)

	g.login(t, alice, apitest.CustomerEmail)

	var errResp handlers.ErrorResponse
	if status := g.do(t, bob, http.MethodGet, "/auth/me", nil, &errResp); status != http.StatusUnauthorized {
		t.Fatalf("bob must be signed out, got %d", status)
	}
	if errResp.Redirect != "/auth/login" || errResp.Error != apiclient.MsgLoginRequired {
		t.Fatalf("unexpected error body: %+v", errResp)
	}
	if g.visitorID(t, alice) == g.visitorID(t, bob) {
		t.Fatal("visitors share an id")
	}
}

func TestLogout(t *testing.T) {
	g := newGateway(t)
	browser := g.browser(t)
	g.login(t, browser, apitest.CustomerEmail)

	if status := g.do(t, browser, http.MethodPost, "/auth/logout", nil, nil); status != http.StatusOK {
		t.Fatalf("logout status %d", status)
	}
	if status := g.do(t, browser, http.MethodGet, "/auth/me", nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("me after logout = %d, want 401", status)
	}
}

func TestLoginValidationNeverReachesBackend(t *testing.T) {
	g := newGateway(t)

	var errResp handlers.ErrorResponse
	status := g.do(t, g.browser(t), http.MethodPost, "/auth/login", types.LoginRequest{Email: apitest.CustomerEmail}, &errResp)
	if status != http.StatusBadRequest || len(errResp.Fields) == 0 {
		t.Fatalf("status %d, body %+v", status, errResp)
	}
	if n := g.backend.CallCount(http.MethodPost, "/api/auth/login"); n != 0 {
		t.Fatalf("backend saw %d login calls", n)
	}
}

func TestWrongPasswordStaysOnLoginForm(t *testing.T) {
	g := newGateway(t)

	var errResp handlers.ErrorResponse
	status := g.do(t, g.browser(t), http.MethodPost, "/auth/login", types.LoginRequest{Email: apitest.CustomerEmail, Password: "wrong-password"}, &errResp)
	if status != http.StatusUnauthorized {
		t.Fatalf("status %d", status)
	}
	if errResp.Redirect != "" || errResp.Error != "Invalid email or password" {
		t.Fatalf("unexpected error body: %+v", errResp)
	}
}

func TestConcurrentFirstRequestsShareOneGuestCart(t *testing.T) {
	g := newGateway(t)
	browser := g.browser(t)

	// A known visitor whose guest id has not been minted yet.
	u, _ := url.Parse(g.server.URL)
	browser.Jar.SetCookies(u, []*http.Cookie{{Name: handlers.VisitorCookie, Value: uuid.NewString(), Path: "/"}})

	payload, err := json.Marshal(types.AddToCartRequest{ProductID: 2, Quantity: 1})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	const requests = 8
	var wg sync.WaitGroup
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := browser.Post(g.server.URL+"/cart", "application/json", bytes.NewReader(payload))
			if err != nil {
				t.Errorf("POST /cart: %v", err)
				return
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Errorf("POST /cart status %d", resp.StatusCode)
			}
		}()
	}
	wg.Wait()

	var cart struct {
		ItemCount int `json:"item_count"`
	}
	if status := g.do(t, browser, http.MethodGet, "/cart", nil, &cart); status != http.StatusOK {
		t.Fatalf("cart status %d", status)
	}
	if cart.ItemCount != requests {
		t.Fatalf("cart holds %d units, want %d", cart.ItemCount, requests)
	}
}

func TestStaleTokenRedirectsToLogin(t *testing.T) {
	g := newGateway(t)
	browser := g.browser(t)

	// First request issues the visitor cookie.
	g.do(t, browser, http.MethodGet, "/categories", nil, nil)
	id := g.visitorID(t, browser)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("not-the-backend-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	visitorStore := g.store.WithPrefix("visitor:" + id + ":")
	if err := visitorStore.Set(context.Background(), apiclient.TokenKey, forged); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	var errResp handlers.ErrorResponse
	if status := g.do(t, browser, http.MethodGet, "/auth/me", nil, &errResp); status != http.StatusUnauthorized {
		t.Fatalf("status %d", status)
	}
	if errResp.Redirect != "/auth/login" {
		t.Fatalf("expected login redirect, got %+v", errResp)
	}
	if _, err := visitorStore.Get(context.Background(), apiclient.TokenKey); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("stale token must be cleared, got %v", err)
	}
}

func TestProductListing(t *testing.T) {
	g := newGateway(t)
	browser := g.browser(t)

	var view struct {
		Products []types.Product `json:"products"`
		Total    int             `json:"total"`
	}
	status := g.do(t, browser, http.MethodGet, "/products?min=1000&max=5000&sort=price-desc", nil, &view)
	if status != http.StatusOK || view.Total != 2 || view.Products[0].ID != 1 {
		t.Fatalf("status %d, view %+v", status, view)
	}

	for _, query := range []string{"min=abc", "max=-1", "category=0"} {
		if status := g.do(t, browser, http.MethodGet, "/products?"+query, nil, nil); status != http.StatusBadRequest {
			t.Errorf("%s: status %d, want 400", query, status)
		}
	}

	if status := g.do(t, browser, http.MethodGet, "/products/404", nil, nil); status != http.StatusNotFound {
		t.Fatalf("missing product status %d", status)
	}
	if status := g.do(t, browser, http.MethodGet, "/products/abc", nil, nil); status != http.StatusBadRequest {
		t.Fatalf("bad id status %d", status)
	}
}

func TestUpstreamFailureIsBadGateway(t *testing.T) {
	g := newGateway(t)
	g.backend.Fail(http.MethodGet, "/api/categories")

	var errResp handlers.ErrorResponse
	if status := g.do(t, g.browser(t), http.MethodGet, "/categories", nil, &errResp); status != http.StatusBadGateway {
		t.Fatalf("status %d", status)
	}
	if errResp.Error != apiclient.MsgGeneric {
		t.Fatalf("unexpected message %q", errResp.Error)
	}
}

func TestGuestCheckout(t *testing.T) {
	g := newGateway(t)
	browser := g.browser(t)

	checkout := types.CreateOrderRequest{
		PaymentMethod: "mpesa",
		GuestEmail:    "guest@example.com",
		MpesaPhone:    "0712000000",
		ShippingAddress: &types.ShippingAddress{
			FirstName: "Achieng", LastName: "Otieno", Phone: "0700111222",
			AddressLine1: "Moi Ave 3", City: "Mombasa", County: "Mombasa",
		},
	}

	var errResp handlers.ErrorResponse
	if status := g.do(t, browser, http.MethodPost, "/checkout", checkout, &errResp); status != http.StatusBadRequest {
		t.Fatalf("empty cart checkout status %d", status)
	}

	g.do(t, browser, http.MethodPost, "/cart", types.AddToCartRequest{ProductID: 2, Quantity: 4}, nil)

	var order types.Order
	if status := g.do(t, browser, http.MethodPost, "/checkout", checkout, &order); status != http.StatusCreated {
		t.Fatalf("checkout status %d", status)
	}
	if order.TotalAmount != 1000 {
		t.Fatalf("unexpected order: %+v", order)
	}

	var cart struct {
		ItemCount int `json:"item_count"`
	}
	if g.do(t, browser, http.MethodGet, "/cart", nil, &cart); cart.ItemCount != 0 {
		t.Fatalf("cart after checkout = %d items", cart.ItemCount)
	}
}

func TestAdminAccess(t *testing.T) {
	g := newGateway(t)

	guest := g.browser(t)
	var errResp handlers.ErrorResponse
	if status := g.do(t, guest, http.MethodGet, "/admin/dashboard", nil, &errResp); status != http.StatusUnauthorized || errResp.Redirect == "" {
		t.Fatalf("guest: status %d, %+v", status, errResp)
	}

	customer := g.browser(t)
	g.login(t, customer, apitest.CustomerEmail)
	if status := g.do(t, customer, http.MethodGet, "/admin/dashboard", nil, nil); status != http.StatusForbidden {
		t.Fatalf("customer: status %d", status)
	}

	admin := g.browser(t)
	g.login(t, admin, apitest.AdminEmail)

	var stats struct {
		TotalProducts int     `json:"total_products"`
		TotalRevenue  float64 `json:"total_revenue"`
	}
	if status := g.do(t, admin, http.MethodGet, "/admin/dashboard", nil, &stats); status != http.StatusOK {
		t.Fatalf("admin dashboard status %d", status)
	}
	if stats.TotalProducts != 4 || stats.TotalRevenue != 3750 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	var order struct {
		Status   types.OrderStatus `json:"status"`
		Progress int               `json:"progress"`
	}
	status := g.do(t, admin, http.MethodPut, "/admin/orders/1/status", types.UpdateOrderStatusRequest{Status: "delivered"}, &order)
	if status != http.StatusOK || order.Progress != 100 {
		t.Fatalf("status %d, order %+v", status, order)
	}
	if status := g.do(t, admin, http.MethodPut, "/admin/orders/1/status", types.UpdateOrderStatusRequest{Status: "lost"}, nil); status != http.StatusBadRequest {
		t.Fatalf("invalid status accepted: %d", status)
	}

	var product types.Product
	status = g.do(t, admin, http.MethodPost, "/admin/products", types.ProductInput{Name: "Gopher Mug", CategoryID: 3, BasePrice: 900, IsActive: true}, &product)
	if status != http.StatusCreated || product.Slug != "gopher-mug" {
		t.Fatalf("create product: status %d, %+v", status, product)
	}
	if status := g.do(t, admin, http.MethodDelete, "/admin/products/"+strconv.Itoa(product.ID), nil, nil); status != http.StatusNoContent {
		t.Fatalf("delete product status %d", status)
	}

	var customers handlers.CustomersResponse
	if g.do(t, admin, http.MethodGet, "/admin/customers?q=wanjiru", nil, &customers); customers.Total != 1 {
		t.Fatalf("unexpected customers: %+v", customers)
	}
}

func TestWalletTopUp(t *testing.T) {
	g := newGateway(t)
	browser := g.browser(t)
	g.login(t, browser, apitest.CustomerEmail)

	var wallet struct {
		Balance float64 `json:"balance"`
	}
	if status := g.do(t, browser, http.MethodPost, "/wallet/top-up", types.AddTokensRequest{Amount: 250}, &wallet); status != http.StatusOK || wallet.Balance != 250 {
		t.Fatalf("status %d, wallet %+v", status, wallet)
	}
	if status := g.do(t, browser, http.MethodPost, "/wallet/top-up", types.AddTokensRequest{Amount: -1}, nil); status != http.StatusBadRequest {
		t.Fatalf("negative top up status %d", status)
	}
}
