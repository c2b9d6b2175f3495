package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/merchke/storefront/internal/apiclient"
	"github.com/merchke/storefront/internal/apitest"
	"github.com/merchke/storefront/internal/endpoints"
	"github.com/merchke/storefront/internal/storage"
	"github.com/merchke/storefront/types"
)

func newAPI(t *testing.T) (*endpoints.API, *apitest.Backend, *storage.Storage) {
	t.Helper()

	backend := apitest.NewBackend(t)
	store := storage.NewStorage(storage.NewMemoryBackend())
	client, err := apiclient.New(store, apiclient.Options{BaseURL: backend.URL})
	if err != nil {
		t.Fatalf("apiclient.New: %v", err)
	}
	return endpoints.New(client), backend, store
}

func TestAuthInitWithoutToken(t *testing.T) {
	api, backend, _ := newAPI(t)
	auth := NewAuthState(api, nil)

	auth.Init(context.Background())

	if auth.IsAuthenticated() || auth.Loading() {
		t.Fatal("expected signed out and not loading")
	}
	if n := backend.CallCount(http.MethodGet, "/api/auth/profile"); n != 0 {
		t.Fatalf("profile must not be fetched without a token, got %d calls", n)
	}
}

func TestAuthInitLoadsProfile(t *testing.T) {
	api, backend, store := newAPI(t)
	ctx := context.Background()
	if err := store.Set(ctx, apiclient.TokenKey, backend.Token(apitest.AdminEmail)); err != nil {
		t.Fatalf("set token: %v", err)
	}

	auth := NewAuthState(api, nil)
	auth.Init(ctx)

	user, ok := auth.User()
	if !ok || user.Email != apitest.AdminEmail {
		t.Fatalf("unexpected user: %+v, %v", user, ok)
	}
	if !auth.IsAdmin() {
		t.Fatal("expected admin")
	}
}

func TestAuthInitClearsRejectedToken(t *testing.T) {
	api, _, store := newAPI(t)
	ctx := context.Background()
	if err := store.Set(ctx, apiclient.TokenKey, "not-a-jwt"); err != nil {
		t.Fatalf("set token: %v", err)
	}

	auth := NewAuthState(api, nil)
	auth.Init(ctx)

	if auth.IsAuthenticated() {
		t.Fatal("expected signed out")
	}
	if _, err := store.Get(ctx, apiclient.TokenKey); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected token cleared, got %v", err)
	}
}

func TestAuthInitSkipsExpiredToken(t *testing.T) {
	api, backend, store := newAPI(t)
	ctx := context.Background()

	expired, err := apitest.IssueToken(1, -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if err := store.Set(ctx, apiclient.TokenKey, expired); err != nil {
		t.Fatalf("set token: %v", err)
	}

	auth := NewAuthState(api, nil)
	auth.Init(ctx)

	if auth.IsAuthenticated() {
		t.Fatal("expected signed out")
	}
	if n := backend.CallCount(http.MethodGet, "/api/auth/profile"); n != 0 {
		t.Fatalf("expired token must not reach the backend, got %d calls", n)
	}
	if _, err := store.Get(ctx, apiclient.TokenKey); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected token cleared, got %v", err)
	}
}

func TestAuthLoginLogout(t *testing.T) {
	api, _, store := newAPI(t)
	ctx := context.Background()
	if err := store.Set(ctx, apiclient.TokenKey, "tok"); err != nil {
		t.Fatalf("set token: %v", err)
	}

	auth := NewAuthState(api, nil)
	auth.Login(types.User{ID: 1, Role: types.RoleCustomer})
	if !auth.IsAuthenticated() || auth.IsAdmin() {
		t.Fatal("expected signed-in customer")
	}

	if err := auth.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if auth.IsAuthenticated() {
		t.Fatal("expected signed out")
	}
	if _, err := store.Get(ctx, apiclient.TokenKey); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected token cleared, got %v", err)
	}
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	live, _ := apitest.IssueToken(1, time.Hour)
	dead, _ := apitest.IssueToken(1, -time.Hour)

	if tokenExpired(live, now) {
		t.Fatal("live token reported expired")
	}
	if !tokenExpired(dead, now) {
		t.Fatal("dead token reported live")
	}
	if tokenExpired("garbage", now) {
		t.Fatal("unparseable token must be left to the backend")
	}
}

func TestCartRefresh(t *testing.T) {
	api, backend, _ := newAPI(t)
	ctx := context.Background()
	cart := NewCartState(api, nil)

	if _, err := api.AddToCart(ctx, types.AddToCartRequest{ProductID: 2, Quantity: 3}); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if _, err := api.AddToCart(ctx, types.AddToCartRequest{ProductID: 3, Quantity: 1}); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	cart.Refresh(ctx)
	if cart.Count() != 4 {
		t.Fatalf("count = %d, want 4", cart.Count())
	}

	backend.OmitCartTotals(true)
	cart.Refresh(ctx)
	if cart.Count() != 4 {
		t.Fatalf("fallback count = %d, want 4", cart.Count())
	}

	backend.Fail(http.MethodGet, "/api/cart")
	cart.Refresh(ctx)
	if cart.Count() != 0 {
		t.Fatalf("count after failure = %d, want 0", cart.Count())
	}
}

type stubCart struct {
	resp types.CartResponse
}

func (s stubCart) Cart(context.Context) (types.CartResponse, error) {
	return s.resp, nil
}

func TestCartConcurrentReaders(t *testing.T) {
	cart := NewCartState(stubCart{resp: types.CartResponse{TotalItems: 2}}, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			cart.Refresh(ctx)
		}()
		go func() {
			defer wg.Done()
			_ = cart.Count()
		}()
	}
	wg.Wait()

	if cart.Count() != 2 {
		t.Fatalf("count = %d, want 2", cart.Count())
	}
}
