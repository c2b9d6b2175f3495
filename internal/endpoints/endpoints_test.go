package endpoints

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/merchke/storefront/internal/apiclient"
	"github.com/merchke/storefront/internal/apitest"
	"github.com/merchke/storefront/internal/storage"
	"github.com/merchke/storefront/types"
)

func newAPI(t *testing.T) (*API, *apitest.Backend, *storage.Storage) {
	t.Helper()

	backend := apitest.NewBackend(t)
	store := storage.NewStorage(storage.NewMemoryBackend())
	client, err := apiclient.New(store, apiclient.Options{BaseURL: backend.URL})
	if err != nil {
		t.Fatalf("apiclient.New: %v", err)
	}
	return New(client), backend, store
}

func TestLoginPersistsToken(t *testing.T) {
	api, _, store := newAPI(t)
	ctx := context.Background()

	resp, err := api.Login(ctx, types.LoginRequest{Email: apitest.CustomerEmail, Password: apitest.Password})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.User.FirstName != "Wanjiru" {
		t.Fatalf("unexpected user: %+v", resp.User)
	}

	stored, err := store.Get(ctx, apiclient.TokenKey)
	if err != nil || stored != resp.Token {
		t.Fatalf("token not persisted: %q, %v", stored, err)
	}

	profile, err := api.Profile(ctx)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile.ID != resp.User.ID {
		t.Fatalf("profile id = %d, want %d", profile.ID, resp.User.ID)
	}
}

func TestLoginFailureDoesNotPersistToken(t *testing.T) {
	api, _, store := newAPI(t)
	ctx := context.Background()

	_, err := api.Login(ctx, types.LoginRequest{Email: apitest.CustomerEmail, Password: "wrong"})
	if !apiclient.IsUnauthorized(err) {
		t.Fatalf("expected 401, got %v", err)
	}
	if apiclient.UserMessage(err) != "Invalid email or password" {
		t.Fatalf("unexpected message: %q", apiclient.UserMessage(err))
	}
	if _, err := store.Get(ctx, apiclient.TokenKey); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected no token, got %v", err)
	}
}

func TestRegisterPersistsToken(t *testing.T) {
	api, _, store := newAPI(t)
	ctx := context.Background()

	resp, err := api.Register(ctx, types.RegisterRequest{
		Username: "otieno", Email: "otieno@example.com", Password: "hunter22",
		FirstName: "Otieno", LastName: "Odhiambo", Phone: "0722000000",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if resp.User.Role != types.RoleCustomer {
		t.Fatalf("unexpected role: %q", resp.User.Role)
	}
	if stored, _ := store.Get(ctx, apiclient.TokenKey); stored != resp.Token {
		t.Fatalf("token not persisted")
	}

	if err := api.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if ok, _ := api.HasToken(ctx); ok {
		t.Fatal("expected token to be cleared after logout")
	}
}

func TestCatalogEndpoints(t *testing.T) {
	api, _, _ := newAPI(t)
	ctx := context.Background()

	products, err := api.Products(ctx)
	if err != nil {
		t.Fatalf("Products: %v", err)
	}
	if products.Total != 4 || len(products.Products) != 4 {
		t.Fatalf("unexpected products: %+v", products)
	}

	product, err := api.Product(ctx, 1)
	if err != nil {
		t.Fatalf("Product: %v", err)
	}
	if product.Slug != "python-developer-hoodie" {
		t.Fatalf("unexpected product: %+v", product)
	}

	if _, err := api.Product(ctx, 999); !apiclient.IsNotFound(err) {
		t.Fatalf("expected 404, got %v", err)
	}

	images, err := api.ProductImages(ctx, 1)
	if err != nil {
		t.Fatalf("ProductImages: %v", err)
	}
	if len(images.Images) != 1 || !images.Images[0].IsPrimary {
		t.Fatalf("unexpected images: %+v", images)
	}

	categories, err := api.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(categories.Categories) != 4 || categories.Categories[1].ParentID == nil {
		t.Fatalf("unexpected categories: %+v", categories)
	}
}

func TestGuestCartLifecycle(t *testing.T) {
	api, backend, store := newAPI(t)
	ctx := context.Background()

	if _, err := api.AddToCart(ctx, types.AddToCartRequest{ProductID: 2, Quantity: 3}); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if _, err := api.UpdateCartItem(ctx, 2, 5); err != nil {
		t.Fatalf("UpdateCartItem: %v", err)
	}

	cart, err := api.Cart(ctx)
	if err != nil {
		t.Fatalf("Cart: %v", err)
	}
	if cart.TotalItems != 5 || cart.Subtotal != 1250 {
		t.Fatalf("unexpected cart: %+v", cart)
	}

	sid, err := store.Get(ctx, apiclient.SessionIDKey)
	if err != nil {
		t.Fatalf("guest session not persisted: %v", err)
	}
	if len(backend.CartFor(sid)) != 1 {
		t.Fatalf("backend does not hold the guest cart")
	}

	if _, err := api.RemoveFromCart(ctx, 2); err != nil {
		t.Fatalf("RemoveFromCart: %v", err)
	}
	cart, err = api.Cart(ctx)
	if err != nil {
		t.Fatalf("Cart: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", cart)
	}
}

func TestMigrateCartMovesGuestCartAndClearsSession(t *testing.T) {
	api, backend, store := newAPI(t)
	ctx := context.Background()

	if _, err := api.AddToCart(ctx, types.AddToCartRequest{ProductID: 1, Quantity: 1}); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	sid, _ := store.Get(ctx, apiclient.SessionIDKey)

	if _, err := api.Login(ctx, types.LoginRequest{Email: apitest.CustomerEmail, Password: apitest.Password}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := api.MigrateCart(ctx); err != nil {
		t.Fatalf("MigrateCart: %v", err)
	}

	calls := backend.Calls()
	last := calls[len(calls)-1]
	if last.Path != "/api/cart/migrate" || last.SessionID != sid || last.Auth == "" {
		t.Fatalf("migrate must carry token and guest id, got %+v", last)
	}
	if _, err := store.Get(ctx, apiclient.SessionIDKey); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected guest session to be cleared, got %v", err)
	}

	cart, err := api.Cart(ctx)
	if err != nil {
		t.Fatalf("Cart: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].ProductID != 1 {
		t.Fatalf("expected migrated cart, got %+v", cart)
	}
}

func TestMigrateCartUnauthorizedKeepsToken(t *testing.T) {
	api, backend, store := newAPI(t)
	ctx := context.Background()
	backend.SetMigrateStatus(http.StatusUnauthorized)

	if _, err := api.Login(ctx, types.LoginRequest{Email: apitest.CustomerEmail, Password: apitest.Password}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := api.MigrateCart(ctx); !apiclient.IsUnauthorized(err) {
		t.Fatalf("expected 401, got %v", err)
	}
	if token, _ := store.Get(ctx, apiclient.TokenKey); token == "" {
		t.Fatal("token must survive a 401 from cart migration")
	}
}

func TestOrdersRequireToken(t *testing.T) {
	api, _, _ := newAPI(t)
	ctx := context.Background()

	if _, err := api.Orders(ctx); !apiclient.IsUnauthorized(err) {
		t.Fatalf("expected 401 for guest, got %v", err)
	}

	if _, err := api.Login(ctx, types.LoginRequest{Email: apitest.CustomerEmail, Password: apitest.Password}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	orders, err := api.Orders(ctx)
	if err != nil {
		t.Fatalf("Orders: %v", err)
	}
	if orders.Total != 1 || orders.Orders[0].Status != types.OrderShipped {
		t.Fatalf("unexpected orders: %+v", orders)
	}

	order, err := api.Order(ctx, orders.Orders[0].ID)
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	if len(order.Items) != 2 {
		t.Fatalf("unexpected order items: %+v", order.Items)
	}

	points, err := api.Points(ctx)
	if err != nil {
		t.Fatalf("Points: %v", err)
	}
	if points.Balance != 37 {
		t.Fatalf("unexpected points: %+v", points)
	}
}

func TestCreateOrderFromCart(t *testing.T) {
	api, _, _ := newAPI(t)
	ctx := context.Background()

	if _, err := api.AddToCart(ctx, types.AddToCartRequest{ProductID: 3, Quantity: 2}); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	resp, err := api.CreateOrder(ctx, types.CreateOrderRequest{PaymentMethod: "cod", GuestEmail: "guest@example.com"})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if resp.Order.TotalAmount != 3600 || resp.Order.Status != types.OrderPending {
		t.Fatalf("unexpected order: %+v", resp.Order)
	}
}

func TestAdminEndpoints(t *testing.T) {
	api, backend, store := newAPI(t)
	ctx := context.Background()

	if _, err := api.AdminProducts(ctx); apiclient.StatusCode(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401 for guest, got %v", err)
	}

	if err := store.Set(ctx, apiclient.TokenKey, backend.Token(apitest.CustomerEmail)); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if _, err := api.AdminProducts(ctx); apiclient.StatusCode(err) != http.StatusForbidden {
		t.Fatalf("expected 403 for customer, got %v", err)
	}

	if err := store.Set(ctx, apiclient.TokenKey, backend.Token(apitest.AdminEmail)); err != nil {
		t.Fatalf("set token: %v", err)
	}

	created, err := api.AdminCreateProduct(ctx, types.ProductInput{Name: "Kenya Cap", Slug: "kenya-cap", CategoryID: 1, BasePrice: 1200, IsActive: true})
	if err != nil {
		t.Fatalf("AdminCreateProduct: %v", err)
	}
	updated, err := api.AdminUpdateProduct(ctx, created.Product.ID, types.ProductInput{Name: "Kenya Cap v2", Slug: "kenya-cap-v2", CategoryID: 1, BasePrice: 1300})
	if err != nil {
		t.Fatalf("AdminUpdateProduct: %v", err)
	}
	if updated.Product.BasePrice != 1300 {
		t.Fatalf("unexpected update: %+v", updated.Product)
	}
	if err := api.AdminDeleteProduct(ctx, created.Product.ID); err != nil {
		t.Fatalf("AdminDeleteProduct: %v", err)
	}

	category, err := api.AdminCreateCategory(ctx, types.CategoryInput{Name: "Caps", Slug: "caps", IsActive: true})
	if err != nil {
		t.Fatalf("AdminCreateCategory: %v", err)
	}
	if _, err := api.AdminUpdateCategory(ctx, category.Category.ID, types.CategoryInput{Name: "Caps & Hats", Slug: "caps-hats"}); err != nil {
		t.Fatalf("AdminUpdateCategory: %v", err)
	}
	if err := api.AdminDeleteCategory(ctx, category.Category.ID); err != nil {
		t.Fatalf("AdminDeleteCategory: %v", err)
	}
	if _, err := api.AdminCategories(ctx); err != nil {
		t.Fatalf("AdminCategories: %v", err)
	}

	orders, err := api.AdminOrders(ctx)
	if err != nil {
		t.Fatalf("AdminOrders: %v", err)
	}
	order, err := api.AdminOrder(ctx, orders.Orders[0].ID)
	if err != nil {
		t.Fatalf("AdminOrder: %v", err)
	}
	statusResp, err := api.AdminUpdateOrderStatus(ctx, order.ID, types.OrderDelivered)
	if err != nil {
		t.Fatalf("AdminUpdateOrderStatus: %v", err)
	}
	if statusResp.Order.Status != types.OrderDelivered {
		t.Fatalf("unexpected status: %q", statusResp.Order.Status)
	}

	customers, err := api.AdminCustomers(ctx)
	if err != nil {
		t.Fatalf("AdminCustomers: %v", err)
	}
	if customers.Total != 1 || customers.Customers[0].OrderCount != 1 {
		t.Fatalf("unexpected customers: %+v", customers)
	}
}

func TestHealth(t *testing.T) {
	api, _, _ := newAPI(t)
	resp, err := api.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if resp.Status != "ok" {
		t.Fatalf("unexpected health: %+v", resp)
	}
}
