package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/merchke/storefront/internal/apiclient"
	"github.com/merchke/storefront/internal/catalog"
	"github.com/merchke/storefront/internal/forms"
	"github.com/merchke/storefront/internal/services"
	"github.com/merchke/storefront/internal/storage"
	"github.com/sirupsen/logrus"
)

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestFailMapsErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		message  string
		redirect bool
		fields   bool
	}{
		{
			name:    "validation",
			err:     &forms.ValidationError{Fields: []forms.FieldError{{Field: "email", Message: "Email is required"}}},
			status:  http.StatusBadRequest,
			message: "Email is required",
			fields:  true,
		},
		{
			name:     "not signed in",
			err:      fmt.Errorf("load: %w", services.ErrNotSignedIn),
			status:   http.StatusUnauthorized,
			message:  string(services.ErrNotSignedIn),
			redirect: true,
		},
		{
			name:    "service error",
			err:     services.ErrEmptyCart,
			status:  http.StatusBadRequest,
			message: string(services.ErrEmptyCart),
		},
		{
			name:    "network",
			err:     &apiclient.NetworkError{Method: http.MethodGet, URL: "http://backend", Err: errors.New("refused")},
			status:  http.StatusBadGateway,
			message: apiclient.MsgCannotConnect,
		},
		{
			name:    "upstream 404",
			err:     &apiclient.APIError{Status: http.StatusNotFound, Message: "Product not found"},
			status:  http.StatusNotFound,
			message: "Product not found",
		},
		{
			name:    "upstream 500",
			err:     &apiclient.APIError{Status: http.StatusInternalServerError, Message: "pq: boom"},
			status:  http.StatusBadGateway,
			message: apiclient.MsgGeneric,
		},
		{
			name:    "unknown",
			err:     errors.New("decode failed"),
			status:  http.StatusInternalServerError,
			message: apiclient.MsgGeneric,
		},
	}

	rs := responder{log: quietLogger(), loginPath: "/auth/login"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			rs.fail(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			var body ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != tt.message {
				t.Fatalf("error = %q, want %q", body.Error, tt.message)
			}
			if (body.Redirect != "") != tt.redirect {
				t.Fatalf("redirect = %q", body.Redirect)
			}
			if (len(body.Fields) > 0) != tt.fields {
				t.Fatalf("fields = %+v", body.Fields)
			}
		})
	}
}

func TestFailRedirectsAfterAuthExpired(t *testing.T) {
	v := &Visitor{ID: "v1"}
	v.authExpired.Store(true)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req = req.WithContext(withVisitor(req.Context(), v))

	rec := httptest.NewRecorder()
	responder{log: quietLogger(), loginPath: "/signin"}.fail(rec, req, &apiclient.APIError{Status: http.StatusUnauthorized})

	var body ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusUnauthorized || body.Redirect != "/signin" {
		t.Fatalf("status %d, body %+v", rec.Code, body)
	}
}

func TestFailKeepsAuthFormsInPlace(t *testing.T) {
	for _, path := range []string{"/auth/login", "/auth/register"} {
		t.Run(path, func(t *testing.T) {
			v := &Visitor{ID: "v1"}
			v.authExpired.Store(true)

			req := httptest.NewRequest(http.MethodPost, path, nil)
			req = req.WithContext(withVisitor(req.Context(), v))

			rec := httptest.NewRecorder()
			responder{log: quietLogger(), loginPath: "/auth/login"}.fail(rec, req, &apiclient.APIError{Status: http.StatusUnauthorized, Message: "Invalid email or password"})

			var body ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if rec.Code != http.StatusUnauthorized || body.Redirect != "" {
				t.Fatalf("status %d, body %+v", rec.Code, body)
			}
			if body.Error != "Invalid email or password" {
				t.Fatalf("error = %q", body.Error)
			}
		})
	}
}

func TestParseCatalogQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/products?q=hoodie&category=2&min=1000&max=5000&sort=price-asc", nil)
	q, err := parseCatalogQuery(req)
	if err != nil {
		t.Fatalf("parseCatalogQuery: %v", err)
	}
	if q.Query != "hoodie" || q.CategoryID != 2 || q.Min != 1000 || q.Max != 5000 || q.Sort != catalog.SortPriceAsc {
		t.Fatalf("unexpected query: %+v", q)
	}

	q, err = parseCatalogQuery(httptest.NewRequest(http.MethodGet, "/products", nil))
	if err != nil || q.Sort != catalog.SortFeatured || q.Max != 0 {
		t.Fatalf("defaults: %+v, %v", q, err)
	}

	if _, err := parseCatalogQuery(httptest.NewRequest(http.MethodGet, "/products?min=cheap", nil)); err == nil {
		t.Fatal("expected error for non-numeric min")
	}
}

func TestVisitorMiddlewareIssuesCookie(t *testing.T) {
	store := storage.NewStorage(storage.NewMemoryBackend())
	factory := NewVisitorFactory(store, apiclient.Options{BaseURL: "http://backend.invalid"}, true, quietLogger())

	var seen *Visitor
	handler := factory.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = visitorFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != VisitorCookie {
		t.Fatalf("unexpected cookies: %+v", cookies)
	}
	c := cookies[0]
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode || c.Value != seen.ID {
		t.Fatalf("unexpected cookie: %+v", c)
	}

	// A known cookie is reused without issuing a new one.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: c.Value})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if len(rec.Result().Cookies()) != 0 || seen.ID != c.Value {
		t.Fatalf("cookie was not reused")
	}

	// A tampered cookie is replaced.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: "../../etc"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if len(rec.Result().Cookies()) != 1 || seen.ID == "../../etc" {
		t.Fatalf("tampered cookie accepted")
	}
}
