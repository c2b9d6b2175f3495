package handlers

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/merchke/storefront/internal/apiclient"
	"github.com/merchke/storefront/internal/endpoints"
	"github.com/merchke/storefront/internal/services"
	"github.com/merchke/storefront/internal/storage"
	"github.com/sirupsen/logrus"
)

// VisitorCookie names the cookie that identifies a browser to the gateway.
const VisitorCookie = "merchke_visitor"

const visitorCookieMaxAge = 365 * 24 * 60 * 60

// Visitor is one browser's view of the backend. Its token and guest
// session id live in storage under the visitor id.
type Visitor struct {
	ID string
	*services.Set

	authExpired atomic.Bool
}

// AuthExpired reports whether an auth endpoint answered 401 during this
// request and the stored token was dropped.
func (v *Visitor) AuthExpired() bool {
	return v.authExpired.Load()
}

// VisitorFactory builds the per-request Visitor.
type VisitorFactory struct {
	store        *storage.Storage
	opts         apiclient.Options
	cookieSecure bool
	log          logrus.FieldLogger
}

func NewVisitorFactory(store *storage.Storage, opts apiclient.Options, cookieSecure bool, logger logrus.FieldLogger) *VisitorFactory {
	return &VisitorFactory{store: store, opts: opts, cookieSecure: cookieSecure, log: logger}
}

func (f *VisitorFactory) New(id string) (*Visitor, error) {
	v := &Visitor{ID: id}
	logger := f.log.WithField("visitor", id)

	opts := f.opts
	opts.Logger = logger
	opts.OnAuthExpired = func(context.Context) {
		v.authExpired.Store(true)
	}

	client, err := apiclient.New(f.store.WithPrefix("visitor:"+id+":"), opts)
	if err != nil {
		return nil, err
	}
	v.Set = services.NewSet(endpoints.New(client), logger)
	return v, nil
}

// Middleware resolves the visitor cookie, issuing a new id when it is
// missing or malformed, and stores the Visitor in the request context.
func (f *VisitorFactory) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := visitorID(r)
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     VisitorCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   visitorCookieMaxAge,
				HttpOnly: true,
				Secure:   f.cookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		v, err := f.New(id)
		if err != nil {
			f.log.WithError(err).Error("failed to build visitor")
			writeError(w, http.StatusInternalServerError, "failed to start session")
			return
		}
		next.ServeHTTP(w, r.WithContext(withVisitor(r.Context(), v)))
	})
}

func visitorID(r *http.Request) string {
	c, err := r.Cookie(VisitorCookie)
	if err != nil {
		return ""
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return ""
	}
	return id.String()
}
