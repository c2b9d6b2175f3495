package services

import (
	"github.com/merchke/storefront/internal/endpoints"
	"github.com/merchke/storefront/internal/session"
	"github.com/sirupsen/logrus"
)

// Set is everything bound to one credential scope: the endpoint layer, the
// session stores and the page services built on them.
type Set struct {
	API        *endpoints.API
	Auth       *session.AuthState
	Cart       *session.CartState
	Users      *UserService
	Storefront *StorefrontService
	Admin      *AdminService
}

func NewSet(api *endpoints.API, logger logrus.FieldLogger) *Set {
	logger = orDiscard(logger)
	auth := session.NewAuthState(api, logger)
	cart := session.NewCartState(api, logger)
	return &Set{
		API:        api,
		Auth:       auth,
		Cart:       cart,
		Users:      NewUserService(api, auth, cart, logger),
		Storefront: NewStorefrontService(api, cart, logger),
		Admin:      NewAdminService(api, logger),
	}
}
