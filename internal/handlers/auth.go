package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/merchke/storefront/types"
	"github.com/sirupsen/logrus"
)

// AuthHandler signs visitors in and out.
type AuthHandler struct {
	responder
}

func NewAuthHandler(logger logrus.FieldLogger, loginPath string) *AuthHandler {
	return &AuthHandler{responder{log: logger, loginPath: loginPath}}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, logger logrus.FieldLogger, loginPath string) {
	handler := NewAuthHandler(logger, loginPath)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.Post("/logout", handler.Logout)
	r.Get("/me", handler.Me)
}

// SessionResponse describes the signed-in visitor.
type SessionResponse struct {
	User      types.User `json:"user"`
	IsAdmin   bool       `json:"is_admin"`
	CartCount int        `json:"cart_count"`
}

func sessionResponse(v *Visitor, user types.User) SessionResponse {
	return SessionResponse{User: user, IsAdmin: user.IsAdmin(), CartCount: v.Users.CartCount()}
}

// Register creates an account and signs the visitor in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	v := visitorFrom(r.Context())
	user, err := v.Users.Register(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse(v, user))
}

// Login signs the visitor in and carries the guest cart over.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	v := visitorFrom(r.Context())
	user, err := v.Users.Login(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(v, user))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	v := visitorFrom(r.Context())
	if err := v.Users.Logout(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "logged out"})
}

// Me returns the current user, or 401 with a login redirect.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	v := visitorFrom(r.Context())
	user, err := v.Users.Me(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	v.Cart.Refresh(r.Context())
	writeJSON(w, http.StatusOK, sessionResponse(v, user))
}
