// Package session holds the client-side state shared by pages: the signed-in
// user and the cart badge count. Each store is an explicit object; callers
// create one per visitor and call Init or Refresh when they need fresh data.
package session

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/merchke/storefront/types"
	"github.com/sirupsen/logrus"
)

// AuthAPI is the subset of the endpoint layer AuthState needs.
type AuthAPI interface {
	Token(ctx context.Context) (string, error)
	Profile(ctx context.Context) (types.User, error)
	Logout(ctx context.Context) error
}

// AuthState tracks the current user. A zero user means signed out.
type AuthState struct {
	api AuthAPI
	log logrus.FieldLogger
	now func() time.Time

	mu      sync.RWMutex
	user    *types.User
	loading bool
}

func NewAuthState(api AuthAPI, logger logrus.FieldLogger) *AuthState {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &AuthState{api: api, log: logger, now: time.Now}
}

// Init loads the profile when a token is stored. Any failure clears the
// token and leaves the state signed out; Init itself never fails. A token
// whose exp claim has passed is cleared without asking the backend.
func (s *AuthState) Init(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	user := s.load(ctx)

	s.mu.Lock()
	s.user = user
	s.loading = false
	s.mu.Unlock()
}

// Refresh re-runs Init.
func (s *AuthState) Refresh(ctx context.Context) {
	s.Init(ctx)
}

func (s *AuthState) load(ctx context.Context) *types.User {
	token, err := s.api.Token(ctx)
	if err != nil {
		s.log.WithError(err).Warn("read stored token")
		return nil
	}
	if token == "" {
		return nil
	}

	if tokenExpired(token, s.now()) {
		s.log.Info("stored token expired, signing out")
		s.clearToken(ctx)
		return nil
	}

	user, err := s.api.Profile(ctx)
	if err != nil {
		s.log.WithError(err).Info("profile fetch failed, signing out")
		s.clearToken(ctx)
		return nil
	}
	return &user
}

func (s *AuthState) clearToken(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		s.log.WithError(err).Error("clear stored token")
	}
}

// Login records user as signed in. The token is persisted by the login
// endpoint itself.
func (s *AuthState) Login(user types.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
	s.loading = false
}

// Logout clears the stored token and the user.
func (s *AuthState) Logout(ctx context.Context) error {
	err := s.api.Logout(ctx)

	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	return err
}

// User returns the signed-in user and whether there is one.
func (s *AuthState) User() (types.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return types.User{}, false
	}
	return *s.user, true
}

func (s *AuthState) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *AuthState) IsAuthenticated() bool {
	_, ok := s.User()
	return ok
}

func (s *AuthState) IsAdmin() bool {
	user, ok := s.User()
	return ok && user.IsAdmin()
}

// tokenExpired reads the exp claim without verifying the signature; the
// backend stays the authority on validity. Tokens that cannot be parsed
// or carry no exp are left for the backend to judge.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}
