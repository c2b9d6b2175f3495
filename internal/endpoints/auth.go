package endpoints

import (
	"context"
	"fmt"

	"github.com/merchke/storefront/types"
)

// Register creates an account and persists the returned token.
func (a *API) Register(ctx context.Context, req types.RegisterRequest) (types.AuthResponse, error) {
	var resp types.AuthResponse
	if err := a.client.Post(ctx, "/api/auth/register", req, &resp); err != nil {
		return types.AuthResponse{}, err
	}
	if err := a.persistToken(ctx, resp.Token); err != nil {
		return types.AuthResponse{}, err
	}
	return resp, nil
}

// Login authenticates and persists the returned token.
func (a *API) Login(ctx context.Context, req types.LoginRequest) (types.AuthResponse, error) {
	var resp types.AuthResponse
	if err := a.client.Post(ctx, "/api/auth/login", req, &resp); err != nil {
		return types.AuthResponse{}, err
	}
	if err := a.persistToken(ctx, resp.Token); err != nil {
		return types.AuthResponse{}, err
	}
	return resp, nil
}

func (a *API) Profile(ctx context.Context) (types.User, error) {
	var resp types.ProfileResponse
	if err := a.client.Get(ctx, "/api/auth/profile", &resp); err != nil {
		return types.User{}, err
	}
	return resp.User, nil
}

// Logout forgets the stored token. The backend is not called.
func (a *API) Logout(ctx context.Context) error {
	return a.client.Credentials().ClearToken(ctx)
}

// HasToken reports whether a token is stored.
func (a *API) HasToken(ctx context.Context) (bool, error) {
	token, err := a.client.Credentials().Token(ctx)
	return token != "", err
}

// Token returns the stored token, or "".
func (a *API) Token(ctx context.Context) (string, error) {
	return a.client.Credentials().Token(ctx)
}

func (a *API) persistToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := a.client.Credentials().SetToken(ctx, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}
