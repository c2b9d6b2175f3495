package apiclient

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/merchke/storefront/internal/storage"
)

// Storage keys for persisted credentials.
const (
	TokenKey     = "auth_token"
	SessionIDKey = "guest_session_id"
)

const (
	sessionIDPrefix     = "guest"
	sessionIDRandomLen  = 13
	sessionIDRandomBase = 36
)

// Credentials reads and writes the auth token and guest session id.
// Only the Client touches them.
type Credentials struct {
	store *storage.Storage
	now   func() time.Time

	// mu serialises guest id creation within this client. Clients sharing
	// a store agree through Storage.SetIfAbsent.
	mu sync.Mutex
}

func newCredentials(store *storage.Storage, now func() time.Time) *Credentials {
	if now == nil {
		now = time.Now
	}
	return &Credentials{store: store, now: now}
}

// Token returns the stored token, or "" when none is stored.
func (c *Credentials) Token(ctx context.Context) (string, error) {
	return c.get(ctx, TokenKey)
}

func (c *Credentials) SetToken(ctx context.Context, token string) error {
	return c.store.Set(ctx, TokenKey, token)
}

func (c *Credentials) ClearToken(ctx context.Context) error {
	return c.store.Delete(ctx, TokenKey)
}

// SessionID returns the guest session id, generating and persisting one
// on first use.
func (c *Credentials) SessionID(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, err := c.get(ctx, SessionIDKey)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	id, err = newSessionID(c.now())
	if err != nil {
		return "", err
	}
	stored, err := c.store.SetIfAbsent(ctx, SessionIDKey, id)
	if err != nil {
		return "", fmt.Errorf("persist guest session id: %w", err)
	}
	return stored, nil
}

func (c *Credentials) ClearSessionID(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Delete(ctx, SessionIDKey)
}

func (c *Credentials) get(ctx context.Context, key string) (string, error) {
	value, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return value, nil
}

// newSessionID formats guest-<unix millis>-<random base36>.
func newSessionID(now time.Time) (string, error) {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

	suffix := make([]byte, sessionIDRandomLen)
	limit := big.NewInt(sessionIDRandomBase)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate guest session id: %w", err)
		}
		suffix[i] = alphabet[n.Int64()]
	}
	return fmt.Sprintf("%s-%d-%s", sessionIDPrefix, now.UnixMilli(), suffix), nil
}
