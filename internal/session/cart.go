package session

import (
	"context"
	"io"
	"sync"

	"github.com/merchke/storefront/internal/catalog"
	"github.com/merchke/storefront/types"
	"github.com/sirupsen/logrus"
)

// CartAPI is the subset of the endpoint layer CartState needs.
type CartAPI interface {
	Cart(ctx context.Context) (types.CartResponse, error)
}

// CartState keeps the item count shown on the cart badge.
type CartState struct {
	api CartAPI
	log logrus.FieldLogger

	mu    sync.RWMutex
	count int
}

func NewCartState(api CartAPI, logger logrus.FieldLogger) *CartState {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &CartState{api: api, log: logger}
}

// Refresh fetches the cart and stores its item count. Any failure resets
// the count to zero.
func (s *CartState) Refresh(ctx context.Context) {
	count := 0
	cart, err := s.api.Cart(ctx)
	if err != nil {
		s.log.WithError(err).Debug("cart refresh failed, resetting count")
	} else {
		count = catalog.CartItemCount(cart)
	}

	s.mu.Lock()
	s.count = count
	s.mu.Unlock()
}

// Count returns the last known item count.
func (s *CartState) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}
