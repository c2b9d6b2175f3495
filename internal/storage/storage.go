package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("not found")

// Backend defines the key/value operations every persistence backend provides.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// SetIfAbsent stores value only when key is missing and returns the
	// value held at key afterwards. Racing callers all see the same value.
	SetIfAbsent(ctx context.Context, key, value string) (string, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// Storage wraps a Backend with a stable API and an optional key namespace.
type Storage struct {
	backend Backend
	prefix  string
}

// NewStorage constructs a Storage wrapper for the provided backend.
func NewStorage(backend Backend) *Storage {
	return &Storage{backend: backend}
}

// WithPrefix returns a Storage sharing the same backend whose keys are
// namespaced under prefix.
func (s *Storage) WithPrefix(prefix string) *Storage {
	return &Storage{backend: s.backend, prefix: s.prefix + prefix}
}

// Get returns the value stored at key, or ErrNotFound.
func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	return s.backend.Get(ctx, s.prefix+key)
}

// Set stores value at key.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	return s.backend.Set(ctx, s.prefix+key, value)
}

// SetIfAbsent stores value unless key already exists and returns the
// stored value.
func (s *Storage) SetIfAbsent(ctx context.Context, key, value string) (string, error) {
	return s.backend.SetIfAbsent(ctx, s.prefix+key, value)
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, s.prefix+key)
}

// Close releases the underlying backend.
func (s *Storage) Close() error {
	return s.backend.Close()
}
