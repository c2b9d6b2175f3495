package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/merchke/storefront/config"
)

func TestBackends(t *testing.T) {
	fileBackend, err := NewFileBackend(filepath.Join(t.TempDir(), "nested", "credentials.json"))
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}

	backends := map[string]Backend{
		"memory": NewMemoryBackend(),
		"file":   fileBackend,
	}

	for name, backend := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := NewStorage(backend)

			if _, err := s.Get(ctx, "auth_token"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if err := s.Set(ctx, "auth_token", "abc"); err != nil {
				t.Fatalf("set: %v", err)
			}
			got, err := s.Get(ctx, "auth_token")
			if err != nil || got != "abc" {
				t.Fatalf("get = %q, %v", got, err)
			}
			if err := s.Set(ctx, "auth_token", "def"); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			if got, _ := s.Get(ctx, "auth_token"); got != "def" {
				t.Fatalf("expected overwrite, got %q", got)
			}
			if err := s.Delete(ctx, "auth_token"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if err := s.Delete(ctx, "auth_token"); err != nil {
				t.Fatalf("delete missing key: %v", err)
			}
			if _, err := s.Get(ctx, "auth_token"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound after delete, got %v", err)
			}

			if got, err := s.SetIfAbsent(ctx, "guest_session_id", "guest-a"); err != nil || got != "guest-a" {
				t.Fatalf("first SetIfAbsent = %q, %v", got, err)
			}
			if got, err := s.SetIfAbsent(ctx, "guest_session_id", "guest-b"); err != nil || got != "guest-a" {
				t.Fatalf("second SetIfAbsent = %q, %v; want the first value kept", got, err)
			}
			if got, _ := s.Get(ctx, "guest_session_id"); got != "guest-a" {
				t.Fatalf("stored value = %q", got)
			}
		})
	}
}

func TestWithPrefixIsolatesKeys(t *testing.T) {
	ctx := context.Background()
	base := NewStorage(NewMemoryBackend())
	alice := base.WithPrefix("visitor:alice:")
	bob := base.WithPrefix("visitor:bob:")

	if err := alice.Set(ctx, "auth_token", "alice-token"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := bob.Get(ctx, "auth_token"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected bob to see nothing, got %v", err)
	}
	if got, _ := base.Get(ctx, "visitor:alice:auth_token"); got != "alice-token" {
		t.Fatalf("expected raw prefixed key, got %q", got)
	}
}

func TestFileBackendPersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")

	first, err := NewFileBackend(path)
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}
	if err := first.Set(ctx, "guest_session_id", "guest-1-abc"); err != nil {
		t.Fatalf("set: %v", err)
	}

	second, err := NewFileBackend(path)
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}
	got, err := second.Get(ctx, "guest_session_id")
	if err != nil || got != "guest-1-abc" {
		t.Fatalf("get = %q, %v", got, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 permissions, got %v", info.Mode().Perm())
	}
}

func TestOpenMemory(t *testing.T) {
	cfg := config.Config{Storage: config.StorageConfig{Backend: config.StorageMemory, KeyPrefix: "merchke:"}}
	s, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.Set(context.Background(), "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	cfg := config.Config{Storage: config.StorageConfig{Backend: "s3"}}
	if _, err := Open(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestNewMongoBackendRequiresURI(t *testing.T) {
	if _, err := NewMongoBackend(context.Background(), config.StorageConfig{}); err == nil {
		t.Fatal("expected error for empty mongo uri")
	}
}

func TestSetIfAbsentConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	s := NewStorage(NewMemoryBackend()).WithPrefix("visitor:x:")

	const writers = 16
	got := make([]string, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			value, err := s.SetIfAbsent(ctx, "guest_session_id", fmt.Sprintf("guest-%d", i))
			if err != nil {
				t.Errorf("SetIfAbsent: %v", err)
			}
			got[i] = value
		}(i)
	}
	wg.Wait()

	for _, v := range got[1:] {
		if v != got[0] {
			t.Fatalf("writers disagree: %q vs %q", got[0], v)
		}
	}
}
