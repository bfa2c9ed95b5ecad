// Package identity persists the cart identity for a shopper session: the
// opaque cart id issued by the commerce API and the last-known checkout URL
// fallback. At most one identity exists per session scope.
package identity

import (
	"context"
	"sync"
)

// Store persists the two identity keys for one session scope. Absence is
// reported as an empty string with a nil error; errors mean the underlying
// storage is degraded. Callers that follow the best-effort policy treat a
// degraded read the same as absent, but the distinction is theirs to make.
type Store interface {
	// CartID returns the stored cart id, or "" when none is stored.
	CartID(ctx context.Context) (string, error)

	// SetCartID stores the cart id, overwriting any previous one.
	SetCartID(ctx context.Context, id string) error

	// CheckoutURL returns the stored checkout URL fallback, or "".
	CheckoutURL(ctx context.Context) (string, error)

	// SetCheckoutURL stores the checkout URL fallback.
	SetCheckoutURL(ctx context.Context, url string) error

	// Clear removes both keys.
	Clear(ctx context.Context) error
}

// MemoryStore is an in-memory Store used in tests and as a degraded-mode
// fallback when no persistent backend is configured. Identity then lives only
// as long as the process, which matches the "storage unavailable" behavior:
// a new remote cart per session.
type MemoryStore struct {
	mu          sync.RWMutex
	cartID      string
	checkoutURL string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) CartID(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cartID, nil
}

func (s *MemoryStore) SetCartID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartID = id
	return nil
}

func (s *MemoryStore) CheckoutURL(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkoutURL, nil
}

func (s *MemoryStore) SetCheckoutURL(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkoutURL = url
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartID = ""
	s.checkoutURL = ""
	return nil
}
