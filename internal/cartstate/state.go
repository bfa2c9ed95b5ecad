// Package cartstate holds the single shared cart view for one shopper
// session: the last authoritative snapshot and the drawer-open flag. Every
// mutation performs the remote call and then unconditionally reloads the full
// snapshot, so the displayed cart always equals the last known remote truth.
// The state never increments or decrements its own copy of quantities or
// totals.
package cartstate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cardhouse/storefront/internal/domain"
)

// ErrLineNotFound is returned when an increment or decrement targets a line
// the held snapshot does not contain (stale line id).
var ErrLineNotFound = errors.New("line not found in cart")

// SessionService is the cart session surface consumed by the state.
type SessionService interface {
	EnsureCart(ctx context.Context) (*domain.CartStub, error)
	FullCart(ctx context.Context, id string) (*domain.CartSnapshot, bool, error)
	AddLine(ctx context.Context, variantID string, quantity int) (*domain.CartStub, error)
	SetLineQuantity(ctx context.Context, cartID, lineID string, quantity int) error
	RemoveLine(ctx context.Context, cartID, lineID string) error
	ResolveCheckoutURL(ctx context.Context) (string, error)
}

// Catalog is the product lookup surface used by AddByHandle.
type Catalog interface {
	FirstVariantID(ctx context.Context, handle string) (string, error)
}

// Events receives cart lifecycle notifications. Publish failures are logged
// and never fail the cart operation.
type Events interface {
	PublishCartUpdated(ctx context.Context, sessionID string, snapshot *domain.CartSnapshot) error
	PublishCheckoutStarted(ctx context.Context, sessionID, cartID, checkoutURL string) error
}

// State is the explicitly constructed per-session cart state. It is built
// once per shopper session and lives for the session's whole life.
//
// The mutex guards only the in-memory snapshot and drawer flag. Remote calls
// run outside the lock: concurrent mutations against the same cart race
// independently and the last reload to complete wins, which is the intended
// weak consistency for a single-shopper cart.
type State struct {
	sessionID string
	service   SessionService
	catalog   Catalog
	events    Events
	logger    *slog.Logger

	mu         sync.RWMutex
	snapshot   *domain.CartSnapshot
	drawerOpen bool
}

// New creates a cart state for one shopper session. events may be nil.
func New(sessionID string, service SessionService, catalog Catalog, events Events, logger *slog.Logger) *State {
	return &State{
		sessionID: sessionID,
		service:   service,
		catalog:   catalog,
		events:    events,
		logger:    logger,
	}
}

// SessionID returns the shopper session id this state belongs to.
func (s *State) SessionID() string {
	return s.sessionID
}

// Snapshot returns the held cart snapshot, or nil before the first load.
func (s *State) Snapshot() *domain.CartSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// TotalQty returns the server-computed total quantity, or 0 when no snapshot
// is held.
func (s *State) TotalQty() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return 0
	}
	return s.snapshot.TotalQuantity
}

// Lines returns the held cart lines; empty before the first load.
func (s *State) Lines() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return []domain.CartLine{}
	}
	return s.snapshot.Lines
}

// IsOpen reports whether the cart drawer is open.
func (s *State) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drawerOpen
}

// Open opens the cart drawer.
func (s *State) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawerOpen = true
}

// Close closes the cart drawer.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawerOpen = false
}

// Load ensures a remote cart exists and replaces the held snapshot with the
// authoritative state. When the remote cart vanished between ensure and
// fetch, the held snapshot is left as is; the next operation re-creates.
func (s *State) Load(ctx context.Context) error {
	stub, err := s.service.EnsureCart(ctx)
	if err != nil {
		return err
	}

	snapshot, ok, err := s.service.FullCart(ctx, stub.ID)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.WarnContext(ctx, "cart vanished between ensure and fetch",
			slog.String("cart_id", stub.ID),
		)
		return nil
	}

	s.replaceSnapshot(ctx, snapshot)
	return nil
}

// Reload is Load under its UI-facing name.
func (s *State) Reload(ctx context.Context) error {
	return s.Load(ctx)
}

// Add adds quantity of the variant to the cart, reloads the snapshot, and
// opens the drawer. A failed add leaves the held snapshot untouched.
func (s *State) Add(ctx context.Context, variantID string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	if _, err := s.service.AddLine(ctx, variantID, quantity); err != nil {
		return err
	}

	if err := s.Load(ctx); err != nil {
		return err
	}

	s.Open()
	return nil
}

// AddByHandle resolves a product handle to its first variant and delegates to
// Add. Returns catalog.ErrNoVariant or catalog.ErrVariantUnavailable without
// issuing any cart mutation when the product cannot be purchased.
func (s *State) AddByHandle(ctx context.Context, handle string, quantity int) error {
	variantID, err := s.catalog.FirstVariantID(ctx, handle)
	if err != nil {
		return err
	}
	return s.Add(ctx, variantID, quantity)
}

// Inc increments a line's quantity by one, based on the quantity in the held
// snapshot, then reloads.
func (s *State) Inc(ctx context.Context, lineID string) error {
	cartID, line, err := s.lookupLine(lineID)
	if err != nil {
		return err
	}

	if err := s.service.SetLineQuantity(ctx, cartID, lineID, line.Quantity+1); err != nil {
		return err
	}

	return s.Load(ctx)
}

// Dec decrements a line's quantity by one. A line at quantity 1 is removed
// entirely rather than updated to 0; the same policy applies at every call
// site.
func (s *State) Dec(ctx context.Context, lineID string) error {
	cartID, line, err := s.lookupLine(lineID)
	if err != nil {
		return err
	}

	if line.Quantity <= 1 {
		if err := s.service.RemoveLine(ctx, cartID, lineID); err != nil {
			return err
		}
	} else {
		if err := s.service.SetLineQuantity(ctx, cartID, lineID, line.Quantity-1); err != nil {
			return err
		}
	}

	return s.Load(ctx)
}

// Remove removes a line from the cart and reloads.
func (s *State) Remove(ctx context.Context, lineID string) error {
	cartID, _, err := s.lookupLine(lineID)
	if err != nil {
		return err
	}

	if err := s.service.RemoveLine(ctx, cartID, lineID); err != nil {
		return err
	}

	return s.Load(ctx)
}

// CheckoutURL resolves the checkout handoff URL. The returned URL may be ""
// when no cart or fallback exists. Navigation to it is the client's job.
func (s *State) CheckoutURL(ctx context.Context) (string, error) {
	url, err := s.service.ResolveCheckoutURL(ctx)
	if err != nil {
		return "", err
	}

	if url != "" && s.events != nil {
		cartID := ""
		if snap := s.Snapshot(); snap != nil {
			cartID = snap.ID
		}
		if err := s.events.PublishCheckoutStarted(ctx, s.sessionID, cartID, url); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish checkout.started event",
				slog.String("error", err.Error()),
			)
		}
	}

	return url, nil
}

// lookupLine reads the cart id and line from the held snapshot.
func (s *State) lookupLine(lineID string) (string, domain.CartLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return "", domain.CartLine{}, fmt.Errorf("%w: %s", ErrLineNotFound, lineID)
	}
	line := s.snapshot.FindLine(lineID)
	if line == nil {
		return "", domain.CartLine{}, fmt.Errorf("%w: %s", ErrLineNotFound, lineID)
	}
	return s.snapshot.ID, *line, nil
}

func (s *State) replaceSnapshot(ctx context.Context, snapshot *domain.CartSnapshot) {
	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()

	if s.events != nil {
		if err := s.events.PublishCartUpdated(ctx, s.sessionID, snapshot); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
				slog.String("cart_id", snapshot.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}
