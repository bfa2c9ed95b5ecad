// Package session owns the cart session lifecycle against the commerce API:
// it guarantees a remote cart exists, fetches authoritative snapshots, and
// performs line mutations. It never computes quantities or money locally;
// after every mutation the caller is expected to reload the full snapshot.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cardhouse/storefront/internal/commerce"
	"github.com/cardhouse/storefront/internal/domain"
	"github.com/cardhouse/storefront/internal/identity"
)

// Commerce is the subset of the commerce client used by the session service.
type Commerce interface {
	CreateCart(ctx context.Context) (*domain.CartStub, []domain.UserError, error)
	Cart(ctx context.Context, id string) (*domain.CartStub, bool, error)
	FullCart(ctx context.Context, id string) (*domain.CartSnapshot, bool, error)
	AddLines(ctx context.Context, cartID string, lines []commerce.LineInput) (*domain.CartStub, []domain.UserError, error)
	UpdateLine(ctx context.Context, cartID, lineID string, quantity int) (*domain.CartStub, []domain.UserError, error)
	RemoveLine(ctx context.Context, cartID, lineID string) (*domain.CartStub, []domain.UserError, error)
}

// Service manages one shopper's cart session. The identity store is already
// scoped to the session; storage failures degrade to "no identity" rather
// than failing the operation.
type Service struct {
	commerce Commerce
	store    identity.Store
	logger   *slog.Logger
}

// NewService creates a cart session service.
func NewService(commerceAPI Commerce, store identity.Store, logger *slog.Logger) *Service {
	return &Service{
		commerce: commerceAPI,
		store:    store,
		logger:   logger,
	}
}

// EnsureCart guarantees a remote cart exists for this session and returns its
// stub. A stored identity is verified against the commerce API first; if the
// remote system no longer recognizes it (expired, malformed) a fresh cart is
// created and the stored identity overwritten. Returns *CartUnavailableError
// when creation itself is rejected.
func (s *Service) EnsureCart(ctx context.Context) (*domain.CartStub, error) {
	storedID, err := s.store.CartID(ctx)
	if err != nil {
		s.logger.DebugContext(ctx, "identity store read failed, treating as absent",
			slog.String("error", err.Error()),
		)
		storedID = ""
	}

	if storedID != "" {
		stub, ok, err := s.commerce.Cart(ctx, storedID)
		if err != nil {
			// The stored id may be malformed or the cart gone; either way
			// the session recovers by creating a fresh cart.
			s.logger.WarnContext(ctx, "stored cart fetch failed, recreating",
				slog.String("cart_id", storedID),
				slog.String("error", err.Error()),
			)
		} else if ok {
			s.persistCheckoutURL(ctx, stub.CheckoutURL)
			return stub, nil
		}
	}

	stub, userErrors, err := s.commerce.CreateCart(ctx)
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	if stub == nil {
		return nil, &CartUnavailableError{Reason: joinUserErrors(userErrors)}
	}

	if err := s.store.SetCartID(ctx, stub.ID); err != nil {
		s.logger.DebugContext(ctx, "identity store write failed",
			slog.String("error", err.Error()),
		)
	}
	s.persistCheckoutURL(ctx, stub.CheckoutURL)

	s.logger.InfoContext(ctx, "cart created",
		slog.String("cart_id", stub.ID),
	)

	return stub, nil
}

// FullCart fetches the authoritative snapshot for the given cart id. The
// second return is false when the commerce API no longer recognizes the cart;
// that is not an error, the caller treats it as "cart needs re-creation".
func (s *Service) FullCart(ctx context.Context, id string) (*domain.CartSnapshot, bool, error) {
	return s.commerce.FullCart(ctx, id)
}

// AddLine ensures a cart exists, then adds a single line for the variant.
// Returns *LineMutationError when the commerce API rejects the line. On
// success the caller must reload the full snapshot; the returned stub carries
// only minimal fields.
func (s *Service) AddLine(ctx context.Context, variantID string, quantity int) (*domain.CartStub, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}

	cart, err := s.EnsureCart(ctx)
	if err != nil {
		return nil, err
	}

	stub, userErrors, err := s.commerce.AddLines(ctx, cart.ID, []commerce.LineInput{
		{MerchandiseID: variantID, Quantity: quantity},
	})
	if err != nil {
		return nil, fmt.Errorf("add line: %w", err)
	}
	if len(userErrors) > 0 {
		return nil, &LineMutationError{UserErrors: userErrors}
	}

	if stub != nil {
		s.persistCheckoutURL(ctx, stub.CheckoutURL)
	}

	s.logger.InfoContext(ctx, "line added",
		slog.String("cart_id", cart.ID),
		slog.String("variant_id", variantID),
		slog.Int("quantity", quantity),
	)

	return stub, nil
}

// SetLineQuantity sets the quantity of a line. Quantity must be a positive
// integer; a decrement below 1 must go through RemoveLine instead, this
// service does not special-case zero.
func (s *Service) SetLineQuantity(ctx context.Context, cartID, lineID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1, got %d; remove the line instead", quantity)
	}

	_, userErrors, err := s.commerce.UpdateLine(ctx, cartID, lineID, quantity)
	if err != nil {
		return fmt.Errorf("update line: %w", err)
	}
	if len(userErrors) > 0 {
		return &LineMutationError{UserErrors: userErrors}
	}

	s.logger.InfoContext(ctx, "line quantity updated",
		slog.String("cart_id", cartID),
		slog.String("line_id", lineID),
		slog.Int("quantity", quantity),
	)

	return nil
}

// RemoveLine removes a line from the cart. Removing an already-absent line is
// treated as success by the commerce API; this service does not guard against
// stale line ids.
func (s *Service) RemoveLine(ctx context.Context, cartID, lineID string) error {
	_, userErrors, err := s.commerce.RemoveLine(ctx, cartID, lineID)
	if err != nil {
		return fmt.Errorf("remove line: %w", err)
	}
	if len(userErrors) > 0 {
		return &LineMutationError{UserErrors: userErrors}
	}

	s.logger.InfoContext(ctx, "line removed",
		slog.String("cart_id", cartID),
		slog.String("line_id", lineID),
	)

	return nil
}

// ResolveCheckoutURL returns the best currently-known checkout URL: a fresh
// fetch by stored identity when possible, the persisted fallback when the
// fetch fails or no identity exists, and "" when neither source yields one.
func (s *Service) ResolveCheckoutURL(ctx context.Context) (string, error) {
	storedID, err := s.store.CartID(ctx)
	if err != nil {
		s.logger.DebugContext(ctx, "identity store read failed, treating as absent",
			slog.String("error", err.Error()),
		)
		storedID = ""
	}

	if storedID == "" {
		return s.storedCheckoutURL(ctx), nil
	}

	stub, ok, err := s.commerce.Cart(ctx, storedID)
	if err != nil || !ok || stub.CheckoutURL == "" {
		if err != nil {
			s.logger.WarnContext(ctx, "checkout url fetch failed, using stored fallback",
				slog.String("error", err.Error()),
			)
		}
		return s.storedCheckoutURL(ctx), nil
	}

	s.persistCheckoutURL(ctx, stub.CheckoutURL)
	return stub.CheckoutURL, nil
}

func (s *Service) storedCheckoutURL(ctx context.Context) string {
	url, err := s.store.CheckoutURL(ctx)
	if err != nil {
		s.logger.DebugContext(ctx, "identity store read failed",
			slog.String("error", err.Error()),
		)
		return ""
	}
	return url
}

func (s *Service) persistCheckoutURL(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.store.SetCheckoutURL(ctx, url); err != nil {
		s.logger.DebugContext(ctx, "identity store write failed",
			slog.String("error", err.Error()),
		)
	}
}

func joinUserErrors(userErrors []domain.UserError) string {
	if len(userErrors) == 0 {
		return ""
	}
	msgs := make([]string, len(userErrors))
	for i, ue := range userErrors {
		msgs[i] = ue.Message
	}
	return strings.Join(msgs, "; ")
}
