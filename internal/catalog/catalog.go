// Package catalog resolves product lookups against the commerce API: product
// detail by handle, first-variant resolution for quick add-to-cart, and the
// availability filter for add-on upsells.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cardhouse/storefront/internal/domain"
)

// ErrProductNotFound is returned when no product exists for a handle.
var ErrProductNotFound = errors.New("product not found")

// ErrNoVariant is returned when a product has no variants at all.
var ErrNoVariant = errors.New("product has no variants")

// ErrVariantUnavailable is returned when the product's first variant is not
// purchasable. Distinguished from ErrNoVariant so callers can show "out of
// stock" instead of a generic failure.
var ErrVariantUnavailable = errors.New("variant is not available for sale")

// Commerce is the subset of the commerce client used for product lookups.
type Commerce interface {
	ProductByHandle(ctx context.Context, handle string) (*domain.Product, bool, error)
}

// Service performs product lookups.
type Service struct {
	commerce Commerce
	logger   *slog.Logger
}

// NewService creates a catalog service.
func NewService(commerceAPI Commerce, logger *slog.Logger) *Service {
	return &Service{
		commerce: commerceAPI,
		logger:   logger,
	}
}

// ProductByHandle fetches the product projection for a handle.
func (s *Service) ProductByHandle(ctx context.Context, handle string) (*domain.Product, error) {
	product, ok, err := s.commerce.ProductByHandle(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("product by handle %q: %w", handle, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, handle)
	}
	return product, nil
}

// FirstVariantID resolves a product handle to its first variant id for quick
// add-to-cart. Returns ErrNoVariant when the product has no variants (or does
// not exist) and ErrVariantUnavailable when the first variant is not
// available for sale.
func (s *Service) FirstVariantID(ctx context.Context, handle string) (string, error) {
	product, ok, err := s.commerce.ProductByHandle(ctx, handle)
	if err != nil {
		return "", fmt.Errorf("product by handle %q: %w", handle, err)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoVariant, handle)
	}

	variant := product.FirstVariant()
	if variant == nil {
		return "", fmt.Errorf("%w: %s", ErrNoVariant, handle)
	}
	if !variant.AvailableForSale {
		return "", fmt.Errorf("%w: %s", ErrVariantUnavailable, handle)
	}

	return variant.ID, nil
}

// AvailableAddOns filters the given product handles down to those whose first
// variant is purchasable (available for sale with non-zero or unknown
// inventory). Lookup failures skip the handle rather than failing the whole
// upsell strip.
func (s *Service) AvailableAddOns(ctx context.Context, handles []string) ([]*domain.Product, error) {
	available := make([]*domain.Product, 0, len(handles))
	for _, handle := range handles {
		product, ok, err := s.commerce.ProductByHandle(ctx, handle)
		if err != nil {
			s.logger.WarnContext(ctx, "add-on lookup failed, skipping",
				slog.String("handle", handle),
				slog.String("error", err.Error()),
			)
			continue
		}
		if !ok {
			continue
		}

		variant := product.FirstVariant()
		if variant == nil || !variant.Purchasable() {
			continue
		}

		available = append(available, product)
	}
	return available, nil
}
