package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cardhouse/storefront/internal/catalog"
)

// ProductHandler handles HTTP requests for product lookups.
type ProductHandler struct {
	catalog *catalog.Service
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *catalog.Service, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: svc,
		logger:  logger,
	}
}

// GetProduct handles GET /api/v1/products/{handle}.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	if handle == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "handle is required"},
		})
		return
	}

	product, err := h.catalog.ProductByHandle(r.Context(), handle)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: product})
}

// GetAddOns handles GET /api/v1/products/add-ons?handles=a,b,c. It returns
// only the products whose first variant is currently purchasable.
func (h *ProductHandler) GetAddOns(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("handles")
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "handles query parameter is required"},
		})
		return
	}

	handles := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			handles = append(handles, part)
		}
	}

	products, err := h.catalog.AvailableAddOns(r.Context(), handles)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: products})
}
