package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cardhouse/storefront/internal/cartstate"
	"github.com/cardhouse/storefront/internal/catalog"
	"github.com/cardhouse/storefront/internal/commerce"
	"github.com/cardhouse/storefront/internal/domain"
	"github.com/cardhouse/storefront/internal/session"
	"github.com/cardhouse/storefront/pkg/validator"
)

// CartHandler handles HTTP requests for the shopper cart endpoints. Each
// request resolves its per-session cart state from the registry.
type CartHandler struct {
	registry *cartstate.Registry
	logger   *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(registry *cartstate.Registry, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		registry: registry,
		logger:   logger,
	}
}

// --- Request DTOs ---

// AddLineRequest is the JSON request body for adding a variant to the cart.
type AddLineRequest struct {
	VariantID string `json:"variant_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

// AddByHandleRequest is the JSON request body for adding a product's first
// variant by handle.
type AddByHandleRequest struct {
	Handle   string `json:"handle" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

// --- Response envelope ---

type response struct {
	Data  any            `json:"data,omitempty"`
	Error *errorResponse `json:"error,omitempty"`
}

type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// cartView is the JSON projection of the held cart state.
type cartView struct {
	Snapshot   *domain.CartSnapshot `json:"snapshot"`
	DrawerOpen bool                 `json:"drawer_open"`
	TotalQty   int                  `json:"total_qty"`
}

type checkoutView struct {
	CheckoutURL string `json:"checkout_url"`
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart. It returns the held snapshot without a
// remote round trip; a session that has never loaded gets a nil snapshot.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	state, ok := h.state(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, response{Data: viewOf(state)})
}

// Reload handles POST /api/v1/cart/reload. It forces a fresh authoritative
// snapshot, creating the remote cart if needed.
func (h *CartHandler) Reload(w http.ResponseWriter, r *http.Request) {
	state, ok := h.state(w, r)
	if !ok {
		return
	}

	if err := state.Reload(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: viewOf(state)})
}

// AddLine handles POST /api/v1/cart/lines.
func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	state, ok := h.state(w, r)
	if !ok {
		return
	}

	var req AddLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}
	if err := validator.Validate(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	if err := state.Add(r.Context(), req.VariantID, req.Quantity); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: viewOf(state)})
}

// AddByHandle handles POST /api/v1/cart/lines/by-handle.
func (h *CartHandler) AddByHandle(w http.ResponseWriter, r *http.Request) {
	state, ok := h.state(w, r)
	if !ok {
		return
	}

	var req AddByHandleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}
	if err := validator.Validate(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	if err := state.AddByHandle(r.Context(), req.Handle, req.Quantity); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: viewOf(state)})
}

// IncrementLine handles POST /api/v1/cart/lines/{lineID}/increment.
func (h *CartHandler) IncrementLine(w http.ResponseWriter, r *http.Request) {
	h.lineOp(w, r, func(state *cartstate.State, lineID string) error {
		return state.Inc(r.Context(), lineID)
	})
}

// DecrementLine handles POST /api/v1/cart/lines/{lineID}/decrement. A line at
// quantity 1 is removed.
func (h *CartHandler) DecrementLine(w http.ResponseWriter, r *http.Request) {
	h.lineOp(w, r, func(state *cartstate.State, lineID string) error {
		return state.Dec(r.Context(), lineID)
	})
}

// RemoveLine handles DELETE /api/v1/cart/lines/{lineID}.
func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	h.lineOp(w, r, func(state *cartstate.State, lineID string) error {
		return state.Remove(r.Context(), lineID)
	})
}

// OpenDrawer handles POST /api/v1/cart/drawer/open.
func (h *CartHandler) OpenDrawer(w http.ResponseWriter, r *http.Request) {
	state, ok := h.state(w, r)
	if !ok {
		return
	}
	state.Open()
	writeJSON(w, http.StatusOK, response{Data: viewOf(state)})
}

// CloseDrawer handles POST /api/v1/cart/drawer/close.
func (h *CartHandler) CloseDrawer(w http.ResponseWriter, r *http.Request) {
	state, ok := h.state(w, r)
	if !ok {
		return
	}
	state.Close()
	writeJSON(w, http.StatusOK, response{Data: viewOf(state)})
}

// CheckoutURL handles GET /api/v1/cart/checkout-url. The client navigates to
// the returned URL itself; an empty cart yields 409 rather than a dead link.
func (h *CartHandler) CheckoutURL(w http.ResponseWriter, r *http.Request) {
	state, ok := h.state(w, r)
	if !ok {
		return
	}

	url, err := state.CheckoutURL(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if url == "" {
		writeJSON(w, http.StatusConflict, response{
			Error: &errorResponse{Code: "NO_CHECKOUT_URL", Message: "no checkout url is available for this session"},
		})
		return
	}

	writeJSON(w, http.StatusOK, response{Data: checkoutView{CheckoutURL: url}})
}

// --- Helpers ---

func (h *CartHandler) lineOp(w http.ResponseWriter, r *http.Request, op func(*cartstate.State, string) error) {
	state, ok := h.state(w, r)
	if !ok {
		return
	}

	lineID := chi.URLParam(r, "lineID")
	if lineID == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "lineID is required"},
		})
		return
	}

	if err := op(state, lineID); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: viewOf(state)})
}

func (h *CartHandler) state(w http.ResponseWriter, r *http.Request) (*cartstate.State, bool) {
	sid, ok := sessionIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusInternalServerError, response{
			Error: &errorResponse{Code: "INTERNAL_ERROR", Message: "no shopper session"},
		})
		return nil, false
	}
	return h.registry.Get(sid), true
}

func viewOf(state *cartstate.State) cartView {
	return cartView{
		Snapshot:   state.Snapshot(),
		DrawerOpen: state.IsOpen(),
		TotalQty:   state.TotalQty(),
	}
}

func (h *CartHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeDomainError(w, r, h.logger, err)
}

func (h *CartHandler) writeValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  valErr.Fields(),
			},
		})
		return
	}

	writeJSON(w, http.StatusBadRequest, response{
		Error: &errorResponse{Code: "INVALID_INPUT", Message: err.Error()},
	})
}

// writeDomainError maps service errors onto HTTP statuses. Remote commerce
// failures surface as 502 since this service is a pass-through for them.
func writeDomainError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var (
		mutErr     *session.LineMutationError
		unavailErr *session.CartUnavailableError
		transErr   *commerce.TransportError
		remoteErr  *commerce.RemoteQueryError
	)

	switch {
	case errors.As(err, &mutErr):
		writeJSON(w, http.StatusUnprocessableEntity, response{
			Error: &errorResponse{Code: "LINE_REJECTED", Message: mutErr.Error()},
		})
	case errors.Is(err, catalog.ErrVariantUnavailable):
		writeJSON(w, http.StatusUnprocessableEntity, response{
			Error: &errorResponse{Code: "OUT_OF_STOCK", Message: "product is not available for purchase"},
		})
	case errors.Is(err, catalog.ErrProductNotFound), errors.Is(err, catalog.ErrNoVariant):
		writeJSON(w, http.StatusNotFound, response{
			Error: &errorResponse{Code: "NOT_FOUND", Message: "product not found"},
		})
	case errors.Is(err, cartstate.ErrLineNotFound):
		writeJSON(w, http.StatusNotFound, response{
			Error: &errorResponse{Code: "LINE_NOT_FOUND", Message: "line not found in cart"},
		})
	case errors.As(err, &unavailErr):
		writeJSON(w, http.StatusServiceUnavailable, response{
			Error: &errorResponse{Code: "CART_UNAVAILABLE", Message: unavailErr.Error()},
		})
	case errors.As(err, &transErr), errors.As(err, &remoteErr):
		logger.ErrorContext(r.Context(), "commerce backend error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		writeJSON(w, http.StatusBadGateway, response{
			Error: &errorResponse{Code: "COMMERCE_UNAVAILABLE", Message: "commerce backend request failed"},
		})
	default:
		logger.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		writeJSON(w, http.StatusInternalServerError, response{
			Error: &errorResponse{Code: "INTERNAL_ERROR", Message: "an internal error occurred"},
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}
