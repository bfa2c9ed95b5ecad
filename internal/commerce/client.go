package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"

	"github.com/cardhouse/storefront/internal/domain"
	"github.com/cardhouse/storefront/pkg/httpclient"
)

const accessTokenHeader = "X-Storefront-Access-Token"

var (
	commerceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commerce_requests_total",
			Help: "Total number of commerce API calls",
		},
		[]string{"operation", "result"},
	)

	commerceRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "commerce_request_duration_seconds",
			Help:    "Duration of commerce API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	commerceBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "commerce_circuit_breaker_state",
			Help: "Current state of the commerce circuit breaker (0=closed, 1=half-open, 2=open)",
		},
	)
)

// Config holds commerce API client configuration.
type Config struct {
	// ShopDomain is the commerce shop domain, e.g. "example.myshopify.com".
	ShopDomain string

	// AccessToken is the static storefront access token sent on every request.
	AccessToken string

	// APIVersion selects the storefront API version, e.g. "2025-01".
	APIVersion string

	// Timeout bounds each individual call.
	Timeout time.Duration

	// URL overrides the endpoint derived from ShopDomain and APIVersion.
	// Local mocks use it; production leaves it empty.
	URL string
}

// Endpoint returns the GraphQL endpoint URL for the configuration.
func (c Config) Endpoint() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("https://%s/api/%s/graphql.json", c.ShopDomain, c.APIVersion)
}

// LineInput describes one line to add to a cart.
type LineInput struct {
	MerchandiseID string `json:"merchandiseId"`
	Quantity      int    `json:"quantity"`
}

// Client issues queries and mutations against the commerce GraphQL endpoint.
// Each call is a single HTTP attempt (no retries: mutations are not
// idempotent) guarded by a circuit breaker. HTTP-level failures surface as
// *TransportError, GraphQL-level failures as *RemoteQueryError; only the
// former count as breaker failures.
type Client struct {
	endpoint string
	token    string
	http     *httpclient.Client
	breaker  *gobreaker.CircuitBreaker[json.RawMessage]
	logger   *slog.Logger
}

// NewClient creates a commerce API client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	settings := gobreaker.Settings{
		Name:     "commerce",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			// Application-level rejections say nothing about endpoint health.
			var rqe *RemoteQueryError
			return errors.As(err, &rqe)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			commerceBreakerState.Set(breakerStateValue(to))
		},
	}

	commerceBreakerState.Set(breakerStateValue(gobreaker.StateClosed))

	return &Client{
		endpoint: cfg.Endpoint(),
		token:    cfg.AccessToken,
		http:     httpclient.New(httpclient.SingleAttemptConfig(cfg.Timeout)),
		breaker:  gobreaker.NewCircuitBreaker[json.RawMessage](settings),
		logger:   logger,
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// graphqlEnvelope is the standard GraphQL response envelope.
type graphqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// query performs one GraphQL call and decodes the data payload into out.
func (c *Client) query(ctx context.Context, operation, document string, variables map[string]any, out any) error {
	start := time.Now()
	data, err := c.breaker.Execute(func() (json.RawMessage, error) {
		return c.post(ctx, document, variables)
	})
	commerceRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	if err != nil {
		commerceRequestsTotal.WithLabelValues(operation, "error").Inc()
		c.logger.DebugContext(ctx, "commerce call failed",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
		return err
	}

	commerceRequestsTotal.WithLabelValues(operation, "ok").Inc()

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, document string, variables map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(map[string]any{
		"query":     document,
		"variables": variables,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(accessTokenHeader, c.token)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := string(respBody)
		if text == "" {
			text = resp.Status
		}
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: text}
	}

	var envelope graphqlEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("decode response envelope: %w", err)
	}

	if len(envelope.Errors) > 0 {
		msgs := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			msgs[i] = e.Message
		}
		return nil, &RemoteQueryError{Messages: msgs}
	}

	return envelope.Data, nil
}

// CreateCart issues a create-cart mutation with empty input. It returns the
// new cart stub, or the remote user errors when the commerce API rejected the
// creation (stub nil in that case).
func (c *Client) CreateCart(ctx context.Context) (*domain.CartStub, []domain.UserError, error) {
	var payload struct {
		CartCreate struct {
			Cart       *cartStubPayload   `json:"cart"`
			UserErrors []userErrorPayload `json:"userErrors"`
		} `json:"cartCreate"`
	}
	if err := c.query(ctx, "cart_create", mutationCartCreate, nil, &payload); err != nil {
		return nil, nil, err
	}

	userErrors := decodeUserErrors(payload.CartCreate.UserErrors)
	if payload.CartCreate.Cart == nil {
		return nil, userErrors, nil
	}

	stub, err := payload.CartCreate.Cart.toDomain()
	if err != nil {
		return nil, userErrors, err
	}
	return stub, userErrors, nil
}

// Cart fetches the minimal cart view by id. The second return is false when
// the commerce API no longer recognizes the cart.
func (c *Client) Cart(ctx context.Context, id string) (*domain.CartStub, bool, error) {
	var payload struct {
		Cart *cartStubPayload `json:"cart"`
	}
	if err := c.query(ctx, "cart_get", queryCartStub, map[string]any{"id": id}, &payload); err != nil {
		return nil, false, err
	}
	if payload.Cart == nil || payload.Cart.ID == "" {
		return nil, false, nil
	}

	stub, err := payload.Cart.toDomain()
	if err != nil {
		return nil, false, err
	}
	return stub, true, nil
}

// FullCart fetches the full cart graph (lines, cost, checkout URL, total
// quantity) by id. The second return is false when the cart is unknown
// remotely.
func (c *Client) FullCart(ctx context.Context, id string) (*domain.CartSnapshot, bool, error) {
	var payload struct {
		Cart *cartFullPayload `json:"cart"`
	}
	if err := c.query(ctx, "cart_get_full", queryCartFull, map[string]any{"id": id}, &payload); err != nil {
		return nil, false, err
	}
	if payload.Cart == nil || payload.Cart.ID == "" {
		return nil, false, nil
	}

	snapshot, err := payload.Cart.toDomain()
	if err != nil {
		return nil, false, err
	}
	return snapshot, true, nil
}

type cartMutationPayload struct {
	Cart       *cartStubPayload   `json:"cart"`
	UserErrors []userErrorPayload `json:"userErrors"`
}

func (p *cartMutationPayload) toDomain() (*domain.CartStub, []domain.UserError, error) {
	userErrors := decodeUserErrors(p.UserErrors)
	if p.Cart == nil {
		return nil, userErrors, nil
	}
	stub, err := p.Cart.toDomain()
	if err != nil {
		return nil, userErrors, err
	}
	return stub, userErrors, nil
}

// AddLines adds the given lines to the cart.
func (c *Client) AddLines(ctx context.Context, cartID string, lines []LineInput) (*domain.CartStub, []domain.UserError, error) {
	var payload struct {
		CartLinesAdd cartMutationPayload `json:"cartLinesAdd"`
	}
	vars := map[string]any{"cartId": cartID, "lines": lines}
	if err := c.query(ctx, "cart_lines_add", mutationCartLinesAdd, vars, &payload); err != nil {
		return nil, nil, err
	}
	return payload.CartLinesAdd.toDomain()
}

// UpdateLine sets the quantity of one line.
func (c *Client) UpdateLine(ctx context.Context, cartID, lineID string, quantity int) (*domain.CartStub, []domain.UserError, error) {
	var payload struct {
		CartLinesUpdate cartMutationPayload `json:"cartLinesUpdate"`
	}
	vars := map[string]any{
		"cartId": cartID,
		"lines":  []map[string]any{{"id": lineID, "quantity": quantity}},
	}
	if err := c.query(ctx, "cart_lines_update", mutationCartLinesUpdate, vars, &payload); err != nil {
		return nil, nil, err
	}
	return payload.CartLinesUpdate.toDomain()
}

// RemoveLine removes one line from the cart. Removing an already-absent line
// is treated as success by the commerce API.
func (c *Client) RemoveLine(ctx context.Context, cartID, lineID string) (*domain.CartStub, []domain.UserError, error) {
	var payload struct {
		CartLinesRemove cartMutationPayload `json:"cartLinesRemove"`
	}
	vars := map[string]any{"cartId": cartID, "lineIds": []string{lineID}}
	if err := c.query(ctx, "cart_lines_remove", mutationCartLinesRemove, vars, &payload); err != nil {
		return nil, nil, err
	}
	return payload.CartLinesRemove.toDomain()
}

// ProductByHandle fetches a product projection by its handle. The second
// return is false when no product exists for the handle.
func (c *Client) ProductByHandle(ctx context.Context, handle string) (*domain.Product, bool, error) {
	var payload struct {
		Product *productPayload `json:"product"`
	}
	if err := c.query(ctx, "product_by_handle", queryProductByHandle, map[string]any{"handle": handle}, &payload); err != nil {
		return nil, false, err
	}
	if payload.Product == nil || payload.Product.ID == "" {
		return nil, false, nil
	}

	product, err := payload.Product.toDomain()
	if err != nil {
		return nil, false, err
	}
	return product, true, nil
}
