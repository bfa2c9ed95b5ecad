package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/cardhouse/storefront/pkg/kafka"

	"github.com/cardhouse/storefront/internal/domain"
)

// Kafka topics for storefront cart events.
const (
	TopicCartUpdated     = "storefront.cart.updated"
	TopicCheckoutStarted = "storefront.checkout.started"
)

const (
	aggregateTypeCart = "cart"
	sourceStorefront  = "storefront-bff"
)

// CartUpdatedData is the payload for a cart.updated event. Quantities and
// totals come straight from the commerce snapshot.
type CartUpdatedData struct {
	SessionID     string         `json:"session_id"`
	CartID        string         `json:"cart_id"`
	TotalQuantity int            `json:"total_quantity"`
	Subtotal      domain.Money   `json:"subtotal"`
	Total         domain.Money   `json:"total"`
	Lines         []LineData     `json:"lines"`
}

// LineData is the line payload within cart events.
type LineData struct {
	LineID    string       `json:"line_id"`
	VariantID string       `json:"variant_id"`
	Title     string       `json:"title"`
	Quantity  int          `json:"quantity"`
	UnitPrice domain.Money `json:"unit_price"`
}

// CheckoutStartedData is the payload for a checkout.started event.
type CheckoutStartedData struct {
	SessionID   string `json:"session_id"`
	CartID      string `json:"cart_id"`
	CheckoutURL string `json:"checkout_url"`
}

// Producer publishes storefront cart events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates an event producer for the storefront.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCartUpdated publishes a cart.updated event from the given snapshot.
func (p *Producer) PublishCartUpdated(ctx context.Context, sessionID string, snapshot *domain.CartSnapshot) error {
	lines := make([]LineData, len(snapshot.Lines))
	for i, line := range snapshot.Lines {
		lines[i] = LineData{
			LineID:    line.ID,
			VariantID: line.Merchandise.VariantID,
			Title:     line.Merchandise.ProductTitle,
			Quantity:  line.Quantity,
			UnitPrice: line.Merchandise.Price,
		}
	}

	data := CartUpdatedData{
		SessionID:     sessionID,
		CartID:        snapshot.ID,
		TotalQuantity: snapshot.TotalQuantity,
		Subtotal:      snapshot.Subtotal,
		Total:         snapshot.Total,
		Lines:         lines,
	}

	ev, err := pkgkafka.NewEvent(TopicCartUpdated, snapshot.ID, aggregateTypeCart, sourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create cart.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartUpdated, ev); err != nil {
		return fmt.Errorf("publish cart.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("cart_id", snapshot.ID),
		slog.Int("total_quantity", snapshot.TotalQuantity),
	)

	return nil
}

// PublishCheckoutStarted publishes a checkout.started event.
func (p *Producer) PublishCheckoutStarted(ctx context.Context, sessionID, cartID, checkoutURL string) error {
	data := CheckoutStartedData{
		SessionID:   sessionID,
		CartID:      cartID,
		CheckoutURL: checkoutURL,
	}

	ev, err := pkgkafka.NewEvent(TopicCheckoutStarted, cartID, aggregateTypeCart, sourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create checkout.started event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCheckoutStarted, ev); err != nil {
		return fmt.Errorf("publish checkout.started event: %w", err)
	}

	p.logger.DebugContext(ctx, "published checkout.started event",
		slog.String("cart_id", cartID),
	)

	return nil
}
