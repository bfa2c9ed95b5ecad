package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartUpdatedPayload struct {
	CartID        string `json:"cart_id"`
	TotalQuantity int    `json:"total_quantity"`
}

func TestNewEvent(t *testing.T) {
	data := cartUpdatedPayload{CartID: "cart-1", TotalQuantity: 3}

	ev, err := NewEvent("storefront.cart.updated", "cart-1", "cart", "storefront-bff", data)

	require.NoError(t, err)
	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, "storefront.cart.updated", ev.EventType)
	assert.Equal(t, "cart-1", ev.AggregateID)
	assert.Equal(t, "cart", ev.AggregateType)
	assert.Equal(t, "storefront-bff", ev.Source)
	assert.False(t, ev.Timestamp.IsZero())
}

func TestEvent_UnmarshalData(t *testing.T) {
	ev, err := NewEvent("storefront.cart.updated", "cart-1", "cart", "storefront-bff",
		cartUpdatedPayload{CartID: "cart-1", TotalQuantity: 3})
	require.NoError(t, err)

	var got cartUpdatedPayload
	require.NoError(t, ev.UnmarshalData(&got))
	assert.Equal(t, "cart-1", got.CartID)
	assert.Equal(t, 3, got.TotalQuantity)
}

func TestEvent_WithCorrelationID(t *testing.T) {
	ev, err := NewEvent("storefront.checkout.started", "cart-1", "cart", "storefront-bff", nil)
	require.NoError(t, err)

	ev = ev.WithCorrelationID("corr-123")

	assert.Equal(t, "corr-123", ev.CorrelationID)
}

func TestEvent_MarshalRoundTrip(t *testing.T) {
	ev, err := NewEvent("storefront.cart.updated", "cart-1", "cart", "storefront-bff",
		cartUpdatedPayload{CartID: "cart-1", TotalQuantity: 1})
	require.NoError(t, err)

	raw, err := ev.Marshal()
	require.NoError(t, err)

	var decoded Event
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, ev.EventID, decoded.EventID)
	assert.Equal(t, ev.EventType, decoded.EventType)
}
