package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrderPlacedEventPayload(t *testing.T) {
	at := time.Date(2026, 10, 1, 19, 30, 0, 0, time.UTC)
	var e Event = OrderPlacedEvent{
		OrderID:      "0b7c",
		CallID:       "CA1",
		Mode:         "pickup",
		CustomerName: "Dana",
		Total:        "52.00",
		LineCount:    1,
		OccurredAt:   at,
	}

	assert.Equal(t, "ORDER_PLACED", e.EventType())
	assert.Equal(t, at, e.Timestamp())
	assert.Equal(t, map[string]interface{}{
		"order_id":      "0b7c",
		"call_id":       "CA1",
		"mode":          "pickup",
		"customer_name": "Dana",
		"total":         "52.00",
		"line_count":    1,
		"occurred_at":   "2026-10-01T19:30:00Z",
	}, e.Payload())
}
