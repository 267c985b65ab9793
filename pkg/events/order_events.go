package events

import "time"

const (
	OrderPlaced        = "ORDER_PLACED"
	OrderStatusChanged = "ORDER_STATUS_CHANGED"
)

// OrderPlacedEvent announces a confirmed phone order.
type OrderPlacedEvent struct {
	OrderID      string
	CallID       string
	Mode         string
	CustomerName string
	Total        string
	LineCount    int
	OccurredAt   time.Time
}

func (e OrderPlacedEvent) EventType() string { return OrderPlaced }

func (e OrderPlacedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"order_id":      e.OrderID,
		"call_id":       e.CallID,
		"mode":          e.Mode,
		"customer_name": e.CustomerName,
		"total":         e.Total,
		"line_count":    e.LineCount,
		"occurred_at":   e.OccurredAt.Format(time.RFC3339),
	}
}

func (e OrderPlacedEvent) Timestamp() time.Time { return e.OccurredAt }

// OrderStatusChangedEvent is raised when staff move an order along.
type OrderStatusChangedEvent struct {
	OrderID    string
	Status     string
	OccurredAt time.Time
}

func (e OrderStatusChangedEvent) EventType() string { return OrderStatusChanged }

func (e OrderStatusChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"order_id":    e.OrderID,
		"status":      e.Status,
		"occurred_at": e.OccurredAt.Format(time.RFC3339),
	}
}

func (e OrderStatusChangedEvent) Timestamp() time.Time { return e.OccurredAt }
