package constant

// FallbackUtterance is spoken whenever a turn fails. The call keeps listening.
const FallbackUtterance = "Sorry, I didn't catch that. Could you please repeat?"

// Kitchen websocket message types
const (
	KitchenOrderPlaced        = "order_placed"
	KitchenOrderStatusChanged = "order_status_changed"
)

// OrderTopic is the in-process topic finalized orders are published on.
const OrderTopic = "orders.placed"

// KitchenMailerDurable is the NATS durable consumer that mails the kitchen.
const KitchenMailerDurable = "kitchen-mailer"

// Twilio call statuses after which the session is discarded
var TerminalCallStatuses = map[string]bool{
	"completed": true,
	"failed":    true,
	"busy":      true,
	"no-answer": true,
	"canceled":  true,
}
