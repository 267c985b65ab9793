package service

import (
	"context"
	"errors"
	"time"

	"phone-order-be/internal/dto"
	"phone-order-be/internal/pkg/logger"
	"phone-order-be/pkg/ordering/pricing"

	"github.com/google/uuid"
)

// ErrPersistenceFailed wraps any failure to hand a placed order over.
var ErrPersistenceFailed = errors.New("order persistence failed")

// FinalizedOrder is a confirmed order as the dialogue leaves it.
type FinalizedOrder struct {
	OrderID         uuid.UUID
	CallID          string
	Mode            string
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Breakdown       pricing.Breakdown
	Summary         string
	PlacedAt        time.Time
}

// OrderSink receives each placed order exactly once.
type OrderSink interface {
	Persist(ctx context.Context, order FinalizedOrder) error
}

func toPlacedOrderMessage(o FinalizedOrder) dto.PlacedOrderMessage {
	lines := make([]dto.OrderLineMessage, 0, len(o.Breakdown.Lines))
	for _, lt := range o.Breakdown.Lines {
		lines = append(lines, dto.OrderLineMessage{
			Item:        lt.Item,
			Extras:      lt.Extras,
			Base:        int64(lt.Base),
			ExtrasTotal: int64(lt.ExtrasTotal),
			Subtotal:    int64(lt.Subtotal),
		})
	}
	return dto.PlacedOrderMessage{
		OrderId:         o.OrderID,
		CallId:          o.CallID,
		Mode:            o.Mode,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		CustomerAddress: o.CustomerAddress,
		Lines:           lines,
		TotalMinor:      int64(o.Breakdown.Total),
		Summary:         o.Summary,
		PlacedAt:        o.PlacedAt,
	}
}

// LoggingOrderSink only logs placed orders. Used by the simulation CLI.
type LoggingOrderSink struct {
	logger logger.ILogger
}

func NewLoggingOrderSink(log logger.ILogger) *LoggingOrderSink {
	return &LoggingOrderSink{logger: log}
}

func (s *LoggingOrderSink) Persist(_ context.Context, order FinalizedOrder) error {
	s.logger.Info("OrderSink", "Order placed", map[string]interface{}{
		"order_id": order.OrderID.String(),
		"call_id":  order.CallID,
		"mode":     order.Mode,
		"total":    order.Breakdown.Total.String(),
		"lines":    len(order.Breakdown.Lines),
	})
	return nil
}
