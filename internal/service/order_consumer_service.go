package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"phone-order-be/internal/constant"
	"phone-order-be/internal/dto"
	"phone-order-be/internal/entity"
	"phone-order-be/internal/metrics"
	"phone-order-be/internal/pkg/logger"
	"phone-order-be/internal/repository/contract"
	"phone-order-be/internal/repository/specification"
	"phone-order-be/internal/repository/unitofwork"
	"phone-order-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// OrderConsumerDeps are the optional collaborators notified after an order is
// stored. Nil fields are skipped.
type OrderConsumerDeps struct {
	Kitchen   KitchenNotifier
	Publisher events.Publisher
	// Mail is used directly only when there is no Publisher to carry the
	// ORDER_PLACED event to it.
	Mail IKitchenMailService
}

type orderConsumerService struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	deps       OrderConsumerDeps
	logger     logger.ILogger
}

func NewOrderConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	deps OrderConsumerDeps,
	log logger.ILogger,
) IConsumerService {
	return &orderConsumerService{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		deps:       deps,
		logger:     log,
	}
}

func (cs *orderConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage stores the order once and fans it out. Every message is
// acked: a placed order is never retried.
func (cs *orderConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.PlacedOrderMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("OrderConsumer", "Failed to unmarshal placed order", map[string]interface{}{"error": err.Error()})
		metrics.PersistFailuresTotal.Inc()
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.OrderRepository().FindOne(ctx, specification.ByCallID{CallID: payload.CallId})
	if err != nil {
		cs.logger.Error("OrderConsumer", "Failed to look up order", map[string]interface{}{"call_id": payload.CallId, "error": err.Error()})
		metrics.PersistFailuresTotal.Inc()
		return
	}
	if existing != nil {
		cs.logger.Warn("OrderConsumer", "Call already has an order, skipping", map[string]interface{}{"call_id": payload.CallId, "order_id": existing.Id.String()})
		return
	}

	order := orderFromMessage(payload)
	if err := uow.OrderRepository().Create(ctx, order); err != nil {
		if errors.Is(err, contract.ErrDuplicateOrder) {
			cs.logger.Warn("OrderConsumer", "Call already has an order, skipping", map[string]interface{}{"call_id": payload.CallId})
			return
		}
		cs.logger.Error("OrderConsumer", "Failed to store order", map[string]interface{}{"call_id": payload.CallId, "error": err.Error()})
		metrics.PersistFailuresTotal.Inc()
		return
	}
	cs.logger.Info("OrderConsumer", "Order stored", map[string]interface{}{"order_id": order.Id.String(), "call_id": order.CallId})

	cs.notify(ctx, order)
}

func (cs *orderConsumerService) notify(ctx context.Context, order *entity.Order) {
	if cs.deps.Kitchen != nil {
		if err := cs.deps.Kitchen.Broadcast(ctx, constant.KitchenOrderPlaced, toOrderResponse(order)); err != nil {
			cs.logger.Warn("OrderConsumer", "Kitchen broadcast failed", map[string]interface{}{"order_id": order.Id.String(), "error": err.Error()})
		}
	}

	ev := events.OrderPlacedEvent{
		OrderID:      order.Id.String(),
		CallID:       order.CallId,
		Mode:         order.Mode,
		CustomerName: order.CustomerName,
		Total:        toOrderResponse(order).Total,
		LineCount:    len(order.Lines),
		OccurredAt:   order.CreatedAt,
	}
	switch {
	case cs.deps.Publisher != nil:
		if err := cs.deps.Publisher.Publish(ctx, ev); err != nil {
			cs.logger.Warn("OrderConsumer", "ORDER_PLACED publish failed", map[string]interface{}{"order_id": order.Id.String(), "error": err.Error()})
		}
	case cs.deps.Mail != nil:
		if err := cs.deps.Mail.HandleEvent(ctx, ev); err != nil {
			cs.logger.Warn("OrderConsumer", "Kitchen email failed", map[string]interface{}{"order_id": order.Id.String(), "error": err.Error()})
		}
	}
}

func orderFromMessage(m dto.PlacedOrderMessage) *entity.Order {
	lines := make([]entity.OrderLine, 0, len(m.Lines))
	for _, l := range m.Lines {
		lines = append(lines, entity.OrderLine{
			Item:        l.Item,
			Extras:      l.Extras,
			Base:        l.Base,
			ExtrasTotal: l.ExtrasTotal,
			Subtotal:    l.Subtotal,
		})
	}
	placed := m.PlacedAt
	if placed.IsZero() {
		placed = time.Now()
	}
	return &entity.Order{
		Id:              m.OrderId,
		CallId:          m.CallId,
		Mode:            m.Mode,
		CustomerName:    m.CustomerName,
		CustomerPhone:   m.CustomerPhone,
		CustomerAddress: m.CustomerAddress,
		Lines:           lines,
		TotalMinor:      m.TotalMinor,
		Summary:         m.Summary,
		Status:          entity.OrderStatusNew,
		CreatedAt:       placed,
	}
}
