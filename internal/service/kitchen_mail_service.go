package service

import (
	"context"
	"fmt"

	"phone-order-be/internal/constant"
	"phone-order-be/internal/entity"
	"phone-order-be/internal/pkg/logger"
	"phone-order-be/internal/pkg/mailer"
	"phone-order-be/internal/repository/specification"
	"phone-order-be/internal/repository/unitofwork"
	"phone-order-be/pkg/events"
	"phone-order-be/pkg/menu"
	pktNats "phone-order-be/pkg/nats"

	"github.com/google/uuid"
)

type IKitchenMailService interface {
	Start(ctx context.Context) error
	HandleEvent(ctx context.Context, event events.Event) error
}

// kitchenMailService mails every placed order to the kitchen inbox.
type kitchenMailService struct {
	subscriber *pktNats.Subscriber
	uowFactory unitofwork.RepositoryFactory
	mailer     mailer.IEmailService
	to         string
	logger     logger.ILogger
}

// NewKitchenMailService returns a mail service. subscriber may be nil, in
// which case HandleEvent is called directly by the order consumer.
func NewKitchenMailService(sub *pktNats.Subscriber, uowFactory unitofwork.RepositoryFactory, m mailer.IEmailService, to string, log logger.ILogger) IKitchenMailService {
	return &kitchenMailService{
		subscriber: sub,
		uowFactory: uowFactory,
		mailer:     m,
		to:         to,
		logger:     log,
	}
}

// Start listens for ORDER_PLACED events on the bus.
func (s *kitchenMailService) Start(ctx context.Context) error {
	if s.subscriber == nil {
		return nil
	}
	subject := pktNats.Subject(events.OrderPlaced)
	if err := s.subscriber.Subscribe(ctx, subject, constant.KitchenMailerDurable, s.HandleEvent); err != nil {
		return err
	}
	s.logger.Info("KitchenMailService", "Listening for placed orders", map[string]interface{}{"subject": subject})
	return nil
}

func (s *kitchenMailService) HandleEvent(ctx context.Context, event events.Event) error {
	if event.EventType() != events.OrderPlaced {
		return nil
	}
	rawID, _ := event.Payload()["order_id"].(string)
	id, err := uuid.Parse(rawID)
	if err != nil {
		// Redelivering a malformed event cannot fix it.
		s.logger.Warn("KitchenMailService", "Event without a valid order id", map[string]interface{}{"order_id": rawID})
		return nil
	}

	order, err := s.uowFactory.NewUnitOfWork(ctx).OrderRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return fmt.Errorf("load order %s: %w", id, err)
	}
	if order == nil {
		s.logger.Warn("KitchenMailService", "Placed order not found", map[string]interface{}{"order_id": id.String()})
		return nil
	}

	if err := s.mailer.SendKitchenOrder(s.to, toKitchenOrder(order)); err != nil {
		s.logger.Error("KitchenMailService", "Kitchen email failed", map[string]interface{}{"order_id": id.String(), "error": err.Error()})
		return err
	}
	s.logger.Info("KitchenMailService", "Kitchen email sent", map[string]interface{}{"order_id": id.String()})
	return nil
}

func toKitchenOrder(o *entity.Order) mailer.KitchenOrder {
	lines := make([]string, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, kitchenLine(l))
	}
	return mailer.KitchenOrder{
		OrderID:  o.Id.String(),
		Mode:     o.Mode,
		Customer: o.CustomerName,
		Phone:    o.CustomerPhone,
		Address:  o.CustomerAddress,
		Lines:    lines,
		Total:    menu.Money(o.TotalMinor).String(),
	}
}
