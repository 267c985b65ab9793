package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// orderPublisherService hands placed orders to the order consumer over the
// in-process bus, so the dialogue never waits on the database or the kitchen.
type orderPublisherService struct {
	topicName string
	publisher message.Publisher
}

func NewOrderPublisherService(topicName string, publisher message.Publisher) OrderSink {
	return &orderPublisherService{
		topicName: topicName,
		publisher: publisher,
	}
}

func (s *orderPublisherService) Persist(ctx context.Context, order FinalizedOrder) error {
	payload, err := json.Marshal(toPlacedOrderMessage(order))
	if err != nil {
		return fmt.Errorf("%w: marshal order %s: %v", ErrPersistenceFailed, order.OrderID, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("call_id", order.CallID)
	msg.SetContext(ctx)

	if err := s.publisher.Publish(s.topicName, msg); err != nil {
		return fmt.Errorf("%w: publish order %s: %v", ErrPersistenceFailed, order.OrderID, err)
	}
	return nil
}
