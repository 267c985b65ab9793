package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"phone-order-be/internal/constant"
	"phone-order-be/internal/dto"
	"phone-order-be/internal/entity"
	"phone-order-be/internal/pkg/logger"
	"phone-order-be/internal/repository/contract"
	"phone-order-be/internal/repository/specification"
	"phone-order-be/internal/repository/unitofwork"
	"phone-order-be/pkg/events"
	"phone-order-be/pkg/menu"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

const defaultPageSize = 20

// KitchenNotifier pushes live updates to kitchen screens.
type KitchenNotifier interface {
	Broadcast(ctx context.Context, msgType string, data interface{}) error
}

type IOrderService interface {
	List(ctx context.Context, req dto.ListOrdersRequest) (*dto.ListOrdersResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*dto.OrderResponse, error)
}

type orderService struct {
	uowFactory unitofwork.RepositoryFactory
	kitchen    KitchenNotifier
	publisher  events.Publisher
	logger     logger.ILogger
}

// NewOrderService builds the staff-facing order service. kitchen and
// publisher may be nil.
func NewOrderService(uowFactory unitofwork.RepositoryFactory, kitchen KitchenNotifier, publisher events.Publisher, log logger.ILogger) IOrderService {
	return &orderService{
		uowFactory: uowFactory,
		kitchen:    kitchen,
		publisher:  publisher,
		logger:     log,
	}
}

func (s *orderService) List(ctx context.Context, req dto.ListOrdersRequest) (*dto.ListOrdersResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = defaultPageSize
	}

	var filters []specification.Specification
	if req.Status != "" {
		filters = append(filters, specification.ByStatus{Status: req.Status})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	total, err := uow.OrderRepository().Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	specs := append(filters,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: req.PageSize, Offset: (req.Page - 1) * req.PageSize},
	)
	orders, err := uow.OrderRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	items := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		items = append(items, toOrderResponse(o))
	}
	return &dto.ListOrdersResponse{Items: items, Total: total, Page: req.Page, PageSize: req.PageSize}, nil
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.uowFactory.NewUnitOfWork(ctx).OrderRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	res := toOrderResponse(order)
	return &res, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*dto.OrderResponse, error) {
	var order *entity.Order
	// the row stays locked from the transition check to the write
	err := unitofwork.Transact(ctx, s.uowFactory.NewUnitOfWork(ctx), func(orders contract.OrderRepository) error {
		found, err := orders.FindOne(ctx, specification.ByID{ID: id}, specification.ForUpdate{})
		if err != nil {
			return err
		}
		if found == nil {
			return ErrOrderNotFound
		}
		if !entity.CanTransition(found.Status, status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, found.Status, status)
		}
		if err := orders.UpdateStatus(ctx, id, status); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		order = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order.Status = status
	order.UpdatedAt = &now
	res := toOrderResponse(order)

	if s.kitchen != nil {
		if err := s.kitchen.Broadcast(ctx, constant.KitchenOrderStatusChanged, res); err != nil {
			s.logger.Warn("OrderService", "Kitchen broadcast failed", map[string]interface{}{"order_id": id.String(), "error": err.Error()})
		}
	}
	if s.publisher != nil {
		ev := events.OrderStatusChangedEvent{OrderID: id.String(), Status: status, OccurredAt: now}
		if err := s.publisher.Publish(ctx, ev); err != nil {
			s.logger.Warn("OrderService", "Status event publish failed", map[string]interface{}{"order_id": id.String(), "error": err.Error()})
		}
	}

	s.logger.Info("OrderService", "Order status updated", map[string]interface{}{"order_id": id.String(), "status": status})
	return &res, nil
}

func toOrderResponse(o *entity.Order) dto.OrderResponse {
	lines := make([]dto.OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, dto.OrderLineResponse{
			Item:     l.Item,
			Extras:   l.Extras,
			Subtotal: menu.Money(l.Subtotal).String(),
		})
	}
	return dto.OrderResponse{
		Id:              o.Id,
		CallId:          o.CallId,
		Mode:            o.Mode,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		CustomerAddress: o.CustomerAddress,
		Lines:           lines,
		Total:           menu.Money(o.TotalMinor).String(),
		Status:          o.Status,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// kitchenLine renders a line the way the kitchen ticket prints it.
func kitchenLine(l entity.OrderLine) string {
	label := l.Item
	if len(l.Extras) > 0 {
		label += " with " + strings.Join(l.Extras, ", ")
	}
	return fmt.Sprintf("%s - %s", label, menu.Money(l.Subtotal).String())
}
