package contract

import (
	"context"
	"errors"

	"phone-order-be/internal/entity"
	"phone-order-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ErrDuplicateOrder is returned by Create when the call already has an order.
var ErrDuplicateOrder = errors.New("order already exists for call")

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Order, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Order, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
