package unitofwork

import (
	"context"
	"fmt"

	"phone-order-be/internal/repository/contract"

	"gorm.io/gorm"
)

// RepositoryFactory hands out units of work over the orders database.
type RepositoryFactory interface {
	// NewUnitOfWork returns a unit of work whose queries run under ctx.
	// Create one per operation.
	NewUnitOfWork(ctx context.Context) UnitOfWork
}

type gormFactory struct {
	db *gorm.DB
}

func NewRepositoryFactory(db *gorm.DB) RepositoryFactory {
	return gormFactory{db: db}
}

func (f gormFactory) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return NewUnitOfWork(f.db.WithContext(ctx))
}

// Transact runs fn against the order repository inside one transaction of
// uow. It commits when fn returns nil and rolls back otherwise, including
// when fn panics.
func Transact(ctx context.Context, uow UnitOfWork, fn func(orders contract.OrderRepository) error) (err error) {
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := uow.Rollback(); rbErr != nil && err != nil {
			err = fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
	}()

	if err = fn(uow.OrderRepository()); err != nil {
		return err
	}
	committed = true
	if err = uow.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
