package service

import (
	"context"
	"sort"
	"sync"

	"phone-order-be/internal/entity"
	"phone-order-be/internal/pkg/mailer"
	"phone-order-be/internal/repository/contract"
	"phone-order-be/internal/repository/specification"
	"phone-order-be/internal/repository/unitofwork"
	"phone-order-be/pkg/events"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memOrders is an in-memory OrderRepository that understands the order
// specifications.
type memOrders struct {
	mu     sync.Mutex
	orders []*entity.Order
	// staleReads makes FindOne miss, as a lookup racing another insert would.
	staleReads bool
}

func (r *memOrders) Create(_ context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.CallId == order.CallId {
			return contract.ErrDuplicateOrder
		}
	}
	cp := *order
	r.orders = append(r.orders, &cp)
	return nil
}

func (r *memOrders) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.Id == id {
			o.Status = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memOrders) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Order, error) {
	if r.staleReads {
		return nil, nil
	}
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *memOrders) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Order
	for _, o := range r.orders {
		if matches(o, specs) {
			cp := *o
			out = append(out, &cp)
		}
	}
	for _, s := range specs {
		switch s := s.(type) {
		case specification.OrderBy:
			sort.SliceStable(out, func(i, j int) bool {
				if s.Desc {
					return out[i].CreatedAt.After(out[j].CreatedAt)
				}
				return out[i].CreatedAt.Before(out[j].CreatedAt)
			})
		case specification.Pagination:
			if s.Offset >= len(out) {
				return nil, nil
			}
			out = out[s.Offset:]
			if s.Limit > 0 && s.Limit < len(out) {
				out = out[:s.Limit]
			}
		}
	}
	return out, nil
}

func (r *memOrders) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

func matches(o *entity.Order, specs []specification.Specification) bool {
	for _, s := range specs {
		switch s := s.(type) {
		case specification.ByID:
			if o.Id != s.ID {
				return false
			}
		case specification.ByCallID:
			if o.CallId != s.CallID {
				return false
			}
		case specification.ByStatus:
			if o.Status != s.Status {
				return false
			}
		}
	}
	return true
}

type memUnitOfWork struct {
	f *memFactory
}

func (u memUnitOfWork) Begin(context.Context) error { return u.f.record("begin") }
func (u memUnitOfWork) Commit() error               { return u.f.record("commit") }
func (u memUnitOfWork) Rollback() error             { return u.f.record("rollback") }

func (u memUnitOfWork) OrderRepository() contract.OrderRepository { return u.f.orders }

type memFactory struct {
	orders *memOrders

	mu sync.Mutex
	tx []string
}

func newMemFactory() *memFactory {
	return &memFactory{orders: &memOrders{}}
}

func (f *memFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return memUnitOfWork{f: f}
}

func (f *memFactory) record(step string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tx = append(f.tx, step)
	return nil
}

func (f *memFactory) transactions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tx...)
}

type kitchenMessage struct {
	Type string
	Data interface{}
}

type recordingKitchen struct {
	mu       sync.Mutex
	messages []kitchenMessage
}

func (k *recordingKitchen) Broadcast(_ context.Context, msgType string, data interface{}) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.messages = append(k.messages, kitchenMessage{Type: msgType, Data: data})
	return nil
}

func (k *recordingKitchen) count() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.messages)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type recordingMailer struct {
	mu   sync.Mutex
	to   []string
	sent []mailer.KitchenOrder
}

func (m *recordingMailer) SendKitchenOrder(to string, order mailer.KitchenOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.to = append(m.to, to)
	m.sent = append(m.sent, order)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}
