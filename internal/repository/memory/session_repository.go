package memory

import (
	"context"
	"time"

	"phone-order-be/internal/repository/contract"
	"phone-order-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
}

// NewSessionRepository keeps sessions for ttl after their last save and
// purges expired ones every ttl/6 (at least one minute).
func NewSessionRepository(ttl time.Duration) contract.CallSessionRepository {
	cleanup := ttl / 6
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &SessionRepository{
		cache: cache.New(ttl, cleanup),
	}
}

// Sessions are cloned on the way in and out so callers never share a
// pointer with the cache.
func (r *SessionRepository) Save(ctx context.Context, session *store.Session) error {
	r.cache.Set(session.CallID, session.Clone(), cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, callID string) (*store.Session, error) {
	if x, found := r.cache.Get(callID); found {
		return x.(*store.Session).Clone(), nil
	}
	return nil, nil
}

func (r *SessionRepository) Delete(ctx context.Context, callID string) error {
	r.cache.Delete(callID)
	return nil
}

// TryLock always succeeds: the cache lives in one process, where the session
// manager already serializes turns per call.
func (r *SessionRepository) TryLock(ctx context.Context, callID string) (func(), bool, error) {
	return func() {}, true, nil
}
