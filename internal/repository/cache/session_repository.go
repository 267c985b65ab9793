package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"phone-order-be/internal/repository/contract"
	"phone-order-be/pkg/store"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "phone-order:session:"
	lockPrefix = "phone-order:lock:"
)

// unlockScript deletes the lock only while it still carries the holder's
// token, so an expired holder cannot free a lock someone else took over.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisSessionRepository shares sessions between instances. Each save
// refreshes the idle TTL. Turns are serialized across instances by a lock key
// that expires after lockTTL if its holder dies.
type RedisSessionRepository struct {
	rdb     *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
}

func NewRedisSessionRepository(rdb *redis.Client, ttl, lockTTL time.Duration) contract.CallSessionRepository {
	return &RedisSessionRepository{rdb: rdb, ttl: ttl, lockTTL: lockTTL}
}

func (r *RedisSessionRepository) Get(ctx context.Context, callID string) (*store.Session, error) {
	raw, err := r.rdb.Get(ctx, keyPrefix+callID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get session %s: %w", callID, err)
	}
	var sess store.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", callID, err)
	}
	return &sess, nil
}

func (r *RedisSessionRepository) Save(ctx context.Context, session *store.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.CallID, err)
	}
	if err := r.rdb.Set(ctx, keyPrefix+session.CallID, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session %s: %w", session.CallID, err)
	}
	return nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, callID string) error {
	return r.rdb.Del(ctx, keyPrefix+callID).Err()
}

func (r *RedisSessionRepository) TryLock(ctx context.Context, callID string) (func(), bool, error) {
	key := lockPrefix + callID
	token := uuid.NewString()
	ok, err := r.rdb.SetNX(ctx, key, token, r.lockTTL).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis lock session %s: %w", callID, err)
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = unlockScript.Run(ctx, r.rdb, []string{key}, token).Err()
	}
	return release, true, nil
}
