package contract

import (
	"context"

	"phone-order-be/pkg/store"
)

// CallSessionRepository stores dialogue sessions keyed by call id. Get
// returns (nil, nil) when the call has no session. TryLock grants one holder
// per call id among all processes sharing the store; release is called once.
type CallSessionRepository interface {
	Get(ctx context.Context, callID string) (*store.Session, error)
	Save(ctx context.Context, session *store.Session) error
	Delete(ctx context.Context, callID string) error
	TryLock(ctx context.Context, callID string) (release func(), ok bool, err error)
}
