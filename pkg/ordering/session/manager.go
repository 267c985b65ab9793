package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"phone-order-be/pkg/store"
)

// ErrSessionBusy is returned when a turn for the same call is still in flight
// and the caller's context ended while waiting for it.
var ErrSessionBusy = errors.New("session busy")

// LockRetry is how often Acquire retries a call held by another process.
const LockRetry = 20 * time.Millisecond

// Repository is the storage the manager needs. TryLock claims a call for the
// caller across every process sharing the store; ok is false while someone
// else holds it. The returned release must be called exactly once.
type Repository interface {
	Get(ctx context.Context, callID string) (*store.Session, error)
	Save(ctx context.Context, session *store.Session) error
	Delete(ctx context.Context, callID string) error
	TryLock(ctx context.Context, callID string) (release func(), ok bool, err error)
}

// Manager hands out exclusive leases on call sessions. At most one lease per
// call id exists at a time; other callers wait for it.
type Manager struct {
	repo  Repository
	now   func() time.Time
	retry time.Duration

	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

func NewManager(repo Repository) *Manager {
	return &Manager{
		repo:  repo,
		now:   time.Now,
		retry: LockRetry,
		locks: make(map[string]*keyLock),
	}
}

// Acquire blocks until the call is free, in this process and in the shared
// store, then loads its session (creating it on first contact). The lease must
// be released.
func (m *Manager) Acquire(ctx context.Context, callID string) (*Lease, error) {
	kl := m.ref(callID)
	select {
	case kl.sem <- struct{}{}:
	case <-ctx.Done():
		m.unref(callID, kl)
		return nil, fmt.Errorf("%w: %s: %v", ErrSessionBusy, callID, ctx.Err())
	}

	unlock, err := m.lockShared(ctx, callID)
	if err != nil {
		<-kl.sem
		m.unref(callID, kl)
		return nil, err
	}

	lease := &Lease{manager: m, callID: callID, lock: kl, unlock: unlock}
	sess, err := m.repo.Get(ctx, callID)
	if err != nil {
		lease.Release()
		return nil, fmt.Errorf("load session %s: %w", callID, err)
	}
	if sess == nil {
		sess = store.NewSession(callID, m.now())
		lease.Created = true
	} else {
		sess = sess.Clone()
	}
	lease.Session = sess
	return lease, nil
}

// lockShared polls the repository lock until it is granted or ctx ends.
func (m *Manager) lockShared(ctx context.Context, callID string) (func(), error) {
	for {
		release, ok, err := m.repo.TryLock(ctx, callID)
		if err != nil {
			return nil, fmt.Errorf("lock session %s: %w", callID, err)
		}
		if ok {
			return release, nil
		}
		timer := time.NewTimer(m.retry)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %s: %v", ErrSessionBusy, callID, ctx.Err())
		}
	}
}

// End removes a call's session once nothing else holds it.
func (m *Manager) End(ctx context.Context, callID string) error {
	lease, err := m.Acquire(ctx, callID)
	if err != nil {
		return err
	}
	defer lease.Release()
	return lease.Discard(ctx)
}

// Active reports how many call ids currently have a holder or waiter.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

func (m *Manager) ref(callID string) *keyLock {
	m.mu.Lock()
	defer m.mu.Unlock()
	kl, ok := m.locks[callID]
	if !ok {
		kl = &keyLock{sem: make(chan struct{}, 1)}
		m.locks[callID] = kl
	}
	kl.refs++
	return kl
}

func (m *Manager) unref(callID string, kl *keyLock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(m.locks, callID)
	}
}

// Lease is exclusive access to one call's session. Session is a private copy;
// nothing reaches the repository until Save.
type Lease struct {
	Session *store.Session
	Created bool

	manager *Manager
	callID  string
	lock    *keyLock
	unlock  func()
	once    sync.Once
}

// Save writes the session back.
func (l *Lease) Save(ctx context.Context) error {
	l.Session.UpdatedAt = l.manager.now()
	if err := l.manager.repo.Save(ctx, l.Session); err != nil {
		return fmt.Errorf("save session %s: %w", l.callID, err)
	}
	return nil
}

// Discard deletes the stored session.
func (l *Lease) Discard(ctx context.Context) error {
	if err := l.manager.repo.Delete(ctx, l.callID); err != nil {
		return fmt.Errorf("delete session %s: %w", l.callID, err)
	}
	return nil
}

// Release frees the call for the next turn. Safe to call more than once.
func (l *Lease) Release() {
	l.once.Do(func() {
		l.unlock()
		<-l.lock.sem
		l.manager.unref(l.callID, l.lock)
	})
}
