package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"gourmet-dialog-bot/internal/domain"
	"gourmet-dialog-bot/internal/domain/ports/repository"
)

var _ repository.Locker = (*KeyedLocker)(nil)

// KeyedLocker is the single-process Locker: one token per key, with a few
// short retries before giving up, mirroring the redis variant's behavior.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]lockEntry
}

type lockEntry struct {
	token     string
	expiresAt time.Time
}

func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[string]lockEntry)}
}

func (l *KeyedLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	for i := 0; i < 5; i++ { // 5 tries
		if l.acquire(key, token, ttl) {
			return token, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(50 * time.Millisecond): // wait before retrying
		}
	}
	return "", domain.ErrConversationBusy
}

func (l *KeyedLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.locks[key]; ok && e.token == token {
		delete(l.locks, key)
	}
	return nil
}

func (l *KeyedLocker) acquire(key, token string, ttl time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.locks[key]; ok && time.Now().Before(e.expiresAt) {
		return false
	}
	l.locks[key] = lockEntry{token: token, expiresAt: time.Now().Add(ttl)}
	return true
}
