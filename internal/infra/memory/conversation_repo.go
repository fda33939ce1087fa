package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"gourmet-dialog-bot/internal/domain"
	"gourmet-dialog-bot/internal/domain/model"
	"gourmet-dialog-bot/internal/domain/ports/repository"
)

var _ repository.ConversationRepository = (*ConversationRepo)(nil)

// ConversationRepo is the in-process conversation store. Entries expire
// after an idle TTL so memory stays bounded; an expired conversation simply
// starts over on its next message. ttl <= 0 disables expiry.
type ConversationRepo struct {
	mu    sync.RWMutex
	items map[string]*entry
	ttl   time.Duration
}

type entry struct {
	conv      *model.Conversation
	expiresAt time.Time
}

func NewConversationRepo(ttl time.Duration) *ConversationRepo {
	return &ConversationRepo{
		items: make(map[string]*entry),
		ttl:   ttl,
	}
}

func (r *ConversationRepo) Get(ctx context.Context, id string) (*model.Conversation, error) {
	r.mu.RLock()
	e, ok := r.items[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	if r.expired(e) {
		r.mu.Lock()
		delete(r.items, id)
		r.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	return e.conv, nil
}

func (r *ConversationRepo) Save(ctx context.Context, conv *model.Conversation) error {
	if conv == nil || conv.ID == "" {
		return domain.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[conv.ID] = &entry{conv: conv, expiresAt: r.deadline()}
	return nil
}

func (r *ConversationRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *ConversationRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, e := range r.items {
		if !r.expired(e) {
			n++
		}
	}
	return n, nil
}

// StartJanitor sweeps expired entries until ctx is canceled.
func (r *ConversationRepo) StartJanitor(ctx context.Context, interval time.Duration, logger *zerolog.Logger) {
	if r.ttl <= 0 {
		return
	}
	janLog := logger.With().Str("component", "ConversationJanitor").Logger()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.sweep(); n > 0 {
				janLog.Debug().Int("evicted", n).Msg("expired conversations swept")
			}
		}
	}
}

func (r *ConversationRepo) sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.items {
		if r.expired(e) {
			delete(r.items, id)
			n++
		}
	}
	return n
}

func (r *ConversationRepo) expired(e *entry) bool {
	return r.ttl > 0 && time.Now().After(e.expiresAt)
}

func (r *ConversationRepo) deadline() time.Time {
	if r.ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(r.ttl)
}
