package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"gourmet-dialog-bot/internal/domain"
	"gourmet-dialog-bot/internal/domain/model"
	"gourmet-dialog-bot/internal/domain/ports/repository"
)

var _ repository.ConversationRepository = (*ConversationRepo)(nil)

const convKeyPrefix = "conv_state:"

// ConversationRepo keeps conversation state in Redis. Each conversation is
// one JSON value under its own key; the idle TTL is enforced natively by
// Redis, refreshed on every save.
type ConversationRepo struct {
	client *Client
	ttl    time.Duration
}

func NewConversationRepo(client *Client, ttl time.Duration) *ConversationRepo {
	if ttl <= 0 {
		ttl = 15 * time.Minute // give users time to complete a flow
	}
	return &ConversationRepo{client: client, ttl: ttl}
}

func convKey(id string) string { return convKeyPrefix + id }

func (r *ConversationRepo) Get(ctx context.Context, id string) (*model.Conversation, error) {
	data, err := r.client.Get(ctx, convKey(id))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var conv model.Conversation
	if err := json.Unmarshal([]byte(data), &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *ConversationRepo) Save(ctx context.Context, conv *model.Conversation) error {
	if conv == nil || conv.ID == "" {
		return domain.ErrInvalidArgument
	}
	data, err := json.Marshal(conv)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, convKey(conv.ID), data, r.ttl)
}

func (r *ConversationRepo) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, convKey(id))
}

func (r *ConversationRepo) Count(ctx context.Context) (int, error) {
	keys, err := r.client.Keys(ctx, convKeyPrefix+"*")
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}
