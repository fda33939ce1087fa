package repository

import (
	"context"

	"gourmet-dialog-bot/internal/domain/model"
)

// ConversationRepository is the port for the keyed conversation store.
// Get returns domain.ErrNotFound for unknown or expired ids.
// Stores enforce an idle TTL; an expired conversation simply starts over.
type ConversationRepository interface {
	Get(ctx context.Context, id string) (*model.Conversation, error)
	Save(ctx context.Context, conv *model.Conversation) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
