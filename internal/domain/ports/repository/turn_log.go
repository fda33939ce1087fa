package repository

import (
	"context"

	"gourmet-dialog-bot/internal/domain/model"
)

// TurnLogRepository is the port for the optional append-only turn audit log.
type TurnLogRepository interface {
	Append(ctx context.Context, rec *model.TurnRecord) error
	ListByConversation(ctx context.Context, conversationID string, limit int) ([]*model.TurnRecord, error)
}
