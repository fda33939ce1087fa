package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/oklog/ulid/v2"

	"gourmet-dialog-bot/internal/domain/model"
	"gourmet-dialog-bot/internal/domain/ports/repository"
)

var _ repository.TurnLogRepository = (*turnLogRepo)(nil)

// turnLogRepo is the append-only audit log of message turns.
//
// Schema:
//
//	CREATE TABLE dialog_turns (
//	    id              TEXT PRIMARY KEY,
//	    conversation_id TEXT NOT NULL,
//	    direction       TEXT NOT NULL,
//	    text            TEXT NOT NULL,
//	    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE INDEX dialog_turns_conversation_idx ON dialog_turns (conversation_id, created_at);
type turnLogRepo struct {
	pool *pgxpool.Pool
}

func NewTurnLogRepo(pool *pgxpool.Pool) repository.TurnLogRepository {
	return &turnLogRepo{pool: pool}
}

func (r *turnLogRepo) Append(ctx context.Context, rec *model.TurnRecord) error {
	const q = `
INSERT INTO dialog_turns (id, conversation_id, direction, text, created_at)
VALUES ($1, $2, $3, $4, $5)`

	if rec.ID == "" {
		// ULIDs keep the log sortable by insertion order.
		rec.ID = ulid.Make().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := r.pool.Exec(ctx, q, rec.ID, rec.ConversationID, string(rec.Direction), rec.Text, rec.CreatedAt)
	return err
}

func (r *turnLogRepo) ListByConversation(ctx context.Context, conversationID string, limit int) ([]*model.TurnRecord, error) {
	const q = `
SELECT id, conversation_id, direction, text, created_at
FROM dialog_turns
WHERE conversation_id = $1
ORDER BY created_at ASC, id ASC
LIMIT $2`

	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, q, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.TurnRecord
	for rows.Next() {
		var rec model.TurnRecord
		var dir string
		if err := rows.Scan(&rec.ID, &rec.ConversationID, &dir, &rec.Text, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Direction = model.TurnDirection(dir)
		out = append(out, &rec)
	}
	return out, rows.Err()
}
