//go:build !integration

package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"gourmet-dialog-bot/internal/domain/model"
)

func testPool(t *testing.T) *turnLogRepo {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	pool, err := NewPgxPool(context.Background(), dsn, 2)
	if err != nil {
		t.Skip("postgres not available:", err)
	}
	t.Cleanup(pool.Close)
	return &turnLogRepo{pool: pool}
}

func TestTurnLogAppendAndList(t *testing.T) {
	ctx := context.Background()
	repo := testPool(t)

	convID := uuid.NewString()
	turns := []*model.TurnRecord{
		{ConversationID: convID, Direction: model.TurnInbound, Text: "東京でイタリアン"},
		{ConversationID: convID, Direction: model.TurnOutbound, Text: "東京のイタリアンを探しますね"},
	}
	for _, rec := range turns {
		if err := repo.Append(ctx, rec); err != nil {
			t.Fatalf("Append: %v", err)
		}
		if rec.ID == "" {
			t.Fatal("Append did not assign an id")
		}
	}

	got, err := repo.ListByConversation(ctx, convID, 10)
	if err != nil {
		t.Fatalf("ListByConversation: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Direction != model.TurnInbound || got[1].Direction != model.TurnOutbound {
		t.Errorf("order = %s,%s; want inbound,outbound", got[0].Direction, got[1].Direction)
	}
}
