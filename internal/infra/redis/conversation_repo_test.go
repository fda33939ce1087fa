//go:build !integration

package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"gourmet-dialog-bot/internal/config"
	"gourmet-dialog-bot/internal/domain"
	"gourmet-dialog-bot/internal/domain/model"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()
	cfg := config.RedisConfig{URL: "localhost:6379", DB: 1}
	cli, err := NewClient(ctx, &cfg)
	if err != nil {
		t.Skip("redis not available:", err)
	}
	return cli
}

func TestConversationRepoRoundTrip(t *testing.T) {
	ctx := context.Background()
	cli := testClient(t)
	repo := NewConversationRepo(cli, time.Minute)

	id := uuid.NewString()
	t.Cleanup(func() { _ = repo.Delete(context.Background(), id) })

	if _, err := repo.Get(ctx, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get missing: err = %v, want ErrNotFound", err)
	}

	conv := model.NewConversation(id)
	conv.AwaitSlot(model.SlotArea)
	conv.SetSlot(model.SlotGourmetCategory, "イタリアン")
	conv.EchoCount = 7
	if err := repo.Save(ctx, conv); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.State != model.StateAwaitingSlot || got.PendingSlot != model.SlotArea {
		t.Errorf("pending continuation lost: state=%s slot=%s", got.State, got.PendingSlot)
	}
	if v, ok := got.Slot(model.SlotGourmetCategory); !ok || v != "イタリアン" {
		t.Errorf("slot = %q ok=%v", v, ok)
	}
	if got.EchoCount != 7 {
		t.Errorf("echo count = %d, want 7", got.EchoCount)
	}
}

func TestLockerMutualExclusion(t *testing.T) {
	ctx := context.Background()
	cli := testClient(t)
	locker := NewLocker(cli)

	key := "conv_lock:" + uuid.NewString()
	token, err := locker.TryLock(ctx, key, 5*time.Second)
	if err != nil {
		t.Fatalf("TryLock: %v", err)
	}
	t.Cleanup(func() { _ = locker.Unlock(context.Background(), key, token) })

	if _, err := locker.TryLock(ctx, key, 5*time.Second); !errors.Is(err, domain.ErrConversationBusy) {
		t.Errorf("second TryLock: err = %v, want ErrConversationBusy", err)
	}

	if err := locker.Unlock(ctx, key, token); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if _, err := locker.TryLock(ctx, key, 5*time.Second); err != nil {
		t.Errorf("TryLock after unlock: %v", err)
	}
}
