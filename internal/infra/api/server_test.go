package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"gourmet-dialog-bot/internal/application"
	"gourmet-dialog-bot/internal/config"
	"gourmet-dialog-bot/internal/domain/model"
	"gourmet-dialog-bot/internal/infra/i18n"
	"gourmet-dialog-bot/internal/infra/memory"
	"gourmet-dialog-bot/internal/infra/worker"
	"gourmet-dialog-bot/internal/usecase"
)

type fakeClassifier struct{}

func (f *fakeClassifier) Classify(_ context.Context, _ string) (*model.IntentResult, error) {
	return &model.IntentResult{}, nil
}

type recordingSender struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordingSender) Send(_ context.Context, _ string, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, text)
	return nil
}

func (r *recordingSender) texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.sent))
	copy(out, r.sent)
	return out
}

func newTestServer(t *testing.T) (*Server, *recordingSender, *worker.Pool) {
	t.Helper()
	logger := zerolog.Nop()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "ja")
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	dialogCfg := config.DialogConfig{
		QueryIntent:         "getRestaurant",
		ResetTrigger:        "リセット",
		YesWords:            []string{"はい"},
		NoWords:             []string{"いいえ"},
		PromptAttempts:      3,
		ConfidenceThreshold: 0.5,
	}
	engine := usecase.NewDialogEngine(&fakeClassifier{}, tr, dialogCfg, usecase.RestaurantSlots(), &logger)
	sender := &recordingSender{}
	disp, err := application.NewDispatcher(engine, memory.NewConversationRepo(0), memory.NewKeyedLocker(), sender, nil, tr, &logger)
	if err != nil {
		t.Fatalf("dispatcher: %v", err)
	}
	pool := worker.NewPool(2, 8, &logger)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	t.Cleanup(func() {
		cancel()
		pool.Stop()
	})
	return NewServer(disp, pool, &logger), sender, pool
}

func TestHandleMessagesAcceptsAndProcesses(t *testing.T) {
	srv, sender, _ := newTestServer(t)
	router := srv.Router()

	body, _ := json.Marshal(model.Activity{
		ConversationID: "conv-1",
		Type:           model.ActivityMessage,
		Text:           "やあ",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	var ack map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &ack); err != nil {
		t.Fatalf("decode ack: %v", err)
	}
	if ack["status"] != "accepted" {
		t.Fatalf("unexpected ack %v", ack)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if texts := sender.texts(); len(texts) == 1 {
			if texts[0] != "'やあ'と1回言いました" {
				t.Fatalf("unexpected reply %q", texts[0])
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("reply was never delivered")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHandleMessagesMalformedBodyStillAccepted(t *testing.T) {
	srv, sender, _ := newTestServer(t)
	router := srv.Router()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	time.Sleep(50 * time.Millisecond)
	if texts := sender.texts(); len(texts) != 0 {
		t.Fatalf("malformed body must not reach the dialog engine, got %v", texts)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)
	router := srv.Router()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
