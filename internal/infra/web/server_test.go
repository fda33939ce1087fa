package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"gourmet-dialog-bot/internal/application"
	"gourmet-dialog-bot/internal/config"
	"gourmet-dialog-bot/internal/domain/model"
	"gourmet-dialog-bot/internal/infra/i18n"
	"gourmet-dialog-bot/internal/infra/memory"
	"gourmet-dialog-bot/internal/usecase"
)

type fakeClassifier struct{}

func (f *fakeClassifier) Classify(_ context.Context, _ string) (*model.IntentResult, error) {
	return &model.IntentResult{}, nil
}

type nopSender struct{}

func (nopSender) Send(context.Context, string, string) error { return nil }

type memTurnLog struct {
	records []*model.TurnRecord
}

func (m *memTurnLog) Append(_ context.Context, rec *model.TurnRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memTurnLog) ListByConversation(_ context.Context, id string, limit int) ([]*model.TurnRecord, error) {
	var out []*model.TurnRecord
	for _, rec := range m.records {
		if rec.ConversationID == id && len(out) < limit {
			out = append(out, rec)
		}
	}
	return out, nil
}

func newTestRouter(t *testing.T, turns *memTurnLog) chi.Router {
	t.Helper()
	logger := zerolog.Nop()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "ja")
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	engine := usecase.NewDialogEngine(&fakeClassifier{}, tr, config.DialogConfig{
		QueryIntent:    "getRestaurant",
		ResetTrigger:   "リセット",
		YesWords:       []string{"はい"},
		NoWords:        []string{"いいえ"},
		PromptAttempts: 3,
	}, usecase.RestaurantSlots(), &logger)
	disp, err := application.NewDispatcher(engine, memory.NewConversationRepo(0), memory.NewKeyedLocker(), nopSender{}, nil, tr, &logger)
	if err != nil {
		t.Fatalf("dispatcher: %v", err)
	}

	auth := NewAuthManager("test-secret", false, 30*time.Minute)
	var srv *Server
	if turns != nil {
		srv = NewServer(disp, turns, auth, "hunter2", &logger)
	} else {
		srv = NewServer(disp, nil, auth, "hunter2", &logger)
	}

	r := chi.NewRouter()
	srv.RegisterRoutes(r)
	return r
}

func login(t *testing.T, router chi.Router, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"password": password})
	req := httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	router := newTestRouter(t, nil)
	rec := login(t, router, "wrong")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("no session cookie should be set on failed login")
	}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	router := newTestRouter(t, nil)
	rec := login(t, router, "hunter2")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "admin_session" || cookies[0].Value == "" {
		t.Fatalf("expected admin_session cookie, got %v", cookies)
	}
}

func TestStatsRequiresAuth(t *testing.T) {
	router := newTestRouter(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestStatsWithSessionCookie(t *testing.T) {
	router := newTestRouter(t, nil)
	loginRec := login(t, router, "hunter2")
	cookie := loginRec.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		ActiveConversations int    `json:"active_conversations"`
		Uptime              string `json:"uptime"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if resp.ActiveConversations != 0 {
		t.Fatalf("expected 0 active conversations, got %d", resp.ActiveConversations)
	}
}

func TestTurnsEndpoint(t *testing.T) {
	turns := &memTurnLog{records: []*model.TurnRecord{
		{ID: "t1", ConversationID: "conv-1", Direction: model.TurnInbound, Text: "やあ"},
		{ID: "t2", ConversationID: "conv-1", Direction: model.TurnOutbound, Text: "'やあ'と1回言いました"},
		{ID: "t3", ConversationID: "conv-2", Direction: model.TurnInbound, Text: "別の会話"},
	}}
	router := newTestRouter(t, turns)
	cookie := login(t, router, "hunter2").Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/admin/conversations/conv-1/turns", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Data []*model.TurnRecord `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode turns: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("expected 2 turns for conv-1, got %d", len(resp.Data))
	}
}

func TestBearerTokenAlsoAccepted(t *testing.T) {
	router := newTestRouter(t, nil)
	loginRec := login(t, router, "hunter2")
	token := loginRec.Result().Cookies()[0].Value

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
