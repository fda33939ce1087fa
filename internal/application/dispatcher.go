package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"gourmet-dialog-bot/internal/domain"
	"gourmet-dialog-bot/internal/domain/model"
	"gourmet-dialog-bot/internal/domain/ports/adapter"
	"gourmet-dialog-bot/internal/domain/ports/repository"
	"gourmet-dialog-bot/internal/infra/i18n"
	"gourmet-dialog-bot/internal/infra/logging"
	"gourmet-dialog-bot/internal/infra/metrics"
	"gourmet-dialog-bot/internal/usecase"
)

const lockTTL = 30 * time.Second

// Dispatcher maps inbound channel activities onto the dialog engine.
// Only message activities reach the engine; system events are acknowledged
// and dropped. Each turn is serialized per conversation id.
type Dispatcher struct {
	engine        usecase.DialogEngine
	conversations repository.ConversationRepository
	locker        repository.Locker
	sender        adapter.MessageSender
	turns         repository.TurnLogRepository // optional, may be nil
	tr            *i18n.Translator
	log           *zerolog.Logger
	startedAt     time.Time
}

// Stats is the admin-facing snapshot of dispatcher state.
type Stats struct {
	ActiveConversations int           `json:"active_conversations"`
	Uptime              time.Duration `json:"uptime"`
}

func NewDispatcher(
	engine usecase.DialogEngine,
	conversations repository.ConversationRepository,
	locker repository.Locker,
	sender adapter.MessageSender,
	turns repository.TurnLogRepository,
	tr *i18n.Translator,
	logger *zerolog.Logger,
) (*Dispatcher, error) {
	if engine == nil {
		return nil, errors.New("dialog engine is nil")
	}
	if conversations == nil {
		return nil, errors.New("conversation repository is nil")
	}
	if locker == nil {
		return nil, errors.New("locker is nil")
	}
	if sender == nil {
		return nil, errors.New("message sender is nil")
	}
	dispLog := logger.With().Str("component", "Dispatcher").Logger()
	return &Dispatcher{
		engine:        engine,
		conversations: conversations,
		locker:        locker,
		sender:        sender,
		turns:         turns,
		tr:            tr,
		log:           &dispLog,
		startedAt:     time.Now(),
	}, nil
}

// HandleActivity processes one inbound activity end to end. The transport
// acknowledgment has already been decoupled by the caller; errors reported
// here are for logging, not for the channel.
func (d *Dispatcher) HandleActivity(ctx context.Context, act *model.Activity) error {
	if act == nil || strings.TrimSpace(act.ConversationID) == "" {
		return domain.ErrMalformedActivity
	}
	ctx = logging.WithConversationID(ctx, act.ConversationID)
	log := logging.With(ctx, d.log)
	defer logging.TraceDuration(log, "Dispatcher.HandleActivity")()

	if !act.IsMessage() {
		metrics.IncSystemEvent(string(act.Type))
		log.Debug().Str("type", string(act.Type)).Msg("system activity acknowledged")
		return nil
	}
	if strings.TrimSpace(act.Text) == "" {
		return domain.ErrMalformedActivity
	}

	token, err := d.locker.TryLock(ctx, lockKey(act.ConversationID), lockTTL)
	if err != nil {
		return fmt.Errorf("lock conversation %s: %w", act.ConversationID, err)
	}
	defer func() {
		if err := d.locker.Unlock(context.WithoutCancel(ctx), lockKey(act.ConversationID), token); err != nil {
			log.Warn().Err(err).Msg("unlock failed")
		}
	}()

	conv, err := d.conversations.Get(ctx, act.ConversationID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("load conversation: %w", err)
		}
		conv = model.NewConversation(act.ConversationID)
	}

	d.appendTurn(ctx, act.ConversationID, model.TurnInbound, act.Text)

	replies, err := d.engine.HandleMessage(ctx, conv, act.Text)
	if err != nil {
		if errors.Is(err, domain.ErrClassifierUnavailable) {
			// The turn fails without side effects: apologise, keep the
			// pre-message state so the user can simply retry.
			metrics.IncTurn("error")
			log.Warn().Err(err).Msg("classifier unavailable; turn dropped")
			d.deliver(ctx, act.ConversationID, d.tr.T("classifier_unavailable"))
			return nil
		}
		return fmt.Errorf("handle message: %w", err)
	}

	if err := d.conversations.Save(ctx, conv); err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	for _, reply := range replies {
		d.deliver(ctx, act.ConversationID, reply)
	}
	return nil
}

// CurrentStats reports the active conversation count and uptime.
func (d *Dispatcher) CurrentStats(ctx context.Context) (Stats, error) {
	n, err := d.conversations.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count conversations: %w", err)
	}
	return Stats{ActiveConversations: n, Uptime: time.Since(d.startedAt)}, nil
}

func (d *Dispatcher) deliver(ctx context.Context, conversationID, text string) {
	if err := d.sender.Send(ctx, conversationID, text); err != nil {
		// Fire-and-forget: delivery retries are the channel's problem.
		d.log.Error().Err(err).Str("conversation_id", conversationID).Msg("send failed")
		return
	}
	d.appendTurn(ctx, conversationID, model.TurnOutbound, text)
}

func (d *Dispatcher) appendTurn(ctx context.Context, conversationID string, dir model.TurnDirection, text string) {
	if d.turns == nil {
		return
	}
	rec := &model.TurnRecord{
		ConversationID: conversationID,
		Direction:      dir,
		Text:           text,
		CreatedAt:      time.Now(),
	}
	if err := d.turns.Append(ctx, rec); err != nil {
		d.log.Warn().Err(err).Msg("turn log append failed")
	}
}

func lockKey(conversationID string) string {
	return "conv_lock:" + conversationID
}
