// File: internal/usecase/dialog_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"gourmet-dialog-bot/internal/config"
	"gourmet-dialog-bot/internal/domain/model"
	"gourmet-dialog-bot/internal/domain/ports/adapter"
	"gourmet-dialog-bot/internal/infra/i18n"
	"gourmet-dialog-bot/internal/infra/metrics"
)

// Compile-time check
var _ DialogEngine = (*dialogEngine)(nil)

// DialogEngine drives one turn of the per-conversation state machine.
// HandleMessage mutates conv and returns the outbound messages for the turn.
// When the classifier is unavailable it returns domain.ErrClassifierUnavailable
// with conv untouched, so the caller can apologise and let the user retry.
type DialogEngine interface {
	HandleMessage(ctx context.Context, conv *model.Conversation, text string) ([]string, error)
}

// SlotSpec describes one piece of information the dialog collects and the
// translation keys for its prompt and re-prompt.
type SlotSpec struct {
	Name        string
	PromptKey   string
	RepromptKey string
}

// RestaurantSlots is the slot set for the restaurant query flow.
func RestaurantSlots() []SlotSpec {
	return []SlotSpec{
		{Name: model.SlotArea, PromptKey: "prompt_area", RepromptKey: "reprompt_area"},
		{Name: model.SlotGourmetCategory, PromptKey: "prompt_gourmetCategory", RepromptKey: "reprompt_gourmetCategory"},
	}
}

type dialogEngine struct {
	classifier adapter.IntentClassifier
	tr         *i18n.Translator
	cfg        config.DialogConfig
	slots      []SlotSpec
	yesWords   map[string]struct{}
	noWords    map[string]struct{}
	log        *zerolog.Logger
}

func NewDialogEngine(classifier adapter.IntentClassifier, tr *i18n.Translator, cfg config.DialogConfig, slots []SlotSpec, logger *zerolog.Logger) *dialogEngine {
	engLog := logger.With().Str("component", "DialogEngine").Logger()
	return &dialogEngine{
		classifier: classifier,
		tr:         tr,
		cfg:        cfg,
		slots:      slots,
		yesWords:   toSet(cfg.YesWords),
		noWords:    toSet(cfg.NoWords),
		log:        &engLog,
	}
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return set
}

func (e *dialogEngine) HandleMessage(ctx context.Context, conv *model.Conversation, text string) ([]string, error) {
	from := conv.State
	replies, err := e.handle(ctx, conv, text)
	if err == nil && conv.State != from {
		metrics.IncTransition(string(from), string(conv.State))
	}
	return replies, err
}

func (e *dialogEngine) handle(ctx context.Context, conv *model.Conversation, text string) ([]string, error) {
	switch conv.State {
	case model.StateAwaitingConfirmation:
		return e.handleConfirmation(conv, text), nil
	case model.StateAwaitingSlot:
		return e.handleSlotReply(conv, text), nil
	default:
		return e.handleIdle(ctx, conv, text)
	}
}

// handleIdle classifies free text and picks a branch: reset confirmation,
// slot filling, candidate fallback or the echo loop.
func (e *dialogEngine) handleIdle(ctx context.Context, conv *model.Conversation, text string) ([]string, error) {
	trimmed := strings.TrimSpace(text)

	// The reset trigger is a literal token; it must work even when the
	// NLU service is down, so it is checked before classification.
	if trimmed == e.cfg.ResetTrigger {
		conv.AwaitConfirmation("reset")
		metrics.IncTurn("confirm_prompted")
		return []string{e.tr.T("reset_confirm")}, nil
	}

	res, err := e.classifier.Classify(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	if top, ok := res.TopIntent(); ok && top.Name == e.cfg.QueryIntent && top.Confidence >= e.cfg.ConfidenceThreshold {
		return e.handleQueryIntent(conv, res), nil
	}

	if len(res.Intents) > 0 {
		// Recognizable candidates, none actionable: list them back.
		metrics.IncTurn("fallback")
		return []string{e.tr.T("unknown_intent", strings.Join(res.IntentNames(), ", "))}, nil
	}

	// Unmatched message: echo with the running per-conversation counter.
	n := conv.EchoCount
	conv.EchoCount++
	conv.Touch()
	metrics.IncTurn("echoed")
	return []string{e.tr.T("echo_reply", trimmed, n)}, nil
}

func (e *dialogEngine) handleQueryIntent(conv *model.Conversation, res *model.IntentResult) []string {
	found := 0
	for _, spec := range e.slots {
		if v, ok := res.Entity(spec.Name); ok {
			conv.SetSlot(spec.Name, v)
			found++
		}
	}

	if found == 0 && !e.anySlotFilled(conv) {
		metrics.IncTurn("insufficient")
		return []string{e.tr.T("insufficient_info")}
	}

	missing := e.missingSlots(conv)
	if len(missing) == 0 {
		return []string{e.resolve(conv)}
	}

	next := missing[0]
	conv.AwaitSlot(next.Name)
	metrics.IncTurn("prompted")
	return []string{e.tr.T(next.PromptKey)}
}

// handleSlotReply treats the whole message as the literal value for the
// pending slot. Blank input consumes an attempt and re-prompts; exhausting
// the bound exits slot filling with the collected values kept.
func (e *dialogEngine) handleSlotReply(conv *model.Conversation, text string) []string {
	value := strings.TrimSpace(text)
	if value == "" {
		if conv.Attempts >= e.cfg.PromptAttempts {
			e.log.Debug().Str("slot", conv.PendingSlot).Msg("prompt attempts exhausted")
			conv.BackToIdle()
			metrics.IncTurn("exhausted")
			return []string{e.tr.T("prompt_exhausted")}
		}
		conv.Attempts++
		conv.Touch()
		metrics.IncPromptRetry()
		return []string{e.tr.T(e.repromptKey(conv.PendingSlot))}
	}

	conv.SetSlot(conv.PendingSlot, value)

	missing := e.missingSlots(conv)
	if len(missing) == 0 {
		return []string{e.resolve(conv)}
	}
	// Unreachable with two slots; with N slots move to the next missing one.
	next := missing[0]
	conv.AwaitSlot(next.Name)
	metrics.IncTurn("prompted")
	return []string{e.tr.T(next.PromptKey)}
}

// handleConfirmation interprets a yes/no answer for the pending question.
func (e *dialogEngine) handleConfirmation(conv *model.Conversation, text string) []string {
	answer := strings.ToLower(strings.TrimSpace(text))

	if _, ok := e.yesWords[answer]; ok {
		conv.EchoCount = 1
		conv.BackToIdle()
		metrics.IncTurn("confirmed")
		return []string{e.tr.T("reset_done", conv.EchoCount)}
	}
	if _, ok := e.noWords[answer]; ok {
		conv.BackToIdle()
		metrics.IncTurn("cancelled")
		return []string{e.tr.T("reset_cancelled")}
	}

	if conv.Attempts >= e.cfg.PromptAttempts {
		conv.BackToIdle()
		metrics.IncTurn("cancelled")
		return []string{e.tr.T("reset_cancelled")}
	}
	conv.Attempts++
	conv.Touch()
	metrics.IncPromptRetry()
	return []string{e.tr.T("reset_clarify")}
}

// resolve composes the final response from all slot values, then clears
// them and returns the conversation to idle.
func (e *dialogEngine) resolve(conv *model.Conversation) string {
	args := make([]interface{}, 0, len(e.slots))
	names := make([]string, 0, len(e.slots))
	for _, spec := range e.slots {
		v, _ := conv.Slot(spec.Name)
		args = append(args, v)
		names = append(names, spec.Name)
	}
	msg := e.tr.T("resolved", args...)
	conv.ClearSlots(names...)
	conv.BackToIdle()
	metrics.IncTurn("resolved")
	return msg
}

func (e *dialogEngine) missingSlots(conv *model.Conversation) []SlotSpec {
	var missing []SlotSpec
	for _, spec := range e.slots {
		if _, ok := conv.Slot(spec.Name); !ok {
			missing = append(missing, spec)
		}
	}
	return missing
}

func (e *dialogEngine) anySlotFilled(conv *model.Conversation) bool {
	for _, spec := range e.slots {
		if _, ok := conv.Slot(spec.Name); ok {
			return true
		}
	}
	return false
}

func (e *dialogEngine) repromptKey(slot string) string {
	for _, spec := range e.slots {
		if spec.Name == slot {
			return spec.RepromptKey
		}
	}
	return "prompt_exhausted"
}
