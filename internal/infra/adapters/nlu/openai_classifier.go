package nlu

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/rs/zerolog"

	"gourmet-dialog-bot/internal/config"
	"gourmet-dialog-bot/internal/domain"
	"gourmet-dialog-bot/internal/domain/model"
	"gourmet-dialog-bot/internal/domain/ports/adapter"
	"gourmet-dialog-bot/internal/infra/metrics"
)

var _ adapter.IntentClassifier = (*OpenAIClassifier)(nil)

// OpenAIClassifier asks a chat-completion model to classify one utterance
// into ranked intents plus entity extractions, as strict JSON. Every failure
// mode (timeout, service error, unparseable reply) collapses to
// domain.ErrClassifierUnavailable; the caller decides how to degrade.
type OpenAIClassifier struct {
	client   *openai.Client
	model    string
	timeout  time.Duration
	intents  []string
	entities []string
	log      *zerolog.Logger
}

func NewOpenAIClassifier(cfg config.NLUConfig, intents, entities []string, logger *zerolog.Logger) *OpenAIClassifier {
	clientCfg := openai.DefaultConfig(cfg.OpenAIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clsLog := logger.With().Str("component", "OpenAIClassifier").Logger()
	return &OpenAIClassifier{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		timeout:  cfg.Timeout,
		intents:  intents,
		entities: entities,
		log:      &clsLog,
	}
}

func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (*model.IntentResult, error) {
	start := time.Now()
	res, err := c.classify(ctx, text)
	latency := int(time.Since(start).Milliseconds())
	metrics.ObserveClassify("openai", latency, err == nil)
	if err != nil {
		c.log.Warn().Err(err).Int("latency_ms", latency).Msg("classification failed")
		return nil, fmt.Errorf("openai classify: %w", domain.ErrClassifierUnavailable)
	}
	return res, nil
}

func (c *OpenAIClassifier) classify(ctx context.Context, text string) (*model.IntentResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		MaxTokens:   300,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.systemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices")
	}

	raw := resp.Choices[0].Message.Content
	var out model.IntentResult
	if err := json.Unmarshal([]byte(extractJSON(raw)), &out); err != nil {
		return nil, fmt.Errorf("unmarshal classification: %w", err)
	}
	return &out, nil
}

func (c *OpenAIClassifier) systemPrompt() string {
	var b strings.Builder
	b.WriteString("You classify a single user utterance for a restaurant-search chat bot.\n")
	b.WriteString("Known intents: ")
	b.WriteString(strings.Join(c.intents, ", "))
	b.WriteString("\nKnown entities: ")
	b.WriteString(strings.Join(c.entities, ", "))
	b.WriteString("\nRespond with ONLY a JSON object of this exact shape:\n")
	b.WriteString(`{"intents":[{"name":"...","confidence":0.0}],"entities":[{"name":"...","value":"..."}]}`)
	b.WriteString("\nRank intents by confidence in [0,1]. If the utterance matches none of the known intents, ")
	b.WriteString("return the closest guesses with low confidence, or an empty intents array for pure chit-chat. ")
	b.WriteString("Only emit entities literally present in the utterance.")
	return b.String()
}

// extractJSON returns the outermost {...} span of raw, tolerating models
// that wrap the object in prose or code fences.
func extractJSON(raw string) string {
	first := strings.IndexByte(raw, '{')
	last := strings.LastIndexByte(raw, '}')
	if first >= 0 && last > first {
		return raw[first : last+1]
	}
	return raw
}
