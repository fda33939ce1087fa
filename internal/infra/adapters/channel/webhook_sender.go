package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gourmet-dialog-bot/internal/config"
	"gourmet-dialog-bot/internal/domain/ports/adapter"
)

var _ adapter.MessageSender = (*WebhookSender)(nil)

// WebhookSender POSTs outbound messages to the channel's reply endpoint.
// Fire-and-forget: a non-2xx status is reported as an error, retries are
// the channel's responsibility.
type WebhookSender struct {
	url    string
	client *http.Client
}

type outboundMessage struct {
	ConversationID string `json:"conversationId"`
	Text           string `json:"text"`
}

func NewWebhookSender(cfg config.ChannelConfig) *WebhookSender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookSender{
		url:    cfg.ReplyURL,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *WebhookSender) Send(ctx context.Context, conversationID, text string) error {
	body, err := json.Marshal(outboundMessage{ConversationID: conversationID, Text: text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook send: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook send: unexpected status %d", resp.StatusCode)
	}
	return nil
}
