package channel

import (
	"context"

	"github.com/rs/zerolog"

	"gourmet-dialog-bot/internal/domain/ports/adapter"
)

var _ adapter.MessageSender = (*LogSender)(nil)

// LogSender implements adapter.MessageSender for local/dev runs.
// It logs outbound messages instead of delivering them to a channel.
type LogSender struct {
	log *zerolog.Logger
}

func NewLogSender(logger *zerolog.Logger) *LogSender {
	sendLog := logger.With().Str("component", "LogSender").Logger()
	return &LogSender{log: &sendLog}
}

func (s *LogSender) Send(ctx context.Context, conversationID, text string) error {
	s.log.Info().Str("conversation_id", conversationID).Str("text", text).Msg("outbound message")
	return nil
}
