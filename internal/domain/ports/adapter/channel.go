package adapter

import "context"

// MessageSender delivers an outbound message to the channel.
// Fire-and-forget from the dialog's perspective; delivery retries are
// the channel collaborator's responsibility.
type MessageSender interface {
	Send(ctx context.Context, conversationID, text string) error
}
