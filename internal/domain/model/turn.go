package model

import "time"

type TurnDirection string

const (
	TurnInbound  TurnDirection = "inbound"
	TurnOutbound TurnDirection = "outbound"
)

// TurnRecord is one audit-log row for a message that crossed the bot
// boundary, in either direction.
type TurnRecord struct {
	ID             string
	ConversationID string
	Direction      TurnDirection
	Text           string
	CreatedAt      time.Time
}
