package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound              = errors.New("entity not found")
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrMalformedActivity     = errors.New("malformed activity")
	ErrClassifierUnavailable = errors.New("intent classifier unavailable")
	ErrConversationBusy      = errors.New("conversation is locked by another turn")
)
