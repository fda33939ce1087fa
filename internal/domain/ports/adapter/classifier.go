package adapter

import (
	"context"

	"gourmet-dialog-bot/internal/domain/model"
)

// IntentClassifier is the port for the external NLU collaborator.
// Implementations must collapse every failure mode (timeout, malformed
// payload, service error) into domain.ErrClassifierUnavailable.
type IntentClassifier interface {
	Classify(ctx context.Context, text string) (*model.IntentResult, error)
}
