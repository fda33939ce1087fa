package model

import "strings"

type ActivityType string

const (
	ActivityMessage               ActivityType = "message"
	ActivityConversationUpdate    ActivityType = "conversationUpdate"
	ActivityContactRelationUpdate ActivityType = "contactRelationUpdate"
	ActivityTyping                ActivityType = "typing"
	ActivityPing                  ActivityType = "ping"
	ActivityDeleteUserData        ActivityType = "deleteUserData"
)

// Activity is one inbound event from the messaging channel.
// Only message activities carry dialog semantics; the rest are
// channel lifecycle noise that gets acknowledged and dropped.
type Activity struct {
	ConversationID string       `json:"conversationId"`
	Type           ActivityType `json:"type"`
	Text           string       `json:"text,omitempty"`
	Sender         string       `json:"sender,omitempty"`
}

func (a *Activity) IsMessage() bool { return a.Type == ActivityMessage }

// IsSystemEvent reports whether the activity is a known non-message event.
func (a *Activity) IsSystemEvent() bool {
	switch a.Type {
	case ActivityConversationUpdate, ActivityContactRelationUpdate,
		ActivityTyping, ActivityPing, ActivityDeleteUserData:
		return true
	}
	return false
}

// Intent is one classified purpose candidate for an utterance.
type Intent struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Entity is a named span extracted from an utterance.
type Entity struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// IntentResult is the classifier output for a single message.
// Produced fresh per turn; never persisted.
type IntentResult struct {
	Intents  []Intent `json:"intents"`
	Entities []Entity `json:"entities"`
}

// TopIntent returns the highest-confidence intent, if any.
func (r *IntentResult) TopIntent() (Intent, bool) {
	if r == nil || len(r.Intents) == 0 {
		return Intent{}, false
	}
	top := r.Intents[0]
	for _, in := range r.Intents[1:] {
		if in.Confidence > top.Confidence {
			top = in
		}
	}
	return top, true
}

// Entity returns the first non-empty value extracted for name.
func (r *IntentResult) Entity(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	for _, e := range r.Entities {
		if e.Name == name && strings.TrimSpace(e.Value) != "" {
			return e.Value, true
		}
	}
	return "", false
}

// IntentNames lists raw candidate intent names in classifier order.
func (r *IntentResult) IntentNames() []string {
	names := make([]string, 0, len(r.Intents))
	for _, in := range r.Intents {
		names = append(names, in.Name)
	}
	return names
}
