package model

import (
	"time"
)

type DialogState string

const (
	StateIdle                 DialogState = "idle"
	StateAwaitingSlot         DialogState = "awaiting_slot"
	StateAwaitingConfirmation DialogState = "awaiting_confirmation"
)

// Well-known slot names for the restaurant query flow.
const (
	SlotArea            = "area"
	SlotGourmetCategory = "gourmetCategory"
)

// Conversation is the aggregate root for one channel conversation.
// It carries the dialog state, the partially collected slot values and
// the pending-continuation marker (which question is awaiting a reply).
// The struct is JSON-serializable so state stores can round-trip it.
type Conversation struct {
	ID            string            `json:"id"`
	State         DialogState       `json:"state"`
	PendingSlot   string            `json:"pending_slot,omitempty"`
	PendingReason string            `json:"pending_reason,omitempty"`
	Attempts      int               `json:"attempts,omitempty"`
	Slots         map[string]string `json:"slots,omitempty"`
	EchoCount     int               `json:"echo_count"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func NewConversation(id string) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        id,
		State:     StateIdle,
		Slots:     make(map[string]string),
		EchoCount: 1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Conversation) Touch() { c.UpdatedAt = time.Now() }

// Slot returns the resolved value for name, if any.
func (c *Conversation) Slot(name string) (string, bool) {
	v, ok := c.Slots[name]
	return v, ok && v != ""
}

func (c *Conversation) SetSlot(name, value string) {
	if c.Slots == nil {
		c.Slots = make(map[string]string)
	}
	c.Slots[name] = value
	c.Touch()
}

// ClearSlots removes the named slot values. A resolved value is cleared
// only after it has been consumed by a final response.
func (c *Conversation) ClearSlots(names ...string) {
	for _, n := range names {
		delete(c.Slots, n)
	}
	c.Touch()
}

// HasAllSlots reports whether every named slot holds a value.
func (c *Conversation) HasAllSlots(names ...string) bool {
	for _, n := range names {
		if _, ok := c.Slot(n); !ok {
			return false
		}
	}
	return true
}

// AwaitSlot records that the conversation is waiting for a literal
// value for the named slot. Attempts counts prompts issued so far.
func (c *Conversation) AwaitSlot(name string) {
	c.State = StateAwaitingSlot
	c.PendingSlot = name
	c.PendingReason = ""
	c.Attempts = 1
	c.Touch()
}

// AwaitConfirmation records that a yes/no answer is outstanding.
func (c *Conversation) AwaitConfirmation(reason string) {
	c.State = StateAwaitingConfirmation
	c.PendingReason = reason
	c.PendingSlot = ""
	c.Attempts = 1
	c.Touch()
}

// BackToIdle clears any pending continuation. Slot values survive;
// they are only cleared explicitly when a final response consumes them.
func (c *Conversation) BackToIdle() {
	c.State = StateIdle
	c.PendingSlot = ""
	c.PendingReason = ""
	c.Attempts = 0
	c.Touch()
}
