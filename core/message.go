package core

import (
	"time"

	"github.com/google/uuid"
)

// PermissionGroup governs whether a sender may trigger a given Func.
type PermissionGroup int

const (
	// PermissionUser is the baseline group every sender belongs to.
	PermissionUser PermissionGroup = iota
	// PermissionAdmin marks privileged senders and admin-only Funcs.
	PermissionAdmin
)

// String returns the string representation of the permission group.
func (p PermissionGroup) String() string {
	switch p {
	case PermissionUser:
		return "user"
	case PermissionAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Allows reports whether a sender holding this group may trigger a Func
// requiring the given group.
func (p PermissionGroup) Allows(required PermissionGroup) bool {
	return p >= required
}

// Sender identifies the originator of a message together with its permission
// level as resolved by the host application.
type Sender struct {
	ID         string          `json:"id"`
	Permission PermissionGroup `json:"permission"`
}

// Message is the unit of work delivered by the event bus to registered Funcs.
// After creation it should be treated as immutable; filters and handlers must
// not mutate it.
type Message struct {
	ID        string            `json:"id"`
	Raw       string            `json:"raw"`
	Sender    Sender            `json:"sender"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewMessage creates a message with a generated ID and UTC timestamp.
func NewMessage(raw string, sender Sender) *Message {
	return &Message{
		ID:        NewID(),
		Raw:       raw,
		Sender:    sender,
		Timestamp: time.Now().UTC(),
	}
}

// NewID generates a new unique identifier for messages and task handles.
func NewID() string { return uuid.NewString() }
