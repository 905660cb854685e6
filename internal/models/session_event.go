package models

import "time"

// Journal event types.
const (
	EventSessionStarted = "SESSION_STARTED"
	EventInvalidInput   = "INVALID_INPUT"
	EventPaused         = "PAUSED"
	EventResumed        = "RESUMED"
	EventExpired        = "EXPIRED"
	EventDoorOpened     = "DOOR_OPENED"
)

// SessionEvent is a single journal entry.
type SessionEvent struct {
	EventID     string    `json:"event_id"`
	SessionID   string    `json:"session_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // SESSION_STARTED | PAUSED | RESUMED | EXPIRED | DOOR_OPENED | INVALID_INPUT
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
