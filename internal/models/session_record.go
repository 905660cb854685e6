package models

import "time"

// Outcome is how a session ended.
type Outcome string

const (
	OutcomeExpired Outcome = "EXPIRED"
	OutcomeFailed  Outcome = "FAILED"
)

// SessionRecord is the summary row written once a session reaches a terminal state.
type SessionRecord struct {
	ID               string              `json:"id"`
	StartedAt        time.Time           `json:"started_at"`
	EndedAt          time.Time           `json:"ended_at"`
	DurationSeconds  int                 `json:"duration_seconds"`
	RemainingSeconds int                 `json:"remaining_seconds"`
	Outcome          Outcome             `json:"outcome"`
	PauseCounts      map[PauseReason]int `json:"pause_counts,omitempty"`
}

// Totals aggregates every recorded session.
type Totals struct {
	Sessions int `json:"sessions"`
	Expired  int `json:"expired"`
	Failed   int `json:"failed"`
	Pauses   int `json:"pauses"`
}
