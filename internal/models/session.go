package models

import "time"

// PauseReason is the user-selected justification for interrupting a countdown.
type PauseReason string

const (
	PauseVitalNotification PauseReason = "VITAL_NOTIFICATION"
	PauseGiveUp            PauseReason = "GIVE_UP"
)

// PauseReasons lists every reason in menu order.
var PauseReasons = []PauseReason{PauseVitalNotification, PauseGiveUp}

// Session is one timer-to-unlock cycle.
type Session struct {
	ID               string              `json:"id"`
	StartedAt        time.Time           `json:"started_at"`
	DurationSeconds  int                 `json:"duration_seconds"`  // as entered
	RemainingSeconds int                 `json:"remaining_seconds"` // never increases while running
	PauseCounts      map[PauseReason]int `json:"pause_counts"`
	IsLocked         bool                `json:"is_locked"`
}

// NewSession returns a locked session with zeroed pause tallies.
func NewSession(id string, startedAt time.Time) *Session {
	counts := make(map[PauseReason]int, len(PauseReasons))
	for _, r := range PauseReasons {
		counts[r] = 0
	}
	return &Session{
		ID:          id,
		StartedAt:   startedAt,
		PauseCounts: counts,
		IsLocked:    true,
	}
}

// Arm sets the countdown length from whole minutes.
func (s *Session) Arm(minutes int) {
	s.DurationSeconds = minutes * 60
	s.RemainingSeconds = s.DurationSeconds
}

// RecordPause increments the tally for reason.
func (s *Session) RecordPause(reason PauseReason) {
	if s.PauseCounts == nil {
		s.PauseCounts = make(map[PauseReason]int)
	}
	s.PauseCounts[reason]++
}

// TotalPauses sums every reason's tally.
func (s *Session) TotalPauses() int {
	n := 0
	for _, c := range s.PauseCounts {
		n += c
	}
	return n
}
