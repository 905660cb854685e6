package service

import "time"

// LogFilter supports history filtering by time range, type and session.
type LogFilter struct {
	From      time.Time // inclusive; zero means no lower bound
	To        time.Time // inclusive; zero means no upper bound
	Type      string    // "", "SESSION_STARTED", "PAUSED", "RESUMED", "EXPIRED", "DOOR_OPENED", "INVALID_INPUT"
	SessionID string
}

// Settings are the controller timings taken from configuration.
type Settings struct {
	Tick         time.Duration // countdown period
	PollInterval time.Duration // key polling while entering time, paused or finished
}
