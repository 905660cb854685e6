package service

import (
	"phonebox/internal/device"
	"phonebox/internal/models"
)

// Outcome is the result of one countdown tick.
type Outcome int

const (
	OutcomeRunning Outcome = iota
	OutcomeExpired
	OutcomeInterrupted
	OutcomeDoorOpened
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRunning:
		return "RUNNING"
	case OutcomeExpired:
		return "EXPIRED"
	case OutcomeInterrupted:
		return "INTERRUPTED"
	case OutcomeDoorOpened:
		return "DOOR_OPENED"
	}
	return "UNKNOWN"
}

// Countdown evaluates one tick at a time. Priority within a tick: door,
// then '#', then expiry; at most one of them acts per tick.
type Countdown struct {
	keys   device.KeySource
	door   device.DoorSensor
	screen *screen
}

// Begin shows the pause hint and the current remaining time.
func (c *Countdown) Begin(s *models.Session) {
	c.screen.show(textPauseHint, FormatClock(s.RemainingSeconds))
}

// Tick runs one evaluation step against s.
func (c *Countdown) Tick(s *models.Session) Outcome {
	if !c.door.IsClosed() {
		return OutcomeDoorOpened
	}
	if c.keys.Poll() == device.KeyPound {
		return OutcomeInterrupted
	}
	if s.RemainingSeconds <= 0 {
		return OutcomeExpired
	}
	s.RemainingSeconds--
	c.screen.line(c.screen.lastRow(), FormatClock(s.RemainingSeconds))
	return OutcomeRunning
}
