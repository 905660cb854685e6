package service

import (
	"phonebox/internal/device"
	"phonebox/internal/models"
)

// PauseStep reports what a key did inside the pause menu.
type PauseStep int

const (
	PauseIgnored PauseStep = iota
	PauseRecorded
	PauseResumed
)

type pausePhase int

const (
	phaseChoosing pausePhase = iota
	phaseAwaitingResume
)

var pauseKeys = map[device.Key]models.PauseReason{
	device.KeyA: models.PauseVitalNotification,
	device.KeyB: models.PauseGiveUp,
}

// PauseMenu asks for a reason, tallies it, then waits for '#'.
type PauseMenu struct {
	screen *screen
	phase  pausePhase
	reason models.PauseReason
}

// Begin shows the reason menu.
func (p *PauseMenu) Begin() {
	p.phase = phaseChoosing
	p.reason = ""
	p.screen.show(textMenuVital, textMenuGiveUp)
}

// HandleKey consumes one polled key.
func (p *PauseMenu) HandleKey(s *models.Session, k device.Key) PauseStep {
	switch p.phase {
	case phaseChoosing:
		reason, ok := pauseKeys[k]
		if !ok {
			return PauseIgnored
		}
		s.RecordPause(reason)
		p.reason = reason
		p.phase = phaseAwaitingResume
		p.screen.show(textPaused, textResumePrompt)
		return PauseRecorded
	case phaseAwaitingResume:
		if k != device.KeyPound {
			return PauseIgnored
		}
		return PauseResumed
	}
	return PauseIgnored
}

// Reason is the reason chosen in the current pause, empty before a choice.
func (p *PauseMenu) Reason() models.PauseReason { return p.reason }
