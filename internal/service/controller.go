package service

import (
	"context"
	"time"

	"phonebox/internal/device"
	"phonebox/internal/logger"
	"phonebox/internal/models"

	"github.com/google/uuid"
)

// State is a session controller state.
type State int

const (
	StateEnteringTime State = iota
	StateCountingDown
	StatePaused
	StateExpired
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEnteringTime:
		return "ENTERING_TIME"
	case StateCountingDown:
		return "COUNTING_DOWN"
	case StatePaused:
		return "PAUSED"
	case StateExpired:
		return "EXPIRED_SUCCESS"
	case StateFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// Terminal reports whether the session is over.
func (s State) Terminal() bool { return s == StateExpired || s == StateFailed }

// Controller owns one session at a time and drives the devices. It is not
// safe for concurrent use; Step and Run must be called from one goroutine.
type Controller struct {
	keys    device.KeySource
	door    device.DoorSensor
	lock    device.LockActuator
	screen  *screen
	journal Journal
	log     *logger.Logger

	settings Settings
	sleeper  Sleeper
	now      func() time.Time
	newID    func() string

	state     State
	session   *models.Session
	entry     *TimerEntry
	countdown *Countdown
	pause     *PauseMenu
}

// NewController wires devices, timings and the journal. A nil journal records nothing.
func NewController(devs device.Devices, settings Settings, journal Journal, log *logger.Logger) *Controller {
	if journal == nil {
		journal = NoopJournal{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	scr := &screen{display: devs.Display, log: log}
	return &Controller{
		keys:      devs.Keys,
		door:      devs.Door,
		lock:      devs.Lock,
		screen:    scr,
		journal:   journal,
		log:       log,
		settings:  settings,
		sleeper:   TimerSleeper{},
		now:       time.Now,
		newID:     uuid.NewString,
		entry:     &TimerEntry{screen: scr},
		countdown: &Countdown{keys: devs.Keys, door: devs.Door, screen: scr},
		pause:     &PauseMenu{screen: scr},
	}
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Session returns the current session, nil before Begin.
func (c *Controller) Session() *models.Session { return c.session }

// Begin starts a new session in ENTERING_TIME and shows the prompt.
func (c *Controller) Begin() {
	c.session = models.NewSession(c.newID(), c.now().UTC())
	c.state = StateEnteringTime
	c.entry.Begin()
	c.log.Debugw("session_created", "session_id", c.session.ID)
}

// Step performs one evaluation and returns how long to wait before the next
// one. It returns 0 once the session is terminal.
func (c *Controller) Step(ctx context.Context) time.Duration {
	if c.session == nil {
		c.Begin()
	}
	switch c.state {
	case StateEnteringTime:
		return c.stepEntering(ctx)
	case StateCountingDown:
		return c.stepCountdown(ctx)
	case StatePaused:
		return c.stepPaused(ctx)
	}
	return 0
}

func (c *Controller) stepEntering(ctx context.Context) time.Duration {
	minutes, done, err := c.entry.HandleKey(c.keys.Poll())
	if err != nil {
		c.log.Infow("timer_input_rejected", "session_id", c.session.ID, "err", err)
		c.record(ctx, models.EventInvalidInput, err.Error(), nil)
		return c.settings.PollInterval
	}
	if !done {
		return c.settings.PollInterval
	}

	c.session.Arm(minutes)
	c.setLock(models.EventSessionStarted, device.PositionMid)
	c.log.Infow("session_started", "session_id", c.session.ID, "minutes", minutes)
	c.record(ctx, models.EventSessionStarted, "Timer armed", map[string]any{
		"minutes":           minutes,
		"remaining_seconds": c.session.RemainingSeconds,
	})
	c.transition(StateCountingDown)
	c.countdown.Begin(c.session)
	return c.settings.Tick
}

func (c *Controller) stepCountdown(ctx context.Context) time.Duration {
	switch c.countdown.Tick(c.session) {
	case OutcomeRunning:
		return c.settings.Tick
	case OutcomeInterrupted:
		c.transition(StatePaused)
		c.pause.Begin()
		return c.settings.PollInterval
	case OutcomeExpired:
		c.finishExpired(ctx)
	case OutcomeDoorOpened:
		c.finishFailed(ctx)
	}
	return 0
}

func (c *Controller) stepPaused(ctx context.Context) time.Duration {
	switch c.pause.HandleKey(c.session, c.keys.Poll()) {
	case PauseRecorded:
		reason := c.pause.Reason()
		c.log.Infow("session_paused", "session_id", c.session.ID, "reason", reason, "count", c.session.PauseCounts[reason])
		c.record(ctx, models.EventPaused, "Paused: "+string(reason), map[string]any{
			"reason":            reason,
			"count":             c.session.PauseCounts[reason],
			"remaining_seconds": c.session.RemainingSeconds,
		})
	case PauseResumed:
		c.log.Infow("session_resumed", "session_id", c.session.ID, "remaining_seconds", c.session.RemainingSeconds)
		c.record(ctx, models.EventResumed, "Countdown resumed", map[string]any{
			"remaining_seconds": c.session.RemainingSeconds,
		})
		c.transition(StateCountingDown)
		c.countdown.Begin(c.session)
		return c.settings.Tick
	}
	return c.settings.PollInterval
}

func (c *Controller) finishExpired(ctx context.Context) {
	if c.setLock(models.EventExpired, device.PositionOpen) {
		c.session.IsLocked = false
	}
	c.transition(StateExpired)
	c.screen.show(textUnlocked, pauseSummary(c.session.PauseCounts), textRestartHint)
	c.log.Infow("session_expired", "session_id", c.session.ID, "pauses", c.session.PauseCounts)
	c.record(ctx, models.EventExpired, "Timer elapsed; lock opened", map[string]any{
		"pause_counts": c.session.PauseCounts,
	})
	c.journal.Finish(ctx, c.summary(models.OutcomeExpired))
}

func (c *Controller) finishFailed(ctx context.Context) {
	c.setLock(models.EventDoorOpened, device.PositionLocked)
	c.transition(StateFailed)
	c.screen.show(textDoorOpened, textSessionFailed, textRestartHint)
	c.log.Warnw("door_opened", "session_id", c.session.ID, "remaining_seconds", c.session.RemainingSeconds)
	c.record(ctx, models.EventDoorOpened, "Door opened during countdown", map[string]any{
		"remaining_seconds": c.session.RemainingSeconds,
	})
	c.journal.Finish(ctx, c.summary(models.OutcomeFailed))
}

// Run drives Step until the session is terminal or ctx is done. The time
// spent inside a step is taken off the following wait.
func (c *Controller) Run(ctx context.Context) (*models.Session, error) {
	if c.session == nil || c.state.Terminal() {
		c.Begin()
	}
	for {
		started := c.now()
		wait := c.Step(ctx)
		if c.state.Terminal() {
			return c.session, nil
		}
		if err := c.sleeper.Sleep(ctx, wait-c.now().Sub(started)); err != nil {
			return c.session, err
		}
	}
}

// WaitForRestart polls until '*' is pressed.
func (c *Controller) WaitForRestart(ctx context.Context) error {
	for {
		if c.keys.Poll() == device.KeyStar {
			return nil
		}
		if err := c.sleeper.Sleep(ctx, c.settings.PollInterval); err != nil {
			return err
		}
	}
}

func (c *Controller) transition(to State) {
	c.log.Debugw("state_transition", "session_id", c.session.ID, "from", c.state, "to", to)
	c.state = to
}

// setLock commands the servo and reports success. Failures are logged only.
func (c *Controller) setLock(cause string, p device.Position) bool {
	if err := c.lock.SetPosition(p); err != nil {
		c.log.Errorw("lock_command_failed", "err", err, "position", p, "cause", cause, "session_id", c.session.ID)
		return false
	}
	return true
}

func (c *Controller) record(ctx context.Context, typ, description string, meta map[string]any) {
	e := models.SessionEvent{
		SessionID:   c.session.ID,
		OccurredAt:  c.now().UTC(),
		Type:        typ,
		Description: description,
	}
	if meta != nil {
		e.Metadata = meta
	}
	c.journal.Record(ctx, e)
}

func (c *Controller) summary(outcome models.Outcome) models.SessionRecord {
	counts := make(map[models.PauseReason]int, len(c.session.PauseCounts))
	for k, v := range c.session.PauseCounts {
		counts[k] = v
	}
	return models.SessionRecord{
		ID:               c.session.ID,
		StartedAt:        c.session.StartedAt,
		EndedAt:          c.now().UTC(),
		DurationSeconds:  c.session.DurationSeconds,
		RemainingSeconds: c.session.RemainingSeconds,
		Outcome:          outcome,
		PauseCounts:      counts,
	}
}
