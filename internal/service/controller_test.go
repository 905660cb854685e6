package service

import (
	"context"
	"errors"
	"testing"

	"phonebox/internal/device"
	"phonebox/internal/logger"
	"phonebox/internal/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestController_FiveMinutesExpireAndOpenLock(t *testing.T) {
	f := newFixture(t, "5#")
	f.ctrl.Begin()

	require.Equal(t, 2, f.stepUntil(t, StateEnteringTime, 10))
	require.Equal(t, StateCountingDown, f.ctrl.State())
	require.Equal(t, 300, f.ctrl.Session().RemainingSeconds)
	require.Equal(t, []device.Position{device.PositionMid}, f.lock.Positions())
	require.Equal(t, "05:00", f.display.Line(1))

	f.steps(1)
	require.Equal(t, "04:59", f.display.Line(1))

	// 299 more decrements, then the expiry tick
	require.Equal(t, 300, f.stepUntil(t, StateCountingDown, 400))
	require.Equal(t, StateExpired, f.ctrl.State())
	require.Equal(t, 0, f.ctrl.Session().RemainingSeconds)
	require.Equal(t, []device.Position{device.PositionMid, device.PositionOpen}, f.lock.Positions())
	require.False(t, f.ctrl.Session().IsLocked)
	require.Equal(t, "Unlocked!", f.display.Line(0))
	require.Equal(t, "Vital:0 GiveUp:0", f.display.Line(1))

	require.Equal(t, []string{models.EventSessionStarted, models.EventExpired}, f.journal.types())
	require.Len(t, f.journal.records, 1)
	rec := f.journal.records[0]
	require.Equal(t, models.OutcomeExpired, rec.Outcome)
	require.Equal(t, 300, rec.DurationSeconds)
	require.Equal(t, "session-1", rec.ID)

	// terminal: further steps do nothing
	require.Zero(t, f.ctrl.Step(context.Background()))
	require.Len(t, f.lock.Positions(), 2)
}

func TestController_DoorOpenAtTick50Fails(t *testing.T) {
	f := newFixture(t, "5#")
	f.door.OpenAtCheck = 50
	f.ctrl.Begin()

	f.stepUntil(t, StateEnteringTime, 10)
	require.Equal(t, 50, f.stepUntil(t, StateCountingDown, 400))

	require.Equal(t, StateFailed, f.ctrl.State())
	require.Equal(t, 251, f.ctrl.Session().RemainingSeconds)
	last, ok := f.lock.Last()
	require.True(t, ok)
	require.Equal(t, device.PositionLocked, last)
	require.True(t, f.ctrl.Session().IsLocked)
	require.Equal(t, "Door opened!", f.display.Line(0))
	require.Equal(t, "Session failed", f.display.Line(1))

	require.Equal(t, []string{models.EventSessionStarted, models.EventDoorOpened}, f.journal.types())
	require.Equal(t, models.OutcomeFailed, f.journal.records[0].Outcome)
	require.Equal(t, 251, f.journal.records[0].RemainingSeconds)

	// failure is permanent for the session
	f.door.Set(true)
	f.steps(5)
	require.Equal(t, StateFailed, f.ctrl.State())
}

func TestController_PauseAtTick100ResumesWithRemainingTime(t *testing.T) {
	f := newFixture(t, "5#")
	f.ctrl.Begin()
	f.stepUntil(t, StateEnteringTime, 10)

	f.steps(100)
	require.Equal(t, 200, f.ctrl.Session().RemainingSeconds)

	f.keys.Push("#")
	f.steps(1)
	require.Equal(t, StatePaused, f.ctrl.State())
	require.Equal(t, 200, f.ctrl.Session().RemainingSeconds)
	require.Equal(t, "A: Vital notif.", f.display.Line(0))
	require.Equal(t, "B: Give up", f.display.Line(1))

	f.keys.Push("B")
	f.steps(1)
	require.Equal(t, 1, f.ctrl.Session().PauseCounts[models.PauseGiveUp])
	require.Equal(t, 0, f.ctrl.Session().PauseCounts[models.PauseVitalNotification])
	require.Equal(t, "# to resume", f.display.Line(1))

	f.keys.Push("#")
	f.steps(1)
	require.Equal(t, StateCountingDown, f.ctrl.State())
	require.Equal(t, 200, f.ctrl.Session().RemainingSeconds)
	require.Equal(t, "03:20", f.display.Line(1))

	f.steps(1)
	require.Equal(t, 199, f.ctrl.Session().RemainingSeconds)

	require.Equal(t, []string{models.EventSessionStarted, models.EventPaused, models.EventResumed}, f.journal.types())
	meta, ok := f.journal.events[1].Metadata.(map[string]any)
	require.True(t, ok)
	require.Equal(t, models.PauseGiveUp, meta["reason"])
}

func TestController_PauseMenuDiscardsOtherKeys(t *testing.T) {
	f := newFixture(t, "1#")
	f.ctrl.Begin()
	f.stepUntil(t, StateEnteringTime, 10)

	f.keys.Push("#")
	f.steps(1)
	require.Equal(t, StatePaused, f.ctrl.State())

	f.keys.Push("C1#*")
	f.steps(4)
	require.Equal(t, StatePaused, f.ctrl.State())
	require.Zero(t, f.ctrl.Session().TotalPauses())

	f.keys.Push("A")
	f.steps(1)
	require.Equal(t, 1, f.ctrl.Session().PauseCounts[models.PauseVitalNotification])

	// a second reason key while waiting to resume is discarded
	f.keys.Push("5B")
	f.steps(2)
	require.Equal(t, StatePaused, f.ctrl.State())
	require.Equal(t, 0, f.ctrl.Session().PauseCounts[models.PauseGiveUp])

	f.keys.Push("#")
	f.steps(1)
	require.Equal(t, StateCountingDown, f.ctrl.State())
	require.Equal(t, 1, f.ctrl.Session().TotalPauses())
}

func TestController_PauseCountsIncreaseByOnePerCycle(t *testing.T) {
	f := newFixture(t, "9#")
	f.ctrl.Begin()
	f.stepUntil(t, StateEnteringTime, 10)

	for i := 1; i <= 3; i++ {
		f.keys.Push("#A#")
		f.steps(3)
		require.Equal(t, StateCountingDown, f.ctrl.State())
		require.Equal(t, i, f.ctrl.Session().PauseCounts[models.PauseVitalNotification])
	}
	f.keys.Push("#B#")
	f.steps(3)
	require.Equal(t, 3, f.ctrl.Session().PauseCounts[models.PauseVitalNotification])
	require.Equal(t, 1, f.ctrl.Session().PauseCounts[models.PauseGiveUp])
	// pauses consumed no countdown time
	require.Equal(t, 540, f.ctrl.Session().RemainingSeconds)
}

func TestController_DoorOpenWhilePausedDoesNotFail(t *testing.T) {
	f := newFixture(t, "1#")
	f.ctrl.Begin()
	f.stepUntil(t, StateEnteringTime, 10)

	f.keys.Push("#")
	f.steps(1)
	f.door.Set(false)
	f.keys.Push("A")
	f.steps(5)
	require.Equal(t, StatePaused, f.ctrl.State())

	// the door is checked again on the first tick after resuming
	f.keys.Push("#")
	f.steps(1)
	require.Equal(t, StateCountingDown, f.ctrl.State())
	f.steps(1)
	require.Equal(t, StateFailed, f.ctrl.State())
}

func TestController_EmptyEntryRePrompts(t *testing.T) {
	f := newFixture(t, "#")
	f.ctrl.Begin()
	require.Equal(t, "Minutes then #", f.display.Line(0))

	f.steps(1)
	require.Equal(t, StateEnteringTime, f.ctrl.State())
	require.Equal(t, "No input, retry", f.display.Line(0))
	require.Equal(t, "Minutes then #", f.display.Line(1))
	require.Empty(t, f.lock.Positions())
	require.Equal(t, []string{models.EventInvalidInput}, f.journal.types())

	f.keys.Push("3")
	f.steps(1)
	require.Equal(t, "3", f.display.Line(1))
	f.keys.Push("#")
	f.steps(1)
	require.Equal(t, StateCountingDown, f.ctrl.State())
	require.Equal(t, 180, f.ctrl.Session().RemainingSeconds)
}

func TestController_EntryIgnoresLetters(t *testing.T) {
	f := newFixture(t, "1A*C2")
	f.ctrl.Begin()
	f.steps(5)
	require.Equal(t, "12", f.display.Line(1))

	f.keys.Push("#")
	f.steps(1)
	require.Equal(t, 720, f.ctrl.Session().RemainingSeconds)
}

func TestController_ZeroMinutesExpiresOnFirstTick(t *testing.T) {
	f := newFixture(t, "0#")
	f.ctrl.Begin()
	f.stepUntil(t, StateEnteringTime, 10)
	require.Equal(t, 1, f.stepUntil(t, StateCountingDown, 5))
	require.Equal(t, StateExpired, f.ctrl.State())
}

func TestController_Run(t *testing.T) {
	f := newFixture(t, "1#")

	s, err := f.ctrl.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateExpired, f.ctrl.State())
	require.Equal(t, 0, s.RemainingSeconds)
	require.Equal(t, 1, f.sleeper.count(testSettings.PollInterval))
	// one wait after arming, one after each of the 60 decrements
	require.Equal(t, 61, f.sleeper.count(testSettings.Tick))
}

func TestController_RunStopsOnCancel(t *testing.T) {
	f := newFixture(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.ctrl.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, StateEnteringTime, f.ctrl.State())
}

func TestController_RestartStartsNewSession(t *testing.T) {
	f := newFixture(t, "0#")
	_, err := f.ctrl.Run(context.Background())
	require.NoError(t, err)
	first := f.ctrl.Session().ID

	f.keys.Push("12*")
	require.NoError(t, f.ctrl.WaitForRestart(context.Background()))
	require.Zero(t, f.keys.Pending())

	f.keys.Push("2#")
	s, err := f.ctrl.Run(context.Background())
	require.NoError(t, err)
	require.NotEqual(t, first, s.ID)
	require.Equal(t, 120, s.DurationSeconds)
	require.Len(t, f.journal.records, 2)
}

func TestController_WaitForRestartHonorsCancel(t *testing.T) {
	f := newFixture(t, "")
	f.sleeper.err = context.DeadlineExceeded
	f.sleeper.failAfter = 3

	err := f.ctrl.WaitForRestart(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, 3, f.keys.Polls())
}

func TestController_DeviceFailuresAreLoggedNotFatal(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	f := newFixtureWithLogger(t, "1#", logger.FromZap(zap.New(core)))
	f.display.FailWrites(errors.New("i2c nack"))
	f.lock.Fail(errors.New("servo stalled"))

	s, err := f.ctrl.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateExpired, f.ctrl.State())
	require.True(t, s.IsLocked, "lock never acknowledged OPEN")

	require.Positive(t, logs.FilterMessage("display_write_failed").Len())
	require.Equal(t, 2, logs.FilterMessage("lock_command_failed").Len())
	require.Equal(t, 1, logs.FilterMessage("session_expired").Len())
}

func TestState_Terminal(t *testing.T) {
	for _, s := range []State{StateEnteringTime, StateCountingDown, StatePaused} {
		require.False(t, s.Terminal(), s.String())
	}
	for _, s := range []State{StateExpired, StateFailed} {
		require.True(t, s.Terminal(), s.String())
	}
}
