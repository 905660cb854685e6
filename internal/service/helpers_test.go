package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"phonebox/internal/device"
	"phonebox/internal/logger"
	"phonebox/internal/models"
)

// ---- Test doubles ----

// recordingSleeper returns immediately and remembers every wait.
type recordingSleeper struct {
	calls []time.Duration
	err   error
	// failAfter makes Sleep return err once this many calls were made. Zero means never.
	failAfter int
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	if s.failAfter > 0 && len(s.calls) >= s.failAfter {
		return s.err
	}
	return ctx.Err()
}

func (s *recordingSleeper) count(d time.Duration) int {
	n := 0
	for _, c := range s.calls {
		if c == d {
			n++
		}
	}
	return n
}

// memJournal keeps everything in memory.
type memJournal struct {
	mu      sync.Mutex
	events  []models.SessionEvent
	records []models.SessionRecord
}

func (j *memJournal) Record(_ context.Context, e models.SessionEvent) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, e)
}

func (j *memJournal) Finish(_ context.Context, r models.SessionRecord) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, r)
}

func (j *memJournal) types() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, len(j.events))
	for i, e := range j.events {
		out[i] = e.Type
	}
	return out
}

var testSettings = Settings{Tick: time.Second, PollInterval: 50 * time.Millisecond}

var fixedNow = time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC)

type fixture struct {
	keys    *device.MockKeys
	display *device.MockDisplay
	door    *device.MockDoor
	lock    *device.MockLock
	journal *memJournal
	sleeper *recordingSleeper
	ctrl    *Controller
}

func newFixture(t *testing.T, keys string) *fixture {
	t.Helper()
	return newFixtureWithLogger(t, keys, logger.NewNop())
}

func newFixtureWithLogger(t *testing.T, keys string, log *logger.Logger) *fixture {
	t.Helper()
	f := &fixture{
		keys:    device.NewMockKeys(keys),
		display: device.NewMockDisplay(2, 16),
		door:    device.NewMockDoor(true),
		lock:    device.NewMockLock(),
		journal: &memJournal{},
		sleeper: &recordingSleeper{},
	}
	f.ctrl = NewController(device.Devices{
		Keys:    f.keys,
		Display: f.display,
		Door:    f.door,
		Lock:    f.lock,
	}, testSettings, f.journal, log)
	f.ctrl.sleeper = f.sleeper
	f.ctrl.now = func() time.Time { return fixedNow }
	ids := 0
	f.ctrl.newID = func() string {
		ids++
		return fmt.Sprintf("session-%d", ids)
	}
	return f
}

// stepUntil steps until the controller leaves from, failing after limit steps.
func (f *fixture) stepUntil(t *testing.T, from State, limit int) int {
	t.Helper()
	for i := 1; i <= limit; i++ {
		f.ctrl.Step(context.Background())
		if f.ctrl.State() != from {
			return i
		}
	}
	t.Fatalf("still in %v after %d steps", from, limit)
	return 0
}

// steps calls Step n times.
func (f *fixture) steps(n int) {
	for i := 0; i < n; i++ {
		f.ctrl.Step(context.Background())
	}
}

func newMockDisplayFailing(err error) *device.MockDisplay {
	d := device.NewMockDisplay(2, 16)
	d.FailWrites(err)
	return d
}
