package service

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"phonebox/internal/device"
)

var (
	ErrInvalidTimerInput = errors.New("invalid timer input")
	ErrNoInput           = fmt.Errorf("%w: no input", ErrInvalidTimerInput)
)

// maxMinutes keeps minutes*60 inside int.
const maxMinutes = math.MaxInt / 60

// ParseMinutes parses the entry buffer as base-10 minutes.
func ParseMinutes(buf string) (int, error) {
	if buf == "" {
		return 0, ErrNoInput
	}
	n, err := strconv.Atoi(buf)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidTimerInput, buf, err)
	}
	if n < 0 || n > maxMinutes {
		return 0, fmt.Errorf("%w: %d minutes out of range", ErrInvalidTimerInput, n)
	}
	return n, nil
}

// TimerEntry collects digits until '#'. Other keys are ignored so letters
// cannot end up in the buffer.
type TimerEntry struct {
	screen *screen
	buf    []byte
}

// Begin clears the buffer and shows the prompt.
func (e *TimerEntry) Begin() {
	e.buf = e.buf[:0]
	e.screen.show(textEntryPrompt)
}

// HandleKey consumes one polled key. done is true once a valid duration was
// entered; a non-nil error means the buffer was rejected and the prompt shown again.
func (e *TimerEntry) HandleKey(k device.Key) (minutes int, done bool, err error) {
	switch {
	case k.IsDigit():
		e.buf = append(e.buf, byte(k))
		_, cols := e.screen.size()
		e.screen.line(e.screen.lastRow(), tail(string(e.buf), cols))
		return 0, false, nil
	case k == device.KeyPound:
		minutes, err = ParseMinutes(string(e.buf))
		e.buf = e.buf[:0]
		if err != nil {
			msg := textInvalidInput
			if errors.Is(err, ErrNoInput) {
				msg = textNoInput
			}
			e.screen.show(msg, textEntryPrompt)
			return 0, false, err
		}
		return minutes, true, nil
	default:
		return 0, false, nil
	}
}

// Buffer returns the digits typed so far.
func (e *TimerEntry) Buffer() string { return string(e.buf) }
