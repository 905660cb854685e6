// Package device defines the hardware capabilities the session controller
// drives. Platform packages (gpio, terminal) implement them; the Mock types
// in this package implement them for tests.
package device

import (
	"errors"
	"fmt"
)

// ErrDeviceUnavailable is returned when a platform fails to initialize a device.
var ErrDeviceUnavailable = errors.New("device unavailable")

// Unavailable wraps cause as ErrDeviceUnavailable for the named device.
func Unavailable(name string, cause error) error {
	return fmt.Errorf("%w: %s: %v", ErrDeviceUnavailable, name, cause)
}

// Key is a single keypad symbol. KeyNone means nothing newly pressed.
type Key byte

const (
	KeyNone  Key = 0
	KeyStar  Key = '*'
	KeyPound Key = '#'
	KeyA     Key = 'A'
	KeyB     Key = 'B'
	KeyC     Key = 'C'
	KeyD     Key = 'D'
)

// ParseKey maps a character to a Key. Lowercase a-d are accepted.
func ParseKey(r rune) (Key, bool) {
	switch {
	case r >= '0' && r <= '9':
		return Key(r), true
	case r >= 'A' && r <= 'D':
		return Key(r), true
	case r >= 'a' && r <= 'd':
		return Key(r - 'a' + 'A'), true
	case r == '*' || r == '#':
		return Key(r), true
	}
	return KeyNone, false
}

// IsDigit reports whether k is one of 0-9.
func (k Key) IsDigit() bool { return k >= '0' && k <= '9' }

func (k Key) String() string {
	if k == KeyNone {
		return "none"
	}
	return string(rune(k))
}

// Position is a commanded lock servo position.
type Position int

const (
	PositionLocked Position = iota
	PositionMid
	PositionOpen
)

func (p Position) String() string {
	switch p {
	case PositionOpen:
		return "OPEN"
	case PositionMid:
		return "MID"
	case PositionLocked:
		return "LOCKED"
	}
	return fmt.Sprintf("Position(%d)", int(p))
}

// KeySource yields newly pressed keys. Poll never blocks.
type KeySource interface {
	Poll() Key
}

// Display is a fixed character grid.
type Display interface {
	Clear() error
	Write(row, col int, text string) error
	Size() (rows, cols int)
}

// DoorSensor reports the compartment door. IsClosed never blocks.
type DoorSensor interface {
	IsClosed() bool
}

// LockActuator moves the lock servo.
type LockActuator interface {
	SetPosition(p Position) error
}

// Devices bundles the four capabilities a platform provides.
type Devices struct {
	Keys    KeySource
	Display Display
	Door    DoorSensor
	Lock    LockActuator

	// Close releases platform resources. May be nil.
	Close func() error
}
