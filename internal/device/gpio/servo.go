package gpio

import (
	"fmt"
	"time"

	"phonebox/internal/device"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

const (
	servoFrequency = 50 * physic.Hertz
	servoPeriod    = 20 * time.Millisecond
)

// Servo holds the lock bolt at one of three pulse widths.
type Servo struct {
	pin    pwmPin
	pulses map[device.Position]time.Duration
}

func NewServo(pin pwmPin, open, mid, locked time.Duration) (*Servo, error) {
	for _, p := range []time.Duration{open, mid, locked} {
		if p <= 0 || p >= servoPeriod {
			return nil, fmt.Errorf("servo pulse %v outside (0, %v)", p, servoPeriod)
		}
	}
	return &Servo{
		pin: pin,
		pulses: map[device.Position]time.Duration{
			device.PositionOpen:   open,
			device.PositionMid:    mid,
			device.PositionLocked: locked,
		},
	}, nil
}

func (s *Servo) SetPosition(p device.Position) error {
	pulse, ok := s.pulses[p]
	if !ok {
		return fmt.Errorf("unknown lock position %v", p)
	}
	if err := s.pin.PWM(dutyFor(pulse), servoFrequency); err != nil {
		return fmt.Errorf("servo %v: %w", p, err)
	}
	return nil
}

// dutyFor converts a pulse width into a duty cycle of the 20ms servo period.
func dutyFor(pulse time.Duration) gpio.Duty {
	return gpio.Duty(int64(gpio.DutyMax) * int64(pulse) / int64(servoPeriod))
}
