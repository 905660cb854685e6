// Package gpio drives the phone box hardware on a Raspberry Pi through
// periph.io: a matrix keypad, an HD44780 LCD behind a PCF8574 I2C backpack,
// a reed switch on the door and a hobby servo on the lock.
package gpio

import (
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Narrow views of periph pins so drivers can be tested with fakes.
// gpio.PinIO satisfies all three.

type inputPin interface {
	In(pull gpio.Pull, edge gpio.Edge) error
	Read() gpio.Level
}

type outputPin interface {
	Out(l gpio.Level) error
}

type pwmPin interface {
	PWM(duty gpio.Duty, f physic.Frequency) error
}
