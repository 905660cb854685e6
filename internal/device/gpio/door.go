package gpio

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// Door reads a magnetic reed switch.
type Door struct {
	pin    inputPin
	closed gpio.Level
}

// NewDoor pulls the pin toward the open level so a disconnected switch reads as open.
func NewDoor(pin inputPin, closedLevel gpio.Level) (*Door, error) {
	pull := gpio.PullUp
	if closedLevel == gpio.High {
		pull = gpio.PullDown
	}
	if err := pin.In(pull, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("door pin: %w", err)
	}
	return &Door{pin: pin, closed: closedLevel}, nil
}

func (d *Door) IsClosed() bool {
	return d.pin.Read() == d.closed
}
