package gpio

import (
	"errors"
	"fmt"
	"time"

	"phonebox/internal/config"
	"phonebox/internal/device"
	"phonebox/internal/logger"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

const i2cSpeed = 400 * physic.KiloHertz

// first and last 7-bit addresses probed when display.i2c_addr is 0
const (
	i2cScanFirst = 0x08
	i2cScanLast  = 0x77
)

var errNoI2CDevice = errors.New("no device answered on the i2c bus")

// Open initializes the host drivers and every device from cfg.
// Any failure is reported as device.ErrDeviceUnavailable.
func Open(cfg config.Config, log *logger.Logger) (device.Devices, error) {
	if _, err := host.Init(); err != nil {
		return device.Devices{}, device.Unavailable("host", err)
	}

	bus, err := i2creg.Open(cfg.Display.I2CBus)
	if err != nil {
		return device.Devices{}, device.Unavailable("i2c bus", err)
	}
	if err := bus.SetSpeed(i2cSpeed); err != nil {
		log.Warnw("i2c_set_speed_failed", "err", err)
	}

	addr := cfg.Display.I2CAddr
	if addr == 0 {
		if addr, err = scanI2C(bus); err != nil {
			_ = bus.Close()
			return device.Devices{}, device.Unavailable("lcd", err)
		}
		log.Infow("lcd_address_detected", "addr", fmt.Sprintf("0x%02x", addr))
	}

	lcd, err := NewLCD(&i2c.Dev{Bus: bus, Addr: addr}, cfg.Display.Rows, cfg.Display.Cols)
	if err != nil {
		_ = bus.Close()
		return device.Devices{}, device.Unavailable("lcd", err)
	}

	devs, keypad, err := openPins(cfg, lcd)
	if err != nil {
		_ = bus.Close()
		return device.Devices{}, err
	}
	keypad.Start(scanInterval)
	devs.Close = func() error {
		keypad.Stop()
		return bus.Close()
	}
	return devs, nil
}

func openPins(cfg config.Config, lcd *LCD) (device.Devices, *Keypad, error) {
	rows := make([]outputPin, 0, len(cfg.Keypad.Rows))
	for _, name := range cfg.Keypad.Rows {
		p, err := pinByName(name)
		if err != nil {
			return device.Devices{}, nil, device.Unavailable("keypad", err)
		}
		rows = append(rows, p)
	}
	cols := make([]inputPin, 0, len(cfg.Keypad.Cols))
	for _, name := range cfg.Keypad.Cols {
		p, err := pinByName(name)
		if err != nil {
			return device.Devices{}, nil, device.Unavailable("keypad", err)
		}
		cols = append(cols, p)
	}
	keypad, err := NewKeypad(rows, cols)
	if err != nil {
		return device.Devices{}, nil, device.Unavailable("keypad", err)
	}

	doorPin, err := pinByName(cfg.Door.Pin)
	if err != nil {
		return device.Devices{}, nil, device.Unavailable("door", err)
	}
	closed := gpio.Low
	if cfg.Door.ClosedLevel == "high" {
		closed = gpio.High
	}
	door, err := NewDoor(doorPin, closed)
	if err != nil {
		return device.Devices{}, nil, device.Unavailable("door", err)
	}

	servoPin, err := pinByName(cfg.Servo.Pin)
	if err != nil {
		return device.Devices{}, nil, device.Unavailable("servo", err)
	}
	servo, err := NewServo(servoPin,
		time.Duration(cfg.Servo.OpenUS)*time.Microsecond,
		time.Duration(cfg.Servo.MidUS)*time.Microsecond,
		time.Duration(cfg.Servo.LockedUS)*time.Microsecond,
	)
	if err != nil {
		return device.Devices{}, nil, device.Unavailable("servo", err)
	}

	return device.Devices{Keys: keypad, Display: lcd, Door: door, Lock: servo}, keypad, nil
}

func pinByName(name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("pin %q not found", name)
	}
	return p, nil
}

type busTx interface {
	Tx(addr uint16, w, r []byte) error
}

// scanI2C returns the first address that acknowledges a one-byte read.
func scanI2C(bus busTx) (uint16, error) {
	buf := make([]byte, 1)
	for addr := uint16(i2cScanFirst); addr <= i2cScanLast; addr++ {
		if err := bus.Tx(addr, nil, buf); err == nil {
			return addr, nil
		}
	}
	return 0, errNoI2CDevice
}
