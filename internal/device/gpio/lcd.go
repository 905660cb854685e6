package gpio

import (
	"fmt"
	"time"
)

// PCF8574 pin mapping used by the common LCD backpacks.
const (
	lcdRS        = 0x01
	lcdEnable    = 0x04
	lcdBacklight = 0x08
)

// HD44780 instructions.
const (
	cmdClear       = 0x01
	cmdEntryMode   = 0x06 // increment, no shift
	cmdDisplayOn   = 0x0C // display on, cursor off, blink off
	cmdFunctionSet = 0x28 // 4-bit bus, 2 lines, 5x8 font
	cmdSetDDRAM    = 0x80
)

var lcdRowOffsets = [4]byte{0x00, 0x40, 0x14, 0x54}

type i2cConn interface {
	Tx(w, r []byte) error
}

// LCD is an HD44780 character display in 4-bit mode behind a PCF8574.
type LCD struct {
	dev   i2cConn
	rows  int
	cols  int
	sleep func(time.Duration)
}

// NewLCD runs the power-on initialization sequence.
func NewLCD(dev i2cConn, rows, cols int) (*LCD, error) {
	if rows < 1 || rows > len(lcdRowOffsets) {
		return nil, fmt.Errorf("lcd rows %d out of range", rows)
	}
	l := &LCD{dev: dev, rows: rows, cols: cols, sleep: time.Sleep}
	if err := l.init(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *LCD) init() error {
	l.sleep(50 * time.Millisecond)
	// three 8-bit resets, then switch to 4-bit
	for _, n := range []byte{0x30, 0x30, 0x30, 0x20} {
		if err := l.pulse(n); err != nil {
			return fmt.Errorf("lcd reset: %w", err)
		}
		l.sleep(5 * time.Millisecond)
	}
	for _, c := range []byte{cmdFunctionSet, cmdDisplayOn, cmdEntryMode} {
		if err := l.command(c); err != nil {
			return fmt.Errorf("lcd init: %w", err)
		}
	}
	return l.Clear()
}

func (l *LCD) Clear() error {
	if err := l.command(cmdClear); err != nil {
		return err
	}
	l.sleep(2 * time.Millisecond)
	return nil
}

// Write places text at row/col, clipped to the row. Non-ASCII runes show as '?'.
func (l *LCD) Write(row, col int, text string) error {
	if row < 0 || row >= l.rows || col < 0 || col >= l.cols {
		return fmt.Errorf("lcd write at %d,%d outside %dx%d grid", row, col, l.rows, l.cols)
	}
	if err := l.command(cmdSetDDRAM | (lcdRowOffsets[row] + byte(col))); err != nil {
		return err
	}
	n := col
	for _, r := range text {
		if n >= l.cols {
			break
		}
		b := byte('?')
		if r >= 0x20 && r < 0x7F {
			b = byte(r)
		}
		if err := l.send(b, lcdRS); err != nil {
			return err
		}
		n++
	}
	return nil
}

func (l *LCD) Size() (int, int) { return l.rows, l.cols }

func (l *LCD) command(b byte) error { return l.send(b, 0) }

func (l *LCD) send(b, mode byte) error {
	if err := l.pulse(b&0xF0 | mode); err != nil {
		return err
	}
	return l.pulse((b<<4)&0xF0 | mode)
}

// pulse latches the high nibble of b by toggling enable.
func (l *LCD) pulse(b byte) error {
	if err := l.dev.Tx([]byte{b | lcdBacklight | lcdEnable}, nil); err != nil {
		return err
	}
	return l.dev.Tx([]byte{b | lcdBacklight}, nil)
}
