package gpio

import (
	"fmt"
	"sync"
	"time"

	"phonebox/internal/device"

	"periph.io/x/conn/v3/gpio"
)

const (
	// scanInterval is short enough to catch a quick tap.
	scanInterval = 10 * time.Millisecond
	keyBuffer    = 16
)

var (
	layout4x3 = []string{"123", "456", "789", "*0#"}
	layout4x4 = []string{"123A", "456B", "789C", "*0#D"}
)

// Keypad scans a row/column matrix. Rows are driven low one at a time and
// columns read with pull-ups, so a pressed key reads low. A background scan
// queues each new press until Poll takes it.
type Keypad struct {
	rows   []outputPin
	cols   []inputPin
	layout []string

	held device.Key // owned by the scanning goroutine
	keys chan device.Key

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewKeypad configures the pins and picks the layout from the column count.
// Scanning starts with Start.
func NewKeypad(rows []outputPin, cols []inputPin) (*Keypad, error) {
	var layout []string
	switch {
	case len(rows) == 4 && len(cols) == 3:
		layout = layout4x3
	case len(rows) == 4 && len(cols) == 4:
		layout = layout4x4
	default:
		return nil, fmt.Errorf("unsupported keypad matrix %dx%d", len(rows), len(cols))
	}
	for i, r := range rows {
		if err := r.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("keypad row %d: %w", i, err)
		}
	}
	for i, c := range cols {
		if err := c.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("keypad col %d: %w", i, err)
		}
	}
	return &Keypad{
		rows:   rows,
		cols:   cols,
		layout: layout,
		keys:   make(chan device.Key, keyBuffer),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}, nil
}

// Start scans the matrix every interval until Stop.
func (k *Keypad) Start(interval time.Duration) {
	go k.scanLoop(interval)
}

// Stop ends scanning and waits for the scanner to exit. Only call it after Start.
func (k *Keypad) Stop() {
	k.stopOnce.Do(func() { close(k.stop) })
	<-k.done
}

func (k *Keypad) scanLoop(interval time.Duration) {
	defer close(k.done)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-k.stop:
			return
		case <-t.C:
			k.scanOnce()
		}
	}
}

// scanOnce queues the key if it was pressed since the previous scan.
// Holding a key queues it once.
func (k *Keypad) scanOnce() {
	cur := k.scan()
	if cur == k.held {
		return
	}
	k.held = cur
	if cur == device.KeyNone {
		return
	}
	select {
	case k.keys <- cur:
	default: // drop when the controller is not keeping up
	}
}

// Poll returns the next queued press without blocking.
func (k *Keypad) Poll() device.Key {
	select {
	case key := <-k.keys:
		return key
	default:
		return device.KeyNone
	}
}

func (k *Keypad) scan() device.Key {
	for r, row := range k.rows {
		if err := row.Out(gpio.Low); err != nil {
			continue
		}
		found := device.KeyNone
		for c, col := range k.cols {
			if col.Read() == gpio.Low {
				found = device.Key(k.layout[r][c])
				break
			}
		}
		_ = row.Out(gpio.High)
		if found != device.KeyNone {
			return found
		}
	}
	return device.KeyNone
}
