// Package terminal simulates the phone box on a TTY: keys come from raw
// stdin, the LCD is drawn as a bordered box, 'o' toggles the door and
// Ctrl-C stops the program.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"phonebox/internal/config"
	"phonebox/internal/device"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const (
	keyBuffer  = 16
	doorToggle = 'o'
	ctrlC      = 0x03

	clearScreen = "\x1b[H\x1b[2J"
)

var errNotATerminal = errors.New("stdin is not a terminal")

var (
	lcdStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Faint(true)
)

// Terminal implements every device capability on a reader/writer pair.
type Terminal struct {
	keys      chan device.Key
	interrupt func()
	doorOpen  atomic.Bool

	mu   sync.Mutex
	out  io.Writer
	rows int
	cols int
	grid [][]rune
	lock device.Position
}

// Open puts stdin into raw mode and returns the simulated devices.
// interrupt is called on Ctrl-C since raw mode swallows SIGINT.
func Open(cfg config.Config, interrupt func()) (device.Devices, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return device.Devices{}, device.Unavailable("terminal", errNotATerminal)
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return device.Devices{}, device.Unavailable("terminal", err)
	}

	t := New(os.Stdin, os.Stdout, cfg.Display.Rows, cfg.Display.Cols, interrupt)
	return device.Devices{
		Keys:    t,
		Display: t,
		Door:    t,
		Lock:    t,
		Close: func() error {
			_, _ = fmt.Fprint(os.Stdout, "\r\n")
			return term.Restore(fd, state)
		},
	}, nil
}

// New starts reading keys from in and renders to out. The door starts closed.
func New(in io.Reader, out io.Writer, rows, cols int, interrupt func()) *Terminal {
	t := &Terminal{
		keys:      make(chan device.Key, keyBuffer),
		interrupt: interrupt,
		out:       out,
		rows:      rows,
		cols:      cols,
		lock:      device.PositionLocked,
	}
	t.resetGrid()
	go t.readLoop(in)
	return t
}

func (t *Terminal) readLoop(in io.Reader) {
	r := bufio.NewReader(in)
	for {
		b, err := r.ReadByte()
		if err != nil {
			return
		}
		switch {
		case b == ctrlC:
			if t.interrupt != nil {
				t.interrupt()
			}
		case b == doorToggle:
			t.doorOpen.Store(!t.doorOpen.Load())
			t.mu.Lock()
			t.render()
			t.mu.Unlock()
		default:
			k, ok := device.ParseKey(rune(b))
			if !ok {
				continue
			}
			select {
			case t.keys <- k:
			default: // drop when the controller is not keeping up
			}
		}
	}
}

// Poll returns the next buffered key without blocking.
func (t *Terminal) Poll() device.Key {
	select {
	case k := <-t.keys:
		return k
	default:
		return device.KeyNone
	}
}

// IsClosed reports the simulated door, closed until 'o' is pressed.
func (t *Terminal) IsClosed() bool { return !t.doorOpen.Load() }

func (t *Terminal) SetPosition(p device.Position) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lock = p
	t.render()
	return nil
}

func (t *Terminal) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetGrid()
	t.render()
	return nil
}

func (t *Terminal) Write(row, col int, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if row < 0 || row >= t.rows || col < 0 || col >= t.cols {
		return fmt.Errorf("write at %d,%d outside %dx%d grid", row, col, t.rows, t.cols)
	}
	for i, r := range []rune(text) {
		if col+i >= t.cols {
			break
		}
		t.grid[row][col+i] = r
	}
	t.render()
	return nil
}

func (t *Terminal) Size() (int, int) { return t.rows, t.cols }

func (t *Terminal) resetGrid() {
	t.grid = make([][]rune, t.rows)
	for i := range t.grid {
		t.grid[i] = []rune(strings.Repeat(" ", t.cols))
	}
}

// render redraws the screen. Callers hold mu.
func (t *Terminal) render() {
	lines := make([]string, len(t.grid))
	for i, row := range t.grid {
		lines[i] = string(row)
	}
	door := "closed"
	if !t.IsClosed() {
		door = "OPEN"
	}
	status := statusStyle.Render(fmt.Sprintf("door: %s  lock: %s  [o] door  [^C] quit", door, t.lock))
	frame := lcdStyle.Render(strings.Join(lines, "\n")) + "\n" + status + "\n"
	// raw mode needs explicit carriage returns
	_, _ = io.WriteString(t.out, clearScreen+strings.ReplaceAll(frame, "\n", "\r\n"))
}
