package device

import (
	"fmt"
	"strings"
	"sync"
)

// MockKeys returns scripted keys, one per Poll, then KeyNone.
type MockKeys struct {
	mu    sync.Mutex
	queue []Key
	polls int
}

// NewMockKeys parses script into keys. A '.' stands for a poll with no key.
func NewMockKeys(script string) *MockKeys {
	m := &MockKeys{}
	m.Push(script)
	return m
}

// Push appends script to the pending keys.
func (m *MockKeys) Push(script string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range script {
		if r == '.' {
			m.queue = append(m.queue, KeyNone)
			continue
		}
		if k, ok := ParseKey(r); ok {
			m.queue = append(m.queue, k)
		}
	}
}

func (m *MockKeys) Poll() Key {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.polls++
	if len(m.queue) == 0 {
		return KeyNone
	}
	k := m.queue[0]
	m.queue = m.queue[1:]
	return k
}

// Polls returns how many times Poll was called.
func (m *MockKeys) Polls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.polls
}

// Pending returns how many scripted keys are left.
func (m *MockKeys) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// MockDisplay keeps the grid contents in memory.
type MockDisplay struct {
	mu       sync.Mutex
	rows     int
	cols     int
	grid     [][]rune
	clears   int
	writeErr error
}

func NewMockDisplay(rows, cols int) *MockDisplay {
	d := &MockDisplay{rows: rows, cols: cols}
	d.reset()
	return d
}

func (d *MockDisplay) reset() {
	d.grid = make([][]rune, d.rows)
	for i := range d.grid {
		d.grid[i] = []rune(strings.Repeat(" ", d.cols))
	}
}

// FailWrites makes every following Write return err.
func (d *MockDisplay) FailWrites(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writeErr = err
}

func (d *MockDisplay) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clears++
	d.reset()
	return nil
}

func (d *MockDisplay) Write(row, col int, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.writeErr != nil {
		return d.writeErr
	}
	if row < 0 || row >= d.rows || col < 0 || col >= d.cols {
		return fmt.Errorf("write at %d,%d outside %dx%d grid", row, col, d.rows, d.cols)
	}
	for i, r := range []rune(text) {
		if col+i >= d.cols {
			break
		}
		d.grid[row][col+i] = r
	}
	return nil
}

func (d *MockDisplay) Size() (int, int) { return d.rows, d.cols }

// Line returns row with trailing spaces trimmed.
func (d *MockDisplay) Line(row int) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return strings.TrimRight(string(d.grid[row]), " ")
}

// Text returns all rows joined by newlines.
func (d *MockDisplay) Text() string {
	lines := make([]string, d.rows)
	for i := range lines {
		lines[i] = d.Line(i)
	}
	return strings.Join(lines, "\n")
}

// MockDoor is a door whose state tests flip directly.
type MockDoor struct {
	mu     sync.Mutex
	closed bool
	checks int
	// OpenAtCheck opens the door on the n-th IsClosed call (1-based). Zero disables it.
	OpenAtCheck int
}

func NewMockDoor(closed bool) *MockDoor { return &MockDoor{closed: closed} }

func (d *MockDoor) Set(closed bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = closed
}

func (d *MockDoor) IsClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.checks++
	if d.OpenAtCheck > 0 && d.checks >= d.OpenAtCheck {
		d.closed = false
	}
	return d.closed
}

// Checks returns how many times IsClosed was called.
func (d *MockDoor) Checks() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.checks
}

// MockLock records every commanded position.
type MockLock struct {
	mu        sync.Mutex
	positions []Position
	err       error
}

func NewMockLock() *MockLock { return &MockLock{} }

// Fail makes every following SetPosition return err.
func (l *MockLock) Fail(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}

func (l *MockLock) SetPosition(p Position) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.positions = append(l.positions, p)
	return nil
}

// Positions returns a copy of the commanded positions.
func (l *MockLock) Positions() []Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Position(nil), l.positions...)
}

// Last returns the last commanded position and whether any was commanded.
func (l *MockLock) Last() (Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.positions) == 0 {
		return 0, false
	}
	return l.positions[len(l.positions)-1], true
}
