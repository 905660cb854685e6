package device

import (
	"errors"
	"testing"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		in     rune
		want   Key
		wantOK bool
	}{
		{'0', Key('0'), true},
		{'9', Key('9'), true},
		{'A', KeyA, true},
		{'d', KeyD, true},
		{'*', KeyStar, true},
		{'#', KeyPound, true},
		{'E', KeyNone, false},
		{' ', KeyNone, false},
	}
	for _, tt := range tests {
		got, ok := ParseKey(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseKey(%q) = %v,%v want %v,%v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestKeyIsDigit(t *testing.T) {
	for _, k := range []Key{'0', '5', '9'} {
		if !k.IsDigit() {
			t.Errorf("%v should be a digit", k)
		}
	}
	for _, k := range []Key{KeyNone, KeyA, KeyPound, KeyStar} {
		if k.IsDigit() {
			t.Errorf("%v should not be a digit", k)
		}
	}
}

func TestUnavailableWraps(t *testing.T) {
	err := Unavailable("lcd", errors.New("no i2c bus"))
	if !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("expected ErrDeviceUnavailable, got %v", err)
	}
}

func TestMockKeys_ScriptAndIdle(t *testing.T) {
	m := NewMockKeys("1.#")
	want := []Key{'1', KeyNone, KeyPound, KeyNone}
	for i, w := range want {
		if got := m.Poll(); got != w {
			t.Fatalf("poll %d = %v, want %v", i, got, w)
		}
	}
	if m.Polls() != 4 {
		t.Fatalf("polls = %d", m.Polls())
	}
}

func TestMockDisplay_WriteClipsToGrid(t *testing.T) {
	d := NewMockDisplay(2, 4)
	if err := d.Write(0, 1, "abcdef"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := d.Line(0); got != " abc" {
		t.Fatalf("line 0 = %q", got)
	}
	if err := d.Write(2, 0, "x"); err == nil {
		t.Fatalf("expected out-of-grid error")
	}
	_ = d.Clear()
	if d.Text() != "\n" {
		t.Fatalf("expected blank grid, got %q", d.Text())
	}
}

func TestMockDoor_OpenAtCheck(t *testing.T) {
	d := NewMockDoor(true)
	d.OpenAtCheck = 3
	got := []bool{d.IsClosed(), d.IsClosed(), d.IsClosed()}
	if !got[0] || !got[1] || got[2] {
		t.Fatalf("unexpected door sequence %v", got)
	}
}
