package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestToZapLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		DebugLevel: zapcore.DebugLevel,
		InfoLevel:  zapcore.InfoLevel,
		WarnLevel:  zapcore.WarnLevel,
		ErrorLevel: zapcore.ErrorLevel,
		"verbose":  defaultZapLevel,
	}
	for in, want := range cases {
		if got := toZapLevel(in); got != want {
			t.Errorf("toZapLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestGet_ReturnsSingletonAndSetLevelApplies(t *testing.T) {
	a := Get(InfoLevel)
	b := Get(ErrorLevel)
	if a != b {
		t.Fatalf("expected singleton logger")
	}

	SetLevel(WarnLevel)
	if a.level.Level() != zapcore.WarnLevel {
		t.Fatalf("level = %v, want warn", a.level.Level())
	}
	if a.Desugar().Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info should be disabled at warn level")
	}
}

func TestNewNop_DoesNotPanic(t *testing.T) {
	l := NewNop()
	l.Infow("ignored", "k", "v")
	if l.level != nil {
		t.Fatalf("nop logger has no adjustable level")
	}
}
