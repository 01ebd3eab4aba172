package logging

import (
	"errors"
	"testing"
)

func TestNewStructuredLevels(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{name: "debug json", level: "debug", format: "json"},
		{name: "info console", level: "info", format: "console"},
		{name: "warn json", level: "warn", format: "json"},
		{name: "error console", level: "error", format: "console"},
		{name: "unknown defaults to info", level: "bogus", format: "json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewStructured(tt.level, tt.format)
			if l == nil {
				t.Fatal("NewStructured returned nil")
			}
			// Must not panic on any level.
			l.Debug("debug message", nil)
			l.Info("info message", map[string]interface{}{"k": "v"})
			l.Warn("warn message", nil)
			l.Error("error message", map[string]interface{}{"n": 1})
		})
	}
}

func TestWithFieldsReturnsNewLogger(t *testing.T) {
	base := NewNopLogger()
	child := base.WithFields(map[string]interface{}{"component": "mapper"})
	if child == nil {
		t.Fatal("WithFields returned nil")
	}
	if child == base {
		t.Error("WithFields should return a derived logger, not the receiver")
	}
	child.Info("derived logger works", nil)
}

func TestWithError(t *testing.T) {
	l := NewTestLogger(t)
	derived := l.WithError(errors.New("boom"))
	if derived == nil {
		t.Fatal("WithError returned nil")
	}
	derived.Warn("recorded error", nil)
}
