package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		env, level string
		enabled    zapcore.Level
		disabled   zapcore.Level
	}{
		{"production", "info", zapcore.InfoLevel, zapcore.DebugLevel},
		{"dev", "debug", zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"test", "warn", zapcore.WarnLevel, zapcore.InfoLevel},
	}
	for _, tt := range tests {
		logger, err := New(tt.env, tt.level)
		if err != nil {
			t.Fatalf("New(%q,%q) error: %v", tt.env, tt.level, err)
		}
		if !logger.Core().Enabled(tt.enabled) {
			t.Fatalf("level %s should be enabled for %q", tt.enabled, tt.level)
		}
		if logger.Core().Enabled(tt.disabled) {
			t.Fatalf("level %s should be disabled for %q", tt.disabled, tt.level)
		}
	}

	if _, err := New("production", "chatty"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
