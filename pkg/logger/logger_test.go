package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		enabled slog.Level
		blocked slog.Level
	}{
		{"debug", DEBUG, slog.LevelDebug, slog.LevelDebug - 4},
		{"warn", WARN, slog.LevelWarn, slog.LevelInfo},
		{"default is info", EMPTY, slog.LevelInfo, slog.LevelDebug},
		{"unknown is info", "verbose", slog.LevelInfo, slog.LevelDebug},
	}

	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := New(Config{Level: tt.level, Output: &bytes.Buffer{}})
			if !log.Enabled(ctx, tt.enabled) {
				t.Errorf("expected level %s to be enabled", tt.enabled)
			}
			if log.Enabled(ctx, tt.blocked) {
				t.Errorf("expected level %s to be disabled", tt.blocked)
			}
		})
	}
}

func TestNew_ServiceAttribute(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf, Service: "booking"}).With("session_id", "abc")
	log.Info("hello")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if record[SERVICE] != "booking" {
		t.Errorf("expected service=booking, got %v", record[SERVICE])
	}
	if record["session_id"] != "abc" {
		t.Errorf("expected session_id=abc, got %v", record["session_id"])
	}
}
