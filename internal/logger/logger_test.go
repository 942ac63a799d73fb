package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}

	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	log := New("warn", &buf)
	log.Info("hidden")
	log.Warn("shown", "page", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered: %s", out)
	}

	if !strings.Contains(out, "shown") || !strings.Contains(out, "page=3") {
		t.Errorf("warn record missing: %s", out)
	}

	log.SetLevel("debug")
	log.With("phase", "recover").Debug("now visible")

	if !strings.Contains(buf.String(), "phase=recover") {
		t.Errorf("child logger attributes missing: %s", buf.String())
	}
}

func TestLogger_Log(t *testing.T) {
	var buf bytes.Buffer

	log := New("info", &buf)
	log.Log(context.Background(), slog.LevelDebug, "dropped")
	log.Log(context.Background(), slog.LevelWarn, "kept", "url", "av3")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("debug record should be filtered: %s", out)
	}

	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "url=av3") {
		t.Errorf("warn record missing: %s", out)
	}
}
