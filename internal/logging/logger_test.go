package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestPrettyHandlerPromotesComponent(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	logger.Info("session created", String(FieldComponent, "api-server"), String(FieldSessionID, "abc"))

	line := buf.String()
	if !strings.Contains(line, "api-server: session created") {
		t.Fatalf("expected component prefix, got %q", line)
	}
	if !strings.Contains(line, "session_id=abc") {
		t.Fatalf("expected session_id attr, got %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should not be repeated as an attr: %q", line)
	}
}

func TestPrettyHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	logger.Warn("analysis failed", String("reason", "model timed out"))

	line := buf.String()
	if !strings.Contains(line, `reason="model timed out"`) {
		t.Fatalf("expected quoted value, got %q", line)
	}
	if !strings.Contains(line, "WARN") {
		t.Fatalf("expected WARN label, got %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if got := parseLevel("bogus"); got != slog.LevelInfo {
		t.Fatalf("expected info, got %v", got)
	}
	if got := parseLevel("debug"); got != slog.LevelDebug {
		t.Fatalf("expected debug, got %v", got)
	}
}
