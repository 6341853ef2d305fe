package loghandler

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestCompactHandler_TagAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCompactHandler(&buf, slog.LevelInfo))

	logger.Info("game resolved", "tag", "game", "cards", 14)

	line := buf.String()
	if !strings.Contains(line, " [game] game resolved cards=14\n") {
		t.Errorf("unexpected line: %q", line)
	}
	if strings.Contains(line, "tag=") {
		t.Errorf("tag should not be repeated as key=value: %q", line)
	}
	if strings.Contains(line, "[INFO]") {
		t.Errorf("info records should not carry a level: %q", line)
	}
}

func TestCompactHandler_LevelFilterAndPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCompactHandler(&buf, slog.LevelInfo))

	logger.Debug("hidden", "tag", "game")
	if buf.Len() != 0 {
		t.Fatalf("debug record should be filtered, got %q", buf.String())
	}

	logger.Warn("unknown card", "tag", "game", "card", "x--1")
	if !strings.Contains(buf.String(), "[WARN] [game] unknown card card=x--1") {
		t.Errorf("unexpected line: %q", buf.String())
	}
}

func TestCompactHandler_WithAttrsKeepsTag(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCompactHandler(&buf, slog.LevelDebug)).With("tag", "ws", "session", "abc")

	logger.Info("connected")

	line := buf.String()
	if !strings.Contains(line, "[ws] connected session=abc") {
		t.Errorf("unexpected line: %q", line)
	}
}

func TestCompactHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCompactHandler(&buf, slog.LevelInfo)).WithGroup("req")

	logger.Info("done", "status", 200, slog.Group("img", "id", "7"))

	line := buf.String()
	if !strings.Contains(line, "req.status=200") {
		t.Errorf("expected grouped key, got %q", line)
	}
	if !strings.Contains(line, "req.img.id=7") {
		t.Errorf("expected nested grouped key, got %q", line)
	}
}
