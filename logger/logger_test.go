package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestContextLogging(t *testing.T) {
	// Create a context with pool and connection information
	ctx := context.Background()
	ctx = context.WithValue(ctx, PoolNameKey, "main")
	ctx = context.WithValue(ctx, ConnIDKey, "conn-123")
	ctx = context.WithValue(ctx, RequestIDKey, "req789")

	// Test context-aware logging
	InfoContext(ctx, "Test message with context")

	// Test appending to existing args
	InfoContext(ctx, "Test message with context and args", "key", "value")
}

func TestExtractContextValues(t *testing.T) {
	if got := ExtractContextValues(nil); got != nil {
		t.Errorf("Expected nil args for nil context, got %v", got)
	}

	ctx := WithContextValue(context.Background(), ConnIDKey, "conn-42")
	args := ExtractContextValues(ctx)
	if len(args) != 2 || args[0] != "conn_id" || args[1] != "conn-42" {
		t.Errorf("Unexpected args extracted: %v", args)
	}
}

func TestLevelName(t *testing.T) {
	if got := LevelName(LevelTrace); got != "TRACE" {
		t.Errorf("Expected TRACE, got %s", got)
	}
	if got := LevelName(LevelFatal); got != "FATAL" {
		t.Errorf("Expected FATAL, got %s", got)
	}
	if got := LevelName(slog.LevelWarn); got != "WARN" {
		t.Errorf("Expected WARN, got %s", got)
	}
}

func TestLoadConfigParsesCustomLevels(t *testing.T) {
	t.Setenv("LOG_LEVEL", "TRACE")
	if cfg := LoadConfig(); cfg.Level != LevelTrace {
		t.Errorf("Expected trace level, got %v", cfg.Level)
	}

	t.Setenv("LOG_LEVEL", "FATAL")
	if cfg := LoadConfig(); cfg.Level != LevelFatal {
		t.Errorf("Expected fatal level, got %v", cfg.Level)
	}
}

func TestNewLoggerRendersCustomLevelNames(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Level = LevelTrace
	cfg.Format = "text"
	cfg.AddSource = false
	cfg.Writer = &buf

	NewLogger(cfg).Log(context.Background(), LevelTrace, "tracing")
	if out := buf.String(); !strings.Contains(out, "level=TRACE") {
		t.Errorf("Expected TRACE level name in output, got %q", out)
	}
}
