package infrastructure_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/JaimeStill/intake/internal/config"
	"github.com/JaimeStill/intake/internal/infrastructure"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := infrastructure.NewLogger(&config.LoggingConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("dropped")
	logger.Warn("kept", "system", "pipeline")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "kept" || entry["system"] != "pipeline" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNewLoggerText(t *testing.T) {
	var buf bytes.Buffer
	logger := infrastructure.NewLogger(&config.LoggingConfig{Level: "debug", Format: "text"}, &buf)

	logger.Debug("rendered page", "dpi", 300)

	if !strings.Contains(buf.String(), "msg=\"rendered page\" dpi=300") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestNewRegistry(t *testing.T) {
	families, err := infrastructure.NewRegistry().Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}

	for _, f := range families {
		if f.GetName() == "go_goroutines" {
			return
		}
	}
	t.Error("go runtime collector not registered")
}
