package logging

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestHelpersNoopWithoutInit(t *testing.T) {
	Logger = nil
	Info("ignored", "k", 1)
	Debug("ignored")
	Warn("ignored")
	Error("ignored")
	if WithPrefix("x") != nil {
		t.Error("WithPrefix should return nil before Init")
	}
}

func TestInitLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, "warn")
	defer func() { Logger = nil }()

	Info("hidden info")
	Warn("shown warning", "page", 2)

	out := buf.String()
	if strings.Contains(out, "hidden info") {
		t.Errorf("info line should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown warning") || !strings.Contains(out, "page=2") {
		t.Errorf("warn line missing or malformed: %q", out)
	}
}

func TestInitUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, "chatty")
	defer func() { Logger = nil }()

	Info("info visible")
	out := buf.String()
	if !strings.Contains(out, "Unknown log level") {
		t.Errorf("expected warning about unknown level: %q", out)
	}
	if !strings.Contains(out, "info visible") {
		t.Errorf("info should be logged at fallback level: %q", out)
	}
}

func TestInitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "catalog.log")
	if err := InitFile(path, "debug"); err != nil {
		t.Fatalf("InitFile failed: %v", err)
	}
	Debug("written to file")
	Close()
	Logger = nil
}
