package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/catalog/internal/logging"
	"github.com/abelbrown/catalog/internal/query"
	"github.com/abelbrown/catalog/internal/vocab"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default("")
	if cfg.SiteURL != DefaultOrigin {
		t.Errorf("SiteURL = %q, want %q", cfg.SiteURL, DefaultOrigin)
	}
	if cfg.OrderBy != query.SortTitle || cfg.Order != query.Asc {
		t.Errorf("order = %s %s, want title asc", cfg.OrderBy, cfg.Order)
	}
	if !cfg.Features.InitialLoad || !cfg.Features.Search || !cfg.Features.Reset {
		t.Errorf("features = %+v, want all enabled", cfg.Features)
	}
	for _, name := range vocab.All {
		if !cfg.Features.FilterEnabled(name) {
			t.Errorf("filter %s disabled by default", name)
		}
	}
	if cfg.SearchExpanded {
		t.Error("SearchExpanded should default to false")
	}
	if cfg.Debounce != 350*time.Millisecond {
		t.Errorf("Debounce = %v, want 350ms", cfg.Debounce)
	}
}

func TestDefaultOrigin(t *testing.T) {
	if got := Default("https://example.org/").SiteURL; got != "https://example.org" {
		t.Errorf("SiteURL = %q, want https://example.org", got)
	}
	if got := Default("not a url").SiteURL; got != DefaultOrigin {
		t.Errorf("SiteURL = %q, want %q", got, DefaultOrigin)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", cfg.Warnings)
	}
}

func TestLoadOptions(t *testing.T) {
	path := writeConfig(t, `
site_url: https://resources.example.org
show_all: false
tags_filter: false
outbound_analytics: "false"
order: desc
orderby: modified
search_expanded: true
timeout: 5s
debounce: 200
rate_limit: 2.5
log_level: debug
event_log: /tmp/events.jsonl
`)
	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SiteURL != "https://resources.example.org" {
		t.Errorf("SiteURL = %q", cfg.SiteURL)
	}
	if cfg.Features.InitialLoad {
		t.Error("show_all false should disable the initial load")
	}
	if cfg.Features.FilterEnabled(vocab.Tags) {
		t.Error("tags filter should be disabled")
	}
	if !cfg.Features.FilterEnabled(vocab.Programs) {
		t.Error("programs filter should stay enabled")
	}
	if cfg.Features.OutboundAnalytics {
		t.Error(`outbound_analytics "false" should disable analytics`)
	}
	if cfg.Order != query.Desc || cfg.OrderBy != query.SortModified {
		t.Errorf("order = %s %s, want modified desc", cfg.OrderBy, cfg.Order)
	}
	if !cfg.SearchExpanded {
		t.Error("SearchExpanded = false, want true")
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.Debounce != 200*time.Millisecond {
		t.Errorf("Debounce = %v, want 200ms", cfg.Debounce)
	}
	if cfg.RateLimit != 2.5 {
		t.Errorf("RateLimit = %v, want 2.5", cfg.RateLimit)
	}
	if cfg.LogLevel != "debug" || cfg.EventLog != "/tmp/events.jsonl" {
		t.Errorf("LogLevel = %q EventLog = %q", cfg.LogLevel, cfg.EventLog)
	}
	if len(cfg.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", cfg.Warnings)
	}
}

func TestMalformedValuesFallBack(t *testing.T) {
	tests := []struct {
		name  string
		opts  map[string]any
		check func(*Config) bool
	}{
		{"bad site", map[string]any{"site_url": "ftp://x"}, func(c *Config) bool { return c.SiteURL == DefaultOrigin }},
		{"relative site", map[string]any{"site_url": "/wp"}, func(c *Config) bool { return c.SiteURL == DefaultOrigin }},
		{"bad order", map[string]any{"order": "sideways"}, func(c *Config) bool { return c.Order == query.Asc }},
		{"bad orderby", map[string]any{"orderby": "author"}, func(c *Config) bool { return c.OrderBy == query.SortTitle }},
		{"bad bool", map[string]any{"reset": "maybe"}, func(c *Config) bool { return c.Features.Reset }},
		{"bad duration", map[string]any{"timeout": "soon"}, func(c *Config) bool { return c.Timeout == 30*time.Second }},
		{"negative rate", map[string]any{"rate_limit": -1}, func(c *Config) bool { return c.RateLimit == 10 }},
		{"non-string level", map[string]any{"log_level": 3}, func(c *Config) bool { return c.LogLevel == "info" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("")
			cfg.Apply(tt.opts)
			if !tt.check(cfg) {
				t.Errorf("option not reset to default: %+v", cfg)
			}
			if len(cfg.Warnings) != 1 {
				t.Errorf("Warnings = %v, want exactly one", cfg.Warnings)
			}
		})
	}
}

func TestSearchExpandedForcedWithoutButton(t *testing.T) {
	cfg := Default("")
	cfg.Apply(map[string]any{"search_expand_button": false, "search_expanded": false})
	if !cfg.SearchExpanded {
		t.Error("SearchExpanded should be forced true when the expand button is off")
	}
}

func TestInvalidYAMLUsesDefaults(t *testing.T) {
	path := writeConfig(t, "site_url: [unterminated\n")
	cfg, err := Load(path, "https://origin.example")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SiteURL != "https://origin.example" {
		t.Errorf("SiteURL = %q, want the origin", cfg.SiteURL)
	}
	if len(cfg.Warnings) != 1 {
		t.Errorf("Warnings = %v, want one", cfg.Warnings)
	}
}

func TestNullDisablesFeature(t *testing.T) {
	path := writeConfig(t, "filters:\n")
	cfg, err := Load(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Features.Filters {
		t.Error("a null filters value should disable filters")
	}
}

func TestWarningsReportedOnceLoggingIsUp(t *testing.T) {
	path := writeConfig(t, "order: sideways\nrate_limit: fast\n")
	cfg, err := Load(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Warnings) != 2 {
		t.Fatalf("Warnings = %q, want 2", cfg.Warnings)
	}

	var buf bytes.Buffer
	logging.Init(&buf, "warn")
	t.Cleanup(func() { logging.Logger = nil })

	cfg.ReportWarnings()
	out := buf.String()
	if n := strings.Count(out, "Config option ignored"); n != 2 {
		t.Errorf("logged %d warnings, want 2:\n%s", n, out)
	}
	if !strings.Contains(out, "sideways") || !strings.Contains(out, "fast") {
		t.Errorf("log lacks the rejected values:\n%s", out)
	}
}
