// Package config loads the catalog's options file. Every key is optional;
// a value that cannot be used falls back to its default and is reported as
// a warning instead of failing the load.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abelbrown/catalog/internal/debounce"
	"github.com/abelbrown/catalog/internal/logging"
	"github.com/abelbrown/catalog/internal/query"
	"github.com/abelbrown/catalog/internal/vocab"
)

// DefaultOrigin is the site used when no valid site_url is configured.
const DefaultOrigin = "http://localhost"

// Config is the complete set of host options plus client tuning.
type Config struct {
	SiteURL        string
	Features       Features
	OrderBy        query.SortKey
	Order          query.Direction
	SearchExpanded bool

	// Client tuning
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 = unlimited
	Debounce  time.Duration

	LogLevel string
	LogFile  string
	EventLog string // JSONL event log path, "" = disabled

	// Warnings lists every option that was ignored or replaced.
	Warnings []string
}

// Features toggles the optional parts of the catalog.
type Features struct {
	InitialLoad        bool // show_all: fetch resources at start
	SearchExpandButton bool
	Search             bool
	Reset              bool
	Filters            bool
	Filter             map[vocab.Name]bool
	OutboundAnalytics  bool
}

// FilterEnabled reports whether the filter for a vocabulary is shown.
func (f Features) FilterEnabled(name vocab.Name) bool {
	return f.Filters && f.Filter[name]
}

// Default returns the configuration used when no options are given.
// An invalid origin falls back to DefaultOrigin.
func Default(origin string) *Config {
	if _, ok := validateSite(origin); !ok {
		origin = DefaultOrigin
	}
	filter := make(map[vocab.Name]bool, len(vocab.All))
	for _, name := range vocab.All {
		filter[name] = true
	}
	return &Config{
		SiteURL: origin,
		Features: Features{
			InitialLoad:        true,
			SearchExpandButton: true,
			Search:             true,
			Reset:              true,
			Filters:            true,
			Filter:             filter,
			OutboundAnalytics:  true,
		},
		OrderBy:   query.DefaultSortKey,
		Order:     query.Asc,
		Timeout:   30 * time.Second,
		RateLimit: 10,
		Debounce:  debounce.DefaultDelay,
		LogLevel:  "info",
	}
}

// Path returns the default options file location.
func Path() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".catalog", "catalog.yaml")
}

// Load reads the options file at path on top of Default(origin). A missing
// file yields the defaults. A file that is not valid YAML also yields the
// defaults, with a warning; only read errors are returned.
func Load(path, origin string) (*Config, error) {
	cfg := Default(origin)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var opts map[string]any
	if err := yaml.Unmarshal(data, &opts); err != nil {
		cfg.warn("config %s is not valid YAML, using defaults: %v", path, err)
		return cfg, nil
	}
	cfg.Apply(opts)
	return cfg, nil
}

// Apply overlays raw options onto c. Keys that are absent keep their
// current value.
func (c *Config) Apply(opts map[string]any) {
	if v, ok := opts["site_url"]; ok {
		if site, ok := validateSite(fmt.Sprint(v)); ok {
			c.SiteURL = site
		} else {
			c.warn("site_url %q is not an absolute http(s) URL, keeping %s", v, c.SiteURL)
		}
	}

	c.applyBool(opts, "search_expand_button", &c.Features.SearchExpandButton)
	c.applyBool(opts, "search", &c.Features.Search)
	c.applyBool(opts, "reset", &c.Features.Reset)
	c.applyBool(opts, "show_all", &c.Features.InitialLoad)
	c.applyBool(opts, "filters", &c.Features.Filters)
	c.applyBool(opts, "outbound_analytics", &c.Features.OutboundAnalytics)
	for _, name := range vocab.All {
		enabled := c.Features.Filter[name]
		c.applyBool(opts, string(name)+"_filter", &enabled)
		c.Features.Filter[name] = enabled
	}

	if v, ok := opts["order"]; ok {
		if dir, ok := query.ParseDirection(fmt.Sprint(v)); ok {
			c.Order = dir
		} else {
			c.Order = query.Asc
			c.warn("order %q is not asc or desc, using asc", v)
		}
	}
	if v, ok := opts["orderby"]; ok {
		if key, ok := query.ParseSortKey(fmt.Sprint(v)); ok {
			c.OrderBy = key
		} else {
			c.OrderBy = query.DefaultSortKey
			c.warn("orderby %q is not a sort key, using %s", v, query.DefaultSortKey)
		}
	}

	c.applyBool(opts, "search_expanded", &c.SearchExpanded)
	if !c.Features.SearchExpandButton {
		c.SearchExpanded = true
	}

	c.applyDuration(opts, "timeout", &c.Timeout)
	c.applyDuration(opts, "debounce", &c.Debounce)
	if v, ok := opts["rate_limit"]; ok {
		if f, ok := toFloat(v); ok && f >= 0 {
			c.RateLimit = f
		} else {
			c.warn("rate_limit %v is not a non-negative number, keeping %v", v, c.RateLimit)
		}
	}
	c.applyString(opts, "log_level", &c.LogLevel)
	c.applyString(opts, "log_file", &c.LogFile)
	c.applyString(opts, "event_log", &c.EventLog)
}

func (c *Config) warn(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

// ReportWarnings logs every collected warning. Load runs before logging is
// set up, so callers report once the logger exists.
func (c *Config) ReportWarnings() {
	for _, msg := range c.Warnings {
		logging.Warn("Config option ignored", "reason", msg)
	}
}

func (c *Config) applyBool(opts map[string]any, key string, dst *bool) {
	v, ok := opts[key]
	if !ok {
		return
	}
	b, ok := toBool(v)
	if !ok {
		c.warn("%s %v is not a boolean, keeping %v", key, v, *dst)
		return
	}
	*dst = b
}

func (c *Config) applyDuration(opts map[string]any, key string, dst *time.Duration) {
	v, ok := opts[key]
	if !ok {
		return
	}
	d, ok := toDuration(v)
	if !ok || d < 0 {
		c.warn("%s %v is not a duration, keeping %s", key, v, *dst)
		return
	}
	*dst = d
}

func (c *Config) applyString(opts map[string]any, key string, dst *string) {
	v, ok := opts[key]
	if !ok {
		return
	}
	s, ok := v.(string)
	if !ok {
		c.warn("%s %v is not a string, keeping %q", key, v, *dst)
		return
	}
	*dst = s
}

func validateSite(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}
	return strings.TrimRight(u.String(), "/"), true
}

// toBool accepts YAML booleans, numbers (non-zero is true), null (false)
// and the strings strconv.ParseBool understands.
func toBool(v any) (bool, bool) {
	switch t := v.(type) {
	case nil:
		return false, true
	case bool:
		return t, true
	case int:
		return t != 0, true
	case float64:
		return t != 0, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return b, err == nil
	}
	return false, false
}

// toDuration accepts Go duration strings ("500ms") or a bare number of
// milliseconds.
func toDuration(v any) (time.Duration, bool) {
	switch t := v.(type) {
	case int:
		return time.Duration(t) * time.Millisecond, true
	case float64:
		return time.Duration(t * float64(time.Millisecond)), true
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(t))
		return d, err == nil
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}
