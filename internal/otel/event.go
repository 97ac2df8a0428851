// Package otel is the catalog's event log: typed events serialized as JSONL
// by an async writer, with an optional in-memory ring buffer feeding the
// debug overlay.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Fetch chain events
	KindFetchStart    EventKind = "fetch.start"
	KindFetchPage     EventKind = "fetch.page"
	KindFetchComplete EventKind = "fetch.complete"
	KindFetchError    EventKind = "fetch.error"
	KindFetchStale    EventKind = "fetch.stale"

	// Search expansion events
	KindExpandTags       EventKind = "expand.tags"
	KindExpandCategories EventKind = "expand.categories"

	// Query cycle events
	KindDebounceFire EventKind = "debounce.fire"
	KindReset        EventKind = "query.reset"

	// UI events
	KindOutbound EventKind = "ui.outbound"

	// System events
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
)

// Event is the universal log record. Every field except Kind and Time is
// optional. Serialized as a single JSONL line.
type Event struct {
	Time       time.Time      `json:"t"`
	Level      Level          `json:"level,omitempty"`
	Kind       EventKind      `json:"kind"`
	Comp       string         `json:"comp,omitempty"` // component: "catalog", "ui", "main"
	SessionID  string         `json:"session_id,omitempty"`
	Chain      string         `json:"chain,omitempty"` // pagination chain correlation ID
	Generation uint64         `json:"gen,omitempty"`
	Route      string         `json:"route,omitempty"`
	Page       int            `json:"page,omitempty"`
	Count      int            `json:"count,omitempty"`
	Query      string         `json:"query,omitempty"`
	Dur        time.Duration  `json:"-"`
	DurMs      float64        `json:"dur_ms,omitempty"` // computed from Dur at marshal time
	Err        string         `json:"err,omitempty"`
	Msg        string         `json:"msg,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
