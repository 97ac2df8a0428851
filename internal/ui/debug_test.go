package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/catalog/internal/otel"
)

func TestDebugOverlayNilRing(t *testing.T) {
	if got := debugOverlay(nil, 80, 24); got != "" {
		t.Errorf("debugOverlay(nil) = %q, want empty", got)
	}
}

func TestDebugOverlayRendersStats(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	now := time.Now()
	ring.Push(otel.Event{Kind: otel.KindFetchStart, Time: now})
	ring.Push(otel.Event{Kind: otel.KindFetchComplete, Time: now})
	ring.Push(otel.Event{Kind: otel.KindFetchError, Time: now})
	ring.Push(otel.Event{Kind: otel.KindExpandTags, Time: now})

	result := debugOverlay(ring, 120, 40)
	for _, want := range []string{"Fetch Stats", "1 started, 1 complete, 1 errors, 0 stale", "1 tags, 0 categories", "4 events"} {
		if !strings.Contains(result, want) {
			t.Errorf("overlay missing %q:\n%s", want, result)
		}
	}
}

func TestDebugOverlayRecentEvents(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	ring.Push(otel.Event{Kind: otel.KindFetchPage, Time: time.Now(), Route: "resource", Page: 2, Generation: 3})
	ring.Push(otel.Event{Kind: otel.KindFetchError, Time: time.Now(), Err: "timeout"})

	result := debugOverlay(ring, 120, 40)
	for _, want := range []string{"Recent Events", "resource p2", "gen:3", "ERR:timeout"} {
		if !strings.Contains(result, want) {
			t.Errorf("overlay missing %q:\n%s", want, result)
		}
	}
}

func TestDebugOverlayTruncation(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	for i := 0; i < 30; i++ {
		ring.Push(otel.Event{Kind: otel.KindFetchStart, Time: time.Now()})
	}
	result := debugOverlay(ring, 80, 10)
	if result == "" {
		t.Fatal("overlay should render with a small height")
	}
	if lines := strings.Count(result, "\n"); lines > 12 {
		t.Errorf("overlay should be truncated, got %d lines", lines)
	}
}

func TestDebugToggle(t *testing.T) {
	app := NewApp(AppConfig{Ring: otel.NewRingBuffer(16)})
	app.width, app.height, app.ready = 80, 24, true

	app, _ = press(t, app, "D")
	if !app.debugVisible {
		t.Fatal("D should show the debug overlay")
	}
	if !strings.Contains(app.View(), "[DEBUG]") {
		t.Error("debug view should contain [DEBUG]")
	}
	app, _ = press(t, app, "D")
	if app.debugVisible {
		t.Error("second D should hide the overlay")
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		dur  time.Duration
		want string
	}{
		{-5 * time.Second, "0ms"},
		{0, "0ms"},
		{50 * time.Millisecond, "50ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "2m"},
	}
	for _, tt := range tests {
		if got := formatAge(tt.dur); got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.dur, got, tt.want)
		}
	}
}
