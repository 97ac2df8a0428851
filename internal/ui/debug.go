package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/catalog/internal/otel"
)

// debugPanelChrome is the number of terminal lines taken by DebugPanel's
// border (2) and vertical padding (2).
const debugPanelChrome = 4

// debugOverlay renders fetch stats and the most recent events. Returns ""
// when ring is nil.
func debugOverlay(ring *otel.RingBuffer, width, height int) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()

	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Fetch Stats"))
	lines = append(lines, fmt.Sprintf("  Chains:     %d started, %d complete, %d errors, %d stale",
		stats[otel.KindFetchStart], stats[otel.KindFetchComplete], stats[otel.KindFetchError], stats[otel.KindFetchStale]))
	lines = append(lines, fmt.Sprintf("  Pages:      %d", stats[otel.KindFetchPage]))
	lines = append(lines, fmt.Sprintf("  Expansions: %d tags, %d categories",
		stats[otel.KindExpandTags], stats[otel.KindExpandCategories]))
	lines = append(lines, fmt.Sprintf("  Debounced:  %d", stats[otel.KindDebounceFire]))
	lines = append(lines, fmt.Sprintf("  Buffer:     %d events", ring.Len()))
	lines = append(lines, "")

	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	for _, e := range ring.Last(20) {
		line := fmt.Sprintf("  %6s  %-18s", formatAge(time.Since(e.Time)), string(e.Kind))
		if e.Route != "" {
			line += fmt.Sprintf("  %s", e.Route)
			if e.Page > 0 {
				line += fmt.Sprintf(" p%d", e.Page)
			}
		}
		if e.Generation > 0 {
			line += fmt.Sprintf("  gen:%d", e.Generation)
		}
		if e.Chain != "" {
			line += "  chain:" + e.Chain
		}
		if e.Msg != "" {
			line += "  " + runewidth.Truncate(e.Msg, 30, "…")
		}
		if e.Err != "" {
			line += "  ERR:" + runewidth.Truncate(e.Err, 30, "…")
		}
		lines = append(lines, line)
	}

	maxHeight := max(height-debugPanelChrome, 1)
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}
	panelWidth := max(min(84, width-4), 20)

	return DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge formats a duration compactly. Negative durations (clock skew)
// clamp to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

// debugStatusBar renders the status bar while the overlay is open.
func debugStatusBar(width int) string {
	keys := StatusBarKey.Render("D") + StatusBarText.Render(":close")
	return StatusBar.Width(width).Render("  [DEBUG]  " + keys)
}
