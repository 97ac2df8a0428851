package catalog

import (
	"context"

	"github.com/abelbrown/catalog/internal/otel"
)

// Tracker receives outbound link activations.
type Tracker interface {
	TrackOutbound(ctx context.Context, link string) error
}

// EventTracker records outbound links in the event log.
type EventTracker struct {
	Events *otel.Logger
}

// TrackOutbound emits a ui.outbound event for link.
func (t EventTracker) TrackOutbound(_ context.Context, link string) error {
	t.Events.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindOutbound,
		Comp:  "ui",
		Msg:   link,
	})
	return nil
}
