// Package ui provides the Bubble Tea TUI for the resource catalog.
package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/catalog/internal/catalog"
)

// CatalogChanged is sent whenever a collection's contents or status move.
// The App re-reads its snapshot from the catalog on receipt.
type CatalogChanged struct {
	Collection catalog.Collection
}

// ActionDone is sent when a blocking catalog action (reset, retry) returns.
type ActionDone struct {
	Action string
	Err    error
}

// OutboundCaptured is sent after an outbound link was reported.
type OutboundCaptured struct {
	Link string
}

// Forward returns a catalog subscriber that delivers every change to p as a
// CatalogChanged. Each delivery runs on its own goroutine: p.Send blocks until
// the event loop receives, and catalog calls made from Update may notify.
func Forward(p *tea.Program) func(catalog.Change) {
	return func(ch catalog.Change) {
		go p.Send(CatalogChanged{Collection: ch.Collection})
	}
}
