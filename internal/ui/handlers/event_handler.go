package handlers

import (
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"nearshare/internal/domain"
	"nearshare/internal/eventbus"
	"nearshare/internal/files"
	"nearshare/internal/ui/state"
)

// EventHandler applies domain events to the UI state.
// It runs inside Update, so it may touch the selection containers.
type EventHandler struct {
	state *state.AppState
}

// NewEventHandler creates a new event handler
func NewEventHandler(appState *state.AppState) *EventHandler {
	return &EventHandler{state: appState}
}

// HandleEvent processes domain events and returns any necessary commands
func (h *EventHandler) HandleEvent(event eventbus.DomainEvent) tea.Cmd {
	switch e := event.(type) {
	case eventbus.DeviceAddedEvent:
		h.state.AddDevice(e.Device)

	case eventbus.DeviceUpdatedEvent:
		h.state.UpdateDevice(e.Device)

	case eventbus.DeviceRemovedEvent:
		h.state.RemoveDevice(e.Device.ID)

	case eventbus.WatcherStartedEvent:
		h.state.Watching = true
		h.state.Filters = e.Filters
		h.state.SetStatus(state.StatusInfo, fmt.Sprintf("Discovering %s devices...", e.Filters.Discovery))

	case eventbus.WatcherStoppedEvent:
		h.state.Watching = false
		h.state.ClearDevices()

	case eventbus.DiscoveryErrorEvent:
		h.state.SetStatus(state.StatusError, fmt.Sprintf("Discovery error: %v", e.Err))

	case eventbus.TransferProgressEvent:
		if t := h.state.Transfer; t != nil && t.ID == e.TransferID {
			t.Sent = e.Sent
			if e.Total > 0 {
				t.Total = e.Total
			}
		}

	case eventbus.ReceivedEvent:
		what := e.Item
		if e.Kind != domain.TransferURI {
			what = fmt.Sprintf("%s (%s)", e.Item, files.HumanSize(e.Size))
		}
		h.state.SetStatus(state.StatusSuccess, fmt.Sprintf("Received %s from %s", what, e.From))

	case eventbus.ErrorEvent:
		log.Printf("UI: error event: %s: %v", e.Message, e.Err)
		h.state.SetStatus(state.StatusError, fmt.Sprintf("%s: %v", e.Message, e.Err))
	}

	return nil
}
