package ui

import (
	"log"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"nearshare/internal/eventbus"
)

// forwardedEvents are the bus events the share screen reacts to
var forwardedEvents = []eventbus.EventType{
	eventbus.EventDeviceAdded,
	eventbus.EventDeviceUpdated,
	eventbus.EventDeviceRemoved,
	eventbus.EventDiscoveryError,
	eventbus.EventWatcherStarted,
	eventbus.EventWatcherStopped,
	eventbus.EventTransferProgress,
	eventbus.EventReceived,
	eventbus.EventError,
}

// Bridge moves bus events onto the Bubble Tea loop.
// Bus handlers only enqueue, so a busy UI never stalls the dispatcher.
type Bridge struct {
	events chan eventbus.DomainEvent
	unsubs []func()

	mu     sync.Mutex
	closed bool
}

// NewBridge subscribes to the events the UI renders
func NewBridge(bus eventbus.EventBus) *Bridge {
	b := &Bridge{events: make(chan eventbus.DomainEvent, 100)}
	for _, t := range forwardedEvents {
		b.unsubs = append(b.unsubs, bus.Subscribe(t, b.forward))
	}
	return b
}

func (b *Bridge) forward(e eventbus.DomainEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	select {
	case b.events <- e:
	default:
		log.Println("Event channel full, dropping event")
	}
}

// Run delivers events to send until Close; call it in its own goroutine
func (b *Bridge) Run(send func(tea.Msg)) {
	for event := range b.events {
		send(EventMsg{Event: event})
	}
}

// Close unsubscribes and ends Run
func (b *Bridge) Close() {
	for _, unsub := range b.unsubs {
		unsub()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.events)
	}
}
