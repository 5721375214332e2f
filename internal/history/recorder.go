package history

import (
	"log"

	"nearshare/internal/domain"
	"nearshare/internal/eventbus"
)

// Recorder writes every finished transfer published on the bus to a store
type Recorder struct {
	unsubscribe func()
}

// NewRecorder starts recording into store
func NewRecorder(bus eventbus.EventBus, store *Store) *Recorder {
	unsub := bus.Subscribe(eventbus.EventTransferCompleted, func(e eventbus.DomainEvent) {
		t := e.(eventbus.TransferCompletedEvent).Transfer
		if t.Status == domain.TransferPending {
			return
		}
		if err := store.Record(t); err != nil {
			log.Printf("History: %v", err)
		}
	})
	return &Recorder{unsubscribe: unsub}
}

// Stop stops recording
func (r *Recorder) Stop() {
	r.unsubscribe()
}
