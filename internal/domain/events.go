package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventDeviceAdded       EventType = "DeviceAdded"
	EventDeviceUpdated     EventType = "DeviceUpdated"
	EventDeviceRemoved     EventType = "DeviceRemoved"
	EventDiscoveryError    EventType = "DiscoveryError"
	EventWatcherStarted    EventType = "WatcherStarted"
	EventWatcherStopped    EventType = "WatcherStopped"
	EventTransferStarted   EventType = "TransferStarted"
	EventTransferProgress  EventType = "TransferProgress"
	EventTransferCompleted EventType = "TransferCompleted"
	EventReceived          EventType = "Received"
	EventError             EventType = "Error"
	EventConfigLoaded      EventType = "ConfigLoaded"
	EventConfigSaved       EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// DeviceAddedEvent is emitted when a watcher sees a new peer
type DeviceAddedEvent struct {
	Device Device
}

func (e DeviceAddedEvent) Type() EventType { return EventDeviceAdded }

// DeviceUpdatedEvent is emitted when a known peer changes its beacon
type DeviceUpdatedEvent struct {
	Device Device
}

func (e DeviceUpdatedEvent) Type() EventType { return EventDeviceUpdated }

// DeviceRemovedEvent is emitted when a peer expires or says goodbye
type DeviceRemovedEvent struct {
	Device Device
}

func (e DeviceRemovedEvent) Type() EventType { return EventDeviceRemoved }

// DiscoveryErrorEvent is emitted when the watcher hits a transport error
type DiscoveryErrorEvent struct {
	Err error
}

func (e DiscoveryErrorEvent) Type() EventType { return EventDiscoveryError }

// WatcherStartedEvent is emitted when discovery starts with a set of filters
type WatcherStartedEvent struct {
	Filters DiscoveryFilters
}

func (e WatcherStartedEvent) Type() EventType { return EventWatcherStarted }

// WatcherStoppedEvent is emitted when discovery stops
type WatcherStoppedEvent struct{}

func (e WatcherStoppedEvent) Type() EventType { return EventWatcherStopped }

// TransferStartedEvent is emitted when a send operation begins
type TransferStartedEvent struct {
	Transfer Transfer
}

func (e TransferStartedEvent) Type() EventType { return EventTransferStarted }

// TransferProgressEvent reports bytes sent so far
type TransferProgressEvent struct {
	TransferID string
	Sent       int64
	Total      int64
}

func (e TransferProgressEvent) Type() EventType { return EventTransferProgress }

// TransferCompletedEvent carries the terminal outcome of a send operation
type TransferCompletedEvent struct {
	Transfer Transfer
}

func (e TransferCompletedEvent) Type() EventType { return EventTransferCompleted }

// ReceivedEvent is emitted by the receiver for every accepted URI or file
type ReceivedEvent struct {
	From string
	Kind TransferKind
	Item string // URI or stored file path
	Size int64
}

func (e ReceivedEvent) Type() EventType { return EventReceived }

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
