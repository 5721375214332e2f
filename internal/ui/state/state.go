package state

import (
	"time"

	"nearshare/internal/domain"
	"nearshare/internal/selection"
)

// StatusLevel colors the status line
type StatusLevel int

const (
	StatusInfo StatusLevel = iota
	StatusSuccess
	StatusWarning
	StatusError
)

// TransferState tracks the send in flight
type TransferState struct {
	ID         string
	Kind       domain.TransferKind
	DeviceName string
	Items      int
	Sent       int64
	Total      int64
	StartedAt  time.Time
}

// Fraction is the completed share of the transfer, 0 when the total is unknown
func (t *TransferState) Fraction() float64 {
	if t == nil || t.Total <= 0 {
		return 0
	}
	f := float64(t.Sent) / float64(t.Total)
	if f > 1 {
		return 1
	}
	return f
}

// AppState contains all the application state
type AppState struct {
	// Device pane: ids in arrival order, resolved through DeviceInfo
	Devices    *selection.SingleList[string]
	DeviceSnap selection.Snapshot[string]
	DeviceInfo map[string]domain.Device

	// File pane
	Files    *selection.MultiList[domain.FileRef]
	FileSnap selection.Snapshot[domain.FileRef]

	// Navigation
	Focus          selection.Source
	DeviceCursor   int // index into the visible device rows
	FileCursor     int
	DeviceOffset   int
	FileOffset     int
	ViewportHeight int

	// Discovery
	Filters  domain.DiscoveryFilters
	Watching bool

	// UI state
	FilterQuery      string
	ShowHelp         bool
	HelpScrollOffset int
	StatusMessage    string
	StatusLevel      StatusLevel
	PendingURI       string // preloaded from the command line

	Transfer *TransferState
}

// NewAppState creates a new application state
func NewAppState() *AppState {
	s := &AppState{
		Devices:        selection.NewSingleList[string](),
		DeviceInfo:     make(map[string]domain.Device),
		Files:          selection.NewMultiList[domain.FileRef](),
		Focus:          selection.SourceDevices,
		ViewportHeight: 10,
		Filters:        domain.DefaultFilters(),
	}
	s.Devices.OnChange(func(snap selection.Snapshot[string]) { s.DeviceSnap = snap })
	s.Files.OnChange(func(snap selection.Snapshot[domain.FileRef]) { s.FileSnap = snap })
	return s
}

// Device operations

// AddDevice lists a device, or refreshes its details if already listed
func (s *AppState) AddDevice(d domain.Device) {
	if _, ok := s.DeviceInfo[d.ID]; !ok {
		s.Devices.Add(d.ID)
	}
	s.DeviceInfo[d.ID] = d
}

// UpdateDevice refreshes the details of a listed device
func (s *AppState) UpdateDevice(d domain.Device) {
	if _, ok := s.DeviceInfo[d.ID]; ok {
		s.DeviceInfo[d.ID] = d
	}
}

// RemoveDevice drops a device from the pane
func (s *AppState) RemoveDevice(id string) {
	if _, ok := s.DeviceInfo[id]; !ok {
		return
	}
	delete(s.DeviceInfo, id)
	s.Devices.Remove(id)
}

// ClearDevices empties the device pane, used when discovery restarts
func (s *AppState) ClearDevices() {
	for _, id := range s.DeviceSnap.Items() {
		s.Devices.Remove(id)
	}
	s.DeviceInfo = make(map[string]domain.Device)
	s.DeviceCursor = 0
	s.DeviceOffset = 0
}

// DeviceList returns the listed devices in pane order
func (s *AppState) DeviceList() []domain.Device {
	out := make([]domain.Device, 0, s.DeviceSnap.Len())
	for _, id := range s.DeviceSnap.Items() {
		out = append(out, s.DeviceInfo[id])
	}
	return out
}

// SelectedDevice resolves the single-select choice
func (s *AppState) SelectedDevice() (domain.Device, bool) {
	id, ok := s.Devices.CurrentSelection()
	if !ok {
		return domain.Device{}, false
	}
	d, ok := s.DeviceInfo[id]
	return d, ok
}

// File operations

// AddFiles appends files to the file pane
func (s *AppState) AddFiles(refs ...domain.FileRef) {
	if len(refs) > 0 {
		s.Files.AddAll(refs...)
	}
}

// RemoveFileAt drops the file at index and keeps the cursor in range
func (s *AppState) RemoveFileAt(index int) {
	if index < 0 || index >= s.FileSnap.Len() {
		return
	}
	s.Files.Remove(s.FileSnap.At(index))
	if s.FileCursor >= s.FileSnap.Len() && s.FileCursor > 0 {
		s.FileCursor = s.FileSnap.Len() - 1
	}
}

// Status

// SetStatus sets the status line
func (s *AppState) SetStatus(level StatusLevel, msg string) {
	s.StatusLevel = level
	s.StatusMessage = msg
}

// TransferActive reports whether a send is in flight
func (s *AppState) TransferActive() bool {
	return s.Transfer != nil
}
