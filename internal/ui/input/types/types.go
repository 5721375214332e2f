package types

import (
	tea "github.com/charmbracelet/bubbletea"

	"nearshare/internal/selection"
)

// Mode represents an input mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeFilter
	ModeURI
	ModeAddFile
	ModeConfirmQuit
)

// Action represents a command the model should execute
type Action interface {
	Type() string
}

// Context provides read-only access to model state needed for input handling
type Context interface {
	// Focus is the pane keys act on; it doubles as the click source
	Focus() selection.Source
	CurrentIndex() int
	TotalItems() int
	HasSelection() bool
	TransferActive() bool
	FilterQuery() string
	// PendingURI is a URI waiting for a device, prefilled by the URI prompt
	PendingURI() string
}

// ModeHandler handles input for a specific mode
type ModeHandler interface {
	// HandleKey processes a key message and returns actions and whether to consume the event
	HandleKey(msg tea.KeyMsg, ctx Context) ([]Action, bool)

	// Enter is called when entering this mode
	Enter(ctx Context) []Action

	// Exit is called when leaving this mode
	Exit(ctx Context) []Action

	// Name returns the mode name for display
	Name() string
}
