package input

import (
	"nearshare/internal/selection"
	"nearshare/internal/ui/state"
)

// ModelContext implements the Context interface for the input handler
type ModelContext struct {
	State *state.AppState
	// VisibleDevices is the number of device rows left by the filter
	VisibleDevices int
}

// Focus returns the focused pane
func (c *ModelContext) Focus() selection.Source {
	return c.State.Focus
}

// CurrentIndex returns the cursor row of the focused pane
func (c *ModelContext) CurrentIndex() int {
	if c.State.Focus == selection.SourceFiles {
		return c.State.FileCursor
	}
	return c.State.DeviceCursor
}

// TotalItems returns the number of rows in the focused pane
func (c *ModelContext) TotalItems() int {
	if c.State.Focus == selection.SourceFiles {
		return c.State.FileSnap.Len()
	}
	return c.VisibleDevices
}

// HasSelection reports whether the focused pane has anything selected
func (c *ModelContext) HasSelection() bool {
	if c.State.Focus == selection.SourceFiles {
		return c.State.FileSnap.SelectedCount() > 0
	}
	return c.State.DeviceSnap.SelectedCount() > 0
}

// TransferActive reports whether a send is in flight
func (c *ModelContext) TransferActive() bool {
	return c.State.TransferActive()
}

// FilterQuery returns the device filter
func (c *ModelContext) FilterQuery() string {
	return c.State.FilterQuery
}

// PendingURI returns the URI held back until a device is ready
func (c *ModelContext) PendingURI() string {
	return c.State.PendingURI
}
