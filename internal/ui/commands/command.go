package commands

import (
	"context"
	"fmt"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"

	"nearshare/internal/discovery"
	"nearshare/internal/domain"
	"nearshare/internal/files"
	"nearshare/internal/nearshare"
	"nearshare/internal/ui/state"
)

// Command represents an executable action
type Command interface {
	Execute() tea.Cmd
}

// CommandContext provides context for command execution
type CommandContext struct {
	Ctx     context.Context
	State   *state.AppState
	Sender  nearshare.Sender
	Watcher discovery.Watcher
	Fs      afero.Fs

	// current is the operation in flight, if any
	current *nearshare.Operation
}

// TransferDoneMsg is delivered when the operation in flight finishes
type TransferDoneMsg struct {
	Transfer domain.Transfer
	Status   domain.TransferStatus
	Err      error
}

// WatcherRestartedMsg is delivered after a discovery restart
type WatcherRestartedMsg struct {
	Filters domain.DiscoveryFilters
	Err     error
}

// SendFilesCommand sends the selected files to the selected device
type SendFilesCommand struct {
	ctx *CommandContext
}

// NewSendFilesCommand creates a new send command
func NewSendFilesCommand(ctx *CommandContext) *SendFilesCommand {
	return &SendFilesCommand{ctx: ctx}
}

// Execute starts the send. One file goes through SendFile, several through SendFiles.
func (c *SendFilesCommand) Execute() tea.Cmd {
	st := c.ctx.State
	device, ok := c.ctx.ready()
	if !ok {
		return nil
	}

	refs := st.Files.CurrentSelection()
	if len(refs) == 0 {
		st.SetStatus(state.StatusWarning, "Select at least one file (Tab to the file pane, space to select)")
		return nil
	}

	var op *nearshare.Operation
	kind := domain.TransferFiles
	if len(refs) == 1 {
		kind = domain.TransferFile
		op = c.ctx.Sender.SendFile(c.ctx.Ctx, device, refs[0])
	} else {
		op = c.ctx.Sender.SendFiles(c.ctx.Ctx, device, refs)
	}

	_, total := op.Progress()
	return c.ctx.track(op, kind, device, len(refs), total)
}

// SendURICommand shares a URI with the selected device
type SendURICommand struct {
	ctx *CommandContext
	uri string
}

// NewSendURICommand creates a new URI send command
func NewSendURICommand(ctx *CommandContext, uri string) *SendURICommand {
	return &SendURICommand{ctx: ctx, uri: strings.TrimSpace(uri)}
}

// Execute starts the send
func (c *SendURICommand) Execute() tea.Cmd {
	if c.uri == "" {
		return nil
	}
	device, ok := c.ctx.ready()
	if !ok {
		// Keep the URI so the next `u` prefills it
		c.ctx.State.PendingURI = c.uri
		return nil
	}
	c.ctx.State.PendingURI = ""
	op := c.ctx.Sender.SendURI(c.ctx.Ctx, device, c.uri)
	return c.ctx.track(op, domain.TransferURI, device, 1, 0)
}

// CancelCommand cancels the operation in flight
type CancelCommand struct {
	ctx *CommandContext
}

// NewCancelCommand creates a new cancel command
func NewCancelCommand(ctx *CommandContext) *CancelCommand {
	return &CancelCommand{ctx: ctx}
}

// Execute requests cancellation; the outcome arrives as TransferDoneMsg
func (c *CancelCommand) Execute() tea.Cmd {
	if c.ctx.current == nil {
		return nil
	}
	log.Printf("UI: canceling transfer %s", c.ctx.current.ID())
	c.ctx.current.Cancel()
	c.ctx.State.SetStatus(state.StatusWarning, "Canceling...")
	return nil
}

// ToggleProximityCommand switches between proximal and spatially proximal discovery
type ToggleProximityCommand struct {
	ctx *CommandContext
}

// NewToggleProximityCommand creates a new toggle command
func NewToggleProximityCommand(ctx *CommandContext) *ToggleProximityCommand {
	return &ToggleProximityCommand{ctx: ctx}
}

// Execute clears the device pane and restarts discovery with the other filter
func (c *ToggleProximityCommand) Execute() tea.Cmd {
	st := c.ctx.State
	filters := st.Filters
	if filters.Discovery == domain.DiscoveryProximal {
		filters.Discovery = domain.DiscoverySpatiallyProximal
	} else {
		filters.Discovery = domain.DiscoveryProximal
	}
	st.Filters = filters
	st.ClearDevices()
	st.SetStatus(state.StatusInfo, fmt.Sprintf("Discovering %s devices...", filters.Discovery))

	if c.ctx.Watcher == nil {
		return nil
	}
	watcher, ctx := c.ctx.Watcher, c.ctx.Ctx
	return func() tea.Msg {
		err := watcher.Restart(ctx, filters)
		return WatcherRestartedMsg{Filters: filters, Err: err}
	}
}

// AddFileCommand adds a path typed by the user to the file pane
type AddFileCommand struct {
	ctx  *CommandContext
	path string
}

// NewAddFileCommand creates a new add-file command
func NewAddFileCommand(ctx *CommandContext, path string) *AddFileCommand {
	return &AddFileCommand{ctx: ctx, path: path}
}

// Execute validates and adds the file
func (c *AddFileCommand) Execute() tea.Cmd {
	path := expandHome(strings.TrimSpace(c.path))
	if path == "" {
		return nil
	}
	refs, err := files.Expand(c.ctx.Fs, []string{path})
	if err != nil {
		c.ctx.State.SetStatus(state.StatusError, err.Error())
		return nil
	}
	c.ctx.State.AddFiles(refs...)
	c.ctx.State.SetStatus(state.StatusInfo, fmt.Sprintf("Added %s", files.Name(refs[0])))
	return nil
}

// ready returns the selected device if a new send may start
func (c *CommandContext) ready() (domain.Device, bool) {
	st := c.State
	if st.TransferActive() {
		st.SetStatus(state.StatusWarning, "A transfer is already running (c to cancel)")
		return domain.Device{}, false
	}
	device, ok := st.SelectedDevice()
	if !ok {
		st.SetStatus(state.StatusWarning, "Select a device first")
		return domain.Device{}, false
	}
	if !c.Sender.IsSupported(device) {
		st.SetStatus(state.StatusError, fmt.Sprintf("%s cannot receive shares", device.DisplayName))
		return domain.Device{}, false
	}
	return device, true
}

func (c *CommandContext) track(op *nearshare.Operation, kind domain.TransferKind, device domain.Device, items int, total int64) tea.Cmd {
	c.current = op
	c.State.Transfer = &state.TransferState{
		ID:         op.ID(),
		Kind:       kind,
		DeviceName: device.DisplayName,
		Items:      items,
		Total:      total,
	}
	c.State.SetStatus(state.StatusInfo, fmt.Sprintf("Sending to %s...", device.DisplayName))

	return func() tea.Msg {
		status, err := op.Wait()
		return TransferDoneMsg{Transfer: op.Transfer(), Status: status, Err: err}
	}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := userHomeDir(); err == nil {
			return home + path[1:]
		}
	}
	return path
}
