package commands

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"

	"nearshare/internal/discovery"
	"nearshare/internal/nearshare"
	"nearshare/internal/ui/state"
)

var userHomeDir = os.UserHomeDir

// Executor handles command execution
type Executor struct {
	ctx *CommandContext
}

// NewExecutor creates a new command executor
func NewExecutor(ctx context.Context, st *state.AppState, sender nearshare.Sender, watcher discovery.Watcher, fs afero.Fs) *Executor {
	return &Executor{
		ctx: &CommandContext{
			Ctx:     ctx,
			State:   st,
			Sender:  sender,
			Watcher: watcher,
			Fs:      fs,
		},
	}
}

// ExecuteSend sends the selected files
func (e *Executor) ExecuteSend() tea.Cmd {
	return NewSendFilesCommand(e.ctx).Execute()
}

// ExecuteSendURI shares a URI
func (e *Executor) ExecuteSendURI(uri string) tea.Cmd {
	return NewSendURICommand(e.ctx, uri).Execute()
}

// ExecuteCancel cancels the transfer in flight
func (e *Executor) ExecuteCancel() tea.Cmd {
	return NewCancelCommand(e.ctx).Execute()
}

// ExecuteToggleProximity flips the discovery filter and restarts discovery
func (e *Executor) ExecuteToggleProximity() tea.Cmd {
	return NewToggleProximityCommand(e.ctx).Execute()
}

// ExecuteAddFile adds a file to the file pane
func (e *Executor) ExecuteAddFile(path string) tea.Cmd {
	return NewAddFileCommand(e.ctx, path).Execute()
}

// Finished forgets the operation in flight once its outcome is applied
func (e *Executor) Finished(transferID string) {
	if e.ctx.current != nil && e.ctx.current.ID() == transferID {
		e.ctx.current = nil
	}
}
