package modes

import (
	tea "github.com/charmbracelet/bubbletea"

	"nearshare/internal/ui/input/types"
)

// ConfirmQuitMode asks before quitting with a transfer in flight
type ConfirmQuitMode struct{}

func NewConfirmQuitMode() *ConfirmQuitMode {
	return &ConfirmQuitMode{}
}

func (m *ConfirmQuitMode) Name() string {
	return "confirm-quit"
}

func (m *ConfirmQuitMode) Enter(ctx types.Context) []types.Action {
	return nil
}

func (m *ConfirmQuitMode) Exit(ctx types.Context) []types.Action {
	return nil
}

func (m *ConfirmQuitMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.String() {
	case "ctrl+c":
		return []types.Action{types.QuitAction{Force: true}}, true
	case "y", "Y":
		return []types.Action{
			types.CancelTransferAction{},
			types.QuitAction{Force: true},
		}, true
	case "n", "N", "esc":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeNormal}}, true
	}
	return nil, true
}
