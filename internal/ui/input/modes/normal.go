package modes

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"nearshare/internal/selection"
	"nearshare/internal/ui/input/types"
)

// ggWindow is how quickly the second g of "gg" has to follow the first
const ggWindow = 500 * time.Millisecond

// NormalMode drives both panes
type NormalMode struct {
	keys  types.KeyMap
	lastG time.Time
}

func NewNormalMode(keys types.KeyMap) *NormalMode {
	return &NormalMode{keys: keys}
}

func (m *NormalMode) Name() string                       { return "normal" }
func (m *NormalMode) Enter(types.Context) []types.Action { return nil }
func (m *NormalMode) Exit(types.Context) []types.Action  { return nil }

func navigate(direction string) []types.Action {
	return []types.Action{types.NavigateAction{Direction: direction}}
}

func (m *NormalMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	if msg.Type == tea.KeyCtrlC {
		return []types.Action{types.QuitAction{Force: true}}, true
	}

	// gg jumps to the top; any other key breaks the pair
	if msg.String() == "g" {
		if !m.lastG.IsZero() && time.Since(m.lastG) < ggWindow {
			m.lastG = time.Time{}
			return navigate("home"), true
		}
		m.lastG = time.Now()
		return nil, true
	}
	m.lastG = time.Time{}

	k := m.keys
	switch {
	case key.Matches(msg, k.Up):
		return navigate("up"), true
	case key.Matches(msg, k.Down):
		return navigate("down"), true
	case key.Matches(msg, k.PageUp):
		return navigate("pageup"), true
	case key.Matches(msg, k.PageDown):
		return navigate("pagedown"), true
	case key.Matches(msg, k.Top):
		return navigate("home"), true
	case key.Matches(msg, k.Bottom):
		return navigate("end"), true
	case key.Matches(msg, k.Switch):
		return []types.Action{types.SwitchFocusAction{}}, true

	case key.Matches(msg, k.Select):
		if ctx.TotalItems() == 0 {
			return nil, true
		}
		return []types.Action{types.ClickAction{}}, true

	case key.Matches(msg, k.Clear):
		// The device filter goes first, then the focused pane's selection
		if ctx.Focus() == selection.SourceDevices && ctx.FilterQuery() != "" {
			return []types.Action{types.CancelTextAction{Mode: types.ModeFilter}}, true
		}
		if ctx.HasSelection() {
			return []types.Action{types.ClearSelectionAction{}}, true
		}
		return nil, true

	case key.Matches(msg, k.Send):
		return []types.Action{types.SendAction{}}, true
	case key.Matches(msg, k.URI):
		return []types.Action{types.ChangeModeAction{Mode: types.ModeURI, Data: ctx.PendingURI()}}, true
	case key.Matches(msg, k.Cancel):
		if ctx.TransferActive() {
			return []types.Action{types.CancelTransferAction{}}, true
		}
		return nil, true
	case key.Matches(msg, k.Add):
		return []types.Action{types.ChangeModeAction{Mode: types.ModeAddFile}}, true
	case key.Matches(msg, k.Remove):
		if ctx.Focus() == selection.SourceFiles && ctx.TotalItems() > 0 {
			return []types.Action{types.RemoveFileAction{}}, true
		}
		return nil, true

	case key.Matches(msg, k.Proximity):
		return []types.Action{types.ToggleProximityAction{}}, true
	case key.Matches(msg, k.Filter):
		return []types.Action{types.ChangeModeAction{Mode: types.ModeFilter, Data: ctx.FilterQuery()}}, true
	case key.Matches(msg, k.History):
		return []types.Action{types.OpenHistoryAction{}}, true
	case key.Matches(msg, k.Help):
		return []types.Action{types.ToggleHelpAction{}}, true
	case key.Matches(msg, k.Quit):
		if ctx.TransferActive() {
			return []types.Action{types.ChangeModeAction{Mode: types.ModeConfirmQuit}}, true
		}
		return []types.Action{types.QuitAction{}}, true
	}
	return nil, false
}
