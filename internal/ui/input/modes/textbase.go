package modes

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"nearshare/internal/ui/input/types"
)

// TextInputMode is the shared behavior of the prompt modes. They all edit
// the handler's single text input; the UI draws the prompt in front of it.
type TextInputMode struct {
	mode   types.Mode
	name   string
	prompt string
	input  *textinput.Model
}

func NewTextInputMode(mode types.Mode, name, prompt string, ti *textinput.Model) TextInputMode {
	return TextInputMode{mode: mode, name: name, prompt: prompt, input: ti}
}

func (m TextInputMode) Name() string   { return m.name }
func (m TextInputMode) Prompt() string { return m.prompt }

// Enter and Exit have nothing to do: the handler owns focus of the input
func (m TextInputMode) Enter(types.Context) []types.Action { return nil }
func (m TextInputMode) Exit(types.Context) []types.Action  { return nil }

// HandleKey consumes esc, enter and ctrl+c; any other key is text
func (m TextInputMode) HandleKey(msg tea.KeyMsg, _ types.Context) ([]types.Action, bool) {
	back := types.ChangeModeAction{Mode: types.ModeNormal}

	switch msg.Type {
	case tea.KeyCtrlC:
		return []types.Action{types.QuitAction{Force: true}}, true
	case tea.KeyEsc:
		return []types.Action{types.CancelTextAction{Mode: m.mode}, back}, true
	case tea.KeyEnter:
		text := ""
		if m.input != nil {
			text = strings.TrimSpace(m.input.Value())
		}
		// An empty prompt submits nothing
		if text == "" {
			return []types.Action{types.CancelTextAction{Mode: m.mode}, back}, true
		}
		return []types.Action{types.SubmitTextAction{Text: text, Mode: m.mode}, back}, true
	}
	return nil, false
}
