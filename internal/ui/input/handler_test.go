package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nearshare/internal/domain"
	"nearshare/internal/selection"
	"nearshare/internal/ui/input/modes"
	"nearshare/internal/ui/input/types"
	"nearshare/internal/ui/state"
)

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newContext() *ModelContext {
	st := state.NewAppState()
	st.AddDevice(domain.Device{ID: "d1", DisplayName: "Desk"})
	st.AddFiles("/tmp/a.txt")
	return &ModelContext{State: st, VisibleDevices: 1}
}

func TestNormalModeKeys(t *testing.T) {
	h := New()
	ctx := newContext()

	tests := []struct {
		key  tea.KeyMsg
		want types.Action
	}{
		{tea.KeyMsg{Type: tea.KeyDown}, types.NavigateAction{Direction: "down"}},
		{runeKey("k"), types.NavigateAction{Direction: "up"}},
		{tea.KeyMsg{Type: tea.KeyTab}, types.SwitchFocusAction{}},
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, types.ClickAction{}},
		{tea.KeyMsg{Type: tea.KeyEnter}, types.ClickAction{}},
		{runeKey("p"), types.ToggleProximityAction{}},
		{runeKey("s"), types.SendAction{}},
		{runeKey("H"), types.OpenHistoryAction{}},
		{runeKey("?"), types.ToggleHelpAction{}},
		{runeKey("q"), types.QuitAction{}},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, types.QuitAction{Force: true}},
	}
	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			actions, _ := h.HandleKey(tt.key, ctx)
			require.Len(t, actions, 1)
			assert.Equal(t, tt.want, actions[0])
			assert.Equal(t, types.ModeNormal, h.CurrentMode())
		})
	}
}

func TestRemoveOnlyInFilePane(t *testing.T) {
	h := New()
	ctx := newContext()

	actions, _ := h.HandleKey(runeKey("x"), ctx)
	assert.Empty(t, actions)

	ctx.State.Focus = selection.SourceFiles
	actions, _ = h.HandleKey(runeKey("x"), ctx)
	assert.Equal(t, []types.Action{types.RemoveFileAction{}}, actions)
}

func TestClickIgnoredOnEmptyPane(t *testing.T) {
	h := New()
	ctx := &ModelContext{State: state.NewAppState()}

	actions, _ := h.HandleKey(tea.KeyMsg{Type: tea.KeyEnter}, ctx)
	assert.Empty(t, actions)
}

func TestURIModeSubmitsTypedText(t *testing.T) {
	h := New()
	ctx := newContext()

	_, cmd := h.HandleKey(runeKey("u"), ctx)
	assert.NotNil(t, cmd)
	assert.Equal(t, types.ModeURI, h.CurrentMode())
	assert.Equal(t, "Send URI: ", h.Prompt())

	for _, r := range "https://x.y" {
		actions, _ := h.HandleKey(runeKey(string(r)), ctx)
		require.Len(t, actions, 1)
		assert.IsType(t, types.UpdateTextAction{}, actions[0])
	}

	actions, _ := h.HandleKey(tea.KeyMsg{Type: tea.KeyEnter}, ctx)
	assert.Contains(t, actions, types.Action(types.SubmitTextAction{Text: "https://x.y", Mode: types.ModeURI}))
	assert.Equal(t, types.ModeNormal, h.CurrentMode())
	assert.Nil(t, h.TextInput())
}

func TestFilterModePrefillsAndCancels(t *testing.T) {
	h := New()
	ctx := newContext()
	ctx.State.FilterQuery = "de"

	h.HandleKey(runeKey("/"), ctx)
	require.Equal(t, types.ModeFilter, h.CurrentMode())
	assert.Equal(t, "de", h.TextInput().Value())

	actions, _ := h.HandleKey(tea.KeyMsg{Type: tea.KeyEsc}, ctx)
	assert.Contains(t, actions, types.Action(types.CancelTextAction{Mode: types.ModeFilter}))
	assert.Equal(t, types.ModeNormal, h.CurrentMode())
}

func TestQuitWithTransferAsksFirst(t *testing.T) {
	h := New()
	ctx := newContext()
	ctx.State.Transfer = &state.TransferState{ID: "t"}

	actions, _ := h.HandleKey(runeKey("q"), ctx)
	assert.Empty(t, actions)
	assert.Equal(t, types.ModeConfirmQuit, h.CurrentMode())

	actions, _ = h.HandleKey(runeKey("n"), ctx)
	assert.Empty(t, actions)
	assert.Equal(t, types.ModeNormal, h.CurrentMode())

	h.HandleKey(runeKey("q"), ctx)
	actions, _ = h.HandleKey(runeKey("y"), ctx)
	assert.Equal(t, []types.Action{types.CancelTransferAction{}, types.QuitAction{Force: true}}, actions)
}

func TestEscClearsFilterBeforeSelection(t *testing.T) {
	h := New()
	ctx := newContext()
	ctx.State.FilterQuery = "x"
	_, err := ctx.State.Devices.ToggleAt(0)
	require.NoError(t, err)

	actions, _ := h.HandleKey(tea.KeyMsg{Type: tea.KeyEsc}, ctx)
	assert.Equal(t, []types.Action{types.CancelTextAction{Mode: types.ModeFilter}}, actions)

	ctx.State.FilterQuery = ""
	actions, _ = h.HandleKey(tea.KeyMsg{Type: tea.KeyEsc}, ctx)
	assert.Equal(t, []types.Action{types.ClearSelectionAction{}}, actions)
}

func TestURIModePrefillsPendingURI(t *testing.T) {
	h := New()
	ctx := newContext()
	ctx.State.PendingURI = "https://example.com"

	h.HandleKey(runeKey("u"), ctx)
	require.Equal(t, types.ModeURI, h.CurrentMode())
	assert.Equal(t, "https://example.com", h.TextInput().Value())
}

func TestBlankPromptSubmitsNothing(t *testing.T) {
	h := New()
	ctx := newContext()

	h.HandleKey(runeKey("a"), ctx)
	require.Equal(t, types.ModeAddFile, h.CurrentMode())
	h.HandleKey(runeKey(" "), ctx)

	actions, _ := h.HandleKey(tea.KeyMsg{Type: tea.KeyEnter}, ctx)
	assert.Equal(t, []types.Action{types.CancelTextAction{Mode: types.ModeAddFile}}, actions)
	assert.Equal(t, types.ModeNormal, h.CurrentMode())
}

func TestEveryHelpBindingIsHandled(t *testing.T) {
	special := map[string]tea.KeyMsg{
		"up":        {Type: tea.KeyUp},
		"down":      {Type: tea.KeyDown},
		"pgup":      {Type: tea.KeyPgUp},
		"pgdown":    {Type: tea.KeyPgDown},
		"home":      {Type: tea.KeyHome},
		"end":       {Type: tea.KeyEnd},
		"tab":       {Type: tea.KeyTab},
		"shift+tab": {Type: tea.KeyShiftTab},
		"enter":     {Type: tea.KeyEnter},
		"esc":       {Type: tea.KeyEsc},
		" ":         {Type: tea.KeySpace, Runes: []rune{' '}},
	}

	keys := types.DefaultKeyMap()
	require.Len(t, keys.FullHelp(), len(types.HelpSections))
	for _, group := range keys.FullHelp() {
		for _, b := range group {
			for _, k := range b.Keys() {
				msg, ok := special[k]
				if !ok {
					msg = runeKey(k)
				}
				_, consumed := modes.NewNormalMode(keys).HandleKey(msg, newContext())
				assert.True(t, consumed, "%q (%s) is listed in help but not handled", k, b.Help().Desc)
			}
		}
	}
}
