package types

// Navigation actions
type NavigateAction struct {
	Direction string // "up", "down", "pageup", "pagedown", "home", "end"
}

func (a NavigateAction) Type() string { return "navigate" }

type SwitchFocusAction struct{}

func (a SwitchFocusAction) Type() string { return "switch_focus" }

// Selection actions

// ClickAction activates the row under the cursor of the focused pane
type ClickAction struct{}

func (a ClickAction) Type() string { return "click" }

type ClearSelectionAction struct{}

func (a ClearSelectionAction) Type() string { return "clear_selection" }

// Mode transition actions
type ChangeModeAction struct {
	Mode Mode
	Data string // initial text for text modes
}

func (a ChangeModeAction) Type() string { return "change_mode" }

// Text input actions
type UpdateTextAction struct {
	Text string
}

func (a UpdateTextAction) Type() string { return "update_text" }

type SubmitTextAction struct {
	Text string
	Mode Mode // Which mode submitted the text
}

func (a SubmitTextAction) Type() string { return "submit_text" }

type CancelTextAction struct {
	Mode Mode
}

func (a CancelTextAction) Type() string { return "cancel_text" }

// Share actions
type ToggleProximityAction struct{}

func (a ToggleProximityAction) Type() string { return "toggle_proximity" }

type SendAction struct{}

func (a SendAction) Type() string { return "send" }

type CancelTransferAction struct{}

func (a CancelTransferAction) Type() string { return "cancel_transfer" }

type RemoveFileAction struct{}

func (a RemoveFileAction) Type() string { return "remove_file" }

type OpenHistoryAction struct{}

func (a OpenHistoryAction) Type() string { return "open_history" }

type ToggleHelpAction struct{}

func (a ToggleHelpAction) Type() string { return "toggle_help" }

type QuitAction struct {
	Force bool // true for Ctrl+C, false for 'q'
}

func (a QuitAction) Type() string { return "quit" }
