package modes

import (
	"github.com/charmbracelet/bubbles/textinput"

	"nearshare/internal/ui/input/types"
)

// FilterMode narrows the device pane as the user types
type FilterMode struct {
	TextInputMode
}

func NewFilterMode(ti *textinput.Model) *FilterMode {
	return &FilterMode{
		TextInputMode: NewTextInputMode(types.ModeFilter, "filter", "Filter devices: ", ti),
	}
}
