package modes

import (
	"github.com/charmbracelet/bubbles/textinput"

	"nearshare/internal/ui/input/types"
)

type AddFileMode struct {
	TextInputMode
}

func NewAddFileMode(ti *textinput.Model) *AddFileMode {
	return &AddFileMode{
		TextInputMode: NewTextInputMode(types.ModeAddFile, "add-file", "Add file: ", ti),
	}
}
