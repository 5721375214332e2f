package modes

import (
	"github.com/charmbracelet/bubbles/textinput"

	"nearshare/internal/ui/input/types"
)

type URIMode struct {
	TextInputMode
}

func NewURIMode(ti *textinput.Model) *URIMode {
	return &URIMode{
		TextInputMode: NewTextInputMode(types.ModeURI, "uri", "Send URI: ", ti),
	}
}
