package selection

import (
	"errors"
	"fmt"
)

// Source identifies which list a click came from
type Source int

const (
	SourceDevices Source = iota
	SourceFiles
)

func (s Source) String() string {
	switch s {
	case SourceDevices:
		return "devices"
	case SourceFiles:
		return "files"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// Click is reported when a row is activated
type Click struct {
	Source   Source
	Position int
}

// ClickListener receives row activations
type ClickListener interface {
	OnClick(Click) error
}

// ClickListenerFunc adapts a function to ClickListener
type ClickListenerFunc func(Click) error

func (f ClickListenerFunc) OnClick(c Click) error { return f(c) }

// ErrUnknownSource is returned by Router for a click from a list nobody registered
var ErrUnknownSource = errors.New("selection: no list registered for click source")

// Notifier is the row-activation side of one list's view binding.
// It reports to a single listener; setting a new one replaces the old.
type Notifier struct {
	source   Source
	listener ClickListener
}

// NewNotifier creates a notifier tagging clicks with source
func NewNotifier(source Source) *Notifier {
	return &Notifier{source: source}
}

// SetListener registers the listener, replacing any previous one
func (n *Notifier) SetListener(l ClickListener) {
	n.listener = l
}

// Activate reports a click on the row at position. Without a listener the click is dropped.
func (n *Notifier) Activate(position int) error {
	if n.listener == nil {
		return nil
	}
	return n.listener.OnClick(Click{Source: n.source, Position: position})
}

// ToggleFunc toggles the row at position in one list
type ToggleFunc func(position int) error

// Router sends each click to the list registered for its source.
// A screen that hosts several lists registers one Router with all their notifiers.
type Router struct {
	targets map[Source]ToggleFunc
}

// NewRouter creates an empty router
func NewRouter() *Router {
	return &Router{targets: make(map[Source]ToggleFunc)}
}

// Register routes clicks from source to toggle
func (r *Router) Register(source Source, toggle ToggleFunc) {
	r.targets[source] = toggle
}

// OnClick implements ClickListener
func (r *Router) OnClick(c Click) error {
	toggle, ok := r.targets[c.Source]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSource, c.Source)
	}
	return toggle(c.Position)
}
