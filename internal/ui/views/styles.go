package views

import (
	"github.com/charmbracelet/lipgloss"

	"nearshare/internal/domain"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title         lipgloss.Style
	Dim           lipgloss.Style
	Filter        lipgloss.Style
	Help          lipgloss.Style
	Main          lipgloss.Style
	Pane          lipgloss.Style
	FocusedPane   lipgloss.Style
	PaneTitle     lipgloss.Style
	Cursor        lipgloss.Style
	Checked       lipgloss.Style
	Scroll        lipgloss.Style
	InfoBox       lipgloss.Style
	Prompt        lipgloss.Style
	Confirm       lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusWarning lipgloss.Style
	StatusError   lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Dim:    lipgloss.NewStyle().Faint(true),
		Filter: lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		Help:   lipgloss.NewStyle().Faint(true),
		Main:   lipgloss.NewStyle().Padding(1, 2),
		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1),
		FocusedPane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(0, 1),
		PaneTitle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Cursor:    lipgloss.NewStyle().Background(lipgloss.Color("238")),
		Checked:   lipgloss.NewStyle().Foreground(lipgloss.Color("78")).Bold(true),
		Scroll:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		InfoBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(1).
			BorderForeground(lipgloss.Color("241")),
		Prompt:        lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		Confirm:       lipgloss.NewStyle().Bold(true),
		StatusInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		StatusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
		StatusWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
	}
}

// KindIcon returns the glyph shown in front of a device of kind
func KindIcon(kind domain.DeviceKind) string {
	switch kind {
	case domain.KindDesktop:
		return "🖥"
	case domain.KindLaptop:
		return "💻"
	case domain.KindPhone:
		return "📱"
	case domain.KindTablet:
		return "▭"
	default:
		return "•"
	}
}
