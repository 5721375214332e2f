package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"

	"nearshare/internal/domain"
	"nearshare/internal/files"
	"nearshare/internal/selection"
	"nearshare/internal/ui/state"
)

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width  int
	Height int

	Focus        selection.Source
	Devices      []DeviceRow // rows left by the filter, in display order
	DeviceCursor int
	DeviceOffset int
	Files        selection.Snapshot[domain.FileRef]
	FileCursor   int
	FileOffset   int
	PaneHeight   int

	Filters     domain.DiscoveryFilters
	Watching    bool
	FilterQuery string

	InputPrompt string
	InputView   string
	ConfirmQuit bool

	StatusMessage string
	StatusLevel   state.StatusLevel
	Transfer      *state.TransferState
	SpinnerView   string
	ProgressView  string

	ShowHelp    bool
	HelpContent string
	ShortHelp   string
}

// Renderer handles all view rendering
type Renderer struct {
	styles       *Styles
	deviceRender *DeviceRenderer
	fileRender   *FileRenderer
	popupRender  *PopupRenderer
}

// NewRenderer creates a new renderer; file sizes are read from fs
func NewRenderer(fs afero.Fs) *Renderer {
	styles := NewStyles()
	return &Renderer{
		styles:       styles,
		deviceRender: NewDeviceRenderer(styles),
		fileRender:   NewFileRenderer(styles, fs),
		popupRender:  NewPopupRenderer(styles),
	}
}

// Render produces the complete view
func (r *Renderer) Render(vs ViewState) string {
	if vs.ShowHelp {
		return r.popupRender.RenderPopup(vs.HelpContent, vs.Height, vs.Width, r.styles.InfoBox)
	}

	content := &strings.Builder{}
	content.WriteString(r.renderTitle(vs))
	content.WriteString("\n\n")

	termWidth := vs.Width
	if termWidth <= 0 {
		termWidth = 80
	}
	// Two panes share the width left by the main padding; each has a border and padding
	paneWidth := (termWidth-4)/2 - 4
	if paneWidth < 20 {
		paneWidth = 20
	}

	devices := r.renderDevicePane(vs, paneWidth)
	fileList := r.renderFilePane(vs, paneWidth)
	content.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, devices, " ", fileList))
	content.WriteString("\n")

	if vs.ConfirmQuit {
		content.WriteString(r.styles.Confirm.Render("A transfer is running. Cancel it and quit? (y/n)"))
		content.WriteString("\n")
	} else if vs.InputPrompt != "" {
		content.WriteString(r.styles.Prompt.Render(vs.InputPrompt))
		content.WriteString(vs.InputView)
		content.WriteString("\n")
	}

	if vs.Transfer != nil {
		content.WriteString(r.renderTransfer(vs))
		content.WriteString("\n")
	}

	if vs.StatusMessage != "" {
		content.WriteString(r.statusStyle(vs.StatusLevel).Render(vs.StatusMessage))
		content.WriteString("\n")
	}

	if vs.ShortHelp != "" {
		content.WriteString("\n")
		content.WriteString(vs.ShortHelp)
	}

	mainStyle := r.styles.Main
	if vs.Height > 0 {
		mainStyle = mainStyle.MaxHeight(vs.Height)
	}
	return mainStyle.Render(content.String())
}

func (r *Renderer) renderTitle(vs ViewState) string {
	logo := r.styles.Title.Render("nearshare")

	var right []string
	if vs.Watching {
		right = append(right, r.styles.Dim.Render(fmt.Sprintf("%s %s", vs.SpinnerView, vs.Filters.Discovery)))
	} else {
		right = append(right, r.styles.Dim.Render("discovery stopped"))
	}
	if vs.FilterQuery != "" {
		right = append(right, r.styles.Filter.Render(fmt.Sprintf("[Filter: %s]", vs.FilterQuery)))
	}
	rightContent := strings.Join(right, "  ")

	termWidth := vs.Width
	if termWidth <= 0 {
		termWidth = 80
	}
	padding := termWidth - 4 - lipgloss.Width(logo) - lipgloss.Width(rightContent)
	if padding < 2 {
		padding = 2
	}
	return logo + strings.Repeat(" ", padding) + rightContent
}

func (r *Renderer) renderDevicePane(vs ViewState, width int) string {
	var lines []string
	lines = append(lines, r.styles.PaneTitle.Render(fmt.Sprintf("Devices (%d)", len(vs.Devices))))

	if len(vs.Devices) == 0 {
		msg := "Looking for devices..."
		if vs.FilterQuery != "" {
			msg = "No device matches the filter"
		} else if !vs.Watching {
			msg = "Discovery is not running"
		}
		lines = append(lines, r.styles.Dim.Render(msg))
	}

	end := min(vs.DeviceOffset+vs.PaneHeight, len(vs.Devices))
	if vs.DeviceOffset > 0 {
		lines = append(lines, r.styles.Scroll.Render("↑ more"))
	}
	for i := vs.DeviceOffset; i < end; i++ {
		isCursor := vs.Focus == selection.SourceDevices && i == vs.DeviceCursor
		lines = append(lines, r.deviceRender.RenderDevice(vs.Devices[i], isCursor, vs.FilterQuery, width))
	}
	if end < len(vs.Devices) {
		lines = append(lines, r.styles.Scroll.Render("↓ more"))
	}

	return r.paneStyle(vs.Focus == selection.SourceDevices, width, vs.PaneHeight).Render(strings.Join(lines, "\n"))
}

func (r *Renderer) renderFilePane(vs ViewState, width int) string {
	var lines []string
	title := fmt.Sprintf("Files (%d/%d selected)", vs.Files.SelectedCount(), vs.Files.Len())
	lines = append(lines, r.styles.PaneTitle.Render(title))

	if vs.Files.Len() == 0 {
		lines = append(lines, r.styles.Dim.Render("No files. Press a to add one."))
	}

	end := min(vs.FileOffset+vs.PaneHeight, vs.Files.Len())
	if vs.FileOffset > 0 {
		lines = append(lines, r.styles.Scroll.Render("↑ more"))
	}
	for i := vs.FileOffset; i < end; i++ {
		isCursor := vs.Focus == selection.SourceFiles && i == vs.FileCursor
		lines = append(lines, r.fileRender.RenderFile(vs.Files.At(i), vs.Files.SelectedAt(i), isCursor, width))
	}
	if end < vs.Files.Len() {
		lines = append(lines, r.styles.Scroll.Render("↓ more"))
	}

	return r.paneStyle(vs.Focus == selection.SourceFiles, width, vs.PaneHeight).Render(strings.Join(lines, "\n"))
}

func (r *Renderer) paneStyle(focused bool, width, height int) lipgloss.Style {
	style := r.styles.Pane
	if focused {
		style = r.styles.FocusedPane
	}
	// Title plus two scroll markers
	return style.Width(width).Height(height + 3)
}

func (r *Renderer) renderTransfer(vs ViewState) string {
	t := vs.Transfer
	what := string(t.Kind)
	if t.Items > 1 {
		what = fmt.Sprintf("%d files", t.Items)
	}
	line := fmt.Sprintf("%s Sending %s to %s", vs.SpinnerView, what, t.DeviceName)
	if t.Total > 0 {
		line += fmt.Sprintf("  %s %s / %s", vs.ProgressView, files.HumanSize(t.Sent), files.HumanSize(t.Total))
	}
	return line + r.styles.Dim.Render("  (c to cancel)")
}

func (r *Renderer) statusStyle(level state.StatusLevel) lipgloss.Style {
	switch level {
	case state.StatusSuccess:
		return r.styles.StatusSuccess
	case state.StatusWarning:
		return r.styles.StatusWarning
	case state.StatusError:
		return r.styles.StatusError
	default:
		return r.styles.StatusInfo
	}
}
