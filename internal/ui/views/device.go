package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"nearshare/internal/domain"
)

// DeviceRow is one visible row of the device pane
type DeviceRow struct {
	Device   domain.Device
	Selected bool
}

// DeviceRenderer handles rendering of device rows
type DeviceRenderer struct {
	styles *Styles
}

// NewDeviceRenderer creates a new device renderer
func NewDeviceRenderer(styles *Styles) *DeviceRenderer {
	return &DeviceRenderer{styles: styles}
}

// RenderDevice renders a device row as "(•) icon name  status"
func (r *DeviceRenderer) RenderDevice(row DeviceRow, isCursor bool, filterQuery string, width int) string {
	radio := "( )"
	if row.Selected {
		radio = r.styles.Checked.Render("(•)")
	}

	name := row.Device.DisplayName
	nameStyle := lipgloss.NewStyle()
	if filterQuery != "" {
		nameStyle = nameStyle.Foreground(lipgloss.Color("226"))
	}

	var extra []string
	if row.Device.Status == domain.StatusUnavailable {
		extra = append(extra, "busy")
	}
	if !row.Device.HasCapability(domain.CapabilityNearShare) {
		extra = append(extra, "no share")
	}
	suffix := ""
	if len(extra) > 0 {
		suffix = r.styles.Dim.Render(fmt.Sprintf("  %s", strings.Join(extra, ", ")))
	}

	line := fmt.Sprintf("%s %s %s%s", radio, KindIcon(row.Device.Kind), nameStyle.Render(name), suffix)
	return fitRow(line, width, isCursor, r.styles)
}

// fitRow truncates a row to width and paints the cursor background across it
func fitRow(line string, width int, isCursor bool, styles *Styles) string {
	if width > 0 && lipgloss.Width(line) > width {
		line = lipgloss.NewStyle().MaxWidth(width).Render(line)
	}
	if !isCursor {
		return line
	}
	if pad := width - lipgloss.Width(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	return styles.Cursor.Render(line)
}
