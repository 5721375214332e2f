package history

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"

	"nearshare/internal/domain"
	"nearshare/internal/files"
)

// Render writes transfers as a table
func Render(w io.Writer, transfers []domain.Transfer) error {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"When", "Device", "Kind", "Items", "Size", "Status"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	for _, t := range transfers {
		status := t.Status.String()
		if t.Error != "" {
			status += ": " + t.Error
		}
		table.Append([]string{
			t.StartedAt.Format("2006-01-02 15:04"),
			t.DeviceName,
			string(t.Kind),
			summarize(t),
			files.HumanSize(t.Bytes),
			status,
		})
	}
	table.SetFooter([]string{"", "", "", fmt.Sprintf("%d transfers", len(transfers)), "", ""})
	table.Render()

	_, err := io.Copy(w, &buf)
	return err
}

func summarize(t domain.Transfer) string {
	switch len(t.Items) {
	case 0:
		return ""
	case 1:
		if t.Kind == domain.TransferURI {
			return t.Items[0]
		}
		return filepath.Base(t.Items[0])
	default:
		names := make([]string, 0, 2)
		for _, item := range t.Items[:2] {
			names = append(names, filepath.Base(item))
		}
		more := ""
		if len(t.Items) > 2 {
			more = fmt.Sprintf(" +%d", len(t.Items)-2)
		}
		return strings.Join(names, ", ") + more
	}
}
