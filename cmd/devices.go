package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"nearshare/internal/domain"
)

// devicesCmd represents the devices command.
var devicesCmd = newDevicesCmd()
var devicesTimeout time.Duration

func newDevicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List nearby devices",
		Long: `Listen for device beacons for a while and print every device that
passes the configured discovery filters.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.Close()

			devices, err := scan(c.Context(), e, devicesTimeout)
			if err != nil {
				return err
			}
			return printDevices(e.out, devices)
		},
	}
	cmd.Flags().DurationVarP(&devicesTimeout, "timeout", "t", 3*time.Second, "how long to listen for beacons")

	return cmd
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

// scan runs discovery for timeout, or until ctx is done, and returns what it found
func scan(ctx context.Context, e *env, timeout time.Duration) ([]domain.Device, error) {
	w := newWatcher(e.bus, e.cfg)
	if err := w.Start(ctx, e.cfg.Filters()); err != nil {
		return nil, err
	}
	defer w.Stop()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
	return w.Devices(), nil
}

func printDevices(w io.Writer, devices []domain.Device) error {
	if len(devices) == 0 {
		warnColor.Fprintln(w, "No devices found")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Kind", "Address", "Status", "Owner", "Shares"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetAutoWrapText(false)

	for _, d := range devices {
		shares := "no"
		if d.HasCapability(domain.CapabilityNearShare) {
			shares = "yes"
			if d.AllowAnonymous {
				shares = "yes, anyone"
			}
		}
		table.Append([]string{
			d.DisplayName,
			string(d.Kind),
			d.Address,
			string(d.Status),
			strings.TrimSpace(d.Owner),
			shares,
		})
	}
	table.SetFooter([]string{"", "", "", "", "", fmt.Sprintf("%d devices", len(devices))})
	table.Render()
	return nil
}
