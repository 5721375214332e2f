package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"nearshare/internal/discovery"
	"nearshare/internal/domain"
	"nearshare/internal/files"
	"nearshare/internal/nearshare"
)

// sendCmd represents the send command.
var sendCmd = newSendCmd()
var sendTo string
var sendURI string
var sendWait time.Duration

const progressInterval = 500 * time.Millisecond

func newSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send --to DEVICE [--uri URI | files...]",
		Short: "Send files or a link without the share screen",
		Long: `Wait for the named device to show up, then send it a link or files.

DEVICE is matched against device ids and names: an exact match wins,
otherwise the closest fuzzy match on the name ("kit" finds "Kitchen Tablet").`,
		RunE: func(c *cobra.Command, args []string) error {
			if sendURI != "" && len(args) > 0 {
				return errors.New("use either --uri or files, not both")
			}
			if sendURI == "" && len(args) == 0 {
				return errors.New("nothing to send: give files or --uri")
			}
			refs, err := files.Expand(osFs, args)
			if err != nil {
				return err
			}

			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.Close()

			return runSend(c.Context(), e, refs)
		},
	}
	cmd.Flags().StringVar(&sendTo, "to", "", "device id or name")
	cmd.Flags().StringVar(&sendURI, "uri", "", "link to send")
	cmd.Flags().DurationVar(&sendWait, "wait", 5*time.Second, "how long to wait for the device")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func init() {
	rootCmd.AddCommand(sendCmd)
}

func runSend(ctx context.Context, e *env, refs []domain.FileRef) error {
	device, err := waitForDevice(ctx, e, sendTo, sendWait)
	if err != nil {
		return err
	}

	sender := newSender(e.bus, e.cfg, osFs)
	if !sender.IsSupported(device) {
		return fmt.Errorf("%w: %s", nearshare.ErrNotSupported, device.DisplayName)
	}

	var op *nearshare.Operation
	switch {
	case sendURI != "":
		dimColor.Fprintf(e.out, "Sending %s to %s\n", sendURI, device.DisplayName)
		op = sender.SendURI(ctx, device, sendURI)
	case len(refs) == 1:
		dimColor.Fprintf(e.out, "Sending %s to %s\n", files.Name(refs[0]), device.DisplayName)
		op = sender.SendFile(ctx, device, refs[0])
	default:
		dimColor.Fprintf(e.out, "Sending %d files to %s\n", len(refs), device.DisplayName)
		op = sender.SendFiles(ctx, device, refs)
	}

	status, err := waitWithProgress(e, op)

	if store := e.openHistory(); store != nil {
		if recErr := store.Record(op.Transfer()); recErr != nil {
			log.Printf("History: %v", recErr)
		}
		store.Close()
	}

	switch status {
	case domain.TransferCompleted:
		if t := op.Transfer(); t.Kind != domain.TransferURI {
			okColor.Fprintf(e.out, "Sent to %s (%s)\n", device.DisplayName, files.HumanSize(t.Bytes))
			return nil
		}
		okColor.Fprintf(e.out, "Sent to %s\n", device.DisplayName)
		return nil
	case domain.TransferCanceled:
		warnColor.Fprintln(e.errOut, "Canceled")
		return err
	default:
		errColor.Fprintf(e.errOut, "Send failed: %v\n", err)
		return err
	}
}

// waitWithProgress waits for op, printing byte progress for file sends
func waitWithProgress(e *env, op *nearshare.Operation) (domain.TransferStatus, error) {
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	for {
		select {
		case <-op.Done():
			return op.Wait()
		case <-ticker.C:
			if sent, total := op.Progress(); total > 0 {
				dimColor.Fprintf(e.errOut, "  %s / %s\n", files.HumanSize(sent), files.HumanSize(total))
			}
		}
	}
}

// waitForDevice runs discovery until a device matches query or wait runs out
func waitForDevice(ctx context.Context, e *env, query string, wait time.Duration) (domain.Device, error) {
	w := newWatcher(e.bus, e.cfg)
	if err := w.Start(ctx, e.cfg.Filters()); err != nil {
		return domain.Device{}, err
	}
	defer w.Stop()

	deadline := time.NewTimer(wait)
	defer deadline.Stop()
	poll := time.NewTicker(100 * time.Millisecond)
	defer poll.Stop()

	for {
		if d, err := discovery.MatchDevice(query, w.Devices()); err == nil {
			return d, nil
		}
		select {
		case <-ctx.Done():
			return domain.Device{}, ctx.Err()
		case <-deadline.C:
			return domain.Device{}, fmt.Errorf("%w: %q did not show up within %s", discovery.ErrNoDevice, query, wait)
		case <-poll.C:
		}
	}
}
