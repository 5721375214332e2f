package cmd

import (
	"context"
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"nearshare/internal/discovery"
	"nearshare/internal/domain"
	"nearshare/internal/eventbus"
	"nearshare/internal/files"
	"nearshare/internal/receiver"
)

// receiveCmd represents the receive command.
var receiveCmd = newReceiveCmd()
var receiveDir string
var receiveListen string
var receiveAnnounce bool

func newReceiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receive",
		Short: "Accept shares from nearby devices",
		Long: `Run this machine as a nearshare peer until interrupted. Incoming files
are stored in the receive directory and never overwrite existing files.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.Close()

			flags := c.Flags()
			if flags.Changed("dir") {
				e.cfg.Receive.Directory = receiveDir
			}
			if flags.Changed("listen") {
				e.cfg.Receive.Listen = receiveListen
			}
			if flags.Changed("announce") {
				e.cfg.Receive.Announce = receiveAnnounce
			}
			return runReceive(c.Context(), e)
		},
	}
	cmd.Flags().StringVar(&receiveDir, "dir", "", "directory for received files")
	cmd.Flags().StringVar(&receiveListen, "listen", "", "address to accept transfers on")
	cmd.Flags().BoolVar(&receiveAnnounce, "announce", true, "broadcast beacons so watchers can find this machine")

	return cmd
}

func init() {
	rootCmd.AddCommand(receiveCmd)
}

func runReceive(ctx context.Context, e *env) error {
	if err := osFs.MkdirAll(e.cfg.Receive.Directory, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", e.cfg.Receive.Directory, err)
	}

	ln, err := net.Listen("tcp", e.cfg.Receive.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", e.cfg.Receive.Listen, err)
	}

	self := e.cfg.Self()
	opts := receiver.Options{
		Self:           self,
		Listen:         ln.Addr().String(),
		Directory:      e.cfg.Receive.Directory,
		AllowAnonymous: e.cfg.Receive.AllowAnonymous,
		AcceptURIs:     e.cfg.Receive.AcceptURIs,
		Fs:             osFs,
	}
	if e.cfg.Receive.Announce {
		port := ln.Addr().(*net.TCPAddr).Port
		opts.Announcer = discovery.NewAnnouncer(
			discovery.BeaconFor(self, port),
			e.cfg.Discovery.BeaconInterval.Duration,
			discovery.BroadcastTarget(e.cfg.Discovery.Port),
		)
	}

	unsub := e.bus.Subscribe(eventbus.EventReceived, func(ev eventbus.DomainEvent) {
		r := ev.(eventbus.ReceivedEvent)
		if r.Kind == domain.TransferURI {
			okColor.Fprintf(e.out, "%s shared %s\n", r.From, r.Item)
			return
		}
		okColor.Fprintf(e.out, "%s sent %s (%s)\n", r.From, r.Item, files.HumanSize(r.Size))
	})
	defer unsub()

	dimColor.Fprintf(e.out, "Receiving as %s on %s, saving to %s\n", self.DisplayName, ln.Addr(), e.cfg.Receive.Directory)
	return receiver.New(e.bus, opts).Serve(ctx, ln)
}
