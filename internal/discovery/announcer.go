package discovery

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"
)

// Announcer periodically broadcasts our beacon so watchers can list us
type Announcer struct {
	beacon   Beacon
	targets  []string
	interval time.Duration
}

// NewAnnouncer creates an announcer sending beacon to every target ("host:port")
func NewAnnouncer(beacon Beacon, interval time.Duration, targets ...string) *Announcer {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Announcer{beacon: beacon, targets: targets, interval: interval}
}

// BroadcastTarget is the limited broadcast address for a discovery port
func BroadcastTarget(port int) string {
	return fmt.Sprintf("255.255.255.255:%d", port)
}

// Run announces until ctx is done and then sends a goodbye beacon
func (a *Announcer) Run(ctx context.Context) error {
	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return fmt.Errorf("failed to open announce socket: %w", err)
	}
	defer conn.Close()

	addrs := make([]net.Addr, 0, len(a.targets))
	for _, t := range a.targets {
		addr, err := net.ResolveUDPAddr("udp4", t)
		if err != nil {
			return fmt.Errorf("invalid announce target %q: %w", t, err)
		}
		addrs = append(addrs, addr)
	}

	hello, err := a.beacon.Encode()
	if err != nil {
		return err
	}
	bye := a.beacon
	bye.Goodbye = true
	goodbye, err := bye.Encode()
	if err != nil {
		return err
	}

	send := func(payload []byte) {
		for _, addr := range addrs {
			if _, err := conn.WriteTo(payload, addr); err != nil {
				log.Printf("Announcer: send to %s failed: %v", addr, err)
			}
		}
	}

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	send(hello)
	for {
		select {
		case <-ctx.Done():
			send(goodbye)
			return nil
		case <-ticker.C:
			send(hello)
		}
	}
}
