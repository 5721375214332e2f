package discovery

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sort"
	"sync"
	"time"

	"nearshare/internal/domain"
	"nearshare/internal/eventbus"
)

// ErrAlreadyStarted is returned by Start on a running watcher
var ErrAlreadyStarted = errors.New("watcher already started")

// Watcher finds nearby peers and publishes add/update/remove events
type Watcher interface {
	Start(ctx context.Context, filters domain.DiscoveryFilters) error
	Stop()
	Restart(ctx context.Context, filters domain.DiscoveryFilters) error
	Devices() []domain.Device
}

// Options configures the LAN watcher
type Options struct {
	// ListenAddr is the UDP address beacons arrive on, e.g. ":47474"
	ListenAddr string
	// Expiry is how long a peer stays listed without a new beacon
	Expiry time.Duration
	// SelfID is our own device id; our own beacons are ignored
	SelfID string
}

type known struct {
	device domain.Device
	ip     net.IP
}

// LANWatcher listens for UDP beacons
type LANWatcher struct {
	bus  eventbus.EventBus
	opts Options

	mu         sync.Mutex
	running    bool
	filters    domain.DiscoveryFilters
	devices    map[string]known
	conn       net.PacketConn
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup

	networks func() ([]*net.IPNet, error)
	now      func() time.Time
}

// NewLANWatcher creates a watcher listening for beacons on the local network
func NewLANWatcher(bus eventbus.EventBus, opts Options) *LANWatcher {
	if opts.Expiry <= 0 {
		opts.Expiry = 7 * time.Second
	}
	return &LANWatcher{
		bus:      bus,
		opts:     opts,
		devices:  make(map[string]known),
		networks: localNetworks,
		now:      time.Now,
	}
}

// Start opens the socket and begins publishing device events
func (w *LANWatcher) Start(ctx context.Context, filters domain.DiscoveryFilters) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrAlreadyStarted
	}

	conn, err := net.ListenPacket("udp4", w.opts.ListenAddr)
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("failed to listen for beacons on %s: %w", w.opts.ListenAddr, err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w.running = true
	w.filters = filters
	w.conn = conn
	w.cancelFunc = cancel
	w.mu.Unlock()

	log.Printf("Discovery: watching %s (%s)", conn.LocalAddr(), filters.Discovery)
	w.bus.Publish(eventbus.WatcherStartedEvent{Filters: filters})

	w.wg.Add(2)
	go w.readLoop(watchCtx, conn)
	go w.expireLoop(watchCtx)

	// Closing the socket is what unblocks the read loop
	go func() {
		<-watchCtx.Done()
		_ = conn.Close()
	}()

	return nil
}

// Stop stops watching and forgets every known device
func (w *LANWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancelFunc
	w.mu.Unlock()

	cancel()
	w.wg.Wait()

	w.mu.Lock()
	w.running = false
	w.cancelFunc = nil
	w.conn = nil
	w.devices = make(map[string]known)
	w.mu.Unlock()

	w.bus.Publish(eventbus.WatcherStoppedEvent{})
}

// Restart stops the watcher if running and starts it again with new filters.
// Listeners should clear their device lists on WatcherStopped.
func (w *LANWatcher) Restart(ctx context.Context, filters domain.DiscoveryFilters) error {
	w.Stop()
	return w.Start(ctx, filters)
}

// Devices returns the currently listed devices ordered by name
func (w *LANWatcher) Devices() []domain.Device {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]domain.Device, 0, len(w.devices))
	for _, k := range w.devices {
		out = append(out, k.device)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayName != out[j].DisplayName {
			return out[i].DisplayName < out[j].DisplayName
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Addr returns the bound socket address while running
func (w *LANWatcher) Addr() net.Addr {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return nil
	}
	return w.conn.LocalAddr()
}

func (w *LANWatcher) readLoop(ctx context.Context, conn net.PacketConn) {
	defer w.wg.Done()

	buf := make([]byte, 64*1024)
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("Discovery: read error: %v", err)
			w.bus.Publish(eventbus.DiscoveryErrorEvent{Err: err})
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return
		}

		b, err := DecodeBeacon(buf[:n])
		if err != nil {
			log.Printf("Discovery: ignoring datagram from %s: %v", from, err)
			continue
		}
		udp, ok := from.(*net.UDPAddr)
		if !ok {
			continue
		}
		w.handleBeacon(b, udp.IP)
	}
}

func (w *LANWatcher) handleBeacon(b Beacon, ip net.IP) {
	if b.ID == w.opts.SelfID {
		return
	}

	device := b.Device(ip, w.now())

	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	prev, exists := w.devices[b.ID]

	if b.Goodbye {
		if exists {
			delete(w.devices, b.ID)
		}
		w.mu.Unlock()
		if exists {
			log.Printf("Discovery: removing %s (goodbye)", prev.device.DisplayName)
			w.bus.Publish(eventbus.DeviceRemovedEvent{Device: prev.device})
		}
		return
	}

	nets, err := w.networks()
	if err != nil {
		log.Printf("Discovery: cannot list local networks: %v", err)
	}

	if !accepts(w.filters, device, ip, nets) {
		// A peer that stops matching (e.g. turned unavailable) leaves the list
		if exists {
			delete(w.devices, b.ID)
		}
		w.mu.Unlock()
		if exists {
			w.bus.Publish(eventbus.DeviceRemovedEvent{Device: prev.device})
		}
		return
	}

	w.devices[b.ID] = known{device: device, ip: ip}
	w.mu.Unlock()

	switch {
	case !exists:
		log.Printf("Discovery: adding %s at %s", device.DisplayName, device.Address)
		w.bus.Publish(eventbus.DeviceAddedEvent{Device: device})
	case !prev.device.SameAs(device):
		w.bus.Publish(eventbus.DeviceUpdatedEvent{Device: device})
	}
}

func (w *LANWatcher) expireLoop(ctx context.Context) {
	defer w.wg.Done()

	interval := w.opts.Expiry / 4
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.expire()
		}
	}
}

func (w *LANWatcher) expire() {
	cutoff := w.now().Add(-w.opts.Expiry)

	w.mu.Lock()
	var gone []domain.Device
	for id, k := range w.devices {
		if k.device.LastSeen.Before(cutoff) {
			gone = append(gone, k.device)
			delete(w.devices, id)
		}
	}
	w.mu.Unlock()

	for _, d := range gone {
		log.Printf("Discovery: removing %s (expired)", d.DisplayName)
		w.bus.Publish(eventbus.DeviceRemovedEvent{Device: d})
	}
}
