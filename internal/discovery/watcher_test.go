package discovery

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nearshare/internal/domain"
	"nearshare/internal/eventbus"
)

type eventLog struct {
	mu     sync.Mutex
	events []eventbus.DomainEvent
}

func (l *eventLog) add(e eventbus.DomainEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) ofType(t eventbus.EventType) []eventbus.DomainEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []eventbus.DomainEvent
	for _, e := range l.events {
		if e.Type() == t {
			out = append(out, e)
		}
	}
	return out
}

func newTestWatcher(t *testing.T, expiry time.Duration) (*LANWatcher, *eventLog) {
	t.Helper()
	bus := eventbus.New()
	t.Cleanup(bus.Close)

	log := &eventLog{}
	for _, et := range []eventbus.EventType{
		eventbus.EventDeviceAdded, eventbus.EventDeviceUpdated, eventbus.EventDeviceRemoved,
		eventbus.EventWatcherStarted, eventbus.EventWatcherStopped,
	} {
		bus.Subscribe(et, log.add)
	}

	w := NewLANWatcher(bus, Options{ListenAddr: "127.0.0.1:0", Expiry: expiry, SelfID: "me"})
	w.networks = func() ([]*net.IPNet, error) {
		_, loop, _ := net.ParseCIDR("127.0.0.0/8")
		return []*net.IPNet{loop}, nil
	}
	t.Cleanup(w.Stop)
	return w, log
}

func sendBeacon(t *testing.T, to net.Addr, b Beacon) {
	t.Helper()
	conn, err := net.Dial("udp4", to.String())
	require.NoError(t, err)
	defer conn.Close()
	data, err := b.Encode()
	require.NoError(t, err)
	_, err = conn.Write(data)
	require.NoError(t, err)
}

func peer(id, name string) Beacon {
	return Beacon{
		Version:        beaconVersion,
		ID:             id,
		Name:           name,
		Kind:           string(domain.KindLaptop),
		Port:           47475,
		Status:         string(domain.StatusAvailable),
		AllowAnonymous: true,
		Capabilities:   []string{domain.CapabilityNearShare},
	}
}

func anyFilters() domain.DiscoveryFilters {
	return domain.DiscoveryFilters{Discovery: domain.DiscoveryProximal, Authorization: domain.AuthAnonymous}
}

func TestWatcherAddsUpdatesAndRemoves(t *testing.T) {
	w, log := newTestWatcher(t, time.Minute)
	require.NoError(t, w.Start(context.Background(), anyFilters()))

	b := peer("p1", "Living Room PC")
	sendBeacon(t, w.Addr(), b)
	require.Eventually(t, func() bool { return len(log.ofType(eventbus.EventDeviceAdded)) == 1 }, 2*time.Second, 10*time.Millisecond)

	added := log.ofType(eventbus.EventDeviceAdded)[0].(eventbus.DeviceAddedEvent).Device
	assert.Equal(t, "Living Room PC", added.DisplayName)
	assert.Equal(t, "127.0.0.1:47475", added.Address)

	// Same beacon again is not an update
	sendBeacon(t, w.Addr(), b)
	b.Name = "Den PC"
	sendBeacon(t, w.Addr(), b)
	require.Eventually(t, func() bool { return len(log.ofType(eventbus.EventDeviceUpdated)) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Len(t, log.ofType(eventbus.EventDeviceAdded), 1)

	b.Goodbye = true
	sendBeacon(t, w.Addr(), b)
	require.Eventually(t, func() bool { return len(log.ofType(eventbus.EventDeviceRemoved)) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, w.Devices())
}

func TestWatcherExpiresSilentPeers(t *testing.T) {
	w, log := newTestWatcher(t, 100*time.Millisecond)
	require.NoError(t, w.Start(context.Background(), anyFilters()))

	sendBeacon(t, w.Addr(), peer("p1", "tablet"))
	require.Eventually(t, func() bool { return len(log.ofType(eventbus.EventDeviceRemoved)) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, w.Devices())
}

func TestWatcherFilters(t *testing.T) {
	w, log := newTestWatcher(t, time.Minute)
	filters := domain.DiscoveryFilters{
		Discovery:     domain.DiscoveryProximal,
		Status:        domain.StatusTypeAvailable,
		Authorization: domain.AuthSameUser,
		Owner:         "sam",
	}
	require.NoError(t, w.Start(context.Background(), filters))

	stranger := peer("p1", "stranger")
	stranger.Owner = "alex"
	sendBeacon(t, w.Addr(), stranger)

	busy := peer("p2", "busy")
	busy.Owner = "sam"
	busy.Status = string(domain.StatusUnavailable)
	sendBeacon(t, w.Addr(), busy)

	mine := peer("p3", "mine")
	mine.Owner = "sam"
	sendBeacon(t, w.Addr(), mine)

	self := peer("me", "myself")
	self.Owner = "sam"
	sendBeacon(t, w.Addr(), self)

	require.Eventually(t, func() bool { return len(log.ofType(eventbus.EventDeviceAdded)) == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	devices := w.Devices()
	require.Len(t, devices, 1)
	assert.Equal(t, "p3", devices[0].ID)

	// A listed peer that turns unavailable is dropped
	mine.Status = string(domain.StatusUnavailable)
	sendBeacon(t, w.Addr(), mine)
	require.Eventually(t, func() bool { return len(log.ofType(eventbus.EventDeviceRemoved)) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestSpatialFilterNeedsAttachedSubnet(t *testing.T) {
	nets := []*net.IPNet{{IP: net.IPv4(192, 168, 1, 0), Mask: net.CIDRMask(24, 32)}}
	f := domain.DiscoveryFilters{Discovery: domain.DiscoverySpatiallyProximal, Authorization: domain.AuthAnonymous}
	d := domain.Device{Status: domain.StatusAvailable, AllowAnonymous: true}

	assert.True(t, accepts(f, d, net.IPv4(192, 168, 1, 20), nets))
	assert.False(t, accepts(f, d, net.IPv4(10, 0, 0, 5), nets))

	f.Discovery = domain.DiscoveryProximal
	assert.True(t, accepts(f, d, net.IPv4(10, 0, 0, 5), nets))

	d.AllowAnonymous = false
	assert.False(t, accepts(f, d, net.IPv4(10, 0, 0, 5), nets))
}

func TestWatcherStartTwiceAndRestart(t *testing.T) {
	w, log := newTestWatcher(t, time.Minute)
	require.NoError(t, w.Start(context.Background(), anyFilters()))
	require.ErrorIs(t, w.Start(context.Background(), anyFilters()), ErrAlreadyStarted)

	sendBeacon(t, w.Addr(), peer("p1", "phone"))
	require.Eventually(t, func() bool { return len(w.Devices()) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, w.Restart(context.Background(), anyFilters()))
	assert.Empty(t, w.Devices(), "restart forgets known devices")
	require.Eventually(t, func() bool {
		return len(log.ofType(eventbus.EventWatcherStopped)) == 1 && len(log.ofType(eventbus.EventWatcherStarted)) == 2
	}, 2*time.Second, 10*time.Millisecond)

	sendBeacon(t, w.Addr(), peer("p1", "phone"))
	require.Eventually(t, func() bool { return len(log.ofType(eventbus.EventDeviceAdded)) == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestAnnouncerIsSeenAndSaysGoodbye(t *testing.T) {
	w, log := newTestWatcher(t, time.Minute)
	require.NoError(t, w.Start(context.Background(), anyFilters()))

	ctx, cancel := context.WithCancel(context.Background())
	a := NewAnnouncer(peer("p9", "announcer"), 20*time.Millisecond, w.Addr().String())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool { return len(w.Devices()) == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	require.Eventually(t, func() bool { return len(log.ofType(eventbus.EventDeviceRemoved)) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestDecodeBeacon(t *testing.T) {
	_, err := DecodeBeacon([]byte("not json"))
	require.Error(t, err)

	_, err = DecodeBeacon([]byte(`{"v":99,"id":"x","port":1}`))
	require.Error(t, err)

	_, err = DecodeBeacon([]byte(`{"v":1,"id":"","port":1}`))
	require.Error(t, err)

	_, err = DecodeBeacon([]byte(`{"v":1,"id":"x","port":0}`))
	require.Error(t, err)

	b, err := DecodeBeacon([]byte(`{"v":1,"id":"x","port":80}`))
	require.NoError(t, err)
	d := b.Device(net.IPv4(10, 1, 2, 3), time.Unix(0, 0))
	assert.Equal(t, "x", d.DisplayName)
	assert.Equal(t, domain.KindUnknown, d.Kind)
	assert.Equal(t, domain.StatusAvailable, d.Status)
	assert.Equal(t, "10.1.2.3:80", d.Address)
}
