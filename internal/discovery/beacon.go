package discovery

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"time"

	"nearshare/internal/domain"
)

// beaconVersion is bumped whenever the beacon layout changes incompatibly
const beaconVersion = 1

// Beacon is the datagram a peer broadcasts to announce itself
type Beacon struct {
	Version        int      `json:"v"`
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Kind           string   `json:"kind"`
	Port           int      `json:"port"` // transfer endpoint port
	Status         string   `json:"status"`
	Owner          string   `json:"owner,omitempty"`
	AllowAnonymous bool     `json:"anon"`
	Capabilities   []string `json:"caps,omitempty"`
	Goodbye        bool     `json:"bye,omitempty"`
}

// BeaconFor builds the beacon announcing a local device
func BeaconFor(d domain.Device, port int) Beacon {
	return Beacon{
		Version:        beaconVersion,
		ID:             d.ID,
		Name:           d.DisplayName,
		Kind:           string(d.Kind),
		Port:           port,
		Status:         string(d.Status),
		Owner:          d.Owner,
		AllowAnonymous: d.AllowAnonymous,
		Capabilities:   d.Capabilities,
	}
}

// Encode serializes the beacon
func (b Beacon) Encode() ([]byte, error) {
	return json.Marshal(b)
}

// DecodeBeacon parses a datagram
func DecodeBeacon(data []byte) (Beacon, error) {
	var b Beacon
	if err := json.Unmarshal(data, &b); err != nil {
		return Beacon{}, fmt.Errorf("malformed beacon: %w", err)
	}
	if b.Version != beaconVersion {
		return Beacon{}, fmt.Errorf("unsupported beacon version %d", b.Version)
	}
	if b.ID == "" {
		return Beacon{}, fmt.Errorf("beacon without id")
	}
	if b.Port <= 0 || b.Port > 65535 {
		return Beacon{}, fmt.Errorf("beacon %s has invalid port %d", b.ID, b.Port)
	}
	return b, nil
}

// Device converts a beacon received from ip into a device handle
func (b Beacon) Device(ip net.IP, seen time.Time) domain.Device {
	name := b.Name
	if name == "" {
		name = b.ID
	}
	kind := domain.DeviceKind(b.Kind)
	if kind == "" {
		kind = domain.KindUnknown
	}
	status := domain.DeviceStatus(b.Status)
	if status == "" {
		status = domain.StatusAvailable
	}
	caps := make([]string, len(b.Capabilities))
	copy(caps, b.Capabilities)
	return domain.Device{
		ID:             b.ID,
		DisplayName:    name,
		Kind:           kind,
		Address:        net.JoinHostPort(ip.String(), strconv.Itoa(b.Port)),
		Status:         status,
		Owner:          b.Owner,
		AllowAnonymous: b.AllowAnonymous,
		Capabilities:   caps,
		LastSeen:       seen,
	}
}
