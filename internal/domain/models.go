package domain

import (
	"fmt"
	"time"
)

// DeviceKind describes the form factor a peer advertises
type DeviceKind string

const (
	KindDesktop DeviceKind = "desktop"
	KindLaptop  DeviceKind = "laptop"
	KindPhone   DeviceKind = "phone"
	KindTablet  DeviceKind = "tablet"
	KindUnknown DeviceKind = "unknown"
)

// DeviceStatus is the availability a peer reports in its beacon
type DeviceStatus string

const (
	StatusAvailable   DeviceStatus = "available"
	StatusUnavailable DeviceStatus = "unavailable"
)

// DiscoveryType selects how close a peer has to be to be listed
type DiscoveryType int

const (
	// DiscoveryProximal lists every peer whose beacon reaches us
	DiscoveryProximal DiscoveryType = iota
	// DiscoverySpatiallyProximal lists only peers on a directly attached subnet
	DiscoverySpatiallyProximal
)

func (d DiscoveryType) String() string {
	switch d {
	case DiscoverySpatiallyProximal:
		return "spatially proximal"
	default:
		return "proximal"
	}
}

// StatusType filters peers by their reported availability
type StatusType int

const (
	StatusTypeAny StatusType = iota
	StatusTypeAvailable
)

// AuthorizationKind filters peers by who they accept transfers from
type AuthorizationKind int

const (
	// AuthAnonymous lists peers that accept transfers from anyone
	AuthAnonymous AuthorizationKind = iota
	// AuthSameUser lists peers owned by the same user as us
	AuthSameUser
)

// DiscoveryFilters is the set of filters a watcher is started with
type DiscoveryFilters struct {
	Discovery     DiscoveryType
	Status        StatusType
	Authorization AuthorizationKind
	Owner         string // our owner, used by AuthSameUser
}

// DefaultFilters mirrors the defaults of the send screens
func DefaultFilters() DiscoveryFilters {
	return DiscoveryFilters{
		Discovery:     DiscoverySpatiallyProximal,
		Status:        StatusTypeAny,
		Authorization: AuthAnonymous,
	}
}

// CapabilityNearShare marks peers that accept URI and file transfers
const CapabilityNearShare = "nearshare"

// Device represents one discoverable nearby peer
type Device struct {
	ID             string
	DisplayName    string
	Kind           DeviceKind
	Address        string // host:port of the transfer endpoint
	Status         DeviceStatus
	Owner          string
	AllowAnonymous bool
	Capabilities   []string
	LastSeen       time.Time
}

// HasCapability reports whether the device advertises the capability
func (d Device) HasCapability(name string) bool {
	for _, c := range d.Capabilities {
		if c == name {
			return true
		}
	}
	return false
}

// SameAs reports whether two snapshots of a device differ in anything shown to the user
func (d Device) SameAs(other Device) bool {
	if d.ID != other.ID || d.DisplayName != other.DisplayName || d.Kind != other.Kind ||
		d.Address != other.Address || d.Status != other.Status || d.Owner != other.Owner ||
		d.AllowAnonymous != other.AllowAnonymous || len(d.Capabilities) != len(other.Capabilities) {
		return false
	}
	for i := range d.Capabilities {
		if d.Capabilities[i] != other.Capabilities[i] {
			return false
		}
	}
	return true
}

// FileRef is a handle to a file chosen for sending
type FileRef string

// Path returns the file system path behind the handle
func (f FileRef) Path() string { return string(f) }

// TransferKind describes what was sent
type TransferKind string

const (
	TransferURI   TransferKind = "uri"
	TransferFile  TransferKind = "file"
	TransferFiles TransferKind = "files"
)

// TransferStatus is the terminal outcome of a send operation
type TransferStatus int

const (
	TransferPending TransferStatus = iota
	TransferCompleted
	TransferFailed
	TransferCanceled
)

func (s TransferStatus) String() string {
	switch s {
	case TransferCompleted:
		return "completed"
	case TransferFailed:
		return "failed"
	case TransferCanceled:
		return "canceled"
	default:
		return "pending"
	}
}

// ParseTransferStatus is the inverse of TransferStatus.String
func ParseTransferStatus(s string) (TransferStatus, error) {
	switch s {
	case "completed":
		return TransferCompleted, nil
	case "failed":
		return TransferFailed, nil
	case "canceled":
		return TransferCanceled, nil
	case "pending":
		return TransferPending, nil
	}
	return TransferPending, fmt.Errorf("unknown transfer status %q", s)
}

// Transfer is the record of one send operation
type Transfer struct {
	ID         string
	DeviceID   string
	DeviceName string
	Kind       TransferKind
	Items      []string // URI or file paths
	Bytes      int64
	Status     TransferStatus
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}
