package discovery

import (
	"net"

	"nearshare/internal/domain"
)

// localNetworks lists the subnets of the machine's interfaces
func localNetworks() ([]*net.IPNet, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil, err
	}
	nets := make([]*net.IPNet, 0, len(addrs))
	for _, a := range addrs {
		if n, ok := a.(*net.IPNet); ok {
			nets = append(nets, n)
		}
	}
	return nets, nil
}

// accepts reports whether a device seen from ip passes the filters
func accepts(f domain.DiscoveryFilters, d domain.Device, ip net.IP, nets []*net.IPNet) bool {
	if f.Discovery == domain.DiscoverySpatiallyProximal && !onLink(ip, nets) {
		return false
	}
	if f.Status == domain.StatusTypeAvailable && d.Status != domain.StatusAvailable {
		return false
	}
	switch f.Authorization {
	case domain.AuthAnonymous:
		if !d.AllowAnonymous {
			return false
		}
	case domain.AuthSameUser:
		if f.Owner == "" || d.Owner != f.Owner {
			return false
		}
	}
	return true
}

func onLink(ip net.IP, nets []*net.IPNet) bool {
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
