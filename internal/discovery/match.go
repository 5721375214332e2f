package discovery

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"nearshare/internal/domain"
)

// ErrNoDevice is returned when no listed device matches a query
var ErrNoDevice = errors.New("no matching device")

type deviceNames []domain.Device

func (d deviceNames) String(i int) string { return d[i].DisplayName }
func (d deviceNames) Len() int            { return len(d) }

// MatchDevice picks the device a user meant by query.
// An exact id or name wins; otherwise the best fuzzy match on the name.
func MatchDevice(query string, devices []domain.Device) (domain.Device, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return domain.Device{}, fmt.Errorf("%w: empty query", ErrNoDevice)
	}
	for _, d := range devices {
		if d.ID == q || strings.EqualFold(d.DisplayName, q) {
			return d, nil
		}
	}
	matches := fuzzy.FindFrom(q, deviceNames(devices))
	if len(matches) == 0 {
		return domain.Device{}, fmt.Errorf("%w: %q", ErrNoDevice, q)
	}
	return devices[matches[0].Index], nil
}

// FilterDevices returns the indexes of devices whose names fuzzy-match query, best first.
// An empty query keeps every device in order.
func FilterDevices(query string, devices []domain.Device) []int {
	if strings.TrimSpace(query) == "" {
		out := make([]int, len(devices))
		for i := range devices {
			out[i] = i
		}
		return out
	}
	matches := fuzzy.FindFrom(query, deviceNames(devices))
	out := make([]int, len(matches))
	for i, m := range matches {
		out[i] = m.Index
	}
	return out
}
