package logic

import (
	"nearshare/internal/discovery"
	"nearshare/internal/domain"
)

// VisibleDevices maps device pane rows to container positions.
// Without a query every device is shown in list order; with one, best matches come first.
func VisibleDevices(query string, devices []domain.Device) []int {
	return discovery.FilterDevices(query, devices)
}
