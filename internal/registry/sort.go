package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// SortOrder selects how a snapshot is ordered for display.
type SortOrder string

const (
	// SortDiscovery keeps the order in which devices were first seen
	SortDiscovery SortOrder = "discovery"
	// SortName orders by name, unnamed devices last
	SortName SortOrder = "name"
	// SortRSSI orders by signal strength, strongest first
	SortRSSI SortOrder = "rssi"
)

// ErrUnknownSortOrder is returned by ParseSortOrder for unsupported values.
var ErrUnknownSortOrder = errors.New("unknown sort order")

// ParseSortOrder converts a user-supplied string into a SortOrder.
// An empty string means SortDiscovery.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortDiscovery:
		return SortDiscovery, nil
	case SortName:
		return SortName, nil
	case SortRSSI:
		return SortRSSI, nil
	default:
		return "", fmt.Errorf("%w: %q (use discovery, name or rssi)", ErrUnknownSortOrder, s)
	}
}

// Sorted returns a sorted copy of devs. The input is not modified.
// Ties keep discovery order.
func Sorted(devs []Device, order SortOrder) []Device {
	out := make([]Device, len(devs))
	copy(out, devs)

	switch order {
	case SortName:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].Name, out[j].Name
			if a == "" || b == "" {
				return a != "" && b == ""
			}
			return strings.ToLower(a) < strings.ToLower(b)
		})
	case SortRSSI:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i], out[j]
			if a.HasRSSI != b.HasRSSI {
				return a.HasRSSI
			}
			return a.RSSI > b.RSSI
		})
	}
	return out
}
