package registry

import (
	"fmt"
	"strings"
	"time"
)

// Observation is a single discovery event for one device.
type Observation struct {
	// Address is the device address (MAC on Linux/Windows, UUID on macOS)
	Address string

	// Name is the advertised local name, empty if the packet had none
	Name string

	// RSSI is the received signal strength in dBm
	RSSI int

	// HasRSSI reports whether RSSI carries a value
	HasRSSI bool

	// SeenAt is when the event was received. Zero means now.
	SeenAt time.Time
}

// Device is the last-known state of one discovered device.
type Device struct {
	Address   string    `json:"address"`
	Name      string    `json:"name"`
	RSSI      int       `json:"rssi,omitempty"`
	HasRSSI   bool      `json:"has_rssi"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	Count     int       `json:"count"`
}

// DisplayName returns the device name, or placeholder when the device never
// advertised one.
func (d Device) DisplayName(placeholder string) string {
	if d.Name == "" {
		return placeholder
	}
	return d.Name
}

// String returns a human-readable representation of the device
func (d Device) String() string {
	name := d.DisplayName("(unnamed)")
	if d.HasRSSI {
		return fmt.Sprintf("%s [%s] %d dBm", name, d.Address, d.RSSI)
	}
	return fmt.Sprintf("%s [%s]", name, d.Address)
}

// NormalizeAddress returns the canonical registry key for an address.
func NormalizeAddress(address string) string {
	return strings.ToUpper(strings.TrimSpace(address))
}
