package config

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/text/language"

	"github.com/healthyair/btscan/internal/registry"
)

// CurrentVersion is the configuration file format version.
const CurrentVersion = 1

// Default preference values.
const (
	DefaultScanTimeout = 12
	DefaultAdapter     = "hci0"
	DefaultServerHost  = "0.0.0.0"
	DefaultServerPort  = 8470
)

// ErrInvalidPreference is wrapped by Validate errors.
var ErrInvalidPreference = errors.New("invalid preference")

// Config represents the entire user configuration file.
type Config struct {
	Version     int                     `yaml:"version"`
	Preferences *Preferences            `yaml:"preferences,omitempty"`
	Devices     map[string]*KnownDevice `yaml:"devices,omitempty"` // Keyed by normalized address

	path string
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	// ScanTimeout is the scan duration in seconds, 0 scans until stopped
	ScanTimeout int `yaml:"scan_timeout"`
	// Locale is a BCP 47 tag, empty uses the environment
	Locale string `yaml:"locale,omitempty"`
	// Sort is one of discovery, name or rssi
	Sort     string `yaml:"sort,omitempty"`
	ShowRSSI bool   `yaml:"show_rssi"`
	// StaleAfter drops devices unseen for this many seconds, 0 = never
	StaleAfter int `yaml:"stale_after"`
	// Adapter is the BlueZ adapter id
	Adapter string       `yaml:"adapter,omitempty"`
	Server  *ServerPrefs `yaml:"server,omitempty"`
}

// ServerPrefs holds the defaults for the snapshot server.
type ServerPrefs struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Announce bool   `yaml:"announce"` // Advertise the server over mDNS
}

// KnownDevice is user metadata for a device seen before.
type KnownDevice struct {
	Nickname string    `yaml:"nickname,omitempty"`
	LastName string    `yaml:"last_name,omitempty"` // Last advertised name
	LastSeen time.Time `yaml:"last_seen,omitempty"`
	LastRSSI int       `yaml:"last_rssi,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Version:     CurrentVersion,
		Preferences: DefaultPreferences(),
		Devices:     make(map[string]*KnownDevice),
	}
}

// DefaultPreferences returns the preferences used when the file has none.
func DefaultPreferences() *Preferences {
	return &Preferences{
		ScanTimeout: DefaultScanTimeout,
		Sort:        string(registry.SortDiscovery),
		ShowRSSI:    true,
		Adapter:     DefaultAdapter,
		Server: &ServerPrefs{
			Host:     DefaultServerHost,
			Port:     DefaultServerPort,
			Announce: true,
		},
	}
}

// Path returns the file the configuration was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

// ScanTimeoutDuration returns the scan timeout as a duration.
func (p *Preferences) ScanTimeoutDuration() time.Duration {
	return time.Duration(p.ScanTimeout) * time.Second
}

// StaleAfterDuration returns the staleness window, 0 when disabled.
func (p *Preferences) StaleAfterDuration() time.Duration {
	return time.Duration(p.StaleAfter) * time.Second
}

// SortOrder returns the parsed sort preference. Invalid values fall back to
// discovery order.
func (p *Preferences) SortOrder() registry.SortOrder {
	order, err := registry.ParseSortOrder(p.Sort)
	if err != nil {
		return registry.SortDiscovery
	}
	return order
}

// Validate checks the preferences for out-of-range values.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", c.Version, CurrentVersion)
	}

	p := c.Preferences
	if p == nil {
		return nil
	}
	if p.ScanTimeout < 0 {
		return fmt.Errorf("%w: scan_timeout must not be negative, got %d", ErrInvalidPreference, p.ScanTimeout)
	}
	if p.StaleAfter < 0 {
		return fmt.Errorf("%w: stale_after must not be negative, got %d", ErrInvalidPreference, p.StaleAfter)
	}
	if _, err := registry.ParseSortOrder(p.Sort); err != nil {
		return fmt.Errorf("%w: sort: %v", ErrInvalidPreference, err)
	}
	if p.Locale != "" {
		if _, err := language.Parse(p.Locale); err != nil {
			return fmt.Errorf("%w: locale %q: %v", ErrInvalidPreference, p.Locale, err)
		}
	}
	if p.Server != nil && (p.Server.Port < 0 || p.Server.Port > 65535) {
		return fmt.Errorf("%w: server.port out of range: %d", ErrInvalidPreference, p.Server.Port)
	}
	return nil
}

// GetDevice retrieves device metadata by address.
// Returns nil if the device is not known.
func (c *Config) GetDevice(address string) *KnownDevice {
	return c.Devices[registry.NormalizeAddress(address)]
}

// EnsureDevice ensures a device entry exists for address.
// Returns the device entry (existing or newly created).
func (c *Config) EnsureDevice(address string) *KnownDevice {
	if c.Devices == nil {
		c.Devices = make(map[string]*KnownDevice)
	}

	key := registry.NormalizeAddress(address)
	if device, exists := c.Devices[key]; exists {
		return device
	}

	device := &KnownDevice{}
	c.Devices[key] = device
	return device
}

// SetNickname sets a user-friendly nickname for a device.
func (c *Config) SetNickname(address, nickname string) {
	c.EnsureDevice(address).Nickname = nickname
}

// Nickname returns the nickname for address, or "".
func (c *Config) Nickname(address string) string {
	if d := c.GetDevice(address); d != nil {
		return d.Nickname
	}
	return ""
}

// normalizeDevices re-keys hand-edited entries by normalized address.
// Entries that collide are merged, keeping the most recent sighting.
func (c *Config) normalizeDevices() {
	devices := make(map[string]*KnownDevice, len(c.Devices))
	for addr, d := range c.Devices {
		if d == nil {
			d = &KnownDevice{}
		}
		key := registry.NormalizeAddress(addr)
		if key == "" {
			continue
		}
		existing, ok := devices[key]
		if !ok {
			devices[key] = d
			continue
		}
		devices[key] = mergeKnown(existing, d)
	}
	c.Devices = devices
}

// mergeKnown combines two entries for the same address. The newer sighting
// wins; a nickname is kept from whichever entry has one.
func mergeKnown(a, b *KnownDevice) *KnownDevice {
	newer, older := a, b
	if b.LastSeen.After(a.LastSeen) {
		newer, older = b, a
	}
	merged := *newer
	if merged.Nickname == "" {
		merged.Nickname = older.Nickname
	}
	if merged.LastName == "" {
		merged.LastName = older.LastName
	}
	return &merged
}

// Forget removes a known device. Returns false if it was not known.
func (c *Config) Forget(address string) bool {
	key := registry.NormalizeAddress(address)
	if _, ok := c.Devices[key]; !ok {
		return false
	}
	delete(c.Devices, key)
	return true
}

// RecordSeen updates the stored metadata of an already known device from a
// scan result. Devices without an entry are not added. Returns whether an
// entry changed.
func (c *Config) RecordSeen(d registry.Device) bool {
	known := c.GetDevice(d.Address)
	if known == nil {
		return false
	}
	if d.Name != "" {
		known.LastName = d.Name
	}
	if d.HasRSSI {
		known.LastRSSI = d.RSSI
	}
	known.LastSeen = d.LastSeen
	return true
}
