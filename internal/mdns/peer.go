package mdns

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Peer is a btscan server found on the network
type Peer struct {
	// Instance is the announced service instance name
	Instance string

	// Hostname is the mDNS host name (e.g., "lab-pi.local.")
	Hostname string

	// IP is preferably IPv4
	IP string

	Port int

	// Metadata holds the TXT records ("version", "path")
	Metadata map[string]string

	DiscoveredAt time.Time
}

// String returns a human-readable description of the peer
func (p *Peer) String() string {
	return fmt.Sprintf("%s at %s", p.Instance, net.JoinHostPort(p.IP, strconv.Itoa(p.Port)))
}

// TLS reports whether the peer announced a TLS listener
func (p *Peer) TLS() bool {
	v, err := strconv.ParseBool(p.GetMetadata(TXTTLS))
	return err == nil && v
}

// BaseURL returns the HTTP base URL of the peer
func (p *Peer) BaseURL() string {
	scheme := "http://"
	if p.TLS() {
		scheme = "https://"
	}
	return scheme + net.JoinHostPort(p.IP, strconv.Itoa(p.Port))
}

// WebSocketURL returns the snapshot feed URL
func (p *Peer) WebSocketURL() string {
	path := p.GetMetadata(TXTPath)
	if path == "" {
		path = DefaultPath
	}
	scheme := "ws://"
	if p.TLS() {
		scheme = "wss://"
	}
	return scheme + net.JoinHostPort(p.IP, strconv.Itoa(p.Port)) + path
}

// Version returns the announced program version, if any
func (p *Peer) Version() string {
	return p.GetMetadata(TXTVersion)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (p *Peer) GetMetadata(key string) string {
	if p.Metadata == nil {
		return ""
	}
	return p.Metadata[key]
}
