package mdns

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/healthyair/btscan/internal/logging"
)

const (
	// ServiceType is the mDNS service type of btscan servers
	ServiceType = "_btscan._tcp"

	// ServiceDomain is the mDNS domain
	ServiceDomain = "local."

	// DefaultBrowseTimeout is how long Browse listens by default
	DefaultBrowseTimeout = 3 * time.Second

	// DefaultPath is the WebSocket path assumed when none is announced
	DefaultPath = "/ws"

	// TXT record keys
	TXTVersion = "version"
	TXTPath    = "path"
	TXTTLS     = "tls" // "true" when the server requires TLS
)

// Announce registers a btscan server under instance. Call the returned
// function to withdraw the announcement.
func Announce(instance string, port int, txt map[string]string) (func(), error) {
	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, formatTXT(txt), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	logging.Info("Announcing server via mDNS",
		zap.String("instance", instance),
		zap.String("service", ServiceType),
		zap.Int("port", port),
	)
	return func() {
		server.Shutdown()
		logging.Debug("mDNS announcement withdrawn", zap.String("instance", instance))
	}, nil
}

// formatTXT renders metadata as sorted key=value records
func formatTXT(txt map[string]string) []string {
	records := make([]string, 0, len(txt))
	for k, v := range txt {
		records = append(records, k+"="+v)
	}
	sort.Strings(records)
	return records
}

// Browser finds btscan servers
type Browser struct {
	// Timeout is the maximum time to listen for announcements
	Timeout time.Duration
}

// NewBrowser creates a browser with the default timeout
func NewBrowser() *Browser {
	return &Browser{Timeout: DefaultBrowseTimeout}
}

// Browse listens until the timeout or ctx ends and returns the peers seen.
// A peer announced more than once is reported once.
func (b *Browser) Browse(ctx context.Context) ([]*Peer, error) {
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultBrowseTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	var (
		mu    sync.Mutex
		peers []*Peer
		seen  = make(map[string]bool)
	)
	entries := make(chan *zeroconf.ServiceEntry)
	go func() {
		for entry := range entries {
			peer := parseServiceEntry(entry)
			if peer == nil {
				continue
			}
			mu.Lock()
			if !seen[peer.Instance] {
				seen[peer.Instance] = true
				peers = append(peers, peer)
				logging.Debug("Found btscan server", zap.String("peer", peer.String()))
			}
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()

	mu.Lock()
	defer mu.Unlock()
	return append([]*Peer(nil), peers...), nil
}

// parseServiceEntry converts a zeroconf entry to a Peer. Entries without
// an instance name or an address are skipped.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Peer {
	if entry == nil || entry.Instance == "" {
		return nil
	}

	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		if key == "" {
			continue
		}
		metadata[key] = value
	}

	return &Peer{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         entry.Port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}
