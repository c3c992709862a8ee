package scanner

import (
	"context"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/healthyair/btscan/internal/registry"
)

// DefaultAdapterID is the BlueZ adapter used when none is configured
const DefaultAdapterID = "hci0"

// stopRetryInterval is how often StopScan is retried while the adapter has
// not started scanning yet.
const stopRetryInterval = 50 * time.Millisecond

// BLESource discovers Bluetooth LE devices through the host Bluetooth stack.
type BLESource struct {
	adapter   *bluetooth.Adapter
	adapterID string

	mu      sync.Mutex
	enabled bool
}

// NewBLESource returns a source for the system default adapter. adapterID is
// only used on Linux for power management (e.g. "hci0").
func NewBLESource(adapterID string) *BLESource {
	if adapterID == "" {
		adapterID = DefaultAdapterID
	}
	return &BLESource{
		adapter:   bluetooth.DefaultAdapter,
		adapterID: adapterID,
	}
}

// AdapterID returns the configured adapter identifier
func (s *BLESource) AdapterID() string {
	return s.adapterID
}

// Enable initializes the Bluetooth stack. Repeated calls are no-ops.
func (s *BLESource) Enable() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.enabled {
		return nil
	}
	if err := s.adapter.Enable(); err != nil {
		return err
	}
	s.enabled = true
	return nil
}

// Scan runs a BLE scan until ctx is done.
func (s *BLESource) Scan(ctx context.Context, fn func(registry.Observation)) error {
	if ctx.Err() != nil {
		return nil
	}

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		stopOnCancel(ctx, done, s.adapter.StopScan, stopRetryInterval)
	}()

	err := s.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
		fn(observationFromResult(result, time.Now()))
	})
	close(done)
	// The next scan must not start while a StopScan retry is pending
	<-stopped

	if ctx.Err() != nil {
		return nil
	}
	return err
}

// stopOnCancel calls stop once ctx is done. StopScan fails until the scan
// has actually started, so it is retried every interval until it succeeds
// or done is closed. stop is never called after done is closed.
func stopOnCancel(ctx context.Context, done <-chan struct{}, stop func() error, interval time.Duration) {
	select {
	case <-done:
		return
	case <-ctx.Done():
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		default:
		}
		if err := stop(); err == nil {
			return
		}
		select {
		case <-done:
			return
		case <-ticker.C:
		}
	}
}

func observationFromResult(result bluetooth.ScanResult, seen time.Time) registry.Observation {
	return registry.Observation{
		Address: result.Address.String(),
		Name:    result.LocalName(),
		RSSI:    int(result.RSSI),
		HasRSSI: true,
		SeenAt:  seen,
	}
}
