package registry

import (
	"errors"
	"sync"
	"time"
)

// ErrEmptyAddress is returned by Observe for events without an address.
var ErrEmptyAddress = errors.New("observation has no device address")

// Registry maps device addresses to their last-known metadata.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	devices map[string]*Device

	subMu  sync.Mutex
	subs   map[int]chan struct{}
	nextID int

	now func() time.Time
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		devices: make(map[string]*Device),
		subs:    make(map[int]chan struct{}),
		now:     time.Now,
	}
}

// Observe merges a discovery event into the registry.
// Returns true if the address was not known before.
func (r *Registry) Observe(obs Observation) (bool, error) {
	addr := NormalizeAddress(obs.Address)
	if addr == "" {
		return false, ErrEmptyAddress
	}

	seen := obs.SeenAt
	if seen.IsZero() {
		seen = r.now()
	}

	r.mu.Lock()
	dev, exists := r.devices[addr]
	if !exists {
		dev = &Device{
			Address:   addr,
			FirstSeen: seen,
		}
		r.devices[addr] = dev
		r.order = append(r.order, addr)
	}

	if obs.Name != "" {
		dev.Name = obs.Name
	}
	if obs.HasRSSI {
		dev.RSSI = obs.RSSI
		dev.HasRSSI = true
	}
	if seen.After(dev.LastSeen) {
		dev.LastSeen = seen
	}
	dev.Count++
	r.mu.Unlock()

	r.notify()
	return !exists, nil
}

// Snapshot returns a copy of all devices in discovery order.
func (r *Registry) Snapshot() []Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Device, 0, len(r.order))
	for _, addr := range r.order {
		out = append(out, *r.devices[addr])
	}
	return out
}

// Get returns the device stored for address, if any.
func (r *Registry) Get(address string) (Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dev, ok := r.devices[NormalizeAddress(address)]
	if !ok {
		return Device{}, false
	}
	return *dev, true
}

// Len returns the number of distinct devices
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Clear removes every device.
func (r *Registry) Clear() {
	r.mu.Lock()
	empty := len(r.order) == 0
	r.order = nil
	r.devices = make(map[string]*Device)
	r.mu.Unlock()

	if !empty {
		r.notify()
	}
}

// Prune removes devices last seen before cutoff and returns how many were
// removed. Survivors keep their relative order.
func (r *Registry) Prune(cutoff time.Time) int {
	r.mu.Lock()
	kept := r.order[:0]
	removed := 0
	for _, addr := range r.order {
		if r.devices[addr].LastSeen.Before(cutoff) {
			delete(r.devices, addr)
			removed++
			continue
		}
		kept = append(kept, addr)
	}
	r.order = kept
	r.mu.Unlock()

	if removed > 0 {
		r.notify()
	}
	return removed
}

// Subscribe registers for change notifications. The returned function
// unsubscribes and closes the channel.
func (r *Registry) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	r.subMu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = ch
	r.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.subMu.Lock()
			delete(r.subs, id)
			r.subMu.Unlock()
			close(ch)
		})
	}
}

func (r *Registry) notify() {
	r.subMu.Lock()
	defer r.subMu.Unlock()

	for _, ch := range r.subs {
		select {
		case ch <- struct{}{}:
		default:
			// already pending
		}
	}
}
