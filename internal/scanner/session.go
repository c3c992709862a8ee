package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/healthyair/btscan/internal/logging"
	"github.com/healthyair/btscan/internal/registry"
)

// State is the scan state of a session.
type State int

const (
	// StateIdle means no scan is running
	StateIdle State = iota
	// StateScanning means discovery events are being collected
	StateScanning
)

// String returns a lower-case name for the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// EventKind identifies a session state transition.
type EventKind int

const (
	// EventStarted is emitted when a scan begins
	EventStarted EventKind = iota
	// EventStopped is emitted when a scan was cancelled
	EventStopped
	// EventCompleted is emitted when a scan reached its timeout
	EventCompleted
	// EventFailed is emitted when the source returned an error
	EventFailed
)

// String returns a lower-case name for the event kind
func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventStopped:
		return "stopped"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event reports a session state transition.
type Event struct {
	Kind EventKind
	Err  error
	At   time.Time
}

// DefaultTimeout matches the length of a classic Bluetooth inquiry.
const DefaultTimeout = 12 * time.Second

const eventBuffer = 16

// Option configures a Session
type Option func(*Session)

// WithTimeout limits each scan to d. Zero scans until stopped.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.timeout = d
	}
}

// Session drives scans of a Source into a Registry.
type Session struct {
	source  Source
	reg     *registry.Registry
	timeout time.Duration

	// startMu serializes Start/Stop so scans never overlap
	startMu sync.Mutex

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}

	events chan Event
}

// NewSession creates an idle session.
func NewSession(src Source, reg *registry.Registry, opts ...Option) *Session {
	s := &Session{
		source:  src,
		reg:     reg,
		timeout: DefaultTimeout,
		events:  make(chan Event, eventBuffer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the registry the session writes to
func (s *Session) Registry() *registry.Registry {
	return s.reg
}

// Timeout returns the per-scan timeout (zero means unlimited)
func (s *Session) Timeout() time.Duration {
	return s.timeout
}

// Events returns the channel of state transitions. Events are dropped when
// nobody reads them.
func (s *Session) Events() <-chan Event {
	return s.events
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Enable prepares the adapter and checks that it is switched on.
func (s *Session) Enable() error {
	if err := s.source.Enable(); err != nil {
		return fmt.Errorf("%w: %v", ErrAdapterUnavailable, err)
	}

	pc, ok := s.source.(PowerController)
	if !ok {
		return nil
	}

	powered, err := pc.Powered()
	if err != nil {
		// Power state unknown, let the scan itself report problems
		logging.Warn("Could not read adapter power state", zap.Error(err))
		return nil
	}
	if !powered {
		return ErrAdapterDisabled
	}
	return nil
}

// PowerOn switches the adapter on.
func (s *Session) PowerOn() error {
	pc, ok := s.source.(PowerController)
	if !ok {
		return ErrPowerUnsupported
	}
	if err := pc.PowerOn(); err != nil {
		return fmt.Errorf("failed to power on adapter: %w", err)
	}
	logging.Info("Bluetooth adapter powered on")
	return nil
}

// Start begins a new scan. A scan that is already running is cancelled
// first. The scan runs in the background; use Events or State to follow it.
func (s *Session) Start(ctx context.Context) error {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	return s.startLocked(ctx)
}

// Restart clears the registry and starts a fresh scan. No other scan can
// start between the two steps.
func (s *Session) Restart(ctx context.Context) error {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	s.stopLocked()
	s.reg.Clear()
	return s.startLocked(ctx)
}

// startLocked cancels the running scan and starts a new one. startMu must
// be held.
func (s *Session) startLocked(ctx context.Context) error {
	s.stopLocked()

	if err := ctx.Err(); err != nil {
		return err
	}

	var (
		scanCtx context.Context
		cancel  context.CancelFunc
	)
	if s.timeout > 0 {
		scanCtx, cancel = context.WithTimeout(ctx, s.timeout)
	} else {
		scanCtx, cancel = context.WithCancel(ctx)
	}
	done := make(chan struct{})

	s.mu.Lock()
	s.state = StateScanning
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	s.emit(Event{Kind: EventStarted})
	logging.LogScanEvent(EventStarted.String(), s.reg.Len(), nil)

	go s.run(scanCtx, cancel, done)
	return nil
}

// Stop cancels the running scan and waits for it to end. It does nothing
// when the session is idle.
func (s *Session) Stop() {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	s.stopLocked()
}

// Pause stops scanning when the application is backgrounded.
func (s *Session) Pause() {
	s.Stop()
}

// Resume starts over with an empty list when the application comes back.
func (s *Session) Resume(ctx context.Context) error {
	return s.Restart(ctx)
}

// Wait blocks until the current scan, if any, has ended or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) stopLocked() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Session) run(ctx context.Context, cancel context.CancelFunc, done chan struct{}) {
	defer close(done)
	defer cancel()

	err := s.source.Scan(ctx, func(obs registry.Observation) {
		added, err := s.reg.Observe(obs)
		if err != nil {
			logging.Debug("Dropped discovery event", zap.Error(err))
			return
		}
		logging.LogObservation(obs.Address, obs.Name, obs.RSSI, added)
	})

	ev := Event{Kind: EventStopped}
	switch {
	case err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded):
		ev = Event{Kind: EventFailed, Err: err}
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		ev.Kind = EventCompleted
	case ctx.Err() == nil:
		// source ended by itself
		ev.Kind = EventCompleted
	}

	s.mu.Lock()
	if s.done == done {
		s.state = StateIdle
		s.cancel = nil
		s.done = nil
	}
	s.mu.Unlock()

	s.emit(ev)
	logging.LogScanEvent(ev.Kind.String(), s.reg.Len(), ev.Err)
}

func (s *Session) emit(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	select {
	case s.events <- ev:
	default:
		logging.Debug("Scan event dropped", zap.String("kind", ev.Kind.String()))
	}
}
