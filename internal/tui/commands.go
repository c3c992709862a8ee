package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/healthyair/btscan/internal/scanner"
)

// Messages for async operations
type (
	enableResultMsg    struct{ err error }
	powerOnResultMsg   struct{ err error }
	scanRequestMsg     struct{ err error }
	scanEventMsg       struct{ event scanner.Event }
	registryChangedMsg struct{}
	pruneTickMsg       time.Time
)

func enableCmd(s *scanner.Session) tea.Cmd {
	return func() tea.Msg {
		return enableResultMsg{err: s.Enable()}
	}
}

func powerOnCmd(s *scanner.Session) tea.Cmd {
	return func() tea.Msg {
		return powerOnResultMsg{err: s.PowerOn()}
	}
}

// restartCmd clears the list and starts a fresh scan
func restartCmd(ctx context.Context, s *scanner.Session) tea.Cmd {
	return func() tea.Msg {
		return scanRequestMsg{err: s.Restart(ctx)}
	}
}

func stopCmd(s *scanner.Session) tea.Cmd {
	return func() tea.Msg {
		s.Stop()
		return nil
	}
}

func pauseCmd(s *scanner.Session) tea.Cmd {
	return func() tea.Msg {
		s.Pause()
		return nil
	}
}

func resumeCmd(ctx context.Context, s *scanner.Session) tea.Cmd {
	return func() tea.Msg {
		return scanRequestMsg{err: s.Resume(ctx)}
	}
}

// waitForEvent delivers the next session event. It returns nil once the
// channel is closed.
func waitForEvent(events <-chan scanner.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return scanEventMsg{event: ev}
	}
}

// waitForChange delivers the next registry notification. It returns nil
// once the subscription is closed.
func waitForChange(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return registryChangedMsg{}
	}
}

func pruneTick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return pruneTickMsg(t)
	})
}
