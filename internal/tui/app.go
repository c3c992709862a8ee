package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/healthyair/btscan/internal/config"
	"github.com/healthyair/btscan/internal/i18n"
	"github.com/healthyair/btscan/internal/logging"
	"github.com/healthyair/btscan/internal/registry"
	"github.com/healthyair/btscan/internal/scanner"
)

// minPruneInterval bounds how often stale devices are checked
const minPruneInterval = time.Second

// Options configures the interactive screen.
type Options struct {
	Context    context.Context
	Session    *scanner.Session
	Translator *i18n.Translator
	Config     *config.Config // Nicknames and last-seen bookkeeping, may be nil
	SortOrder  registry.SortOrder
	ShowRSSI   bool
	StaleAfter time.Duration // 0 disables pruning
}

// Model is the scanner screen: a live device list with a scan status line,
// plus modal dialogs for adapter problems.
type Model struct {
	ctx        context.Context
	session    *scanner.Session
	tr         *i18n.Translator
	cfg        *config.Config
	order      registry.SortOrder
	staleAfter time.Duration

	changes     <-chan struct{}
	unsubscribe func()

	// adapterReady is set once Enable (or PowerOn) succeeded. Until then
	// the update key asks about the adapter again.
	adapterReady bool

	Width         int
	Height        int
	Scanning      bool
	Stopped       bool // last scan was cancelled by the user
	ScanStartTime time.Time
	Err           error
	Dialog        *Dialog
	Quitting      bool

	DeviceList  list.Model
	Spinner     spinner.Model
	ProgressBar progress.Model
	Help        help.Model
	Keys        listKeyMap
}

// New creates the screen model and subscribes to the session registry.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	order := opts.SortOrder
	if order == "" {
		order = registry.SortDiscovery
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	changes, unsubscribe := opts.Session.Registry().Subscribe()

	return Model{
		ctx:         ctx,
		session:     opts.Session,
		tr:          opts.Translator,
		cfg:         opts.Config,
		order:       order,
		staleAfter:  opts.StaleAfter,
		changes:     changes,
		unsubscribe: unsubscribe,
		DeviceList:  newDeviceList(opts.Translator, opts.ShowRSSI),
		Spinner:     s,
		ProgressBar: bar,
		Help:        help.New(),
		Keys:        newListKeyMap(opts.Translator),
	}
}

// Run starts the full-screen program and blocks until the user quits.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(contextOrBackground(opts.Context)))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// Init checks the adapter; the scan starts once it is usable.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		enableCmd(m.session),
		waitForEvent(m.session.Events()),
		waitForChange(m.changes),
		m.Spinner.Tick,
	}
	if m.staleAfter > 0 {
		cmds = append(cmds, pruneTick(m.pruneInterval()))
	}
	return tea.Batch(cmds...)
}

func (m Model) pruneInterval() time.Duration {
	if d := m.staleAfter / 2; d > minPruneInterval {
		return d
	}
	return minPruneInterval
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.DeviceList.SetWidth(msg.Width - 4)
		m.DeviceList.SetHeight(msg.Height - 10) // Leave room for header/status/footer
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case enableResultMsg:
		return m.handleAdapterResult(msg.err)

	case powerOnResultMsg:
		if msg.err != nil {
			logging.Warn("Could not power on adapter", zap.Error(msg.err))
			m.Err = msg.err
			m.Dialog = newDialog(DialogWarning, purposeBluetoothOff,
				m.tr.T(i18n.DialogWarning), m.tr.T(i18n.MsgBluetoothOff), m.tr.T(i18n.KeyOK))
			return m, nil
		}
		m.adapterReady = true
		return m, restartCmd(m.ctx, m.session)

	case dialogClosedMsg:
		return m.handleDialogClosed(msg)

	case scanRequestMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.Err = msg.err
		}
		return m, nil

	case scanEventMsg:
		m.applyEvent(msg.event)
		return m, waitForEvent(m.session.Events())

	case registryChangedMsg:
		cmd := m.refreshItems()
		return m, tea.Batch(cmd, waitForChange(m.changes))

	case pruneTickMsg:
		if n := m.session.Registry().Prune(time.Time(msg).Add(-m.staleAfter)); n > 0 {
			logging.Debug("Pruned stale devices", zap.Int("count", n))
		}
		return m, pruneTick(m.pruneInterval())

	case tea.ResumeMsg:
		if m.adapterReady {
			return m, resumeCmd(m.ctx, m.session)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.DeviceList, cmd = m.DeviceList.Update(msg)
	return m, cmd
}

// handleKey routes key presses. Dialogs take all input while open and the
// list takes all input while its filter is being edited.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	if m.Dialog != nil {
		return m, m.Dialog.Update(msg)
	}

	if m.DeviceList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.DeviceList, cmd = m.DeviceList.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m.quit()

	case "r":
		m.Err = nil
		if !m.adapterReady {
			return m, enableCmd(m.session)
		}
		return m, restartCmd(m.ctx, m.session)

	case "s":
		return m, stopCmd(m.session)

	case "ctrl+z":
		return m, tea.Sequence(pauseCmd(m.session), tea.Suspend)
	}

	var cmd tea.Cmd
	m.DeviceList, cmd = m.DeviceList.Update(msg)
	return m, cmd
}

// handleAdapterResult reacts to Enable: start scanning, ask to power the
// adapter on, or report that Bluetooth is not supported.
func (m Model) handleAdapterResult(err error) (tea.Model, tea.Cmd) {
	switch {
	case err == nil:
		m.adapterReady = true
		return m, restartCmd(m.ctx, m.session)

	case errors.Is(err, scanner.ErrAdapterDisabled):
		m.Dialog = newDialog(DialogConfirm, purposeEnablePrompt,
			m.tr.T(i18n.DialogQuestion), m.tr.T(i18n.MsgEnablePrompt),
			m.tr.T(i18n.KeyYes), m.tr.T(i18n.KeyNo))
		return m, nil

	case errors.Is(err, scanner.ErrAdapterUnavailable):
		logging.Error("Bluetooth not available", zap.Error(err))
		m.Dialog = newDialog(DialogError, purposeNotSupported,
			m.tr.T(i18n.DialogError), m.tr.T(i18n.MsgBluetoothNotSupported), m.tr.T(i18n.KeyOK))
		return m, nil

	default:
		m.Err = err
		return m, nil
	}
}

func (m Model) handleDialogClosed(msg dialogClosedMsg) (tea.Model, tea.Cmd) {
	m.Dialog = nil

	switch msg.purpose {
	case purposeNotSupported:
		return m.quit()

	case purposeEnablePrompt:
		if msg.confirmed {
			return m, powerOnCmd(m.session)
		}
		m.Dialog = newDialog(DialogWarning, purposeBluetoothOff,
			m.tr.T(i18n.DialogWarning), m.tr.T(i18n.MsgBluetoothOff), m.tr.T(i18n.KeyOK))
	}
	return m, nil
}

func (m *Model) applyEvent(ev scanner.Event) {
	switch ev.Kind {
	case scanner.EventStarted:
		m.Scanning = true
		m.Stopped = false
		m.ScanStartTime = ev.At
		m.Err = nil
	case scanner.EventStopped:
		m.Scanning = false
		m.Stopped = true
	case scanner.EventFailed:
		m.Scanning = false
		m.Stopped = false
		m.Err = ev.Err
	default:
		m.Scanning = false
		m.Stopped = false
	}
}

// refreshItems rebuilds the list from a registry snapshot
func (m *Model) refreshItems() tea.Cmd {
	devs := registry.Sorted(m.session.Registry().Snapshot(), m.order)
	items := make([]list.Item, len(devs))
	for i, d := range devs {
		item := deviceItem{device: d}
		if m.cfg != nil {
			item.alias = m.cfg.Nickname(d.Address)
		}
		items[i] = item
	}
	return m.DeviceList.SetItems(items)
}

// quit stops scanning, stores last-seen data for known devices and exits
func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.Quitting {
		return m, tea.Quit
	}
	m.Quitting = true
	m.unsubscribe()
	m.session.Stop()

	if m.cfg != nil {
		changed := false
		for _, d := range m.session.Registry().Snapshot() {
			if m.cfg.RecordSeen(d) {
				changed = true
			}
		}
		if changed {
			if err := m.cfg.Save(); err != nil {
				logging.Warn("Failed to save config", zap.Error(err))
			}
		}
	}
	return m, tea.Quit
}

// View renders the screen
func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	title := m.tr.T(i18n.AppTitle)
	if m.Dialog != nil {
		helpText := m.Help.View(newDialogKeyMap(m.tr, m.Dialog.Kind))
		return RenderModal(m.Dialog.View()+"\n\n"+helpText, m.Width, m.Height)
	}

	var content string
	if m.Scanning && len(m.DeviceList.Items()) == 0 {
		content = m.renderScanning()
	} else {
		content = m.renderResults()
	}

	return RenderApplicationContainer(title, content, m.Help.View(m.Keys), m.Width, m.Height)
}

// renderScanning renders the centered progress display shown before the
// first device arrives
func (m Model) renderScanning() string {
	width := m.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	elapsed := int(time.Since(m.ScanStartTime).Seconds())

	parts := []string{
		"",
		TitleStyle.Render(m.Spinner.View() + " " + m.tr.T(i18n.MsgScanning)),
	}
	if timeout := m.session.Timeout(); timeout > 0 {
		percent := time.Since(m.ScanStartTime).Seconds() / timeout.Seconds()
		if percent > 1 {
			percent = 1
		}
		parts = append(parts, m.ProgressBar.ViewAs(percent), "")
	}
	parts = append(parts, SubtitleStyle.Render(m.tr.T(i18n.MsgElapsed, elapsed)), "")

	content := lipgloss.JoinVertical(lipgloss.Center, parts...)
	return lipgloss.Place(width-4, 0, lipgloss.Center, lipgloss.Top, content)
}

// renderResults renders the status line and the device list, or the
// empty/error message
func (m Model) renderResults() string {
	var b strings.Builder
	b.WriteString("\n")

	count := len(m.DeviceList.Items())
	switch {
	case m.Scanning:
		b.WriteString(StatusLineStyle.Render(fmt.Sprintf("%s %s  %s",
			m.Spinner.View(), m.tr.T(i18n.MsgScanning), m.tr.T(i18n.MsgFound, count))))
	case m.Err != nil:
		b.WriteString(ErrorTextStyle.Render("✗ " + m.tr.T(i18n.MsgScanFailed, m.Err)))
	case m.Stopped:
		b.WriteString(StatusLineStyle.Render(m.tr.T(i18n.MsgScanStopped) + "  " + m.tr.T(i18n.MsgFound, count)))
	case count > 0:
		b.WriteString(StatusLineStyle.Render(m.tr.T(i18n.MsgFound, count)))
	}
	b.WriteString("\n")

	if count == 0 {
		if m.Err == nil {
			b.WriteString("\n")
			b.WriteString(EmptyStyle.Render("⚠ " + m.tr.T(i18n.MsgNoDevices)))
			b.WriteString("\n")
		}
		return b.String()
	}

	b.WriteString(m.DeviceList.View())
	return b.String()
}
