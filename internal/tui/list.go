package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/healthyair/btscan/internal/i18n"
	"github.com/healthyair/btscan/internal/registry"
)

// deviceItem wraps a registry Device for use with bubbles/list
type deviceItem struct {
	device registry.Device
	alias  string
}

// FilterValue matches on name, address and alias
func (d deviceItem) FilterValue() string {
	return strings.Join([]string{d.device.Name, d.device.Address, d.alias}, " ")
}

// rowLabels are the localized prefixes drawn in every row
type rowLabels struct {
	name    string
	address string
	rssi    string
	alias   string
	unnamed string
}

func newRowLabels(tr *i18n.Translator) rowLabels {
	return rowLabels{
		name:    tr.T(i18n.LabelName),
		address: tr.T(i18n.LabelAddress),
		rssi:    tr.T(i18n.LabelRSSI),
		alias:   tr.T(i18n.LabelAlias),
		unnamed: tr.T(i18n.DeviceUnnamed),
	}
}

// deviceDelegate renders each device as two lines:
//
//	Name:    Pixel Buds          (my buds)
//	Address: AA:BB:CC:DD:EE:FF   Signal: -61 dBm
type deviceDelegate struct {
	labels   rowLabels
	showRSSI bool
}

func (d deviceDelegate) Height() int { return 2 }

func (d deviceDelegate) Spacing() int { return 1 }

func (d deviceDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d deviceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(deviceItem)
	if !ok {
		return
	}
	dev := it.device

	marker := "  "
	if index == m.Index() {
		marker = SelectedMarkerStyle.Render("→ ")
	}

	labelWidth := lipgloss.Width(d.labels.name)
	if w := lipgloss.Width(d.labels.address); w > labelWidth {
		labelWidth = w
	}
	pad := func(label string) string {
		return LabelStyle.Render(label) + strings.Repeat(" ", labelWidth-lipgloss.Width(label)+1)
	}

	name := DeviceNameStyle.Render(dev.Name)
	if dev.Name == "" {
		name = UnnamedStyle.Render(d.labels.unnamed)
	}
	first := marker + pad(d.labels.name) + name
	if it.alias != "" {
		first += "  " + AliasStyle.Render("("+it.alias+")")
	}

	second := "  " + pad(d.labels.address) + AddressStyle.Render(dev.Address)
	if d.showRSSI && dev.HasRSSI {
		second += "   " + LabelStyle.Render(d.labels.rssi) + " " + rssiText(dev.RSSI)
	}

	_, _ = fmt.Fprint(w, first+"\n"+second)
}

func rssiText(rssi int) string {
	color := ErrorColor
	switch {
	case rssi >= -60:
		color = SecondaryColor
	case rssi >= -80:
		color = WarningColor
	}
	return lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf("%d dBm", rssi))
}

// listKeyMap defines key bindings while the device list is shown
type listKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Update  key.Binding
	Stop    key.Binding
	Filter  key.Binding
	Suspend key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k listKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Update, k.Stop, k.Filter, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k listKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Filter},
		{k.Update, k.Stop, k.Suspend, k.Quit},
	}
}

// dialogKeyMap defines key bindings while a dialog is open
type dialogKeyMap struct {
	Yes key.Binding
	No  key.Binding
	OK  key.Binding
}

func (k dialogKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Yes, k.No, k.OK}
}

func (k dialogKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Yes, k.No, k.OK}}
}

func newListKeyMap(tr *i18n.Translator) listKeyMap {
	return listKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "↑"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "↓"),
		),
		Update: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", tr.T(i18n.KeyUpdate)),
		),
		Stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", tr.T(i18n.KeyStop)),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", tr.T(i18n.KeyFilter)),
		),
		Suspend: key.NewBinding(
			key.WithKeys("ctrl+z"),
			key.WithHelp("ctrl+z", "suspend"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", tr.T(i18n.KeyQuit)),
		),
	}
}

func newDialogKeyMap(tr *i18n.Translator, kind DialogKind) dialogKeyMap {
	k := dialogKeyMap{
		Yes: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", tr.T(i18n.KeyYes))),
		No:  key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", tr.T(i18n.KeyNo))),
		OK:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", tr.T(i18n.KeyOK))),
	}
	if kind != DialogConfirm {
		k.Yes.SetEnabled(false)
		k.No.SetEnabled(false)
	}
	return k
}

func newDeviceList(tr *i18n.Translator, showRSSI bool) list.Model {
	l := list.New([]list.Item{}, deviceDelegate{labels: newRowLabels(tr), showRSSI: showRSSI}, 0, 0)
	l.Title = tr.T(i18n.ListTitle)
	l.Styles.Title = TitleStyle
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	return l
}
