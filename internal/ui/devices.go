package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/healthyair/btscan/internal/i18n"
	"github.com/healthyair/btscan/internal/registry"
)

const seenLayout = "2006-01-02 15:04"

// Format selects how a device list is printed
type Format string

const (
	FormatTable   Format = "table"
	FormatCompact Format = "compact"
	FormatJSON    Format = "json"
)

// ParseFormat validates a --format value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatCompact, FormatJSON:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format %q (use table, compact or json)", s)
	}
}

// Labels are the localized prefixes used in device rows
type Labels struct {
	Name    string
	Address string
	RSSI    string
	Alias   string
	Seen    string
	Unnamed string
	Empty   string
}

// LabelsFrom builds Labels from a translator
func LabelsFrom(tr *i18n.Translator) Labels {
	return Labels{
		Name:    tr.T(i18n.LabelName),
		Address: tr.T(i18n.LabelAddress),
		RSSI:    tr.T(i18n.LabelRSSI),
		Alias:   tr.T(i18n.LabelAlias),
		Seen:    tr.T(i18n.LabelSeen),
		Unnamed: tr.T(i18n.DeviceUnnamed),
		Empty:   tr.T(i18n.MsgNoDevices),
	}
}

// DeviceListOptions controls RenderDevices
type DeviceListOptions struct {
	Labels   Labels
	Format   Format
	ShowRSSI bool
	ShowSeen bool
	// Nickname returns the user alias for an address, "" for none
	Nickname func(address string) string
}

// RenderDevices renders devices in the given order. FormatJSON is not
// handled here.
func RenderDevices(devs []registry.Device, opts DeviceListOptions) string {
	if len(devs) == 0 {
		return DeviceUnnamedStyle.PaddingLeft(2).Render(opts.Labels.Empty)
	}

	sep := "\n\n"
	if opts.Format == FormatCompact {
		sep = "\n"
	}

	rows := make([]string, 0, len(devs))
	for i, d := range devs {
		if opts.Format == FormatCompact {
			rows = append(rows, renderCompactRow(i+1, d, opts))
		} else {
			rows = append(rows, renderTableRow(i+1, d, opts))
		}
	}
	return strings.Join(rows, sep)
}

func renderName(d registry.Device, labels Labels) string {
	if d.Name == "" {
		return DeviceUnnamedStyle.Render(d.DisplayName(labels.Unnamed))
	}
	return DeviceNameStyle.Render(d.Name)
}

func nickname(d registry.Device, opts DeviceListOptions) string {
	if opts.Nickname == nil {
		return ""
	}
	return opts.Nickname(d.Address)
}

// renderTableRow renders one labeled line per field, labels padded to a
// common width.
func renderTableRow(n int, d registry.Device, opts DeviceListOptions) string {
	l := opts.Labels
	type field struct{ label, value string }

	fields := []field{
		{l.Name, renderName(d, l)},
		{l.Address, DeviceAddressStyle.Render(d.Address)},
	}
	if opts.ShowRSSI && d.HasRSSI {
		fields = append(fields, field{l.RSSI, RSSIStyle(d.RSSI).Render(fmt.Sprintf("%d dBm", d.RSSI))})
	}
	if alias := nickname(d, opts); alias != "" {
		fields = append(fields, field{l.Alias, DeviceAliasStyle.Render(alias)})
	}
	if opts.ShowSeen && !d.LastSeen.IsZero() {
		fields = append(fields, field{l.Seen, DeviceLabelStyle.Render(d.LastSeen.Local().Format(seenLayout))})
	}

	labelWidth := 0
	for _, f := range fields {
		if w := lipgloss.Width(f.label); w > labelWidth {
			labelWidth = w
		}
	}

	lines := make([]string, 0, len(fields))
	for i, f := range fields {
		prefix := "     "
		if i == 0 {
			prefix = fmt.Sprintf("%3d. ", n)
		}
		pad := strings.Repeat(" ", labelWidth-lipgloss.Width(f.label))
		lines = append(lines, prefix+DeviceLabelStyle.Render(f.label)+pad+" "+f.value)
	}
	return strings.Join(lines, "\n")
}

// renderCompactRow renders "  1. Name: x  Address: y  Signal: -60 dBm"
func renderCompactRow(n int, d registry.Device, opts DeviceListOptions) string {
	l := opts.Labels
	parts := []string{
		DeviceLabelStyle.Render(l.Name) + " " + renderName(d, l),
		DeviceLabelStyle.Render(l.Address) + " " + DeviceAddressStyle.Render(d.Address),
	}
	if opts.ShowRSSI && d.HasRSSI {
		parts = append(parts, DeviceLabelStyle.Render(l.RSSI)+" "+RSSIStyle(d.RSSI).Render(fmt.Sprintf("%d dBm", d.RSSI)))
	}
	if alias := nickname(d, opts); alias != "" {
		parts = append(parts, DeviceLabelStyle.Render(l.Alias)+" "+DeviceAliasStyle.Render(alias))
	}
	return fmt.Sprintf("%3d. ", n) + strings.Join(parts, "  ")
}
