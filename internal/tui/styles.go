package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/healthyair/btscan/internal/urls"
	"github.com/healthyair/btscan/internal/version"
)

// Layout constants for responsive terminal width
const (
	MinTerminalWidth = 60
	DefaultHeight    = 24
	ModalWidth       = 56
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7D56F4") // Purple
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	ErrorColor     = lipgloss.Color("#FF5555") // Red

	TextColor   = lipgloss.Color("#FFFFFF") // White
	SubtleColor = lipgloss.Color("#626262") // Gray
	BorderColor = lipgloss.Color("#7D56F4") // Purple (same as primary)
)

// Common styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			Padding(1, 0)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	// StatusLineStyle is for the "Searching... Found 3" line above the list
	StatusLineStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			PaddingLeft(2)

	LabelStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	DeviceNameStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	UnnamedStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	AddressStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	AliasStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Italic(true)

	// SelectedMarkerStyle is the "→" in front of the highlighted row
	SelectedMarkerStyle = lipgloss.NewStyle().
				Foreground(SecondaryColor).
				Bold(true)

	EmptyStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true).
			PaddingLeft(2)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true).
			PaddingLeft(2)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Padding(0, 2)

	ActiveButtonStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Background(PrimaryColor).
				Bold(true).
				Padding(0, 2)
)

// DialogBoxStyle returns the bordered style of a dialog in the given color
func DialogBoxStyle(color lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(1, 2).
		Width(ModalWidth)
}

// BuildHeaderContent creates header content with the app title and project URL
func BuildHeaderContent(title string) string {
	left := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render(title + " v" + version.Version)

	right := lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render(urls.Project)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

// RenderApplicationContainer wraps a screen in the full-terminal frame:
// header, content and a footer with help text.
func RenderApplicationContainer(title, content, footerText string, terminalWidth, terminalHeight int) string {
	if terminalWidth < MinTerminalWidth {
		terminalWidth = MinTerminalWidth
	}
	if terminalHeight <= 0 {
		terminalHeight = DefaultHeight
	}

	styledHeader := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4).
		Padding(0, 1).
		Render(BuildHeaderContent(title))

	styledFooter := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4).
		Padding(0, 1).
		Render(lipgloss.NewStyle().Foreground(SubtleColor).Render(footerText))

	styledContent := lipgloss.NewStyle().
		Width(terminalWidth - 4).
		Render(content)

	inner := lipgloss.JoinVertical(lipgloss.Left, styledHeader, styledContent, styledFooter)

	bordered := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(terminalWidth - 2).
		Height(terminalHeight - 2).
		AlignVertical(lipgloss.Top).
		Render(inner)

	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Left, lipgloss.Top, bordered)
}

// RenderModal centers a dialog on a dimmed background.
func RenderModal(modalContent string, terminalWidth, terminalHeight int) string {
	if terminalWidth < MinTerminalWidth {
		terminalWidth = MinTerminalWidth
	}
	if terminalHeight <= 0 {
		terminalHeight = DefaultHeight
	}
	return lipgloss.Place(
		terminalWidth,
		terminalHeight,
		lipgloss.Center,
		lipgloss.Center,
		modalContent,
		lipgloss.WithWhitespaceChars("░"),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("240")),
	)
}
