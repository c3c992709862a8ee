package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DialogKind selects the look and buttons of a dialog
type DialogKind int

const (
	DialogError DialogKind = iota
	DialogWarning
	DialogConfirm
)

// dialogPurpose tells the app what to do when a dialog closes
type dialogPurpose int

const (
	purposeNotSupported dialogPurpose = iota
	purposeEnablePrompt
	purposeBluetoothOff
	purposeNotice
)

// dialogClosedMsg is sent when the user answers or dismisses a dialog
type dialogClosedMsg struct {
	purpose   dialogPurpose
	confirmed bool
}

// Dialog is a modal message box. Error and warning dialogs have a single
// button; confirm dialogs have yes and no.
type Dialog struct {
	Kind    DialogKind
	Title   string
	Message string

	purpose dialogPurpose
	buttons []string
	focus   int
}

func newDialog(kind DialogKind, purpose dialogPurpose, title, message string, buttons ...string) *Dialog {
	return &Dialog{
		Kind:    kind,
		Title:   title,
		Message: message,
		purpose: purpose,
		buttons: buttons,
	}
}

// Update handles a key press. It returns a command producing
// dialogClosedMsg once the dialog is answered.
func (d *Dialog) Update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "left", "right", "tab", "shift+tab", "h", "l":
		if len(d.buttons) > 1 {
			d.focus = (d.focus + 1) % len(d.buttons)
		}
		return nil

	case "y":
		if d.Kind == DialogConfirm {
			return d.close(true)
		}

	case "n":
		if d.Kind == DialogConfirm {
			return d.close(false)
		}

	case "esc":
		return d.close(false)

	case "enter", " ":
		return d.close(d.Kind == DialogConfirm && d.focus == 0)
	}
	return nil
}

func (d *Dialog) close(confirmed bool) tea.Cmd {
	msg := dialogClosedMsg{purpose: d.purpose, confirmed: confirmed}
	return func() tea.Msg { return msg }
}

// View renders the dialog box
func (d *Dialog) View() string {
	color := ErrorColor
	marker := "✗"
	switch d.Kind {
	case DialogWarning:
		color, marker = WarningColor, "⚠"
	case DialogConfirm:
		color, marker = PrimaryColor, "?"
	}

	title := lipgloss.NewStyle().Foreground(color).Bold(true).Render(marker + "  " + d.Title)
	body := lipgloss.NewStyle().Foreground(TextColor).Width(ModalWidth - 6).Render(d.Message)

	buttons := make([]string, len(d.buttons))
	for i, b := range d.buttons {
		if i == d.focus {
			buttons[i] = ActiveButtonStyle.Render(b)
		} else {
			buttons[i] = ButtonStyle.Render(b)
		}
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, buttons...)

	content := lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", row)
	return DialogBoxStyle(color).Render(content)
}
