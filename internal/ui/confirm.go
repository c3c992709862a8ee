package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Confirm prints a yes/no question and reads the answer from in.
// Only an answer starting with y or the localized yes word counts as yes.
// EOF or a read error counts as no.
func Confirm(in io.Reader, out io.Writer, question, yes, no string) bool {
	promptStyle := lipgloss.NewStyle().
		Foreground(WarningColor).
		Bold(true)
	_, _ = fmt.Fprint(out, promptStyle.Render(fmt.Sprintf("%s [%s/%s]: ", question, yes, no)))

	input, err := bufio.NewReader(in).ReadString('\n')
	_, _ = fmt.Fprintln(out)
	if err != nil && input == "" {
		return false
	}

	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return false
	}
	return input == strings.ToLower(yes) || input == "y" || input == "yes"
}
