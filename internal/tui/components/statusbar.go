package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ledgercast/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar. info is right-aligned.
func RenderStatusBar(width int, info string, refreshing bool) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	left := base.Render(" [?]help  [r]efresh  [q]uit")
	if refreshing {
		left += accent.Render("  refreshing...")
	}
	right := base.Render(info + " ")

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return left + base.Render(strings.Repeat(" ", gap)) + right
}
