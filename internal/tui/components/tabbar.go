package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ledgercast/internal/tui/theme"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name string
	Key  rune // shortcut; always the first letter of Name lowercased
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o'},
	{Name: "Categories", Key: 'c'},
	{Name: "Insights", Key: 'i'},
	{Name: "Goals", Key: 'g'},
}

// TabVisualWidth returns the rendered width of a tab, including its padding.
// Inactive tabs add brackets around the shortcut letter.
func TabVisualWidth(tab Tab, active bool) int {
	w := len(tab.Name) + 2
	if !active {
		w += 2
	}
	return w
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.SurfaceHover).
		Bold(true).
		Padding(0, 1)
	inactiveStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	sep := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		if i == activeIdx {
			parts[i] = activeStyle.Render(tab.Name)
			continue
		}
		parts[i] = inactiveStyle.Render(" ") +
			dimStyle.Render("[") + keyStyle.Render(tab.Name[:1]) + dimStyle.Render("]") +
			inactiveStyle.Render(tab.Name[1:]+" ")
	}

	row := strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(row)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
