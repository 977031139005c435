package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ledgercast/internal/model"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
	ColorPurple    = lipgloss.Color("#8B7EC8")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
// The first column is left-aligned, the rest right-aligned.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(60).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table with headers and rows.
// A row holding the single cell "---" draws a separator.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 {
		numCols = len(t.Rows[0])
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		grow := func(cells []string) {
			for i, c := range cells {
				if i < numCols && lipgloss.Width(c) > widths[i] {
					widths[i] = lipgloss.Width(c)
				}
			}
		}
		grow(t.Headers)
		for _, row := range t.Rows {
			grow(row)
		}
	}

	rule := func(left, mid, right string) string {
		parts := make([]string, numCols)
		for i, w := range widths {
			parts[i] = strings.Repeat("─", w+2)
		}
		return dimStyle.Render(left+strings.Join(parts, mid)+right) + "\n"
	}
	line := func(cells []string, style lipgloss.Style, alignRight bool) string {
		var b strings.Builder
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := strings.Repeat(" ", max(0, widths[i]-lipgloss.Width(cell)))
			if alignRight && i > 0 {
				b.WriteString(style.Render(" " + pad + cell + " "))
			} else {
				b.WriteString(style.Render(" " + cell + pad + " "))
			}
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
		return b.String()
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}

	b.WriteString(rule("╭", "┬", "╮"))
	if len(t.Headers) > 0 {
		b.WriteString(line(t.Headers, headerStyle, false))
		b.WriteString(rule("├", "┼", "┤"))
	}
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			b.WriteString(rule("├", "┼", "┤"))
			continue
		}
		b.WriteString(line(row, valueStyle, true))
	}
	b.WriteString(rule("╰", "┴", "╯"))

	return b.String()
}

// RenderSparkline generates a unicode block sparkline from a series of values.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		peak = max(peak, v)
	}
	if peak <= 0 {
		peak = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		idx = min(max(idx, 0), len(blocks)-1)
		b.WriteRune(blocks[idx])
	}
	return b.String()
}

// RenderHorizontalBar renders a labelled bar scaled against maxValue.
func RenderHorizontalBar(label string, value, maxValue float64, maxWidth int) string {
	barLen := 0
	if maxValue > 0 {
		barLen = min(max(int(value/maxValue*float64(maxWidth)), 0), maxWidth)
	}
	bar := lipgloss.NewStyle().Foreground(ColorBlue).Render(strings.Repeat("█", barLen))
	return fmt.Sprintf("  %-16s %s", label, bar)
}

// ImpactColor maps an insight impact to its display color.
func ImpactColor(impact model.Impact) lipgloss.Color {
	switch impact {
	case model.ImpactHigh:
		return ColorRed
	case model.ImpactMedium:
		return ColorOrange
	case model.ImpactPositive:
		return ColorGreen
	default:
		return ColorBlue
	}
}

// KindIcon is a one-glyph marker for an insight kind.
func KindIcon(kind model.InsightKind) string {
	switch kind {
	case model.InsightAlert:
		return "!"
	case model.InsightWarning:
		return "▲"
	case model.InsightPositive:
		return "✓"
	case model.InsightPattern:
		return "◆"
	default:
		return "i"
	}
}

// RenderInsight renders one insight as a two-line entry.
func RenderInsight(in model.Insight) string {
	accent := lipgloss.NewStyle().Foreground(ImpactColor(in.Impact)).Bold(true)
	return fmt.Sprintf("  %s %s %s\n    %s\n",
		accent.Render(KindIcon(in.Kind)),
		valueStyle.Bold(true).Render(in.Title),
		mutedStyle.Render("["+string(in.Impact)+"]"),
		mutedStyle.Render(in.Description),
	)
}
