package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ledgercast/internal/tui/theme"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a one-line unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		idx = min(max(idx, 0), len(sparkBlocks)-1)
		buf.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// MonthBars renders one column per month, height rows tall. Columns at index
// forecastFrom and later are drawn in the forecast color so history and
// projection read as one series. Pass len(values) to draw history only.
func MonthBars(values []float64, labels []string, forecastFrom, width, height int) string {
	n := len(values)
	if n == 0 {
		return ""
	}
	t := theme.Active
	if width < 20 || height < 3 {
		return Sparkline(values, t.Expense)
	}

	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	axisW := len(compactAmount(peak)) + 1
	colW := min(max((width-axisW-1)/n-1, 1), 7)

	bg := lipgloss.NewStyle().Background(t.Surface)
	axis := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	hist := lipgloss.NewStyle().Foreground(t.Expense).Background(t.Surface)
	proj := lipgloss.NewStyle().Foreground(t.Forecast).Background(t.Surface)

	var b strings.Builder
	for row := height; row >= 1; row-- {
		label := ""
		if row == height {
			label = compactAmount(peak)
		}
		b.WriteString(axis.Render(fmt.Sprintf("%*s│", axisW, label)))

		lo := peak * float64(row-1) / float64(height)
		hi := peak * float64(row) / float64(height)
		for i, v := range values {
			style := hist
			if i >= forecastFrom {
				style = proj
			}
			var cell string
			switch {
			case v >= hi:
				cell = strings.Repeat("█", colW)
			case v > lo:
				frac := (v - lo) / (hi - lo)
				idx := min(max(int(frac*float64(len(sparkBlocks))), 0), len(sparkBlocks)-1)
				cell = strings.Repeat(string(sparkBlocks[idx]), colW)
			default:
				cell = strings.Repeat(" ", colW)
			}
			b.WriteString(style.Render(cell))
			b.WriteString(bg.Render(" "))
		}
		b.WriteString("\n")
	}

	b.WriteString(axis.Render(fmt.Sprintf("%*s└%s", axisW, "0", strings.Repeat("─", n*(colW+1)))))

	if len(labels) == n {
		b.WriteString("\n")
		b.WriteString(bg.Render(strings.Repeat(" ", axisW+1)))
		for _, l := range labels {
			b.WriteString(axis.Render(fmt.Sprintf("%-*s", colW+1, truncate(l, colW))))
		}
	}
	return b.String()
}

func compactAmount(v float64) string {
	switch {
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.1fk", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
