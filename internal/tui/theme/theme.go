// Package theme defines color themes for the ledgercast TUI dashboard.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ledgercast/internal/model"
)

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name         string
	Label        string
	Background   lipgloss.Color // main app background
	Surface      lipgloss.Color // card and panel backgrounds
	SurfaceHover lipgloss.Color // active tab, selected row
	Border       lipgloss.Color
	BorderAccent lipgloss.Color
	TextDim      lipgloss.Color // hints, axis labels
	TextMuted    lipgloss.Color // labels, metadata
	TextPrimary  lipgloss.Color
	Accent       lipgloss.Color
	AccentBright lipgloss.Color
	Income       lipgloss.Color
	Expense      lipgloss.Color
	Forecast     lipgloss.Color
	Green        lipgloss.Color
	Orange       lipgloss.Color
	Red          lipgloss.Color
	Yellow       lipgloss.Color
	Cyan         lipgloss.Color
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme.
var FlexokiDark = Theme{
	Name:         "flexoki-dark",
	Label:        "Flexoki Dark",
	Background:   lipgloss.Color("#100F0F"),
	Surface:      lipgloss.Color("#1C1B1A"),
	SurfaceHover: lipgloss.Color("#282726"),
	Border:       lipgloss.Color("#403E3C"),
	BorderAccent: lipgloss.Color("#3AA99F"),
	TextDim:      lipgloss.Color("#575653"),
	TextMuted:    lipgloss.Color("#878580"),
	TextPrimary:  lipgloss.Color("#FFFCF0"),
	Accent:       lipgloss.Color("#3AA99F"),
	AccentBright: lipgloss.Color("#5BC8BE"),
	Income:       lipgloss.Color("#879A39"),
	Expense:      lipgloss.Color("#4385BE"),
	Forecast:     lipgloss.Color("#8B7EC8"),
	Green:        lipgloss.Color("#879A39"),
	Orange:       lipgloss.Color("#DA702C"),
	Red:          lipgloss.Color("#D14D41"),
	Yellow:       lipgloss.Color("#D0A215"),
	Cyan:         lipgloss.Color("#24837B"),
}

// CatppuccinMocha is a soft pastel theme.
var CatppuccinMocha = Theme{
	Name:         "catppuccin-mocha",
	Label:        "Catppuccin Mocha",
	Background:   lipgloss.Color("#1E1E2E"),
	Surface:      lipgloss.Color("#313244"),
	SurfaceHover: lipgloss.Color("#45475A"),
	Border:       lipgloss.Color("#585B70"),
	BorderAccent: lipgloss.Color("#89B4FA"),
	TextDim:      lipgloss.Color("#6C7086"),
	TextMuted:    lipgloss.Color("#A6ADC8"),
	TextPrimary:  lipgloss.Color("#CDD6F4"),
	Accent:       lipgloss.Color("#89B4FA"),
	AccentBright: lipgloss.Color("#B4D0FB"),
	Income:       lipgloss.Color("#A6E3A1"),
	Expense:      lipgloss.Color("#89B4FA"),
	Forecast:     lipgloss.Color("#CBA6F7"),
	Green:        lipgloss.Color("#A6E3A1"),
	Orange:       lipgloss.Color("#FAB387"),
	Red:          lipgloss.Color("#F38BA8"),
	Yellow:       lipgloss.Color("#F9E2AF"),
	Cyan:         lipgloss.Color("#94E2D5"),
}

// TokyoNight is a cool blue and purple theme.
var TokyoNight = Theme{
	Name:         "tokyo-night",
	Label:        "Tokyo Night",
	Background:   lipgloss.Color("#1A1B26"),
	Surface:      lipgloss.Color("#24283B"),
	SurfaceHover: lipgloss.Color("#343A52"),
	Border:       lipgloss.Color("#565F89"),
	BorderAccent: lipgloss.Color("#7AA2F7"),
	TextDim:      lipgloss.Color("#565F89"),
	TextMuted:    lipgloss.Color("#A9B1D6"),
	TextPrimary:  lipgloss.Color("#C0CAF5"),
	Accent:       lipgloss.Color("#7AA2F7"),
	AccentBright: lipgloss.Color("#A9C1FF"),
	Income:       lipgloss.Color("#9ECE6A"),
	Expense:      lipgloss.Color("#7AA2F7"),
	Forecast:     lipgloss.Color("#BB9AF7"),
	Green:        lipgloss.Color("#9ECE6A"),
	Orange:       lipgloss.Color("#FF9E64"),
	Red:          lipgloss.Color("#F7768E"),
	Yellow:       lipgloss.Color("#E0AF68"),
	Cyan:         lipgloss.Color("#7DCFFF"),
}

// Terminal uses ANSI 16 colors only.
var Terminal = Theme{
	Name:         "terminal",
	Label:        "Terminal (ANSI 16)",
	Background:   lipgloss.Color("0"),
	Surface:      lipgloss.Color("0"),
	SurfaceHover: lipgloss.Color("8"),
	Border:       lipgloss.Color("8"),
	BorderAccent: lipgloss.Color("6"),
	TextDim:      lipgloss.Color("8"),
	TextMuted:    lipgloss.Color("7"),
	TextPrimary:  lipgloss.Color("15"),
	Accent:       lipgloss.Color("6"),
	AccentBright: lipgloss.Color("14"),
	Income:       lipgloss.Color("2"),
	Expense:      lipgloss.Color("4"),
	Forecast:     lipgloss.Color("5"),
	Green:        lipgloss.Color("2"),
	Orange:       lipgloss.Color("3"),
	Red:          lipgloss.Color("1"),
	Yellow:       lipgloss.Color("3"),
	Cyan:         lipgloss.Color("6"),
}

// All available themes.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

// ImpactColor maps an insight impact to a theme color.
func (t Theme) ImpactColor(impact model.Impact) lipgloss.Color {
	switch impact {
	case model.ImpactHigh:
		return t.Red
	case model.ImpactMedium:
		return t.Orange
	case model.ImpactPositive:
		return t.Green
	default:
		return t.TextMuted
	}
}

// GoalColor maps a goal status to a theme color.
func (t Theme) GoalColor(status model.GoalStatus) lipgloss.Color {
	switch status {
	case model.GoalReached, model.GoalOnTrack:
		return t.Green
	case model.GoalBehind:
		return t.Orange
	case model.GoalUnreachable:
		return t.Red
	default:
		return t.TextMuted
	}
}
