// Package tui provides the interactive Bubble Tea dashboard for ledgercast.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/ledgercast/internal/cli"
	"github.com/theirongolddev/ledgercast/internal/config"
	"github.com/theirongolddev/ledgercast/internal/engine"
	"github.com/theirongolddev/ledgercast/internal/model"
	"github.com/theirongolddev/ledgercast/internal/pipeline"
	"github.com/theirongolddev/ledgercast/internal/store"
	"github.com/theirongolddev/ledgercast/internal/tui/components"
	"github.com/theirongolddev/ledgercast/internal/tui/theme"
)

// Options selects the data and window the dashboard shows.
type Options struct {
	DataDir       string
	Load          pipeline.LoadOptions
	UseCache      bool
	AsOf          time.Time
	HistoryMonths int
	MonthsAhead   int
	Category      string
	Currency      string
}

// DataLoadedMsg is sent when the initial load finishes.
type DataLoadedMsg struct {
	Result   *pipeline.LoadResult
	Err      error
	LoadTime time.Duration
}

// ProgressMsg reports file parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background reload completes.
type RefreshDataMsg struct {
	Result   *pipeline.LoadResult
	Err      error
	LoadTime time.Duration
}

// App is the root Bubble Tea model.
type App struct {
	opts Options

	// Data
	result   *pipeline.LoadResult
	input    engine.Input
	report   *model.Report
	catSpend map[string][]float64 // per-category monthly spend, for sparklines
	err      error
	loaded   bool
	loadTime time.Duration

	refreshing bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	scroll    int

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *setupValues // shared with the form's field bindings
	needSetup bool

	// Loading: channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 160
	minContentHeight = 5
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	if opts.HistoryMonths < 1 {
		opts.HistoryMonths = 12
	}
	if opts.Currency == "" {
		opts.Currency = "$"
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		opts:      opts,
		needSetup: !config.Exists(),
		spinner:   sp,
		loadSub:   make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.opts, a.loadSub),
		a.spinner.Tick,
	)
}

// recompute runs the engine over the loaded ledgers for the current window.
func (a *App) recompute() {
	a.scroll = 0
	if a.result == nil {
		a.report = nil
		return
	}

	txs := pipeline.Window(a.result.Transactions, a.opts.AsOf, a.opts.HistoryMonths)
	if a.opts.Category != "" {
		txs = pipeline.FilterExpensesByCategory(txs, a.opts.Category)
	}
	a.input = engine.Input{
		Transactions: txs,
		Budgets:      a.result.Budgets,
		Goals:        a.result.Goals,
		AsOf:         a.opts.AsOf,
		MonthsAhead:  a.opts.MonthsAhead,
	}

	report, err := engine.Run(a.input)
	if err != nil {
		a.err = err
		a.report = nil
		return
	}
	a.err = nil
	a.report = report

	a.catSpend = make(map[string][]float64)
	if buckets, err := pipeline.Aggregate(txs); err == nil {
		for _, s := range buckets.CategorySeries() {
			a.catSpend[s.Category] = s.Values
		}
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.scrollBy(-1)
		case tea.MouseButtonWheelDown:
			a.scrollBy(1)
		case tea.MouseButtonLeft:
			if msg.Action == tea.MouseActionPress && msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.switchTab(tab)
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKeys(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.result = msg.Result
		a.err = msg.Err
		if msg.Err == nil {
			a.recompute()
		}

		if a.needSetup {
			vals := defaultSetupValues(a.opts)
			a.setupVals = &vals
			found := 0
			if a.result != nil {
				found = len(a.result.Transactions)
			}
			a.setupForm = newSetupForm(a.setupVals, found)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case spinner.TickMsg:
		if !a.loaded || a.refreshing {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case RefreshDataMsg:
		a.refreshing = false
		a.loadTime = msg.LoadTime
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		a.result = msg.Result
		a.recompute()
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if a.refreshing {
			return a, nil
		}
		a.refreshing = true
		return a, tea.Batch(refreshDataCmd(a.opts), a.spinner.Tick)
	case "left", "shift+tab":
		a.switchTab((a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs))
	case "right", "tab":
		a.switchTab((a.activeTab + 1) % len(components.Tabs))
	case "j", "down":
		a.scrollBy(1)
	case "k", "up":
		a.scrollBy(-1)
	default:
		if len(msg.Runes) == 1 {
			if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
				a.switchTab(idx)
			}
		}
	}
	return a, nil
}

func (a *App) switchTab(idx int) {
	if idx < 0 || idx >= len(components.Tabs) || idx == a.activeTab {
		return
	}
	a.activeTab = idx
	a.scroll = 0
}

func (a *App) scrollBy(n int) {
	a.scroll = max(a.scroll+n, 0)
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		cfg, err := a.setupVals.apply()
		if err == nil {
			err = config.Save(cfg)
		}
		if err != nil {
			a.err = fmt.Errorf("saving config: %w", err)
		}
		a.opts.Currency = cfg.Appearance.Currency
		a.opts.MonthsAhead = cfg.General.MonthsAhead
		theme.SetActive(cfg.Appearance.Theme)
		a.needSetup = false
		a.setupForm = nil

		// A new data directory means a fresh load.
		if dir := config.GetDataDir(cfg); dir != a.opts.DataDir {
			a.opts.DataDir = dir
			a.refreshing = true
			return a, refreshDataCmd(a.opts)
		}
		a.recompute()
		return a, nil

	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) money(v float64) string {
	return cli.FormatMoney(v, a.opts.Currency)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  ledgercast needs at least %d columns.\n",
		a.width, minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ ledgercast"))
	b.WriteString(mutedStyle.Render(" · forecasts & insights"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := min(max(a.width-30, 20), 40)
		b.WriteString(a.spinner.View())
		b.WriteString(mutedStyle.Render(" Parsing ledgers\n\n"))
		b.WriteString(components.ProgressBar(float64(a.progress)/float64(a.progressMax), barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(mutedStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progressMax))))
	} else {
		b.WriteString(a.spinner.View())
		b.WriteString(mutedStyle.Render(" Scanning " + a.opts.DataDir))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	bindings := []struct{ key, desc string }{
		{"o c i g", "Jump to tab"},
		{"← → tab", "Previous / Next tab"},
		{"j k", "Scroll"},
		{"r", "Reload ledgers"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for _, bind := range bindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
			descStyle.Render(bind.desc))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	pill := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pillAccent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	filter := pill.Render(" as of ") + pillAccent.Render(a.opts.AsOf.Format("Jan 2, 2006")) +
		pill.Render(" │ ") + pillAccent.Render(cli.FormatMonths(a.opts.HistoryMonths))
	if a.opts.Category != "" {
		filter += pill.Render(" │ ") + pillAccent.Render(a.opts.Category)
	}
	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		lipgloss.NewStyle().Background(t.Surface).Width(w).Render(filter)

	info := fmt.Sprintf("loaded in %.1fs", a.loadTime.Seconds())
	if a.result != nil {
		info = fmt.Sprintf("%s transactions · %s", cli.FormatNumber(int64(len(a.input.Transactions))), info)
	}
	statusBar := components.RenderStatusBar(w, info, a.refreshing)

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch {
	case a.err != nil:
		content = a.renderError(cw)
	case a.report == nil || len(a.input.Transactions) == 0:
		content = a.renderEmpty(cw)
	default:
		switch a.activeTab {
		case 0:
			content = a.renderOverviewTab(cw)
		case 1:
			content = a.renderCategoriesTab(cw)
		case 2:
			content = a.renderInsightsTab(cw)
		case 3:
			content = a.renderGoalsTab(cw)
		}
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderError(cw int) string {
	t := theme.Active
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Width(components.CardInnerWidth(cw))
	hint := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).
		Render("Fix the file and press r to reload, or q to quit.")
	return components.ContentCard("Could not load ledgers", errStyle.Render(a.err.Error())+"\n\n"+hint, cw)
}

func (a App) renderEmpty(cw int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	body := muted.Render("No transactions in the selected window.") + "\n" +
		muted.Render("Drop CSV, JSONL or CAMT.053 exports into "+a.opts.DataDir+" and press r.")
	return components.ContentCard("Nothing to show yet", body, cw)
}

// ─── Helpers ────────────────────────────────────────────────────

// currentMonth returns the history bucket for the as-of month, if any.
func (a App) currentMonth() (model.MonthBucket, bool) {
	key := pipeline.MonthKey(a.opts.AsOf)
	for _, m := range a.report.History {
		if m.MonthKey == key {
			return m, true
		}
	}
	return model.MonthBucket{Income: decimal.Zero, Expenses: decimal.Zero}, false
}

// loadLedgers prefers the SQLite cache and falls back to a full parse.
func loadLedgers(opts Options, progressFn pipeline.ProgressFunc) (*pipeline.LoadResult, error) {
	if opts.UseCache {
		if cache, err := store.Open(pipeline.CachePath()); err == nil {
			cr, loadErr := pipeline.LoadWithCache(opts.DataDir, cache, opts.Load, progressFn)
			_ = cache.Close()
			if loadErr == nil {
				return &cr.LoadResult, nil
			}
		}
	}
	return pipeline.Load(opts.DataDir, opts.Load, progressFn)
}

// loadDataCmd starts the data loading pipeline in a background goroutine.
// It streams ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(opts Options, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking send so workers aren't stalled; the next update catches up.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			result, err := loadLedgers(opts, progressFn)
			sub <- DataLoadedMsg{Result: result, Err: err, LoadTime: time.Since(start)}
		}()

		// Block until the first message (either ProgressMsg or DataLoadedMsg)
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// refreshDataCmd reloads ledgers in the background (no progress UI).
func refreshDataCmd(opts Options) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		result, err := loadLedgers(opts, nil)
		return RefreshDataMsg{Result: result, Err: err, LoadTime: time.Since(start)}
	}
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes use the same widths as RenderTabBar, with one separator column.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1
	}
	return -1
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// scrollLines drops the first offset lines, clamped so at least one remains.
func scrollLines(s string, offset int) string {
	if offset <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	offset = min(offset, len(lines)-1)
	return strings.Join(lines[offset:], "\n")
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line, lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}
