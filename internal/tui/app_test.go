package tui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/ledgercast/internal/model"
	"github.com/theirongolddev/ledgercast/internal/pipeline"
	"github.com/theirongolddev/ledgercast/internal/tui/components"
)

var testAsOf = time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := range components.Tabs {
		a := App{activeTab: active}
		pos := 0

		for i, tab := range components.Tabs {
			w := components.TabVisualWidth(tab, i == active)
			x := pos + w/2 // midpoint inside this tab
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w + 1 // separator
		}
		if got := a.tabAtX(pos + 5); got != -1 {
			t.Errorf("active=%d x past last tab -> %d, want -1", active, got)
		}
	}
}

func TestTabBarWidthMatchesHitboxes(t *testing.T) {
	for active := range components.Tabs {
		want := len(components.Tabs) - 1 // separators
		for i, tab := range components.Tabs {
			want += components.TabVisualWidth(tab, i == active)
		}
		row := components.RenderTabBar(active, 0)
		if got := lipgloss.Width(row); got != want {
			t.Errorf("active=%d: rendered width %d, want %d", active, got, want)
		}
	}
}

func testLoadResult() *pipeline.LoadResult {
	var txs []model.TransactionRecord
	for m := 1; m <= 10; m++ {
		day := 5
		if m == 10 {
			day = 12
		}
		date := time.Date(2026, time.Month(m), day, 0, 0, 0, 0, time.UTC)
		txs = append(txs,
			model.TransactionRecord{
				ID: fmt.Sprintf("rent-%d", m), Kind: model.KindExpense, Category: "Housing",
				Amount: decimal.NewFromInt(1200), Date: date,
			},
			model.TransactionRecord{
				ID: fmt.Sprintf("food-%d", m), Kind: model.KindExpense, Category: "Groceries",
				Amount: decimal.NewFromInt(int64(300 + 10*m)), Date: date,
			},
			model.TransactionRecord{
				ID: fmt.Sprintf("pay-%d", m), Kind: model.KindIncome,
				Amount: decimal.NewFromInt(3000), Date: date,
			},
		)
	}
	return &pipeline.LoadResult{
		Transactions: txs,
		Budgets: []model.BudgetRecord{
			{Category: "groceries", Planned: decimal.NewFromInt(400), Month: time.October, Year: 2026, IsActive: true},
		},
		Goals: []model.GoalRecord{
			{Name: "Emergency fund", Target: decimal.NewFromInt(10000), Current: decimal.NewFromInt(2500)},
		},
	}
}

func loadedApp(t *testing.T) App {
	t.Helper()
	a := App{
		opts:    Options{AsOf: testAsOf, HistoryMonths: 12, MonthsAhead: 3, Currency: "$"},
		width:   120,
		height:  40,
		loadSub: make(chan tea.Msg, 1),
	}
	m, _ := a.Update(DataLoadedMsg{Result: testLoadResult(), LoadTime: time.Second})
	return m.(App)
}

func TestDataLoadedRunsEngine(t *testing.T) {
	a := loadedApp(t)
	if !a.loaded {
		t.Fatal("app not marked loaded")
	}
	if a.report == nil {
		t.Fatalf("report is nil, err=%v", a.err)
	}
	if got := len(a.report.History); got != 10 {
		t.Errorf("history months = %d, want 10", got)
	}
	if len(a.report.MonthlyPredictions) != 3 {
		t.Fatalf("predictions = %d, want 3", len(a.report.MonthlyPredictions))
	}
	if got := a.report.MonthlyPredictions[0].MonthLabel; got != "Nov 2026" {
		t.Errorf("first forecast label = %q, want Nov 2026", got)
	}
	if len(a.catSpend["Groceries"]) != 10 {
		t.Errorf("groceries series = %v", a.catSpend["Groceries"])
	}
}

func TestCategoryOptionNarrowsExpenses(t *testing.T) {
	a := App{opts: Options{AsOf: testAsOf, HistoryMonths: 12, MonthsAhead: 3, Category: "groc"}}
	a.result = testLoadResult()
	a.recompute()

	var expenses, income int
	for _, tx := range a.input.Transactions {
		switch tx.Kind {
		case model.KindIncome:
			income++
		case model.KindExpense:
			expenses++
			if tx.Category != "Groceries" {
				t.Fatalf("unexpected expense %s in filtered input", tx.ID)
			}
		}
	}
	if expenses != 10 || income != 10 {
		t.Errorf("filtered input = %d expenses, %d income; want 10, 10", expenses, income)
	}
	if a.report == nil || len(a.report.IncomePredictions) == 0 || a.report.IncomePredictions[0].PredictedAmount <= 0 {
		t.Error("income forecast lost under a category filter")
	}
}

func TestKeyNavigation(t *testing.T) {
	a := loadedApp(t)

	press := func(a App, k tea.KeyMsg) App {
		m, _ := a.Update(k)
		return m.(App)
	}
	runes := func(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

	a = press(a, runes('g'))
	if a.activeTab != 3 {
		t.Fatalf("after g: tab %d, want 3", a.activeTab)
	}
	a = press(a, tea.KeyMsg{Type: tea.KeyRight})
	if a.activeTab != 0 {
		t.Fatalf("right from last tab: tab %d, want 0", a.activeTab)
	}
	a = press(a, tea.KeyMsg{Type: tea.KeyLeft})
	if a.activeTab != 3 {
		t.Fatalf("left from first tab: tab %d, want 3", a.activeTab)
	}

	a = press(a, runes('j'))
	a = press(a, runes('j'))
	if a.scroll != 2 {
		t.Fatalf("scroll = %d, want 2", a.scroll)
	}
	a = press(a, runes('i'))
	if a.activeTab != 2 || a.scroll != 0 {
		t.Fatalf("switching tab: tab %d scroll %d, want 2 and 0", a.activeTab, a.scroll)
	}
	a = press(a, runes('k'))
	if a.scroll != 0 {
		t.Errorf("scroll went negative: %d", a.scroll)
	}

	a = press(a, runes('?'))
	if !a.showHelp {
		t.Fatal("? did not open help")
	}
	a = press(a, runes('o'))
	if a.showHelp || a.activeTab != 2 {
		t.Errorf("key while help open should only close help; help=%v tab=%d", a.showHelp, a.activeTab)
	}
}

func TestMouseClickSwitchesTab(t *testing.T) {
	a := loadedApp(t)
	x := components.TabVisualWidth(components.Tabs[0], true) + 1 + 2
	m, _ := a.Update(tea.MouseMsg{X: x, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if got := m.(App).activeTab; got != 1 {
		t.Errorf("click at x=%d -> tab %d, want 1", x, got)
	}
}

func TestViewRendersEveryTab(t *testing.T) {
	a := loadedApp(t)
	for i, tab := range components.Tabs {
		a.activeTab = i
		out := a.View()
		if out == "" {
			t.Fatalf("%s: empty view", tab.Name)
		}
		if got := lipgloss.Height(out); got != a.height {
			t.Errorf("%s: view height %d, want %d", tab.Name, got, a.height)
		}
	}
}

func TestViewTooNarrow(t *testing.T) {
	a := loadedApp(t)
	a.width = 60
	if out := a.View(); !strings.Contains(out, "too narrow") {
		t.Errorf("narrow view = %q", out)
	}
}

func TestMonthSpendByCategory(t *testing.T) {
	a := loadedApp(t)
	spent := a.monthSpendByCategory()
	if got := spent["groceries"]; got != 400 {
		t.Errorf("groceries this month = %v, want 400", got)
	}
	if got := spent["housing"]; got != 1200 {
		t.Errorf("housing this month = %v, want 1200", got)
	}
}

func TestScrollLines(t *testing.T) {
	s := "a\nb\nc"
	if got := scrollLines(s, 1); got != "b\nc" {
		t.Errorf("scroll 1 = %q", got)
	}
	if got := scrollLines(s, 10); got != "c" {
		t.Errorf("scroll past end = %q, want last line", got)
	}
	if got := scrollLines(s, 0); got != s {
		t.Errorf("scroll 0 = %q", got)
	}
}

func TestMonthShort(t *testing.T) {
	if got := monthShort("2026-03"); got != "Mar" {
		t.Errorf("monthShort = %q", got)
	}
	if got := monthShort("bad"); got != "bad" {
		t.Errorf("monthShort(bad) = %q", got)
	}
}

func TestSetupValuesApplyRejectsHorizon(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	v := setupValues{dataDir: t.TempDir(), monthsAhead: 24, theme: "terminal", currency: "€"}
	if _, err := v.apply(); err == nil {
		t.Fatal("expected error for 24 months ahead")
	}
	v.monthsAhead = 6
	cfg, err := v.apply()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.General.MonthsAhead != 6 || cfg.Appearance.Currency != "€" || cfg.Appearance.Theme != "terminal" {
		t.Errorf("applied config = %+v", cfg)
	}
}
