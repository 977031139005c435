package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/theirongolddev/ledgercast/internal/categorize"
	"github.com/theirongolddev/ledgercast/internal/store"
)

func writeFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func testOptions() LoadOptions {
	return LoadOptions{UserID: "u1", Keywords: categorize.DefaultTable()}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.csv",
		"id,date,kind,category,amount",
		"x2,2026-09-02,expense,Food,10",
	)
	writeFile(t, dir, "a.jsonl",
		`{"id":"x1","date":"2026-09-01","kind":"income","amount":"100"}`,
		`{"id":"x3","date":"2026-09-02","kind":"expense","category":"Food","amount":"5"}`,
	)
	writeFile(t, dir, "plan.yaml",
		"budgets:",
		"  - {category: Food, planned: 200, month: 9, year: 2026}",
	)

	var calls atomic.Int64
	result, err := Load(dir, testOptions(), func(current, total int) {
		calls.Add(1)
		if total != 2 {
			t.Errorf("total = %d, want 2", total)
		}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalFiles != 2 || result.ParsedFiles != 2 {
		t.Errorf("files = %d/%d, want 2/2", result.ParsedFiles, result.TotalFiles)
	}
	if calls.Load() != 2 {
		t.Errorf("progress calls = %d, want 2", calls.Load())
	}
	if len(result.Budgets) != 1 || result.PlanFile != "plan.yaml" {
		t.Errorf("plan not loaded: %+v", result.Budgets)
	}

	var ids []string
	for _, r := range result.Transactions {
		ids = append(ids, r.ID)
	}
	if got := strings.Join(ids, ","); got != "x1,x2,x3" {
		t.Errorf("order = %s, want x1,x2,x3", got)
	}
}

func TestLoad_FailsOnMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.csv", "date,kind,amount", "2026-09-01,expense,abc")

	if _, err := Load(dir, testOptions(), nil); err == nil {
		t.Fatal("expected error for malformed amount")
	}
}

func TestLoadWithCache(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "id,date,kind,amount", "a1,2026-09-01,expense,7")
	removed := writeFile(t, dir, "b.csv", "id,date,kind,amount", "b1,2026-09-02,income,9")

	cache, err := store.Open(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = cache.Close() }()

	first, err := LoadWithCache(dir, cache, testOptions(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if first.Reparsed != 2 || first.CacheHits != 0 || len(first.Transactions) != 2 {
		t.Errorf("first load = reparsed %d, hits %d, records %d", first.Reparsed, first.CacheHits, len(first.Transactions))
	}

	if err := os.Remove(removed); err != nil {
		t.Fatal(err)
	}

	second, err := LoadWithCache(dir, cache, testOptions(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if second.CacheHits != 1 || second.Reparsed != 0 {
		t.Errorf("second load = hits %d, reparsed %d; want 1, 0", second.CacheHits, second.Reparsed)
	}
	if len(second.Transactions) != 1 || second.Transactions[0].ID != "a1" {
		t.Errorf("second load records = %+v", second.Transactions)
	}
	if n, _ := cache.RecordCount(); n != 1 {
		t.Errorf("cache records = %d, want 1 after prune", n)
	}
}

func TestLoadWithCache_ParseOptionsChange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "stmt.xml",
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<Document xmlns="urn:iso:std:iso:20022:tech:xsd:camt.053.001.02"><BkToCstmrStmt><Stmt>`,
		`<Ntry><NtryRef>r1</NtryRef><Amt Ccy="EUR">18.40</Amt><CdtDbtInd>DBIT</CdtDbtInd>`,
		`<BookgDt><Dt>2026-09-05</Dt></BookgDt><AddtlNtryInf>ALDI store 12</AddtlNtryInf></Ntry>`,
		`</Stmt></BkToCstmrStmt></Document>`,
	)

	cache, err := store.Open(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = cache.Close() }()

	first, err := LoadWithCache(dir, cache, testOptions(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Transactions) != 1 || first.Transactions[0].Category != "Groceries" {
		t.Fatalf("first load = %+v", first.Transactions)
	}

	table, err := categorize.ParseTable([]byte("categories:\n  - category: Discounter\n    keywords: [aldi]\n"))
	if err != nil {
		t.Fatal(err)
	}
	changed := LoadOptions{UserID: "u2", Keywords: table}

	cached, err := LoadWithCache(dir, cache, changed, nil)
	if err != nil {
		t.Fatal(err)
	}
	full, err := Load(dir, changed, nil)
	if err != nil {
		t.Fatal(err)
	}

	if cached.CacheHits != 0 || cached.Reparsed != 1 {
		t.Errorf("after options change: hits %d, reparsed %d; want 0, 1", cached.CacheHits, cached.Reparsed)
	}
	if len(cached.Transactions) != 1 || len(full.Transactions) != 1 {
		t.Fatalf("records: cached %d, full %d", len(cached.Transactions), len(full.Transactions))
	}
	got, want := cached.Transactions[0], full.Transactions[0]
	if got.UserID != want.UserID || got.Category != want.Category {
		t.Errorf("cached = %s/%s, full parse = %s/%s", got.UserID, got.Category, want.UserID, want.Category)
	}
	if got.UserID != "u2" || got.Category != "Discounter" {
		t.Errorf("cached = %s/%s, want u2/Discounter", got.UserID, got.Category)
	}

	again, err := LoadWithCache(dir, cache, changed, nil)
	if err != nil {
		t.Fatal(err)
	}
	if again.CacheHits != 1 {
		t.Errorf("unchanged options: hits %d, want 1", again.CacheHits)
	}
}
