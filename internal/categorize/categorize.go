// Package categorize suggests a category for a ledger entry from its description,
// its amount, and the user's own categorized history.
package categorize

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/ledgercast/internal/model"
)

// Fallback is suggested when nothing matches.
const Fallback = "Other"

//go:embed default_categories.yaml
var defaultTableYAML []byte

// Rule maps keywords to a category, optionally bounded by amount.
type Rule struct {
	Category  string   `yaml:"category"`
	Keywords  []string `yaml:"keywords"`
	MinAmount *float64 `yaml:"min_amount,omitempty"`
	MaxAmount *float64 `yaml:"max_amount,omitempty"`
}

// KeywordTable is an ordered list of rules. Earlier rules win ties.
type KeywordTable struct {
	Rules []Rule `yaml:"categories"`
}

// Suggestion is a proposed category with a confidence in [0,1].
type Suggestion struct {
	Category   string
	Confidence float64
	Source     string // history, keyword, fallback
}

// ParseTable decodes a YAML keyword table.
func ParseTable(data []byte) (KeywordTable, error) {
	var t KeywordTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return KeywordTable{}, fmt.Errorf("parsing keyword table: %w", err)
	}
	for i, r := range t.Rules {
		if strings.TrimSpace(r.Category) == "" {
			return KeywordTable{}, fmt.Errorf("keyword table rule %d: missing category", i+1)
		}
	}
	return t, nil
}

// DefaultTable returns the built-in keyword table.
func DefaultTable() KeywordTable {
	t, err := ParseTable(defaultTableYAML)
	if err != nil {
		panic(err)
	}
	return t
}

// LoadTable reads a keyword table from path. An empty path or a missing file
// yields the built-in table.
func LoadTable(path string) (KeywordTable, error) {
	if path == "" {
		return DefaultTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultTable(), nil
		}
		return KeywordTable{}, fmt.Errorf("reading keyword table: %w", err)
	}
	return ParseTable(data)
}

// Suggest picks a category for a description. Exact description matches in
// history are preferred over keyword rules.
func Suggest(description string, amount decimal.Decimal, history []model.TransactionRecord, table KeywordTable) Suggestion {
	desc := normalize(description)
	if desc == "" {
		return Suggestion{Category: Fallback, Confidence: 0.1, Source: "fallback"}
	}

	if s, ok := fromHistory(desc, history); ok {
		return s
	}
	if s, ok := fromKeywords(desc, amount.InexactFloat64(), table); ok {
		return s
	}
	return Suggestion{Category: Fallback, Confidence: 0.1, Source: "fallback"}
}

func fromHistory(desc string, history []model.TransactionRecord) (Suggestion, bool) {
	votes := make(map[string]int)
	for _, r := range history {
		if r.Category == "" || normalize(r.Description) != desc {
			continue
		}
		votes[r.Category]++
	}
	if len(votes) == 0 {
		return Suggestion{}, false
	}

	cats := make([]string, 0, len(votes))
	for c := range votes {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		if votes[cats[i]] != votes[cats[j]] {
			return votes[cats[i]] > votes[cats[j]]
		}
		return cats[i] < cats[j]
	})

	best := cats[0]
	return Suggestion{
		Category:   best,
		Confidence: min(0.6+0.1*float64(votes[best]), 0.95),
		Source:     "history",
	}, true
}

func fromKeywords(desc string, amount float64, table KeywordTable) (Suggestion, bool) {
	bestIdx, bestHits := -1, 0
	for i, r := range table.Rules {
		if r.MinAmount != nil && amount < *r.MinAmount {
			continue
		}
		if r.MaxAmount != nil && amount > *r.MaxAmount {
			continue
		}
		hits := 0
		for _, kw := range r.Keywords {
			if kw = normalize(kw); kw != "" && strings.Contains(desc, kw) {
				hits++
			}
		}
		if hits > bestHits {
			bestIdx, bestHits = i, hits
		}
	}
	if bestIdx < 0 {
		return Suggestion{}, false
	}
	return Suggestion{
		Category:   table.Rules[bestIdx].Category,
		Confidence: min(0.5+0.1*float64(bestHits-1), 0.85),
		Source:     "keyword",
	}, true
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
