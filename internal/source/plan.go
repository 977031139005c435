package source

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/ledgercast/internal/model"
)

// Plan holds the budgets and goals declared in plan.yaml.
type Plan struct {
	Budgets []model.BudgetRecord
	Goals   []model.GoalRecord
}

type planFile struct {
	Budgets []struct {
		Category string `yaml:"category"`
		Planned  string `yaml:"planned"`
		Month    int    `yaml:"month"`
		Year     int    `yaml:"year"`
		Active   *bool  `yaml:"active"`
	} `yaml:"budgets"`
	Goals []struct {
		Name     string `yaml:"name"`
		Target   string `yaml:"target"`
		Current  string `yaml:"current"`
		Deadline string `yaml:"deadline"`
	} `yaml:"goals"`
}

// ParsePlan reads a plan file. A budget without `active` is active.
func ParsePlan(df DiscoveredFile, userID string) (Plan, error) {
	data, err := os.ReadFile(df.Path)
	if err != nil {
		return Plan{}, err
	}

	var pf planFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return Plan{}, fmt.Errorf("%s: %w", df.Rel, err)
	}

	var plan Plan
	for i, b := range pf.Budgets {
		src := fmt.Sprintf("%s:budgets[%d]", df.Rel, i)
		if strings.TrimSpace(b.Category) == "" {
			return Plan{}, &model.ValidationError{Source: src, Field: "category", Reason: "missing"}
		}
		planned, err := positiveDecimal(b.Planned)
		if err != nil {
			return Plan{}, &model.ValidationError{Source: src, Field: "planned", Reason: err.Error()}
		}
		if b.Month < 1 || b.Month > 12 {
			return Plan{}, &model.ValidationError{Source: src, Field: "month", Reason: fmt.Sprintf("%d out of range 1-12", b.Month)}
		}
		if b.Year < 1 {
			return Plan{}, &model.ValidationError{Source: src, Field: "year", Reason: "missing"}
		}
		plan.Budgets = append(plan.Budgets, model.BudgetRecord{
			UserID:   userID,
			Category: b.Category,
			Planned:  planned,
			Month:    time.Month(b.Month),
			Year:     b.Year,
			IsActive: b.Active == nil || *b.Active,
		})
	}

	for i, g := range pf.Goals {
		src := fmt.Sprintf("%s:goals[%d]", df.Rel, i)
		target, err := positiveDecimal(g.Target)
		if err != nil {
			return Plan{}, &model.ValidationError{Source: src, Field: "target", Reason: err.Error()}
		}
		current := decimal.Zero
		if g.Current != "" {
			current, err = decimal.NewFromString(g.Current)
			if err != nil || current.IsNegative() {
				return Plan{}, &model.ValidationError{Source: src, Field: "current", Reason: fmt.Sprintf("invalid amount %q", g.Current)}
			}
		}
		var deadline time.Time
		if g.Deadline != "" {
			deadline, err = parseDate(g.Deadline)
			if err != nil {
				return Plan{}, &model.ValidationError{Source: src, Field: "deadline", Reason: err.Error()}
			}
		}
		name := g.Name
		if name == "" {
			name = fmt.Sprintf("Goal %d", i+1)
		}
		plan.Goals = append(plan.Goals, model.GoalRecord{
			UserID:   userID,
			Name:     name,
			Target:   target,
			Current:  current,
			Deadline: deadline,
		})
	}

	return plan, nil
}

func positiveDecimal(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, errors.New("missing")
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number: %q", s)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}
