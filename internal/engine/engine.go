package engine

import (
	"fmt"
	"time"

	"github.com/theirongolddev/ledgercast/internal/model"
	"github.com/theirongolddev/ledgercast/internal/pipeline"
)

// Input is everything one engine run needs. The caller selects the date
// window and owns authorization; the engine only reads.
type Input struct {
	Transactions []model.TransactionRecord
	Budgets      []model.BudgetRecord
	Goals        []model.GoalRecord
	AsOf         time.Time
	MonthsAhead  int // 0 means DefaultMonthsAhead
}

// Run aggregates the transactions and produces the full report.
func Run(in Input) (*model.Report, error) {
	if in.AsOf.IsZero() {
		return nil, &model.ValidationError{Source: "input", Field: "as_of", Reason: "missing"}
	}
	ahead := in.MonthsAhead
	switch {
	case ahead < 0:
		return nil, &model.ValidationError{Source: "input", Field: "months_ahead", Reason: fmt.Sprintf("must be positive, got %d", ahead)}
	case ahead == 0:
		ahead = DefaultMonthsAhead
	}

	buckets, err := pipeline.Aggregate(in.Transactions)
	if err != nil {
		return nil, err
	}
	months := buckets.MonthList()

	report := &model.Report{
		AsOf:                in.AsOf,
		History:             months,
		MonthlyPredictions:  Forecast(pipeline.ExpenseSeries(months), ahead, in.AsOf),
		IncomePredictions:   Forecast(pipeline.IncomeSeries(months), ahead, in.AsOf),
		CategoryPredictions: ForecastCategories(buckets.CategorySeries()),
		Insights:            GenerateInsights(in.Transactions, in.Budgets, in.AsOf),
	}

	for _, g := range in.Goals {
		report.Goals = append(report.Goals, ProjectGoal(g, months, in.AsOf))
	}
	return report, nil
}
