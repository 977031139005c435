package pipeline

import (
	"encoding/json"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/ledgercast/internal/categorize"
	"github.com/theirongolddev/ledgercast/internal/model"
	"github.com/theirongolddev/ledgercast/internal/source"
)

// LoadOptions configures ledger loading.
type LoadOptions struct {
	UserID   string
	Keywords categorize.KeywordTable
	Logger   logrus.FieldLogger
}

func (o LoadOptions) logger() logrus.FieldLogger {
	if o.Logger != nil {
		return o.Logger
	}
	return logrus.StandardLogger()
}

func (o LoadOptions) parseOptions() source.ParseOptions {
	return source.ParseOptions{UserID: o.UserID, Keywords: o.Keywords}
}

// fingerprint identifies the options that shape parsed records: the user ID
// stamped on each record and the keyword table used to categorize them.
func (o LoadOptions) fingerprint() string {
	table, _ := json.Marshal(o.Keywords)
	return fmt.Sprintf("%s:%016x", o.UserID, xxhash.Sum64(table))
}

// LoadResult holds the output of the full data loading pipeline.
type LoadResult struct {
	Transactions []model.TransactionRecord
	Budgets      []model.BudgetRecord
	Goals        []model.GoalRecord
	TotalFiles   int
	ParsedFiles  int
	PlanFile     string
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers and parses every ledger file under dataDir using a bounded
// worker pool. The first malformed file fails the load.
func Load(dataDir string, opts LoadOptions, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dataDir, err)
	}

	ledgers, plan := source.SplitPlan(files)
	result := &LoadResult{TotalFiles: len(ledgers)}
	if err := loadPlan(result, plan, opts); err != nil {
		return nil, err
	}

	for _, pr := range parseAll(ledgers, opts.parseOptions(), progressFn, 0, len(ledgers)) {
		if pr.Err != nil {
			return nil, fmt.Errorf("parsing %s: %w", pr.File.Rel, pr.Err)
		}
		result.ParsedFiles++
		opts.logger().WithFields(logrus.Fields{"file": pr.File.Rel, "records": len(pr.Records)}).Debug("parsed ledger")
		result.Transactions = append(result.Transactions, pr.Records...)
	}

	SortRecords(result.Transactions)
	return result, nil
}

// SortRecords orders records by date then ID. Records sharing both keep their
// load order.
func SortRecords(records []model.TransactionRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		return records[i].ID < records[j].ID
	})
}

func loadPlan(result *LoadResult, plan *source.DiscoveredFile, opts LoadOptions) error {
	if plan == nil {
		return nil
	}
	p, err := source.ParsePlan(*plan, opts.UserID)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", plan.Rel, err)
	}
	result.Budgets = p.Budgets
	result.Goals = p.Goals
	result.PlanFile = plan.Rel
	return nil
}

// parseAll parses files concurrently. Results keep the input order.
// Progress is reported as offset+n out of total.
func parseAll(files []source.DiscoveredFile, opts source.ParseOptions, progressFn ProgressFunc, offset, total int) []source.ParseResult {
	if len(files) == 0 {
		return nil
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]source.ParseResult, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx], opts)
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(offset+int(n), total)
				}
			}
		}()
	}

	wg.Wait()
	return results
}
