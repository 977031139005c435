package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/ledgercast/internal/model"
)

func sampleReport() *model.Report {
	return &model.Report{
		AsOf: time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC),
		MonthlyPredictions: []model.ForecastPoint{
			{MonthLabel: "Nov 2026", PredictedAmount: 1234.5, ConfidencePercent: 80, SeasonalFactor: 1.05, BasePrediction: 1175.71},
		},
		CategoryPredictions: []model.CategoryForecast{
			{Category: "Rent", CurrentAverage: 1200, PredictedNextPeriod: 1200, ConfidencePercent: 90, SampleSize: 3},
		},
		Insights: []model.Insight{
			{Kind: model.InsightWarning, Impact: model.ImpactHigh, Title: "Food budget almost used", Description: "96%", Tag: "budget:Food"},
		},
		Goals: []model.GoalProjection{
			{Goal: "Emergency", Status: model.GoalInsufficientData, Remaining: 6000},
		},
	}
}

func TestToJSON(t *testing.T) {
	dir := t.TempDir()
	path, err := ToJSON(sampleReport(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "ledgercast_report_20261017.json" {
		t.Errorf("filename = %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got model.Report
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Insights) != 1 || got.Insights[0].Tag != "budget:Food" {
		t.Errorf("Insights = %+v", got.Insights)
	}
}

func TestToCSV(t *testing.T) {
	path, err := ToCSV(sampleReport(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	var titles []string
	for _, row := range rows {
		if len(row) == 1 && row[0] != "" {
			titles = append(titles, row[0])
		}
	}
	if got := strings.Join(titles, "|"); got != "Spending forecast|Categories|Insights|Goals" {
		t.Errorf("section titles = %s", got)
	}
	if rows[2][1] != "1234.50" || rows[2][2] != "80%" {
		t.Errorf("forecast row = %v", rows[2])
	}
}

func TestToPDF(t *testing.T) {
	path, err := ToPDF(sampleReport(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Errorf("output does not look like a PDF")
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if _, err := Write("xlsx", sampleReport(), t.TempDir()); err == nil {
		t.Error("expected error for unknown format")
	}
}
