// Package export writes engine reports to CSV, JSON and PDF files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/theirongolddev/ledgercast/internal/model"
)

// Formats lists the supported export formats.
var Formats = []string{"csv", "json", "pdf"}

// Write exports r in the named format into dir and returns the absolute path.
func Write(format string, r *model.Report, dir string) (string, error) {
	switch strings.ToLower(format) {
	case "csv":
		return ToCSV(r, dir)
	case "json":
		return ToJSON(r, dir)
	case "pdf":
		return ToPDF(r, dir)
	}
	return "", fmt.Errorf("unknown export format %q (want one of %s)", format, strings.Join(Formats, ", "))
}

// ToJSON writes the full report as indented JSON.
func ToJSON(r *model.Report, dir string) (string, error) {
	path, err := generateFilename(r, dir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating JSON file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	return filepath.Abs(path)
}

// ToCSV writes one file with a section per report part. Each section starts
// with a single-cell title row followed by its header row.
func ToCSV(r *model.Report, dir string) (string, error) {
	path, err := generateFilename(r, dir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating CSV file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	for _, s := range sections(r) {
		rows := append([][]string{{s.title}, s.headers}, s.rows...)
		rows = append(rows, []string{})
		if err := w.WriteAll(rows); err != nil {
			return "", fmt.Errorf("writing CSV: %w", err)
		}
	}
	return filepath.Abs(path)
}

// ToPDF renders each report section as a table.
func ToPDF(r *model.Report, dir string) (string, error) {
	path, err := generateFilename(r, dir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFillColor(40, 40, 40)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr("  ledgercast report - "+r.AsOf.Format("2 Jan 2006")), "", 1, "L", true, 0, "")
	pdf.Ln(6)

	for _, s := range sections(r) {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(0, 0, 0)
		pdf.Cell(0, 8, tr(s.title))
		pdf.Ln(8)

		if len(s.rows) == 0 {
			pdf.SetFont("Arial", "I", 9)
			pdf.SetTextColor(100, 100, 100)
			pdf.Cell(0, 6, "No data")
			pdf.Ln(10)
			continue
		}

		width := 190.0 / float64(len(s.headers))
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		pdf.SetTextColor(50, 50, 50)
		for _, h := range s.headers {
			pdf.CellFormat(width, 7, tr(h), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 8)
		for _, row := range s.rows {
			for _, cell := range row {
				pdf.CellFormat(width, 6, tr(truncate(cell, 40)), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(6)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("writing PDF: %w", err)
	}
	return filepath.Abs(path)
}

type section struct {
	title   string
	headers []string
	rows    [][]string
}

func sections(r *model.Report) []section {
	forecast := section{title: "Spending forecast", headers: []string{"Month", "Predicted", "Confidence", "Seasonal", "Base"}}
	for _, p := range r.MonthlyPredictions {
		forecast.rows = append(forecast.rows, []string{
			p.MonthLabel, money(p.PredictedAmount), pct(p.ConfidencePercent),
			fmt.Sprintf("%.2f", p.SeasonalFactor), money(p.BasePrediction),
		})
	}

	cats := section{title: "Categories", headers: []string{"Category", "Average", "Next", "Trend", "Confidence", "Months"}}
	for _, c := range r.CategoryPredictions {
		cats.rows = append(cats.rows, []string{
			c.Category, money(c.CurrentAverage), money(c.PredictedNextPeriod),
			fmt.Sprintf("%+.1f%%", c.TrendPercent), pct(c.ConfidencePercent), fmt.Sprint(c.SampleSize),
		})
	}

	insights := section{title: "Insights", headers: []string{"Kind", "Impact", "Title", "Description"}}
	for _, in := range r.Insights {
		insights.rows = append(insights.rows, []string{string(in.Kind), string(in.Impact), in.Title, in.Description})
	}

	goals := section{title: "Goals", headers: []string{"Goal", "Status", "Remaining", "Months", "Avg savings"}}
	for _, g := range r.Goals {
		months := "-"
		if g.Status == model.GoalOnTrack || g.Status == model.GoalBehind || g.Status == model.GoalReached {
			months = fmt.Sprint(g.EstimatedMonths)
		}
		goals.rows = append(goals.rows, []string{g.Goal, string(g.Status), money(g.Remaining), months, money(g.MonthlySavingsAverage)})
	}

	return []section{forecast, cats, insights, goals}
}

func money(v float64) string { return fmt.Sprintf("%.2f", v) }
func pct(v float64) string   { return fmt.Sprintf("%.0f%%", v) }

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// generateFilename builds dir/ledgercast_report_<asof>.<ext>, creating dir.
// An empty dir means the working directory.
func generateFilename(r *model.Report, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	name := fmt.Sprintf("ledgercast_report_%s.%s", r.AsOf.Format("20060102"), ext)
	return filepath.Join(dir, name), nil
}
