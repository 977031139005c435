// Package source discovers and parses ledger files: CSV and JSONL transaction
// exports, CAMT.053 bank statements, and the YAML plan holding budgets and goals.
package source

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/ledgercast/internal/model"
)

// idNamespace seeds deterministic IDs for rows that carry none.
var idNamespace = uuid.MustParse("6f1c7a52-3b0e-4d8e-9a41-2f6f7d1c9b30")

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

// ParseFile reads one transaction ledger. Any malformed row fails the whole
// file with a *model.ValidationError naming the file and line.
func ParseFile(df DiscoveredFile, opts ParseOptions) ParseResult {
	var (
		records []model.TransactionRecord
		err     error
	)
	switch df.Format {
	case FormatCSV:
		records, err = parseCSV(df, opts)
	case FormatJSONL:
		records, err = parseJSONL(df, opts)
	case FormatCAMT:
		records, err = parseCAMT(df, opts)
	default:
		err = fmt.Errorf("%s: not a transaction ledger (%s)", df.Rel, df.Format)
	}
	return ParseResult{File: df, Records: records, Err: err}
}

func parseCSV(df DiscoveredFile, opts ParseOptions) ([]model.TransactionRecord, error) {
	f, err := os.Open(df.Path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: reading header: %w", df.Rel, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, required := range []string{"date", "kind", "amount"} {
		if _, ok := cols[required]; !ok {
			return nil, &model.ValidationError{Source: df.Rel + ":1", Field: required, Reason: "column missing from header"}
		}
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []model.TransactionRecord
	line := 1
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", df.Rel, line, err)
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}

		rec, err := buildRecord(df, line, opts, rawRecord{
			ID:          field(row, "id"),
			Date:        field(row, "date"),
			Kind:        field(row, "kind"),
			Category:    field(row, "category"),
			Amount:      field(row, "amount"),
			Description: field(row, "description"),
		})
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

type jsonRecord struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Kind        string          `json:"kind"`
	Category    string          `json:"category"`
	Amount      json.RawMessage `json:"amount"`
	Description string          `json:"description"`
}

func parseJSONL(df DiscoveredFile, opts ParseOptions) ([]model.TransactionRecord, error) {
	f, err := os.Open(df.Path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var records []model.TransactionRecord
	line := 0
	for scanner.Scan() {
		line++
		b := bytes.TrimSpace(scanner.Bytes())
		if len(b) == 0 {
			continue
		}

		var jr jsonRecord
		if err := json.Unmarshal(b, &jr); err != nil {
			return nil, &model.ValidationError{Source: fmt.Sprintf("%s:%d", df.Rel, line), Field: "json", Reason: err.Error()}
		}
		rec, err := buildRecord(df, line, opts, rawRecord{
			ID:          jr.ID,
			Date:        jr.Date,
			Kind:        jr.Kind,
			Category:    jr.Category,
			Amount:      strings.Trim(string(jr.Amount), `"`),
			Description: jr.Description,
		})
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", df.Rel, err)
	}
	return records, nil
}

// buildRecord converts a raw row, failing loudly on anything the engine
// cannot use.
func buildRecord(df DiscoveredFile, line int, opts ParseOptions, raw rawRecord) (model.TransactionRecord, error) {
	src := fmt.Sprintf("%s:%d", df.Rel, line)

	kind, err := model.ParseKind(raw.Kind)
	if err != nil {
		return model.TransactionRecord{}, &model.ValidationError{Source: src, Field: "kind", Reason: err.Error()}
	}
	if raw.Amount == "" || raw.Amount == "null" {
		return model.TransactionRecord{}, &model.ValidationError{Source: src, Field: "amount", Reason: "missing"}
	}
	amount, err := decimal.NewFromString(raw.Amount)
	if err != nil {
		return model.TransactionRecord{}, &model.ValidationError{Source: src, Field: "amount", Reason: fmt.Sprintf("not a number: %q", raw.Amount)}
	}
	date, err := parseDate(raw.Date)
	if err != nil {
		return model.TransactionRecord{}, &model.ValidationError{Source: src, Field: "date", Reason: err.Error()}
	}

	id := raw.ID
	if id == "" {
		id = recordID(df.Rel, line)
	}

	rec := model.TransactionRecord{
		ID:          id,
		UserID:      opts.UserID,
		Kind:        kind,
		Category:    raw.Category,
		Amount:      amount,
		Date:        date,
		Description: raw.Description,
	}
	if err := rec.Validate(); err != nil {
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			ve.Source = src
		}
		return model.TransactionRecord{}, err
	}
	return rec, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("missing")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func recordID(rel string, line int) string {
	return uuid.NewSHA1(idNamespace, []byte(rel+":"+strconv.Itoa(line))).String()
}
