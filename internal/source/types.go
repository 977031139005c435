package source

import (
	"github.com/theirongolddev/ledgercast/internal/categorize"
	"github.com/theirongolddev/ledgercast/internal/model"
)

// Format identifies how a ledger file is encoded.
type Format int

const (
	FormatCSV Format = iota + 1
	FormatJSONL
	FormatCAMT
	FormatPlan
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatJSONL:
		return "jsonl"
	case FormatCAMT:
		return "camt"
	case FormatPlan:
		return "plan"
	default:
		return "unknown"
	}
}

// DiscoveredFile is a ledger file found during directory scanning.
type DiscoveredFile struct {
	Path   string
	Rel    string // path relative to the data dir, used in record sources
	Format Format
}

// ParseOptions carries the inputs a parser needs beyond the file itself.
type ParseOptions struct {
	UserID   string
	Keywords categorize.KeywordTable // used for statements without categories
}

// ParseResult holds the records parsed from one ledger file.
type ParseResult struct {
	File    DiscoveredFile
	Records []model.TransactionRecord
	Err     error
}

// rawRecord is the shared row shape of CSV and JSONL ledgers.
type rawRecord struct {
	ID          string
	Date        string
	Kind        string
	Category    string
	Amount      string
	Description string
}
