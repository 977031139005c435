package source

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/theirongolddev/ledgercast/internal/categorize"
	"github.com/theirongolddev/ledgercast/internal/model"
)

// parseCAMT reads the Ntry elements of a CAMT.053 bank statement.
// Bank entries carry no category, so one is suggested from the description.
func parseCAMT(df DiscoveredFile, opts ParseOptions) ([]model.TransactionRecord, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(df.Path); err != nil {
		return nil, fmt.Errorf("%s: %w", df.Rel, err)
	}

	var records []model.TransactionRecord
	for i, ntry := range doc.FindElements("//Ntry") {
		entry := i + 1

		var kind string
		switch text(ntry, "CdtDbtInd") {
		case "CRDT":
			kind = "income"
		case "DBIT":
			kind = "expense"
		default:
			kind = text(ntry, "CdtDbtInd")
		}

		date := text(ntry, "BookgDt/Dt")
		if date == "" {
			date = text(ntry, "BookgDt/DtTm")
		}
		if date == "" {
			date = text(ntry, "ValDt/Dt")
		}

		desc := text(ntry, "AddtlNtryInf")
		if desc == "" {
			desc = text(ntry, ".//RmtInf/Ustrd")
		}

		id := text(ntry, "NtryRef")
		if id == "" {
			id = text(ntry, "AcctSvcrRef")
		}

		rec, err := buildRecord(df, entry, opts, rawRecord{
			ID:          id,
			Date:        date,
			Kind:        kind,
			Amount:      text(ntry, "Amt"),
			Description: desc,
		})
		if err != nil {
			return nil, err
		}
		rec.Category = categorize.Suggest(rec.Description, rec.Amount, nil, opts.Keywords).Category
		records = append(records, rec)
	}
	return records, nil
}

func text(el *etree.Element, path string) string {
	if found := el.FindElement(path); found != nil {
		return strings.TrimSpace(found.Text())
	}
	return ""
}
