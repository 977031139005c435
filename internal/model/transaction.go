// Package model defines the ledger records read by ledgercast and the values the
// forecasting engine produces from them.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the direction of a transaction.
type Kind int

const (
	kindUnknown Kind = iota
	KindIncome
	KindExpense
)

// ParseKind maps "income"/"expense" (any case, also "credit"/"debit") to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "credit":
		return KindIncome, nil
	case "expense", "debit":
		return KindExpense, nil
	}
	return kindUnknown, fmt.Errorf("unknown transaction kind %q", s)
}

func (k Kind) String() string {
	switch k {
	case KindIncome:
		return "income"
	case KindExpense:
		return "expense"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid transaction kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// TransactionRecord is a single ledger entry for one user.
type TransactionRecord struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id,omitempty"`
	Kind        Kind            `json:"kind"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description,omitempty"`
}

// Validate checks the fields the engine relies on.
func (t TransactionRecord) Validate() error {
	src := t.ID
	if src == "" {
		src = "transaction"
	}
	switch {
	case !t.Kind.Valid():
		return &ValidationError{Source: src, Field: "kind", Reason: "must be income or expense"}
	case t.Amount.IsZero():
		return &ValidationError{Source: src, Field: "amount", Reason: "missing or zero"}
	case t.Amount.IsNegative():
		return &ValidationError{Source: src, Field: "amount", Reason: "must be positive, got " + t.Amount.String()}
	case t.Date.IsZero():
		return &ValidationError{Source: src, Field: "date", Reason: "missing"}
	}
	return nil
}
