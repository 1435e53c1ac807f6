package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryDirection marks which way money moved for a history entry.
type EntryDirection string

const (
	EntryIn  EntryDirection = "IN"
	EntryOut EntryDirection = "OUT"
)

// BankAccount represents a named cash or bank account held by the agency.
// Invariant: Balance == opening balance + sum of signed history deltas, and a
// debit never completes against a balance that would go negative.
type BankAccount struct {
	AccountID      string          `json:"accountID"`     // Primary Key (UUID)
	AccountNumber  string          `json:"accountNumber"` // Human-facing, unique
	Name           string          `json:"name"`
	CurrencyCode   string          `json:"currencyCode"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Balance        decimal.Decimal `json:"balance"`
	IsActive       bool            `json:"isActive"`
	AuditFields
}

// AccountHistoryEntry is one append-only line of an account's balance history.
type AccountHistoryEntry struct {
	EntryID       string          `json:"entryID"`
	AccountID     string          `json:"accountID"`
	TransactionID string          `json:"transactionID"`
	Direction     EntryDirection  `json:"direction"`
	Amount        decimal.Decimal `json:"amount"` // Always positive; sign comes from Direction
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
	Note          string          `json:"note,omitempty"`
	At            time.Time       `json:"at"`
}

// SignedDelta returns the entry's effect on the balance.
func (e AccountHistoryEntry) SignedDelta() decimal.Decimal {
	if e.Direction == EntryOut {
		return e.Amount.Neg()
	}
	return e.Amount
}
