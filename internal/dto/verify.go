package dto

import "github.com/shopspring/decimal"

// LedgerDrift reports one record whose stored state disagrees with the value
// rebuilt from the transaction log.
type LedgerDrift struct {
	Entity   string          `json:"entity"` // "account" or "party"
	ID       string          `json:"id"`
	Field    string          `json:"field"`
	Stored   decimal.Decimal `json:"stored"`
	Rebuilt  decimal.Decimal `json:"rebuilt"`
	AbsDrift decimal.Decimal `json:"absDrift"`
}

// LedgerVerifyReport is the result of replaying the transaction log against
// the stored derived state.
type LedgerVerifyReport struct {
	TransactionsReplayed int           `json:"transactionsReplayed"`
	AccountsChecked      int           `json:"accountsChecked"`
	PartiesChecked       int           `json:"partiesChecked"`
	Drifts               []LedgerDrift `json:"drifts,omitempty"`
	Clean                bool          `json:"clean"`
}
