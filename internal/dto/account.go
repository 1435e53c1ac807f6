package dto

import (
	"time"

	"github.com/arafah-soft/agency_erp/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest creates a named bank/cash account.
type CreateAccountRequest struct {
	AccountNumber  string          `json:"accountNumber" binding:"required"`
	Name           string          `json:"name" binding:"required"`
	CurrencyCode   string          `json:"currencyCode" binding:"required,len=3"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
}

// AccountResponse is the API representation of a bank account.
type AccountResponse struct {
	AccountID     string          `json:"accountID"`
	AccountNumber string          `json:"accountNumber"`
	Name          string          `json:"name"`
	CurrencyCode  string          `json:"currencyCode"`
	Balance       decimal.Decimal `json:"balance"`
	IsActive      bool            `json:"isActive"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// AccountHistoryEntryResponse is one line of an account's balance history.
type AccountHistoryEntryResponse struct {
	EntryID       string                `json:"entryID"`
	TransactionID string                `json:"transactionID"`
	Direction     domain.EntryDirection `json:"direction"`
	Amount        decimal.Decimal       `json:"amount"`
	BalanceAfter  decimal.Decimal       `json:"balanceAfter"`
	Note          string                `json:"note,omitempty"`
	At            time.Time             `json:"at"`
}

// ListAccountHistoryResponse is one page of account history.
type ListAccountHistoryResponse struct {
	Entries   []AccountHistoryEntryResponse `json:"entries"`
	NextToken *string                       `json:"nextToken,omitempty"`
}

// ToAccountResponse converts a domain account to its API representation.
func ToAccountResponse(a *domain.BankAccount) AccountResponse {
	return AccountResponse{
		AccountID:     a.AccountID,
		AccountNumber: a.AccountNumber,
		Name:          a.Name,
		CurrencyCode:  a.CurrencyCode,
		Balance:       a.Balance,
		IsActive:      a.IsActive,
		CreatedAt:     a.CreatedAt,
	}
}

// ToAccountHistoryEntryResponses converts history entries.
func ToAccountHistoryEntryResponses(es []domain.AccountHistoryEntry) []AccountHistoryEntryResponse {
	out := make([]AccountHistoryEntryResponse, len(es))
	for i, e := range es {
		out[i] = AccountHistoryEntryResponse{
			EntryID:       e.EntryID,
			TransactionID: e.TransactionID,
			Direction:     e.Direction,
			Amount:        e.Amount,
			BalanceAfter:  e.BalanceAfter,
			Note:          e.Note,
			At:            e.At,
		}
	}
	return out
}
