package dto

import (
	"time"

	"github.com/arafah-soft/agency_erp/internal/core/domain"
	portsrepo "github.com/arafah-soft/agency_erp/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest is the payload for creating a ledger transaction.
// For transfers, FromAccountID/ToAccountID are used; otherwise TargetAccountID.
type CreateTransactionRequest struct {
	TransactionType   domain.TransactionKind `json:"transactionType" binding:"required"`
	Amount            decimal.Decimal        `json:"amount" binding:"required"`
	Fee               decimal.Decimal        `json:"fee"`
	PartyType         domain.PartyKind       `json:"partyType"`
	PartyID           string                 `json:"partyID"`
	TargetAccountID   string                 `json:"targetAccountID"`
	FromAccountID     string                 `json:"fromAccountID"`
	ToAccountID       string                 `json:"toAccountID"`
	ServiceCategory   domain.ServiceCategory `json:"serviceCategory"`
	Notes             string                 `json:"notes"`
	Draft             bool                   `json:"draft"`
	DisableReclassify bool                   `json:"disableReclassify"`
}

// CompleteTransactionRequest optionally overrides the stored amount.
type CompleteTransactionRequest struct {
	OverrideAmount *decimal.Decimal `json:"overrideAmount"`
}

// ListTransactionsParams narrows and pages a transaction listing.
type ListTransactionsParams struct {
	From            *time.Time               `form:"from" time_format:"2006-01-02"`
	To              *time.Time               `form:"to" time_format:"2006-01-02"`
	Kind            domain.TransactionKind   `form:"kind"`
	PartyKind       domain.PartyKind         `form:"partyKind"`
	PartyID         string                   `form:"partyID"`
	AccountID       string                   `form:"accountID"`
	ServiceCategory domain.ServiceCategory   `form:"serviceCategory"`
	Status          domain.TransactionStatus `form:"status"`
	IncludeInactive bool                     `form:"includeInactive"`
	Limit           int                      `form:"limit"`
	NextToken       *string                  `form:"nextToken"`
}

// TransactionResponse is the API representation of a transaction record.
type TransactionResponse struct {
	TransactionID   string                   `json:"transactionID"`
	TransactionNo   string                   `json:"transactionNo"`
	Kind            domain.TransactionKind   `json:"kind"`
	Amount          decimal.Decimal          `json:"amount"`
	Fee             decimal.Decimal          `json:"fee"`
	PartyKind       domain.PartyKind         `json:"partyKind,omitempty"`
	PartyID         string                   `json:"partyID,omitempty"`
	SourceAccountID string                   `json:"sourceAccountID,omitempty"`
	TargetAccountID string                   `json:"targetAccountID,omitempty"`
	ServiceCategory domain.ServiceCategory   `json:"serviceCategory"`
	Status          domain.TransactionStatus `json:"status"`
	Notes           string                   `json:"notes,omitempty"`
	CompletedAt     *time.Time               `json:"completedAt,omitempty"`
	IsActive        bool                     `json:"isActive"`
	CreatedAt       time.Time                `json:"createdAt"`
}

// TransactionResultResponse bundles the record with snapshots of everything it touched.
type TransactionResultResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Accounts    []AccountResponse   `json:"accounts,omitempty"`
	Parties     []PartyResponse     `json:"parties,omitempty"`
}

// ListTransactionsResponse is one page plus window aggregates.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse  `json:"transactions"`
	Totals       portsrepo.LedgerTotals `json:"totals"`
	NextToken    *string                `json:"nextToken,omitempty"`
}

// ToTransactionResponse converts a domain record to its API representation.
func ToTransactionResponse(t *domain.TransactionRecord) TransactionResponse {
	return TransactionResponse{
		TransactionID:   t.TransactionID,
		TransactionNo:   t.TransactionNo,
		Kind:            t.Kind,
		Amount:          t.Amount,
		Fee:             t.Fee,
		PartyKind:       t.PartyKind,
		PartyID:         t.PartyID,
		SourceAccountID: t.SourceAccountID,
		TargetAccountID: t.TargetAccountID,
		ServiceCategory: t.ServiceCategory,
		Status:          t.Status,
		Notes:           t.Notes,
		CompletedAt:     t.CompletedAt,
		IsActive:        t.IsActive,
		CreatedAt:       t.CreatedAt,
	}
}

// ToTransactionResponses converts a slice of domain records.
func ToTransactionResponses(ts []domain.TransactionRecord) []TransactionResponse {
	out := make([]TransactionResponse, len(ts))
	for i := range ts {
		out[i] = ToTransactionResponse(&ts[i])
	}
	return out
}
