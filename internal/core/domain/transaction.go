package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind indicates the direction of money movement.
type TransactionKind string

const (
	Credit   TransactionKind = "CREDIT"
	Debit    TransactionKind = "DEBIT"
	Transfer TransactionKind = "TRANSFER"
)

// TransactionStatus indicates whether a transaction's effects have been applied.
type TransactionStatus string

const (
	Pending   TransactionStatus = "PENDING"
	Completed TransactionStatus = "COMPLETED"
)

// ServiceCategory classifies what a transaction pays for. It also drives the
// category-specific due fields on parties and the optional kind reclassification.
type ServiceCategory string

const (
	CategoryHajj     ServiceCategory = "HAJJ"
	CategoryUmrah    ServiceCategory = "UMRAH"
	CategoryTicket   ServiceCategory = "TICKET"
	CategoryLoan     ServiceCategory = "LOAN"
	CategoryExchange ServiceCategory = "EXCHANGE"
	CategoryGeneral  ServiceCategory = "GENERAL"
)

// TransactionRecord is the system of record for every money movement.
// Once completed it is immutable except for the IsActive soft-delete flag.
type TransactionRecord struct {
	TransactionID   string            `json:"transactionID"` // Primary Key (UUID)
	TransactionNo   string            `json:"transactionNo"` // Human-readable, e.g. TXN-000042
	Kind            TransactionKind   `json:"kind"`
	Amount          decimal.Decimal   `json:"amount"` // Always positive
	Fee             decimal.Decimal   `json:"fee"`    // >= 0, charged to the paying account
	PartyKind       PartyKind         `json:"partyKind,omitempty"`
	PartyID         string            `json:"partyID,omitempty"`
	SourceAccountID string            `json:"sourceAccountID,omitempty"` // Transfers only
	TargetAccountID string            `json:"targetAccountID,omitempty"`
	ServiceCategory ServiceCategory   `json:"serviceCategory"`
	Status          TransactionStatus `json:"status"`
	Notes           string            `json:"notes,omitempty"`
	// DisableReclassify pins the party kind for the record's lifetime, so a
	// draft created with the opt-out keeps it at completion time.
	DisableReclassify bool            `json:"disableReclassify,omitempty"`
	CompletedAt       *time.Time      `json:"completedAt,omitempty"`
	IsActive          bool            `json:"isActive"`
	Applied           *AppliedEffects `json:"applied,omitempty"` // Set when effects run
	AuditFields
}

// AccountChange records the signed balance delta actually applied to one account.
type AccountChange struct {
	AccountID string          `json:"accountID"`
	Delta     decimal.Decimal `json:"delta"`
	EntryID   string          `json:"entryID"` // History entry written for this change
}

// PartyChange records the post-clamp deltas actually applied to one party.
// Reversal subtracts exactly these, so a round trip restores the prior state
// even when a clamp discarded part of the raw delta.
type PartyChange struct {
	Kind             PartyKind       `json:"kind"`
	PartyID          string          `json:"partyID"`
	TotalDelta       decimal.Decimal `json:"totalDelta"`
	PaidDelta        decimal.Decimal `json:"paidDelta"`
	PrincipalDelta   decimal.Decimal `json:"principalDelta"`
	Category         ServiceCategory `json:"category,omitempty"`
	CategoryDueDelta decimal.Decimal `json:"categoryDueDelta"`
	Mirror           bool            `json:"mirror,omitempty"`
}

// AppliedEffects is the complete applied footprint of a completed transaction.
// Derived state (balances, dues, family aggregates) must be reproducible by
// replaying these, which is what the ledger verification job does.
type AppliedEffects struct {
	Accounts              []AccountChange `json:"accounts,omitempty"`
	Parties               []PartyChange   `json:"parties,omitempty"`
	FamilyHolderIDs       []string        `json:"familyHolderIDs,omitempty"`
	LinkedExchangeEventID string          `json:"linkedExchangeEventID,omitempty"`
}

// Validate checks structural invariants that hold regardless of ledger state.
func (t TransactionRecord) Validate() error {
	switch t.Kind {
	case Credit, Debit, Transfer:
	default:
		return errors.New("unknown transaction kind")
	}
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("amount must be positive")
	}
	if t.Fee.IsNegative() {
		return errors.New("fee must not be negative")
	}
	if t.Kind == Transfer {
		if t.SourceAccountID == "" || t.TargetAccountID == "" {
			return errors.New("transfer requires both source and target accounts")
		}
		if t.SourceAccountID == t.TargetAccountID {
			return errors.New("transfer requires two distinct accounts")
		}
	} else if t.TargetAccountID == "" {
		return errors.New("target account is required")
	}
	return nil
}
