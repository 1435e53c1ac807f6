package repositories

import (
	"context"
	"time"

	"github.com/arafah-soft/agency_erp/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerUnitOfWork is the mutation surface available inside one atomic ledger
// operation. Every read returning a record for mutation locks it for the
// duration of the unit; writes become visible only if the whole unit commits.
type LedgerUnitOfWork interface {
	// Accounts
	AccountForUpdate(ctx context.Context, accountID string) (*domain.BankAccount, error)
	SaveAccount(ctx context.Context, account domain.BankAccount) error
	AppendAccountHistory(ctx context.Context, entry domain.AccountHistoryEntry) error

	// Parties
	PartyForUpdate(ctx context.Context, kind domain.PartyKind, partyID string) (*domain.Party, error)
	PartyByExternalCode(ctx context.Context, kind domain.PartyKind, code string) (*domain.Party, error)
	SaveParty(ctx context.Context, party domain.Party) error
	ListDependents(ctx context.Context, primaryHolderID string) ([]domain.Party, error)

	// Currency inventory
	LotsForUpdate(ctx context.Context, counterID string) ([]domain.CurrencyLot, error)
	SaveLot(ctx context.Context, lot domain.CurrencyLot) error
	DeleteLot(ctx context.Context, lotID string) error
	SaveExchangeEvent(ctx context.Context, event domain.ExchangeEvent) error
	UpdateExchangeEvent(ctx context.Context, event domain.ExchangeEvent) error
	OldestUnlinkedEvent(ctx context.Context, counterID string) (*domain.ExchangeEvent, error)
	ExchangeEventByID(ctx context.Context, eventID string) (*domain.ExchangeEvent, error)

	// Transaction records
	TransactionForUpdate(ctx context.Context, transactionID string) (*domain.TransactionRecord, error)
	SaveTransactionRecord(ctx context.Context, record domain.TransactionRecord) error
	UpdateTransactionRecord(ctx context.Context, record domain.TransactionRecord) error

	// Sequences
	NextSequence(ctx context.Context, key string) (int64, error)
}

// TransactionFilter narrows a transaction listing. Zero values mean "any".
type TransactionFilter struct {
	From            *time.Time
	To              *time.Time
	Kind            domain.TransactionKind
	PartyKind       domain.PartyKind
	PartyID         string
	AccountID       string
	ServiceCategory domain.ServiceCategory
	Status          domain.TransactionStatus
	IncludeInactive bool
	Limit           int
	NextToken       *string
}

// LedgerTotals are the aggregate sums for the filtered window of a listing.
type LedgerTotals struct {
	CreditTotal decimal.Decimal `json:"creditTotal"`
	DebitTotal  decimal.Decimal `json:"debitTotal"`
}

// LedgerRepository persists transaction records and executes atomic units.
type LedgerRepository interface {
	// Atomically runs fn inside one atomic unit. If fn returns an error the
	// unit leaves no trace; otherwise all of its writes commit together.
	Atomically(ctx context.Context, fn func(uow LedgerUnitOfWork) error) error

	FindTransactionByID(ctx context.Context, transactionID string) (*domain.TransactionRecord, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]domain.TransactionRecord, *string, LedgerTotals, error)
}
