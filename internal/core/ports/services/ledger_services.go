package services

import (
	"context"

	"github.com/arafah-soft/agency_erp/internal/core/domain"
	portsrepo "github.com/arafah-soft/agency_erp/internal/core/ports/repositories"
	"github.com/arafah-soft/agency_erp/internal/dto"
	"github.com/shopspring/decimal"
)

// TransactionResult is a completed ledger operation: the record plus fresh
// snapshots of every account and party it mutated.
type TransactionResult struct {
	Record   domain.TransactionRecord
	Accounts []domain.BankAccount
	Parties  []domain.Party
}

// LedgerSvcFacade is the money-movement core: create, idempotent complete,
// exact reversal, and windowed listing with aggregates.
type LedgerSvcFacade interface {
	CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, creatorUserID string) (*TransactionResult, error)
	CompleteTransaction(ctx context.Context, transactionID string, overrideAmount *decimal.Decimal, userID string) (*TransactionResult, error)
	DeleteTransaction(ctx context.Context, transactionID string, userID string) error
	GetTransactionByID(ctx context.Context, transactionID string) (*domain.TransactionRecord, error)
	ListTransactions(ctx context.Context, params dto.ListTransactionsParams) ([]domain.TransactionRecord, *string, portsrepo.LedgerTotals, error)
}
