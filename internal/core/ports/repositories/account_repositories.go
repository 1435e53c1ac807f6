package repositories

import (
	"context"

	"github.com/arafah-soft/agency_erp/internal/core/domain"
)

// AccountRepository covers bank account reads and CRUD outside ledger units.
type AccountRepository interface {
	SaveAccount(ctx context.Context, account domain.BankAccount) error
	UpdateAccount(ctx context.Context, account domain.BankAccount) error
	FindAccountByID(ctx context.Context, accountID string) (*domain.BankAccount, error)
	FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.BankAccount, error)
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.BankAccount, error)
	ListAccountHistory(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.AccountHistoryEntry, *string, error)
}
