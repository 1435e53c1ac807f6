package services

import (
	"context"

	"github.com/arafah-soft/agency_erp/internal/core/domain"
	"github.com/arafah-soft/agency_erp/internal/dto"
)

// AccountSvcFacade manages bank/cash accounts.
type AccountSvcFacade interface {
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.BankAccount, error)
	GetAccountByID(ctx context.Context, accountID string) (*domain.BankAccount, error)
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.BankAccount, error)
	ListAccountHistory(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.AccountHistoryEntry, *string, error)
}
