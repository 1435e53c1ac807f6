package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arafah-soft/agency_erp/internal/apperrors"
	"github.com/arafah-soft/agency_erp/internal/core/domain"
	portsrepo "github.com/arafah-soft/agency_erp/internal/core/ports/repositories"
	portssvc "github.com/arafah-soft/agency_erp/internal/core/ports/services"
	"github.com/arafah-soft/agency_erp/internal/dto"
	"github.com/arafah-soft/agency_erp/internal/middleware"
)

type accountService struct {
	accountRepo portsrepo.AccountRepository
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepository) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount registers a bank/cash account. The opening balance becomes
// both the current balance and the baseline for ledger verification.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.BankAccount, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.OpeningBalance.IsNegative() {
		return nil, fmt.Errorf("%w: opening balance cannot be negative", apperrors.ErrValidation)
	}

	existing, err := s.accountRepo.FindAccountByNumber(ctx, req.AccountNumber)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check account number %s: %w", req.AccountNumber, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: account number %s", apperrors.ErrDuplicate, req.AccountNumber)
	}

	now := time.Now().UTC()
	account := domain.BankAccount{
		AccountID:      uuid.NewString(),
		AccountNumber:  req.AccountNumber,
		Name:           req.Name,
		CurrencyCode:   req.CurrencyCode,
		OpeningBalance: req.OpeningBalance,
		Balance:        req.OpeningBalance,
		IsActive:       true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created", "account_id", account.AccountID, "account_number", account.AccountNumber)
	return &account, nil
}

// GetAccountByID returns one account.
func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.BankAccount, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return account, nil
}

// ListAccounts returns one page of accounts.
func (s *accountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.BankAccount, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.accountRepo.ListAccounts(ctx, limit, offset)
}

// ListAccountHistory returns one page of an account's balance history,
// newest first.
func (s *accountService) ListAccountHistory(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.AccountHistoryEntry, *string, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return s.accountRepo.ListAccountHistory(ctx, accountID, limit, nextToken)
}
