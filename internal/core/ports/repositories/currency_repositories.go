package repositories

import (
	"context"

	"github.com/arafah-soft/agency_erp/internal/core/domain"
)

// CurrencyRepository covers read-side access to lots and exchange events.
// All mutation goes through the LedgerUnitOfWork.
type CurrencyRepository interface {
	ListLots(ctx context.Context, counterID string) ([]domain.CurrencyLot, error)
	ListExchangeEvents(ctx context.Context, counterID string, limit int, offset int) ([]domain.ExchangeEvent, error)
}
