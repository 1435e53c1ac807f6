package services

import (
	"context"

	"github.com/arafah-soft/agency_erp/internal/core/domain"
	"github.com/arafah-soft/agency_erp/internal/dto"
)

// ExchangeSvcFacade is the FIFO currency inventory at a counter.
type ExchangeSvcFacade interface {
	ApplyExchangeEvent(ctx context.Context, counterID string, req dto.ExchangeEventRequest, userID string) (*domain.ExchangeEvent, error)
	Summary(ctx context.Context, counterID string) (*domain.CurrencyInventorySummary, error)
}
