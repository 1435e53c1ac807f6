package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arafah-soft/agency_erp/internal/apperrors"
	"github.com/arafah-soft/agency_erp/internal/core/domain"
	portsrepo "github.com/arafah-soft/agency_erp/internal/core/ports/repositories"
	portssvc "github.com/arafah-soft/agency_erp/internal/core/ports/services"
	"github.com/arafah-soft/agency_erp/internal/dto"
	"github.com/arafah-soft/agency_erp/internal/middleware"
)

// exchangeService maintains the FIFO currency inventory of each counter.
type exchangeService struct {
	ledgerRepo   portsrepo.LedgerRepository
	currencyRepo portsrepo.CurrencyRepository
}

// NewExchangeService creates a new ExchangeService.
func NewExchangeService(ledgerRepo portsrepo.LedgerRepository, currencyRepo portsrepo.CurrencyRepository) portssvc.ExchangeSvcFacade {
	return &exchangeService{ledgerRepo: ledgerRepo, currencyRepo: currencyRepo}
}

var _ portssvc.ExchangeSvcFacade = (*exchangeService)(nil)

// ApplyExchangeEvent records one buy or sell at a counter. Buys append a new
// lot; sells consume lots oldest-first and carry the realized costing result.
// A sell larger than the reserve is rejected whole.
func (s *exchangeService) ApplyExchangeEvent(ctx context.Context, counterID string, req dto.ExchangeEventRequest, userID string) (*domain.ExchangeEvent, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: quantity must be positive", apperrors.ErrValidation)
	}
	if req.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: rate must be positive", apperrors.ErrValidation)
	}

	event := &domain.ExchangeEvent{
		EventID:   uuid.NewString(),
		CounterID: counterID,
		Type:      req.Type,
		Quantity:  req.Quantity,
		Rate:      req.Rate,
		CreatedAt: now,
	}

	err := s.ledgerRepo.Atomically(ctx, func(uow portsrepo.LedgerUnitOfWork) error {
		if _, err := uow.PartyForUpdate(ctx, domain.PartyCurrencyCounter, counterID); err != nil {
			return fmt.Errorf("failed to load currency counter %s: %w", counterID, err)
		}

		switch req.Type {
		case domain.ExchangeBuy:
			lot := domain.CurrencyLot{
				LotID:             uuid.NewString(),
				CounterID:         counterID,
				QuantityRemaining: req.Quantity,
				PurchaseRate:      req.Rate,
				PurchaseCost:      req.Quantity.Mul(req.Rate),
				CreatedAt:         now,
			}
			if err := uow.SaveLot(ctx, lot); err != nil {
				return fmt.Errorf("failed to persist currency lot: %w", err)
			}
		case domain.ExchangeSell:
			costOfGoodsSold, err := consumeLots(ctx, uow, counterID, req.Quantity)
			if err != nil {
				return err
			}
			event.Revenue = req.Quantity.Mul(req.Rate)
			event.CostOfGoodsSold = costOfGoodsSold
			event.RealizedProfitLoss = event.Revenue.Sub(costOfGoodsSold)
		default:
			return fmt.Errorf("%w: unknown exchange event type %q", apperrors.ErrValidation, req.Type)
		}

		return uow.SaveExchangeEvent(ctx, *event)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Exchange event recorded",
		"event_id", event.EventID,
		"counter_id", counterID,
		"type", string(event.Type),
		"quantity", event.Quantity.String(),
	)
	return event, nil
}

// consumeLots drains the counter's lots oldest-first until quantity is covered
// and returns the cost of the consumed units. Lots are expected oldest-first
// from the unit of work.
func consumeLots(ctx context.Context, uow portsrepo.LedgerUnitOfWork, counterID string, quantity decimal.Decimal) (decimal.Decimal, error) {
	lots, err := uow.LotsForUpdate(ctx, counterID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to lock lots for counter %s: %w", counterID, err)
	}

	reserve := decimal.Zero
	for _, lot := range lots {
		reserve = reserve.Add(lot.QuantityRemaining)
	}
	if reserve.LessThan(quantity) {
		return decimal.Zero, fmt.Errorf("%w: counter %s holds %s, needs %s",
			apperrors.ErrInsufficientBalance, counterID, reserve.String(), quantity.String())
	}

	costOfGoodsSold := decimal.Zero
	remaining := quantity
	for _, lot := range lots {
		if remaining.IsZero() {
			break
		}
		take := decimal.Min(lot.QuantityRemaining, remaining)
		costOfGoodsSold = costOfGoodsSold.Add(take.Mul(lot.PurchaseRate))
		remaining = remaining.Sub(take)

		lot.QuantityRemaining = lot.QuantityRemaining.Sub(take)
		if lot.QuantityRemaining.IsZero() {
			if err := uow.DeleteLot(ctx, lot.LotID); err != nil {
				return decimal.Zero, fmt.Errorf("failed to drop drained lot %s: %w", lot.LotID, err)
			}
			continue
		}
		if err := uow.SaveLot(ctx, lot); err != nil {
			return decimal.Zero, fmt.Errorf("failed to persist lot %s: %w", lot.LotID, err)
		}
	}

	return costOfGoodsSold, nil
}

// Summary derives the counter's inventory view from its lots and event log.
func (s *exchangeService) Summary(ctx context.Context, counterID string) (*domain.CurrencyInventorySummary, error) {
	lots, err := s.currencyRepo.ListLots(ctx, counterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lots for counter %s: %w", counterID, err)
	}

	summary := &domain.CurrencyInventorySummary{CounterID: counterID}
	reserveCost := decimal.Zero
	for _, lot := range lots {
		summary.CurrentReserveQuantity = summary.CurrentReserveQuantity.Add(lot.QuantityRemaining)
		reserveCost = reserveCost.Add(lot.QuantityRemaining.Mul(lot.PurchaseRate))
	}
	if summary.CurrentReserveQuantity.IsPositive() {
		summary.WeightedAverageCost = reserveCost.DivRound(summary.CurrentReserveQuantity, 8)
	}

	// Walk the full event log for the aggregate bought/sold/profit figures.
	const pageSize = 500
	for offset := 0; ; offset += pageSize {
		events, err := s.currencyRepo.ListExchangeEvents(ctx, counterID, pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to list exchange events for counter %s: %w", counterID, err)
		}
		for _, e := range events {
			switch e.Type {
			case domain.ExchangeBuy:
				summary.TotalBought = summary.TotalBought.Add(e.Quantity)
			case domain.ExchangeSell:
				summary.TotalSold = summary.TotalSold.Add(e.Quantity)
				summary.RealizedProfitLoss = summary.RealizedProfitLoss.Add(e.RealizedProfitLoss)
			}
		}
		if len(events) < pageSize {
			break
		}
	}

	return summary, nil
}
