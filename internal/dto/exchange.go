package dto

import (
	"time"

	"github.com/arafah-soft/agency_erp/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExchangeEventRequest records a buy or sell at a currency counter.
type ExchangeEventRequest struct {
	Type     domain.ExchangeEventType `json:"type" binding:"required"`
	Quantity decimal.Decimal          `json:"quantity" binding:"required"`
	Rate     decimal.Decimal          `json:"rate" binding:"required"`
}

// ExchangeEventResponse is the API representation of an exchange event.
type ExchangeEventResponse struct {
	EventID             string                   `json:"eventID"`
	CounterID           string                   `json:"counterID"`
	Type                domain.ExchangeEventType `json:"type"`
	Quantity            decimal.Decimal          `json:"quantity"`
	Rate                decimal.Decimal          `json:"rate"`
	Revenue             decimal.Decimal          `json:"revenue"`
	CostOfGoodsSold     decimal.Decimal          `json:"costOfGoodsSold"`
	RealizedProfitLoss  decimal.Decimal          `json:"realizedProfitLoss"`
	LinkedTransactionID string                   `json:"linkedTransactionID,omitempty"`
	CreatedAt           time.Time                `json:"createdAt"`
}

// ToExchangeEventResponse converts a domain exchange event.
func ToExchangeEventResponse(e *domain.ExchangeEvent) ExchangeEventResponse {
	return ExchangeEventResponse{
		EventID:             e.EventID,
		CounterID:           e.CounterID,
		Type:                e.Type,
		Quantity:            e.Quantity,
		Rate:                e.Rate,
		Revenue:             e.Revenue,
		CostOfGoodsSold:     e.CostOfGoodsSold,
		RealizedProfitLoss:  e.RealizedProfitLoss,
		LinkedTransactionID: e.LinkedTransactionID,
		CreatedAt:           e.CreatedAt,
	}
}
