package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyLot is a batch of purchased foreign currency, consumed oldest-first
// on sale. PurchaseCost is the full cost of the original quantity.
type CurrencyLot struct {
	LotID             string          `json:"lotID"`
	CounterID         string          `json:"counterID"` // currency_counter party
	QuantityRemaining decimal.Decimal `json:"quantityRemaining"`
	PurchaseRate      decimal.Decimal `json:"purchaseRate"`
	PurchaseCost      decimal.Decimal `json:"purchaseCost"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// ExchangeEventType says which side of the counter an event is.
type ExchangeEventType string

const (
	ExchangeBuy  ExchangeEventType = "BUY"
	ExchangeSell ExchangeEventType = "SELL"
)

// ExchangeEvent is the append-only record of one buy or sell at a counter.
// Sell events carry the FIFO costing result.
type ExchangeEvent struct {
	EventID             string            `json:"eventID"`
	CounterID           string            `json:"counterID"`
	Type                ExchangeEventType `json:"type"`
	Quantity            decimal.Decimal   `json:"quantity"`
	Rate                decimal.Decimal   `json:"rate"`
	Revenue             decimal.Decimal   `json:"revenue"` // Sell only: Quantity * Rate
	CostOfGoodsSold     decimal.Decimal   `json:"costOfGoodsSold"`
	RealizedProfitLoss  decimal.Decimal   `json:"realizedProfitLoss"`
	LinkedTransactionID string            `json:"linkedTransactionID,omitempty"`
	CreatedAt           time.Time         `json:"createdAt"`
}

// CurrencyInventorySummary is the read-time view over a counter's lots and events.
type CurrencyInventorySummary struct {
	CounterID              string          `json:"counterID"`
	TotalBought            decimal.Decimal `json:"totalBought"`
	TotalSold              decimal.Decimal `json:"totalSold"`
	CurrentReserveQuantity decimal.Decimal `json:"currentReserveQuantity"`
	WeightedAverageCost    decimal.Decimal `json:"weightedAverageCost"`
	RealizedProfitLoss     decimal.Decimal `json:"realizedProfitLoss"`
}
