package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/arafah-soft/agency_erp/internal/apperrors"
	"github.com/arafah-soft/agency_erp/internal/core/domain"
	portssvc "github.com/arafah-soft/agency_erp/internal/core/ports/services"
	"github.com/arafah-soft/agency_erp/internal/core/services"
	"github.com/arafah-soft/agency_erp/internal/dto"
	"github.com/arafah-soft/agency_erp/internal/repositories/memory"
)

type ExchangeServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	store    *memory.Store
	exchange portssvc.ExchangeSvcFacade
	ledger   portssvc.LedgerSvcFacade
}

func TestExchangeServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExchangeServiceTestSuite))
}

func (s *ExchangeServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	s.exchange = services.NewExchangeService(s.store, s.store)
	s.ledger = services.NewLedgerService(s.store)

	s.store.SeedParty(domain.Party{
		PartyID:  "counter-1",
		Kind:     domain.PartyCurrencyCounter,
		Name:     "SAR Counter",
		IsActive: true,
	})
}

func (s *ExchangeServiceTestSuite) buy(quantity, rate int64) *domain.ExchangeEvent {
	event, err := s.exchange.ApplyExchangeEvent(s.ctx, "counter-1", dto.ExchangeEventRequest{
		Type: domain.ExchangeBuy, Quantity: dec(quantity), Rate: dec(rate),
	}, "user-1")
	s.Require().NoError(err)
	return event
}

func (s *ExchangeServiceTestSuite) sell(quantity, rate int64) (*domain.ExchangeEvent, error) {
	return s.exchange.ApplyExchangeEvent(s.ctx, "counter-1", dto.ExchangeEventRequest{
		Type: domain.ExchangeSell, Quantity: dec(quantity), Rate: dec(rate),
	}, "user-1")
}

func (s *ExchangeServiceTestSuite) TestBuyThenSellRealizesProfit() {
	s.buy(100, 110)

	event, err := s.sell(40, 115)
	require.NoError(s.T(), err)
	assert.True(s.T(), event.Revenue.Equal(dec(4600)))
	assert.True(s.T(), event.CostOfGoodsSold.Equal(dec(4400)))
	assert.True(s.T(), event.RealizedProfitLoss.Equal(dec(200)))

	summary, err := s.exchange.Summary(s.ctx, "counter-1")
	require.NoError(s.T(), err)
	assert.True(s.T(), summary.TotalBought.Equal(dec(100)))
	assert.True(s.T(), summary.TotalSold.Equal(dec(40)))
	assert.True(s.T(), summary.CurrentReserveQuantity.Equal(dec(60)))
	assert.True(s.T(), summary.WeightedAverageCost.Equal(dec(110)))
	assert.True(s.T(), summary.RealizedProfitLoss.Equal(dec(200)))
}

func (s *ExchangeServiceTestSuite) TestSellConsumesLotsOldestFirst() {
	s.buy(50, 100)
	s.buy(50, 120)

	// 50 units from the first lot, 10 from the second.
	event, err := s.sell(60, 130)
	require.NoError(s.T(), err)
	assert.True(s.T(), event.CostOfGoodsSold.Equal(dec(6200)))
	assert.True(s.T(), event.RealizedProfitLoss.Equal(dec(1600)))

	summary, err := s.exchange.Summary(s.ctx, "counter-1")
	require.NoError(s.T(), err)
	assert.True(s.T(), summary.CurrentReserveQuantity.Equal(dec(40)))
	// Only the newer lot remains.
	assert.True(s.T(), summary.WeightedAverageCost.Equal(dec(120)))
}

func (s *ExchangeServiceTestSuite) TestOversellRejectedWhole() {
	s.buy(100, 110)

	_, err := s.sell(200, 115)
	require.ErrorIs(s.T(), err, apperrors.ErrInsufficientBalance)

	// Nothing was consumed and no event recorded.
	summary, err := s.exchange.Summary(s.ctx, "counter-1")
	require.NoError(s.T(), err)
	assert.True(s.T(), summary.CurrentReserveQuantity.Equal(dec(100)))
	assert.True(s.T(), summary.TotalSold.IsZero())
}

func (s *ExchangeServiceTestSuite) TestRejectsNonPositiveQuantityAndRate() {
	_, err := s.exchange.ApplyExchangeEvent(s.ctx, "counter-1", dto.ExchangeEventRequest{
		Type: domain.ExchangeBuy, Quantity: dec(0), Rate: dec(100),
	}, "user-1")
	assert.ErrorIs(s.T(), err, apperrors.ErrValidation)

	_, err = s.exchange.ApplyExchangeEvent(s.ctx, "counter-1", dto.ExchangeEventRequest{
		Type: domain.ExchangeBuy, Quantity: dec(10), Rate: dec(-1),
	}, "user-1")
	assert.ErrorIs(s.T(), err, apperrors.ErrValidation)
}

func (s *ExchangeServiceTestSuite) TestUnknownCounterRejected() {
	_, err := s.exchange.ApplyExchangeEvent(s.ctx, "counter-missing", dto.ExchangeEventRequest{
		Type: domain.ExchangeBuy, Quantity: dec(10), Rate: dec(100),
	}, "user-1")
	assert.ErrorIs(s.T(), err, apperrors.ErrNotFound)
}

func (s *ExchangeServiceTestSuite) TestSettlementLinksOldestEventAndReversalUnlinks() {
	s.store.SeedAccount(domain.BankAccount{
		AccountID: "acc-fx", AccountNumber: "AC-FX", Name: "FX Cash",
		CurrencyCode: "BDT", Balance: dec(0), IsActive: true,
	})
	first := s.buy(100, 110)
	second := s.buy(50, 112)

	res, err := s.ledger.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		TransactionType: domain.Credit,
		Amount:          dec(11000),
		PartyType:       domain.PartyCurrencyCounter,
		PartyID:         "counter-1",
		TargetAccountID: "acc-fx",
		ServiceCategory: domain.CategoryExchange,
	}, "user-1")
	require.NoError(s.T(), err)
	require.NotNil(s.T(), res.Record.Applied)
	assert.Equal(s.T(), first.EventID, res.Record.Applied.LinkedExchangeEventID)

	events, err := s.store.ListExchangeEvents(s.ctx, "counter-1", 10, 0)
	require.NoError(s.T(), err)
	require.Len(s.T(), events, 2)
	assert.Equal(s.T(), res.Record.TransactionID, events[0].LinkedTransactionID)
	assert.Empty(s.T(), events[1].LinkedTransactionID)
	assert.Equal(s.T(), second.EventID, events[1].EventID)

	require.NoError(s.T(), s.ledger.DeleteTransaction(s.ctx, res.Record.TransactionID, "user-1"))
	events, err = s.store.ListExchangeEvents(s.ctx, "counter-1", 10, 0)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), events[0].LinkedTransactionID)
}
