package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
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

func dec(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

type LedgerServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	store  *memory.Store
	ledger portssvc.LedgerSvcFacade
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	s.ledger = services.NewLedgerService(s.store)
}

func (s *LedgerServiceTestSuite) seedAccount(id string, balance int64) {
	s.store.SeedAccount(domain.BankAccount{
		AccountID:      id,
		AccountNumber:  "AC-" + id,
		Name:           "Account " + id,
		CurrencyCode:   "BDT",
		OpeningBalance: dec(balance),
		Balance:        dec(balance),
		IsActive:       true,
	})
}

func (s *LedgerServiceTestSuite) seedParty(p domain.Party) {
	if p.OpeningTotal.IsZero() {
		p.OpeningTotal = p.TotalAmount
	}
	p.TotalDue = domain.MaxZero(p.TotalAmount.Sub(p.PaidAmount))
	p.IsActive = true
	s.store.SeedParty(p)
}

func (s *LedgerServiceTestSuite) mustParty(kind domain.PartyKind, id string) domain.Party {
	p, err := s.store.FindPartyByID(s.ctx, kind, id)
	s.Require().NoError(err)
	return *p
}

func (s *LedgerServiceTestSuite) TestCreditToCustomerAppliesBalanceAndDue() {
	s.seedAccount("acc-main", 1000)
	s.seedParty(domain.Party{PartyID: "cust-1", Kind: domain.PartyCustomer, Name: "Rahim", TotalAmount: dec(5000)})

	res, err := s.ledger.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		TransactionType: domain.Credit,
		Amount:          dec(2000),
		PartyType:       domain.PartyCustomer,
		PartyID:         "cust-1",
		TargetAccountID: "acc-main",
	}, "user-1")
	require.NoError(s.T(), err)

	assert.Equal(s.T(), domain.Completed, res.Record.Status)
	assert.Equal(s.T(), "TXN-000001", res.Record.TransactionNo)
	assert.NotNil(s.T(), res.Record.CompletedAt)
	assert.True(s.T(), s.store.AccountBalance("acc-main").Equal(dec(3000)))

	cust := s.mustParty(domain.PartyCustomer, "cust-1")
	assert.True(s.T(), cust.PaidAmount.Equal(dec(2000)))
	assert.True(s.T(), cust.TotalDue.Equal(dec(3000)))

	// Snapshots of everything the transaction touched come back with it.
	require.Len(s.T(), res.Accounts, 1)
	assert.True(s.T(), res.Accounts[0].Balance.Equal(dec(3000)))
	require.Len(s.T(), res.Parties, 1)
	assert.Equal(s.T(), "cust-1", res.Parties[0].PartyID)
}

func (s *LedgerServiceTestSuite) TestTransactionNumbersAreSequential() {
	s.seedAccount("acc-main", 0)

	for i, want := range []string{"TXN-000001", "TXN-000002", "TXN-000003"} {
		res, err := s.ledger.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
			TransactionType: domain.Credit,
			Amount:          dec(int64(100 + i)),
			TargetAccountID: "acc-main",
		}, "user-1")
		require.NoError(s.T(), err)
		assert.Equal(s.T(), want, res.Record.TransactionNo)
	}
}

func (s *LedgerServiceTestSuite) TestDebitInsufficientBalanceLeavesNoTrace() {
	s.seedAccount("acc-main", 100)

	_, err := s.ledger.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		TransactionType: domain.Debit,
		Amount:          dec(150),
		TargetAccountID: "acc-main",
	}, "user-1")
	require.ErrorIs(s.T(), err, apperrors.ErrInsufficientBalance)

	assert.True(s.T(), s.store.AccountBalance("acc-main").Equal(dec(100)))
	assert.Empty(s.T(), s.store.HistoryFor("acc-main"))

	records, _, _, err := s.ledger.ListTransactions(s.ctx, dto.ListTransactionsParams{})
	require.NoError(s.T(), err)
	assert.Empty(s.T(), records)
}

func (s *LedgerServiceTestSuite) TestTransferChargesFeeToSource() {
	s.seedAccount("acc-a", 1000)
	s.seedAccount("acc-b", 0)

	res, err := s.ledger.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		TransactionType: domain.Transfer,
		Amount:          dec(300),
		Fee:             dec(10),
		FromAccountID:   "acc-a",
		ToAccountID:     "acc-b",
	}, "user-1")
	require.NoError(s.T(), err)

	assert.True(s.T(), s.store.AccountBalance("acc-a").Equal(dec(690)))
	assert.True(s.T(), s.store.AccountBalance("acc-b").Equal(dec(300)))
	assert.Len(s.T(), res.Accounts, 2)

	historyA := s.store.HistoryFor("acc-a")
	require.Len(s.T(), historyA, 1)
	assert.Equal(s.T(), domain.EntryOut, historyA[0].Direction)
	assert.True(s.T(), historyA[0].Amount.Equal(dec(310)))

	historyB := s.store.HistoryFor("acc-b")
	require.Len(s.T(), historyB, 1)
	assert.Equal(s.T(), domain.EntryIn, historyB[0].Direction)
	assert.True(s.T(), historyB[0].Amount.Equal(dec(300)))
}

func (s *LedgerServiceTestSuite) TestTransferToSameAccountRejected() {
	s.seedAccount("acc-a", 1000)

	_, err := s.ledger.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		TransactionType: domain.Transfer,
		Amount:          dec(100),
		FromAccountID:   "acc-a",
		ToAccountID:     "acc-a",
	}, "user-1")
	assert.ErrorIs(s.T(), err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestPartyRequiredForCustomerKinds() {
	s.seedAccount("acc-main", 0)

	for _, kind := range []domain.PartyKind{domain.PartyCustomer, domain.PartyPilgrim, domain.PartyLoan} {
		_, err := s.ledger.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
			TransactionType: domain.Credit,
			Amount:          dec(100),
			PartyType:       kind,
			TargetAccountID: "acc-main",
		}, "user-1")
		assert.ErrorIs(s.T(), err, apperrors.ErrValidation, "kind %s", kind)
	}
}

func (s *LedgerServiceTestSuite) TestUnknownPartyFailsBeforeAccountMoves() {
	s.seedAccount("acc-main", 1000)

	_, err := s.ledger.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		TransactionType: domain.Credit,
		Amount:          dec(100),
		PartyType:       domain.PartyCustomer,
		PartyID:         "nobody",
		TargetAccountID: "acc-main",
	}, "user-1")
	require.ErrorIs(s.T(), err, apperrors.ErrNotFound)
	assert.True(s.T(), s.store.AccountBalance("acc-main").Equal(dec(1000)))
	assert.Empty(s.T(), s.store.HistoryFor("acc-main"))
}

func (s *LedgerServiceTestSuite) TestDraftThenCompleteIsIdempotent() {
	s.seedAccount("acc-main", 1000)

	res, err := s.ledger.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		TransactionType: domain.Credit,
		Amount:          dec(500),
		TargetAccountID: "acc-main",
		Draft:           true,
	}, "user-1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), domain.Pending, res.Record.Status)
	assert.True(s.T(), s.store.AccountBalance("acc-main").Equal(dec(1000)))

	completed, err := s.ledger.CompleteTransaction(s.ctx, res.Record.TransactionID, nil, "user-2")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), domain.Completed, completed.Record.Status)
	assert.True(s.T(), s.store.AccountBalance("acc-main").Equal(dec(1500)))

	// Completing again applies nothing.
	again, err := s.ledger.CompleteTransaction(s.ctx, res.Record.TransactionID, nil, "user-2")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), domain.Completed, again.Record.Status)
	assert.Empty(s.T(), again.Accounts)
	assert.True(s.T(), s.store.AccountBalance("acc-main").Equal(dec(1500)))
}

func (s *LedgerServiceTestSuite) TestCompleteWithOverrideAmount() {
	s.seedAccount("acc-main", 0)

	res, err := s.ledger.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		TransactionType: domain.Credit,
		Amount:          dec(500),
		TargetAccountID: "acc-main",
		Draft:           true,
	}, "user-1")
	require.NoError(s.T(), err)

	override := dec(800)
	completed, err := s.ledger.CompleteTransaction(s.ctx, res.Record.TransactionID, &override, "user-1")
	require.NoError(s.T(), err)
	assert.True(s.T(), completed.Record.Amount.Equal(dec(800)))
	assert.True(s.T(), s.store.AccountBalance("acc-main").Equal(dec(800)))

	bad := dec(-1)
	_, err = s.ledger.CompleteTransaction(s.ctx, res.Record.TransactionID, &bad, "user-1")
	assert.ErrorIs(s.T(), err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestDeleteRestoresExactPriorState() {
	s.seedAccount("acc-main", 1000)
	s.seedParty(domain.Party{
		PartyID:     "cust-1",
		Kind:        domain.PartyCustomer,
		Name:        "Karim",
		TotalAmount: dec(5000),
		HajjDue:     dec(1000),
	})

	res, err := s.ledger.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		TransactionType: domain.Credit,
		Amount:          dec(2000),
		PartyType:       domain.PartyCustomer,
		PartyID:         "cust-1",
		TargetAccountID: "acc-main",
		ServiceCategory: domain.CategoryHajj,
		// The customer record itself must take the hit.
		DisableReclassify: true,
	}, "user-1")
	require.NoError(s.T(), err)

	cust := s.mustParty(domain.PartyCustomer, "cust-1")
	assert.True(s.T(), cust.PaidAmount.Equal(dec(2000)))
	assert.True(s.T(), cust.TotalDue.Equal(dec(3000)))
	// The raw -2000 on HajjDue was clamped at zero; only -1000 applied.
	assert.True(s.T(), cust.HajjDue.IsZero())

	require.NoError(s.T(), s.ledger.DeleteTransaction(s.ctx, res.Record.TransactionID, "user-2"))

	assert.True(s.T(), s.store.AccountBalance("acc-main").Equal(dec(1000)))
	cust = s.mustParty(domain.PartyCustomer, "cust-1")
	assert.True(s.T(), cust.TotalAmount.Equal(dec(5000)))
	assert.True(s.T(), cust.PaidAmount.IsZero())
	assert.True(s.T(), cust.TotalDue.Equal(dec(5000)))
	// Reversal undoes the post-clamp delta, not the raw one.
	assert.True(s.T(), cust.HajjDue.Equal(dec(1000)))

	record, err := s.ledger.GetTransactionByID(s.ctx, res.Record.TransactionID)
	require.NoError(s.T(), err)
	assert.False(s.T(), record.IsActive)

	// The reversal leaves its own audit trail in the account history.
	history := s.store.HistoryFor("acc-main")
	require.Len(s.T(), history, 2)
	assert.Equal(s.T(), domain.EntryOut, history[1].Direction)
	assert.Contains(s.T(), history[1].Note, "Reversal of "+res.Record.TransactionNo)
}

func (s *LedgerServiceTestSuite) TestDeleteTwiceAndCompleteReversedConflict() {
	s.seedAccount("acc-main", 1000)

	res, err := s.ledger.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		TransactionType: domain.Credit,
		Amount:          dec(100),
		TargetAccountID: "acc-main",
	}, "user-1")
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.ledger.DeleteTransaction(s.ctx, res.Record.TransactionID, "user-1"))
	assert.ErrorIs(s.T(), s.ledger.DeleteTransaction(s.ctx, res.Record.TransactionID, "user-1"), apperrors.ErrConflict)

	_, err = s.ledger.CompleteTransaction(s.ctx, res.Record.TransactionID, nil, "user-1")
	assert.ErrorIs(s.T(), err, apperrors.ErrConflict)
}

func (s *LedgerServiceTestSuite) TestDeleteDraftSkipsReversal() {
	s.seedAccount("acc-main", 1000)

	res, err := s.ledger.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		TransactionType: domain.Credit,
		Amount:          dec(100),
		TargetAccountID: "acc-main",
		Draft:           true,
	}, "user-1")
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.ledger.DeleteTransaction(s.ctx, res.Record.TransactionID, "user-1"))
	assert.True(s.T(), s.store.AccountBalance("acc-main").Equal(dec(1000)))
	assert.Empty(s.T(), s.store.HistoryFor("acc-main"))
}

func (s *LedgerServiceTestSuite) TestHajjCategoryReclassifiesToPilgrim() {
	s.seedAccount("acc-main", 0)
	s.seedParty(domain.Party{PartyID: "pil-1", Kind: domain.PartyPilgrim, Name: "Fatema", TotalAmount: dec(4000)})

	res, err := s.ledger.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		TransactionType: domain.Credit,
		Amount:          dec(1000),
		PartyType:       domain.PartyCustomer,
		PartyID:         "pil-1",
		TargetAccountID: "acc-main",
		ServiceCategory: domain.CategoryHajj,
	}, "user-1")
	require.NoError(s.T(), err)

	assert.Equal(s.T(), domain.PartyPilgrim, res.Record.PartyKind)
	pil := s.mustParty(domain.PartyPilgrim, "pil-1")
	assert.True(s.T(), pil.PaidAmount.Equal(dec(1000)))
}

func (s *LedgerServiceTestSuite) TestDraftCompleteKeepsReclassifyOptOut() {
	s.seedAccount("acc-main", 0)
	// A pilgrim whose id collides with the customer's code: the hajj hint would
	// resolve it first if reclassification ran.
	s.seedParty(domain.Party{PartyID: "V-9", Kind: domain.PartyPilgrim, Name: "Fatema", TotalAmount: dec(4000)})
	s.seedParty(domain.Party{PartyID: "cust-1", Kind: domain.PartyCustomer, Name: "Fatema", ExternalCode: "V-9", TotalAmount: dec(4000)})

	res, err := s.ledger.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		TransactionType:   domain.Credit,
		Amount:            dec(1000),
		PartyType:         domain.PartyCustomer,
		PartyID:           "V-9",
		TargetAccountID:   "acc-main",
		ServiceCategory:   domain.CategoryHajj,
		DisableReclassify: true,
		Draft:             true,
	}, "user-1")
	require.NoError(s.T(), err)

	done, err := s.ledger.CompleteTransaction(s.ctx, res.Record.TransactionID, nil, "user-1")
	require.NoError(s.T(), err)

	// The opt-out chosen at creation still pins the kind at completion; the
	// hajj hint must not divert the payment to the pilgrim record.
	assert.Equal(s.T(), domain.PartyCustomer, done.Record.PartyKind)
	assert.Equal(s.T(), "cust-1", done.Record.PartyID)
	cust := s.mustParty(domain.PartyCustomer, "cust-1")
	assert.True(s.T(), cust.PaidAmount.Equal(dec(1000)))
	pil := s.mustParty(domain.PartyPilgrim, "V-9")
	assert.True(s.T(), pil.PaidAmount.IsZero())
}

func (s *LedgerServiceTestSuite) TestPartyResolvedByExternalCode() {
	s.seedAccount("acc-main", 0)
	s.seedParty(domain.Party{PartyID: "cust-9", Kind: domain.PartyCustomer, Name: "Jasim", ExternalCode: "V-200", TotalAmount: dec(700)})

	res, err := s.ledger.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		TransactionType: domain.Credit,
		Amount:          dec(700),
		PartyType:       domain.PartyCustomer,
		PartyID:         "V-200",
		TargetAccountID: "acc-main",
	}, "user-1")
	require.NoError(s.T(), err)

	// The record stores the resolved internal id, not the code.
	assert.Equal(s.T(), "cust-9", res.Record.PartyID)
	cust := s.mustParty(domain.PartyCustomer, "cust-9")
	assert.True(s.T(), cust.TotalDue.IsZero())
}

func (s *LedgerServiceTestSuite) TestMirrorPaidPropagationAndReversal() {
	s.seedAccount("acc-main", 0)
	s.seedParty(domain.Party{PartyID: "pil-1", Kind: domain.PartyPilgrim, Name: "Nasrin", ExternalCode: "V-100", TotalAmount: dec(5000)})
	s.seedParty(domain.Party{PartyID: "cust-m", Kind: domain.PartyCustomer, Name: "Nasrin", ExternalCode: "V-100", TotalAmount: dec(800)})

	res, err := s.ledger.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		TransactionType: domain.Credit,
		Amount:          dec(1000),
		PartyType:       domain.PartyPilgrim,
		PartyID:         "pil-1",
		TargetAccountID: "acc-main",
	}, "user-1")
	require.NoError(s.T(), err)

	pil := s.mustParty(domain.PartyPilgrim, "pil-1")
	assert.True(s.T(), pil.PaidAmount.Equal(dec(1000)))

	mirror := s.mustParty(domain.PartyCustomer, "cust-m")
	assert.True(s.T(), mirror.PaidAmount.Equal(dec(1000)))
	assert.True(s.T(), mirror.TotalDue.IsZero())

	require.NoError(s.T(), s.ledger.DeleteTransaction(s.ctx, res.Record.TransactionID, "user-1"))

	pil = s.mustParty(domain.PartyPilgrim, "pil-1")
	assert.True(s.T(), pil.PaidAmount.IsZero())
	assert.True(s.T(), pil.TotalDue.Equal(dec(5000)))
	mirror = s.mustParty(domain.PartyCustomer, "cust-m")
	assert.True(s.T(), mirror.PaidAmount.IsZero())
	assert.True(s.T(), mirror.TotalDue.Equal(dec(800)))
}

func (s *LedgerServiceTestSuite) TestDebitAgainstVendorReducesOurDue() {
	s.seedAccount("acc-main", 2000)
	s.seedParty(domain.Party{PartyID: "ven-1", Kind: domain.PartyVendor, Name: "Airline GSA", TotalAmount: dec(3000)})

	_, err := s.ledger.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		TransactionType: domain.Debit,
		Amount:          dec(1200),
		PartyType:       domain.PartyVendor,
		PartyID:         "ven-1",
		TargetAccountID: "acc-main",
	}, "user-1")
	require.NoError(s.T(), err)

	assert.True(s.T(), s.store.AccountBalance("acc-main").Equal(dec(800)))
	ven := s.mustParty(domain.PartyVendor, "ven-1")
	assert.True(s.T(), ven.PaidAmount.Equal(dec(1200)))
	assert.True(s.T(), ven.TotalDue.Equal(dec(1800)))
}

func (s *LedgerServiceTestSuite) TestFamilyAggregatesFollowDependentPayments() {
	s.seedAccount("acc-main", 0)
	s.seedParty(domain.Party{PartyID: "hold-1", Kind: domain.PartyPilgrim, Name: "Holder", TotalAmount: dec(4000), FamilyTotal: dec(7000), FamilyDue: dec(7000)})
	s.seedParty(domain.Party{PartyID: "dep-1", Kind: domain.PartyPilgrim, Name: "Dependent", TotalAmount: dec(3000), PrimaryHolderID: "hold-1"})

	res, err := s.ledger.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		TransactionType: domain.Credit,
		Amount:          dec(500),
		PartyType:       domain.PartyPilgrim,
		PartyID:         "dep-1",
		TargetAccountID: "acc-main",
	}, "user-1")
	require.NoError(s.T(), err)

	holder := s.mustParty(domain.PartyPilgrim, "hold-1")
	assert.True(s.T(), holder.FamilyTotal.Equal(dec(7000)))
	assert.True(s.T(), holder.FamilyPaid.Equal(dec(500)))
	assert.True(s.T(), holder.FamilyDue.Equal(dec(6500)))

	require.NoError(s.T(), s.ledger.DeleteTransaction(s.ctx, res.Record.TransactionID, "user-1"))
	holder = s.mustParty(domain.PartyPilgrim, "hold-1")
	assert.True(s.T(), holder.FamilyPaid.IsZero())
	assert.True(s.T(), holder.FamilyDue.Equal(dec(7000)))
}

func (s *LedgerServiceTestSuite) TestBalanceEqualsOpeningPlusHistory() {
	s.seedAccount("acc-main", 1000)
	s.seedAccount("acc-b", 0)

	ops := []dto.CreateTransactionRequest{
		{TransactionType: domain.Credit, Amount: dec(400), TargetAccountID: "acc-main"},
		{TransactionType: domain.Debit, Amount: dec(250), Fee: dec(5), TargetAccountID: "acc-main"},
		{TransactionType: domain.Transfer, Amount: dec(300), Fee: dec(10), FromAccountID: "acc-main", ToAccountID: "acc-b"},
	}
	for _, op := range ops {
		_, err := s.ledger.CreateTransaction(s.ctx, op, "user-1")
		require.NoError(s.T(), err)
	}

	for _, accountID := range []string{"acc-main", "acc-b"} {
		account, err := s.store.FindAccountByID(s.ctx, accountID)
		require.NoError(s.T(), err)
		sum := account.OpeningBalance
		for _, entry := range s.store.HistoryFor(accountID) {
			sum = sum.Add(entry.SignedDelta())
		}
		assert.True(s.T(), account.Balance.Equal(sum), "account %s: balance %s, history sum %s", accountID, account.Balance, sum)
	}
}

func (s *LedgerServiceTestSuite) TestConcurrentDebitsNeverOverdraw() {
	s.seedAccount("acc-main", 100)

	const workers = 5
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.ledger.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
				TransactionType: domain.Debit,
				Amount:          dec(60),
				TargetAccountID: "acc-main",
			}, "user-1")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(s.T(), err, apperrors.ErrInsufficientBalance)
		}
	}
	assert.Equal(s.T(), 1, succeeded)
	assert.True(s.T(), s.store.AccountBalance("acc-main").Equal(dec(40)))
}

func (s *LedgerServiceTestSuite) TestListTransactionsFiltersAndTotals() {
	s.seedAccount("acc-main", 1000)
	s.seedAccount("acc-b", 0)

	_, err := s.ledger.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		TransactionType: domain.Credit, Amount: dec(500), TargetAccountID: "acc-main",
	}, "user-1")
	require.NoError(s.T(), err)
	_, err = s.ledger.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		TransactionType: domain.Debit, Amount: dec(200), TargetAccountID: "acc-main",
	}, "user-1")
	require.NoError(s.T(), err)
	_, err = s.ledger.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		TransactionType: domain.Transfer, Amount: dec(100), FromAccountID: "acc-main", ToAccountID: "acc-b",
	}, "user-1")
	require.NoError(s.T(), err)

	records, _, totals, err := s.ledger.ListTransactions(s.ctx, dto.ListTransactionsParams{})
	require.NoError(s.T(), err)
	assert.Len(s.T(), records, 3)
	assert.True(s.T(), totals.CreditTotal.Equal(dec(500)))
	assert.True(s.T(), totals.DebitTotal.Equal(dec(200)))

	credits, _, _, err := s.ledger.ListTransactions(s.ctx, dto.ListTransactionsParams{Kind: domain.Credit})
	require.NoError(s.T(), err)
	require.Len(s.T(), credits, 1)
	assert.True(s.T(), credits[0].Amount.Equal(dec(500)))

	byAccount, _, _, err := s.ledger.ListTransactions(s.ctx, dto.ListTransactionsParams{AccountID: "acc-b"})
	require.NoError(s.T(), err)
	assert.Len(s.T(), byAccount, 1)
}

func (s *LedgerServiceTestSuite) TestListTransactionsPagination() {
	s.seedAccount("acc-main", 0)

	for i := 0; i < 5; i++ {
		_, err := s.ledger.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
			TransactionType: domain.Credit, Amount: dec(int64(10 + i)), TargetAccountID: "acc-main",
		}, "user-1")
		require.NoError(s.T(), err)
	}

	seen := make(map[string]bool)
	var token *string
	for {
		records, next, _, err := s.ledger.ListTransactions(s.ctx, dto.ListTransactionsParams{Limit: 2, NextToken: token})
		require.NoError(s.T(), err)
		for _, rec := range records {
			assert.False(s.T(), seen[rec.TransactionID], "transaction %s returned twice", rec.TransactionID)
			seen[rec.TransactionID] = true
		}
		if next == nil {
			break
		}
		token = next
	}
	assert.Len(s.T(), seen, 5)
}
