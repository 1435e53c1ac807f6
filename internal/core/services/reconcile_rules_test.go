package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arafah-soft/agency_erp/internal/core/domain"
)

func TestReconcileEffectSignTable(t *testing.T) {
	amount := decimal.NewFromInt(100)

	tests := []struct {
		name            string
		kind            domain.PartyKind
		loanDirection   domain.LoanDirection
		txKind          domain.TransactionKind
		wantTotal       int64
		wantPaid        int64
		wantPrincipal   int64
		wantDue         int64
		wantIncomingPay bool
	}{
		{name: "customer debit raises due", kind: domain.PartyCustomer, txKind: domain.Debit, wantTotal: 100, wantDue: 100},
		{name: "customer credit pays down", kind: domain.PartyCustomer, txKind: domain.Credit, wantPaid: 100, wantDue: -100, wantIncomingPay: true},
		{name: "pilgrim debit raises due", kind: domain.PartyPilgrim, txKind: domain.Debit, wantTotal: 100, wantDue: 100},
		{name: "pilgrim credit pays down", kind: domain.PartyPilgrim, txKind: domain.Credit, wantPaid: 100, wantDue: -100, wantIncomingPay: true},
		{name: "counter debit raises due", kind: domain.PartyCurrencyCounter, txKind: domain.Debit, wantTotal: 100, wantDue: 100},
		{name: "counter credit pays down", kind: domain.PartyCurrencyCounter, txKind: domain.Credit, wantPaid: 100, wantDue: -100, wantIncomingPay: true},
		{name: "agent debit raises due", kind: domain.PartyAgent, txKind: domain.Debit, wantTotal: 100, wantDue: 100},
		{name: "agent credit is a deposit", kind: domain.PartyAgent, txKind: domain.Credit, wantPaid: 100, wantDue: -100, wantIncomingPay: true},
		{name: "vendor debit settles our debt", kind: domain.PartyVendor, txKind: domain.Debit, wantPaid: 100, wantDue: -100},
		{name: "vendor credit bills us", kind: domain.PartyVendor, txKind: domain.Credit, wantTotal: 100, wantDue: 100},
		{name: "loan giving debit disburses", kind: domain.PartyLoan, loanDirection: domain.LoanGiving, txKind: domain.Debit, wantTotal: 100, wantPrincipal: 100, wantDue: 100},
		{name: "loan giving credit is repayment", kind: domain.PartyLoan, loanDirection: domain.LoanGiving, txKind: domain.Credit, wantPaid: 100, wantDue: -100, wantIncomingPay: true},
		{name: "loan receiving debit repays lender", kind: domain.PartyLoan, loanDirection: domain.LoanReceiving, txKind: domain.Debit, wantPaid: 100, wantDue: -100},
		{name: "loan receiving credit borrows more", kind: domain.PartyLoan, loanDirection: domain.LoanReceiving, txKind: domain.Credit, wantTotal: 100, wantPrincipal: 100, wantDue: 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			party := &domain.Party{PartyID: "p-1", Kind: tc.kind, LoanDirection: tc.loanDirection}
			eff, err := reconcileEffect(party, tc.txKind, amount)
			require.NoError(t, err)

			assert.True(t, eff.TotalDelta.Equal(decimal.NewFromInt(tc.wantTotal)), "TotalDelta = %s", eff.TotalDelta)
			assert.True(t, eff.PaidDelta.Equal(decimal.NewFromInt(tc.wantPaid)), "PaidDelta = %s", eff.PaidDelta)
			assert.True(t, eff.PrincipalDelta.Equal(decimal.NewFromInt(tc.wantPrincipal)), "PrincipalDelta = %s", eff.PrincipalDelta)
			assert.True(t, eff.DueDelta.Equal(decimal.NewFromInt(tc.wantDue)), "DueDelta = %s", eff.DueDelta)
			assert.Equal(t, tc.wantIncomingPay, eff.IncomingPayment)
		})
	}
}

func TestReconcileEffectRejectsUnknownLoanDirection(t *testing.T) {
	party := &domain.Party{PartyID: "loan-1", Kind: domain.PartyLoan}
	_, err := reconcileEffect(party, domain.Debit, decimal.NewFromInt(10))
	assert.Error(t, err)
}

func TestMirrorKindIsSymmetric(t *testing.T) {
	assert.Equal(t, domain.PartyCustomer, mirrorKind(domain.PartyPilgrim))
	assert.Equal(t, domain.PartyPilgrim, mirrorKind(domain.PartyCustomer))
	assert.Empty(t, mirrorKind(domain.PartyVendor))
	assert.Empty(t, mirrorKind(domain.PartyLoan))
}

func TestReclassifyHint(t *testing.T) {
	assert.Equal(t, domain.PartyPilgrim, reclassifyHint(domain.CategoryHajj))
	assert.Equal(t, domain.PartyPilgrim, reclassifyHint(domain.CategoryUmrah))
	assert.Equal(t, domain.PartyCustomer, reclassifyHint(domain.CategoryTicket))
	assert.Equal(t, domain.PartyLoan, reclassifyHint(domain.CategoryLoan))
	assert.Equal(t, domain.PartyCurrencyCounter, reclassifyHint(domain.CategoryExchange))
	assert.Empty(t, reclassifyHint(domain.CategoryGeneral))
}
