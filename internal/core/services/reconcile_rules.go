package services

import (
	"fmt"

	"github.com/arafah-soft/agency_erp/internal/core/domain"
	"github.com/shopspring/decimal"
)

// partyEffect is the raw, pre-clamp delta a transaction applies to a party's
// balance fields. Due-increasing rules raise TotalAmount, due-decreasing rules
// raise PaidAmount, so TotalDue = max(TotalAmount - PaidAmount, 0) holds by
// construction.
type partyEffect struct {
	TotalDelta     decimal.Decimal
	PaidDelta      decimal.Decimal
	PrincipalDelta decimal.Decimal
	// DueDelta is the signed change to category-specific due fields.
	DueDelta decimal.Decimal
	// IncomingPayment marks credits that represent money received from the
	// party; these propagate a paid increment to a mirror record.
	IncomingPayment bool
}

// reconcileEffect returns the balance effect of a credit or debit on a party.
// The mapping is a closed table over PartyKind (and LoanDirection for loans);
// an unknown combination is a bug, not a fallback.
func reconcileEffect(party *domain.Party, txKind domain.TransactionKind, amount decimal.Decimal) (partyEffect, error) {
	var eff partyEffect
	isDebit := txKind == domain.Debit

	switch party.Kind {
	case domain.PartyCustomer, domain.PartyPilgrim, domain.PartyCurrencyCounter:
		// Debit: we delivered service/cash, they owe more.
		// Credit: they paid us.
		if isDebit {
			eff.TotalDelta = amount
			eff.DueDelta = amount
		} else {
			eff.PaidDelta = amount
			eff.DueDelta = amount.Neg()
			eff.IncomingPayment = true
		}
	case domain.PartyAgent:
		if isDebit {
			eff.TotalDelta = amount
			eff.DueDelta = amount
		} else {
			// Agent deposit counts as paid.
			eff.PaidDelta = amount
			eff.DueDelta = amount.Neg()
			eff.IncomingPayment = true
		}
	case domain.PartyVendor:
		// Debit: we paid the vendor, we owe less.
		// Credit: vendor billed us, we owe more.
		if isDebit {
			eff.PaidDelta = amount
			eff.DueDelta = amount.Neg()
		} else {
			eff.TotalDelta = amount
			eff.DueDelta = amount
		}
	case domain.PartyLoan:
		switch party.LoanDirection {
		case domain.LoanGiving:
			if isDebit {
				// Disbursing more principal to the borrower.
				eff.TotalDelta = amount
				eff.PrincipalDelta = amount
				eff.DueDelta = amount
			} else {
				// Borrower repayment.
				eff.PaidDelta = amount
				eff.DueDelta = amount.Neg()
				eff.IncomingPayment = true
			}
		case domain.LoanReceiving:
			if isDebit {
				// We repay the lender.
				eff.PaidDelta = amount
				eff.DueDelta = amount.Neg()
			} else {
				// Lender disburses more principal to us.
				eff.TotalDelta = amount
				eff.PrincipalDelta = amount
				eff.DueDelta = amount
			}
		default:
			return eff, fmt.Errorf("loan party %s has unknown direction %q", party.PartyID, party.LoanDirection)
		}
	default:
		return eff, fmt.Errorf("unknown party kind %q for party %s", party.Kind, party.PartyID)
	}

	return eff, nil
}

// mirrorKind returns the party kind that can hold a mirror record for k, or
// empty when k has no mirror. Pilgrims are frequently also plain customers
// (ticketing) under the same external code.
func mirrorKind(k domain.PartyKind) domain.PartyKind {
	switch k {
	case domain.PartyPilgrim:
		return domain.PartyCustomer
	case domain.PartyCustomer:
		return domain.PartyPilgrim
	}
	return ""
}

// reclassifyHint maps a service category to the party kind that most
// specifically serves it. Used as an overridable convenience lookup when
// resolving the party of a new transaction, never as a classifier.
func reclassifyHint(c domain.ServiceCategory) domain.PartyKind {
	switch c {
	case domain.CategoryHajj, domain.CategoryUmrah:
		return domain.PartyPilgrim
	case domain.CategoryTicket:
		return domain.PartyCustomer
	case domain.CategoryLoan:
		return domain.PartyLoan
	case domain.CategoryExchange:
		return domain.PartyCurrencyCounter
	}
	return ""
}
