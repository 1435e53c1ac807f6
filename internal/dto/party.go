package dto

import (
	"time"

	"github.com/arafah-soft/agency_erp/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreatePartyRequest creates a party of any kind. Loan fields apply to loans,
// PrimaryHolderID to pilgrim dependents.
type CreatePartyRequest struct {
	Kind            domain.PartyKind     `json:"kind" binding:"required"`
	Name            string               `json:"name" binding:"required"`
	ExternalCode    string               `json:"externalCode"`
	Phone           string               `json:"phone"`
	TotalAmount     decimal.Decimal      `json:"totalAmount"`
	LoanDirection   domain.LoanDirection `json:"loanDirection"`
	PrimaryHolderID string               `json:"primaryHolderID"`
}

// SetPrimaryHolderRequest links (or with empty PrimaryHolderID unlinks) a
// pilgrim dependent to a family primary holder.
type SetPrimaryHolderRequest struct {
	PrimaryHolderID string `json:"primaryHolderID"`
}

// PartyResponse is the API representation of a party.
type PartyResponse struct {
	PartyID         string               `json:"partyID"`
	Kind            domain.PartyKind     `json:"kind"`
	Name            string               `json:"name"`
	ExternalCode    string               `json:"externalCode,omitempty"`
	Phone           string               `json:"phone,omitempty"`
	TotalAmount     decimal.Decimal      `json:"totalAmount"`
	PaidAmount      decimal.Decimal      `json:"paidAmount"`
	TotalDue        decimal.Decimal      `json:"totalDue"`
	HajjDue         decimal.Decimal      `json:"hajjDue"`
	UmrahDue        decimal.Decimal      `json:"umrahDue"`
	TicketDue       decimal.Decimal      `json:"ticketDue"`
	LoanDirection   domain.LoanDirection `json:"loanDirection,omitempty"`
	Principal       decimal.Decimal      `json:"principal"`
	PrimaryHolderID string               `json:"primaryHolderID,omitempty"`
	FamilyTotal     decimal.Decimal      `json:"familyTotal"`
	FamilyPaid      decimal.Decimal      `json:"familyPaid"`
	FamilyDue       decimal.Decimal      `json:"familyDue"`
	IsActive        bool                 `json:"isActive"`
	CreatedAt       time.Time            `json:"createdAt"`
}

// FamilySummaryResponse is the derived household aggregate for a primary holder.
type FamilySummaryResponse struct {
	PrimaryHolderID string          `json:"primaryHolderID"`
	FamilyTotal     decimal.Decimal `json:"familyTotal"`
	FamilyPaid      decimal.Decimal `json:"familyPaid"`
	FamilyDue       decimal.Decimal `json:"familyDue"`
}

// ToPartyResponse converts a domain party to its API representation.
func ToPartyResponse(p *domain.Party) PartyResponse {
	return PartyResponse{
		PartyID:         p.PartyID,
		Kind:            p.Kind,
		Name:            p.Name,
		ExternalCode:    p.ExternalCode,
		Phone:           p.Phone,
		TotalAmount:     p.TotalAmount,
		PaidAmount:      p.PaidAmount,
		TotalDue:        p.TotalDue,
		HajjDue:         p.HajjDue,
		UmrahDue:        p.UmrahDue,
		TicketDue:       p.TicketDue,
		LoanDirection:   p.LoanDirection,
		Principal:       p.Principal,
		PrimaryHolderID: p.PrimaryHolderID,
		FamilyTotal:     p.FamilyTotal,
		FamilyPaid:      p.FamilyPaid,
		FamilyDue:       p.FamilyDue,
		IsActive:        p.IsActive,
		CreatedAt:       p.CreatedAt,
	}
}

// ToPartyResponses converts a slice of domain parties.
func ToPartyResponses(ps []domain.Party) []PartyResponse {
	out := make([]PartyResponse, len(ps))
	for i := range ps {
		out[i] = ToPartyResponse(&ps[i])
	}
	return out
}
