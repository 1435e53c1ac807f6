package domain

import "github.com/shopspring/decimal"

// PartyKind is the closed set of entities that can owe or be owed money.
type PartyKind string

const (
	PartyCustomer        PartyKind = "CUSTOMER"
	PartyPilgrim         PartyKind = "PILGRIM"
	PartyAgent           PartyKind = "AGENT"
	PartyVendor          PartyKind = "VENDOR"
	PartyLoan            PartyKind = "LOAN"
	PartyCurrencyCounter PartyKind = "CURRENCY_COUNTER"
)

// PartyKinds lists every valid kind, used for exhaustive validation.
var PartyKinds = []PartyKind{
	PartyCustomer, PartyPilgrim, PartyAgent, PartyVendor, PartyLoan, PartyCurrencyCounter,
}

// Valid reports whether k is a known party kind.
func (k PartyKind) Valid() bool {
	switch k {
	case PartyCustomer, PartyPilgrim, PartyAgent, PartyVendor, PartyLoan, PartyCurrencyCounter:
		return true
	}
	return false
}

// LoanDirection distinguishes loans the agency gave from loans it took.
type LoanDirection string

const (
	LoanGiving    LoanDirection = "GIVING"
	LoanReceiving LoanDirection = "RECEIVING"
)

// Party is any account-like entity carrying an outstanding-due balance.
// Kind-specific fields are zero-valued for kinds they don't apply to.
// Invariant: TotalDue == max(TotalAmount - PaidAmount, 0); no money field negative.
type Party struct {
	PartyID      string    `json:"partyID"` // Primary Key (UUID)
	Kind         PartyKind `json:"kind"`
	Name         string    `json:"name"`
	ExternalCode string    `json:"externalCode,omitempty"` // Unique per kind; mirror records share it across kinds
	Phone        string    `json:"phone,omitempty"`

	// OpeningTotal is the total set at creation (package price, opening debt);
	// the verification replay starts from it.
	OpeningTotal decimal.Decimal `json:"openingTotal"`

	TotalAmount decimal.Decimal `json:"totalAmount"`
	PaidAmount  decimal.Decimal `json:"paidAmount"`
	TotalDue    decimal.Decimal `json:"totalDue"`

	// Category-specific dues, clamped independently of TotalDue.
	HajjDue   decimal.Decimal `json:"hajjDue"`
	UmrahDue  decimal.Decimal `json:"umrahDue"`
	TicketDue decimal.Decimal `json:"ticketDue"`

	// Loan kind only.
	LoanDirection LoanDirection   `json:"loanDirection,omitempty"`
	Principal     decimal.Decimal `json:"principal"`

	// Pilgrim kind only. A pilgrim with PrimaryHolderID set is a dependent;
	// family aggregates are persisted on the holder.
	PrimaryHolderID string          `json:"primaryHolderID,omitempty"`
	FamilyTotal     decimal.Decimal `json:"familyTotal"`
	FamilyPaid      decimal.Decimal `json:"familyPaid"`
	FamilyDue       decimal.Decimal `json:"familyDue"`

	IsActive bool `json:"isActive"`
	AuditFields
}

// RecalcTotalDue re-derives TotalDue from TotalAmount and PaidAmount.
func (p *Party) RecalcTotalDue() {
	p.TotalDue = MaxZero(p.TotalAmount.Sub(p.PaidAmount))
}

// CategoryDue returns a pointer to the due field for the given category,
// or nil when the category carries no dedicated due field.
func (p *Party) CategoryDue(c ServiceCategory) *decimal.Decimal {
	switch c {
	case CategoryHajj:
		return &p.HajjDue
	case CategoryUmrah:
		return &p.UmrahDue
	case CategoryTicket:
		return &p.TicketDue
	}
	return nil
}

// MaxZero clamps a decimal at zero.
func MaxZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
