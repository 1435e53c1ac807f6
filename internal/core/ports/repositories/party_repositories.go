package repositories

import (
	"context"

	"github.com/arafah-soft/agency_erp/internal/core/domain"
)

// PartyRepository covers party reads and CRUD outside ledger units.
type PartyRepository interface {
	SaveParty(ctx context.Context, party domain.Party) error
	UpdateParty(ctx context.Context, party domain.Party) error
	FindPartyByID(ctx context.Context, kind domain.PartyKind, partyID string) (*domain.Party, error)
	FindPartyByExternalCode(ctx context.Context, kind domain.PartyKind, code string) (*domain.Party, error)
	ListParties(ctx context.Context, kind domain.PartyKind, limit int, offset int) ([]domain.Party, error)
	ListDependents(ctx context.Context, primaryHolderID string) ([]domain.Party, error)
}
