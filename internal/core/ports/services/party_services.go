package services

import (
	"context"

	"github.com/arafah-soft/agency_erp/internal/core/domain"
	"github.com/arafah-soft/agency_erp/internal/dto"
)

// PartySvcFacade manages the party directory.
type PartySvcFacade interface {
	CreateParty(ctx context.Context, req dto.CreatePartyRequest, creatorUserID string) (*domain.Party, error)
	GetParty(ctx context.Context, kind domain.PartyKind, idOrCode string) (*domain.Party, error)
	ListParties(ctx context.Context, kind domain.PartyKind, limit int, offset int) ([]domain.Party, error)
}

// FamilySvcFacade recomputes and maintains pilgrim household aggregates.
type FamilySvcFacade interface {
	RecomputeFamily(ctx context.Context, primaryHolderID string) (*domain.Party, error)
	SetPrimaryHolder(ctx context.Context, pilgrimID string, primaryHolderID string, userID string) (*domain.Party, error)
}
