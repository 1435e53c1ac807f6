package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arafah-soft/agency_erp/internal/apperrors"
	"github.com/arafah-soft/agency_erp/internal/core/domain"
	portsrepo "github.com/arafah-soft/agency_erp/internal/core/ports/repositories"
	portssvc "github.com/arafah-soft/agency_erp/internal/core/ports/services"
	"github.com/arafah-soft/agency_erp/internal/dto"
	"github.com/arafah-soft/agency_erp/internal/middleware"
)

type partyService struct {
	partyRepo portsrepo.PartyRepository
}

// NewPartyService creates a new PartyService.
func NewPartyService(partyRepo portsrepo.PartyRepository) portssvc.PartySvcFacade {
	return &partyService{partyRepo: partyRepo}
}

var _ portssvc.PartySvcFacade = (*partyService)(nil)

// CreateParty registers a party of any kind. An initial total (package price,
// opening debt) starts the party with that much due.
func (s *partyService) CreateParty(ctx context.Context, req dto.CreatePartyRequest, creatorUserID string) (*domain.Party, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown party kind %q", apperrors.ErrValidation, req.Kind)
	}
	if req.TotalAmount.IsNegative() {
		return nil, fmt.Errorf("%w: total amount cannot be negative", apperrors.ErrValidation)
	}
	if req.Kind == domain.PartyLoan {
		if req.LoanDirection != domain.LoanGiving && req.LoanDirection != domain.LoanReceiving {
			return nil, fmt.Errorf("%w: loan direction must be %s or %s",
				apperrors.ErrValidation, domain.LoanGiving, domain.LoanReceiving)
		}
	} else if req.LoanDirection != "" {
		return nil, fmt.Errorf("%w: loan direction only applies to loan parties", apperrors.ErrValidation)
	}
	if req.PrimaryHolderID != "" && req.Kind != domain.PartyPilgrim {
		return nil, fmt.Errorf("%w: primary holder only applies to pilgrims", apperrors.ErrValidation)
	}

	if req.ExternalCode != "" {
		existing, err := s.partyRepo.FindPartyByExternalCode(ctx, req.Kind, req.ExternalCode)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to check external code %s: %w", req.ExternalCode, err)
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: %s party with code %s", apperrors.ErrDuplicate, req.Kind, req.ExternalCode)
		}
	}

	if req.PrimaryHolderID != "" {
		holder, err := s.partyRepo.FindPartyByID(ctx, domain.PartyPilgrim, req.PrimaryHolderID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: primary holder %s", apperrors.ErrNotFound, req.PrimaryHolderID)
			}
			return nil, fmt.Errorf("failed to check primary holder %s: %w", req.PrimaryHolderID, err)
		}
		if holder.PrimaryHolderID != "" {
			return nil, fmt.Errorf("%w: %s is a dependent and cannot hold a family", apperrors.ErrValidation, req.PrimaryHolderID)
		}
	}

	now := time.Now().UTC()
	party := domain.Party{
		PartyID:         uuid.NewString(),
		Kind:            req.Kind,
		Name:            req.Name,
		ExternalCode:    req.ExternalCode,
		Phone:           req.Phone,
		OpeningTotal:    req.TotalAmount,
		TotalAmount:     req.TotalAmount,
		TotalDue:        req.TotalAmount,
		LoanDirection:   req.LoanDirection,
		PrimaryHolderID: req.PrimaryHolderID,
		IsActive:        true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.partyRepo.SaveParty(ctx, party); err != nil {
		return nil, fmt.Errorf("failed to save party: %w", err)
	}

	// A new pilgrim changes its household's aggregates: its own when it is a
	// holder, the referenced holder's when it is a dependent.
	if party.Kind == domain.PartyPilgrim {
		holderID := party.PartyID
		if party.PrimaryHolderID != "" {
			holderID = party.PrimaryHolderID
		}
		if err := s.refreshFamilyAggregates(ctx, holderID, creatorUserID, now); err != nil {
			return nil, err
		}
		if holderID == party.PartyID {
			refreshed, err := s.partyRepo.FindPartyByID(ctx, domain.PartyPilgrim, party.PartyID)
			if err != nil {
				return nil, fmt.Errorf("failed to reload party %s: %w", party.PartyID, err)
			}
			party = *refreshed
		}
	}

	logger.Info("Party created", "party_id", party.PartyID, "kind", string(party.Kind))
	return &party, nil
}

// refreshFamilyAggregates re-derives a holder's family totals from the holder
// and its dependents using plain repository reads.
func (s *partyService) refreshFamilyAggregates(ctx context.Context, holderID string, userID string, now time.Time) error {
	holder, err := s.partyRepo.FindPartyByID(ctx, domain.PartyPilgrim, holderID)
	if err != nil {
		return fmt.Errorf("failed to load family holder %s: %w", holderID, err)
	}
	dependents, err := s.partyRepo.ListDependents(ctx, holderID)
	if err != nil {
		return fmt.Errorf("failed to list dependents of %s: %w", holderID, err)
	}

	total := holder.TotalAmount
	paid := holder.PaidAmount
	for _, dep := range dependents {
		total = total.Add(dep.TotalAmount)
		paid = paid.Add(dep.PaidAmount)
	}
	holder.FamilyTotal = domain.MaxZero(total)
	holder.FamilyPaid = domain.MaxZero(paid)
	holder.FamilyDue = domain.MaxZero(holder.FamilyTotal.Sub(holder.FamilyPaid))
	holder.LastUpdatedAt = now
	holder.LastUpdatedBy = userID

	if err := s.partyRepo.UpdateParty(ctx, *holder); err != nil {
		return fmt.Errorf("failed to persist family aggregates for %s: %w", holderID, err)
	}
	return nil
}

// GetParty finds a party by internal id first, then by external code.
func (s *partyService) GetParty(ctx context.Context, kind domain.PartyKind, idOrCode string) (*domain.Party, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown party kind %q", apperrors.ErrValidation, kind)
	}

	party, err := s.partyRepo.FindPartyByID(ctx, kind, idOrCode)
	if err == nil {
		return party, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to find party %s: %w", idOrCode, err)
	}

	party, err = s.partyRepo.FindPartyByExternalCode(ctx, kind, idOrCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: party %s (%s)", apperrors.ErrNotFound, idOrCode, kind)
		}
		return nil, fmt.Errorf("failed to find party %s: %w", idOrCode, err)
	}
	return party, nil
}

// ListParties returns one page of parties of a kind.
func (s *partyService) ListParties(ctx context.Context, kind domain.PartyKind, limit int, offset int) ([]domain.Party, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown party kind %q", apperrors.ErrValidation, kind)
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.partyRepo.ListParties(ctx, kind, limit, offset)
}
