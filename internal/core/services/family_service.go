package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arafah-soft/agency_erp/internal/apperrors"
	"github.com/arafah-soft/agency_erp/internal/core/domain"
	portsrepo "github.com/arafah-soft/agency_erp/internal/core/ports/repositories"
	portssvc "github.com/arafah-soft/agency_erp/internal/core/ports/services"
	"github.com/arafah-soft/agency_erp/internal/middleware"
)

// familyService maintains pilgrim household aggregates.
type familyService struct {
	ledgerRepo portsrepo.LedgerRepository
}

// NewFamilyService creates a new FamilyService.
func NewFamilyService(ledgerRepo portsrepo.LedgerRepository) portssvc.FamilySvcFacade {
	return &familyService{ledgerRepo: ledgerRepo}
}

var _ portssvc.FamilySvcFacade = (*familyService)(nil)

// recomputeFamily re-derives the holder's family aggregates from the holder
// and every dependent referencing it, inside the caller's atomic unit.
func recomputeFamily(ctx context.Context, uow portsrepo.LedgerUnitOfWork, primaryHolderID string) (*domain.Party, error) {
	holder, err := uow.PartyForUpdate(ctx, domain.PartyPilgrim, primaryHolderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load family holder %s: %w", primaryHolderID, err)
	}

	dependents, err := uow.ListDependents(ctx, primaryHolderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dependents of %s: %w", primaryHolderID, err)
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

	if err := uow.SaveParty(ctx, *holder); err != nil {
		return nil, fmt.Errorf("failed to persist family aggregates for %s: %w", primaryHolderID, err)
	}
	return holder, nil
}

// familyHolderOf returns the primary holder id a pilgrim party belongs to:
// its own id when it is a holder, the referenced holder when it is a dependent,
// and empty for non-pilgrims.
func familyHolderOf(p *domain.Party) string {
	if p.Kind != domain.PartyPilgrim {
		return ""
	}
	if p.PrimaryHolderID != "" {
		return p.PrimaryHolderID
	}
	return p.PartyID
}

// RecomputeFamily recomputes and persists the aggregates for one holder.
func (s *familyService) RecomputeFamily(ctx context.Context, primaryHolderID string) (*domain.Party, error) {
	var holder *domain.Party
	err := s.ledgerRepo.Atomically(ctx, func(uow portsrepo.LedgerUnitOfWork) error {
		var err error
		holder, err = recomputeFamily(ctx, uow, primaryHolderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return holder, nil
}

// SetPrimaryHolder links a pilgrim to a holder (or unlinks with an empty id)
// and recomputes both the old and the new household.
func (s *familyService) SetPrimaryHolder(ctx context.Context, pilgrimID string, primaryHolderID string, userID string) (*domain.Party, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if primaryHolderID == pilgrimID {
		return nil, fmt.Errorf("%w: a pilgrim cannot be its own primary holder", apperrors.ErrValidation)
	}

	var updated *domain.Party
	err := s.ledgerRepo.Atomically(ctx, func(uow portsrepo.LedgerUnitOfWork) error {
		pilgrim, err := uow.PartyForUpdate(ctx, domain.PartyPilgrim, pilgrimID)
		if err != nil {
			return err
		}

		if primaryHolderID != "" {
			holder, err := uow.PartyForUpdate(ctx, domain.PartyPilgrim, primaryHolderID)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return fmt.Errorf("%w: primary holder %s", apperrors.ErrNotFound, primaryHolderID)
				}
				return err
			}
			if holder.PrimaryHolderID != "" {
				return fmt.Errorf("%w: %s is a dependent and cannot hold a family", apperrors.ErrValidation, primaryHolderID)
			}
			own, err := uow.ListDependents(ctx, pilgrimID)
			if err != nil {
				return err
			}
			if len(own) > 0 {
				return fmt.Errorf("%w: %s still holds dependents and cannot become a dependent", apperrors.ErrValidation, pilgrimID)
			}
		}

		oldHolderID := familyHolderOf(pilgrim)
		pilgrim.PrimaryHolderID = primaryHolderID
		if primaryHolderID != "" {
			// Family aggregates live on holders only.
			pilgrim.FamilyTotal = decimal.Zero
			pilgrim.FamilyPaid = decimal.Zero
			pilgrim.FamilyDue = decimal.Zero
		}
		pilgrim.LastUpdatedAt = time.Now().UTC()
		pilgrim.LastUpdatedBy = userID
		if err := uow.SaveParty(ctx, *pilgrim); err != nil {
			return err
		}

		// Recompute both affected households.
		if oldHolderID != "" && oldHolderID != pilgrimID {
			if _, err := recomputeFamily(ctx, uow, oldHolderID); err != nil {
				return err
			}
		}
		newHolderID := familyHolderOf(pilgrim)
		if newHolderID != "" {
			if _, err := recomputeFamily(ctx, uow, newHolderID); err != nil {
				return err
			}
		}

		updated, err = uow.PartyForUpdate(ctx, domain.PartyPilgrim, pilgrimID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Primary holder updated", "pilgrim_id", pilgrimID, "primary_holder_id", primaryHolderID)
	return updated, nil
}
