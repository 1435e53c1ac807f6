package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/arafah-soft/agency_erp/internal/core/domain"
	portsrepo "github.com/arafah-soft/agency_erp/internal/core/ports/repositories"
	portssvc "github.com/arafah-soft/agency_erp/internal/core/ports/services"
	"github.com/arafah-soft/agency_erp/internal/dto"
	"github.com/arafah-soft/agency_erp/internal/middleware"
)

// rebuildService replays the applied footprint of every active completed
// transaction and compares the result to the stored derived state.
type rebuildService struct {
	ledgerRepo  portsrepo.LedgerRepository
	accountRepo portsrepo.AccountRepository
	partyRepo   portsrepo.PartyRepository
}

// NewRebuildService creates a new RebuildService.
func NewRebuildService(ledgerRepo portsrepo.LedgerRepository, accountRepo portsrepo.AccountRepository, partyRepo portsrepo.PartyRepository) portssvc.RebuildSvcFacade {
	return &rebuildService{ledgerRepo: ledgerRepo, accountRepo: accountRepo, partyRepo: partyRepo}
}

var _ portssvc.RebuildSvcFacade = (*rebuildService)(nil)

// rebuiltParty accumulates replayed deltas for one party.
type rebuiltParty struct {
	total     decimal.Decimal
	paid      decimal.Decimal
	principal decimal.Decimal
	hajjDue   decimal.Decimal
	umrahDue  decimal.Decimal
	ticketDue decimal.Decimal
}

// VerifyLedger walks the full transaction log and reports every stored value
// that disagrees with the replayed one. It never mutates anything; repairing
// drift is a deliberate manual follow-up.
func (s *rebuildService) VerifyLedger(ctx context.Context) (*dto.LedgerVerifyReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	report := &dto.LedgerVerifyReport{}

	accountDeltas := make(map[string]decimal.Decimal)
	partyDeltas := make(map[string]*rebuiltParty)

	// Replay the log page by page. Only active completed records carry an
	// applied footprint; drafts and reversed records contribute nothing.
	filter := portsrepo.TransactionFilter{Status: domain.Completed, Limit: 500}
	for {
		records, nextToken, _, err := s.ledgerRepo.ListTransactions(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to list transactions for verification: %w", err)
		}
		for _, rec := range records {
			if rec.Applied == nil {
				continue
			}
			report.TransactionsReplayed++
			for _, ch := range rec.Applied.Accounts {
				accountDeltas[ch.AccountID] = accountDeltas[ch.AccountID].Add(ch.Delta)
			}
			for _, ch := range rec.Applied.Parties {
				rp := partyDeltas[ch.PartyID]
				if rp == nil {
					rp = &rebuiltParty{}
					partyDeltas[ch.PartyID] = rp
				}
				rp.total = rp.total.Add(ch.TotalDelta)
				rp.paid = rp.paid.Add(ch.PaidDelta)
				rp.principal = rp.principal.Add(ch.PrincipalDelta)
				switch ch.Category {
				case domain.CategoryHajj:
					rp.hajjDue = rp.hajjDue.Add(ch.CategoryDueDelta)
				case domain.CategoryUmrah:
					rp.umrahDue = rp.umrahDue.Add(ch.CategoryDueDelta)
				case domain.CategoryTicket:
					rp.ticketDue = rp.ticketDue.Add(ch.CategoryDueDelta)
				}
			}
		}
		if nextToken == nil {
			break
		}
		filter.NextToken = nextToken
	}

	if err := s.checkAccounts(ctx, accountDeltas, report); err != nil {
		return nil, err
	}
	if err := s.checkParties(ctx, partyDeltas, report); err != nil {
		return nil, err
	}

	report.Clean = len(report.Drifts) == 0
	logger.Info("Ledger verification finished",
		"transactions_replayed", report.TransactionsReplayed,
		"accounts_checked", report.AccountsChecked,
		"parties_checked", report.PartiesChecked,
		"drifts", len(report.Drifts),
	)
	return report, nil
}

func (s *rebuildService) checkAccounts(ctx context.Context, deltas map[string]decimal.Decimal, report *dto.LedgerVerifyReport) error {
	const pageSize = 500
	for offset := 0; ; offset += pageSize {
		accounts, err := s.accountRepo.ListAccounts(ctx, pageSize, offset)
		if err != nil {
			return fmt.Errorf("failed to list accounts for verification: %w", err)
		}
		for _, a := range accounts {
			report.AccountsChecked++
			rebuilt := a.OpeningBalance.Add(deltas[a.AccountID])
			noteDrift(report, "account", a.AccountID, "balance", a.Balance, rebuilt)
		}
		if len(accounts) < pageSize {
			return nil
		}
	}
}

func (s *rebuildService) checkParties(ctx context.Context, deltas map[string]*rebuiltParty, report *dto.LedgerVerifyReport) error {
	const pageSize = 500

	// Pilgrim family aggregates are re-derived from the rebuilt per-party
	// totals after all parties are checked.
	rebuiltTotals := make(map[string]*domain.Party)
	var holders []domain.Party

	for _, kind := range domain.PartyKinds {
		for offset := 0; ; offset += pageSize {
			parties, err := s.partyRepo.ListParties(ctx, kind, pageSize, offset)
			if err != nil {
				return fmt.Errorf("failed to list %s parties for verification: %w", kind, err)
			}
			for i := range parties {
				p := parties[i]
				report.PartiesChecked++

				rp := deltas[p.PartyID]
				if rp == nil {
					rp = &rebuiltParty{}
				}
				total := p.OpeningTotal.Add(rp.total)
				paid := rp.paid
				due := domain.MaxZero(total.Sub(paid))

				noteDrift(report, "party", p.PartyID, "totalAmount", p.TotalAmount, total)
				noteDrift(report, "party", p.PartyID, "paidAmount", p.PaidAmount, paid)
				noteDrift(report, "party", p.PartyID, "totalDue", p.TotalDue, due)
				noteDrift(report, "party", p.PartyID, "hajjDue", p.HajjDue, rp.hajjDue)
				noteDrift(report, "party", p.PartyID, "umrahDue", p.UmrahDue, rp.umrahDue)
				noteDrift(report, "party", p.PartyID, "ticketDue", p.TicketDue, rp.ticketDue)
				if p.Kind == domain.PartyLoan {
					noteDrift(report, "party", p.PartyID, "principal", p.Principal, rp.principal)
				}

				if p.Kind == domain.PartyPilgrim {
					rebuilt := p
					rebuilt.TotalAmount = total
					rebuilt.PaidAmount = paid
					rebuiltTotals[p.PartyID] = &rebuilt
					if p.PrimaryHolderID == "" {
						holders = append(holders, p)
					}
				}
			}
			if len(parties) < pageSize {
				break
			}
		}
	}

	for _, holder := range holders {
		famTotal := rebuiltTotals[holder.PartyID].TotalAmount
		famPaid := rebuiltTotals[holder.PartyID].PaidAmount
		dependents, err := s.partyRepo.ListDependents(ctx, holder.PartyID)
		if err != nil {
			return fmt.Errorf("failed to list dependents of %s for verification: %w", holder.PartyID, err)
		}
		for _, dep := range dependents {
			if rebuilt := rebuiltTotals[dep.PartyID]; rebuilt != nil {
				famTotal = famTotal.Add(rebuilt.TotalAmount)
				famPaid = famPaid.Add(rebuilt.PaidAmount)
			}
		}
		noteDrift(report, "party", holder.PartyID, "familyTotal", holder.FamilyTotal, domain.MaxZero(famTotal))
		noteDrift(report, "party", holder.PartyID, "familyPaid", holder.FamilyPaid, domain.MaxZero(famPaid))
		noteDrift(report, "party", holder.PartyID, "familyDue", holder.FamilyDue, domain.MaxZero(famTotal.Sub(famPaid)))
	}

	return nil
}

func noteDrift(report *dto.LedgerVerifyReport, entity, id, field string, stored, rebuilt decimal.Decimal) {
	if stored.Equal(rebuilt) {
		return
	}
	report.Drifts = append(report.Drifts, dto.LedgerDrift{
		Entity:   entity,
		ID:       id,
		Field:    field,
		Stored:   stored,
		Rebuilt:  rebuilt,
		AbsDrift: stored.Sub(rebuilt).Abs(),
	})
}
