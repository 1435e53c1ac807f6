package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arafah-soft/agency_erp/internal/apperrors"
	"github.com/arafah-soft/agency_erp/internal/core/domain"
	portsrepo "github.com/arafah-soft/agency_erp/internal/core/ports/repositories"
	portssvc "github.com/arafah-soft/agency_erp/internal/core/ports/services"
	"github.com/arafah-soft/agency_erp/internal/dto"
	"github.com/arafah-soft/agency_erp/internal/middleware"
)

const sequenceKeyTransaction = "transaction_no"

var (
	ErrPartyRequired   = errors.New("a resolvable party is required for this party kind")
	ErrAlreadyReversed = errors.New("transaction is already reversed")
)

// ledgerService is the money-movement core. Every operation runs inside one
// atomic unit spanning the accounts, parties, family aggregates and currency
// events it touches; a failure leaves no trace.
type ledgerService struct {
	ledgerRepo portsrepo.LedgerRepository
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepository) portssvc.LedgerSvcFacade {
	return &ledgerService{ledgerRepo: ledgerRepo}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// mutationState accumulates the footprint of one apply/revert pass so the
// caller can hand back fresh snapshots of everything that changed.
type mutationState struct {
	accounts     []domain.BankAccount
	accountIndex map[string]int
	parties      []domain.Party
	partyIndex   map[string]int
}

func newMutationState() *mutationState {
	return &mutationState{
		accountIndex: make(map[string]int),
		partyIndex:   make(map[string]int),
	}
}

func (m *mutationState) noteAccount(a domain.BankAccount) {
	if i, ok := m.accountIndex[a.AccountID]; ok {
		m.accounts[i] = a
		return
	}
	m.accountIndex[a.AccountID] = len(m.accounts)
	m.accounts = append(m.accounts, a)
}

func (m *mutationState) noteParty(p domain.Party) {
	if i, ok := m.partyIndex[p.PartyID]; ok {
		m.parties[i] = p
		return
	}
	m.partyIndex[p.PartyID] = len(m.parties)
	m.parties = append(m.parties, p)
}

// CreateTransaction validates an intent, applies its full effect atomically
// and persists the immutable record. With Draft set, the intent is stored as
// pending and no effects run until CompleteTransaction.
func (s *ledgerService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, creatorUserID string) (*portssvc.TransactionResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	record, err := buildRecord(req, creatorUserID, now)
	if err != nil {
		return nil, err
	}

	state := newMutationState()
	err = s.ledgerRepo.Atomically(ctx, func(uow portsrepo.LedgerUnitOfWork) error {
		seq, err := uow.NextSequence(ctx, sequenceKeyTransaction)
		if err != nil {
			return fmt.Errorf("failed to allocate transaction number: %w", err)
		}
		record.TransactionNo = fmt.Sprintf("TXN-%06d", seq)

		if !req.Draft {
			if err := s.applyEffects(ctx, uow, record, record.Amount, !record.DisableReclassify, creatorUserID, now, state); err != nil {
				return err
			}
		}
		return uow.SaveTransactionRecord(ctx, *record)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Transaction created",
		"transaction_id", record.TransactionID,
		"transaction_no", record.TransactionNo,
		"kind", string(record.Kind),
		"status", string(record.Status),
	)
	return &portssvc.TransactionResult{Record: *record, Accounts: state.accounts, Parties: state.parties}, nil
}

// CompleteTransaction finalizes a pending transaction. Completing an already
// completed transaction returns its unchanged snapshot; effects never run twice.
func (s *ledgerService) CompleteTransaction(ctx context.Context, transactionID string, overrideAmount *decimal.Decimal, userID string) (*portssvc.TransactionResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	if overrideAmount != nil && overrideAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: override amount must be positive", apperrors.ErrValidation)
	}

	var record *domain.TransactionRecord
	state := newMutationState()
	err := s.ledgerRepo.Atomically(ctx, func(uow portsrepo.LedgerUnitOfWork) error {
		var err error
		record, err = uow.TransactionForUpdate(ctx, transactionID)
		if err != nil {
			return fmt.Errorf("failed to load transaction %s: %w", transactionID, err)
		}
		if !record.IsActive {
			return fmt.Errorf("%w: transaction %s is reversed", apperrors.ErrConflict, transactionID)
		}
		if record.Status == domain.Completed {
			// Idempotent: nothing to apply, nothing to report as changed.
			return nil
		}

		amount := record.Amount
		if overrideAmount != nil {
			amount = *overrideAmount
		}
		if err := s.applyEffects(ctx, uow, record, amount, !record.DisableReclassify, userID, now, state); err != nil {
			return err
		}
		record.LastUpdatedAt = now
		record.LastUpdatedBy = userID
		return uow.UpdateTransactionRecord(ctx, *record)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Transaction completed", "transaction_id", transactionID, "transaction_no", record.TransactionNo)
	return &portssvc.TransactionResult{Record: *record, Accounts: state.accounts, Parties: state.parties}, nil
}

// DeleteTransaction reverses a transaction: every applied effect is undone
// using the deltas recorded at apply time, then the record is deactivated.
func (s *ledgerService) DeleteTransaction(ctx context.Context, transactionID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	err := s.ledgerRepo.Atomically(ctx, func(uow portsrepo.LedgerUnitOfWork) error {
		record, err := uow.TransactionForUpdate(ctx, transactionID)
		if err != nil {
			return fmt.Errorf("failed to load transaction %s: %w", transactionID, err)
		}
		if !record.IsActive {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrConflict, transactionID)
		}

		if record.Status == domain.Completed && record.Applied != nil {
			if err := s.revertEffects(ctx, uow, record, userID, now); err != nil {
				return err
			}
		}

		record.IsActive = false
		record.LastUpdatedAt = now
		record.LastUpdatedBy = userID
		return uow.UpdateTransactionRecord(ctx, *record)
	})
	if err != nil {
		return err
	}

	logger.Info("Transaction reversed", "transaction_id", transactionID)
	return nil
}

// GetTransactionByID returns one transaction record.
func (s *ledgerService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.TransactionRecord, error) {
	record, err := s.ledgerRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	return record, nil
}

// ListTransactions returns one page of records plus credit/debit sums for the
// whole filtered window.
func (s *ledgerService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams) ([]domain.TransactionRecord, *string, portsrepo.LedgerTotals, error) {
	filter := portsrepo.TransactionFilter{
		From:            params.From,
		To:              params.To,
		Kind:            params.Kind,
		PartyKind:       params.PartyKind,
		PartyID:         params.PartyID,
		AccountID:       params.AccountID,
		ServiceCategory: params.ServiceCategory,
		Status:          params.Status,
		IncludeInactive: params.IncludeInactive,
		Limit:           params.Limit,
		NextToken:       params.NextToken,
	}
	return s.ledgerRepo.ListTransactions(ctx, filter)
}

// buildRecord normalizes and validates a create request into a pending record.
// Everything here is checked before any mutation can begin.
func buildRecord(req dto.CreateTransactionRequest, creatorUserID string, now time.Time) (*domain.TransactionRecord, error) {
	category := req.ServiceCategory
	if category == "" {
		category = domain.CategoryGeneral
	}

	record := &domain.TransactionRecord{
		TransactionID:     uuid.NewString(),
		Kind:              req.TransactionType,
		Amount:            req.Amount,
		Fee:               req.Fee,
		PartyKind:         req.PartyType,
		PartyID:           req.PartyID,
		ServiceCategory:   category,
		Status:            domain.Pending,
		Notes:             req.Notes,
		DisableReclassify: req.DisableReclassify,
		IsActive:          true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if req.TransactionType == domain.Transfer {
		record.SourceAccountID = req.FromAccountID
		record.TargetAccountID = req.ToAccountID
	} else {
		record.TargetAccountID = req.TargetAccountID
	}

	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	if record.PartyKind != "" && !record.PartyKind.Valid() {
		return nil, fmt.Errorf("%w: unknown party kind %q", apperrors.ErrValidation, record.PartyKind)
	}
	if record.PartyID == "" {
		switch record.PartyKind {
		case domain.PartyCustomer, domain.PartyPilgrim, domain.PartyLoan:
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrPartyRequired.Error())
		}
	}

	return record, nil
}

// applyEffects runs steps 2..9 of the creation algorithm against the unit of
// work: account mutation, party reconciliation, family aggregation, mirror
// propagation and currency-event linkage. It is shared verbatim by creation
// and completion so the two paths cannot diverge. On success the record is
// marked completed and carries the applied footprint used for exact reversal.
func (s *ledgerService) applyEffects(ctx context.Context, uow portsrepo.LedgerUnitOfWork, record *domain.TransactionRecord, amount decimal.Decimal, allowReclassify bool, userID string, now time.Time, state *mutationState) error {
	applied := &domain.AppliedEffects{}

	// Resolve the party up front: a transaction against an unknown party must
	// fail before any account is touched.
	var party *domain.Party
	if record.PartyID != "" {
		var err error
		party, err = s.resolveParty(ctx, uow, record, allowReclassify)
		if err != nil {
			return err
		}
	}

	// Bank account movement. The fee is charged to the paying account.
	switch record.Kind {
	case domain.Credit:
		if err := s.moveMoney(ctx, uow, record, record.TargetAccountID, amount, domain.EntryIn, now, applied, state); err != nil {
			return err
		}
	case domain.Debit:
		if err := s.moveMoney(ctx, uow, record, record.TargetAccountID, amount.Add(record.Fee), domain.EntryOut, now, applied, state); err != nil {
			return err
		}
	case domain.Transfer:
		if err := s.moveMoney(ctx, uow, record, record.SourceAccountID, amount.Add(record.Fee), domain.EntryOut, now, applied, state); err != nil {
			return err
		}
		if err := s.moveMoney(ctx, uow, record, record.TargetAccountID, amount, domain.EntryIn, now, applied, state); err != nil {
			return err
		}
	}

	// Party reconciliation. Transfers move money between own accounts and do
	// not change anyone's due.
	var holderIDs []string
	if party != nil && record.Kind != domain.Transfer {
		eff, err := reconcileEffect(party, record.Kind, amount)
		if err != nil {
			return fmt.Errorf("%w: %s", apperrors.ErrConsistency, err.Error())
		}

		change := applyPartyEffect(party, eff, record.ServiceCategory)
		party.LastUpdatedAt = now
		party.LastUpdatedBy = userID
		if err := uow.SaveParty(ctx, *party); err != nil {
			return fmt.Errorf("failed to persist party %s: %w", party.PartyID, err)
		}
		applied.Parties = append(applied.Parties, change)
		state.noteParty(*party)
		if h := familyHolderOf(party); h != "" {
			holderIDs = append(holderIDs, h)
		}

		// Mirror record under the same external code: the paid increment of an
		// incoming payment lands there too, independently clamped.
		if eff.IncomingPayment && party.ExternalCode != "" {
			if mk := mirrorKind(party.Kind); mk != "" {
				mirror, err := uow.PartyByExternalCode(ctx, mk, party.ExternalCode)
				if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
					return fmt.Errorf("failed to look up mirror party for %s: %w", party.PartyID, err)
				}
				if mirror != nil {
					mirrorChange := applyPartyEffect(mirror, partyEffect{
						PaidDelta: amount,
						DueDelta:  amount.Neg(),
					}, record.ServiceCategory)
					mirrorChange.Mirror = true
					mirror.LastUpdatedAt = now
					mirror.LastUpdatedBy = userID
					if err := uow.SaveParty(ctx, *mirror); err != nil {
						return fmt.Errorf("failed to persist mirror party %s: %w", mirror.PartyID, err)
					}
					applied.Parties = append(applied.Parties, mirrorChange)
					state.noteParty(*mirror)
					if h := familyHolderOf(mirror); h != "" {
						holderIDs = append(holderIDs, h)
					}
				}
			}
		}
	}

	// Family aggregation for every pilgrim household touched.
	for _, holderID := range uniqueStrings(holderIDs) {
		holder, err := recomputeFamily(ctx, uow, holderID)
		if err != nil {
			return err
		}
		applied.FamilyHolderIDs = append(applied.FamilyHolderIDs, holderID)
		state.noteParty(*holder)
	}

	// Link the oldest unlinked exchange event of a currency counter.
	if party != nil && party.Kind == domain.PartyCurrencyCounter {
		event, err := uow.OldestUnlinkedEvent(ctx, party.PartyID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to look up exchange events for %s: %w", party.PartyID, err)
		}
		if event != nil {
			event.LinkedTransactionID = record.TransactionID
			if err := uow.UpdateExchangeEvent(ctx, *event); err != nil {
				return fmt.Errorf("failed to link exchange event %s: %w", event.EventID, err)
			}
			applied.LinkedExchangeEventID = event.EventID
		}
	}

	record.Amount = amount
	record.Status = domain.Completed
	record.CompletedAt = &now
	record.Applied = applied
	return nil
}

// resolveParty finds the transaction's party: internal id first, then external
// code under the same kind. With a service-category hint mapping to a more
// specific kind, that kind is tried first and the record reclassified on a hit.
func (s *ledgerService) resolveParty(ctx context.Context, uow portsrepo.LedgerUnitOfWork, record *domain.TransactionRecord, allowReclassify bool) (*domain.Party, error) {
	kinds := make([]domain.PartyKind, 0, 2)
	if allowReclassify {
		if hint := reclassifyHint(record.ServiceCategory); hint != "" && hint != record.PartyKind {
			kinds = append(kinds, hint)
		}
	}
	if record.PartyKind != "" {
		kinds = append(kinds, record.PartyKind)
	}
	if len(kinds) == 0 {
		return nil, fmt.Errorf("%w: party kind is required when a party is given", apperrors.ErrValidation)
	}

	for _, kind := range kinds {
		party, err := uow.PartyForUpdate(ctx, kind, record.PartyID)
		if err == nil {
			record.PartyKind = party.Kind
			record.PartyID = party.PartyID
			return party, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to resolve party %s: %w", record.PartyID, err)
		}

		party, err = uow.PartyByExternalCode(ctx, kind, record.PartyID)
		if err == nil {
			record.PartyKind = party.Kind
			record.PartyID = party.PartyID
			return party, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to resolve party %s: %w", record.PartyID, err)
		}
	}

	return nil, fmt.Errorf("%w: party %s (%s)", apperrors.ErrNotFound, record.PartyID, record.PartyKind)
}

// moveMoney applies one signed movement to one locked account, appends the
// matching history line and records the applied delta.
func (s *ledgerService) moveMoney(ctx context.Context, uow portsrepo.LedgerUnitOfWork, record *domain.TransactionRecord, accountID string, amount decimal.Decimal, direction domain.EntryDirection, now time.Time, applied *domain.AppliedEffects, state *mutationState) error {
	account, err := uow.AccountForUpdate(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		return fmt.Errorf("failed to lock account %s: %w", accountID, err)
	}
	if !account.IsActive {
		return fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, accountID)
	}

	delta := amount
	if direction == domain.EntryOut {
		delta = amount.Neg()
	}
	newBalance := account.Balance.Add(delta)
	if newBalance.IsNegative() {
		return fmt.Errorf("%w: account %s holds %s, needs %s",
			apperrors.ErrInsufficientBalance, accountID, account.Balance.String(), amount.String())
	}

	account.Balance = newBalance
	if err := uow.SaveAccount(ctx, *account); err != nil {
		return fmt.Errorf("failed to persist account %s: %w", accountID, err)
	}

	entry := domain.AccountHistoryEntry{
		EntryID:       uuid.NewString(),
		AccountID:     accountID,
		TransactionID: record.TransactionID,
		Direction:     direction,
		Amount:        amount,
		BalanceAfter:  newBalance,
		Note:          record.Notes,
		At:            now,
	}
	if err := uow.AppendAccountHistory(ctx, entry); err != nil {
		return fmt.Errorf("failed to append history for account %s: %w", accountID, err)
	}

	applied.Accounts = append(applied.Accounts, domain.AccountChange{
		AccountID: accountID,
		Delta:     delta,
		EntryID:   entry.EntryID,
	})
	state.noteAccount(*account)
	return nil
}

// applyPartyEffect mutates a party with clamping and returns the deltas that
// were actually applied (what reversal must undo).
func applyPartyEffect(p *domain.Party, eff partyEffect, category domain.ServiceCategory) domain.PartyChange {
	before := *p

	p.TotalAmount = domain.MaxZero(p.TotalAmount.Add(eff.TotalDelta))
	p.PaidAmount = domain.MaxZero(p.PaidAmount.Add(eff.PaidDelta))
	p.Principal = domain.MaxZero(p.Principal.Add(eff.PrincipalDelta))
	p.RecalcTotalDue()

	change := domain.PartyChange{
		Kind:           p.Kind,
		PartyID:        p.PartyID,
		TotalDelta:     p.TotalAmount.Sub(before.TotalAmount),
		PaidDelta:      p.PaidAmount.Sub(before.PaidAmount),
		PrincipalDelta: p.Principal.Sub(before.Principal),
	}

	if cd := p.CategoryDue(category); cd != nil && !eff.DueDelta.IsZero() {
		beforeDue := *cd
		*cd = domain.MaxZero(cd.Add(eff.DueDelta))
		change.Category = category
		change.CategoryDueDelta = cd.Sub(beforeDue)
	}

	return change
}

// revertEffects applies the exact algebraic inverse of the record's applied
// footprint. A result that would go out of bounds means the stored state no
// longer matches the log and is surfaced as a consistency violation.
func (s *ledgerService) revertEffects(ctx context.Context, uow portsrepo.LedgerUnitOfWork, record *domain.TransactionRecord, userID string, now time.Time) error {
	applied := record.Applied

	for _, ch := range applied.Accounts {
		account, err := uow.AccountForUpdate(ctx, ch.AccountID)
		if err != nil {
			return fmt.Errorf("failed to lock account %s for reversal: %w", ch.AccountID, err)
		}
		newBalance := account.Balance.Sub(ch.Delta)
		if newBalance.IsNegative() {
			return fmt.Errorf("%w: reversing %s would drive account %s to %s",
				apperrors.ErrConsistency, record.TransactionID, ch.AccountID, newBalance.String())
		}
		account.Balance = newBalance
		if err := uow.SaveAccount(ctx, *account); err != nil {
			return fmt.Errorf("failed to persist account %s during reversal: %w", ch.AccountID, err)
		}

		direction := domain.EntryIn
		if ch.Delta.IsPositive() {
			direction = domain.EntryOut
		}
		entry := domain.AccountHistoryEntry{
			EntryID:       uuid.NewString(),
			AccountID:     ch.AccountID,
			TransactionID: record.TransactionID,
			Direction:     direction,
			Amount:        ch.Delta.Abs(),
			BalanceAfter:  newBalance,
			Note:          fmt.Sprintf("Reversal of %s", record.TransactionNo),
			At:            now,
		}
		if err := uow.AppendAccountHistory(ctx, entry); err != nil {
			return fmt.Errorf("failed to append reversal history for account %s: %w", ch.AccountID, err)
		}
	}

	for _, ch := range applied.Parties {
		party, err := uow.PartyForUpdate(ctx, ch.Kind, ch.PartyID)
		if err != nil {
			return fmt.Errorf("failed to lock party %s for reversal: %w", ch.PartyID, err)
		}

		party.TotalAmount = party.TotalAmount.Sub(ch.TotalDelta)
		party.PaidAmount = party.PaidAmount.Sub(ch.PaidDelta)
		party.Principal = party.Principal.Sub(ch.PrincipalDelta)
		if party.TotalAmount.IsNegative() || party.PaidAmount.IsNegative() || party.Principal.IsNegative() {
			return fmt.Errorf("%w: reversing %s would drive party %s negative",
				apperrors.ErrConsistency, record.TransactionID, ch.PartyID)
		}
		party.RecalcTotalDue()

		if cd := party.CategoryDue(ch.Category); cd != nil && !ch.CategoryDueDelta.IsZero() {
			*cd = domain.MaxZero(cd.Sub(ch.CategoryDueDelta))
		}

		party.LastUpdatedAt = now
		party.LastUpdatedBy = userID
		if err := uow.SaveParty(ctx, *party); err != nil {
			return fmt.Errorf("failed to persist party %s during reversal: %w", ch.PartyID, err)
		}
	}

	for _, holderID := range applied.FamilyHolderIDs {
		if _, err := recomputeFamily(ctx, uow, holderID); err != nil {
			return err
		}
	}

	if applied.LinkedExchangeEventID != "" {
		event, err := uow.ExchangeEventByID(ctx, applied.LinkedExchangeEventID)
		if err != nil {
			return fmt.Errorf("failed to load linked exchange event %s: %w", applied.LinkedExchangeEventID, err)
		}
		event.LinkedTransactionID = ""
		if err := uow.UpdateExchangeEvent(ctx, *event); err != nil {
			return fmt.Errorf("failed to unlink exchange event %s: %w", event.EventID, err)
		}
	}

	return nil
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
