// Package memory provides an in-memory implementation of every persistence
// port. It backs the service test suites and small single-process deployments;
// the pgsql package is the production implementation.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/arafah-soft/agency_erp/internal/apperrors"
	"github.com/arafah-soft/agency_erp/internal/core/domain"
	portsrepo "github.com/arafah-soft/agency_erp/internal/core/ports/repositories"
	"github.com/arafah-soft/agency_erp/internal/utils/pagination"
)

// data is the whole store state. Atomically snapshots it before running a
// unit of work so a failed unit leaves no trace.
type data struct {
	accounts     map[string]domain.BankAccount
	history      map[string][]domain.AccountHistoryEntry
	parties      map[string]domain.Party
	lots         map[string]domain.CurrencyLot
	events       map[string]domain.ExchangeEvent
	transactions map[string]domain.TransactionRecord
	users        map[string]domain.User
	sequences    map[string]int64
}

func newData() *data {
	return &data{
		accounts:     make(map[string]domain.BankAccount),
		history:      make(map[string][]domain.AccountHistoryEntry),
		parties:      make(map[string]domain.Party),
		lots:         make(map[string]domain.CurrencyLot),
		events:       make(map[string]domain.ExchangeEvent),
		transactions: make(map[string]domain.TransactionRecord),
		users:        make(map[string]domain.User),
		sequences:    make(map[string]int64),
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.accounts {
		c.accounts[k] = v
	}
	for k, v := range d.history {
		entries := make([]domain.AccountHistoryEntry, len(v))
		copy(entries, v)
		c.history[k] = entries
	}
	for k, v := range d.parties {
		c.parties[k] = v
	}
	for k, v := range d.lots {
		c.lots[k] = v
	}
	for k, v := range d.events {
		c.events[k] = v
	}
	for k, v := range d.transactions {
		c.transactions[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.sequences {
		c.sequences[k] = v
	}
	return c
}

// Store implements every repository port over process memory.
type Store struct {
	mu sync.Mutex
	d  *data
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{d: newData()}
}

var (
	_ portsrepo.LedgerRepository   = (*Store)(nil)
	_ portsrepo.AccountRepository  = (*Store)(nil)
	_ portsrepo.PartyRepository    = (*Store)(nil)
	_ portsrepo.CurrencyRepository = (*Store)(nil)
	_ portsrepo.UserRepository     = (*Store)(nil)
	_ portsrepo.SequenceRepository = (*Store)(nil)
)

// Atomically serializes units of work behind the store mutex and rolls the
// whole state back when fn fails.
func (s *Store) Atomically(ctx context.Context, fn func(uow portsrepo.LedgerUnitOfWork) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.d.clone()
	if err := fn(&unitOfWork{d: s.d}); err != nil {
		s.d = backup
		return err
	}
	return nil
}

func (s *Store) FindTransactionByID(ctx context.Context, transactionID string) (*domain.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.d.transactions[transactionID]
	if !ok {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	return &rec, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter portsrepo.TransactionFilter) ([]domain.TransactionRecord, *string, portsrepo.LedgerTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var totals portsrepo.LedgerTotals
	matched := make([]domain.TransactionRecord, 0)
	for _, rec := range s.d.transactions {
		if !matchesFilter(rec, filter) {
			continue
		}
		matched = append(matched, rec)
		switch rec.Kind {
		case domain.Credit:
			totals.CreditTotal = totals.CreditTotal.Add(rec.Amount)
		case domain.Debit:
			totals.DebitTotal = totals.DebitTotal.Add(rec.Amount)
		}
	}

	// Newest first, id as tie breaker, matching the pgsql ordering.
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].TransactionID > matched[j].TransactionID
	})

	if filter.NextToken != nil {
		cursorAt, cursorID, err := pagination.DecodeCursor(*filter.NextToken)
		if err != nil {
			return nil, nil, totals, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		start := sort.Search(len(matched), func(i int) bool {
			if !matched[i].CreatedAt.Equal(cursorAt) {
				return matched[i].CreatedAt.Before(cursorAt)
			}
			return matched[i].TransactionID <= cursorID
		})
		// Skip the cursor record itself.
		for start < len(matched) && matched[start].TransactionID == cursorID {
			start++
		}
		matched = matched[start:]
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var nextToken *string
	if len(matched) > limit {
		matched = matched[:limit]
		last := matched[len(matched)-1]
		token := pagination.EncodeCursor(last.CreatedAt, last.TransactionID)
		nextToken = &token
	}

	return matched, nextToken, totals, nil
}

func matchesFilter(rec domain.TransactionRecord, f portsrepo.TransactionFilter) bool {
	if !f.IncludeInactive && !rec.IsActive {
		return false
	}
	if f.From != nil && rec.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && !rec.CreatedAt.Before(*f.To) {
		return false
	}
	if f.Kind != "" && rec.Kind != f.Kind {
		return false
	}
	if f.PartyKind != "" && rec.PartyKind != f.PartyKind {
		return false
	}
	if f.PartyID != "" && rec.PartyID != f.PartyID {
		return false
	}
	if f.AccountID != "" && rec.SourceAccountID != f.AccountID && rec.TargetAccountID != f.AccountID {
		return false
	}
	if f.ServiceCategory != "" && rec.ServiceCategory != f.ServiceCategory {
		return false
	}
	if f.Status != "" && rec.Status != f.Status {
		return false
	}
	return true
}

// Account repository.

func (s *Store) SaveAccount(ctx context.Context, account domain.BankAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.accounts[account.AccountID] = account
	return nil
}

func (s *Store) UpdateAccount(ctx context.Context, account domain.BankAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.d.accounts[account.AccountID]; !ok {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, account.AccountID)
	}
	s.d.accounts[account.AccountID] = account
	return nil
}

func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.BankAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&unitOfWork{d: s.d}).AccountForUpdate(ctx, accountID)
}

func (s *Store) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.BankAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.d.accounts {
		if a.AccountNumber == accountNumber {
			account := a
			return &account, nil
		}
	}
	return nil, fmt.Errorf("%w: account number %s", apperrors.ErrNotFound, accountNumber)
}

func (s *Store) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.BankAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	accounts := make([]domain.BankAccount, 0, len(s.d.accounts))
	for _, a := range s.d.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].AccountNumber < accounts[j].AccountNumber })
	return page(accounts, limit, offset), nil
}

func (s *Store) ListAccountHistory(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.AccountHistoryEntry, *string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]domain.AccountHistoryEntry, len(s.d.history[accountID]))
	copy(entries, s.d.history[accountID])
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].At.Equal(entries[j].At) {
			return entries[i].At.After(entries[j].At)
		}
		return entries[i].EntryID > entries[j].EntryID
	})

	if nextToken != nil {
		cursorAt, cursorID, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		start := 0
		for start < len(entries) {
			e := entries[start]
			if e.At.Before(cursorAt) || (e.At.Equal(cursorAt) && e.EntryID < cursorID) {
				break
			}
			start++
		}
		entries = entries[start:]
	}

	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var token *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		t := pagination.EncodeCursor(last.At, last.EntryID)
		token = &t
	}
	return entries, token, nil
}

// Party repository.

func (s *Store) SaveParty(ctx context.Context, party domain.Party) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.parties[party.PartyID] = party
	return nil
}

func (s *Store) UpdateParty(ctx context.Context, party domain.Party) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.d.parties[party.PartyID]; !ok {
		return fmt.Errorf("%w: party %s", apperrors.ErrNotFound, party.PartyID)
	}
	s.d.parties[party.PartyID] = party
	return nil
}

func (s *Store) FindPartyByID(ctx context.Context, kind domain.PartyKind, partyID string) (*domain.Party, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&unitOfWork{d: s.d}).PartyForUpdate(ctx, kind, partyID)
}

func (s *Store) FindPartyByExternalCode(ctx context.Context, kind domain.PartyKind, code string) (*domain.Party, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&unitOfWork{d: s.d}).PartyByExternalCode(ctx, kind, code)
}

func (s *Store) ListParties(ctx context.Context, kind domain.PartyKind, limit int, offset int) ([]domain.Party, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	parties := make([]domain.Party, 0)
	for _, p := range s.d.parties {
		if p.Kind == kind {
			parties = append(parties, p)
		}
	}
	sort.Slice(parties, func(i, j int) bool { return parties[i].PartyID < parties[j].PartyID })
	return page(parties, limit, offset), nil
}

func (s *Store) ListDependents(ctx context.Context, primaryHolderID string) ([]domain.Party, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&unitOfWork{d: s.d}).ListDependents(ctx, primaryHolderID)
}

// Currency repository.

func (s *Store) ListLots(ctx context.Context, counterID string) ([]domain.CurrencyLot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&unitOfWork{d: s.d}).LotsForUpdate(ctx, counterID)
}

func (s *Store) ListExchangeEvents(ctx context.Context, counterID string, limit int, offset int) ([]domain.ExchangeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]domain.ExchangeEvent, 0)
	for _, e := range s.d.events {
		if e.CounterID == counterID {
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].CreatedAt.Before(events[j].CreatedAt)
		}
		return events[i].EventID < events[j].EventID
	})
	return page(events, limit, offset), nil
}

// User repository.

func (s *Store) SaveUser(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.users[user.UserID] = user
	return nil
}

func (s *Store) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.d.users[userID]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, userID)
	}
	return &u, nil
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.d.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, username)
}

// Sequence repository.

func (s *Store) Next(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.sequences[key]++
	return s.d.sequences[key], nil
}

func page[T any](items []T, limit int, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// unitOfWork operates on the store data without locking; Atomically already
// holds the mutex for the whole unit.
type unitOfWork struct {
	d *data
}

var _ portsrepo.LedgerUnitOfWork = (*unitOfWork)(nil)

func (u *unitOfWork) AccountForUpdate(ctx context.Context, accountID string) (*domain.BankAccount, error) {
	a, ok := u.d.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return &a, nil
}

func (u *unitOfWork) SaveAccount(ctx context.Context, account domain.BankAccount) error {
	u.d.accounts[account.AccountID] = account
	return nil
}

func (u *unitOfWork) AppendAccountHistory(ctx context.Context, entry domain.AccountHistoryEntry) error {
	entries := make([]domain.AccountHistoryEntry, len(u.d.history[entry.AccountID]), len(u.d.history[entry.AccountID])+1)
	copy(entries, u.d.history[entry.AccountID])
	u.d.history[entry.AccountID] = append(entries, entry)
	return nil
}

func (u *unitOfWork) PartyForUpdate(ctx context.Context, kind domain.PartyKind, partyID string) (*domain.Party, error) {
	p, ok := u.d.parties[partyID]
	if !ok || p.Kind != kind {
		return nil, fmt.Errorf("%w: %s party %s", apperrors.ErrNotFound, kind, partyID)
	}
	return &p, nil
}

func (u *unitOfWork) PartyByExternalCode(ctx context.Context, kind domain.PartyKind, code string) (*domain.Party, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: empty external code", apperrors.ErrNotFound)
	}
	for _, p := range u.d.parties {
		if p.Kind == kind && p.ExternalCode == code {
			party := p
			return &party, nil
		}
	}
	return nil, fmt.Errorf("%w: %s party with code %s", apperrors.ErrNotFound, kind, code)
}

func (u *unitOfWork) SaveParty(ctx context.Context, party domain.Party) error {
	u.d.parties[party.PartyID] = party
	return nil
}

func (u *unitOfWork) ListDependents(ctx context.Context, primaryHolderID string) ([]domain.Party, error) {
	dependents := make([]domain.Party, 0)
	for _, p := range u.d.parties {
		if p.Kind == domain.PartyPilgrim && p.PrimaryHolderID == primaryHolderID {
			dependents = append(dependents, p)
		}
	}
	sort.Slice(dependents, func(i, j int) bool { return dependents[i].PartyID < dependents[j].PartyID })
	return dependents, nil
}

func (u *unitOfWork) LotsForUpdate(ctx context.Context, counterID string) ([]domain.CurrencyLot, error) {
	lots := make([]domain.CurrencyLot, 0)
	for _, lot := range u.d.lots {
		if lot.CounterID == counterID {
			lots = append(lots, lot)
		}
	}
	// Oldest first: FIFO consumption order.
	sort.Slice(lots, func(i, j int) bool {
		if !lots[i].CreatedAt.Equal(lots[j].CreatedAt) {
			return lots[i].CreatedAt.Before(lots[j].CreatedAt)
		}
		return lots[i].LotID < lots[j].LotID
	})
	return lots, nil
}

func (u *unitOfWork) SaveLot(ctx context.Context, lot domain.CurrencyLot) error {
	u.d.lots[lot.LotID] = lot
	return nil
}

func (u *unitOfWork) DeleteLot(ctx context.Context, lotID string) error {
	if _, ok := u.d.lots[lotID]; !ok {
		return fmt.Errorf("%w: lot %s", apperrors.ErrNotFound, lotID)
	}
	delete(u.d.lots, lotID)
	return nil
}

func (u *unitOfWork) SaveExchangeEvent(ctx context.Context, event domain.ExchangeEvent) error {
	u.d.events[event.EventID] = event
	return nil
}

func (u *unitOfWork) UpdateExchangeEvent(ctx context.Context, event domain.ExchangeEvent) error {
	if _, ok := u.d.events[event.EventID]; !ok {
		return fmt.Errorf("%w: exchange event %s", apperrors.ErrNotFound, event.EventID)
	}
	u.d.events[event.EventID] = event
	return nil
}

func (u *unitOfWork) OldestUnlinkedEvent(ctx context.Context, counterID string) (*domain.ExchangeEvent, error) {
	var oldest *domain.ExchangeEvent
	for _, e := range u.d.events {
		if e.CounterID != counterID || e.LinkedTransactionID != "" {
			continue
		}
		event := e
		if oldest == nil || event.CreatedAt.Before(oldest.CreatedAt) ||
			(event.CreatedAt.Equal(oldest.CreatedAt) && event.EventID < oldest.EventID) {
			oldest = &event
		}
	}
	if oldest == nil {
		return nil, fmt.Errorf("%w: no unlinked exchange event for counter %s", apperrors.ErrNotFound, counterID)
	}
	return oldest, nil
}

func (u *unitOfWork) ExchangeEventByID(ctx context.Context, eventID string) (*domain.ExchangeEvent, error) {
	e, ok := u.d.events[eventID]
	if !ok {
		return nil, fmt.Errorf("%w: exchange event %s", apperrors.ErrNotFound, eventID)
	}
	return &e, nil
}

func (u *unitOfWork) TransactionForUpdate(ctx context.Context, transactionID string) (*domain.TransactionRecord, error) {
	rec, ok := u.d.transactions[transactionID]
	if !ok {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	return &rec, nil
}

func (u *unitOfWork) SaveTransactionRecord(ctx context.Context, record domain.TransactionRecord) error {
	u.d.transactions[record.TransactionID] = record
	return nil
}

func (u *unitOfWork) UpdateTransactionRecord(ctx context.Context, record domain.TransactionRecord) error {
	if _, ok := u.d.transactions[record.TransactionID]; !ok {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, record.TransactionID)
	}
	u.d.transactions[record.TransactionID] = record
	return nil
}

func (u *unitOfWork) NextSequence(ctx context.Context, key string) (int64, error) {
	u.d.sequences[key]++
	return u.d.sequences[key], nil
}

// Seed helpers used by tests and local bootstrap.

// SeedAccount inserts an account directly.
func (s *Store) SeedAccount(account domain.BankAccount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.accounts[account.AccountID] = account
}

// SeedParty inserts a party directly.
func (s *Store) SeedParty(party domain.Party) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.parties[party.PartyID] = party
}

// AccountBalance returns the current balance of an account, or zero when the
// account does not exist.
func (s *Store) AccountBalance(accountID string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.accounts[accountID].Balance
}

// HistoryFor returns a copy of an account's history, oldest first.
func (s *Store) HistoryFor(accountID string) []domain.AccountHistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]domain.AccountHistoryEntry, len(s.d.history[accountID]))
	copy(entries, s.d.history[accountID])
	sort.Slice(entries, func(i, j int) bool { return entries[i].At.Before(entries[j].At) })
	return entries
}
