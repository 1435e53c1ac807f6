package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arafah-soft/agency_erp/internal/apperrors"
	"github.com/arafah-soft/agency_erp/internal/core/domain"
	portsrepo "github.com/arafah-soft/agency_erp/internal/core/ports/repositories"
	"github.com/arafah-soft/agency_erp/internal/utils/pagination"
)

const transactionColumns = `
	transaction_id, transaction_no, kind, amount, fee, party_kind, party_id,
	source_account_id, target_account_id, service_category, status, notes,
	disable_reclassify, completed_at, is_active, applied,
	created_at, created_by, last_updated_at, last_updated_by`

// PgxLedgerRepository persists transaction records and runs atomic ledger
// units as database transactions with row locks.
type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepository {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepository = (*PgxLedgerRepository)(nil)

// Atomically runs fn inside one database transaction. SELECT ... FOR UPDATE
// inside the unit serializes writers touching the same rows.
func (r *PgxLedgerRepository) Atomically(ctx context.Context, fn func(uow portsrepo.LedgerUnitOfWork) error) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // No-op once committed.

	if err := fn(&pgxUnitOfWork{tx: tx}); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// FindTransactionByID retrieves one transaction record.
func (r *PgxLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.TransactionRecord, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	rec, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction by ID "+transactionID, err)
	}
	return rec, nil
}

// ListTransactions returns one keyset page plus credit/debit sums over the
// whole filtered window.
func (r *PgxLedgerRepository) ListTransactions(ctx context.Context, filter portsrepo.TransactionFilter) ([]domain.TransactionRecord, *string, portsrepo.LedgerTotals, error) {
	var totals portsrepo.LedgerTotals

	where, args := buildTransactionWhere(filter)

	totalsQuery := `
		SELECT COALESCE(SUM(amount) FILTER (WHERE kind = 'CREDIT'), 0),
		       COALESCE(SUM(amount) FILTER (WHERE kind = 'DEBIT'), 0)
		FROM transactions ` + where + `;`
	if err := r.Pool.QueryRow(ctx, totalsQuery, args...).Scan(&totals.CreditTotal, &totals.DebitTotal); err != nil {
		return nil, nil, totals, apperrors.NewAppError(500, "failed to sum transactions", err)
	}

	// Cursor applies only to the page, not to the window totals.
	if filter.NextToken != nil {
		cursorAt, cursorID, err := pagination.DecodeCursor(*filter.NextToken)
		if err != nil {
			return nil, nil, totals, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		args = append(args, cursorAt, cursorID)
		clause := fmt.Sprintf("(created_at, transaction_id) < ($%d, $%d)", len(args)-1, len(args))
		if where == "" {
			where = "WHERE " + clause
		} else {
			where += " AND " + clause
		}
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit+1)

	pageQuery := `SELECT ` + transactionColumns + `
		FROM transactions ` + where + `
		ORDER BY created_at DESC, transaction_id DESC
		LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, pageQuery, args...)
	if err != nil {
		return nil, nil, totals, apperrors.NewAppError(500, "failed to list transactions", err)
	}
	defer rows.Close()

	records := make([]domain.TransactionRecord, 0, limit)
	for rows.Next() {
		rec, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, totals, apperrors.NewAppError(500, "failed to scan transaction row", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, totals, apperrors.NewAppError(500, "failed reading transaction rows", err)
	}

	var nextToken *string
	if len(records) > limit {
		records = records[:limit]
		last := records[len(records)-1]
		token := pagination.EncodeCursor(last.CreatedAt, last.TransactionID)
		nextToken = &token
	}
	return records, nextToken, totals, nil
}

func buildTransactionWhere(filter portsrepo.TransactionFilter) (string, []any) {
	clauses := make([]string, 0, 8)
	args := make([]any, 0, 8)
	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if !filter.IncludeInactive {
		clauses = append(clauses, "is_active = TRUE")
	}
	if filter.From != nil {
		add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("created_at < $%d", *filter.To)
	}
	if filter.Kind != "" {
		add("kind = $%d", string(filter.Kind))
	}
	if filter.PartyKind != "" {
		add("party_kind = $%d", string(filter.PartyKind))
	}
	if filter.PartyID != "" {
		add("party_id = $%d", filter.PartyID)
	}
	if filter.AccountID != "" {
		args = append(args, filter.AccountID)
		clauses = append(clauses, fmt.Sprintf("(source_account_id = $%d OR target_account_id = $%d)", len(args), len(args)))
	}
	if filter.ServiceCategory != "" {
		add("service_category = $%d", string(filter.ServiceCategory))
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*domain.TransactionRecord, error) {
	var rec domain.TransactionRecord
	var completedAt *time.Time
	var applied []byte

	err := row.Scan(
		&rec.TransactionID,
		&rec.TransactionNo,
		&rec.Kind,
		&rec.Amount,
		&rec.Fee,
		&rec.PartyKind,
		&rec.PartyID,
		&rec.SourceAccountID,
		&rec.TargetAccountID,
		&rec.ServiceCategory,
		&rec.Status,
		&rec.Notes,
		&rec.DisableReclassify,
		&completedAt,
		&rec.IsActive,
		&applied,
		&rec.CreatedAt,
		&rec.CreatedBy,
		&rec.LastUpdatedAt,
		&rec.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	rec.CompletedAt = completedAt
	if len(applied) > 0 {
		var effects domain.AppliedEffects
		if err := json.Unmarshal(applied, &effects); err != nil {
			return nil, fmt.Errorf("failed to decode applied effects: %w", err)
		}
		rec.Applied = &effects
	}
	return &rec, nil
}

// pgxUnitOfWork implements the ledger unit of work over one open transaction.
type pgxUnitOfWork struct {
	tx pgx.Tx
}

var _ portsrepo.LedgerUnitOfWork = (*pgxUnitOfWork)(nil)

func (u *pgxUnitOfWork) AccountForUpdate(ctx context.Context, accountID string) (*domain.BankAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1 FOR UPDATE;`
	account, err := scanAccount(u.tx.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock account "+accountID, err)
	}
	return account, nil
}

func (u *pgxUnitOfWork) SaveAccount(ctx context.Context, account domain.BankAccount) error {
	return upsertAccount(ctx, u.tx, account)
}

func (u *pgxUnitOfWork) AppendAccountHistory(ctx context.Context, entry domain.AccountHistoryEntry) error {
	query := `
		INSERT INTO account_history (entry_id, account_id, transaction_id, direction, amount, balance_after, note, at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := u.tx.Exec(ctx, query,
		entry.EntryID,
		entry.AccountID,
		entry.TransactionID,
		string(entry.Direction),
		entry.Amount,
		entry.BalanceAfter,
		entry.Note,
		entry.At,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to append history for account "+entry.AccountID, err)
	}
	return nil
}

func (u *pgxUnitOfWork) PartyForUpdate(ctx context.Context, kind domain.PartyKind, partyID string) (*domain.Party, error) {
	query := `SELECT ` + partyColumns + ` FROM parties WHERE party_id = $1 AND kind = $2 FOR UPDATE;`
	party, err := scanParty(u.tx.QueryRow(ctx, query, partyID, string(kind)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock party "+partyID, err)
	}
	return party, nil
}

func (u *pgxUnitOfWork) PartyByExternalCode(ctx context.Context, kind domain.PartyKind, code string) (*domain.Party, error) {
	if code == "" {
		return nil, apperrors.ErrNotFound
	}
	query := `SELECT ` + partyColumns + ` FROM parties WHERE external_code = $1 AND kind = $2 FOR UPDATE;`
	party, err := scanParty(u.tx.QueryRow(ctx, query, code, string(kind)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock party by code "+code, err)
	}
	return party, nil
}

func (u *pgxUnitOfWork) SaveParty(ctx context.Context, party domain.Party) error {
	return upsertParty(ctx, u.tx, party)
}

func (u *pgxUnitOfWork) ListDependents(ctx context.Context, primaryHolderID string) ([]domain.Party, error) {
	query := `SELECT ` + partyColumns + `
		FROM parties
		WHERE kind = $1 AND primary_holder_id = $2
		ORDER BY party_id
		FOR UPDATE;`
	rows, err := u.tx.Query(ctx, query, string(domain.PartyPilgrim), primaryHolderID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list dependents of "+primaryHolderID, err)
	}
	defer rows.Close()

	dependents := make([]domain.Party, 0)
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan dependent row", err)
		}
		dependents = append(dependents, *p)
	}
	return dependents, rows.Err()
}

func (u *pgxUnitOfWork) LotsForUpdate(ctx context.Context, counterID string) ([]domain.CurrencyLot, error) {
	query := `
		SELECT lot_id, counter_id, quantity_remaining, purchase_rate, purchase_cost, created_at
		FROM currency_lots
		WHERE counter_id = $1
		ORDER BY created_at, lot_id
		FOR UPDATE;
	`
	rows, err := u.tx.Query(ctx, query, counterID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to lock lots for counter "+counterID, err)
	}
	defer rows.Close()

	lots := make([]domain.CurrencyLot, 0)
	for rows.Next() {
		var lot domain.CurrencyLot
		if err := rows.Scan(&lot.LotID, &lot.CounterID, &lot.QuantityRemaining, &lot.PurchaseRate, &lot.PurchaseCost, &lot.CreatedAt); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan lot row", err)
		}
		lots = append(lots, lot)
	}
	return lots, rows.Err()
}

func (u *pgxUnitOfWork) SaveLot(ctx context.Context, lot domain.CurrencyLot) error {
	query := `
		INSERT INTO currency_lots (lot_id, counter_id, quantity_remaining, purchase_rate, purchase_cost, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (lot_id) DO UPDATE SET
			quantity_remaining = EXCLUDED.quantity_remaining;
	`
	_, err := u.tx.Exec(ctx, query, lot.LotID, lot.CounterID, lot.QuantityRemaining, lot.PurchaseRate, lot.PurchaseCost, lot.CreatedAt)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save lot "+lot.LotID, err)
	}
	return nil
}

func (u *pgxUnitOfWork) DeleteLot(ctx context.Context, lotID string) error {
	tag, err := u.tx.Exec(ctx, `DELETE FROM currency_lots WHERE lot_id = $1;`, lotID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete lot "+lotID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (u *pgxUnitOfWork) SaveExchangeEvent(ctx context.Context, event domain.ExchangeEvent) error {
	query := `
		INSERT INTO exchange_events (event_id, counter_id, type, quantity, rate, revenue, cost_of_goods_sold, realized_profit_loss, linked_transaction_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := u.tx.Exec(ctx, query,
		event.EventID,
		event.CounterID,
		string(event.Type),
		event.Quantity,
		event.Rate,
		event.Revenue,
		event.CostOfGoodsSold,
		event.RealizedProfitLoss,
		event.LinkedTransactionID,
		event.CreatedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save exchange event "+event.EventID, err)
	}
	return nil
}

func (u *pgxUnitOfWork) UpdateExchangeEvent(ctx context.Context, event domain.ExchangeEvent) error {
	query := `UPDATE exchange_events SET linked_transaction_id = $2 WHERE event_id = $1;`
	tag, err := u.tx.Exec(ctx, query, event.EventID, event.LinkedTransactionID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update exchange event "+event.EventID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (u *pgxUnitOfWork) OldestUnlinkedEvent(ctx context.Context, counterID string) (*domain.ExchangeEvent, error) {
	query := `
		SELECT event_id, counter_id, type, quantity, rate, revenue, cost_of_goods_sold, realized_profit_loss, linked_transaction_id, created_at
		FROM exchange_events
		WHERE counter_id = $1 AND linked_transaction_id = ''
		ORDER BY created_at, event_id
		LIMIT 1
		FOR UPDATE;
	`
	event, err := scanExchangeEvent(u.tx.QueryRow(ctx, query, counterID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find unlinked event for counter "+counterID, err)
	}
	return event, nil
}

func (u *pgxUnitOfWork) ExchangeEventByID(ctx context.Context, eventID string) (*domain.ExchangeEvent, error) {
	query := `
		SELECT event_id, counter_id, type, quantity, rate, revenue, cost_of_goods_sold, realized_profit_loss, linked_transaction_id, created_at
		FROM exchange_events
		WHERE event_id = $1
		FOR UPDATE;
	`
	event, err := scanExchangeEvent(u.tx.QueryRow(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find exchange event "+eventID, err)
	}
	return event, nil
}

func scanExchangeEvent(row rowScanner) (*domain.ExchangeEvent, error) {
	var e domain.ExchangeEvent
	err := row.Scan(
		&e.EventID,
		&e.CounterID,
		&e.Type,
		&e.Quantity,
		&e.Rate,
		&e.Revenue,
		&e.CostOfGoodsSold,
		&e.RealizedProfitLoss,
		&e.LinkedTransactionID,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (u *pgxUnitOfWork) TransactionForUpdate(ctx context.Context, transactionID string) (*domain.TransactionRecord, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1 FOR UPDATE;`
	rec, err := scanTransaction(u.tx.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock transaction "+transactionID, err)
	}
	return rec, nil
}

func (u *pgxUnitOfWork) SaveTransactionRecord(ctx context.Context, record domain.TransactionRecord) error {
	applied, err := marshalApplied(record.Applied)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO transactions (` + strings.TrimSpace(transactionColumns) + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	_, err = u.tx.Exec(ctx, query,
		record.TransactionID,
		record.TransactionNo,
		string(record.Kind),
		record.Amount,
		record.Fee,
		string(record.PartyKind),
		record.PartyID,
		record.SourceAccountID,
		record.TargetAccountID,
		string(record.ServiceCategory),
		string(record.Status),
		record.Notes,
		record.DisableReclassify,
		record.CompletedAt,
		record.IsActive,
		applied,
		record.CreatedAt,
		record.CreatedBy,
		record.LastUpdatedAt,
		record.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert transaction "+record.TransactionID, err)
	}
	return nil
}

func (u *pgxUnitOfWork) UpdateTransactionRecord(ctx context.Context, record domain.TransactionRecord) error {
	applied, err := marshalApplied(record.Applied)
	if err != nil {
		return err
	}
	query := `
		UPDATE transactions SET
			amount = $2, party_kind = $3, party_id = $4, status = $5,
			completed_at = $6, is_active = $7, applied = $8,
			last_updated_at = $9, last_updated_by = $10
		WHERE transaction_id = $1;
	`
	tag, err := u.tx.Exec(ctx, query,
		record.TransactionID,
		record.Amount,
		string(record.PartyKind),
		record.PartyID,
		string(record.Status),
		record.CompletedAt,
		record.IsActive,
		applied,
		record.LastUpdatedAt,
		record.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update transaction "+record.TransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (u *pgxUnitOfWork) NextSequence(ctx context.Context, key string) (int64, error) {
	return nextSequence(ctx, u.tx, key)
}

func marshalApplied(applied *domain.AppliedEffects) ([]byte, error) {
	if applied == nil {
		return nil, nil
	}
	data, err := json.Marshal(applied)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to encode applied effects", err)
	}
	return data, nil
}
