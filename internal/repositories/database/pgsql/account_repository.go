package pgsql

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arafah-soft/agency_erp/internal/apperrors"
	"github.com/arafah-soft/agency_erp/internal/core/domain"
	portsrepo "github.com/arafah-soft/agency_erp/internal/core/ports/repositories"
	"github.com/arafah-soft/agency_erp/internal/utils/pagination"
)

const accountColumns = `
	account_id, account_number, name, currency_code, opening_balance, balance, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	db *pgxpool.Pool
}

func newPgxAccountRepository(db *pgxpool.Pool) portsrepo.AccountRepository {
	return &PgxAccountRepository{db: db}
}

var _ portsrepo.AccountRepository = (*PgxAccountRepository)(nil)

func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.BankAccount) error {
	return upsertAccount(ctx, r.db, account)
}

func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.BankAccount) error {
	return upsertAccount(ctx, r.db, account)
}

func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.BankAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	account, err := scanAccount(r.db.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find account by ID "+accountID, err)
	}
	return account, nil
}

func (r *PgxAccountRepository) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.BankAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1;`
	account, err := scanAccount(r.db.QueryRow(ctx, query, accountNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find account by number "+accountNumber, err)
	}
	return account, nil
}

func (r *PgxAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.BankAccount, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts
		ORDER BY account_number
		LIMIT $1 OFFSET $2;`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list accounts", err)
	}
	defer rows.Close()

	accounts := make([]domain.BankAccount, 0, limit)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account row", err)
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

func (r *PgxAccountRepository) ListAccountHistory(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.AccountHistoryEntry, *string, error) {
	query := `
		SELECT entry_id, account_id, transaction_id, direction, amount, balance_after, note, at
		FROM account_history
		WHERE account_id = $1
	`
	args := []any{accountID}

	if nextToken != nil {
		cursorAt, cursorID, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid pagination token", err)
		}
		args = append(args, cursorAt, cursorID)
		query += ` AND (at, entry_id) < ($2, $3)`
	}

	args = append(args, limit+1)
	query += ` ORDER BY at DESC, entry_id DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list history for account "+accountID, err)
	}
	defer rows.Close()

	entries := make([]domain.AccountHistoryEntry, 0, limit)
	for rows.Next() {
		var e domain.AccountHistoryEntry
		if err := rows.Scan(&e.EntryID, &e.AccountID, &e.TransactionID, &e.Direction, &e.Amount, &e.BalanceAfter, &e.Note, &e.At); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan history row", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed reading history rows", err)
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

func scanAccount(row rowScanner) (*domain.BankAccount, error) {
	var a domain.BankAccount
	err := row.Scan(
		&a.AccountID,
		&a.AccountNumber,
		&a.Name,
		&a.CurrencyCode,
		&a.OpeningBalance,
		&a.Balance,
		&a.IsActive,
		&a.CreatedAt,
		&a.CreatedBy,
		&a.LastUpdatedAt,
		&a.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func upsertAccount(ctx context.Context, db queryExecer, account domain.BankAccount) error {
	query := `
		INSERT INTO accounts (account_id, account_number, name, currency_code, opening_balance, balance, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (account_id) DO UPDATE SET
			name = EXCLUDED.name,
			balance = EXCLUDED.balance,
			is_active = EXCLUDED.is_active,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := db.Exec(ctx, query,
		account.AccountID,
		account.AccountNumber,
		account.Name,
		account.CurrencyCode,
		account.OpeningBalance,
		account.Balance,
		account.IsActive,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save account "+account.AccountID, err)
	}
	return nil
}
