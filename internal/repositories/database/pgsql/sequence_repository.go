package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arafah-soft/agency_erp/internal/apperrors"
	portsrepo "github.com/arafah-soft/agency_erp/internal/core/ports/repositories"
)

// PgxSequenceRepository hands out per-key counters. The upsert makes the
// increment atomic, so numbers never repeat even under concurrent writers.
type PgxSequenceRepository struct {
	db *pgxpool.Pool
}

var _ portsrepo.SequenceRepository = (*PgxSequenceRepository)(nil)

func (r *PgxSequenceRepository) Next(ctx context.Context, key string) (int64, error) {
	return nextSequence(ctx, r.db, key)
}

func nextSequence(ctx context.Context, db queryExecer, key string) (int64, error) {
	query := `
		INSERT INTO sequences (key, value)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET value = sequences.value + 1
		RETURNING value;
	`
	var value int64
	if err := db.QueryRow(ctx, query, key).Scan(&value); err != nil {
		return 0, apperrors.NewAppError(500, "failed to advance sequence "+key, err)
	}
	return value, nil
}
