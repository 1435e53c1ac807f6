package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arafah-soft/agency_erp/internal/core/services"
)

// NewRepositories wires the pgsql implementations of every persistence port.
func NewRepositories(dbPool *pgxpool.Pool) services.Repositories {
	return services.Repositories{
		Ledger:   newPgxLedgerRepository(dbPool),
		Account:  newPgxAccountRepository(dbPool),
		Party:    newPgxPartyRepository(dbPool),
		Currency: newPgxCurrencyRepository(dbPool),
		User:     newPgxUserRepository(dbPool),
	}
}

// NewSequenceRepository exposes the standalone sequence counter, used by jobs
// that allocate human-readable ids outside a ledger unit.
func NewSequenceRepository(dbPool *pgxpool.Pool) *PgxSequenceRepository {
	return &PgxSequenceRepository{db: dbPool}
}
