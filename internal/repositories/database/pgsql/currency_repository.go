package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arafah-soft/agency_erp/internal/apperrors"
	"github.com/arafah-soft/agency_erp/internal/core/domain"
	portsrepo "github.com/arafah-soft/agency_erp/internal/core/ports/repositories"
)

// PgxCurrencyRepository is the read side of the currency inventory. Mutation
// happens through the ledger unit of work.
type PgxCurrencyRepository struct {
	db *pgxpool.Pool
}

func newPgxCurrencyRepository(db *pgxpool.Pool) portsrepo.CurrencyRepository {
	return &PgxCurrencyRepository{db: db}
}

var _ portsrepo.CurrencyRepository = (*PgxCurrencyRepository)(nil)

func (r *PgxCurrencyRepository) ListLots(ctx context.Context, counterID string) ([]domain.CurrencyLot, error) {
	query := `
		SELECT lot_id, counter_id, quantity_remaining, purchase_rate, purchase_cost, created_at
		FROM currency_lots
		WHERE counter_id = $1
		ORDER BY created_at, lot_id;
	`
	rows, err := r.db.Query(ctx, query, counterID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list lots for counter "+counterID, err)
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

func (r *PgxCurrencyRepository) ListExchangeEvents(ctx context.Context, counterID string, limit int, offset int) ([]domain.ExchangeEvent, error) {
	query := `
		SELECT event_id, counter_id, type, quantity, rate, revenue, cost_of_goods_sold, realized_profit_loss, linked_transaction_id, created_at
		FROM exchange_events
		WHERE counter_id = $1
		ORDER BY created_at, event_id
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.db.Query(ctx, query, counterID, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list exchange events for counter "+counterID, err)
	}
	defer rows.Close()

	events := make([]domain.ExchangeEvent, 0, limit)
	for rows.Next() {
		e, err := scanExchangeEvent(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan exchange event row", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}
