package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arafah-soft/agency_erp/internal/apperrors"
	"github.com/arafah-soft/agency_erp/internal/core/domain"
	portsrepo "github.com/arafah-soft/agency_erp/internal/core/ports/repositories"
)

const partyColumns = `
	party_id, kind, name, external_code, phone,
	opening_total, total_amount, paid_amount, total_due,
	hajj_due, umrah_due, ticket_due,
	loan_direction, principal,
	primary_holder_id, family_total, family_paid, family_due,
	is_active, created_at, created_by, last_updated_at, last_updated_by`

type PgxPartyRepository struct {
	db *pgxpool.Pool
}

func newPgxPartyRepository(db *pgxpool.Pool) portsrepo.PartyRepository {
	return &PgxPartyRepository{db: db}
}

var _ portsrepo.PartyRepository = (*PgxPartyRepository)(nil)

func (r *PgxPartyRepository) SaveParty(ctx context.Context, party domain.Party) error {
	return upsertParty(ctx, r.db, party)
}

func (r *PgxPartyRepository) UpdateParty(ctx context.Context, party domain.Party) error {
	return upsertParty(ctx, r.db, party)
}

func (r *PgxPartyRepository) FindPartyByID(ctx context.Context, kind domain.PartyKind, partyID string) (*domain.Party, error) {
	query := `SELECT ` + partyColumns + ` FROM parties WHERE party_id = $1 AND kind = $2;`
	party, err := scanParty(r.db.QueryRow(ctx, query, partyID, string(kind)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find party by ID "+partyID, err)
	}
	return party, nil
}

func (r *PgxPartyRepository) FindPartyByExternalCode(ctx context.Context, kind domain.PartyKind, code string) (*domain.Party, error) {
	if code == "" {
		return nil, apperrors.ErrNotFound
	}
	query := `SELECT ` + partyColumns + ` FROM parties WHERE external_code = $1 AND kind = $2;`
	party, err := scanParty(r.db.QueryRow(ctx, query, code, string(kind)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find party by code "+code, err)
	}
	return party, nil
}

func (r *PgxPartyRepository) ListParties(ctx context.Context, kind domain.PartyKind, limit int, offset int) ([]domain.Party, error) {
	query := `SELECT ` + partyColumns + `
		FROM parties
		WHERE kind = $1
		ORDER BY party_id
		LIMIT $2 OFFSET $3;`
	rows, err := r.db.Query(ctx, query, string(kind), limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list parties", err)
	}
	defer rows.Close()

	parties := make([]domain.Party, 0, limit)
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan party row", err)
		}
		parties = append(parties, *p)
	}
	return parties, rows.Err()
}

func (r *PgxPartyRepository) ListDependents(ctx context.Context, primaryHolderID string) ([]domain.Party, error) {
	query := `SELECT ` + partyColumns + `
		FROM parties
		WHERE kind = $1 AND primary_holder_id = $2
		ORDER BY party_id;`
	rows, err := r.db.Query(ctx, query, string(domain.PartyPilgrim), primaryHolderID)
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

func scanParty(row rowScanner) (*domain.Party, error) {
	var p domain.Party
	err := row.Scan(
		&p.PartyID,
		&p.Kind,
		&p.Name,
		&p.ExternalCode,
		&p.Phone,
		&p.OpeningTotal,
		&p.TotalAmount,
		&p.PaidAmount,
		&p.TotalDue,
		&p.HajjDue,
		&p.UmrahDue,
		&p.TicketDue,
		&p.LoanDirection,
		&p.Principal,
		&p.PrimaryHolderID,
		&p.FamilyTotal,
		&p.FamilyPaid,
		&p.FamilyDue,
		&p.IsActive,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func upsertParty(ctx context.Context, db queryExecer, party domain.Party) error {
	query := `
		INSERT INTO parties (party_id, kind, name, external_code, phone,
			opening_total, total_amount, paid_amount, total_due,
			hajj_due, umrah_due, ticket_due,
			loan_direction, principal,
			primary_holder_id, family_total, family_paid, family_due,
			is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		ON CONFLICT (party_id) DO UPDATE SET
			name = EXCLUDED.name,
			external_code = EXCLUDED.external_code,
			phone = EXCLUDED.phone,
			total_amount = EXCLUDED.total_amount,
			paid_amount = EXCLUDED.paid_amount,
			total_due = EXCLUDED.total_due,
			hajj_due = EXCLUDED.hajj_due,
			umrah_due = EXCLUDED.umrah_due,
			ticket_due = EXCLUDED.ticket_due,
			principal = EXCLUDED.principal,
			primary_holder_id = EXCLUDED.primary_holder_id,
			family_total = EXCLUDED.family_total,
			family_paid = EXCLUDED.family_paid,
			family_due = EXCLUDED.family_due,
			is_active = EXCLUDED.is_active,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := db.Exec(ctx, query,
		party.PartyID,
		string(party.Kind),
		party.Name,
		party.ExternalCode,
		party.Phone,
		party.OpeningTotal,
		party.TotalAmount,
		party.PaidAmount,
		party.TotalDue,
		party.HajjDue,
		party.UmrahDue,
		party.TicketDue,
		string(party.LoanDirection),
		party.Principal,
		party.PrimaryHolderID,
		party.FamilyTotal,
		party.FamilyPaid,
		party.FamilyDue,
		party.IsActive,
		party.CreatedAt,
		party.CreatedBy,
		party.LastUpdatedAt,
		party.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save party "+party.PartyID, err)
	}
	return nil
}
