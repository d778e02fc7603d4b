package leads

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepo persists leads via database/sql (pgx stdlib driver).
//
// Schema:
//
//	CREATE TABLE leads (
//	    id              TEXT PRIMARY KEY,
//	    lead_key        TEXT UNIQUE NOT NULL,
//	    phone           TEXT,
//	    projet          TEXT NOT NULL,
//	    type_lead       TEXT NOT NULL,
//	    lead_created_at TIMESTAMPTZ NOT NULL,
//	    created_at      TIMESTAMPTZ NOT NULL
//	);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) CreateOrGet(ctx context.Context, l Lead) (Lead, error) {
	// Insert-or-ignore on lead_key, then read back whichever row owns the
	// key. Two agents entering the same lead land on one row.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO leads (id, lead_key, phone, projet, type_lead, lead_created_at, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)
		ON CONFLICT (lead_key) DO NOTHING`,
		l.ID, l.LeadKey, l.Phone, l.Projet, l.TypeLead, l.LeadCreatedAt, l.CreatedAt,
	)
	if err != nil {
		return Lead{}, err
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, lead_key, COALESCE(phone, ''), projet, type_lead, lead_created_at, created_at
		FROM leads WHERE lead_key = $1`, l.LeadKey)
	return scanLead(row)
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Lead, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, lead_key, COALESCE(phone, ''), projet, type_lead, lead_created_at, created_at
		FROM leads WHERE id = $1`, id)
	l, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return l, err
}

func scanLead(row *sql.Row) (Lead, error) {
	var l Lead
	err := row.Scan(&l.ID, &l.LeadKey, &l.Phone, &l.Projet, &l.TypeLead, &l.LeadCreatedAt, &l.CreatedAt)
	return l, err
}
