package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo appends events to the audit_events table. INSERT-only;
// retention is handled operationally.
//
// Schema:
//
//	CREATE TABLE audit_events (
//	    id            TEXT PRIMARY KEY,
//	    type          TEXT NOT NULL,
//	    actor_user_id TEXT,
//	    agent         TEXT,
//	    ip_address    TEXT,
//	    lead_id       TEXT,
//	    call_id       TEXT,
//	    message       TEXT,
//	    created_at    TIMESTAMPTZ NOT NULL
//	);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, type, actor_user_id, agent, ip_address, lead_id, call_id, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, string(e.Type), e.ActorUserID, e.Agent, e.IPAddress, e.LeadID, e.CallID, e.Message, e.CreatedAt)
	return err
}
