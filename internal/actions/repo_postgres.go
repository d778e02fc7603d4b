package actions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"callcenter-relance/pkg/utils"
)

// PostgresRepo persists the call journal via database/sql (pgx stdlib
// driver).
//
// Schema:
//
//	CREATE TABLE calls (
//	    id            TEXT PRIMARY KEY,
//	    lead_id       TEXT NOT NULL REFERENCES leads(id),
//	    agent         TEXT NOT NULL,
//	    attempt_level INT  NOT NULL,
//	    result        TEXT NOT NULL,
//	    priority      TEXT NOT NULL,
//	    next_call_at  TIMESTAMPTZ,
//	    done_at       TIMESTAMPTZ,
//	    created_at    TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX calls_pending_idx ON calls (next_call_at) WHERE done_at IS NULL;
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) RecordAction(ctx context.Context, phone string, done CallAction, planned *CallAction) error {
	return utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE leads SET phone = $1 WHERE id = $2`, phone, done.LeadID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
		if err := insertCall(ctx, tx, done); err != nil {
			return err
		}
		if planned != nil {
			return insertCall(ctx, tx, *planned)
		}
		return nil
	})
}

func (r *PostgresRepo) GetFollowUpContext(ctx context.Context, callID string) (FollowUpContext, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT c.id, c.lead_id, c.agent, c.attempt_level, c.priority, c.next_call_at,
		       l.lead_key, COALESCE(l.phone, ''), l.projet, l.type_lead, l.lead_created_at
		FROM calls c
		JOIN leads l ON l.id = c.lead_id
		WHERE c.id = $1`, callID)

	var fc FollowUpContext
	var next sql.NullTime
	err := row.Scan(&fc.CallID, &fc.LeadID, &fc.Agent, &fc.AttemptLevel, &fc.Priority, &next,
		&fc.LeadKey, &fc.Phone, &fc.Projet, &fc.TypeLead, &fc.LeadCreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return FollowUpContext{}, ErrNotFound
	}
	if err != nil {
		return FollowUpContext{}, err
	}
	if next.Valid {
		t := next.Time
		fc.NextCallAt = &t
	}
	return fc, nil
}

func (r *PostgresRepo) CompleteFollowUp(ctx context.Context, callID, result, priority string, doneAt time.Time, next *CallAction) error {
	return utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		var leadID, agent string
		err := tx.QueryRowContext(ctx,
			`SELECT lead_id, agent FROM calls WHERE id = $1 FOR UPDATE`, callID,
		).Scan(&leadID, &agent)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE calls
			SET done_at = $1, result = $2, priority = $3, next_call_at = NULL
			WHERE id = $4`, doneAt, result, priority, callID)
		if err != nil {
			return err
		}

		if next != nil {
			n := *next
			n.LeadID = leadID
			n.Agent = agent
			return insertCall(ctx, tx, n)
		}
		return nil
	})
}

func (r *PostgresRepo) ListRelances(ctx context.Context, f Filter, p utils.Page) ([]RelanceItem, int, error) {
	where, args := filterClause(f, []string{"c.done_at IS NULL", "c.next_call_at IS NOT NULL"})

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM calls c JOIN leads l ON l.id = c.lead_id WHERE `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT c.id, l.lead_key, COALESCE(l.phone, ''), l.projet, l.type_lead,
		       c.agent, c.attempt_level, c.priority, c.next_call_at
		FROM calls c
		JOIN leads l ON l.id = c.lead_id
		WHERE %s
		ORDER BY c.next_call_at ASC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, query, append(args, p.Size, p.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []RelanceItem{}
	for rows.Next() {
		var it RelanceItem
		if err := rows.Scan(&it.CallID, &it.LeadKey, &it.Phone, &it.Projet, &it.TypeLead,
			&it.Agent, &it.AttemptLevel, &it.Priority, &it.NextCallAt); err != nil {
			return nil, 0, err
		}
		items = append(items, it)
	}
	return items, total, rows.Err()
}

func (r *PostgresRepo) ListCalls(ctx context.Context, f Filter, p utils.Page) ([]CallItem, int, error) {
	where, args := filterClause(f, []string{"c.done_at IS NOT NULL"})

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM calls c JOIN leads l ON l.id = c.lead_id WHERE `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT c.id, l.lead_key, COALESCE(l.phone, ''), l.projet, l.type_lead,
		       c.agent, c.attempt_level, c.result, c.priority, c.done_at
		FROM calls c
		JOIN leads l ON l.id = c.lead_id
		WHERE %s
		ORDER BY c.done_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, query, append(args, p.Size, p.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []CallItem{}
	for rows.Next() {
		var it CallItem
		if err := rows.Scan(&it.CallID, &it.LeadKey, &it.Phone, &it.Projet, &it.TypeLead,
			&it.Agent, &it.AttemptLevel, &it.Result, &it.Priority, &it.DoneAt); err != nil {
			return nil, 0, err
		}
		items = append(items, it)
	}
	return items, total, rows.Err()
}

func insertCall(ctx context.Context, tx *sql.Tx, c CallAction) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO calls (id, lead_id, agent, attempt_level, result, priority, next_call_at, done_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.LeadID, c.Agent, c.AttemptLevel, c.Result, c.Priority, c.NextCallAt, c.DoneAt, c.CreatedAt)
	return err
}

// filterClause appends projet/type_lead predicates with positional args.
func filterClause(f Filter, base []string) (string, []any) {
	where := base
	args := []any{}
	if f.Projet != "" {
		args = append(args, f.Projet)
		where = append(where, fmt.Sprintf("l.projet = $%d", len(args)))
	}
	if f.TypeLead != "" {
		args = append(args, f.TypeLead)
		where = append(where, fmt.Sprintf("l.type_lead = $%d", len(args)))
	}
	out := ""
	for i, w := range where {
		if i > 0 {
			out += " AND "
		}
		out += w
	}
	return out, args
}
