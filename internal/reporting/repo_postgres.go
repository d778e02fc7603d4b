package reporting

import (
	"context"
	"database/sql"
	"fmt"

	"callcenter-relance/pkg/utils"
)

// PostgresRepo reads activity rows straight from the leads and calls
// tables (schema owned by the leads and actions repos).
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const activitySelect = `
	SELECT l.id, l.lead_key, COALESCE(l.phone, ''), l.projet, l.type_lead, l.lead_created_at,
	       (SELECT c.result FROM calls c
	        WHERE c.lead_id = l.id AND c.done_at IS NOT NULL
	        ORDER BY c.done_at DESC LIMIT 1),
	       (SELECT c.done_at FROM calls c
	        WHERE c.lead_id = l.id AND c.done_at IS NOT NULL
	        ORDER BY c.done_at DESC LIMIT 1),
	       (SELECT c.created_at FROM calls c
	        WHERE c.lead_id = l.id AND c.done_at IS NOT NULL
	        ORDER BY c.done_at ASC LIMIT 1),
	       (SELECT COUNT(*) FROM calls c
	        WHERE c.lead_id = l.id AND c.done_at IS NOT NULL)
	FROM leads l`

func (r *PostgresRepo) AllLeadActivity(ctx context.Context, f Filter) ([]LeadActivity, error) {
	where, args := filterClause(f)
	rows, err := r.db.QueryContext(ctx,
		activitySelect+where+` ORDER BY l.lead_created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivity(rows)
}

func (r *PostgresRepo) ListLeadActivity(ctx context.Context, f Filter, p utils.Page) ([]LeadActivity, int, error) {
	where, args := filterClause(f)

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM leads l`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(activitySelect+where+` ORDER BY l.lead_created_at DESC LIMIT $%d OFFSET $%d`,
		len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, query, append(args, p.Size, p.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := scanActivity(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func scanActivity(rows *sql.Rows) ([]LeadActivity, error) {
	items := []LeadActivity{}
	for rows.Next() {
		var it LeadActivity
		var lastResult sql.NullString
		var lastDone, firstCall sql.NullTime
		if err := rows.Scan(&it.LeadID, &it.LeadKey, &it.Phone, &it.Projet, &it.TypeLead,
			&it.LeadCreatedAt, &lastResult, &lastDone, &firstCall, &it.CallCount); err != nil {
			return nil, err
		}
		if lastResult.Valid {
			it.LastResult = lastResult.String
		}
		if lastDone.Valid {
			t := lastDone.Time
			it.LastDoneAt = &t
		}
		if firstCall.Valid {
			t := firstCall.Time
			it.FirstCallAt = &t
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// filterClause builds an optional WHERE over projet/type_lead with
// positional args.
func filterClause(f Filter) (string, []any) {
	clauses := ""
	args := []any{}
	if f.Projet != "" {
		args = append(args, f.Projet)
		clauses = fmt.Sprintf(" WHERE l.projet = $%d", len(args))
	}
	if f.TypeLead != "" {
		args = append(args, f.TypeLead)
		if clauses == "" {
			clauses = fmt.Sprintf(" WHERE l.type_lead = $%d", len(args))
		} else {
			clauses += fmt.Sprintf(" AND l.type_lead = $%d", len(args))
		}
	}
	return clauses, args
}
