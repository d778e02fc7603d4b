package actions

import (
	"context"
	"sort"
	"sync"
	"time"

	"callcenter-relance/internal/leads"
	"callcenter-relance/pkg/utils"
)

// MemoryRepo is an in-memory call journal for tests and early development.
// It joins against a leads.MemoryRepo the same way the Postgres repo joins
// against the leads table.
type MemoryRepo struct {
	mu      sync.Mutex
	rows    []CallAction
	leadsRe *leads.MemoryRepo
}

func NewMemoryRepo(leadRepo *leads.MemoryRepo) *MemoryRepo {
	return &MemoryRepo{leadsRe: leadRepo}
}

func (r *MemoryRepo) RecordAction(ctx context.Context, phone string, done CallAction, planned *CallAction) error {
	if err := r.leadsRe.SetPhone(ctx, done.LeadID, phone); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, done)
	if planned != nil {
		r.rows = append(r.rows, *planned)
	}
	return nil
}

func (r *MemoryRepo) GetFollowUpContext(ctx context.Context, callID string) (FollowUpContext, error) {
	r.mu.Lock()
	row, ok := r.find(callID)
	r.mu.Unlock()
	if !ok {
		return FollowUpContext{}, ErrNotFound
	}
	l, err := r.leadsRe.GetByID(ctx, row.LeadID)
	if err != nil {
		return FollowUpContext{}, err
	}
	return FollowUpContext{
		CallID:        row.ID,
		LeadID:        row.LeadID,
		Agent:         row.Agent,
		AttemptLevel:  row.AttemptLevel,
		Priority:      row.Priority,
		NextCallAt:    row.NextCallAt,
		LeadKey:       l.LeadKey,
		Phone:         l.Phone,
		Projet:        l.Projet,
		TypeLead:      l.TypeLead,
		LeadCreatedAt: l.LeadCreatedAt,
	}, nil
}

func (r *MemoryRepo) CompleteFollowUp(ctx context.Context, callID, result, priority string, doneAt time.Time, next *CallAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID != callID {
			continue
		}
		r.rows[i].DoneAt = &doneAt
		r.rows[i].Result = result
		r.rows[i].Priority = priority
		r.rows[i].NextCallAt = nil
		if next != nil {
			n := *next
			n.LeadID = r.rows[i].LeadID
			n.Agent = r.rows[i].Agent
			r.rows = append(r.rows, n)
		}
		return nil
	}
	return ErrNotFound
}

func (r *MemoryRepo) ListRelances(ctx context.Context, f Filter, p utils.Page) ([]RelanceItem, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []RelanceItem
	for _, row := range r.rows {
		if row.DoneAt != nil || row.NextCallAt == nil {
			continue
		}
		l, err := r.leadsRe.GetByID(ctx, row.LeadID)
		if err != nil {
			continue
		}
		if !matchLead(f, l) {
			continue
		}
		matched = append(matched, RelanceItem{
			CallID:       row.ID,
			LeadKey:      l.LeadKey,
			Phone:        l.Phone,
			Projet:       l.Projet,
			TypeLead:     l.TypeLead,
			Agent:        row.Agent,
			AttemptLevel: row.AttemptLevel,
			Priority:     row.Priority,
			NextCallAt:   *row.NextCallAt,
		})
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].NextCallAt.Before(matched[j].NextCallAt) })
	total := len(matched)
	return pageSlice(matched, p), total, nil
}

func (r *MemoryRepo) ListCalls(ctx context.Context, f Filter, p utils.Page) ([]CallItem, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []CallItem
	for _, row := range r.rows {
		if row.DoneAt == nil {
			continue
		}
		l, err := r.leadsRe.GetByID(ctx, row.LeadID)
		if err != nil {
			continue
		}
		if !matchLead(f, l) {
			continue
		}
		matched = append(matched, CallItem{
			CallID:       row.ID,
			LeadKey:      l.LeadKey,
			Phone:        l.Phone,
			Projet:       l.Projet,
			TypeLead:     l.TypeLead,
			Agent:        row.Agent,
			AttemptLevel: row.AttemptLevel,
			Result:       row.Result,
			Priority:     row.Priority,
			DoneAt:       *row.DoneAt,
		})
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].DoneAt.After(matched[j].DoneAt) })
	total := len(matched)
	return pageSlice(matched, p), total, nil
}

// All returns a snapshot of the journal, for assertions in tests.
func (r *MemoryRepo) All() []CallAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CallAction, len(r.rows))
	copy(out, r.rows)
	return out
}

func (r *MemoryRepo) find(callID string) (CallAction, bool) {
	for _, row := range r.rows {
		if row.ID == callID {
			return row, true
		}
	}
	return CallAction{}, false
}

func matchLead(f Filter, l leads.Lead) bool {
	if f.Projet != "" && l.Projet != f.Projet {
		return false
	}
	if f.TypeLead != "" && l.TypeLead != f.TypeLead {
		return false
	}
	return true
}

func pageSlice[T any](items []T, p utils.Page) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
