package reporting

import (
	"context"
	"sort"
	"time"

	"callcenter-relance/internal/actions"
	"callcenter-relance/internal/leads"
	"callcenter-relance/pkg/utils"
)

// MemoryRepo derives activity rows from the in-memory lead and call
// repositories, the same join the Postgres repo performs in SQL.
type MemoryRepo struct {
	leadsRe   *leads.MemoryRepo
	actionsRe *actions.MemoryRepo
}

func NewMemoryRepo(leadRepo *leads.MemoryRepo, actionRepo *actions.MemoryRepo) *MemoryRepo {
	return &MemoryRepo{leadsRe: leadRepo, actionsRe: actionRepo}
}

func (r *MemoryRepo) AllLeadActivity(ctx context.Context, f Filter) ([]LeadActivity, error) {
	journal := r.actionsRe.All()

	out := []LeadActivity{}
	for _, l := range r.leadsRe.All() {
		if f.Projet != "" && l.Projet != f.Projet {
			continue
		}
		if f.TypeLead != "" && l.TypeLead != f.TypeLead {
			continue
		}

		row := LeadActivity{
			LeadID:        l.ID,
			LeadKey:       l.LeadKey,
			Phone:         l.Phone,
			Projet:        l.Projet,
			TypeLead:      l.TypeLead,
			LeadCreatedAt: l.LeadCreatedAt,
		}
		// The earliest executed call (by done_at) anchors reactivity;
		// its creation instant is when the agent actually picked up
		// the lead.
		var firstDoneAt *time.Time
		for _, c := range journal {
			if c.LeadID != l.ID || c.DoneAt == nil {
				continue
			}
			row.CallCount++
			if row.LastDoneAt == nil || c.DoneAt.After(*row.LastDoneAt) {
				row.LastDoneAt = c.DoneAt
				row.LastResult = c.Result
			}
			if firstDoneAt == nil || c.DoneAt.Before(*firstDoneAt) {
				firstDoneAt = c.DoneAt
				t := c.CreatedAt
				row.FirstCallAt = &t
			}
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LeadCreatedAt.After(out[j].LeadCreatedAt) })
	return out, nil
}

func (r *MemoryRepo) ListLeadActivity(ctx context.Context, f Filter, p utils.Page) ([]LeadActivity, int, error) {
	all, err := r.AllLeadActivity(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total := len(all)
	start := p.Offset()
	if start >= total {
		return []LeadActivity{}, total, nil
	}
	end := start + p.Size
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}
