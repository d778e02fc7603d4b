package leads

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory lead repository for tests and early
// development. It enforces the lead_key idempotency invariant.
type MemoryRepo struct {
	mu     sync.Mutex
	byID   map[string]Lead
	byKey  map[string]string // lead_key -> id
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: map[string]Lead{}, byKey: map[string]string{}}
}

func (r *MemoryRepo) CreateOrGet(ctx context.Context, l Lead) (Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byKey[l.LeadKey]; ok {
		return r.byID[id], nil
	}
	r.byID[l.ID] = l
	r.byKey[l.LeadKey] = l.ID
	return l, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byID[id]
	if !ok {
		return Lead{}, ErrNotFound
	}
	return l, nil
}

// SetPhone mirrors the phone update performed by the actions layer.
func (r *MemoryRepo) SetPhone(ctx context.Context, id, phone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	l.Phone = phone
	r.byID[id] = l
	return nil
}

// All returns a snapshot of every lead, for reporting fakes in tests.
func (r *MemoryRepo) All() []Lead {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Lead, 0, len(r.byID))
	for _, l := range r.byID {
		out = append(out, l)
	}
	return out
}
