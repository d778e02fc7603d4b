package reporting

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"callcenter-relance/internal/schedule"
	"callcenter-relance/pkg/utils"
)

// Repository abstracts read access to the lead and call journal.
//
// Implementations return raw activity rows ordered by lead arrival,
// newest first; the reactivity fields are filled in by the service.
type Repository interface {
	ListLeadActivity(ctx context.Context, f Filter, p utils.Page) ([]LeadActivity, int, error)

	// AllLeadActivity returns every matching row. The dashboard
	// aggregates over the whole segment, not over one page.
	AllLeadActivity(ctx context.Context, f Filter) ([]LeadActivity, error)
}

type Service struct {
	repo Repository
	loc  *time.Location
}

// NewService wires reporting over repo. loc is the desk's timezone,
// used to decide whether a lead arrived inside business hours.
func NewService(repo Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, loc: loc}
}

// LeadActivity returns one page of per-lead activity rows with the
// reactivity fields computed.
func (s *Service) LeadActivity(ctx context.Context, f Filter, p utils.Page) ([]LeadActivity, utils.PageInfo, error) {
	if s.repo == nil {
		return nil, utils.PageInfo{}, errors.New("reporting: repository not configured")
	}
	p = p.Normalize()
	rows, total, err := s.repo.ListLeadActivity(ctx, f, p)
	if err != nil {
		return nil, utils.PageInfo{}, err
	}
	s.annotate(rows)
	return rows, utils.NewPageInfo(p, total), nil
}

// Dashboard computes the desk KPIs over every lead in the segment.
func (s *Service) Dashboard(ctx context.Context, f Filter) (Dashboard, error) {
	if s.repo == nil {
		return Dashboard{}, errors.New("reporting: repository not configured")
	}
	rows, err := s.repo.AllLeadActivity(ctx, f)
	if err != nil {
		return Dashboard{}, err
	}
	s.annotate(rows)

	out := Dashboard{LeadsTotal: len(rows)}
	var reacs []float64
	for _, r := range rows {
		out.CallsTotal += r.CallCount
		if r.ReactivityInScope && r.ReactivityMinutes != nil {
			reacs = append(reacs, float64(*r.ReactivityMinutes))
		}
	}
	if out.LeadsTotal > 0 {
		out.CombativiteCallsPerLead = round(float64(out.CallsTotal)/float64(out.LeadsTotal), 2)
	}
	if len(reacs) > 0 {
		sort.Float64s(reacs)
		mean := round(sum(reacs)/float64(len(reacs)), 1)
		med := round(median(reacs), 1)
		out.ReactiviteMeanMinutes = &mean
		out.ReactiviteMedianMinutes = &med

		under := 0
		for _, x := range reacs {
			if x <= 45 {
				under++
			}
		}
		out.ReactivitePctUnder45 = round(100*float64(under)/float64(len(reacs)), 1)
	}
	return out, nil
}

// annotate fills ReactivityMinutes and ReactivityInScope from the raw
// row. Whole minutes, truncated.
func (s *Service) annotate(rows []LeadActivity) {
	for i := range rows {
		r := &rows[i]
		if r.FirstCallAt == nil || r.LeadCreatedAt.IsZero() {
			continue
		}
		arrived := r.LeadCreatedAt.In(s.loc)
		if !schedule.InBusinessHours(arrived) {
			continue
		}
		r.ReactivityInScope = true
		m := int(r.FirstCallAt.Sub(arrived) / time.Minute)
		r.ReactivityMinutes = &m
	}
}

func sum(xs []float64) float64 {
	var t float64
	for _, x := range xs {
		t += x
	}
	return t
}

// median expects xs sorted.
func median(xs []float64) float64 {
	n := len(xs)
	if n%2 == 1 {
		return xs[n/2]
	}
	return (xs[n/2-1] + xs[n/2]) / 2
}

func round(x float64, places int) float64 {
	f := math.Pow(10, float64(places))
	return math.Round(x*f) / f
}
