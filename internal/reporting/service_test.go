package reporting

import (
	"context"
	"testing"
	"time"

	"callcenter-relance/internal/actions"
	"callcenter-relance/internal/leads"
	"callcenter-relance/internal/outcome"
	"callcenter-relance/pkg/utils"
)

// Monday, inside business hours.
var day = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

func seedRepos(t *testing.T) (*leads.MemoryRepo, *actions.MemoryRepo) {
	t.Helper()
	ctx := context.Background()
	leadRepo := leads.NewMemoryRepo()
	actionRepo := actions.NewMemoryRepo(leadRepo)

	// Lead A: arrived 10:00, called twice, 30 min reactivity.
	_, err := leadRepo.CreateOrGet(ctx, leads.Lead{
		ID: "lead-a", LeadKey: "KA", Projet: "P1", TypeLead: "web",
		LeadCreatedAt: at(10, 0), CreatedAt: at(10, 0),
	})
	if err != nil {
		t.Fatalf("seed lead-a: %v", err)
	}
	firstDone, secondDone := at(10, 35), at(14, 0)
	if err := actionRepo.RecordAction(ctx, "33611111111", actions.CallAction{
		ID: "call-a1", LeadID: "lead-a", Agent: "alice", AttemptLevel: 1,
		Result: outcome.ResultNoAnswer, Priority: outcome.PriorityNormal,
		DoneAt: &firstDone, CreatedAt: at(10, 30),
	}, nil); err != nil {
		t.Fatalf("seed call-a1: %v", err)
	}
	if err := actionRepo.RecordAction(ctx, "33611111111", actions.CallAction{
		ID: "call-a2", LeadID: "lead-a", Agent: "alice", AttemptLevel: 2,
		Result: outcome.ResultQualified, Priority: outcome.PriorityNormal,
		DoneAt: &secondDone, CreatedAt: at(13, 55),
	}, nil); err != nil {
		t.Fatalf("seed call-a2: %v", err)
	}

	// Lead B: arrived at night, one call. Out of reactivity scope.
	_, err = leadRepo.CreateOrGet(ctx, leads.Lead{
		ID: "lead-b", LeadKey: "KB", Projet: "P2", TypeLead: "web",
		LeadCreatedAt: at(22, 0), CreatedAt: at(22, 0),
	})
	if err != nil {
		t.Fatalf("seed lead-b: %v", err)
	}
	nextDayDone := at(33, 10) // 09:10 the day after
	if err := actionRepo.RecordAction(ctx, "33622222222", actions.CallAction{
		ID: "call-b1", LeadID: "lead-b", Agent: "bob", AttemptLevel: 1,
		Result: outcome.ResultUnreachable, Priority: outcome.PriorityNormal,
		DoneAt: &nextDayDone, CreatedAt: at(33, 5),
	}, nil); err != nil {
		t.Fatalf("seed call-b1: %v", err)
	}
	return leadRepo, actionRepo
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	leadRepo, actionRepo := seedRepos(t)
	return NewService(NewMemoryRepo(leadRepo, actionRepo), time.UTC)
}

func TestLeadActivity(t *testing.T) {
	svc := newTestService(t)

	rows, info, err := svc.LeadActivity(context.Background(), Filter{}, utils.Page{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if info.Total != 2 || len(rows) != 2 {
		t.Fatalf("rows = %d (total %d), want 2", len(rows), info.Total)
	}
	// Newest arrival first.
	if rows[0].LeadID != "lead-b" || rows[1].LeadID != "lead-a" {
		t.Fatalf("unexpected order: %s, %s", rows[0].LeadID, rows[1].LeadID)
	}

	b, a := rows[0], rows[1]
	if a.CallCount != 2 || a.LastResult != outcome.ResultQualified {
		t.Fatalf("unexpected lead-a row: %+v", a)
	}
	if !a.ReactivityInScope || a.ReactivityMinutes == nil || *a.ReactivityMinutes != 30 {
		t.Fatalf("lead-a reactivity = %+v, want 30 min in scope", a.ReactivityMinutes)
	}
	if b.ReactivityInScope || b.ReactivityMinutes != nil {
		t.Fatalf("lead-b arrived at night, must be out of scope: %+v", b)
	}
	if b.CallCount != 1 || b.LastResult != outcome.ResultUnreachable {
		t.Fatalf("unexpected lead-b row: %+v", b)
	}
}

func TestLeadActivity_Filter(t *testing.T) {
	svc := newTestService(t)

	rows, info, err := svc.LeadActivity(context.Background(), Filter{Projet: "P1"}, utils.Page{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if info.Total != 1 || len(rows) != 1 || rows[0].LeadID != "lead-a" {
		t.Fatalf("filter mismatch: %+v (total %d)", rows, info.Total)
	}
}

func TestLeadActivity_Pagination(t *testing.T) {
	svc := newTestService(t)

	rows, info, err := svc.LeadActivity(context.Background(), Filter{}, utils.Page{Number: 2, Size: 1})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if info.Total != 2 || info.Pages != 2 {
		t.Fatalf("unexpected page info: %+v", info)
	}
	if len(rows) != 1 || rows[0].LeadID != "lead-a" {
		t.Fatalf("unexpected page 2: %+v", rows)
	}
}

func TestDashboard(t *testing.T) {
	svc := newTestService(t)

	d, err := svc.Dashboard(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if d.LeadsTotal != 2 || d.CallsTotal != 3 {
		t.Fatalf("totals = %d leads / %d calls, want 2 / 3", d.LeadsTotal, d.CallsTotal)
	}
	if d.CombativiteCallsPerLead != 1.5 {
		t.Fatalf("combativite = %v, want 1.5", d.CombativiteCallsPerLead)
	}
	// Only lead-a is measured.
	if d.ReactiviteMeanMinutes == nil || *d.ReactiviteMeanMinutes != 30 {
		t.Fatalf("mean = %v, want 30", d.ReactiviteMeanMinutes)
	}
	if d.ReactiviteMedianMinutes == nil || *d.ReactiviteMedianMinutes != 30 {
		t.Fatalf("median = %v, want 30", d.ReactiviteMedianMinutes)
	}
	if d.ReactivitePctUnder45 != 100 {
		t.Fatalf("pct under 45 = %v, want 100", d.ReactivitePctUnder45)
	}
}

func TestDashboard_EmptySegment(t *testing.T) {
	svc := newTestService(t)

	d, err := svc.Dashboard(context.Background(), Filter{Projet: "absent"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if d.LeadsTotal != 0 || d.CallsTotal != 0 || d.CombativiteCallsPerLead != 0 {
		t.Fatalf("unexpected dashboard: %+v", d)
	}
	if d.ReactiviteMeanMinutes != nil || d.ReactiviteMedianMinutes != nil || d.ReactivitePctUnder45 != 0 {
		t.Fatalf("empty segment must report nothing measured: %+v", d)
	}
}

func TestDashboard_MedianEvenCount(t *testing.T) {
	leadRepo, actionRepo := seedRepos(t)
	ctx := context.Background()

	// Third lead, in scope, 50 min reactivity.
	_, err := leadRepo.CreateOrGet(ctx, leads.Lead{
		ID: "lead-c", LeadKey: "KC", Projet: "P1", TypeLead: "web",
		LeadCreatedAt: at(11, 0), CreatedAt: at(11, 0),
	})
	if err != nil {
		t.Fatalf("seed lead-c: %v", err)
	}
	done := at(12, 0)
	if err := actionRepo.RecordAction(ctx, "33633333333", actions.CallAction{
		ID: "call-c1", LeadID: "lead-c", Agent: "alice", AttemptLevel: 1,
		Result: outcome.ResultQualified, Priority: outcome.PriorityNormal,
		DoneAt: &done, CreatedAt: at(11, 50),
	}, nil); err != nil {
		t.Fatalf("seed call-c1: %v", err)
	}

	svc := NewService(NewMemoryRepo(leadRepo, actionRepo), time.UTC)
	d, err := svc.Dashboard(ctx, Filter{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	// Measured reactivities: 30 and 50.
	if d.ReactiviteMedianMinutes == nil || *d.ReactiviteMedianMinutes != 40 {
		t.Fatalf("median = %v, want 40", d.ReactiviteMedianMinutes)
	}
	if d.ReactivitePctUnder45 != 50 {
		t.Fatalf("pct under 45 = %v, want 50", d.ReactivitePctUnder45)
	}
}
