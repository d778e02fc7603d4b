package leads

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestService() *Service {
	s := NewService(NewMemoryRepo(), time.UTC)
	s.clock = func() time.Time { return time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC) }
	return s
}

func TestCreate_RequiresFields(t *testing.T) {
	s := newTestService()
	cases := []CreateRequest{
		{Projet: "P1", TypeLead: "web", LeadKey: "", LeadCreatedAt: "01/03/2024 09:30"},
		{Projet: "", TypeLead: "web", LeadKey: "K1", LeadCreatedAt: "01/03/2024 09:30"},
		{Projet: "P1", TypeLead: "", LeadKey: "K1", LeadCreatedAt: "01/03/2024 09:30"},
		{Projet: "P1", TypeLead: "web", LeadKey: "K1", LeadCreatedAt: ""},
		{Projet: "P1", TypeLead: "web", LeadKey: "K1", LeadCreatedAt: "2024-03-01 09:30"},
	}
	for _, req := range cases {
		if _, err := s.Create(context.Background(), req); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Create(%+v) err = %v, want ErrInvalidArgument", req, err)
		}
	}
}

func TestCreate_ParsesEntryTime(t *testing.T) {
	s := newTestService()
	l, err := s.Create(context.Background(), CreateRequest{
		Projet: "P1", TypeLead: "web", LeadKey: " K42 ", LeadCreatedAt: "01/03/2024 09:30",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if l.LeadKey != "K42" {
		t.Fatalf("lead_key = %q, want trimmed K42", l.LeadKey)
	}
	want := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	if !l.LeadCreatedAt.Equal(want) {
		t.Fatalf("lead_created_at = %v, want %v", l.LeadCreatedAt, want)
	}
	if l.ID == "" {
		t.Fatal("expected assigned lead id")
	}
}

func TestCreate_IdempotentOnLeadKey(t *testing.T) {
	s := newTestService()
	req := CreateRequest{Projet: "P1", TypeLead: "web", LeadKey: "K1", LeadCreatedAt: "01/03/2024 09:30"}

	first, err := s.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	second, err := s.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("same lead_key produced two ids: %s, %s", first.ID, second.ID)
	}
}

func TestGet(t *testing.T) {
	s := newTestService()
	l, err := s.Create(context.Background(), CreateRequest{
		Projet: "P1", TypeLead: "web", LeadKey: "K1", LeadCreatedAt: "01/03/2024 09:30",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	got, err := s.Get(context.Background(), l.ID)
	if err != nil || got.LeadKey != "K1" {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) err = %v, want ErrNotFound", err)
	}
}
