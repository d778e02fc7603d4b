package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// frDateTime is the human entry format for lead_created_at, interpreted in
// the service's configured location (Europe/Paris in production).
const frDateTime = "02/01/2006 15:04"

var (
	ErrInvalidArgument = errors.New("leads: invalid argument")
	ErrNotFound        = errors.New("leads: not found")
)

// Repository is the persistence contract for leads.
type Repository interface {
	// CreateOrGet inserts the lead, or returns the existing row when a
	// lead with the same lead_key already exists.
	CreateOrGet(ctx context.Context, l Lead) (Lead, error)
	GetByID(ctx context.Context, id string) (Lead, error)
}

type Service struct {
	repo Repository
	loc  *time.Location
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(repo Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, loc: loc, clock: time.Now}
}

type CreateRequest struct {
	Projet   string `json:"projet"`
	TypeLead string `json:"type_lead"`
	LeadKey  string `json:"lead_key"`

	// LeadCreatedAt in DD/MM/YYYY HH:mm.
	LeadCreatedAt string `json:"lead_created_at"`
}

// Create registers a lead. Idempotent on lead_key: re-submitting the same
// key returns the previously created lead.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Lead, error) {
	if s.repo == nil {
		return Lead{}, errors.New("leads: repository not configured")
	}

	key := strings.TrimSpace(req.LeadKey)
	projet := strings.TrimSpace(req.Projet)
	typeLead := strings.TrimSpace(req.TypeLead)
	if key == "" || projet == "" || typeLead == "" {
		return Lead{}, fmt.Errorf("%w: projet, type_lead and lead_key are required", ErrInvalidArgument)
	}

	createdAt, err := s.ParseEntryTime(req.LeadCreatedAt)
	if err != nil {
		return Lead{}, err
	}

	return s.repo.CreateOrGet(ctx, Lead{
		ID:            uuid.NewString(),
		LeadKey:       key,
		Projet:        projet,
		TypeLead:      typeLead,
		LeadCreatedAt: createdAt,
		CreatedAt:     s.clock().In(s.loc),
	})
}

func (s *Service) Get(ctx context.Context, id string) (Lead, error) {
	if id == "" {
		return Lead{}, ErrInvalidArgument
	}
	return s.repo.GetByID(ctx, id)
}

// ParseEntryTime parses the DD/MM/YYYY HH:mm entry format in the service
// location. Entries come from the CRM UI and are already local time.
func (s *Service) ParseEntryTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, fmt.Errorf("%w: lead_created_at is required", ErrInvalidArgument)
	}
	t, err := time.ParseInLocation(frDateTime, v, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: lead_created_at must be DD/MM/YYYY HH:mm", ErrInvalidArgument)
	}
	return t, nil
}
