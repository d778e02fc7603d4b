package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only. No Update/Delete methods are provided.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// Audit is internal-only; records are not exposed through the public
// API. Callers treat logging as best-effort and only surface failures
// to their logger.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// LogLeadCreated records a lead entering the system.
func (s *Service) LogLeadCreated(ctx context.Context, actorUserID, ip, leadID string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeLeadCreated,
		ActorUserID: actorUserID,
		IPAddress:   ip,
		LeadID:      leadID,
		Message:     "lead created",
	})
}

// LogCallRecorded records a composed call action being saved.
func (s *Service) LogCallRecorded(ctx context.Context, actorUserID, agent, ip, leadID string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeCallRecorded,
		ActorUserID: actorUserID,
		Agent:       agent,
		IPAddress:   ip,
		LeadID:      leadID,
		Message:     "call action recorded",
	})
}

// LogRelanceCompleted records a pending relance being closed.
func (s *Service) LogRelanceCompleted(ctx context.Context, actorUserID, agent, ip, callID string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeRelanceCompleted,
		ActorUserID: actorUserID,
		Agent:       agent,
		IPAddress:   ip,
		CallID:      callID,
		Message:     "relance completed",
	})
}
