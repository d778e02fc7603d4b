package actions

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"callcenter-relance/internal/outcome"
	"callcenter-relance/pkg/utils"

	"github.com/google/uuid"
)

var (
	ErrInvalidArgument = errors.New("actions: invalid argument")
	ErrNotFound        = errors.New("actions: not found")
)

// Repository is the persistence contract for the call journal.
//
// RecordAction and CompleteFollowUp are transactional units: the lead phone
// update, the executed row and the optional planned row commit together or
// not at all.
type Repository interface {
	// RecordAction sets the lead phone, inserts the executed call and, when
	// planned is non-nil, the scheduled relance row.
	RecordAction(ctx context.Context, phone string, done CallAction, planned *CallAction) error

	GetFollowUpContext(ctx context.Context, callID string) (FollowUpContext, error)

	// CompleteFollowUp closes the planned row (done_at, result, priority,
	// next_call_at cleared) and, when next is non-nil, inserts the next
	// relance. next.LeadID and next.Agent are taken from the completed row.
	CompleteFollowUp(ctx context.Context, callID, result, priority string, doneAt time.Time, next *CallAction) error

	ListRelances(ctx context.Context, f Filter, p utils.Page) ([]RelanceItem, int, error)
	ListCalls(ctx context.Context, f Filter, p utils.Page) ([]CallItem, int, error)
}

type Service struct {
	repo Repository
	// clock is injectable for deterministic tests.
	clock func() time.Time
	loc   *time.Location
}

func NewService(repo Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, clock: time.Now, loc: loc}
}

// RecordRequest is a composed call attempt plus its optional relance.
type RecordRequest struct {
	LeadID       string `json:"lead_id"`
	Phone        string `json:"phone"`
	Agent        string `json:"agent"`
	AttemptLevel int    `json:"attempt_level"`
	Result       string `json:"result"`
	Priority     string `json:"priority"`

	// RelanceLevel is the string form of the next attempt level, or "none".
	RelanceLevel    string     `json:"relance_level"`
	RelanceAt       *time.Time `json:"relance_at,omitempty"`
	RelancePriority string     `json:"relance_priority"`
}

// Record persists an executed call attempt and, when a relance is attached,
// the planned follow-up row.
func (s *Service) Record(ctx context.Context, req RecordRequest) error {
	if s.repo == nil {
		return errors.New("actions: repository not configured")
	}
	if req.LeadID == "" || req.Phone == "" || req.Agent == "" || req.Result == "" || req.Priority == "" {
		return fmt.Errorf("%w: lead_id, phone, agent, result and priority are required", ErrInvalidArgument)
	}
	if req.AttemptLevel < 1 {
		return fmt.Errorf("%w: attempt_level must be >= 1", ErrInvalidArgument)
	}
	if !isDigits(req.Phone) {
		return fmt.Errorf("%w: phone must be digits only (ex: 337XXXXXXXX)", ErrInvalidArgument)
	}

	now := s.clock().In(s.loc)

	done := CallAction{
		ID:           uuid.NewString(),
		LeadID:       req.LeadID,
		Agent:        req.Agent,
		AttemptLevel: req.AttemptLevel,
		Result:       req.Result,
		Priority:     req.Priority,
		DoneAt:       &now,
		CreatedAt:    now,
	}

	planned, err := s.plannedRelance(req.LeadID, req.Agent, req.RelanceLevel, req.RelanceAt, req.RelancePriority, now)
	if err != nil {
		return err
	}

	return s.repo.RecordAction(ctx, req.Phone, done, planned)
}

// FollowUpContext loads the editor context for a pending relance.
func (s *Service) FollowUpContext(ctx context.Context, callID string) (FollowUpContext, error) {
	if callID == "" {
		return FollowUpContext{}, fmt.Errorf("%w: call_id required", ErrInvalidArgument)
	}
	return s.repo.GetFollowUpContext(ctx, callID)
}

// CompleteRequest finalizes a pending relance, optionally chaining the next.
type CompleteRequest struct {
	Result   string `json:"result"`
	Priority string `json:"priority"`

	RelanceLevel    string     `json:"relance_level"`
	RelanceAt       *time.Time `json:"relance_at,omitempty"`
	RelancePriority string     `json:"relance_priority"`
}

// CompleteFollowUp marks a scheduled relance as executed with the given
// result. A non-"none" relance level chains the next planned attempt for
// the same lead and agent.
func (s *Service) CompleteFollowUp(ctx context.Context, callID string, req CompleteRequest) error {
	if s.repo == nil {
		return errors.New("actions: repository not configured")
	}
	if callID == "" || req.Result == "" || req.Priority == "" {
		return fmt.Errorf("%w: call_id, result and priority are required", ErrInvalidArgument)
	}

	now := s.clock().In(s.loc)

	// LeadID and Agent are resolved by the repository from the row being
	// completed.
	next, err := s.plannedRelance("", "", req.RelanceLevel, req.RelanceAt, req.RelancePriority, now)
	if err != nil {
		return err
	}

	return s.repo.CompleteFollowUp(ctx, callID, req.Result, req.Priority, now, next)
}

func (s *Service) ListRelances(ctx context.Context, f Filter, p utils.Page) ([]RelanceItem, utils.PageInfo, error) {
	p = p.Normalize()
	items, total, err := s.repo.ListRelances(ctx, f, p)
	if err != nil {
		return nil, utils.PageInfo{}, err
	}
	return items, utils.NewPageInfo(p, total), nil
}

func (s *Service) ListCalls(ctx context.Context, f Filter, p utils.Page) ([]CallItem, utils.PageInfo, error) {
	p = p.Normalize()
	items, total, err := s.repo.ListCalls(ctx, f, p)
	if err != nil {
		return nil, utils.PageInfo{}, err
	}
	return items, utils.NewPageInfo(p, total), nil
}

func (s *Service) plannedRelance(leadID, agent, level string, at *time.Time, priority string, now time.Time) (*CallAction, error) {
	if level == "" || level == outcome.RelanceLevelNone {
		return nil, nil
	}
	lvl, err := strconv.Atoi(level)
	if err != nil || lvl < 1 {
		return nil, fmt.Errorf("%w: relance_level must be \"none\" or a positive integer", ErrInvalidArgument)
	}
	if at == nil || at.IsZero() {
		return nil, fmt.Errorf("%w: relance_at required when relance_level is not \"none\"", ErrInvalidArgument)
	}
	if priority == "" {
		priority = outcome.PriorityNormal
	}
	target := *at
	return &CallAction{
		ID:           uuid.NewString(),
		LeadID:       leadID,
		Agent:        agent,
		AttemptLevel: lvl,
		Result:       outcome.ResultPlanned,
		Priority:     priority,
		NextCallAt:   &target,
		CreatedAt:    now,
	}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
