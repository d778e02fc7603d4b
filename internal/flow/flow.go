package flow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"callcenter-relance/internal/dialer"
	"callcenter-relance/internal/outcome"
	"callcenter-relance/internal/schedule"
)

// State of a call flow session.
type State string

const (
	StateLeadPending     State = "lead_pending"
	StateLeadConfirmed   State = "lead_confirmed"
	StateCallPending     State = "call_pending"
	StateFollowUpPending State = "follow_up_pending"
	StateCompleted       State = "completed"
)

// Failure taxonomy. Every transition error wraps exactly one of these;
// callers branch with errors.Is and surface the message as-is. No failure
// advances the state machine and none is retried automatically.
var (
	ErrValidation          = errors.New("flow: validation failed")
	ErrUnrecognizedOutcome = errors.New("flow: unrecognized call result")
	ErrCollaborator        = errors.New("flow: collaborator call failed")
	ErrPhoneAcquisition    = errors.New("flow: phone acquisition failed")
)

// Collaborator contracts, defined here by the consumer. Adapters to the
// concrete services live in adapters.go.

type LeadCreator interface {
	// CreateLead registers the lead and returns its id. Idempotent on
	// lead_key at the persistence layer.
	CreateLead(ctx context.Context, in LeadInput) (string, error)
}

type ActionRecorder interface {
	RecordCallAction(ctx context.Context, in ActionInput) error
}

type FollowUpStore interface {
	FetchFollowUpContext(ctx context.Context, callID string) (FollowUpContext, error)
	CompleteFollowUp(ctx context.Context, callID string, in CompletionInput) error
}

type LeadInput struct {
	Projet   string `json:"projet"`
	TypeLead string `json:"type_lead"`
	LeadKey  string `json:"lead_key"`

	// LeadCreatedAt in DD/MM/YYYY HH:mm, as entered by the agent.
	LeadCreatedAt string `json:"lead_created_at"`
}

type ActionInput struct {
	LeadID       string
	Phone        string
	Agent        string
	AttemptLevel int
	Result       string
	Priority     string

	RelanceLevel    string
	RelanceAt       *time.Time
	RelancePriority string
}

type CompletionInput struct {
	Result   string
	Priority string

	RelanceLevel    string
	RelanceAt       *time.Time
	RelancePriority string
}

type FollowUpContext struct {
	LeadID        string
	Projet        string
	TypeLead      string
	LeadKey       string
	LeadCreatedAt time.Time
	Phone         string
	Agent         string
	AttemptLevel  int
	Priority      string
	NextCallAt    *time.Time
}

// Service holds the collaborators shared by all flow sessions.
type Service struct {
	leads     LeadCreator
	recorder  ActionRecorder
	followUps FollowUpStore
	dialer    dialer.Acquirer

	loc *time.Location
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

// NewService wires the flow engine. dialer may be nil when no dialing
// integration is configured (numbers then arrive via CapturePhone).
func NewService(leads LeadCreator, recorder ActionRecorder, followUps FollowUpStore, d dialer.Acquirer, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{leads: leads, recorder: recorder, followUps: followUps, dialer: d, loc: loc, clock: time.Now}
}

// CallDraft is the in-progress call attempt of a session.
type CallDraft struct {
	Agent        string `json:"agent"`
	AttemptLevel int    `json:"attempt_level"`
	Phone        string `json:"phone"`
	Result       string `json:"result"`
	Priority     string `json:"priority"`
}

// RelanceDraft is the staged follow-up of a session.
type RelanceDraft struct {
	// Level is the string form of the next attempt level, or "none".
	Level string `json:"level"`
	// Label is the display name; "Relance N" labels the (N+1)-th attempt.
	Label    string    `json:"label,omitempty"`
	At       time.Time `json:"at"`
	Priority string    `json:"priority"`
}

// Flow is one agent's call flow session. It is exclusively owned by its
// driver: transitions run one at a time and the value is discarded wholesale
// on completion. Nothing here is persisted; only the composed action is.
type Flow struct {
	svc *Service

	state State

	// editingCallID is set when the session resumes a pending relance; the
	// save then completes that relance instead of recording a fresh call.
	editingCallID string

	leadID  string
	lead    LeadInput
	call    CallDraft
	relance RelanceDraft
}

// NewFlow starts a fresh lead-creation session.
func (s *Service) NewFlow() *Flow {
	return &Flow{
		svc:     s,
		state:   StateLeadPending,
		call:    CallDraft{AttemptLevel: 1, Priority: outcome.PriorityNormal},
		relance: RelanceDraft{Level: outcome.RelanceLevelNone, Priority: outcome.PriorityNormal},
	}
}

// ResumeFollowUp starts a session from a previously scheduled, uncompleted
// relance. The lead step is skipped and locked, the phone is already known
// and dialing is disabled. A fetch failure aborts: no session is returned.
func (s *Service) ResumeFollowUp(ctx context.Context, callID string) (*Flow, error) {
	if callID == "" {
		return nil, fmt.Errorf("%w: call_id required", ErrValidation)
	}
	fc, err := s.followUps.FetchFollowUpContext(ctx, callID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching follow-up context: %v", ErrCollaborator, err)
	}

	relanceAt := schedule.NextCallTime(s.clock().In(s.loc))
	if fc.NextCallAt != nil && !fc.NextCallAt.IsZero() {
		relanceAt = fc.NextCallAt.In(s.loc)
	}

	return &Flow{
		svc:           s,
		state:         StateCallPending,
		editingCallID: callID,
		leadID:        fc.LeadID,
		lead: LeadInput{
			Projet:        fc.Projet,
			TypeLead:      fc.TypeLead,
			LeadKey:       fc.LeadKey,
			LeadCreatedAt: fc.LeadCreatedAt.In(s.loc).Format("02/01/2006 15:04"),
		},
		call: CallDraft{
			Agent:        fc.Agent,
			AttemptLevel: fc.AttemptLevel,
			Phone:        fc.Phone,
			// The editor exists to resolve a pending callback; the agent
			// may still override the result when logging the outcome.
			Result:   outcome.ResultCallback,
			Priority: fc.Priority,
		},
		relance: RelanceDraft{
			Level:    outcome.RelanceLevelNone,
			At:       relanceAt,
			Priority: outcome.PriorityNormal,
		},
	}, nil
}

// State returns the current state.
func (f *Flow) State() State { return f.state }

// ConfirmLead creates the lead and locks the lead step. Lead fields are
// immutable afterwards: re-invoking is rejected without effect.
func (f *Flow) ConfirmLead(ctx context.Context, in LeadInput) error {
	if f.state != StateLeadPending {
		return fmt.Errorf("%w: lead already confirmed", ErrValidation)
	}
	in.LeadKey = strings.TrimSpace(in.LeadKey)
	in.LeadCreatedAt = strings.TrimSpace(in.LeadCreatedAt)
	if in.LeadKey == "" {
		return fmt.Errorf("%w: lead_key required", ErrValidation)
	}
	if in.LeadCreatedAt == "" {
		return fmt.Errorf("%w: lead_created_at required (DD/MM/YYYY HH:mm)", ErrValidation)
	}

	id, err := f.svc.leads.CreateLead(ctx, in)
	if err != nil {
		return fmt.Errorf("%w: creating lead: %v", ErrCollaborator, err)
	}

	f.leadID = id
	f.lead = in
	f.state = StateLeadConfirmed
	return nil
}

// AcquirePhone pulls the number from the dialing integration. Disabled when
// resuming a relance: the phone is already known there.
func (f *Flow) AcquirePhone(ctx context.Context) error {
	if err := f.phoneCapturable(); err != nil {
		return err
	}
	if f.svc.dialer == nil {
		return fmt.Errorf("%w: dialing integration not configured", ErrPhoneAcquisition)
	}
	raw, err := f.svc.dialer.AcquirePhone(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPhoneAcquisition, err)
	}
	return f.setPhone(raw)
}

// CapturePhone normalizes and stores a number supplied by the operator
// (pasted from the dialer UI).
func (f *Flow) CapturePhone(raw string) error {
	if err := f.phoneCapturable(); err != nil {
		return err
	}
	return f.setPhone(raw)
}

func (f *Flow) phoneCapturable() error {
	if f.editingCallID != "" {
		return fmt.Errorf("%w: dialing is disabled when completing a relance", ErrValidation)
	}
	if f.state != StateLeadConfirmed {
		return fmt.Errorf("%w: confirm the lead before dialing", ErrValidation)
	}
	return nil
}

func (f *Flow) setPhone(raw string) error {
	normalized, err := dialer.Normalize(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPhoneAcquisition, err)
	}
	f.call.Phone = normalized
	return nil
}

// ConfirmCallEntry opens the outcome step. The phone must have been
// captured first.
func (f *Flow) ConfirmCallEntry() error {
	if f.state != StateLeadConfirmed {
		return fmt.Errorf("%w: no call entry to confirm in state %s", ErrValidation, f.state)
	}
	if f.call.Phone == "" {
		return fmt.Errorf("%w: phone required, call via the dialer first", ErrValidation)
	}
	f.state = StateCallPending
	return nil
}

// OutcomeInput carries the logged call outcome. Zero-valued fields fall
// back to the session's prefilled draft (relevant when resuming a relance).
type OutcomeInput struct {
	Agent        string `json:"agent"`
	AttemptLevel int    `json:"attempt_level"`
	Result       string `json:"result"`
	Priority     string `json:"priority"`
}

// LogOutcome classifies the call result and branches:
//   - Final: the action is saved immediately with no relance.
//   - NeedsFollowUp: the follow-up step opens with defaults staged.
//   - Unrecognized: rejected, no transition.
func (f *Flow) LogOutcome(ctx context.Context, in OutcomeInput) error {
	if f.state != StateCallPending {
		return fmt.Errorf("%w: no call in progress in state %s", ErrValidation, f.state)
	}

	draft := f.call
	if in.Agent != "" {
		draft.Agent = strings.TrimSpace(in.Agent)
	}
	if in.AttemptLevel != 0 {
		draft.AttemptLevel = in.AttemptLevel
	}
	if in.Result != "" {
		draft.Result = in.Result
	}
	if in.Priority != "" {
		draft.Priority = in.Priority
	}

	if draft.Agent == "" {
		return fmt.Errorf("%w: agent required", ErrValidation)
	}
	if draft.AttemptLevel < 1 {
		return fmt.Errorf("%w: attempt_level must be >= 1", ErrValidation)
	}
	if draft.Result == "" {
		return fmt.Errorf("%w: result required", ErrValidation)
	}
	if draft.Priority == "" {
		draft.Priority = outcome.PriorityNormal
	}

	switch outcome.Classify(draft.Result) {
	case outcome.Final:
		f.call = draft
		// Any staged follow-up is discarded: a closed case never keeps one.
		f.relance.Level = outcome.RelanceLevelNone
		f.relance.Label = ""
		f.relance.Priority = outcome.PriorityNormal
		if err := f.save(ctx, outcome.RelanceLevelNone, nil, outcome.PriorityNormal); err != nil {
			return err
		}
		f.state = StateCompleted
		return nil

	case outcome.NeedsFollowUp:
		f.call = draft
		next := draft.AttemptLevel + 1
		f.relance.Level = strconv.Itoa(next)
		f.relance.Label = "Relance " + strconv.Itoa(draft.AttemptLevel)
		if f.relance.At.IsZero() {
			f.relance.At = schedule.NextCallTime(f.svc.clock().In(f.svc.loc))
		}
		f.relance.Priority = outcome.RelancePriority(draft.Result, f.relance.Level, f.relance.Priority)
		f.state = StateFollowUpPending
		return nil

	default:
		return fmt.Errorf("%w: %q", ErrUnrecognizedOutcome, draft.Result)
	}
}

// RelanceInput adjusts the staged follow-up. Zero-valued fields keep the
// staged defaults.
type RelanceInput struct {
	Level    string    `json:"level"`
	At       time.Time `json:"at"`
	Priority string    `json:"priority"`
}

// ConfirmFollowUp schedules the staged relance and saves the composed
// action. A non-"none" level requires a target instant.
func (f *Flow) ConfirmFollowUp(ctx context.Context, in RelanceInput) error {
	if f.state != StateFollowUpPending {
		return fmt.Errorf("%w: no follow-up to confirm in state %s", ErrValidation, f.state)
	}

	draft := f.relance
	if in.Level != "" {
		draft.Level = in.Level
	}
	if !in.At.IsZero() {
		draft.At = in.At
	}
	if in.Priority != "" {
		draft.Priority = in.Priority
	}

	var at *time.Time
	if draft.Level != outcome.RelanceLevelNone {
		if draft.At.IsZero() {
			return fmt.Errorf("%w: relance date required", ErrValidation)
		}
		t := draft.At
		at = &t
	}
	draft.Priority = outcome.RelancePriority(f.call.Result, draft.Level, draft.Priority)

	// Keep the edits staged so a failed save can be retried as-is.
	f.relance = draft

	if err := f.save(ctx, draft.Level, at, draft.Priority); err != nil {
		return err
	}
	f.state = StateCompleted
	return nil
}

// CancelFollowUp closes the follow-up step without scheduling; the staged
// edits are discarded and the session returns to the outcome step.
func (f *Flow) CancelFollowUp() error {
	if f.state != StateFollowUpPending {
		return fmt.Errorf("%w: no follow-up to cancel in state %s", ErrValidation, f.state)
	}
	f.relance = RelanceDraft{Level: outcome.RelanceLevelNone, Priority: outcome.PriorityNormal}
	f.state = StateCallPending
	return nil
}

// save sends the composed call attempt + relance to the right collaborator.
// On failure the state is untouched so the operator can retry without
// re-entering anything.
func (f *Flow) save(ctx context.Context, level string, at *time.Time, priority string) error {
	if f.leadID == "" || f.call.Phone == "" || f.call.Agent == "" || f.call.Result == "" {
		return fmt.Errorf("%w: lead, phone, agent and result must all be set before saving", ErrValidation)
	}
	if level != outcome.RelanceLevelNone && (at == nil || at.IsZero()) {
		return fmt.Errorf("%w: relance date required", ErrValidation)
	}

	if f.editingCallID != "" {
		err := f.svc.followUps.CompleteFollowUp(ctx, f.editingCallID, CompletionInput{
			Result:          f.call.Result,
			Priority:        f.call.Priority,
			RelanceLevel:    level,
			RelanceAt:       at,
			RelancePriority: priority,
		})
		if err != nil {
			return fmt.Errorf("%w: completing relance: %v", ErrCollaborator, err)
		}
		return nil
	}

	err := f.svc.recorder.RecordCallAction(ctx, ActionInput{
		LeadID:          f.leadID,
		Phone:           f.call.Phone,
		Agent:           f.call.Agent,
		AttemptLevel:    f.call.AttemptLevel,
		Result:          f.call.Result,
		Priority:        f.call.Priority,
		RelanceLevel:    level,
		RelanceAt:       at,
		RelancePriority: priority,
	})
	if err != nil {
		return fmt.Errorf("%w: recording call action: %v", ErrCollaborator, err)
	}
	return nil
}
