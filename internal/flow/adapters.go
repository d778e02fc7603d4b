package flow

import (
	"context"

	"callcenter-relance/internal/actions"
	"callcenter-relance/internal/leads"
)

// Adapters binding the concrete services to the collaborator contracts.
// Keeping them here keeps the services free of flow types.

type leadServiceAdapter struct {
	svc *leads.Service
}

// NewLeadCreator exposes leads.Service as the lead-creation collaborator.
func NewLeadCreator(svc *leads.Service) LeadCreator {
	return leadServiceAdapter{svc: svc}
}

func (a leadServiceAdapter) CreateLead(ctx context.Context, in LeadInput) (string, error) {
	l, err := a.svc.Create(ctx, leads.CreateRequest{
		Projet:        in.Projet,
		TypeLead:      in.TypeLead,
		LeadKey:       in.LeadKey,
		LeadCreatedAt: in.LeadCreatedAt,
	})
	if err != nil {
		return "", err
	}
	return l.ID, nil
}

type actionServiceAdapter struct {
	svc *actions.Service
}

// NewActionRecorder exposes actions.Service as the action-recording
// collaborator.
func NewActionRecorder(svc *actions.Service) ActionRecorder {
	return actionServiceAdapter{svc: svc}
}

// NewFollowUpStore exposes actions.Service as the relance-context and
// completion collaborator.
func NewFollowUpStore(svc *actions.Service) FollowUpStore {
	return actionServiceAdapter{svc: svc}
}

func (a actionServiceAdapter) RecordCallAction(ctx context.Context, in ActionInput) error {
	return a.svc.Record(ctx, actions.RecordRequest{
		LeadID:          in.LeadID,
		Phone:           in.Phone,
		Agent:           in.Agent,
		AttemptLevel:    in.AttemptLevel,
		Result:          in.Result,
		Priority:        in.Priority,
		RelanceLevel:    in.RelanceLevel,
		RelanceAt:       in.RelanceAt,
		RelancePriority: in.RelancePriority,
	})
}

func (a actionServiceAdapter) FetchFollowUpContext(ctx context.Context, callID string) (FollowUpContext, error) {
	fc, err := a.svc.FollowUpContext(ctx, callID)
	if err != nil {
		return FollowUpContext{}, err
	}
	return FollowUpContext{
		LeadID:        fc.LeadID,
		Projet:        fc.Projet,
		TypeLead:      fc.TypeLead,
		LeadKey:       fc.LeadKey,
		LeadCreatedAt: fc.LeadCreatedAt,
		Phone:         fc.Phone,
		Agent:         fc.Agent,
		AttemptLevel:  fc.AttemptLevel,
		Priority:      fc.Priority,
		NextCallAt:    fc.NextCallAt,
	}, nil
}

func (a actionServiceAdapter) CompleteFollowUp(ctx context.Context, callID string, in CompletionInput) error {
	return a.svc.CompleteFollowUp(ctx, callID, actions.CompleteRequest{
		Result:          in.Result,
		Priority:        in.Priority,
		RelanceLevel:    in.RelanceLevel,
		RelanceAt:       in.RelanceAt,
		RelancePriority: in.RelancePriority,
	})
}
