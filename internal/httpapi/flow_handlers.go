package httpapi

import (
	"errors"
	"net/http"

	"callcenter-relance/internal/flow"

	"github.com/gin-gonic/gin"
)

// Server-side flow sessions. Thin clients drive the state machine over
// HTTP; the session registry owns the in-flight flows.

// StartFlow opens a fresh lead-creation session.
func (h Handlers) StartFlow(c *gin.Context) {
	s := h.Sessions.Add(h.Flow.NewFlow())
	h.sessionJSON(c, s)
}

// ResumeFlow opens a session from a pending relance.
func (h Handlers) ResumeFlow(c *gin.Context) {
	f, err := h.Flow.ResumeFollowUp(c.Request.Context(), c.Param("call_id"))
	if err != nil {
		abortFlowError(c, err)
		return
	}
	s := h.Sessions.Add(f)
	h.sessionJSON(c, s)
}

// GetFlow returns the session snapshot.
func (h Handlers) GetFlow(c *gin.Context) {
	s, ok := h.Sessions.Get(c.Param("id"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}
	h.sessionJSON(c, s)
}

// FlowLead confirms the lead step.
func (h Handlers) FlowLead(c *gin.Context) {
	var in flow.LeadInput
	h.transition(c, &in, func(f *flow.Flow) error {
		return f.ConfirmLead(c.Request.Context(), in)
	})
}

type phoneRequest struct {
	Phone string `json:"phone"`
}

// FlowPhone captures the phone number. An empty phone asks the dialing
// integration for the current call's number instead.
func (h Handlers) FlowPhone(c *gin.Context) {
	var in phoneRequest
	h.transition(c, &in, func(f *flow.Flow) error {
		if in.Phone == "" {
			return f.AcquirePhone(c.Request.Context())
		}
		return f.CapturePhone(in.Phone)
	})
}

// FlowCall confirms the call entry and opens the outcome step.
func (h Handlers) FlowCall(c *gin.Context) {
	h.transition(c, nil, func(f *flow.Flow) error {
		return f.ConfirmCallEntry()
	})
}

// FlowOutcome logs the call result. Final results save immediately; the
// session is then discarded.
func (h Handlers) FlowOutcome(c *gin.Context) {
	var in flow.OutcomeInput
	h.saveTransition(c, &in, func(f *flow.Flow) error {
		return f.LogOutcome(c.Request.Context(), in)
	})
}

// FlowFollowUp confirms the staged relance and saves the composed
// action; the session is then discarded.
func (h Handlers) FlowFollowUp(c *gin.Context) {
	var in flow.RelanceInput
	h.saveTransition(c, &in, func(f *flow.Flow) error {
		return f.ConfirmFollowUp(c.Request.Context(), in)
	})
}

// FlowCancelFollowUp discards the staged relance and returns to the
// outcome step.
func (h Handlers) FlowCancelFollowUp(c *gin.Context) {
	h.transition(c, nil, func(f *flow.Flow) error {
		return f.CancelFollowUp()
	})
}

// transition binds the body (when in is non-nil), runs fn on the
// session's flow and returns the updated snapshot.
func (h Handlers) transition(c *gin.Context, in any, fn func(f *flow.Flow) error) {
	s, ok := h.Sessions.Get(c.Param("id"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}
	if in != nil {
		if err := c.ShouldBindJSON(in); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
	}
	if err := s.Do(fn); err != nil {
		abortFlowError(c, err)
		return
	}
	h.sessionJSON(c, s)
}

// saveTransition is transition plus the per-agent submit guard and the
// session teardown + audit once the flow completes.
func (h Handlers) saveTransition(c *gin.Context, in any, fn func(f *flow.Flow) error) {
	s, ok := h.Sessions.Get(c.Param("id"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}
	if err := c.ShouldBindJSON(in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	var before flow.Snapshot
	_ = s.Do(func(f *flow.Flow) error {
		before = f.Snapshot()
		return nil
	})

	err := h.Guard.Do(c.Request.Context(), before.Call.Agent, func() error {
		return s.Do(fn)
	})
	if err != nil {
		abortFlowError(c, err)
		return
	}

	var after flow.Snapshot
	_ = s.Do(func(f *flow.Flow) error {
		after = f.Snapshot()
		return nil
	})
	if after.State == flow.StateCompleted {
		h.Sessions.Remove(s.ID)
		if after.Mode == flow.ModeRelanceEdit {
			h.auditLog(c, h.Audit.LogRelanceCompleted(c.Request.Context(), actorUserID(c), after.Call.Agent, c.ClientIP(), after.EditingCallID))
		} else {
			h.auditLog(c, h.Audit.LogCallRecorded(c.Request.Context(), actorUserID(c), after.Call.Agent, c.ClientIP(), after.LeadID))
		}
	}
	c.JSON(http.StatusOK, gin.H{"session_id": s.ID, "snapshot": after})
}

func (h Handlers) sessionJSON(c *gin.Context, s *Session) {
	var snap flow.Snapshot
	_ = s.Do(func(f *flow.Flow) error {
		snap = f.Snapshot()
		return nil
	})
	c.JSON(http.StatusOK, gin.H{"session_id": s.ID, "snapshot": snap})
}

func abortFlowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrDuplicateSubmit):
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "a save is already in flight"})
	case errors.Is(err, flow.ErrUnrecognizedOutcome):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, flow.ErrValidation), errors.Is(err, flow.ErrPhoneAcquisition):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, flow.ErrCollaborator):
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "save failed, retry"})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
