package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"callcenter-relance/internal/actions"
	"callcenter-relance/internal/auth"
	"callcenter-relance/internal/audit"
	"callcenter-relance/internal/flow"
	"callcenter-relance/internal/leads"
	"callcenter-relance/internal/rbac"
	"callcenter-relance/internal/reporting"
	"callcenter-relance/pkg/logger"
	"callcenter-relance/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth      *auth.Manager
	Leads     *leads.Service
	Actions   *actions.Service
	Reporting *reporting.Service
	Flow      *flow.Service
	Audit     *audit.Service
	Sessions  *SessionRegistry
	Guard     *SubmitGuard
}

// --- Auth ---

type loginRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id and role required"})
		return
	}
	switch req.Role {
	case rbac.RoleAgent, rbac.RoleSupervisor, rbac.RoleAdmin:
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Leads ---

// CreateLead registers a lead. Idempotent on lead_key: re-submitting
// returns the previously created lead.
func (h Handlers) CreateLead(c *gin.Context) {
	var req leads.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	l, err := h.Leads.Create(c.Request.Context(), req)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	h.auditLog(c, h.Audit.LogLeadCreated(c.Request.Context(), actorUserID(c), c.ClientIP(), l.ID))
	c.JSON(http.StatusOK, gin.H{"ok": true, "lead": l})
}

// ListLeads returns per-lead activity rows for the board view.
func (h Handlers) ListLeads(c *gin.Context) {
	rows, info, err := h.Reporting.LeadActivity(c.Request.Context(), reportingFilter(c), pageParams(c))
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(rows, info))
}

// --- Actions ---

// RecordAction saves a composed call attempt plus its optional relance.
func (h Handlers) RecordAction(c *gin.Context) {
	var req actions.RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	err := h.Guard.Do(c.Request.Context(), req.Agent, func() error {
		return h.Actions.Record(c.Request.Context(), req)
	})
	if err != nil {
		abortServiceError(c, err)
		return
	}
	h.auditLog(c, h.Audit.LogCallRecorded(c.Request.Context(), actorUserID(c), req.Agent, c.ClientIP(), req.LeadID))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ListRelances returns the pending relance worklist, due first.
func (h Handlers) ListRelances(c *gin.Context) {
	items, info, err := h.Actions.ListRelances(c.Request.Context(), actionsFilter(c), pageParams(c))
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(items, info))
}

// GetRelance returns the follow-up editor context for one pending relance.
func (h Handlers) GetRelance(c *gin.Context) {
	fc, err := h.Actions.FollowUpContext(c.Request.Context(), c.Param("call_id"))
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fc)
}

// CompleteRelance closes a pending relance, optionally chaining the next.
func (h Handlers) CompleteRelance(c *gin.Context) {
	callID := c.Param("call_id")
	var req actions.CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	err := h.Guard.Do(c.Request.Context(), actorUserID(c), func() error {
		return h.Actions.CompleteFollowUp(c.Request.Context(), callID, req)
	})
	if err != nil {
		abortServiceError(c, err)
		return
	}
	h.auditLog(c, h.Audit.LogRelanceCompleted(c.Request.Context(), actorUserID(c), "", c.ClientIP(), callID))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ListCalls returns the executed call history, newest first.
func (h Handlers) ListCalls(c *gin.Context) {
	items, info, err := h.Actions.ListCalls(c.Request.Context(), actionsFilter(c), pageParams(c))
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(items, info))
}

// --- Reporting ---

// Dashboard returns the desk KPIs for the matching segment.
func (h Handlers) Dashboard(c *gin.Context) {
	d, err := h.Reporting.Dashboard(c.Request.Context(), reportingFilter(c))
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// --- helpers ---

func pageParams(c *gin.Context) utils.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	// Normalize clamps; bad values never reject the request.
	return utils.Page{Number: page, Size: limit}
}

func actionsFilter(c *gin.Context) actions.Filter {
	return actions.Filter{Projet: c.Query("projet"), TypeLead: c.Query("type_lead")}
}

func reportingFilter(c *gin.Context) reporting.Filter {
	return reporting.Filter{Projet: c.Query("projet"), TypeLead: c.Query("type_lead")}
}

func listResponse(data any, info utils.PageInfo) gin.H {
	return gin.H{
		"data":  data,
		"page":  info.Page,
		"limit": info.Limit,
		"total": info.Total,
		"pages": info.Pages,
	}
}

func actorUserID(c *gin.Context) string {
	uid, _ := auth.UserID(c.Request.Context())
	return uid
}

// auditLog surfaces a failed best-effort audit write to the request
// logger without affecting the response.
func (h Handlers) auditLog(c *gin.Context, err error) {
	if err != nil {
		logger.FromGin(c).Warn("audit write failed", "err", err)
	}
}

func abortServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrDuplicateSubmit):
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "a save is already in flight"})
	case errors.Is(err, leads.ErrInvalidArgument), errors.Is(err, actions.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, leads.ErrNotFound), errors.Is(err, actions.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
