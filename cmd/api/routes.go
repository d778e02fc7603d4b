package main

import (
	"callcenter-relance/internal/httpapi"
	"callcenter-relance/internal/rbac"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")

	// AUTH routes (token issuance).
	// NOTE: Placeholder login route; real credential validation is not implemented.
	v1.POST("/auth/login", h.Login)

	protected := v1.Group("")
	protected.Use(authMW)

	// Desk operations: agents and supervisors.
	desk := protected.Group("")
	desk.Use(rbac.RequireAnyRole(rbac.RoleAgent, rbac.RoleSupervisor))
	{
		desk.POST("/leads", h.CreateLead)
		desk.GET("/leads", h.ListLeads)

		desk.POST("/actions", h.RecordAction)

		desk.GET("/relances", h.ListRelances)
		desk.GET("/relances/:call_id", h.GetRelance)
		desk.POST("/relances/:call_id/complete", h.CompleteRelance)

		desk.GET("/calls", h.ListCalls)

		// Server-side call flow sessions.
		desk.POST("/flow", h.StartFlow)
		desk.POST("/flow/resume/:call_id", h.ResumeFlow)
		desk.GET("/flow/:id", h.GetFlow)
		desk.POST("/flow/:id/lead", h.FlowLead)
		desk.POST("/flow/:id/phone", h.FlowPhone)
		desk.POST("/flow/:id/call", h.FlowCall)
		desk.POST("/flow/:id/outcome", h.FlowOutcome)
		desk.POST("/flow/:id/follow-up", h.FlowFollowUp)
		desk.POST("/flow/:id/follow-up/cancel", h.FlowCancelFollowUp)
	}

	// Supervision: KPI dashboard.
	supervision := protected.Group("")
	supervision.Use(rbac.RequireAnyRole(rbac.RoleSupervisor))
	{
		supervision.GET("/dashboard", h.Dashboard)
	}
}
