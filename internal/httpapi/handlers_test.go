package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"callcenter-relance/internal/actions"
	"callcenter-relance/internal/audit"
	"callcenter-relance/internal/flow"
	"callcenter-relance/internal/leads"
	"callcenter-relance/internal/reporting"

	"github.com/gin-gonic/gin"
)

// newTestRouter wires handlers over memory repos, without auth and
// without Redis (guard disabled).
func newTestRouter(t *testing.T) (*gin.Engine, Handlers) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	leadRepo := leads.NewMemoryRepo()
	actionRepo := actions.NewMemoryRepo(leadRepo)

	leadSvc := leads.NewService(leadRepo, time.UTC)
	actionSvc := actions.NewService(actionRepo, time.UTC)
	reportSvc := reporting.NewService(reporting.NewMemoryRepo(leadRepo, actionRepo), time.UTC)
	flowSvc := flow.NewService(flow.NewLeadCreator(leadSvc), flow.NewActionRecorder(actionSvc), flow.NewFollowUpStore(actionSvc), nil, time.UTC)

	h := Handlers{
		Leads:     leadSvc,
		Actions:   actionSvc,
		Reporting: reportSvc,
		Flow:      flowSvc,
		Audit:     audit.NewService(audit.NewMemoryRepo()),
		Sessions:  NewSessionRegistry(),
		Guard:     NewSubmitGuard(nil, 0),
	}

	r := gin.New()
	v1 := r.Group("/v1")
	{
		v1.POST("/leads", h.CreateLead)
		v1.GET("/leads", h.ListLeads)
		v1.POST("/actions", h.RecordAction)
		v1.GET("/relances", h.ListRelances)
		v1.GET("/relances/:call_id", h.GetRelance)
		v1.POST("/relances/:call_id/complete", h.CompleteRelance)
		v1.GET("/calls", h.ListCalls)
		v1.GET("/dashboard", h.Dashboard)

		v1.POST("/flow", h.StartFlow)
		v1.POST("/flow/resume/:call_id", h.ResumeFlow)
		v1.GET("/flow/:id", h.GetFlow)
		v1.POST("/flow/:id/lead", h.FlowLead)
		v1.POST("/flow/:id/phone", h.FlowPhone)
		v1.POST("/flow/:id/call", h.FlowCall)
		v1.POST("/flow/:id/outcome", h.FlowOutcome)
		v1.POST("/flow/:id/follow-up", h.FlowFollowUp)
		v1.POST("/flow/:id/follow-up/cancel", h.FlowCancelFollowUp)
	}
	return r, h
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w.Code, out
}

func createLead(t *testing.T, r *gin.Engine, key string) string {
	t.Helper()
	code, resp := doJSON(t, r, http.MethodPost, "/v1/leads", gin.H{
		"projet": "P1", "type_lead": "web", "lead_key": key,
		"lead_created_at": "01/01/2024 10:00",
	})
	if code != 200 {
		t.Fatalf("create lead: status %d: %v", code, resp)
	}
	lead := resp["lead"].(map[string]any)
	return lead["id"].(string)
}

func TestCreateLead_IdempotentOnKey(t *testing.T) {
	r, _ := newTestRouter(t)

	id1 := createLead(t, r, "K1")
	id2 := createLead(t, r, "K1")
	if id1 != id2 {
		t.Fatalf("same lead_key produced two leads: %s, %s", id1, id2)
	}

	code, resp := doJSON(t, r, http.MethodGet, "/v1/leads", nil)
	if code != 200 {
		t.Fatalf("list leads: status %d", code)
	}
	if total := resp["total"].(float64); total != 1 {
		t.Fatalf("total = %v, want 1", total)
	}
}

func TestCreateLead_Validation(t *testing.T) {
	r, _ := newTestRouter(t)

	code, _ := doJSON(t, r, http.MethodPost, "/v1/leads", gin.H{
		"projet": "P1", "type_lead": "web", "lead_key": "K1",
		"lead_created_at": "2024-01-01 10:00", // wrong format
	})
	if code != 400 {
		t.Fatalf("status = %d, want 400", code)
	}
}

func TestActionsEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)
	leadID := createLead(t, r, "K1")

	code, resp := doJSON(t, r, http.MethodPost, "/v1/actions", gin.H{
		"lead_id": leadID, "phone": "33612345678", "agent": "alice",
		"attempt_level": 1, "result": "Pas de réponse", "priority": "NORMAL",
		"relance_level": "2", "relance_at": "2024-01-02T09:00:00Z", "relance_priority": "P1",
	})
	if code != 200 {
		t.Fatalf("record action: status %d: %v", code, resp)
	}

	code, resp = doJSON(t, r, http.MethodGet, "/v1/relances", nil)
	if code != 200 || resp["total"].(float64) != 1 {
		t.Fatalf("list relances: status %d: %v", code, resp)
	}
	item := resp["data"].([]any)[0].(map[string]any)
	callID := item["call_id"].(string)
	if item["priority"].(string) != "P1" {
		t.Fatalf("relance priority = %v, want P1", item["priority"])
	}

	code, resp = doJSON(t, r, http.MethodGet, "/v1/relances/"+callID, nil)
	if code != 200 || resp["lead_key"].(string) != "K1" {
		t.Fatalf("get relance: status %d: %v", code, resp)
	}

	code, resp = doJSON(t, r, http.MethodPost, "/v1/relances/"+callID+"/complete", gin.H{
		"result": "Qualifié", "priority": "NORMAL", "relance_level": "none",
	})
	if code != 200 {
		t.Fatalf("complete relance: status %d: %v", code, resp)
	}

	code, resp = doJSON(t, r, http.MethodGet, "/v1/relances", nil)
	if code != 200 || resp["total"].(float64) != 0 {
		t.Fatalf("relance not cleared: %v", resp)
	}
	code, resp = doJSON(t, r, http.MethodGet, "/v1/calls", nil)
	if code != 200 || resp["total"].(float64) != 2 {
		t.Fatalf("calls list: status %d: %v", code, resp)
	}
}

func TestGetRelance_NotFound(t *testing.T) {
	r, _ := newTestRouter(t)
	if code, _ := doJSON(t, r, http.MethodGet, "/v1/relances/missing", nil); code != 404 {
		t.Fatalf("status = %d, want 404", code)
	}
}

func TestDashboardEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	leadID := createLead(t, r, "K1")

	code, resp := doJSON(t, r, http.MethodPost, "/v1/actions", gin.H{
		"lead_id": leadID, "phone": "33612345678", "agent": "alice",
		"attempt_level": 1, "result": "Qualifié", "priority": "NORMAL",
		"relance_level": "none",
	})
	if code != 200 {
		t.Fatalf("record action: status %d: %v", code, resp)
	}

	code, resp = doJSON(t, r, http.MethodGet, "/v1/dashboard", nil)
	if code != 200 {
		t.Fatalf("dashboard: status %d", code)
	}
	if resp["leads_total"].(float64) != 1 || resp["calls_total"].(float64) != 1 {
		t.Fatalf("unexpected dashboard: %v", resp)
	}
}
