package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/admin-panel-api/internal/config"
	"github.com/harentsoaR/admin-panel-api/internal/models"
	"github.com/harentsoaR/admin-panel-api/internal/services"
	"github.com/harentsoaR/admin-panel-api/internal/utils"
)

// --- fakes ---

type memSchedules struct {
	mu    sync.Mutex
	calls map[string]*models.ScheduledCall
}

func newMemSchedules() *memSchedules {
	return &memSchedules{calls: map[string]*models.ScheduledCall{}}
}

func (m *memSchedules) Create(ctx context.Context, call *models.ScheduledCall) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[call.ID.Hex()] = call
	return nil
}

func (m *memSchedules) Get(ctx context.Context, id string) (*models.ScheduledCall, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	call, ok := m.calls[id]
	if !ok {
		return nil, services.ErrScheduleNotFound
	}
	return call, nil
}

func (m *memSchedules) Update(ctx context.Context, id string, fields map[string]any) (*models.ScheduledCall, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	call, ok := m.calls[id]
	if !ok {
		return nil, services.ErrScheduleNotFound
	}
	if s, ok := fields["status"].(string); ok {
		call.Status = s
	}
	return call, nil
}

func (m *memSchedules) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.calls[id]; !ok {
		return services.ErrScheduleNotFound
	}
	delete(m.calls, id)
	return nil
}

func (m *memSchedules) List(ctx context.Context, f services.ScheduleFilter) ([]models.ScheduledCall, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ScheduledCall{}
	for _, call := range m.calls {
		if f.AgentID != "" && call.AgentID != f.AgentID {
			continue
		}
		if f.OrganizationID != "" && call.OrganizationID != f.OrganizationID {
			continue
		}
		out = append(out, *call)
	}
	return out, nil
}

type memPhones struct {
	mu      sync.Mutex
	numbers []models.ImportedPhoneNumber
}

func (m *memPhones) Import(ctx context.Context, n *models.ImportedPhoneNumber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.numbers {
		if existing.PhoneNumber == n.PhoneNumber && existing.OrganizationID == n.OrganizationID {
			return &services.PhoneNumberExistsError{PhoneNumber: n.PhoneNumber}
		}
	}
	m.numbers = append(m.numbers, *n)
	return nil
}

func (m *memPhones) ByOrganization(ctx context.Context, orgID string) ([]models.ImportedPhoneNumber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ImportedPhoneNumber{}
	for _, n := range m.numbers {
		if n.OrganizationID == orgID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memPhones) Assign(ctx context.Context, phoneNumber, agentID string) error { return nil }
func (m *memPhones) Unassign(ctx context.Context, phoneNumber string) error        { return nil }

type memLogs struct {
	summary *models.LogsSummary
	logs    []models.ConversationLog
}

func (m *memLogs) Upsert(ctx context.Context, entry *models.ConversationLog) error { return nil }

func (m *memLogs) Summary(ctx context.Context, orgID string) (*models.LogsSummary, error) {
	return m.summary, nil
}

func (m *memLogs) Export(ctx context.Context, start, end time.Time) ([]models.ConversationLog, error) {
	return m.logs, nil
}

func (m *memLogs) Clean(ctx context.Context, before time.Time, orgID string) (int64, error) {
	return 0, nil
}

// --- helpers ---

func testConfig() *config.Config {
	return &config.Config{Env: "test", DefaultOrgName: "Xpectrum_AI", LogRetentionDays: 30}
}

func newTestHandler(liveURL string) *Handler {
	cfg := testConfig()
	dify := services.NewDifyClient(services.DifyConfig{})
	return &Handler{
		Config:   cfg,
		Live:     services.NewLiveClient(liveURL, "", "test-key"),
		Dify:     dify,
		Ingestor: services.NewIngestor(dify),
		Monitor:  services.NewMonitor(dify),
	}
}

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/health", h.Health)
	h.RegisterRoutes(r.Group("/api"))
	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

// --- tests ---

func TestHealth(t *testing.T) {
	h := newTestHandler("")
	w := doJSON(newTestRouter(h), http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := decode(t, w)
	if body["status"] != "healthy" || body["service"] != "admin-panel-api" || body["environment"] != "test" {
		t.Errorf("body = %v", body)
	}
	conf, _ := body["configuration"].(map[string]any)
	if conf["database"] != false || conf["stripe"] != false {
		t.Errorf("configuration = %v", conf)
	}
}

func TestCreateDoctorValidation(t *testing.T) {
	h := newTestHandler("")
	w := doJSON(newTestRouter(h), http.MethodPost, "/api/doctor", `{"first_name":"Ann"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["status"] != "error" || !strings.Contains(body["error"].(string), "Missing required fields") {
		t.Errorf("body = %v", body)
	}
}

func TestCreateDoctorProxiesToLive(t *testing.T) {
	var got map[string]any
	live := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/doctor/create" || r.Header.Get("X-API-Key") != "test-key" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"doctor_id":"doc-123"}`))
	}))
	defer live.Close()

	h := newTestHandler(live.URL)
	w := doJSON(newTestRouter(h), http.MethodPost, "/api/doctor",
		`{"doctor_id":"doc-123","first_name":"Ann","last_name":"Lee","organization_id":"org-1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if got["doctor_id"] != "doc-123" {
		t.Errorf("live received %v", got)
	}
	if body := decode(t, w); body["message"] != "Doctor created successfully" {
		t.Errorf("body = %v", body)
	}
}

func TestGetAllAgents(t *testing.T) {
	live := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"agents":[{"id":"a1"},{"id":"a2"}]}`))
	}))
	defer live.Close()

	w := doJSON(newTestRouter(newTestHandler(live.URL)), http.MethodGet, "/api/agents/all", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := decode(t, w)
	if body["count"] != float64(2) || len(body["agents"].([]any)) != 2 {
		t.Errorf("body = %v", body)
	}
}

func TestAgentUpstreamErrorKeepsStatus(t *testing.T) {
	live := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"detail":"agent service down"}`))
	}))
	defer live.Close()

	w := doJSON(newTestRouter(newTestHandler(live.URL)), http.MethodGet, "/api/agents/all", "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", w.Code)
	}
	body := decode(t, w)
	if body["error"] != "Failed to get all agents from live API" {
		t.Errorf("error = %v", body["error"])
	}
	details, _ := body["details"].(map[string]any)
	if details["detail"] != "agent service down" {
		t.Errorf("details = %v", body["details"])
	}
}

func TestGenerateAgentID(t *testing.T) {
	r := newTestRouter(newTestHandler(""))

	w := doJSON(r, http.MethodPost, "/api/agents/generate-id", `{"name":"Front Desk"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := decode(t, w)
	id, _ := body["agent_id"].(string)
	if !strings.HasPrefix(id, "Front Desk_") || body["agent_name"] != "Front Desk" {
		t.Errorf("body = %v", body)
	}

	w = doJSON(r, http.MethodPost, "/api/agents/generate-id", `{"name":"  "}`)
	if w.Code != http.StatusBadRequest || decode(t, w)["error"] != "Agent name is required" {
		t.Errorf("blank name: %d %s", w.Code, w.Body.String())
	}
}

func TestImportTwilioNumber(t *testing.T) {
	h := newTestHandler("")
	h.Phones = &memPhones{}
	r := newTestRouter(h)

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantMsg  string
	}{
		{"missing fields", `{"phone_number":"+15557654321"}`, http.StatusBadRequest, "Phone number, Account SID, and Auth Token are required"},
		{"bad format", `{"phone_number":"call me","account_sid":"AC1","auth_token":"tok"}`, http.StatusUnprocessableEntity, "Invalid phone number format"},
		{"imported", `{"phone_number":"+15557654321","account_sid":"AC1","auth_token":"tok","organization_id":"org-1"}`, http.StatusOK, "Phone number imported successfully"},
		{"duplicate", `{"phone_number":"+15557654321","account_sid":"AC1","auth_token":"tok","organization_id":"org-1"}`, http.StatusUnprocessableEntity, "Phone number +15557654321 already exists for this organization."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/api/phone-numbers/import-twilio-number", tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantCode, w.Body.String())
			}
			if body := decode(t, w); body["message"] != tt.wantMsg {
				t.Errorf("message = %v, want %q", body["message"], tt.wantMsg)
			}
		})
	}

	numbers, _ := h.Phones.ByOrganization(context.Background(), "org-1")
	if len(numbers) != 1 || !strings.HasPrefix(numbers[0].PhoneID, "phone_") || numbers[0].PhoneNumber != "15557654321" {
		t.Errorf("stored = %+v", numbers)
	}
}

func TestImportTwilioNumberWithoutDatabase(t *testing.T) {
	w := doJSON(newTestRouter(newTestHandler("")), http.MethodPost, "/api/phone-numbers/import-twilio-number",
		`{"phone_number":"+15557654321","account_sid":"AC1","auth_token":"tok"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", w.Code)
	}
}

func TestScheduleLifecycle(t *testing.T) {
	h := newTestHandler("")
	h.Schedules = newMemSchedules()
	r := newTestRouter(h)

	w := doJSON(r, http.MethodPost, "/api/scheduled/create", `{
		"organization_id":"org-1","agent_id":"agent-1","call_type":"reminder",
		"recipient_phone":"+1 (555) 765-4321","scheduled_time":"2030-01-02T15:04:05Z"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	data, _ := decode(t, w)["data"].(map[string]any)
	id, _ := data["schedule_id"].(string)
	if id == "" || data["recipient_phone"] != "+15557654321" || data["status"] != "scheduled" {
		t.Fatalf("created = %v", data)
	}

	w = doJSON(r, http.MethodGet, "/api/scheduled/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}

	w = doJSON(r, http.MethodPut, "/api/scheduled/"+id, `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty update status = %d", w.Code)
	}

	w = doJSON(r, http.MethodGet, "/api/scheduled/agent/agent-1", "")
	if got, _ := decode(t, w)["data"].([]any); len(got) != 1 {
		t.Errorf("agent list = %s", w.Body.String())
	}

	w = doJSON(r, http.MethodDelete, "/api/scheduled/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = doJSON(r, http.MethodGet, "/api/scheduled/"+id, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", w.Code)
	}
}

func TestCreateScheduleValidation(t *testing.T) {
	h := newTestHandler("")
	h.Schedules = newMemSchedules()
	w := doJSON(newTestRouter(h), http.MethodPost, "/api/scheduled/create", `{"agent_id":"agent-1"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}

func TestURLDocument(t *testing.T) {
	console := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/console/api/login":
			w.Write([]byte(`{"result":"success","data":{"access_token":"tok"}}`))
		case "/console/api/website/crawl":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"'NoneType' object has no attribute 'crawl_url'"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer console.Close()

	h := newTestHandler("")
	dify := services.NewDifyClient(services.DifyConfig{ConsoleOrigin: console.URL, Email: "admin@example.com", Password: "secret"})
	h.Dify = dify
	h.Ingestor = services.NewIngestor(dify)
	r := newTestRouter(h)

	w := doJSON(r, http.MethodPost, "/api/knowledge-bases/ds-1/documents/url", `{}`)
	if w.Code != http.StatusBadRequest || decode(t, w)["error"] != "URL is required" {
		t.Errorf("missing url: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodPost, "/api/knowledge-bases/ds-1/documents/url", `{"url":"https://example.com/faq"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if body := decode(t, w); body["configurationRequired"] != true {
		t.Errorf("body = %v", body)
	}
}

func TestURLDocumentStatusByStage(t *testing.T) {
	tests := []struct {
		name        string
		crawlStatus int
		createOK    bool
		want        int
	}{
		{"crawl rejected keeps upstream status", http.StatusForbidden, true, http.StatusForbidden},
		{"create failure after crawl", 0, false, http.StatusInternalServerError},
		{"created", 0, true, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			console := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch {
				case r.URL.Path == "/console/api/login":
					w.Write([]byte(`{"result":"success","data":{"access_token":"tok"}}`))
				case r.URL.Path == "/console/api/website/crawl":
					if tt.crawlStatus != 0 {
						w.WriteHeader(tt.crawlStatus)
						w.Write([]byte(`{"message":"forbidden"}`))
						return
					}
					w.Write([]byte(`{"job_id":"job-1"}`))
				case strings.HasPrefix(r.URL.Path, "/console/api/website/crawl/status/"):
					w.Write([]byte(`{"status":"completed"}`))
				case r.URL.Path == "/console/api/datasets/ds-1/documents":
					if !tt.createOK {
						w.WriteHeader(http.StatusUnprocessableEntity)
						w.Write([]byte(`{"message":"invalid process rule"}`))
						return
					}
					w.Write([]byte(`{"documents":[{"id":"doc-1","name":"FAQ","indexing_status":"waiting"}]}`))
				default:
					http.NotFound(w, r)
				}
			}))
			defer console.Close()

			h := newTestHandler("")
			dify := services.NewDifyClient(services.DifyConfig{ConsoleOrigin: console.URL, Email: "admin@example.com", Password: "secret"})
			h.Dify = dify
			h.Ingestor = services.NewIngestor(dify)
			h.Ingestor.PollInterval = time.Millisecond
			h.Ingestor.PollTimeout = time.Millisecond
			h.Ingestor.RetryDelay = time.Millisecond
			h.Ingestor.MaxAttempts = 1

			w := doJSON(newTestRouter(h), http.MethodPost, "/api/knowledge-bases/ds-1/documents/url", `{"url":"https://example.com/faq"}`)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d, body %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestKnowledgeBasesWithoutDify(t *testing.T) {
	w := doJSON(newTestRouter(newTestHandler("")), http.MethodGet, "/api/knowledge-bases", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", w.Code)
	}
}

func TestMonitoring(t *testing.T) {
	r := newTestRouter(newTestHandler(""))

	w := doJSON(r, http.MethodPost, "/api/dify/monitoring", `{"period":7}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing key status = %d", w.Code)
	}

	w = doJSON(r, http.MethodPost, "/api/dify/monitoring", `{"apiKey":"app-key","period":7}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("unconfigured status = %d", w.Code)
	}
}

func TestConversationLogs(t *testing.T) {
	h := newTestHandler("")
	h.Logs = &memLogs{
		summary: &models.LogsSummary{TotalLogs: 3, TotalMessages: 12, Organizations: []string{"org-1"}},
		logs: []models.ConversationLog{
			{OrganizationID: "org-1"},
			{OrganizationID: "org-2"},
		},
	}
	r := newTestRouter(h)

	w := doJSON(r, http.MethodGet, "/api/conversation-logs?action=nope", "")
	if w.Code != http.StatusBadRequest || decode(t, w)["error"] != "Invalid action. Use action=summary or action=export" {
		t.Errorf("invalid action: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodGet, "/api/conversation-logs?action=summary", "")
	if body := decode(t, w); w.Code != http.StatusOK || body["total_logs"] != float64(3) || body["total_messages"] != float64(12) {
		t.Errorf("summary: %d %v", w.Code, body)
	}

	w = doJSON(r, http.MethodGet, "/api/conversation-logs?action=export", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("export without dates status = %d", w.Code)
	}

	w = doJSON(r, http.MethodGet, "/api/conversation-logs?action=export&start_date=2025-01-01&end_date=2025-02-01&organization_id=org-1", "")
	if body := decode(t, w); w.Code != http.StatusOK || body["count"] != float64(1) {
		t.Errorf("export: %d %v", w.Code, body)
	}

	w = doJSON(r, http.MethodDelete, "/api/conversation-logs?days_to_keep=0", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("clean without archiver status = %d", w.Code)
	}
}

func TestCleanConversationLogsValidation(t *testing.T) {
	h := newTestHandler("")
	h.Logs = &memLogs{}
	h.Archiver = services.NewArchiver(h.Dify, h.Logs)
	r := newTestRouter(h)

	w := doJSON(r, http.MethodDelete, "/api/conversation-logs?days_to_keep=abc", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}

	w = doJSON(r, http.MethodDelete, "/api/conversation-logs?days=7", "")
	if body := decode(t, w); w.Code != http.StatusOK || body["message"] != "Deleted logs older than 7 days" {
		t.Errorf("clean: %d %v", w.Code, body)
	}
}

func TestStripeValidation(t *testing.T) {
	r := newTestRouter(newTestHandler(""))

	tests := []struct {
		method, path, body string
		wantCode           int
		wantErr            string
	}{
		{http.MethodPost, "/api/stripe/v1/customers", `{"email":"a@b.co"}`, http.StatusBadRequest, "Email and name are required"},
		{http.MethodGet, "/api/stripe/v1/payment_methods", "", http.StatusBadRequest, "Customer ID is required"},
		{http.MethodPost, "/api/stripe/v1/payment_methods", `{"type":"card"}`, http.StatusBadRequest, "Type and card data are required"},
		{http.MethodPost, "/api/stripe/v1/checkout/sessions", `{"customer":"cus_1"}`, http.StatusBadRequest, "Customer, price_id, success_url, and cancel_url are required"},
		{http.MethodGet, "/api/stripe/v1/prices", "", http.StatusBadRequest, "Product ID is required"},
		{http.MethodPost, "/api/stripe/v1/products", `{}`, http.StatusBadRequest, "Product name is required"},
		{http.MethodPost, "/api/stripe/v1/subscription_items/si_1/usage_records", `{}`, http.StatusBadRequest, "Quantity is required"},
		{http.MethodGet, "/api/stripe/v1/subscription_items/si_1/usage_record_summaries?start=2025-01-01", "", http.StatusBadRequest, "Subscription item ID, start, and end dates are required"},
		{http.MethodPost, "/api/stripe/v1/customers", `{"email":"a@b.co","name":"Ann"}`, http.StatusServiceUnavailable, services.ErrBillingNotConfigured.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := doJSON(r, tt.method, tt.path, tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantCode, w.Body.String())
			}
			if got := decode(t, w)["error"]; got != tt.wantErr {
				t.Errorf("error = %v, want %q", got, tt.wantErr)
			}
		})
	}
}

func TestParseUnix(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"1700000000", 1700000000, true},
		{"2025-01-01", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Unix(), true},
		{"2025-01-01T10:00:00Z", time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC).Unix(), true},
		{"", 0, false},
		{"yesterday", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseUnix(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseUnix(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestUpdateProfileRequiresUser(t *testing.T) {
	w := doJSON(newTestRouter(newTestHandler("")), http.MethodPut, "/api/user/update-profile", `{"first_name":"Ann"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", w.Code)
	}
}

func TestOrganizationFallsBackToClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestHandler("")
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(utils.ClaimsKey, &utils.Claims{UserID: "u1", Orgs: map[string]utils.OrgMemberInfo{"org-9": {OrgID: "org-9"}}})
	})
	r.GET("/org", func(c *gin.Context) {
		c.String(http.StatusOK, h.organization(c, c.Query("org")))
	})

	if w := doJSON(r, http.MethodGet, "/org?org=explicit", ""); w.Body.String() != "explicit" {
		t.Errorf("explicit = %q", w.Body.String())
	}
	if w := doJSON(r, http.MethodGet, "/org", ""); w.Body.String() != "org-9" {
		t.Errorf("from claims = %q", w.Body.String())
	}
}
