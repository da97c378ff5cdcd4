package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/harentsoaR/admin-panel-api/internal/utils"
)

func errMsg(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func strPtr(s string) *string { return &s }

func TestDoctorCreateValidate(t *testing.T) {
	tests := []struct {
		name string
		req  DoctorCreateRequest
		want string
	}{
		{"missing", DoctorCreateRequest{DoctorID: "doc1", FirstName: "Ann"}, "Missing required fields: doctor_id, first_name, last_name, organization_id"},
		{"short id", DoctorCreateRequest{DoctorID: "d1", FirstName: "Ann", LastName: "Lee", OrganizationID: "org"}, "Doctor ID must be at least 3 characters long"},
		{"short multibyte id", DoctorCreateRequest{DoctorID: "éé", FirstName: "Ann", LastName: "Lee", OrganizationID: "org"}, "Doctor ID must be at least 3 characters long"},
		{"multibyte id", DoctorCreateRequest{DoctorID: "été", FirstName: "Ann", LastName: "Lee", OrganizationID: "org"}, ""},
		{"short first", DoctorCreateRequest{DoctorID: "doc1", FirstName: " A ", LastName: "Lee", OrganizationID: "org"}, "First name must be at least 2 characters long"},
		{"short last", DoctorCreateRequest{DoctorID: "doc1", FirstName: "Ann", LastName: "L", OrganizationID: "org"}, "Last name must be at least 2 characters long"},
		{"blank org", DoctorCreateRequest{DoctorID: "doc1", FirstName: "Ann", LastName: "Lee", OrganizationID: "   "}, "Organization ID is required"},
		{"bad phone", DoctorCreateRequest{DoctorID: "doc1", FirstName: "Ann", LastName: "Lee", OrganizationID: "org",
			DoctorData: map[string]any{"phone": "1111111111"}}, "Phone number cannot be all ones"},
		{"ok", DoctorCreateRequest{DoctorID: "doc1", FirstName: "Ann", LastName: "Lee", OrganizationID: "org",
			DoctorData: map[string]any{"phone": "+15551234567"}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if got := errMsg(err); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
			var verr *utils.ValidationError
			if err != nil && !errors.As(err, &verr) {
				t.Fatalf("expected a validation error, got %T", err)
			}
		})
	}
}

func TestDoctorUpdateValidate(t *testing.T) {
	empty := DoctorUpdateRequest{}
	if got := errMsg(empty.Validate()); got != "At least one field must be provided for update" {
		t.Errorf("empty update: %q", got)
	}
	if got := errMsg(empty.ValidatePatch()); got != "At least one field must be provided for update" {
		t.Errorf("empty patch: %q", got)
	}

	blankOrg := DoctorUpdateRequest{OrganizationID: strPtr(" ")}
	if got := errMsg(blankOrg.Validate()); got != "Organization ID cannot be empty" {
		t.Errorf("blank org: %q", got)
	}
	if err := blankOrg.ValidatePatch(); err != nil {
		t.Errorf("patch should not check field contents: %v", err)
	}

	shortName := DoctorUpdateRequest{FirstName: strPtr("")}
	if got := errMsg(shortName.Validate()); got != "First name must be at least 2 characters long" {
		t.Errorf("short name: %q", got)
	}

	if err := ValidateDoctorID("  "); errMsg(err) != "Doctor ID is required" {
		t.Errorf("blank id: %v", err)
	}
}

func TestDoctorProfileQualifications(t *testing.T) {
	var data map[string]any
	raw := `{"age": 30, "qualifications": [{"degree": "MBBS", "year": "2005"}]}`
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		t.Fatal(err)
	}
	p := ProfileFromData(data)
	if p.Age != "30" || len(p.Qualifications) != 1 {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if err := p.Validate(); err == nil {
		t.Fatal("expected qualification year error")
	}

	dup := DoctorProfile{Qualifications: []utils.Qualification{{Year: "2010"}, {Year: "2010"}}}
	if got := errMsg(dup.Validate()); got != "Qualification years must be different for each qualification" {
		t.Errorf("duplicate years: %q", got)
	}

	reg := DoctorProfile{RegistrationYear: "2008", Qualifications: []utils.Qualification{{Year: "2012"}, {Year: "2010"}}}
	if got := errMsg(reg.Validate()); got != "Registration year must be after or equal to qualification year" {
		t.Errorf("registration: %q", got)
	}

	// "999" sorts after "2005" as a string but is the earlier year.
	numeric := DoctorProfile{RegistrationYear: "1500", Qualifications: []utils.Qualification{{Year: "2005"}, {Year: "999"}}}
	if err := numeric.Validate(); err != nil {
		t.Errorf("earliest year should compare numerically: %v", err)
	}
}

func TestCalendarAndEventValidate(t *testing.T) {
	if got := errMsg((&CalendarCreateRequest{DoctorID: "d"}).Validate()); got != "Missing required fields: doctor_id, user_name, timezone" {
		t.Errorf("calendar: %q", got)
	}
	if got := errMsg((&CalendarShareRequest{CalendarID: "c"}).Validate()); got != "Missing required fields: calendar_id, share_email, role" {
		t.Errorf("share: %q", got)
	}
	if got := errMsg((&EventCreateRequest{CalendarID: "c", Summary: "s", Start: "x"}).Validate()); got != "Missing required fields: calendar_id, summary, start, end" {
		t.Errorf("event create: %q", got)
	}
	if got := errMsg((&EventUpdateRequest{CalendarID: "c", Summary: "s", Start: "x", End: "y"}).Validate()); got != "Missing required fields: calendar_id, event_id, summary, start, end" {
		t.Errorf("event update: %q", got)
	}
	ok := EventCreateRequest{CalendarID: "c", Summary: "s", Start: "x", End: "y"}
	if err := ok.Validate(); err != nil {
		t.Errorf("valid event: %v", err)
	}
}

func TestUpdateOrgValidate(t *testing.T) {
	tests := []struct {
		req  UpdateOrgRequest
		want string
	}{
		{UpdateOrgRequest{}, "Missing orgId"},
		{UpdateOrgRequest{OrgID: "o"}, "No updates provided"},
		{UpdateOrgRequest{OrgID: "o", Updates: map[string]any{"name": "x", "zeta": 1, "alpha": 2}}, "Invalid update fields: alpha, zeta"},
		{UpdateOrgRequest{OrgID: "o", Updates: map[string]any{"name": "x", "maxUsers": 5}}, ""},
	}
	for _, tt := range tests {
		if got := errMsg(tt.req.Validate()); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

func TestOrgQueryDefaults(t *testing.T) {
	page, size := (&OrgQueryRequest{}).Page()
	if page != 0 || size != 10 {
		t.Fatalf("defaults = %d, %d", page, size)
	}
}

func TestAgentUpdateValidate(t *testing.T) {
	valid := func() AgentUpdateRequest {
		return AgentUpdateRequest{
			ChatbotAPI: "https://dify/v1/chat-messages",
			ChatbotKey: "app-key",
			TTSConfig:  map[string]any{"voice_id": "v", "tts_api_key": "k", "model": "m", "speed": 0.0},
			STTConfig:  map[string]any{"api_key": "k", "model": "m", "language": "en"},
		}
	}

	r := valid()
	if err := r.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	r = valid()
	r.STTConfig = nil
	if got := errMsg(r.Validate()); got != "Missing required fields: chatbot_api, chatbot_key, tts_config, stt_config" {
		t.Errorf("missing: %q", got)
	}

	r = valid()
	delete(r.TTSConfig, "speed")
	if got := errMsg(r.Validate()); got != "Invalid TTS configuration" {
		t.Errorf("tts: %q", got)
	}

	r = valid()
	r.STTConfig["language"] = ""
	if got := errMsg(r.Validate()); got != "Invalid STT configuration" {
		t.Errorf("stt: %q", got)
	}
}

func TestNormalizeAgents(t *testing.T) {
	decode := func(s string) any {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			t.Fatal(err)
		}
		return v
	}

	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"agents array", `{"agents":[{"id":1},{"id":2}]}`, 2},
		{"data array", `{"data":[{"id":1}]}`, 1},
		{"bare array", `[{"id":1},{"id":2},{"id":3}]`, 3},
		{"agents map", `{"agents":{"a1":{"name":"x"},"a2":{"name":"y"}}}`, 2},
		{"other array", `{"count":2,"items":[{"id":1},{"id":2}]}`, 2},
		{"scalar", `"nope"`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeAgents(decode(tt.raw)); len(got) != tt.want {
				t.Fatalf("got %d agents, want %d", len(got), tt.want)
			}
		})
	}

	agents := NormalizeAgents(decode(`{"agents":{"a1":{"name":"x"}}}`))
	first, _ := agents[0].(map[string]any)
	if first["agentId"] != "a1" || first["name"] != "x" {
		t.Fatalf("unexpected agent: %v", first)
	}
}

func TestProcessRuleFor(t *testing.T) {
	auto := ProcessRuleFor(nil)
	if auto.Mode != "automatic" || auto.Rules.Segmentation.MaxTokens != 500 || auto.Rules.Segmentation.Separator != "\n" {
		t.Fatalf("unexpected automatic rule: %+v", auto)
	}

	overlap := 20
	off := false
	rule := ProcessRuleFor(&ChunkSettings{Mode: "structure", ChunkSize: 800, ChunkOverlap: &overlap, ReplaceExtraSpaces: &off})
	if rule.Mode != "hierarchical" || rule.Rules.Segmentation.Hierarchical == nil {
		t.Fatalf("expected hierarchical rule: %+v", rule)
	}
	if rule.Rules.Segmentation.MaxTokens != 800 || rule.Rules.Segmentation.Hierarchical.OverlapTokens != 160 || rule.Rules.Segmentation.Hierarchical.MaxParentTokens != 4000 {
		t.Fatalf("unexpected sizes: %+v %+v", rule.Rules.Segmentation, rule.Rules.Segmentation.Hierarchical)
	}
	if rule.Rules.PreProcessingRules[0].Enabled || rule.Rules.PreProcessingRules[1].Enabled {
		t.Fatalf("unexpected pre-processing: %+v", rule.Rules.PreProcessingRules)
	}

	defaults := ProcessRuleFor(&ChunkSettings{Mode: "structure"})
	if defaults.Rules.Segmentation.MaxTokens != 1024 || defaults.Rules.Segmentation.Hierarchical.OverlapTokens != 512 {
		t.Fatalf("unexpected defaults: %+v", defaults.Rules)
	}
	if !defaults.Rules.PreProcessingRules[0].Enabled {
		t.Fatal("remove_extra_spaces should default on")
	}
}

func TestProcessRuleForWireShape(t *testing.T) {
	intPtr := func(n int) *int { return &n }
	tests := []struct {
		name        string
		overlap     *int
		wantOverlap float64
	}{
		{"default overlap", nil, 400},
		{"zero falls back to default", intPtr(0), 400},
		{"explicit overlap", intPtr(20), 160},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(ProcessRuleFor(&ChunkSettings{Mode: "structure", ChunkSize: 800, ChunkOverlap: tt.overlap}))
			if err != nil {
				t.Fatal(err)
			}
			var decoded map[string]any
			if err := json.Unmarshal(raw, &decoded); err != nil {
				t.Fatal(err)
			}
			rules, _ := decoded["rules"].(map[string]any)
			if _, ok := rules["hierarchical"]; ok {
				t.Fatalf("hierarchical must not sit beside segmentation: %s", raw)
			}
			seg, _ := rules["segmentation"].(map[string]any)
			h, ok := seg["hierarchical"].(map[string]any)
			if !ok {
				t.Fatalf("rules.segmentation.hierarchical missing: %s", raw)
			}
			if h["overlap_tokens"] != tt.wantOverlap || h["max_parent_tokens"] != float64(4000) || h["enabled"] != true {
				t.Errorf("hierarchical = %v", h)
			}
		})
	}

	raw, _ := json.Marshal(AutomaticProcessRule())
	if strings.Contains(string(raw), "hierarchical") {
		t.Errorf("automatic rule carries hierarchical settings: %s", raw)
	}
}

func TestScheduleCreate(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	req := ScheduleCreateRequest{OrganizationID: "org", AgentID: "a1", CallType: "reminder",
		RecipientPhone: "+1 (555) 123-4567", ScheduledTime: "2025-03-02T09:00:00Z"}
	call, err := req.ToScheduledCall(now)
	if err != nil {
		t.Fatalf("ToScheduledCall: %v", err)
	}
	if call.RecipientPhone != "+15551234567" || call.FlexibleTimeMinutes != 15 || call.MaxRetries != 3 || call.Status != ScheduleStatusScheduled {
		t.Fatalf("unexpected call: %+v", call)
	}

	req.ScheduledTime = "tomorrow"
	if _, err := req.ToScheduledCall(now); err == nil {
		t.Fatal("expected time parse error")
	}

	if _, err := (&ScheduleCreateRequest{AgentID: "a"}).ToScheduledCall(now); err == nil {
		t.Fatal("expected missing fields error")
	}

	upd := ScheduleUpdateRequest{}
	fields, err := upd.Fields()
	if err != nil || len(fields) != 0 {
		t.Fatalf("empty update: %v %v", fields, err)
	}
}

func TestDocumentStatus(t *testing.T) {
	for in, want := range map[string]string{"completed": "completed", "error": "error", "parsing": "indexing", "": "indexing"} {
		if got := DocumentStatus(in); got != want {
			t.Errorf("DocumentStatus(%q) = %q, want %q", in, got, want)
		}
	}
	if got := UnixToISO(0); got != "" {
		t.Errorf("UnixToISO(0) = %q", got)
	}
	if got := UnixToISO(1700000000); got != "2023-11-14T22:13:20.000Z" {
		t.Errorf("UnixToISO = %q", got)
	}
}
