package services

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/harentsoaR/admin-panel-api/internal/models"
)

// LiveClient talks to the live voice backend: doctors, calendars, events, agents and phone numbers.
type LiveClient struct {
	api      *Upstream
	calendar *Upstream
}

// NewLiveClient builds a client. calendarURL may be empty, in which case calendar
// and event calls go to the live backend too.
func NewLiveClient(baseURL, calendarURL, apiKey string) *LiveClient {
	header := http.Header{"X-API-Key": {apiKey}}
	if calendarURL == "" {
		calendarURL = baseURL
	}
	return &LiveClient{
		api:      NewUpstream(baseURL, header),
		calendar: NewUpstream(calendarURL, header.Clone()),
	}
}

// --- Doctors ---

func (l *LiveClient) CreateDoctor(ctx context.Context, req *models.DoctorCreateRequest) (any, error) {
	var out any
	err := l.api.Do(ctx, "Failed to create doctor", http.MethodPost, "/doctor/create", req, &out)
	return out, err
}

func (l *LiveClient) GetDoctor(ctx context.Context, id string) (any, error) {
	var out any
	err := l.api.Do(ctx, "Failed to get doctor", http.MethodGet, "/doctor/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (l *LiveClient) UpdateDoctor(ctx context.Context, id string, req *models.DoctorUpdateRequest) (any, error) {
	var out any
	err := l.api.Do(ctx, "Failed to update doctor", http.MethodPut, "/doctor/"+url.PathEscape(id), req, &out)
	return out, err
}

func (l *LiveClient) PatchDoctor(ctx context.Context, id string, req *models.DoctorUpdateRequest) (any, error) {
	var out any
	err := l.api.Do(ctx, "Failed to patch doctor", http.MethodPatch, "/doctor/"+url.PathEscape(id), req, &out)
	return out, err
}

func (l *LiveClient) DeleteDoctor(ctx context.Context, id string) (any, error) {
	var out any
	err := l.api.Do(ctx, "Failed to delete doctor", http.MethodDelete, "/doctor/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (l *LiveClient) DoctorsByOrganization(ctx context.Context, orgID string) (any, error) {
	var out any
	err := l.api.Do(ctx, "Failed to get organization doctors", http.MethodGet, "/doctor/organization/"+url.PathEscape(orgID), nil, &out)
	return out, err
}

// --- Calendars and events ---

func (l *LiveClient) CreateCalendar(ctx context.Context, req *models.CalendarCreateRequest) (any, error) {
	var out any
	err := l.calendar.Do(ctx, "Failed to create calendar", http.MethodPost, "/calendar/create", req, &out)
	return out, err
}

func (l *LiveClient) DoctorCalendar(ctx context.Context, doctorID string) (any, error) {
	var out any
	err := l.calendar.Do(ctx, "Failed to get doctor calendar", http.MethodGet, "/calendar/doctor/"+url.PathEscape(doctorID), nil, &out)
	return out, err
}

func (l *LiveClient) OrganizationCalendars(ctx context.Context, orgID string) (any, error) {
	var out any
	err := l.calendar.Do(ctx, "Failed to get organization calendars", http.MethodGet, "/calendar/organization/"+url.PathEscape(orgID), nil, &out)
	return out, err
}

func (l *LiveClient) ShareCalendar(ctx context.Context, req *models.CalendarShareRequest) (any, error) {
	var out any
	err := l.calendar.Do(ctx, "Failed to share calendar", http.MethodPost, "/calendar/share", req, &out)
	return out, err
}

func (l *LiveClient) CreateEvent(ctx context.Context, req *models.EventCreateRequest) (any, error) {
	var out any
	err := l.calendar.Do(ctx, "Failed to create event", http.MethodPost, "/event/create", req, &out)
	return out, err
}

func (l *LiveClient) ListEvents(ctx context.Context, calendarID string, upcomingOnly bool) (any, error) {
	q := url.Values{}
	q.Set("calendar_id", calendarID)
	q.Set("upcoming_only", strconv.FormatBool(upcomingOnly))
	var out any
	err := l.calendar.Do(ctx, "Failed to list events", http.MethodGet, "/event/list?"+q.Encode(), nil, &out)
	return out, err
}

func (l *LiveClient) UpdateEvent(ctx context.Context, req *models.EventUpdateRequest) (any, error) {
	var out any
	err := l.calendar.Do(ctx, "Failed to update event", http.MethodPut, "/event/update", req, &out)
	return out, err
}

func (l *LiveClient) DeleteEvent(ctx context.Context, calendarID, eventID string) (any, error) {
	q := url.Values{}
	q.Set("calendar_id", calendarID)
	q.Set("event_id", eventID)
	var out any
	err := l.calendar.Do(ctx, "Failed to delete event", http.MethodDelete, "/event/delete?"+q.Encode(), nil, &out)
	return out, err
}

// --- Agents ---

func (l *LiveClient) AllAgents(ctx context.Context) ([]any, error) {
	var out any
	if err := l.api.Do(ctx, "Failed to get all agents from live API", http.MethodGet, "/agents/all", nil, &out); err != nil {
		return nil, err
	}
	return models.NormalizeAgents(out), nil
}

func (l *LiveClient) AgentInfo(ctx context.Context, agentID string) (any, error) {
	var out any
	err := l.api.Do(ctx, "Failed to get agent info from live API", http.MethodGet, "/agents/info/"+url.PathEscape(agentID), nil, &out)
	return out, err
}

func (l *LiveClient) UpdateAgent(ctx context.Context, agentID string, req *models.AgentUpdateRequest) (any, error) {
	var out any
	err := l.api.Do(ctx, "Failed to update agent on live API", http.MethodPost, "/agents/update/"+url.PathEscape(agentID), req, &out)
	return out, err
}

func (l *LiveClient) SetAgentPhone(ctx context.Context, agentID, phone string) (any, error) {
	var out any
	body := models.AgentPhoneRequest{PhoneNumber: phone}
	err := l.api.Do(ctx, "Failed to add phone number on live API", http.MethodPost, "/agents/add_phonenumber/"+url.PathEscape(agentID), body, &out)
	return out, err
}

func (l *LiveClient) DeleteAgentPhone(ctx context.Context, agentID string) (any, error) {
	var out any
	err := l.api.Do(ctx, "Failed to delete phone number on live API", http.MethodDelete, "/agents/delete_phone/"+url.PathEscape(agentID), nil, &out)
	return out, err
}

func (l *LiveClient) AgentByPhone(ctx context.Context, phone string) (any, error) {
	var out any
	err := l.api.Do(ctx, "Failed to get agent by phone from live API", http.MethodGet, "/agents/by_phone/"+url.PathEscape(phone), nil, &out)
	return out, err
}

func (l *LiveClient) ActiveCalls(ctx context.Context) (*models.ActiveCalls, error) {
	var out models.ActiveCalls
	if err := l.api.Do(ctx, "Failed to get active calls from live API", http.MethodGet, "/agents/active-calls", nil, &out); err != nil {
		return nil, err
	}
	if out.ActiveCalls == nil {
		out.ActiveCalls = []any{}
	}
	return &out, nil
}

func (l *LiveClient) DeleteAgent(ctx context.Context, agentID string) (any, error) {
	var out any
	err := l.api.Do(ctx, "Failed to delete agent on live API", http.MethodDelete, "/agents/delete/"+url.PathEscape(agentID), nil, &out)
	return out, err
}

func (l *LiveClient) AgentsByOrganization(ctx context.Context, orgID string) (any, error) {
	var out any
	err := l.api.Do(ctx, "Failed to get organization agents from live API", http.MethodGet, "/agents/by-org/"+url.PathEscape(orgID), nil, &out)
	return out, err
}

// RegisterAgent writes a complete agent record under agentID, creating it if needed.
func (l *LiveClient) RegisterAgent(ctx context.Context, agentID string, reg *models.AgentRegistration) (any, error) {
	var out any
	err := l.api.Do(ctx, "Failed to register agent on live API", http.MethodPost, "/agents/update/"+url.PathEscape(agentID), reg, &out)
	return out, err
}

func (l *LiveClient) AddTransferPhoneNumber(ctx context.Context, agentID, phone string) (any, error) {
	var out any
	body := models.AgentTransferPhoneRequest{TransferPhoneNumber: phone}
	err := l.api.Do(ctx, "Failed to add transfer phone number on live API", http.MethodPost, "/agents/add_transfer_phonenumber/"+url.PathEscape(agentID), body, &out)
	return out, err
}

func (l *LiveClient) Trunks(ctx context.Context) (any, error) {
	var out any
	err := l.api.Do(ctx, "Failed to get trunks from live API", http.MethodGet, "/agents/trunks", nil, &out)
	return out, err
}

// --- Phone numbers ---

type phoneNumberList struct {
	PhoneNumbers []any `json:"phone_numbers"`
}

// PhoneNumbersByStatus lists numbers with status "available" or "assigned".
func (l *LiveClient) PhoneNumbersByStatus(ctx context.Context, status string) ([]any, error) {
	var out phoneNumberList
	if err := l.api.Do(ctx, "Failed to fetch phone numbers", http.MethodGet, "/phone-numbers/status/"+url.PathEscape(status), nil, &out); err != nil {
		return nil, err
	}
	if out.PhoneNumbers == nil {
		return []any{}, nil
	}
	return out.PhoneNumbers, nil
}

func (l *LiveClient) PhoneNumbersByOrganization(ctx context.Context, orgID string) ([]any, error) {
	var out phoneNumberList
	if err := l.api.Do(ctx, "Failed to fetch organization phone numbers", http.MethodGet, "/phone-numbers/organization/"+url.PathEscape(orgID), nil, &out); err != nil {
		return nil, err
	}
	if out.PhoneNumbers == nil {
		return []any{}, nil
	}
	return out.PhoneNumbers, nil
}
