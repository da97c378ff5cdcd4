package models

import (
	"strings"

	"github.com/harentsoaR/admin-panel-api/internal/utils"
)

type CalendarCreateRequest struct {
	DoctorID string `json:"doctor_id"`
	UserName string `json:"user_name"`
	Timezone string `json:"timezone"`
}

func (r *CalendarCreateRequest) Validate() error {
	if r.DoctorID == "" || r.UserName == "" || r.Timezone == "" {
		return utils.NewValidationError("Missing required fields: doctor_id, user_name, timezone")
	}
	return nil
}

type CalendarShareRequest struct {
	CalendarID string `json:"calendar_id"`
	ShareEmail string `json:"share_email"`
	Role       string `json:"role"`
}

func (r *CalendarShareRequest) Validate() error {
	if r.CalendarID == "" || r.ShareEmail == "" || r.Role == "" {
		return utils.NewValidationError("Missing required fields: calendar_id, share_email, role")
	}
	return nil
}

type EventCreateRequest struct {
	CalendarID    string `json:"calendar_id"`
	Summary       string `json:"summary"`
	Start         string `json:"start"`
	End           string `json:"end"`
	AttendeeEmail string `json:"attendee_email,omitempty"`
}

func (r *EventCreateRequest) Validate() error {
	if r.CalendarID == "" || r.Summary == "" || r.Start == "" || r.End == "" {
		return utils.NewValidationError("Missing required fields: calendar_id, summary, start, end")
	}
	return nil
}

type EventUpdateRequest struct {
	CalendarID string `json:"calendar_id"`
	EventID    string `json:"event_id"`
	Summary    string `json:"summary"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

func (r *EventUpdateRequest) Validate() error {
	if r.CalendarID == "" || r.EventID == "" || r.Summary == "" || r.Start == "" || r.End == "" {
		return utils.NewValidationError("Missing required fields: calendar_id, event_id, summary, start, end")
	}
	return nil
}

// RequireID returns a validation error carrying msg when id is blank.
func RequireID(id, msg string) error {
	if strings.TrimSpace(id) == "" {
		return utils.NewValidationError(msg)
	}
	return nil
}
