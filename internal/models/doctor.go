package models

import (
	"fmt"
	"strings"

	"github.com/harentsoaR/admin-panel-api/internal/utils"
)

type DoctorCreateRequest struct {
	DoctorID       string         `json:"doctor_id"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	OrganizationID string         `json:"organization_id"`
	DoctorData     map[string]any `json:"doctor_data,omitempty"`
}

// DoctorUpdateRequest is used for both PUT and PATCH. Nil fields are left untouched upstream.
type DoctorUpdateRequest struct {
	FirstName      *string        `json:"first_name,omitempty"`
	LastName       *string        `json:"last_name,omitempty"`
	OrganizationID *string        `json:"organization_id,omitempty"`
	DoctorData     map[string]any `json:"doctor_data,omitempty"`
}

// Doctor mirrors the live backend's doctor record.
type Doctor struct {
	DoctorID       string         `json:"doctor_id"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	OrganizationID string         `json:"organization_id"`
	CalendarID     string         `json:"calendar_id,omitempty"`
	DoctorData     map[string]any `json:"doctor_data,omitempty"`
	CreatedAt      string         `json:"created_at,omitempty"`
	UpdatedAt      string         `json:"updated_at,omitempty"`
}

// DoctorProfile is the part of doctor_data the API checks before forwarding.
type DoctorProfile struct {
	Phone            string
	Age              string
	RegistrationYear string
	Qualifications   []utils.Qualification
}

// Validate applies the create rules in order and returns the first failure.
func (r *DoctorCreateRequest) Validate() error {
	if r.DoctorID == "" || r.FirstName == "" || r.LastName == "" || r.OrganizationID == "" {
		return utils.NewValidationError("Missing required fields: doctor_id, first_name, last_name, organization_id")
	}
	if len([]rune(r.DoctorID)) < 3 {
		return utils.NewValidationError("Doctor ID must be at least 3 characters long")
	}
	if err := validateName("First", r.FirstName); err != nil {
		return err
	}
	if err := validateName("Last", r.LastName); err != nil {
		return err
	}
	if strings.TrimSpace(r.OrganizationID) == "" {
		return utils.NewValidationError("Organization ID is required")
	}
	return ProfileFromData(r.DoctorData).Validate()
}

// Empty reports whether no field was supplied.
func (r *DoctorUpdateRequest) Empty() bool {
	return r.FirstName == nil && r.LastName == nil && r.OrganizationID == nil && r.DoctorData == nil
}

// Validate checks a full update. Patch requests only need ValidatePatch.
func (r *DoctorUpdateRequest) Validate() error {
	if err := r.ValidatePatch(); err != nil {
		return err
	}
	if r.FirstName != nil {
		if err := validateName("First", *r.FirstName); err != nil {
			return err
		}
	}
	if r.LastName != nil {
		if err := validateName("Last", *r.LastName); err != nil {
			return err
		}
	}
	if r.OrganizationID != nil && strings.TrimSpace(*r.OrganizationID) == "" {
		return utils.NewValidationError("Organization ID cannot be empty")
	}
	return ProfileFromData(r.DoctorData).Validate()
}

// ValidatePatch only requires that something is being changed.
func (r *DoctorUpdateRequest) ValidatePatch() error {
	if r.Empty() {
		return utils.NewValidationError("At least one field must be provided for update")
	}
	return nil
}

// ValidateDoctorID rejects blank path ids.
func ValidateDoctorID(id string) error {
	if strings.TrimSpace(id) == "" {
		return utils.NewValidationError("Doctor ID is required")
	}
	return nil
}

func validateName(which, name string) error {
	if len([]rune(strings.TrimSpace(name))) < 2 {
		return utils.NewValidationError(which + " name must be at least 2 characters long")
	}
	return nil
}

// ProfileFromData pulls the checked fields out of free-form doctor_data.
// Numbers are accepted wherever strings are.
func ProfileFromData(data map[string]any) DoctorProfile {
	p := DoctorProfile{
		Phone:            stringValue(data["phone"]),
		Age:              stringValue(data["age"]),
		RegistrationYear: stringValue(data["registration_year"]),
	}
	if list, ok := data["qualifications"].([]any); ok {
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			p.Qualifications = append(p.Qualifications, utils.Qualification{
				Degree:      stringValue(m["degree"]),
				Institution: stringValue(m["institution"]),
				Year:        stringValue(m["year"]),
			})
		}
	}
	return p
}

// Validate runs the phone, qualification and registration checks.
func (p DoctorProfile) Validate() error {
	if msg := utils.ValidatePhone(p.Phone); msg != "" {
		return utils.NewValidationError(msg)
	}
	for _, q := range p.Qualifications {
		if msg := utils.ValidateQualificationYear(q.Year, p.Age); msg != "" {
			return utils.NewValidationError(msg)
		}
	}
	if msg := utils.ValidateQualificationYearConsistency(p.Qualifications); msg != "" {
		return utils.NewValidationError(msg)
	}
	if msg := utils.ValidateRegistrationYear(p.RegistrationYear, utils.EarliestQualificationYear(p.Qualifications)); msg != "" {
		return utils.NewValidationError(msg)
	}
	return nil
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.0f", t)
	default:
		return fmt.Sprint(t)
	}
}
