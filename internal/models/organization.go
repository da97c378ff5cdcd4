package models

import (
	"sort"
	"strings"

	"github.com/harentsoaR/admin-panel-api/internal/utils"
)

// Fields PropelAuth accepts on an organization update.
var allowedOrgUpdateFields = map[string]bool{
	"name":                          true,
	"description":                   true,
	"displayName":                   true,
	"domain":                        true,
	"extraDomains":                  true,
	"enableAutoJoiningByDomain":     true,
	"membersMustHaveMatchingDomain": true,
	"maxUsers":                      true,
	"canSetupSaml":                  true,
	"legacyOrgId":                   true,
}

type CreateOrgRequest struct {
	OrgName string `json:"orgName"`
}

type OrgMemberRequest struct {
	OrgID  string `json:"orgId"`
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

type UpdateOrgRequest struct {
	OrgID   string         `json:"orgId"`
	Updates map[string]any `json:"updates"`
}

type OrgQueryRequest struct {
	PageSize   *int   `json:"pageSize,omitempty"`
	PageNumber *int   `json:"pageNumber,omitempty"`
	OrderBy    string `json:"orderBy,omitempty"`
	Name       string `json:"name,omitempty"`
	Domain     string `json:"domain,omitempty"`
}

// OrgPage is the paginated organization listing.
type OrgPage struct {
	Orgs           []map[string]any `json:"orgs"`
	TotalOrgs      int              `json:"totalOrgs"`
	CurrentPage    int              `json:"currentPage"`
	PageSize       int              `json:"pageSize"`
	HasMoreResults bool             `json:"hasMoreResults"`
}

// Validate checks an organization update: an id, at least one change and only known fields.
func (r *UpdateOrgRequest) Validate() error {
	if strings.TrimSpace(r.OrgID) == "" {
		return utils.NewValidationError("Missing orgId")
	}
	if len(r.Updates) == 0 {
		return utils.NewValidationError("No updates provided")
	}
	var invalid []string
	for k := range r.Updates {
		if !allowedOrgUpdateFields[k] {
			invalid = append(invalid, k)
		}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return utils.NewValidationError("Invalid update fields: " + strings.Join(invalid, ", "))
	}
	return nil
}

// Page returns the requested page number and size with defaults applied.
func (r *OrgQueryRequest) Page() (page, size int) {
	page, size = 0, 10
	if r.PageNumber != nil && *r.PageNumber >= 0 {
		page = *r.PageNumber
	}
	if r.PageSize != nil && *r.PageSize > 0 {
		size = *r.PageSize
	}
	return page, size
}

type UserSignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username,omitempty"`
}

func (r *UserSignupRequest) Validate() error {
	if r.Email == "" || r.Password == "" || r.FirstName == "" || r.LastName == "" {
		return utils.NewValidationError("Missing required fields: email, password, firstName, lastName")
	}
	return nil
}

type UserQueryRequest struct {
	PageSize        *int   `json:"pageSize,omitempty"`
	PageNumber      *int   `json:"pageNumber,omitempty"`
	OrderBy         string `json:"orderBy,omitempty"`
	EmailOrUsername string `json:"emailOrUsername,omitempty"`
	IncludeOrgs     bool   `json:"includeOrgs,omitempty"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Username  *string `json:"username,omitempty"`
}
