package services

import (
	"context"
	"crypto/rsa"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/harentsoaR/admin-panel-api/internal/models"
	"github.com/harentsoaR/admin-panel-api/internal/utils"
)

const backendPrefix = "/api/backend/v1"

// ErrAuthUnavailable is returned when PropelAuth is not configured.
var ErrAuthUnavailable = errors.New("Authentication service not available")

// orgUpdateKeys maps dashboard field names onto PropelAuth's.
var orgUpdateKeys = map[string]string{
	"name":                          "name",
	"description":                   "description",
	"displayName":                   "display_name",
	"domain":                        "domain",
	"extraDomains":                  "extra_domains",
	"enableAutoJoiningByDomain":     "autojoin_by_domain",
	"membersMustHaveMatchingDomain": "restrict_to_domain",
	"maxUsers":                      "max_users",
	"canSetupSaml":                  "can_setup_saml",
	"legacyOrgId":                   "legacy_org_id",
}

// PropelAuthClient wraps the PropelAuth backend API.
type PropelAuthClient struct {
	api *Upstream

	mu          sync.Mutex
	verifierKey *rsa.PublicKey
}

func NewPropelAuthClient(authURL, apiKey string) *PropelAuthClient {
	if authURL == "" || apiKey == "" {
		return nil
	}
	return &PropelAuthClient{api: NewUpstream(authURL, http.Header{"Authorization": {"Bearer " + apiKey}})}
}

// VerifierKey returns the RSA key used to verify access tokens, fetching it once.
func (p *PropelAuthClient) VerifierKey(ctx context.Context) (*rsa.PublicKey, error) {
	if p == nil {
		return nil, ErrAuthUnavailable
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.verifierKey != nil {
		return p.verifierKey, nil
	}

	var meta struct {
		VerifierKeyPEM string `json:"verifier_key_pem"`
	}
	if err := p.api.Do(ctx, "Failed to fetch token verification metadata", http.MethodGet, "/api/v1/token_verification_metadata", nil, &meta); err != nil {
		return nil, err
	}
	key, err := utils.ParseVerifierKey(meta.VerifierKeyPEM)
	if err != nil {
		return nil, err
	}
	p.verifierKey = key
	return key, nil
}

// ValidateAccessToken verifies a user access token.
func (p *PropelAuthClient) ValidateAccessToken(ctx context.Context, token string) (*utils.Claims, error) {
	key, err := p.VerifierKey(ctx)
	if err != nil {
		return nil, err
	}
	return utils.ValidateJWT(token, key)
}

func (p *PropelAuthClient) do(ctx context.Context, op, method, path string, body, out any) error {
	if p == nil {
		return ErrAuthUnavailable
	}
	return p.api.Do(ctx, op, method, backendPrefix+path, body, out)
}

// --- Organizations ---

func (p *PropelAuthClient) CreateOrg(ctx context.Context, name string) (map[string]any, error) {
	var out map[string]any
	err := p.do(ctx, "Failed to create organization", http.MethodPost, "/org/", map[string]any{"name": name}, &out)
	return out, err
}

func (p *PropelAuthClient) AddUserToOrg(ctx context.Context, orgID, userID, role string) error {
	body := map[string]any{"org_id": orgID, "user_id": userID, "role": role}
	return p.do(ctx, "Failed to add user to organization", http.MethodPost, "/org/add_user", body, nil)
}

func (p *PropelAuthClient) InviteUserToOrg(ctx context.Context, orgID, email, role string) error {
	body := map[string]any{"org_id": orgID, "email": email, "role": role}
	return p.do(ctx, "Failed to invite user to organization", http.MethodPost, "/invite_user_to_org", body, nil)
}

type UsersPage struct {
	Users          []map[string]any `json:"users"`
	TotalUsers     int              `json:"total_users"`
	CurrentPage    int              `json:"current_page"`
	PageSize       int              `json:"page_size"`
	HasMoreResults bool             `json:"has_more_results"`
}

func (p *PropelAuthClient) FetchUsersInOrg(ctx context.Context, orgID string) (*UsersPage, error) {
	q := url.Values{"page_size": {"100"}, "include_orgs": {"true"}}
	var out UsersPage
	if err := p.do(ctx, "Failed to fetch users in organization", http.MethodGet, "/user/org/"+url.PathEscape(orgID)+"?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	if out.Users == nil {
		out.Users = []map[string]any{}
	}
	return &out, nil
}

type InvitesPage struct {
	Invites        []map[string]any `json:"invites"`
	TotalInvites   int              `json:"total_invites"`
	HasMoreResults bool             `json:"has_more_results"`
}

func (p *PropelAuthClient) FetchPendingInvites(ctx context.Context, orgID string) (*InvitesPage, error) {
	q := url.Values{"org_id": {orgID}, "page_size": {"100"}}
	var out InvitesPage
	if err := p.do(ctx, "Failed to fetch pending invites", http.MethodGet, "/pending_org_invites?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	if out.Invites == nil {
		out.Invites = []map[string]any{}
	}
	return &out, nil
}

func (p *PropelAuthClient) RemoveUserFromOrg(ctx context.Context, orgID, userID string) error {
	body := map[string]any{"org_id": orgID, "user_id": userID}
	return p.do(ctx, "Failed to remove user from organization", http.MethodPost, "/org/remove_user", body, nil)
}

func (p *PropelAuthClient) ChangeUserRole(ctx context.Context, orgID, userID, role string) error {
	body := map[string]any{"org_id": orgID, "user_id": userID, "role": role}
	return p.do(ctx, "Failed to change user role", http.MethodPost, "/org/change_role", body, nil)
}

// UpdateOrg expects updates already checked by UpdateOrgRequest.Validate.
func (p *PropelAuthClient) UpdateOrg(ctx context.Context, orgID string, updates map[string]any) error {
	body := make(map[string]any, len(updates))
	for k, v := range updates {
		if key, ok := orgUpdateKeys[k]; ok {
			body[key] = v
		}
	}
	return p.do(ctx, "Failed to update organization", http.MethodPut, "/org/"+url.PathEscape(orgID), body, nil)
}

func (p *PropelAuthClient) FetchOrg(ctx context.Context, orgID string) (map[string]any, error) {
	var out map[string]any
	err := p.do(ctx, "Failed to fetch organization", http.MethodGet, "/org/"+url.PathEscape(orgID), nil, &out)
	return out, err
}

func (p *PropelAuthClient) QueryOrgs(ctx context.Context, req *models.OrgQueryRequest) (*models.OrgPage, error) {
	page, size := req.Page()
	q := url.Values{"page_number": {strconv.Itoa(page)}, "page_size": {strconv.Itoa(size)}}
	if req.OrderBy != "" {
		q.Set("order_by", req.OrderBy)
	}
	if req.Name != "" {
		q.Set("name", req.Name)
	}
	if req.Domain != "" {
		q.Set("domain", req.Domain)
	}

	var out struct {
		Orgs           []map[string]any `json:"orgs"`
		TotalOrgs      int              `json:"total_orgs"`
		CurrentPage    *int             `json:"current_page"`
		PageSize       *int             `json:"page_size"`
		HasMoreResults bool             `json:"has_more_results"`
	}
	if err := p.do(ctx, "Failed to query organizations", http.MethodGet, "/org/query?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}

	result := &models.OrgPage{
		Orgs:           out.Orgs,
		TotalOrgs:      out.TotalOrgs,
		CurrentPage:    page,
		PageSize:       size,
		HasMoreResults: out.HasMoreResults,
	}
	if out.CurrentPage != nil {
		result.CurrentPage = *out.CurrentPage
	}
	if out.PageSize != nil {
		result.PageSize = *out.PageSize
	}
	if result.Orgs == nil {
		result.Orgs = []map[string]any{}
	}
	return result, nil
}

// --- Users ---

func (p *PropelAuthClient) FetchUserByEmail(ctx context.Context, email string) (map[string]any, error) {
	q := url.Values{"email": {email}, "include_orgs": {"true"}}
	var out map[string]any
	err := p.do(ctx, "Failed to fetch user by email", http.MethodGet, "/user/email?"+q.Encode(), nil, &out)
	return out, err
}

func (p *PropelAuthClient) CreateUser(ctx context.Context, req *models.UserSignupRequest) (map[string]any, error) {
	body := map[string]any{
		"email":                               req.Email,
		"password":                            req.Password,
		"first_name":                          req.FirstName,
		"last_name":                           req.LastName,
		"email_confirmed":                     false,
		"send_email_to_confirm_email_address": true,
	}
	if req.Username != "" {
		body["username"] = req.Username
	}
	var out map[string]any
	err := p.do(ctx, "Failed to create user", http.MethodPost, "/user/", body, &out)
	return out, err
}

func (p *PropelAuthClient) QueryUsers(ctx context.Context, req *models.UserQueryRequest) (*UsersPage, error) {
	q := url.Values{"page_number": {"0"}, "page_size": {"10"}}
	if req.PageNumber != nil {
		q.Set("page_number", strconv.Itoa(*req.PageNumber))
	}
	if req.PageSize != nil {
		q.Set("page_size", strconv.Itoa(*req.PageSize))
	}
	if req.OrderBy != "" {
		q.Set("order_by", req.OrderBy)
	}
	if req.EmailOrUsername != "" {
		q.Set("email_or_username", req.EmailOrUsername)
	}
	if req.IncludeOrgs {
		q.Set("include_orgs", "true")
	}
	var out UsersPage
	if err := p.do(ctx, "Failed to query users", http.MethodGet, "/user/query?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	if out.Users == nil {
		out.Users = []map[string]any{}
	}
	return &out, nil
}

func (p *PropelAuthClient) UpdateUser(ctx context.Context, userID string, req *models.UpdateProfileRequest) error {
	body := map[string]any{}
	if req.FirstName != nil {
		body["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		body["last_name"] = *req.LastName
	}
	if req.Username != nil {
		body["username"] = *req.Username
	}
	return p.do(ctx, "Failed to update user", http.MethodPut, "/user/"+url.PathEscape(userID), body, nil)
}

func (p *PropelAuthClient) ResendEmailConfirmation(ctx context.Context, userID string) error {
	return p.do(ctx, "Failed to resend email confirmation", http.MethodPost, "/resend_email_confirmation", map[string]any{"user_id": userID}, nil)
}
