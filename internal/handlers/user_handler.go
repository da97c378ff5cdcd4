package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/admin-panel-api/internal/models"
	"github.com/harentsoaR/admin-panel-api/internal/utils"
)

func (h *Handler) GetUserByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		respondError(c, utils.NewValidationError("Missing email parameter"), "getUserByEmail")
		return
	}

	data, err := h.Auth.FetchUserByEmail(c.Request.Context(), email)
	if err != nil {
		respondError(c, err, "getUserByEmail")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func (h *Handler) Signup(c *gin.Context) {
	var req models.UserSignupRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err, "signup")
		return
	}

	data, err := h.Auth.CreateUser(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "signup")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User created successfully", "data": data})
}

func (h *Handler) QueryUsers(c *gin.Context) {
	var req models.UserQueryRequest
	if !bindJSON(c, &req) {
		return
	}

	page, err := h.Auth.QueryUsers(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "fetchUsersByQuery")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"users":          page.Users,
			"totalUsers":     page.TotalUsers,
			"currentPage":    page.CurrentPage,
			"pageSize":       page.PageSize,
			"hasMoreResults": page.HasMoreResults,
		},
	})
}

// UpdateProfile changes the calling user's own names. It needs a user bearer token.
func (h *Handler) UpdateProfile(c *gin.Context) {
	claims, ok := utils.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.ErrorBody("Unauthorized"))
		return
	}

	var req models.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.FirstName == nil && req.LastName == nil && req.Username == nil {
		respondError(c, utils.NewValidationError("At least one field must be provided for update"), "updateProfile")
		return
	}

	if err := h.Auth.UpdateUser(c.Request.Context(), claims.UserID, &req); err != nil {
		respondError(c, err, "updateProfile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated successfully"})
}

func (h *Handler) ResendEmailConfirmation(c *gin.Context) {
	var req struct {
		UserID string `json:"userId"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.UserID == "" {
		respondError(c, utils.NewValidationError("Missing userId"), "resendEmailConfirmation")
		return
	}

	if err := h.Auth.ResendEmailConfirmation(c.Request.Context(), req.UserID); err != nil {
		respondError(c, err, "resendEmailConfirmation")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Confirmation email sent"})
}

// ResendInvitation re-invites an email into an organization.
func (h *Handler) ResendInvitation(c *gin.Context) {
	var req struct {
		Email          string `json:"email"`
		OrgID          string `json:"orgId"`
		Role           string `json:"role"`
		InvitationType string `json:"invitationType"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.Email == "" {
		respondError(c, utils.NewValidationError("Email is required"), "resendInvitation")
		return
	}
	orgID := h.organization(c, req.OrgID)
	role := req.Role
	if role == "" {
		role = "Member"
	}

	if err := h.Auth.InviteUserToOrg(c.Request.Context(), orgID, req.Email, role); err != nil {
		respondError(c, err, "resendInvitation")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "Invitation resent successfully",
		"email":          req.Email,
		"invitationType": req.InvitationType,
	})
}
