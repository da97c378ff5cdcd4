package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/admin-panel-api/internal/models"
	"github.com/harentsoaR/admin-panel-api/internal/utils"
)

func (h *Handler) CreateOrg(c *gin.Context) {
	var req models.CreateOrgRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.OrgName == "" {
		respondError(c, utils.NewValidationError("Missing orgName"), "createOrg")
		return
	}

	data, err := h.Auth.CreateOrg(c.Request.Context(), req.OrgName)
	if err != nil {
		respondError(c, err, "createOrg")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Organization created successfully", "data": data})
}

func (h *Handler) AddUserToOrg(c *gin.Context) {
	var req models.OrgMemberRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.OrgID == "" || req.UserID == "" || req.Role == "" {
		respondError(c, utils.NewValidationError("Missing required fields: orgId, userId, role"), "addUserToOrg")
		return
	}

	if err := h.Auth.AddUserToOrg(c.Request.Context(), req.OrgID, req.UserID, req.Role); err != nil {
		respondError(c, err, "addUserToOrg")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User added to organization successfully"})
}

func (h *Handler) InviteUserToOrg(c *gin.Context) {
	var req models.OrgMemberRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.OrgID == "" || req.Email == "" || req.Role == "" {
		respondError(c, utils.NewValidationError("Missing required fields: orgId, email, role"), "inviteUserToOrg")
		return
	}

	if err := h.Auth.InviteUserToOrg(c.Request.Context(), req.OrgID, req.Email, req.Role); err != nil {
		respondError(c, err, "inviteUserToOrg")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User " + req.Email + " invited to organization"})
}

func (h *Handler) FetchUsersInOrg(c *gin.Context) {
	var req models.OrgMemberRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.OrgID == "" {
		respondError(c, utils.NewValidationError("Missing orgId"), "fetchUsersInOrg")
		return
	}

	page, err := h.Auth.FetchUsersInOrg(c.Request.Context(), req.OrgID)
	if err != nil {
		respondError(c, err, "fetchUsersInOrg")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": page.Users, "total": len(page.Users)})
}

func (h *Handler) FetchPendingInvites(c *gin.Context) {
	var req models.OrgMemberRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.OrgID == "" {
		respondError(c, utils.NewValidationError("Missing orgId"), "fetchPendingInvites")
		return
	}

	page, err := h.Auth.FetchPendingInvites(c.Request.Context(), req.OrgID)
	if err != nil {
		respondError(c, err, "fetchPendingInvites")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": page.Invites, "total": len(page.Invites)})
}

func (h *Handler) RemoveUserFromOrg(c *gin.Context) {
	var req models.OrgMemberRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.OrgID == "" || req.UserID == "" {
		respondError(c, utils.NewValidationError("Missing required fields: orgId, userId"), "removeUserFromOrg")
		return
	}

	if err := h.Auth.RemoveUserFromOrg(c.Request.Context(), req.OrgID, req.UserID); err != nil {
		respondError(c, err, "removeUserFromOrg")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User removed from organization successfully"})
}

func (h *Handler) ChangeUserRole(c *gin.Context) {
	var req models.OrgMemberRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.OrgID == "" || req.UserID == "" || req.Role == "" {
		respondError(c, utils.NewValidationError("Missing required fields: orgId, userId, role"), "changeUserRoleInOrg")
		return
	}

	if err := h.Auth.ChangeUserRole(c.Request.Context(), req.OrgID, req.UserID, req.Role); err != nil {
		respondError(c, err, "changeUserRoleInOrg")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User role changed successfully"})
}

func (h *Handler) UpdateOrg(c *gin.Context) {
	var req models.UpdateOrgRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err, "updateOrg")
		return
	}

	if err := h.Auth.UpdateOrg(c.Request.Context(), req.OrgID, req.Updates); err != nil {
		respondError(c, err, "updateOrg")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Organization updated successfully"})
}

func (h *Handler) FetchOrgDetails(c *gin.Context) {
	var req models.OrgMemberRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.OrgID == "" {
		respondError(c, utils.NewValidationError("Missing orgId"), "fetchOrgDetails")
		return
	}

	data, err := h.Auth.FetchOrg(c.Request.Context(), req.OrgID)
	if err != nil {
		respondError(c, err, "fetchOrgDetails")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func (h *Handler) FetchOrgsByQuery(c *gin.Context) {
	var req models.OrgQueryRequest
	if !bindJSON(c, &req) {
		return
	}

	page, err := h.Auth.QueryOrgs(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "fetchOrgByQuery")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": page})
}
