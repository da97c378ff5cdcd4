package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/admin-panel-api/internal/models"
	"github.com/harentsoaR/admin-panel-api/internal/utils"
)

// --- CREATE DOCTOR (with welcome SMS) ---
func (h *Handler) CreateDoctor(c *gin.Context) {
	var req models.DoctorCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err, "Create Doctor")
		return
	}

	data, err := h.Live.CreateDoctor(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Create Doctor")
		return
	}

	// --- NOTIFICATION ---
	phone := models.ProfileFromData(req.DoctorData).Phone
	if phone != "" && utils.ValidatePhone(phone) == "" {
		name := strings.TrimSpace(req.FirstName + " " + req.LastName)
		h.NotificationSvc.SendDoctorWelcomeSMS(name, utils.FormatPhoneNumber(phone))
	}

	utils.Success(c, http.StatusCreated, data, "Doctor created successfully")
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id := c.Param("doctorId")
	if err := models.ValidateDoctorID(id); err != nil {
		respondError(c, err, "Get Doctor")
		return
	}

	data, err := h.Live.GetDoctor(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Get Doctor")
		return
	}
	utils.Success(c, http.StatusOK, data, "Doctor retrieved successfully")
}

// UpdateDoctor replaces a doctor's fields after the full update checks.
func (h *Handler) UpdateDoctor(c *gin.Context) {
	id := c.Param("doctorId")
	var req models.DoctorUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := models.ValidateDoctorID(id); err != nil {
		respondError(c, err, "Update Doctor")
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err, "Update Doctor")
		return
	}

	data, err := h.Live.UpdateDoctor(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Update Doctor")
		return
	}
	utils.Success(c, http.StatusOK, data, "Doctor updated successfully")
}

// PatchDoctor only needs one field to be present.
func (h *Handler) PatchDoctor(c *gin.Context) {
	id := c.Param("doctorId")
	var req models.DoctorUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := models.ValidateDoctorID(id); err != nil {
		respondError(c, err, "Patch Doctor")
		return
	}
	if err := req.ValidatePatch(); err != nil {
		respondError(c, err, "Patch Doctor")
		return
	}

	data, err := h.Live.PatchDoctor(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Patch Doctor")
		return
	}
	utils.Success(c, http.StatusOK, data, "Doctor updated successfully")
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	id := c.Param("doctorId")
	if err := models.ValidateDoctorID(id); err != nil {
		respondError(c, err, "Delete Doctor")
		return
	}

	data, err := h.Live.DeleteDoctor(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Delete Doctor")
		return
	}
	utils.Success(c, http.StatusOK, data, "Doctor deleted successfully")
}

func (h *Handler) GetDoctorsByOrganization(c *gin.Context) {
	h.doctorsByOrganization(c, c.Param("orgId"))
}

// ListDoctors lists one organization's doctors, given as ?organization_id=.
func (h *Handler) ListDoctors(c *gin.Context) {
	h.doctorsByOrganization(c, c.Query("organization_id"))
}

func (h *Handler) doctorsByOrganization(c *gin.Context, orgID string) {
	if err := models.RequireID(orgID, "Organization ID is required"); err != nil {
		respondError(c, err, "Get Organization Doctors")
		return
	}

	data, err := h.Live.DoctorsByOrganization(c.Request.Context(), orgID)
	if err != nil {
		respondError(c, err, "Get Organization Doctors")
		return
	}
	utils.Success(c, http.StatusOK, data, "Doctors retrieved successfully")
}

// SearchDoctors always answers with an empty list; the doctor service has no search endpoint.
func (h *Handler) SearchDoctors(c *gin.Context) {
	utils.Success(c, http.StatusOK, []any{}, "Doctor search completed")
}
