package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/admin-panel-api/internal/models"
	"github.com/harentsoaR/admin-panel-api/internal/utils"
)

// --- Calendars ---

func (h *Handler) CreateCalendar(c *gin.Context) {
	var req models.CalendarCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err, "Create Calendar")
		return
	}

	data, err := h.Live.CreateCalendar(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Create Calendar")
		return
	}
	utils.Success(c, http.StatusCreated, data, "Calendar created successfully")
}

func (h *Handler) GetDoctorCalendar(c *gin.Context) {
	doctorID := c.Param("doctor_id")
	if err := models.RequireID(doctorID, "Doctor ID is required"); err != nil {
		respondError(c, err, "Get Doctor Calendar")
		return
	}

	data, err := h.Live.DoctorCalendar(c.Request.Context(), doctorID)
	if err != nil {
		respondError(c, err, "Get Doctor Calendar")
		return
	}
	utils.Success(c, http.StatusOK, data, "Calendar retrieved successfully")
}

func (h *Handler) GetOrganizationCalendars(c *gin.Context) {
	orgID := c.Param("organization_id")
	if err := models.RequireID(orgID, "Organization ID is required"); err != nil {
		respondError(c, err, "Get Organization Calendars")
		return
	}

	data, err := h.Live.OrganizationCalendars(c.Request.Context(), orgID)
	if err != nil {
		respondError(c, err, "Get Organization Calendars")
		return
	}
	utils.Success(c, http.StatusOK, data, "Calendars retrieved successfully")
}

func (h *Handler) ShareCalendar(c *gin.Context) {
	var req models.CalendarShareRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err, "Share Calendar")
		return
	}

	data, err := h.Live.ShareCalendar(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Share Calendar")
		return
	}
	utils.Success(c, http.StatusOK, data, "Calendar shared successfully")
}

// --- Events ---

func (h *Handler) CreateEvent(c *gin.Context) {
	var req models.EventCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err, "Create Event")
		return
	}

	data, err := h.Live.CreateEvent(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Create Event")
		return
	}
	utils.Success(c, http.StatusCreated, data, "Event created successfully")
}

// ListEvents reads ?calendar_id= and ?upcoming_only= (default true).
func (h *Handler) ListEvents(c *gin.Context) {
	calendarID := c.Query("calendar_id")
	if err := models.RequireID(calendarID, "Calendar ID is required"); err != nil {
		respondError(c, err, "List Events")
		return
	}
	upcoming := true
	if v := c.Query("upcoming_only"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			upcoming = b
		}
	}

	data, err := h.Live.ListEvents(c.Request.Context(), calendarID, upcoming)
	if err != nil {
		respondError(c, err, "List Events")
		return
	}
	utils.Success(c, http.StatusOK, data, "Events retrieved successfully")
}

func (h *Handler) UpdateEvent(c *gin.Context) {
	var req models.EventUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err, "Update Event")
		return
	}

	data, err := h.Live.UpdateEvent(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Update Event")
		return
	}
	utils.Success(c, http.StatusOK, data, "Event updated successfully")
}

func (h *Handler) DeleteEvent(c *gin.Context) {
	calendarID, eventID := c.Query("calendar_id"), c.Query("event_id")
	if calendarID == "" || eventID == "" {
		respondError(c, utils.NewValidationError("Missing required fields: calendar_id, event_id"), "Delete Event")
		return
	}

	data, err := h.Live.DeleteEvent(c.Request.Context(), calendarID, eventID)
	if err != nil {
		respondError(c, err, "Delete Event")
		return
	}
	utils.Success(c, http.StatusOK, data, "Event deleted successfully")
}
