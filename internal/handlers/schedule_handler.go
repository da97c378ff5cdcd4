package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/admin-panel-api/internal/models"
	"github.com/harentsoaR/admin-panel-api/internal/services"
	"github.com/harentsoaR/admin-panel-api/internal/utils"
)

func scheduleResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{"success": true, "data": data, "message": message})
}

// --- CREATE SCHEDULED CALL ---
func (h *Handler) CreateSchedule(c *gin.Context) {
	if h.Schedules == nil {
		respondError(c, errDatabaseNotConfigured, "Create Schedule")
		return
	}
	var req models.ScheduleCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	call, err := req.ToScheduledCall(time.Now().UTC())
	if err != nil {
		respondError(c, err, "Create Schedule")
		return
	}

	if err := h.Schedules.Create(c.Request.Context(), call); err != nil {
		respondError(c, err, "Create Schedule")
		return
	}
	scheduleResponse(c, http.StatusCreated, call, "Outbound call scheduled successfully!")
}

func (h *Handler) GetSchedule(c *gin.Context) {
	if h.Schedules == nil {
		respondError(c, errDatabaseNotConfigured, "Get Schedule")
		return
	}
	call, err := h.Schedules.Get(c.Request.Context(), c.Param("schedule_id"))
	if err != nil {
		respondError(c, err, "Get Schedule")
		return
	}
	scheduleResponse(c, http.StatusOK, call, "Scheduled event retrieved successfully")
}

func (h *Handler) UpdateSchedule(c *gin.Context) {
	if h.Schedules == nil {
		respondError(c, errDatabaseNotConfigured, "Update Schedule")
		return
	}
	var req models.ScheduleUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	fields, err := req.Fields()
	if err != nil {
		respondError(c, err, "Update Schedule")
		return
	}
	if len(fields) == 0 {
		respondError(c, utils.NewValidationError("At least one field must be provided for update"), "Update Schedule")
		return
	}

	call, err := h.Schedules.Update(c.Request.Context(), c.Param("schedule_id"), fields)
	if err != nil {
		respondError(c, err, "Update Schedule")
		return
	}
	scheduleResponse(c, http.StatusOK, call, "Scheduled event updated successfully")
}

func (h *Handler) DeleteSchedule(c *gin.Context) {
	if h.Schedules == nil {
		respondError(c, errDatabaseNotConfigured, "Delete Schedule")
		return
	}
	id := c.Param("schedule_id")
	if err := h.Schedules.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Delete Schedule")
		return
	}
	scheduleResponse(c, http.StatusOK, gin.H{"schedule_id": id}, "Scheduled event "+id+" deleted successfully")
}

func (h *Handler) ListAgentSchedules(c *gin.Context) {
	f := scheduleFilter(c)
	f.AgentID = c.Param("agent_id")
	h.listSchedules(c, f)
}

func (h *Handler) ListOrganizationSchedules(c *gin.Context) {
	f := scheduleFilter(c)
	f.OrganizationID = c.Param("organization_id")
	f.AgentID = c.Query("agent_id")
	h.listSchedules(c, f)
}

func (h *Handler) listSchedules(c *gin.Context, f services.ScheduleFilter) {
	if h.Schedules == nil {
		respondError(c, errDatabaseNotConfigured, "List Schedules")
		return
	}
	calls, err := h.Schedules.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err, "List Schedules")
		return
	}
	scheduleResponse(c, http.StatusOK, calls, "Scheduled events retrieved successfully")
}

// scheduleFilter reads ?status=, ?limit= and ?offset=. Bad numbers are ignored.
func scheduleFilter(c *gin.Context) services.ScheduleFilter {
	f := services.ScheduleFilter{Status: c.Query("status")}
	if n, err := strconv.ParseInt(c.Query("limit"), 10, 64); err == nil && n > 0 {
		f.Limit = n
	}
	if n, err := strconv.ParseInt(c.Query("offset"), 10, 64); err == nil && n > 0 {
		f.Offset = n
	}
	return f
}
