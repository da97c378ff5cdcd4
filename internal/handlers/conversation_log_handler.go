package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/admin-panel-api/internal/models"
)

func logsError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

func logsFailure(c *gin.Context, msg string, err error) {
	log.Printf("%s: %v", msg, err)
	if unavailable(err) {
		logsError(c, http.StatusServiceUnavailable, err.Error())
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": msg, "details": err.Error()})
}

// ConversationLogs serves ?action=summary and ?action=export.
func (h *Handler) ConversationLogs(c *gin.Context) {
	if h.Logs == nil {
		logsError(c, http.StatusServiceUnavailable, errDatabaseNotConfigured.Error())
		return
	}
	orgID := c.Query("organization_id")

	switch c.Query("action") {
	case "summary":
		summary, err := h.Logs.Summary(c.Request.Context(), orgID)
		if err != nil {
			logsFailure(c, "Failed to process request", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":        true,
			"total_logs":     summary.TotalLogs,
			"total_messages": summary.TotalMessages,
			"organizations":  summary.Organizations,
		})
	case "export":
		start, okStart := parseDate(c.Query("start_date"))
		end, okEnd := parseDate(c.Query("end_date"))
		if !okStart || !okEnd {
			logsError(c, http.StatusBadRequest, "start_date and end_date are required for export")
			return
		}
		logs, err := h.Logs.Export(c.Request.Context(), start, end)
		if err != nil {
			logsFailure(c, "Failed to process request", err)
			return
		}
		convs := make([]models.ConversationLog, 0, len(logs))
		for _, l := range logs {
			if orgID == "" || l.OrganizationID == orgID {
				convs = append(convs, l)
			}
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "count": len(convs), "conversations": convs})
	default:
		logsError(c, http.StatusBadRequest, "Invalid action. Use action=summary or action=export")
	}
}

// SaveConversationLogs archives an app's conversations.
func (h *Handler) SaveConversationLogs(c *gin.Context) {
	if h.Archiver == nil {
		logsError(c, http.StatusServiceUnavailable, errDatabaseNotConfigured.Error())
		return
	}
	var req models.SaveLogsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logsError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.AppID == "" {
		logsError(c, http.StatusBadRequest, "Missing required fields: app_id")
		return
	}
	req.OrganizationID = h.organization(c, req.OrganizationID)

	result, err := h.Archiver.SaveLogs(c.Request.Context(), &req)
	if err != nil {
		logsFailure(c, "Failed to save conversation logs", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"message":             "Conversation logs saved successfully",
		"total_conversations": result.TotalConversations,
		"saved_count":         result.SavedCount,
		"failed_count":        result.FailedCount,
	})
}

// CleanConversationLogs drops logs older than ?days_to_keep= (or ?days=) days.
func (h *Handler) CleanConversationLogs(c *gin.Context) {
	if h.Archiver == nil {
		logsError(c, http.StatusServiceUnavailable, errDatabaseNotConfigured.Error())
		return
	}
	days := 30
	if h.Config != nil && h.Config.LogRetentionDays > 0 {
		days = h.Config.LogRetentionDays
	}
	raw := c.Query("days_to_keep")
	if raw == "" {
		raw = c.Query("days")
	}
	if raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			logsError(c, http.StatusBadRequest, "days_to_keep must be a positive number")
			return
		}
		days = n
	}

	deleted, err := h.Archiver.Prune(c.Request.Context(), days, c.Query("organization_id"))
	if err != nil {
		logsFailure(c, "Failed to clean old logs", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       fmt.Sprintf("Deleted logs older than %d days", days),
		"deleted_count": deleted,
	})
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
