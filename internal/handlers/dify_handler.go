package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/admin-panel-api/internal/models"
	"github.com/harentsoaR/admin-panel-api/internal/services"
	"github.com/harentsoaR/admin-panel-api/internal/utils"
)

// Monitoring returns the usage report for the app owning apiKey.
func (h *Handler) Monitoring(c *gin.Context) {
	var req models.MonitoringRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.APIKey) == "" {
		c.JSON(http.StatusBadRequest, utils.ErrorBody("API key is required"))
		return
	}

	report, err := h.Monitor.Report(c.Request.Context(), strings.TrimSpace(req.APIKey), req.Period)
	if err != nil {
		respondError(c, err, "Monitoring")
		return
	}
	c.JSON(http.StatusOK, report)
}

// appByKey logs in and resolves the app owning apiKey, writing the error response on failure.
func (h *Handler) appByKey(c *gin.Context, apiKey, context string) (*services.DifySession, *services.DifyApp, bool) {
	s, ok := h.session(c, context)
	if !ok {
		return nil, nil, false
	}
	app, err := s.FindAppByAPIKey(c.Request.Context(), strings.TrimSpace(apiKey))
	if errors.Is(err, services.ErrAppNotFound) {
		c.JSON(http.StatusNotFound, utils.ErrorBody("No app found with the provided API key"))
		return nil, nil, false
	}
	if err != nil {
		respondError(c, err, context)
		return nil, nil, false
	}
	return s, app, true
}

// ConversationsByAPIKey lists the first page of conversations of the app owning apiKey.
func (h *Handler) ConversationsByAPIKey(c *gin.Context) {
	var req struct {
		APIKey string `json:"apiKey"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.APIKey == "" {
		c.JSON(http.StatusBadRequest, utils.ErrorBody("API key is required"))
		return
	}
	s, app, ok := h.appByKey(c, req.APIKey, "Fetch Conversations")
	if !ok {
		return
	}

	convs, err := s.ChatConversations(c.Request.Context(), app.ID, services.ConversationQuery{Page: 1, Limit: 100})
	if err != nil {
		respondError(c, err, "Fetch Conversations")
		return
	}
	if convs == nil {
		convs = []models.Conversation{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "appId": app.ID, "conversations": convs, "total": len(convs)})
}

// ListConversations returns the messages of ?conversationId= for the app owning ?apiKey=.
func (h *Handler) ListConversations(c *gin.Context) {
	apiKey, convID := c.Query("apiKey"), c.Query("conversationId")
	if apiKey == "" || convID == "" {
		c.JSON(http.StatusBadRequest, utils.ErrorBody("API key and conversation ID are required"))
		return
	}
	s, app, ok := h.appByKey(c, apiKey, "Fetch Messages")
	if !ok {
		return
	}

	msgs, err := s.ChatMessages(c.Request.Context(), app.ID, convID)
	if err != nil {
		respondError(c, err, "Fetch Messages")
		return
	}
	if msgs == nil {
		msgs = []models.ConversationMessage{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "messages": msgs, "total": len(msgs)})
}

func (h *Handler) GetAppByKey(c *gin.Context) {
	var req struct {
		APIKey string `json:"apiKey"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.APIKey) == "" {
		c.JSON(http.StatusBadRequest, utils.ErrorBody("API key is required"))
		return
	}
	_, app, ok := h.appByKey(c, req.APIKey, "Get App By Key")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "appId": app.ID, "appName": app.Name, "appMode": app.Mode})
}
