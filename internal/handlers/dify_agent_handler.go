package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/admin-panel-api/internal/models"
	"github.com/harentsoaR/admin-panel-api/internal/services"
	"github.com/harentsoaR/admin-panel-api/internal/utils"
)

// agentError writes the {success:false} envelope of the Dify agent routes.
func agentError(c *gin.Context, err error, msg string) {
	log.Printf("%s: %v", msg, err)
	var verr *utils.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
	case unavailable(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": msg, "details": err.Error()})
	}
}

// configError keeps the status of a rejected model-config update.
func configError(c *gin.Context, err error, msg string) {
	var uerr *services.UpstreamError
	if errors.As(err, &uerr) {
		log.Printf("%s: %v", msg, err)
		c.JSON(uerr.Status, gin.H{"success": false, "error": uerr.Error(), "details": uerr.Details()})
		return
	}
	agentError(c, err, msg)
}

// GetAllDifyAgents lists the apps of every Dify workspace.
func (h *Handler) GetAllDifyAgents(c *gin.Context) {
	s, err := h.Dify.Login(c.Request.Context())
	if err != nil {
		agentError(c, err, "Failed to fetch agents from Main App")
		return
	}
	agents, workspaces := s.AllApps(c.Request.Context())
	if workspaces == 0 {
		c.JSON(http.StatusOK, gin.H{"success": true, "agents": agents, "message": "No workspaces found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "agents": agents, "count": len(agents)})
}

// CreateDifyAgent provisions a chat app in the configured workspace.
func (h *Handler) CreateDifyAgent(c *gin.Context) {
	var req models.CreateDifyAgentRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		agentError(c, err, "Failed to create Dify agent")
		return
	}
	req.ApplyDefaults()

	agent, err := h.Dify.CreateAgent(c.Request.Context(), &req)
	if err != nil {
		agentError(c, err, "Failed to create Dify agent")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": agent, "message": "Dify agent created successfully"})
}

// DeleteDifyAgent removes the Dify app behind an agent. Without an appId there is nothing to delete.
func (h *Handler) DeleteDifyAgent(c *gin.Context) {
	var req models.DeleteDifyAgentRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		agentError(c, err, "Failed to delete Dify agent")
		return
	}

	deleted := false
	if req.AppID != "" {
		s, err := h.Dify.Login(c.Request.Context())
		if err != nil {
			agentError(c, err, "Failed to delete Dify agent")
			return
		}
		if err := s.DeleteApp(c.Request.Context(), req.AppID); err != nil {
			agentError(c, err, "Failed to delete Dify agent")
			return
		}
		deleted = true
	} else {
		log.Printf("No app ID provided for Dify agent %s, skipping app deletion", req.AgentName)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Dify agent deleted successfully",
		"data": gin.H{
			"agentName":      req.AgentName,
			"organizationId": req.OrganizationID,
			"appId":          req.AppID,
			"appDeleted":     deleted,
		},
	})
}

// AssociateAgent registers an existing Dify app as a voice agent on the live backend.
func (h *Handler) AssociateAgent(c *gin.Context) {
	var req models.AssociateAgentRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		agentError(c, err, "Failed to associate agent")
		return
	}
	ctx := c.Request.Context()

	s, err := h.Dify.Login(ctx)
	if err != nil {
		agentError(c, err, "Failed to associate agent")
		return
	}
	if err := s.SwitchWorkspace(ctx, req.WorkspaceID); err != nil {
		log.Printf("Associate agent: workspace switch failed: %v", err)
	}
	detail, err := s.AppDetail(ctx, req.AppID)
	if err != nil {
		agentError(c, err, "Failed to associate agent")
		return
	}
	apiKey, err := s.FirstAppAPIKey(ctx, req.AppID)
	if err != nil {
		log.Printf("Associate agent: no API key for app %s: %v", req.AppID, err)
	}

	name := req.AppName
	if name == "" {
		name = detail.Name
	}
	if name == "" {
		name = req.AppID
	}
	prefix := models.AgentPrefix(name)

	chatbotAPI, liveURL := detail.ServiceOrigin(), ""
	if h.Config != nil {
		liveURL = h.Config.DifyBaseURL
		if chatbotAPI == "" {
			chatbotAPI = h.Config.DifyBaseURL
		}
	}
	reg := models.NewAgentRegistration(prefix, req.OrganizationID, chatbotAPI, apiKey, req.WorkspaceID, liveURL, time.Now())

	result, err := h.Live.RegisterAgent(ctx, prefix, reg)
	if err != nil {
		agentError(c, err, "Failed to associate agent")
		return
	}

	data := gin.H{}
	if m, ok := unwrapData(result).(map[string]any); ok {
		for k, v := range m {
			data[k] = v
		}
	}
	appName := detail.Name
	if appName == "" {
		appName = "Unnamed Agent"
	}
	data["agent_prefix"] = prefix
	data["name"] = appName
	data["workspace_id"] = req.WorkspaceID
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "message": "Agent associated successfully"})
}

// ModelConfig replaces an app's model, prompt and dataset configuration.
func (h *Handler) ModelConfig(c *gin.Context) {
	var req models.ModelConfigRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	s, err := h.Dify.Login(c.Request.Context())
	if err != nil {
		agentError(c, err, "Dify API call failed")
		return
	}
	data, err := s.UpdateModelConfig(c.Request.Context(), req.AppID, req.Payload())
	if err != nil {
		configError(c, err, "Dify API call failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "message": "Model configuration updated successfully"})
}

// PromptConfig swaps the system prompt of an app, keeping the rest of its model config.
// The app is found by chatbot_api_key when app_id is missing.
func (h *Handler) PromptConfig(c *gin.Context) {
	var req models.PromptConfigRequest
	if !bindJSON(c, &req) {
		return
	}
	if h.Config == nil || h.Config.DifyWorkspaceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Dify console configuration not complete. Missing: DIFY_WORKSPACE_ID"})
		return
	}
	if req.ChatbotAPIKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Dify API key not provided"})
		return
	}
	prompt := models.CleanPrompt(req.Prompt)
	ctx := c.Request.Context()

	s, err := h.Dify.Login(ctx)
	if err != nil {
		agentError(c, err, "Dify API call failed")
		return
	}

	appID := req.AppID
	if appID == "" {
		app, err := s.FindAppByAPIKey(ctx, strings.TrimSpace(req.ChatbotAPIKey))
		if err != nil && !errors.Is(err, services.ErrAppNotFound) {
			agentError(c, err, "Dify API call failed")
			return
		}
		if app == nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "App ID not found. Cannot update prompt without app ID. Please provide app_id in the request or ensure the API key is valid."})
			return
		}
		appID = app.ID
	}

	payload := map[string]any{"pre_prompt": prompt}
	if detail, err := s.AppDetail(ctx, appID); err == nil {
		payload = models.PromptConfigPayload(detail.ModelConfig, prompt)
	} else {
		log.Printf("Prompt config: could not read app %s, sending prompt only: %v", appID, err)
	}

	data, err := s.UpdateModelConfig(ctx, appID, payload)
	if err != nil {
		configError(c, err, "Dify API call failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "message": "Prompt configuration updated successfully"})
}

// AllConversations finds the app owning apiKey in any workspace and lists its
// conversations. When the console cannot list them, the app API is asked
// once per known end user.
func (h *Handler) AllConversations(c *gin.Context) {
	var req struct {
		APIKey string `json:"apiKey"`
	}
	if !bindJSON(c, &req) {
		return
	}
	apiKey := strings.TrimSpace(req.APIKey)
	if apiKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "API key is required"})
		return
	}
	ctx := c.Request.Context()

	s, err := h.Dify.Login(ctx)
	if err != nil {
		agentError(c, err, "Failed to fetch conversations")
		return
	}
	app, workspace, searched, err := s.FindAppInWorkspaces(ctx, apiKey)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No app found with the provided API key", "searchedWorkspaces": searched})
		return
	}
	if err := s.SwitchWorkspace(ctx, workspace); err != nil {
		log.Printf("All conversations: workspace switch failed: %v", err)
	}

	convs, err := s.AppConversations(ctx, app.ID)
	if err == nil {
		out := make([]map[string]any, 0, len(convs))
		for _, conv := range convs {
			out = append(out, models.AnnotateConversation(conv, app.ID, ""))
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "appId": app.ID, "workspace": workspace, "conversations": out, "total": len(out)})
		return
	}
	log.Printf("Console conversations unavailable for app %s, falling back to the app API: %v", app.ID, err)

	seen := map[string]bool{}
	out := []map[string]any{}
	for _, user := range models.ConversationUsers {
		list, err := h.Dify.AppConversationsAs(ctx, apiKey, user)
		if unavailable(err) {
			agentError(c, err, "Failed to fetch conversations")
			return
		}
		if err != nil {
			continue
		}
		for _, conv := range list {
			id, _ := conv["id"].(string)
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, models.AnnotateConversation(conv, app.ID, user))
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"appId":         app.ID,
		"workspace":     workspace,
		"conversations": out,
		"total":         len(out),
		"source":        "app-api-fallback",
	})
}

// unwrapData returns result["data"] when the live backend wrapped its answer.
func unwrapData(result any) any {
	if m, ok := result.(map[string]any); ok {
		if data, ok := m["data"]; ok && data != nil {
			return data
		}
	}
	return result
}
