package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/admin-panel-api/internal/models"
	"github.com/harentsoaR/admin-panel-api/internal/utils"
)

func (h *Handler) GetAllAgents(c *gin.Context) {
	agents, err := h.Live.AllAgents(c.Request.Context())
	if err != nil {
		proxyError(c, err, "getAllAgents")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(agents), "agents": agents})
}

func (h *Handler) GetAgentInfo(c *gin.Context) {
	agent, err := h.Live.AgentInfo(c.Request.Context(), c.Param("agentId"))
	if err != nil {
		proxyError(c, err, "getAgentInfo")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "agent": agent})
}

func (h *Handler) UpdateAgent(c *gin.Context) {
	agentID := c.Param("agentId")
	var req models.AgentUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		proxyError(c, err, "updateAgent")
		return
	}

	data, err := h.Live.UpdateAgent(c.Request.Context(), agentID, &req)
	if err != nil {
		proxyError(c, err, "updateAgent")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Agent " + agentID + " updated successfully", "data": data})
}

func (h *Handler) SetAgentPhone(c *gin.Context) {
	agentID := c.Param("agentId")
	var req models.AgentPhoneRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.PhoneNumber == "" {
		proxyError(c, utils.NewValidationError("Phone number is required"), "setAgentPhone")
		return
	}

	data, err := h.Live.SetAgentPhone(c.Request.Context(), agentID, req.PhoneNumber)
	if err != nil {
		proxyError(c, err, "setAgentPhone")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Phone number updated for agent " + agentID, "data": data})
}

func (h *Handler) DeleteAgentPhone(c *gin.Context) {
	agentID := c.Param("agentId")
	data, err := h.Live.DeleteAgentPhone(c.Request.Context(), agentID)
	if err != nil {
		proxyError(c, err, "deleteAgentPhone")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Phone number deleted for agent " + agentID, "data": data})
}

func (h *Handler) GetAgentByPhone(c *gin.Context) {
	agent, err := h.Live.AgentByPhone(c.Request.Context(), c.Param("phoneNumber"))
	if err != nil {
		proxyError(c, err, "getAgentByPhone")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "agent": agent})
}

func (h *Handler) GetActiveCalls(c *gin.Context) {
	calls, err := h.Live.ActiveCalls(c.Request.Context())
	if err != nil {
		proxyError(c, err, "getActiveCalls")
		return
	}
	ts := calls.Timestamp
	if ts == "" {
		ts = time.Now().UTC().Format(time.RFC3339Nano)
	}
	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"active_calls":       calls.ActiveCalls,
		"total_active_calls": calls.TotalActiveCalls,
		"timestamp":          ts,
	})
}

func (h *Handler) DeleteAgent(c *gin.Context) {
	agentID := c.Param("agentId")
	data, err := h.Live.DeleteAgent(c.Request.Context(), agentID)
	if err != nil {
		proxyError(c, err, "deleteAgent")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Agent " + agentID + " deleted successfully", "data": data})
}

func (h *Handler) GetAgentsByOrganization(c *gin.Context) {
	orgID := c.Param("organizationId")
	data, err := h.Live.AgentsByOrganization(c.Request.Context(), orgID)
	if err != nil {
		proxyError(c, err, "getAgentsByOrganization")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "message": "Found agents for organization " + orgID})
}

// DeleteAgentByOrganization deletes the agent named in the body on behalf of an organization.
func (h *Handler) DeleteAgentByOrganization(c *gin.Context) {
	orgID := c.Param("organizationId")
	var req models.AgentDeleteByOrgRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.AgentName) == "" {
		proxyError(c, utils.NewValidationError("Agent name is required"), "deleteAgentByOrganization")
		return
	}

	data, err := h.Live.DeleteAgent(c.Request.Context(), req.AgentName)
	if err != nil {
		proxyError(c, err, "deleteAgentByOrganization")
		return
	}
	if data == nil {
		data = gin.H{"success": true, "message": "Agent deleted successfully"}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Agent " + req.AgentName + " deleted from organization " + orgID + " successfully",
		"data":    data,
	})
}

func (h *Handler) AddTransferPhoneNumber(c *gin.Context) {
	agentID := c.Param("agentId")
	var req models.AgentTransferPhoneRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.TransferPhoneNumber == "" {
		proxyError(c, utils.NewValidationError("transfer_phonenumber is required"), "addTransferPhoneNumber")
		return
	}

	result, err := h.Live.AddTransferPhoneNumber(c.Request.Context(), agentID, req.TransferPhoneNumber)
	if err != nil {
		proxyError(c, err, "addTransferPhoneNumber")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": unwrapData(result), "message": "Transfer phone number added successfully"})
}

func (h *Handler) GetTrunks(c *gin.Context) {
	trunks, err := h.Live.Trunks(c.Request.Context())
	if err != nil {
		proxyError(c, err, "getTrunks")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "trunks": trunks})
}

// GenerateAgentID returns a fresh "<name>_<uuid>" identifier for a new agent.
func (h *Handler) GenerateAgentID(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if !bindJSON(c, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		proxyError(c, utils.NewValidationError("Agent name is required"), "generateAgentId")
		return
	}

	id := utils.GenerateAgentID(name)
	c.JSON(http.StatusOK, gin.H{"success": true, "agent_id": id, "agent_name": utils.ExtractAgentName(id)})
}
