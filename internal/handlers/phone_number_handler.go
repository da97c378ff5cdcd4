package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harentsoaR/admin-panel-api/internal/models"
	"github.com/harentsoaR/admin-panel-api/internal/services"
	"github.com/harentsoaR/admin-panel-api/internal/utils"
)

func phoneList(c *gin.Context, numbers []any) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    numbers,
		"message": fmt.Sprintf("Retrieved %d phone numbers successfully", len(numbers)),
	})
}

// ListPhoneNumbers merges the available and assigned pools.
func (h *Handler) ListPhoneNumbers(c *gin.Context) {
	available, err := h.Live.PhoneNumbersByStatus(c.Request.Context(), "available")
	if err != nil {
		respondError(c, err, "List Phone Numbers")
		return
	}
	assigned, err := h.Live.PhoneNumbersByStatus(c.Request.Context(), "assigned")
	if err != nil {
		respondError(c, err, "List Phone Numbers")
		return
	}
	phoneList(c, append(available, assigned...))
}

func (h *Handler) ListAvailablePhoneNumbers(c *gin.Context) {
	numbers, err := h.Live.PhoneNumbersByStatus(c.Request.Context(), "available")
	if err != nil {
		respondError(c, err, "List Available Phone Numbers")
		return
	}
	phoneList(c, numbers)
}

func (h *Handler) ListAssignedPhoneNumbers(c *gin.Context) {
	numbers, err := h.Live.PhoneNumbersByStatus(c.Request.Context(), "assigned")
	if err != nil {
		respondError(c, err, "List Assigned Phone Numbers")
		return
	}
	phoneList(c, numbers)
}

// ListOrganizationPhoneNumbers returns the live backend's numbers plus the ones imported locally.
func (h *Handler) ListOrganizationPhoneNumbers(c *gin.Context) {
	orgID := c.Param("organizationId")
	numbers, err := h.Live.PhoneNumbersByOrganization(c.Request.Context(), orgID)
	if err != nil {
		respondError(c, err, "List Organization Phone Numbers")
		return
	}
	if h.Phones != nil {
		imported, err := h.Phones.ByOrganization(c.Request.Context(), orgID)
		if err != nil {
			respondError(c, err, "List Organization Phone Numbers")
			return
		}
		for _, n := range imported {
			numbers = append(numbers, n)
		}
	}
	phoneList(c, numbers)
}

func (h *Handler) AssignPhoneNumber(c *gin.Context) {
	phone := c.Param("phone_number")
	var req models.AssignPhoneRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.AgentID == "" {
		respondError(c, utils.NewValidationError("Agent ID is required"), "Assign Phone Number")
		return
	}

	data, err := h.Live.SetAgentPhone(c.Request.Context(), req.AgentID, phone)
	if err != nil {
		respondError(c, err, "Assign Phone Number")
		return
	}
	if h.Phones != nil {
		if err := h.Phones.Assign(c.Request.Context(), utils.DigitsOnly(phone), req.AgentID); err != nil {
			log.Printf("Failed to record assignment of %s: %v", phone, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Phone number %s assigned to agent %s", phone, req.AgentID),
		"data":    data,
	})
}

func (h *Handler) UnassignPhoneNumber(c *gin.Context) {
	phone := c.Param("phone_number")
	var req models.AssignPhoneRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.AgentID == "" {
		respondError(c, utils.NewValidationError("Agent ID is required"), "Unassign Phone Number")
		return
	}

	data, err := h.Live.DeleteAgentPhone(c.Request.Context(), req.AgentID)
	if err != nil {
		respondError(c, err, "Unassign Phone Number")
		return
	}
	if h.Phones != nil {
		if err := h.Phones.Unassign(c.Request.Context(), utils.DigitsOnly(phone)); err != nil {
			log.Printf("Failed to record unassignment of %s: %v", phone, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Phone number %s unassigned from agent %s", phone, req.AgentID),
		"data":    data,
	})
}

func importError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"status": "error", "message": message})
}

// ImportTwilioNumber records a Twilio number for the caller's organization and,
// when agent_id is given, attaches it to that agent on the live backend.
func (h *Handler) ImportTwilioNumber(c *gin.Context) {
	var req models.ImportTwilioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		importError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PhoneNumber == "" || req.AccountSID == "" || req.AuthToken == "" {
		importError(c, http.StatusBadRequest, "Phone number, Account SID, and Auth Token are required")
		return
	}
	if !utils.IsValidE164(strings.Join(strings.Fields(req.PhoneNumber), "")) {
		importError(c, http.StatusUnprocessableEntity, "Invalid phone number format")
		return
	}
	if h.Phones == nil {
		importError(c, http.StatusServiceUnavailable, errDatabaseNotConfigured.Error())
		return
	}

	number := &models.ImportedPhoneNumber{
		PhoneID:         "phone_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		PhoneNumber:     utils.DigitsOnly(req.PhoneNumber),
		OrganizationID:  h.organization(c, req.OrganizationID),
		AgentID:         req.AgentID,
		AccountSID:      req.AccountSID,
		Environment:     "import",
		Status:          "active",
		ImportTimestamp: time.Now().UTC(),
	}

	if err := h.Phones.Import(c.Request.Context(), number); err != nil {
		var exists *services.PhoneNumberExistsError
		if errors.As(err, &exists) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"status":       "error",
				"message":      fmt.Sprintf("Phone number %s already exists for this organization.", req.PhoneNumber),
				"phone_number": number.PhoneNumber,
			})
			return
		}
		log.Printf("Import phone number error: %v", err)
		importError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	if number.AgentID != "" {
		if _, err := h.Live.SetAgentPhone(c.Request.Context(), number.AgentID, number.PhoneNumber); err != nil {
			log.Printf("Imported %s but could not attach it to agent %s: %v", number.PhoneNumber, number.AgentID, err)
		}
	}

	var agentID any
	if number.AgentID != "" {
		agentID = number.AgentID
	}
	c.JSON(http.StatusOK, gin.H{
		"status":           "success",
		"message":          "Phone number imported successfully",
		"phone_number":     number.PhoneNumber,
		"phone_id":         number.PhoneID,
		"organization_id":  number.OrganizationID,
		"agent_id":         agentID,
		"trunk_id":         nil,
		"environment":      number.Environment,
		"import_timestamp": number.ImportTimestamp.Format(time.RFC3339Nano),
	})
}
