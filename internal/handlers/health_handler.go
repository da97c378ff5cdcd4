package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health reports liveness and which backends are configured. It is served without auth.
func (h *Handler) Health(c *gin.Context) {
	env := "production"
	configured := gin.H{}
	if cfg := h.Config; cfg != nil {
		env = cfg.Env
		configured = gin.H{
			"propelauth": h.Auth != nil,
			"dify":       cfg.DifyConfigured(),
			"live":       cfg.LiveAPIURL != "",
			"stripe":     h.Billing != nil,
			"database":   h.Logs != nil,
			"textbelt":   cfg.TextbeltAPIKey != "",
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
		"service":       "admin-panel-api",
		"environment":   env,
		"configuration": configured,
	})
}
