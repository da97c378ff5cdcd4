package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harentsoaR/admin-panel-api/internal/config"
	"github.com/harentsoaR/admin-panel-api/internal/services"
	"github.com/harentsoaR/admin-panel-api/internal/utils"
)

var errDatabaseNotConfigured = errors.New("Database not configured")

// Handler holds the upstream clients and stores every route needs.
// Stores are nil when MongoDB is not configured.
type Handler struct {
	Config *config.Config

	Auth     *services.PropelAuthClient
	Live     *services.LiveClient
	Dify     *services.DifyClient
	Ingestor *services.Ingestor
	Monitor  *services.Monitor
	Billing  *services.Billing
	Archiver *services.Archiver

	Logs      services.ConversationLogStore
	Schedules services.ScheduleStore
	Phones    services.PhoneNumberStore

	NotificationSvc *services.NotificationService
}

// NewHandler builds every client from cfg. db may be nil.
func NewHandler(cfg *config.Config, db *mongo.Database, notificationSvc *services.NotificationService) *Handler {
	dify := services.NewDifyClient(services.DifyConfig{
		ConsoleOrigin: cfg.DifyConsoleOrigin,
		ServiceURL:    cfg.DifyBaseURL,
		WorkspaceID:   cfg.DifyWorkspaceID,
		Email:         cfg.DifyAdminEmail,
		Password:      cfg.DifyAdminPassword,
	})

	h := &Handler{
		Config:          cfg,
		Auth:            services.NewPropelAuthClient(cfg.PropelAuthURL, cfg.PropelAuthAPIKey),
		Live:            services.NewLiveClient(cfg.LiveAPIURL, cfg.CalendarAPIURL, cfg.LiveAPIKey),
		Dify:            dify,
		Ingestor:        services.NewIngestor(dify),
		Monitor:         services.NewMonitor(dify),
		Billing:         services.NewBilling(cfg.StripeSecretKey, nil),
		NotificationSvc: notificationSvc,
	}

	if db != nil {
		logs := services.NewMongoConversationLogStore(db)
		h.Logs = logs
		h.Schedules = services.NewMongoScheduleStore(db)
		h.Phones = services.NewMongoPhoneNumberStore(db)
		h.Archiver = services.NewArchiver(dify, logs)
	}
	return h
}

// unavailable reports the errors that mean a backing service is not configured.
func unavailable(err error) bool {
	return errors.Is(err, services.ErrAuthUnavailable) ||
		errors.Is(err, services.ErrDifyNotConfigured) ||
		errors.Is(err, services.ErrNoWorkspace) ||
		errors.Is(err, services.ErrBillingNotConfigured) ||
		errors.Is(err, errDatabaseNotConfigured)
}

// respondError writes the standard error envelope, or 503 for an unconfigured backend.
func respondError(c *gin.Context, err error, context string) {
	if unavailable(err) {
		log.Printf("%s Error: %v", context, err)
		c.JSON(http.StatusServiceUnavailable, utils.ErrorBody(err.Error()))
		return
	}
	utils.HandleAPIError(c, err, context)
}

// proxyError keeps the upstream status and body for live backend failures.
// Validation errors stay 400, anything else is a 500.
func proxyError(c *gin.Context, err error, context string) {
	log.Printf("%s error: %v", context, err)

	var verr *utils.ValidationError
	var uerr *services.UpstreamError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
	case errors.As(err, &uerr):
		c.JSON(uerr.Status, gin.H{"error": uerr.Op, "details": uerr.Details()})
	case unavailable(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "details": err.Error()})
	}
}

// organization resolves the organization a request acts on.
func (h *Handler) organization(c *gin.Context, bodyOrgID string) string {
	defaultOrg := ""
	if h.Config != nil {
		defaultOrg = h.Config.DefaultOrgName
	}
	return utils.ResolveOrganization(c, bodyOrgID, defaultOrg)
}

// bindJSON decodes the body into req, writing a 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorBody("Invalid request body"))
		return false
	}
	return true
}
