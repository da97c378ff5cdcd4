package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/admin-panel-api/internal/config"
	"github.com/harentsoaR/admin-panel-api/internal/handlers"
	"github.com/harentsoaR/admin-panel-api/internal/middleware"
	"github.com/harentsoaR/admin-panel-api/internal/services"
)

func main() {
	cfg := config.Load()
	log.Printf("APP_ENV: %s", cfg.Env)
	log.Printf("API_PORT: %s", cfg.Port)
	if cfg.PropelAuthURL != "" {
		log.Println("PROPELAUTH_URL is SET.")
	} else {
		log.Println("PROPELAUTH_URL is NOT SET.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Database Connection (optional) ---
	var db *mongo.Database
	if cfg.MongoURI != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
		if err == nil {
			err = client.Ping(connectCtx, nil)
		}
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer client.Disconnect(context.Background())
		db = client.Database(cfg.MongoDatabase)
		log.Println("Successfully connected to MongoDB!")

		indexCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := services.NewMongoPhoneNumberStore(db).EnsureIndexes(indexCtx); err != nil {
			log.Printf("Failed to create phone number indexes: %v", err)
		}
		if err := services.NewMongoConversationLogStore(db).EnsureIndexes(indexCtx); err != nil {
			log.Printf("Failed to create conversation log indexes: %v", err)
		}
		cancel()
	} else {
		log.Println("MONGO_URI is NOT SET. Schedules, imported numbers and conversation logs are disabled.")
	}

	// --- Initialize Services ---
	notificationSvc := services.NewNotificationService(cfg.TextbeltAPIKey)

	// --- Initialize Handlers with DB and Services ---
	h := handlers.NewHandler(cfg, db, notificationSvc)

	// --- Gin Router ---
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// --- Middleware ---
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-API-Key", "X-Organization-Id", "X-Organization-Name"},
		AllowCredentials: true,
	}))
	middleware.InitMetrics()
	r.Use(middleware.Metrics())
	r.GET("/metrics", middleware.MetricsHandler())

	// --- Routes ---
	r.GET("/api/health", h.Health)

	authCfg := middleware.AuthConfig{
		Keys:        cfg.APIKeys,
		KeyHashes:   cfg.APIKeyHashes,
		Development: cfg.IsDevelopment(),
	}
	if h.Auth != nil {
		authCfg.Tokens = h.Auth
	}

	apiRoutes := r.Group("/api")
	apiRoutes.Use(middleware.RateLimit(middleware.NewRateLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst)))
	apiRoutes.Use(middleware.NewAuthenticator(authCfg).Middleware()) // Protect all /api routes
	h.RegisterRoutes(apiRoutes)

	// --- Nightly conversation backup ---
	if h.Archiver != nil {
		apps, err := config.LoadBackupApps(cfg.BackupAppsFile)
		if err != nil {
			log.Printf("Conversation backup disabled: %v", err)
		} else {
			go services.NewBackupScheduler(h.Archiver, apps, cfg.LogRetentionDays).Run(ctx)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
