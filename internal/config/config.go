package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the server and the CLI read from the environment.
type Config struct {
	Env  string
	Port string

	MongoURI      string
	MongoDatabase string

	// API keys accepted by the auth middleware, in plain text or bcrypt form.
	APIKeys        []string
	APIKeyHashes   []string
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int

	PropelAuthURL    string
	PropelAuthAPIKey string

	DifyConsoleOrigin string
	DifyBaseURL       string
	DifyWorkspaceID   string
	DifyAdminEmail    string
	DifyAdminPassword string

	LiveAPIURL     string
	LiveAPIKey     string
	CalendarAPIURL string

	StripeSecretKey string
	TextbeltAPIKey  string

	DefaultOrgName   string
	LogRetentionDays int
	BackupAppsFile   string
}

// Load reads .env (if any) and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	cfg := &Config{
		Env:           env("APP_ENV", "production"),
		Port:          env("API_PORT", "8080"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: env("MONGO_DATABASE", "admin_panel"),

		APIKeys:        nonEmpty(os.Getenv("API_KEY"), os.Getenv("LIVE_API_KEY"), os.Getenv("PUBLIC_API_KEY")),
		APIKeyHashes:   splitList(os.Getenv("API_KEY_HASHES")),
		CORSOrigins:    splitList(env("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		RateLimitRPS:   envFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 40),

		PropelAuthURL:    strings.TrimRight(os.Getenv("PROPELAUTH_URL"), "/"),
		PropelAuthAPIKey: os.Getenv("PROPELAUTH_API_KEY"),

		DifyConsoleOrigin: strings.TrimRight(os.Getenv("DIFY_CONSOLE_ORIGIN"), "/"),
		DifyBaseURL:       strings.TrimRight(os.Getenv("DIFY_BASE_URL"), "/"),
		DifyWorkspaceID:   os.Getenv("DIFY_WORKSPACE_ID"),
		DifyAdminEmail:    os.Getenv("DIFY_ADMIN_EMAIL"),
		DifyAdminPassword: os.Getenv("DIFY_ADMIN_PASSWORD"),

		LiveAPIURL:     strings.TrimRight(os.Getenv("LIVE_API_URL"), "/"),
		LiveAPIKey:     os.Getenv("LIVE_API_KEY"),
		CalendarAPIURL: strings.TrimRight(os.Getenv("CALENDAR_API_URL"), "/"),

		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		TextbeltAPIKey:  os.Getenv("TEXTBELT_API_KEY"),

		DefaultOrgName:   env("DEFAULT_ORG_NAME", "Xpectrum_AI"),
		LogRetentionDays: envInt("LOG_RETENTION_DAYS", 30),
		BackupAppsFile:   os.Getenv("BACKUP_APPS_FILE"),
	}
	return cfg
}

// IsDevelopment reports whether auth checks should be skipped.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// DifyConfigured reports whether console credentials are present.
func (c *Config) DifyConfigured() bool {
	return c.DifyConsoleOrigin != "" && c.DifyAdminEmail != "" && c.DifyAdminPassword != ""
}

// BackupApp is one Dify app whose conversations are archived nightly.
type BackupApp struct {
	AppID          string `yaml:"app_id"`
	OrganizationID string `yaml:"organization_id"`
	Name           string `yaml:"name"`
}

type backupFile struct {
	Apps []BackupApp `yaml:"apps"`
}

// LoadBackupApps reads the YAML list of apps for the nightly backup.
// A missing path yields an empty list.
func LoadBackupApps(path string) ([]BackupApp, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backup apps file: %w", err)
	}

	var f backupFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse backup apps file: %w", err)
	}

	apps := make([]BackupApp, 0, len(f.Apps))
	for _, a := range f.Apps {
		if strings.TrimSpace(a.AppID) == "" {
			continue
		}
		apps = append(apps, a)
	}
	return apps, nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
