package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/admin-panel-api/internal/config"
	"github.com/harentsoaR/admin-panel-api/internal/models"
	"github.com/harentsoaR/admin-panel-api/internal/services"
	"github.com/harentsoaR/admin-panel-api/internal/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "adminctl",
		Short: "Maintenance tasks for the admin panel API",
	}

	rootCmd.AddCommand(hashKeyCmd())
	rootCmd.AddCommand(backupCmd())
	rootCmd.AddCommand(backupNowCmd())
	rootCmd.AddCommand(cleanLogsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func hashKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key [api-key]",
		Short: "Print the bcrypt hash of an API key for API_KEY_HASHES",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := utils.HashAPIKey(args[0])
			if err != nil {
				return err
			}
			fmt.Println(hash)
			return nil
		},
	}
}

// withArchiver connects to MongoDB and hands an Archiver to fn.
func withArchiver(ctx context.Context, fn func(cfg *config.Config, a *services.Archiver) error) error {
	cfg := config.Load()
	if cfg.MongoURI == "" {
		return errors.New("MONGO_URI is not set")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDatabase)
	dify := services.NewDifyClient(services.DifyConfig{
		ConsoleOrigin: cfg.DifyConsoleOrigin,
		ServiceURL:    cfg.DifyBaseURL,
		WorkspaceID:   cfg.DifyWorkspaceID,
		Email:         cfg.DifyAdminEmail,
		Password:      cfg.DifyAdminPassword,
	})
	return fn(cfg, services.NewArchiver(dify, services.NewMongoConversationLogStore(db)))
}

func backupCmd() *cobra.Command {
	var req models.SaveLogsRequest
	cmd := &cobra.Command{
		Use:   "backup-conversations",
		Short: "Archive one Dify app's conversations into MongoDB",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.AppID == "" {
				return errors.New("--app-id is required")
			}
			return withArchiver(cmd.Context(), func(cfg *config.Config, a *services.Archiver) error {
				if req.OrganizationID == "" {
					req.OrganizationID = cfg.DefaultOrgName
				}
				res, err := a.SaveLogs(cmd.Context(), &req)
				if err != nil {
					return err
				}
				fmt.Printf("Saved %d of %d conversations (%d failed)\n", res.SavedCount, res.TotalConversations, res.FailedCount)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.AppID, "app-id", "", "Dify app id")
	cmd.Flags().StringVar(&req.OrganizationID, "org-id", "", "Organization the logs belong to")
	cmd.Flags().StringVar(&req.StartDate, "start", "", "Start date (YYYY-MM-DD HH:mm)")
	cmd.Flags().StringVar(&req.EndDate, "end", "", "End date (YYYY-MM-DD HH:mm)")

	return cmd
}

func backupNowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup-now",
		Short: "Run the nightly backup for every app in BACKUP_APPS_FILE",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withArchiver(cmd.Context(), func(cfg *config.Config, a *services.Archiver) error {
				apps, err := config.LoadBackupApps(cfg.BackupAppsFile)
				if err != nil {
					return err
				}
				if len(apps) == 0 {
					return errors.New("no apps configured in BACKUP_APPS_FILE")
				}
				services.NewBackupScheduler(a, apps, cfg.LogRetentionDays).RunOnce(cmd.Context())
				return nil
			})
		},
	}
}

func cleanLogsCmd() *cobra.Command {
	var (
		days  int
		orgID string
	)
	cmd := &cobra.Command{
		Use:   "clean-logs",
		Short: "Delete archived conversation logs older than --days",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withArchiver(cmd.Context(), func(cfg *config.Config, a *services.Archiver) error {
				if days <= 0 {
					days = cfg.LogRetentionDays
				}
				deleted, err := a.Prune(cmd.Context(), days, orgID)
				if err != nil {
					return err
				}
				fmt.Printf("Deleted %d logs older than %d days\n", deleted, days)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Days to keep (defaults to LOG_RETENTION_DAYS)")
	cmd.Flags().StringVar(&orgID, "org-id", "", "Only clean this organization")

	return cmd
}
