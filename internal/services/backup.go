package services

import (
	"context"
	"log"
	"time"

	"github.com/harentsoaR/admin-panel-api/internal/config"
	"github.com/harentsoaR/admin-panel-api/internal/models"
)

const backupHour = 2

// BackupScheduler archives the configured apps' conversations once a day.
type BackupScheduler struct {
	Archiver      *Archiver
	Apps          []config.BackupApp
	RetentionDays int
	now           func() time.Time
}

func NewBackupScheduler(a *Archiver, apps []config.BackupApp, retentionDays int) *BackupScheduler {
	return &BackupScheduler{Archiver: a, Apps: apps, RetentionDays: retentionDays, now: time.Now}
}

// NextRun returns the next 02:00 local time strictly after now.
func NextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), backupHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Run blocks until ctx is cancelled, running a backup every day at 02:00.
func (b *BackupScheduler) Run(ctx context.Context) {
	if len(b.Apps) == 0 {
		log.Println("Conversation backup disabled: no apps configured.")
		return
	}
	for {
		wait := time.Until(NextRun(b.now()))
		log.Printf("Next conversation backup in %s", wait.Round(time.Minute))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Println("Conversation backup scheduler stopped.")
			return
		case <-timer.C:
		}
		b.RunOnce(ctx)
	}
}

// RunOnce saves the last 24 hours for every app and then prunes old logs.
func (b *BackupScheduler) RunOnce(ctx context.Context) {
	end := b.now()
	start := end.Add(-24 * time.Hour)
	for _, app := range b.Apps {
		res, err := b.Archiver.SaveLogs(ctx, &models.SaveLogsRequest{
			AppID:          app.AppID,
			OrganizationID: app.OrganizationID,
			StartDate:      start.Format("2006-01-02 15:04"),
			EndDate:        end.Format("2006-01-02 15:04"),
		})
		if err != nil {
			log.Printf("Backup failed for app %s (%s): %v", app.Name, app.AppID, err)
			continue
		}
		log.Printf("Backup for app %s: %d saved, %d failed", app.AppID, res.SavedCount, res.FailedCount)
	}

	if b.RetentionDays > 0 {
		removed, err := b.Archiver.Prune(ctx, b.RetentionDays, "")
		if err != nil {
			log.Printf("Failed to prune conversation logs: %v", err)
			return
		}
		log.Printf("Pruned %d conversation logs older than %d days", removed, b.RetentionDays)
	}
}
