package cron

import (
	"log"
	"time"

	"github.com/adiyogi/wellness-api/model"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CronManager manages all scheduled maintenance jobs
type CronManager struct {
	cron *cron.Cron
	db   *gorm.DB
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB) *CronManager {
	return &CronManager{
		cron: cron.New(),
		db:   db,
	}
}

// Start registers and starts all cron jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs and waits for running jobs to finish
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// Hourly: reconcile cached ebook counts per category
	_, err := m.cron.AddFunc("@hourly", func() {
		m.logJobStart("reconcile_ebook_counts")
		m.ReconcileEbookCounts()
	})
	if err != nil {
		return err
	}

	// Daily: drop expired token blacklist rows
	_, err = m.cron.AddFunc("@daily", func() {
		m.logJobStart("cleanup_token_blacklist")
		m.CleanupTokenBlacklist()
	})
	return err
}

func (m *CronManager) logJobStart(jobName string) {
	log.Printf("[CRON] Starting job: %s", jobName)
	entry := model.CronJobLog{
		JobName: jobName,
		Status:  model.CronJobStatusRunning,
	}
	if err := m.db.Create(&entry).Error; err != nil {
		log.Printf("[CRON] Failed to log job start for %s: %v", jobName, err)
	}
}

func (m *CronManager) logJobComplete(jobName, message string, started time.Time) {
	log.Printf("[CRON] Completed job: %s (%s)", jobName, message)
	m.updateLatestLog(jobName, model.CronJobStatusCompleted, message, started)
}

func (m *CronManager) logJobError(jobName string, jobErr error, started time.Time) {
	log.Printf("[CRON] Job %s failed: %v", jobName, jobErr)
	m.updateLatestLog(jobName, model.CronJobStatusFailed, jobErr.Error(), started)
}

func (m *CronManager) updateLatestLog(jobName string, status model.CronJobStatus, message string, started time.Time) {
	var entry model.CronJobLog
	err := m.db.Where("job_name = ? AND status = ?", jobName, model.CronJobStatusRunning).
		Order("created_at DESC").
		First(&entry).Error
	if err != nil {
		return
	}

	entry.Status = status
	entry.Message = message
	entry.DurationMs = time.Since(started).Milliseconds()
	if err := m.db.Save(&entry).Error; err != nil {
		log.Printf("[CRON] Failed to update job log for %s: %v", jobName, err)
	}
}
