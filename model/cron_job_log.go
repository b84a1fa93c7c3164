package model

import (
	"time"
)

// CronJobStatus represents the outcome of a scheduled job run
type CronJobStatus string

const (
	CronJobStatusRunning   CronJobStatus = "running"
	CronJobStatusCompleted CronJobStatus = "completed"
	CronJobStatusFailed    CronJobStatus = "failed"
)

// CronJobLog records the runs of scheduled maintenance jobs
type CronJobLog struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	JobName    string        `gorm:"type:varchar(100);not null;index" json:"job_name"`
	Status     CronJobStatus `gorm:"type:varchar(20);not null" json:"status"`
	Message    string        `gorm:"type:text" json:"message"`
	DurationMs int64         `gorm:"default:0" json:"duration_ms"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// TableName specifies the table name for CronJobLog
func (CronJobLog) TableName() string {
	return "cron_job_logs"
}
