package main

import (
	"fmt"
	"log"

	"github.com/adiyogi/wellness-api/database"
	"github.com/adiyogi/wellness-api/model"
	"github.com/joho/godotenv"
)

// Prints the most recent scheduled job runs for operational checks.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	store, err := database.StartGORM()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	var logs []model.CronJobLog
	if err := store.GetDB().Order("created_at DESC").Limit(50).Find(&logs).Error; err != nil {
		log.Fatalf("Failed to load job logs: %v", err)
	}

	if len(logs) == 0 {
		fmt.Println("No scheduled job runs recorded yet")
		return
	}

	fmt.Printf("%-30s %-10s %-10s %s\n", "JOB", "STATUS", "DURATION", "RAN AT")
	for _, entry := range logs {
		fmt.Printf("%-30s %-10s %-10s %s\n",
			entry.JobName,
			entry.Status,
			fmt.Sprintf("%dms", entry.DurationMs),
			entry.CreatedAt.Format("2006-01-02 15:04:05"),
		)
		if entry.Status == model.CronJobStatusFailed && entry.Message != "" {
			fmt.Printf("  error: %s\n", entry.Message)
		}
	}
}
