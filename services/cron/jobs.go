package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/adiyogi/wellness-api/model"
	"github.com/adiyogi/wellness-api/utils/auth"
)

// ReconcileEbookCounts recomputes EbookCategory.EbooksCount from the actual
// ebook rows. The counter has no synchronous update path, so it drifts when
// the catalog is edited externally.
func (m *CronManager) ReconcileEbookCounts() {
	started := time.Now()
	jobName := "reconcile_ebook_counts"

	var categories []model.EbookCategory
	if err := m.db.Find(&categories).Error; err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to load categories: %w", err), started)
		return
	}

	updated := 0
	for _, category := range categories {
		var count int64
		if err := m.db.Model(&model.Ebook{}).
			Where("category = ?", category.Name).
			Count(&count).Error; err != nil {
			log.Printf("[CRON] Failed to count ebooks for category %q: %v", category.Name, err)
			continue
		}

		if int(count) == category.EbooksCount {
			continue
		}

		if err := m.db.Model(&model.EbookCategory{}).
			Where("id = ?", category.ID).
			Update("ebooks_count", count).Error; err != nil {
			log.Printf("[CRON] Failed to update count for category %q: %v", category.Name, err)
			continue
		}
		updated++
	}

	m.logJobComplete(jobName, fmt.Sprintf("Reconciled %d of %d categories", updated, len(categories)), started)
}

// CleanupTokenBlacklist removes expired rows from the JWT blacklist
func (m *CronManager) CleanupTokenBlacklist() {
	started := time.Now()
	jobName := "cleanup_token_blacklist"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	removed, err := auth.NewBlacklistService(m.db).CleanupExpiredTokens(ctx)
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to cleanup blacklist: %w", err), started)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d expired tokens", removed), started)
}
