// services/scheduler.go
package services

import (
	"log"
	"time"

	"neoengine-ledger-service/models"

	"github.com/go-co-op/gocron/v2"
)

// StartLedgerScheduler runs the periodic housekeeping jobs: a distribution
// stats snapshot and the audit-event retention prune.
func (s *ScoringService) StartLedgerScheduler(eventRetention time.Duration) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every 10 minutes: log the quota window in force
	_, _ = sched.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(func() {
			var cfg models.ScoringConfig
			if err := s.DB.First(&cfg, "key = ?", models.ScoringConfigKey).Error; err != nil {
				log.Printf("[Scheduler] scoring config unavailable: %v", err)
				return
			}
			log.Printf("📈 [Scheduler] day=%d distributed=%d/%d total=%d",
				cfg.LastResetDay, cfg.DailyDistributed, cfg.DailyLimit, cfg.TotalDistributed)
		}),
	)

	// Every hour: prune audit events past the retention window
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			cutoff := time.Now().Add(-eventRetention)

			res := s.DB.Where("timestamp < ?", cutoff).Delete(&models.RewardEvent{})
			if res.Error != nil {
				log.Printf("[Scheduler] reward event prune failed: %v", res.Error)
			} else if res.RowsAffected > 0 {
				log.Printf("🧹 [Scheduler] pruned %d reward events older than %s", res.RowsAffected, cutoff.Format(time.RFC3339))
			}

			res = s.DB.Where("timestamp < ?", cutoff).Delete(&models.CosmeticEvent{})
			if res.Error != nil {
				log.Printf("[Scheduler] cosmetic event prune failed: %v", res.Error)
			} else if res.RowsAffected > 0 {
				log.Printf("🧹 [Scheduler] pruned %d cosmetic events", res.RowsAffected)
			}
		}),
	)
}
