package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/docuforge/docuforge/pkg/domain"
)

// CronManager manages scheduled jobs
type CronManager struct {
	cron    *cron.Cron
	sweeper *Sweeper
	logger  *log.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(users domain.UserStore, logger *log.Logger) *CronManager {
	if logger == nil {
		logger = log.Default()
	}

	return &CronManager{
		cron:    cron.New(),
		sweeper: NewSweeper(users, logger),
		logger:  logger,
	}
}

// SetupJobs configures all scheduled jobs
func (cm *CronManager) SetupJobs() error {
	cm.logger.Println("Setting up cron jobs...")

	// Hourly: downgrade subscriptions whose period ended without renewal
	_, err := cm.cron.AddFunc("0 * * * *", func() {
		cm.logger.Println("🕐 Running subscription expiry sweep...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		count, err := cm.sweeper.SweepExpiredSubscriptions(ctx)
		if err != nil {
			cm.logger.Printf("❌ Subscription sweep failed: %v", err)
			return
		}
		if count > 0 {
			cm.logger.Printf("✅ Subscription sweep expired %d accounts", count)
		}
	})
	if err != nil {
		return err
	}

	// Daily at 4 AM: clear stale verification, reset and phone code hashes
	_, err = cm.cron.AddFunc("0 4 * * *", func() {
		cm.logger.Println("🕐 Running expired token purge...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		count, err := cm.sweeper.PurgeExpiredTokens(ctx)
		if err != nil {
			cm.logger.Printf("❌ Token purge failed: %v", err)
			return
		}
		cm.logger.Printf("✅ Token purge cleared %d rows", count)
	})
	if err != nil {
		return err
	}

	cm.logger.Println("✅ Cron jobs configured")
	return nil
}

// Start begins running scheduled jobs
func (cm *CronManager) Start() {
	cm.cron.Start()
	cm.logger.Println("✅ Cron scheduler started")
}

// Stop gracefully stops the scheduler
func (cm *CronManager) Stop() {
	ctx := cm.cron.Stop()
	<-ctx.Done()
	cm.logger.Println("🛑 Cron scheduler stopped")
}
