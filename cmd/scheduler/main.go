package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/chamahub/chama-engine/internal/config"
	"github.com/chamahub/chama-engine/internal/repository"
	"github.com/chamahub/chama-engine/internal/service"
)

func main() {
	log.Println("Starting chama scheduler...")

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	rulesRepo := repository.NewRulesRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	contribRepo := repository.NewContributionRepository(db)

	// Scheduler jobs read through the same service paths as the API; no
	// redis here, the sweep always sees fresh totals.
	contributionService := service.NewContributionService(rulesRepo, memberRepo, contribRepo, nil, cfg)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone %q: %v", cfg.Scheduler.Timezone, err)
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	setupCronJobs(c, cfg, contributionService)

	c.Start()
	log.Println("Scheduler started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, contributions *service.ContributionService) {
	// Daily sweep that reports overdue members per chama
	_, err := c.AddFunc(cfg.Scheduler.OverdueSweepSpec, func() {
		runOverdueSweep(contributions)
	})
	if err != nil {
		log.Printf("Error scheduling overdue sweep job: %v", err)
	}

	// Weekly reminder of the upcoming payout per chama
	_, err = c.AddFunc(cfg.Scheduler.PayoutReminderSpec, func() {
		runPayoutReminders(contributions)
	})
	if err != nil {
		log.Printf("Error scheduling payout reminder job: %v", err)
	}

	log.Println("Cron jobs scheduled successfully")
}

func runOverdueSweep(contributions *service.ContributionService) {
	log.Println("Running daily overdue contribution sweep...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	overdue, err := contributions.OverdueSweep(ctx)
	if err != nil {
		log.Printf("Overdue sweep failed: %v", err)
		return
	}

	for chamaID, count := range overdue {
		if count > 0 {
			log.Printf("Chama %d has %d overdue member(s) this cycle", chamaID, count)
		}
	}
	log.Printf("Overdue sweep finished across %d chama(s)", len(overdue))
}

func runPayoutReminders(contributions *service.ContributionService) {
	log.Println("Running weekly payout reminder job...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	overdue, err := contributions.OverdueSweep(ctx)
	if err != nil {
		log.Printf("Payout reminder sweep failed: %v", err)
		return
	}

	for chamaID := range overdue {
		payout, err := contributions.NextPayout(ctx, chamaID)
		if err != nil {
			log.Printf("Next payout lookup failed for chama %d: %v", chamaID, err)
			continue
		}
		if payout.NextPayoutMemberID != nil {
			log.Printf("Chama %d: member %d is next in the rotation with %s pooled for cycle %q",
				chamaID, *payout.NextPayoutMemberID, payout.PayoutAmount, payout.Cycle)
		}
	}
}
