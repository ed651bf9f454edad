package services

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// CronService runs scheduled housekeeping: periodic session purges and a
// nightly ledger audit that logs participation totals.
type CronService struct {
	cron     *cron.Cron
	sessions *SessionService
	results  *ResultsService
}

// NewCronService creates a new cron service
func NewCronService(sessions *SessionService, results *ResultsService) *CronService {
	return &CronService{
		cron:     cron.New(),
		sessions: sessions,
		results:  results,
	}
}

// Start registers and launches the scheduled jobs.
func (s *CronService) Start() {
	// Purge dead voting sessions every 10 minutes
	s.cron.AddFunc("*/10 * * * *", func() {
		if n := s.sessions.PurgeExpired(); n > 0 {
			log.Printf("🧹 Cron purged %d voting sessions", n)
		}
	})

	// Nightly ledger audit at 23:30
	s.cron.AddFunc("30 23 * * *", s.auditLedger)

	s.cron.Start()
	log.Println("🚀 CronService started")
}

// Stop halts the scheduler.
func (s *CronService) Stop() {
	s.cron.Stop()
	log.Println("🛑 CronService stopped")
}

func (s *CronService) auditLedger() {
	turnout, err := s.results.GetTurnout(context.Background())
	if err != nil {
		log.Printf("❌ Ledger audit failed: %v", err)
		return
	}
	log.Printf("📊 Ledger audit: %d votes across %d ballots, %d active sessions",
		turnout.TotalVotes, turnout.TotalBallots, s.sessions.ActiveCount())
}
