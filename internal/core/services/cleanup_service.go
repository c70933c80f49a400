package services

import (
	"context"
	"log"
	"time"

	"smartlocker/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CleanupService purges dead credential rows on a schedule: expired login
// OTPs and expired refresh tokens. It never touches reservations —
// reservation expiry is checked lazily at access time, and expired
// reservations stay in storage.
type CleanupService struct {
	otpRepo          repositories.OTPRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	cron             *cron.Cron
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(otpRepo repositories.OTPRepository, refreshTokenRepo repositories.RefreshTokenRepository) *CleanupService {
	return &CleanupService{
		otpRepo:          otpRepo,
		refreshTokenRepo: refreshTokenRepo,
		cron:             cron.New(),
	}
}

// Start schedules the cleanup job (every 10 minutes)
func (s *CleanupService) Start() {
	s.cron.AddFunc("*/10 * * * *", s.run)
	s.cron.Start()
	log.Println("🚀 CleanupService started")
}

// Stop stops the scheduler
func (s *CleanupService) Stop() {
	s.cron.Stop()
	log.Println("🛑 CleanupService stopped")
}

func (s *CleanupService) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	otps, err := s.otpRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		log.Printf("❌ OTP cleanup error: %v", err)
	}

	tokens, err := s.refreshTokenRepo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("❌ Refresh token cleanup error: %v", err)
	}

	if otps > 0 || tokens > 0 {
		log.Printf("🧹 Cleanup removed %d expired OTPs, %d expired refresh tokens", otps, tokens)
	}
}
