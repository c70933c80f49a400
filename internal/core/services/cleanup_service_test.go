package services

import (
	"context"
	"testing"
	"time"

	"smartlocker/internal/adapters/persistence/models"
	"smartlocker/internal/adapters/persistence/repositories"
	"smartlocker/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupPurgesExpiredCredentialsOnly(t *testing.T) {
	db := setupTestDB(t)
	otpRepo := repositories.NewOTPRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	svc := NewCleanupService(otpRepo, refreshTokenRepo)

	ctx := context.Background()
	otpService := NewOTPService(otpRepo)

	expired, err := otpService.Issue(ctx, "0912345678", domain.PurposeLogin, -time.Minute)
	require.NoError(t, err)
	live, err := otpService.Issue(ctx, "0912345678", domain.PurposeLogin, time.Hour)
	require.NoError(t, err)

	require.NoError(t, refreshTokenRepo.Create(ctx, &models.RefreshToken{
		PhoneNumber: "0912345678",
		TokenHash:   "dead",
		ExpiresAt:   time.Now().Add(-time.Hour),
	}))
	require.NoError(t, refreshTokenRepo.Create(ctx, &models.RefreshToken{
		PhoneNumber: "0912345678",
		TokenHash:   "alive",
		ExpiresAt:   time.Now().Add(time.Hour),
	}))

	// A reservation past expiry must survive cleanup untouched
	reservationRepo := repositories.NewReservationRepository(db)
	require.NoError(t, reservationRepo.Create(ctx, &models.Reservation{
		ID:            "res-1",
		ReceiverPhone: "0912345678",
		LockerID:      "locker-01",
		BookingCode:   "123456",
		Status:        domain.ReservationBooked,
		ExpiresAt:     time.Now().Add(-time.Hour),
	}))

	svc.run()

	var otps int64
	require.NoError(t, db.Model(&models.OTP{}).Count(&otps).Error)
	assert.Equal(t, int64(1), otps)
	_, err = otpRepo.GetByID(ctx, live.ID)
	assert.NoError(t, err)
	_, err = otpRepo.GetByID(ctx, expired.ID)
	assert.Error(t, err)

	var tokens int64
	require.NoError(t, db.Model(&models.RefreshToken{}).Count(&tokens).Error)
	assert.Equal(t, int64(1), tokens)

	var reservations int64
	require.NoError(t, db.Model(&models.Reservation{}).Count(&reservations).Error)
	assert.Equal(t, int64(1), reservations)
}
