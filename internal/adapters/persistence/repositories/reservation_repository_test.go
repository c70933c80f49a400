package repositories

import (
	"context"
	"testing"
	"time"

	"smartlocker/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db))
	return db
}

func seedReservation(t *testing.T, repo ReservationRepository, id, phone, code, status string, createdAt time.Time) {
	t.Helper()
	r := &models.Reservation{
		ID:            id,
		ReceiverPhone: phone,
		LockerID:      "locker-01",
		BookingCode:   code,
		Status:        status,
		ExpiresAt:     time.Now().Add(72 * time.Hour),
	}
	require.NoError(t, repo.Create(context.Background(), r))
	// Pin created_at explicitly; autoCreateTime stamps rows too close together
	require.NoError(t, repo.(*reservationRepository).db.Model(&models.Reservation{}).
		Where("id = ?", id).Update("created_at", createdAt).Error)
}

func TestTransitionCompareAndSet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	seedReservation(t, repo, "res-1", "0912345678", "111111", "booked", time.Now())

	ok, err := repo.Transition(ctx, "res-1", "booked", map[string]interface{}{"status": "loaded"})
	require.NoError(t, err)
	assert.True(t, ok)

	// The same transition loses the second time: the row is no longer booked
	ok, err = repo.Transition(ctx, "res-1", "booked", map[string]interface{}{"status": "loaded"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTransitionUnknownID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationRepository(db)

	ok, err := repo.Transition(context.Background(), "missing", "booked", map[string]interface{}{"status": "loaded"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFirstByBookingCodeEarliestWins(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	now := time.Now()
	seedReservation(t, repo, "res-new", "0912345678", "222222", "booked", now)
	seedReservation(t, repo, "res-old", "0987654321", "222222", "booked", now.Add(-time.Hour))

	found, err := repo.FirstByBookingCode(ctx, "222222")
	require.NoError(t, err)
	assert.Equal(t, "res-old", found.ID)
}

func TestActiveBookingCodeExists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()
	now := time.Now()

	seedReservation(t, repo, "res-1", "0912345678", "333333", "booked", now)

	taken, err := repo.ActiveBookingCodeExists(ctx, "333333", now)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.ActiveBookingCodeExists(ctx, "444444", now)
	require.NoError(t, err)
	assert.False(t, taken)

	// An expired reservation releases its code
	require.NoError(t, db.Model(&models.Reservation{}).Where("id = ?", "res-1").
		Update("expires_at", now.Add(-time.Minute)).Error)
	taken, err = repo.ActiveBookingCodeExists(ctx, "333333", now)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestLatestLoadedByReceiver(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()
	now := time.Now()

	// No loaded reservation yet
	found, err := repo.LatestLoadedByReceiver(ctx, "0912345678", now)
	require.NoError(t, err)
	assert.Nil(t, found)

	seedReservation(t, repo, "res-booked", "0912345678", "555555", "booked", now)
	seedReservation(t, repo, "res-loaded", "0912345678", "666666", "loaded", now.Add(-time.Hour))

	found, err = repo.LatestLoadedByReceiver(ctx, "0912345678", now)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "res-loaded", found.ID)

	// Another receiver's parcels are invisible
	found, err = repo.LatestLoadedByReceiver(ctx, "0987654321", now)
	require.NoError(t, err)
	assert.Nil(t, found)
}
