package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"smartlocker/internal/adapters/persistence/models"
	"smartlocker/internal/adapters/persistence/repositories"
	"smartlocker/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newReservationService(t *testing.T) (*ReservationService, *gorm.DB) {
	db := setupTestDB(t)
	cfg := testConfig()

	svc := NewReservationService(
		repositories.NewReservationRepository(db),
		repositories.NewLockerRepository(db),
		repositories.NewAuditRepository(db),
		NewNotifyService(),
		cfg,
	)
	return svc, db
}

func expireReservation(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	past := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(&models.Reservation{}).Where("id = ?", id).Update("expires_at", past).Error)
}

func lockerStatus(t *testing.T, db *gorm.DB, lockerID string) string {
	t.Helper()
	var state models.LockerState
	require.NoError(t, db.Where("locker_id = ?", lockerID).First(&state).Error)
	return state.Status
}

func auditCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&n).Error)
	return n
}

func TestCreateReservation(t *testing.T) {
	svc, _ := newReservationService(t)

	result, err := svc.Create(context.Background(), "0912345678", "locker-01")
	require.NoError(t, err)
	assert.NotEmpty(t, result.ReservationID)
	assert.Equal(t, "locker-01", result.LockerID)
	assert.Regexp(t, regexp.MustCompile(`^[0-9]{6}$`), result.BookingCode)
	assert.WithinDuration(t, time.Now().Add(72*time.Hour), result.ExpiresAt, time.Minute)
}

func TestCreateReservationRequiresLocker(t *testing.T) {
	svc, _ := newReservationService(t)

	_, err := svc.Create(context.Background(), "0912345678", "")
	assert.ErrorIs(t, err, ErrLockerRequired)
}

func TestCreateAllowsMultipleReservationsPerLocker(t *testing.T) {
	svc, _ := newReservationService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, "0912345678", "locker-01")
	require.NoError(t, err)
	second, err := svc.Create(ctx, "0987654321", "locker-01")
	require.NoError(t, err)
	assert.NotEqual(t, first.BookingCode, second.BookingCode)
}

func TestRedeemDeposit(t *testing.T) {
	svc, db := newReservationService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "0912345678", "locker-01")
	require.NoError(t, err)

	result, err := svc.RedeemDeposit(ctx, created.BookingCode)
	require.NoError(t, err)
	assert.Equal(t, "locker-01", result.LockerID)

	// Reservation transitioned and the pickup code was assigned
	var reservation models.Reservation
	require.NoError(t, db.First(&reservation, "id = ?", created.ReservationID).Error)
	assert.Equal(t, domain.ReservationLoaded, reservation.Status)
	assert.NotNil(t, reservation.LoadedAt)
	require.NotNil(t, reservation.PickupCode)
	assert.Regexp(t, regexp.MustCompile(`^[0-9]{6}$`), *reservation.PickupCode)

	// The locker was commanded open and the deposit was audited
	assert.Equal(t, domain.LockerOpen, lockerStatus(t, db, "locker-01"))
	assert.Equal(t, int64(1), auditCount(t, db))
}

func TestRedeemDepositUnknownCode(t *testing.T) {
	svc, _ := newReservationService(t)

	_, err := svc.RedeemDeposit(context.Background(), "999999")
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestRedeemDepositOnlyOnce(t *testing.T) {
	svc, db := newReservationService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "0912345678", "locker-01")
	require.NoError(t, err)

	_, err = svc.RedeemDeposit(ctx, created.BookingCode)
	require.NoError(t, err)

	// A loaded reservation cannot be loaded again
	_, err = svc.RedeemDeposit(ctx, created.BookingCode)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, int64(1), auditCount(t, db))
}

func TestRedeemDepositExpired(t *testing.T) {
	svc, db := newReservationService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "0912345678", "locker-01")
	require.NoError(t, err)
	expireReservation(t, db, created.ReservationID)

	_, err = svc.RedeemDeposit(ctx, created.BookingCode)
	assert.ErrorIs(t, err, ErrReservationExpired)

	// A failed redemption leaves every record untouched
	var reservation models.Reservation
	require.NoError(t, db.First(&reservation, "id = ?", created.ReservationID).Error)
	assert.Equal(t, domain.ReservationBooked, reservation.Status)
	assert.Nil(t, reservation.PickupCode)
	assert.Equal(t, int64(0), auditCount(t, db))
}

func TestRedeemPickup(t *testing.T) {
	svc, db := newReservationService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "0912345678", "locker-01")
	require.NoError(t, err)
	_, err = svc.RedeemDeposit(ctx, created.BookingCode)
	require.NoError(t, err)

	var reservation models.Reservation
	require.NoError(t, db.First(&reservation, "id = ?", created.ReservationID).Error)
	require.NotNil(t, reservation.PickupCode)

	err = svc.RedeemPickup(ctx, created.ReservationID, *reservation.PickupCode, "0912345678")
	require.NoError(t, err)

	require.NoError(t, db.First(&reservation, "id = ?", created.ReservationID).Error)
	assert.Equal(t, domain.ReservationOpened, reservation.Status)
	assert.NotNil(t, reservation.OpenedAt)

	// Deposit and pickup each produce one audit entry
	assert.Equal(t, int64(2), auditCount(t, db))

	var entries []models.AuditLog
	require.NoError(t, db.Order("timestamp").Find(&entries).Error)
	assert.Equal(t, domain.ActionOpenByShipper, entries[0].Action)
	assert.Equal(t, domain.ActionOpenByReceiver, entries[1].Action)
}

func TestRedeemPickupWrongReceiver(t *testing.T) {
	svc, db := newReservationService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "0912345678", "locker-01")
	require.NoError(t, err)
	_, err = svc.RedeemDeposit(ctx, created.BookingCode)
	require.NoError(t, err)

	var reservation models.Reservation
	require.NoError(t, db.First(&reservation, "id = ?", created.ReservationID).Error)

	// Even the right code fails for the wrong caller
	err = svc.RedeemPickup(ctx, created.ReservationID, *reservation.PickupCode, "0987654321")
	assert.ErrorIs(t, err, ErrNotReceiver)
}

func TestRedeemPickupWrongCode(t *testing.T) {
	svc, db := newReservationService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "0912345678", "locker-01")
	require.NoError(t, err)
	_, err = svc.RedeemDeposit(ctx, created.BookingCode)
	require.NoError(t, err)

	var reservation models.Reservation
	require.NoError(t, db.First(&reservation, "id = ?", created.ReservationID).Error)

	wrong := "000000"
	if *reservation.PickupCode == wrong {
		wrong = "000001"
	}

	err = svc.RedeemPickup(ctx, created.ReservationID, wrong, "0912345678")
	assert.ErrorIs(t, err, ErrPickupCodeMismatch)

	// The reservation stays loaded
	require.NoError(t, db.First(&reservation, "id = ?", created.ReservationID).Error)
	assert.Equal(t, domain.ReservationLoaded, reservation.Status)
}

func TestRedeemPickupBeforeDeposit(t *testing.T) {
	svc, _ := newReservationService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "0912345678", "locker-01")
	require.NoError(t, err)

	err = svc.RedeemPickup(ctx, created.ReservationID, created.BookingCode, "0912345678")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRedeemPickupExpired(t *testing.T) {
	svc, db := newReservationService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "0912345678", "locker-01")
	require.NoError(t, err)
	_, err = svc.RedeemDeposit(ctx, created.BookingCode)
	require.NoError(t, err)

	var reservation models.Reservation
	require.NoError(t, db.First(&reservation, "id = ?", created.ReservationID).Error)
	expireReservation(t, db, created.ReservationID)

	err = svc.RedeemPickup(ctx, created.ReservationID, *reservation.PickupCode, "0912345678")
	assert.ErrorIs(t, err, ErrReservationExpired)
}

func TestCheckActive(t *testing.T) {
	svc, _ := newReservationService(t)
	ctx := context.Background()

	// Nothing loaded yet
	parcel, err := svc.CheckActive(ctx, "0912345678")
	require.NoError(t, err)
	assert.False(t, parcel.HasReservation)
	assert.Nil(t, parcel.Reservation)

	created, err := svc.Create(ctx, "0912345678", "locker-01")
	require.NoError(t, err)

	// A booked reservation is not an active parcel
	parcel, err = svc.CheckActive(ctx, "0912345678")
	require.NoError(t, err)
	assert.False(t, parcel.HasReservation)

	_, err = svc.RedeemDeposit(ctx, created.BookingCode)
	require.NoError(t, err)

	parcel, err = svc.CheckActive(ctx, "0912345678")
	require.NoError(t, err)
	require.True(t, parcel.HasReservation)
	assert.Equal(t, created.ReservationID, parcel.Reservation.ID)
	assert.Equal(t, domain.ReservationLoaded, parcel.Reservation.Status)
	assert.Equal(t, "locker-01", parcel.Reservation.LockerID)
}

func TestCheckActiveIgnoresExpired(t *testing.T) {
	svc, db := newReservationService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "0912345678", "locker-01")
	require.NoError(t, err)
	_, err = svc.RedeemDeposit(ctx, created.BookingCode)
	require.NoError(t, err)
	expireReservation(t, db, created.ReservationID)

	parcel, err := svc.CheckActive(ctx, "0912345678")
	require.NoError(t, err)
	assert.False(t, parcel.HasReservation)
}

func TestListByReceiverReportsExpiredStatus(t *testing.T) {
	svc, db := newReservationService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "0912345678", "locker-01")
	require.NoError(t, err)
	expireReservation(t, db, created.ReservationID)

	list, err := svc.ListByReceiver(ctx, "0912345678")
	require.NoError(t, err)
	require.Len(t, list, 1)
	// The stored status is still booked; the reported one is expired
	assert.Equal(t, domain.ReservationExpired, list[0].Status)
}

func TestFullLifecycle(t *testing.T) {
	svc, db := newReservationService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "0912345678", "locker-07")
	require.NoError(t, err)

	_, err = svc.RedeemDeposit(ctx, created.BookingCode)
	require.NoError(t, err)

	var reservation models.Reservation
	require.NoError(t, db.First(&reservation, "id = ?", created.ReservationID).Error)

	require.NoError(t, svc.RedeemPickup(ctx, created.ReservationID, *reservation.PickupCode, "0912345678"))

	list, err := svc.ListByReceiver(ctx, "0912345678")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.ReservationOpened, list[0].Status)

	// Opened is terminal: no further redemption works
	_, err = svc.RedeemDeposit(ctx, created.BookingCode)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	err = svc.RedeemPickup(ctx, created.ReservationID, *reservation.PickupCode, "0912345678")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
