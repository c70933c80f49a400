package services

import (
	"context"
	"testing"

	"smartlocker/internal/adapters/persistence/models"
	"smartlocker/internal/adapters/persistence/repositories"
	"smartlocker/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newLockerService(t *testing.T) (*LockerService, *gorm.DB) {
	db := setupTestDB(t)
	svc := NewLockerService(
		repositories.NewLockerRepository(db),
		repositories.NewAuditRepository(db),
	)
	return svc, db
}

func TestLockerStatusUnknown(t *testing.T) {
	svc, _ := newLockerService(t)

	state, err := svc.Status(context.Background(), "locker-01")
	require.NoError(t, err)
	assert.Equal(t, "locker-01", state.LockerID)
	assert.Equal(t, domain.LockerUnknown, state.Status)
}

func TestLockerCommand(t *testing.T) {
	svc, db := newLockerService(t)
	ctx := context.Background()

	require.NoError(t, svc.Command(ctx, "0999999999", "locker-01", domain.ActionOpen))

	state, err := svc.Status(ctx, "locker-01")
	require.NoError(t, err)
	assert.Equal(t, domain.LockerOpen, state.Status)
	assert.False(t, state.LastUpdate.IsZero())

	// Every command is audited
	var entries []models.AuditLog
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, "0999999999", entries[0].Phone)
	assert.Equal(t, domain.ActionOpen, entries[0].Action)
	assert.Nil(t, entries[0].ReservationID)
}

func TestLockerCommandOverwrites(t *testing.T) {
	svc, _ := newLockerService(t)
	ctx := context.Background()

	require.NoError(t, svc.Command(ctx, "0999999999", "locker-01", domain.ActionOpen))
	require.NoError(t, svc.Command(ctx, "0999999999", "locker-01", domain.ActionClose))

	state, err := svc.Status(ctx, "locker-01")
	require.NoError(t, err)
	assert.Equal(t, domain.LockerClosed, state.Status)
}

func TestLockerCommandInvalidAction(t *testing.T) {
	svc, _ := newLockerService(t)

	err := svc.Command(context.Background(), "0999999999", "locker-01", "explode")
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestLockerCommandRequiresLocker(t *testing.T) {
	svc, _ := newLockerService(t)

	err := svc.Command(context.Background(), "0999999999", "", domain.ActionOpen)
	assert.ErrorIs(t, err, ErrLockerRequired)
}

func TestRecentAuditLogNewestFirst(t *testing.T) {
	svc, _ := newLockerService(t)
	ctx := context.Background()

	require.NoError(t, svc.Command(ctx, "0999999999", "locker-01", domain.ActionOpen))
	require.NoError(t, svc.Command(ctx, "0999999999", "locker-02", domain.ActionOpen))
	require.NoError(t, svc.Command(ctx, "0999999999", "locker-03", domain.ActionClose))

	entries, err := svc.RecentAuditLog(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "locker-03", entries[0].LockerID)
	assert.Equal(t, "locker-02", entries[1].LockerID)
}
