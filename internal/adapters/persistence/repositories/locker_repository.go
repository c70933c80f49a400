package repositories

import (
	"context"
	"time"

	"smartlocker/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockerRepository implements LockerRepository interface
type lockerRepository struct {
	db *gorm.DB
}

// NewLockerRepository creates a new locker state repository
func NewLockerRepository(db *gorm.DB) LockerRepository {
	return &lockerRepository{db: db}
}

// Get reads the current register of a locker
func (r *lockerRepository) Get(ctx context.Context, lockerID string) (*models.LockerState, error) {
	var state models.LockerState
	err := r.db.WithContext(ctx).Where("locker_id = ?", lockerID).First(&state).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// Set overwrites the register unconditionally and stamps the write time.
// There is no compare-and-swap here: an admin command and a
// reservation-driven write to the same locker interleave last-write-wins.
func (r *lockerRepository) Set(ctx context.Context, lockerID, status string, at time.Time) error {
	state := &models.LockerState{
		LockerID:   lockerID,
		Status:     status,
		LastUpdate: at,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "locker_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "last_update"}),
	}).Create(state).Error
}
