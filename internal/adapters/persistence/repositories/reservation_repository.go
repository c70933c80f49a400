package repositories

import (
	"context"
	"errors"
	"time"

	"smartlocker/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// reservationRepository implements ReservationRepository interface
type reservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

// Create creates a new reservation
func (r *reservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

// GetByID gets a reservation by id
func (r *reservationRepository) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// FirstByBookingCode gets the reservation matching a booking code.
// Six-digit codes can collide across reservations, so the match is made
// deterministic: earliest createdAt wins.
func (r *reservationRepository) FirstByBookingCode(ctx context.Context, code string) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).
		Where("booking_code = ?", code).
		Order("created_at ASC").
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// ActiveBookingCodeExists checks whether an unexpired booked reservation
// already carries the given code (collision check at creation time)
func (r *reservationRepository) ActiveBookingCodeExists(ctx context.Context, code string, now time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Reservation{}).
		Where("booking_code = ? AND status = ? AND expires_at > ?", code, "booked", now).
		Count(&count).Error
	return count > 0, err
}

// Transition performs the compare-and-transition on status. The WHERE
// clause carries the expected current status, so two concurrent
// redemptions of the same reservation resolve to exactly one winner.
func (r *reservationRepository) Transition(ctx context.Context, id, fromStatus string, updates map[string]interface{}) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Reservation{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// LatestLoadedByReceiver selects, among the receiver's reservations, the
// most recent unexpired one in loaded state (loadedAt then createdAt
// descending). Returns nil without error when there is none.
func (r *reservationRepository) LatestLoadedByReceiver(ctx context.Context, phoneNumber string, now time.Time) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).
		Where("receiver_phone = ? AND status = ? AND expires_at > ?", phoneNumber, "loaded", now).
		Order("loaded_at DESC, created_at DESC").
		First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reservation, nil
}

// ListByReceiver lists all reservations for a receiver, newest first
func (r *reservationRepository) ListByReceiver(ctx context.Context, phoneNumber string) ([]*models.Reservation, error) {
	var reservations []*models.Reservation
	err := r.db.WithContext(ctx).
		Where("receiver_phone = ?", phoneNumber).
		Order("created_at DESC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

// ListAll lists reservations newest first with pagination (admin)
func (r *reservationRepository) ListAll(ctx context.Context, limit, offset int) ([]*models.Reservation, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Reservation{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reservations []*models.Reservation
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reservations).Error
	if err != nil {
		return nil, 0, err
	}
	return reservations, total, nil
}
