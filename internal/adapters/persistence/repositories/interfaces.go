package repositories

import (
	"context"
	"time"

	"smartlocker/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByPhone(ctx context.Context, phoneNumber string) (*models.User, error)
	Exists(ctx context.Context, phoneNumber string) (bool, error)
	UpdateLastLogin(ctx context.Context, phoneNumber string, at time.Time) error
}

// OTPRepository defines the credential store interface. Consume is the
// atomic consume-on-success step: exactly one caller wins per id.
type OTPRepository interface {
	Create(ctx context.Context, otp *models.OTP) error
	GetByID(ctx context.Context, id string) (*models.OTP, error)
	Consume(ctx context.Context, id string) (bool, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByPhone(ctx context.Context, phoneNumber string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// ReservationRepository defines reservation repository interface.
// Transition is the conditional compare-and-transition on status: it
// returns false when the reservation was not in fromStatus anymore.
type ReservationRepository interface {
	Create(ctx context.Context, reservation *models.Reservation) error
	GetByID(ctx context.Context, id string) (*models.Reservation, error)
	FirstByBookingCode(ctx context.Context, code string) (*models.Reservation, error)
	ActiveBookingCodeExists(ctx context.Context, code string, now time.Time) (bool, error)
	Transition(ctx context.Context, id, fromStatus string, updates map[string]interface{}) (bool, error)
	LatestLoadedByReceiver(ctx context.Context, phoneNumber string, now time.Time) (*models.Reservation, error)
	ListByReceiver(ctx context.Context, phoneNumber string) ([]*models.Reservation, error)
	ListAll(ctx context.Context, limit, offset int) ([]*models.Reservation, int64, error)
}

// LockerRepository defines the locker state register interface.
// Set is an unconditional overwrite: last writer wins.
type LockerRepository interface {
	Get(ctx context.Context, lockerID string) (*models.LockerState, error)
	Set(ctx context.Context, lockerID, status string, at time.Time) error
}

// AuditRepository defines the append-only audit log interface
type AuditRepository interface {
	Record(ctx context.Context, entry *models.AuditLog) error
	ListRecent(ctx context.Context, limit int) ([]*models.AuditLog, error)
}
