package repositories

import (
	"context"
	"time"

	"smartlocker/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// otpRepository implements OTPRepository interface
type otpRepository struct {
	db *gorm.DB
}

// NewOTPRepository creates a new OTP repository
func NewOTPRepository(db *gorm.DB) OTPRepository {
	return &otpRepository{db: db}
}

// Create persists a freshly issued OTP
func (r *otpRepository) Create(ctx context.Context, otp *models.OTP) error {
	return r.db.WithContext(ctx).Create(otp).Error
}

// GetByID gets an OTP by its verification id
func (r *otpRepository) GetByID(ctx context.Context, id string) (*models.OTP, error) {
	var otp models.OTP
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&otp).Error
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

// Consume deletes the OTP row keyed by id. The delete is the atomic
// consume step: under concurrent verification exactly one caller sees
// true, every other caller sees false.
func (r *otpRepository) Consume(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.OTP{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteExpired removes OTP rows past their expiry (storage hygiene only;
// verification rejects expired rows regardless)
func (r *otpRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", before).Delete(&models.OTP{})
	return res.RowsAffected, res.Error
}
