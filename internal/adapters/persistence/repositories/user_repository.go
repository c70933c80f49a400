package repositories

import (
	"context"
	"time"

	"smartlocker/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByPhone gets a user by normalized phone number
func (r *userRepository) GetByPhone(ctx context.Context, phoneNumber string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("phone_number = ?", phoneNumber).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Exists checks if a phone number is already registered
func (r *userRepository) Exists(ctx context.Context, phoneNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("phone_number = ?", phoneNumber).Count(&count).Error
	return count > 0, err
}

// UpdateLastLogin stamps the last successful login time
func (r *userRepository) UpdateLastLogin(ctx context.Context, phoneNumber string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("phone_number = ?", phoneNumber).
		Update("last_login", at).Error
}
