package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"smartlocker/internal/adapters/persistence/models"
	"smartlocker/internal/adapters/persistence/repositories"
	"smartlocker/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OTPService is the credential store: it issues short-lived 6-digit codes
// and verifies them exactly once.
type OTPService struct {
	otpRepo repositories.OTPRepository
}

// NewOTPService creates a new OTP service
func NewOTPService(otpRepo repositories.OTPRepository) *OTPService {
	return &OTPService{otpRepo: otpRepo}
}

// GenerateCode generates a uniform random 6-digit code (000000-999999).
// Codes are relayed by humans, so guessability within the short validity
// window is the bar, not cryptographic strength.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Issue generates and persists a new credential for the given subject
func (s *OTPService) Issue(ctx context.Context, phoneNumber, purpose string, ttl time.Duration) (*models.OTP, error) {
	code, err := GenerateCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	otp := &models.OTP{
		ID:          uuid.New().String(),
		PhoneNumber: phoneNumber,
		Code:        code,
		Purpose:     purpose,
		ExpiresAt:   time.Now().Add(ttl),
	}

	if err := s.otpRepo.Create(ctx, otp); err != nil {
		return nil, err
	}

	return otp, nil
}

// Verify checks a credential and consumes it on success, returning the
// bound subject phone number. A stale or expired credential is rejected,
// never extended. The consume step is a conditional delete keyed by id,
// so two concurrent verifications of the same id resolve to exactly one
// success.
func (s *OTPService) Verify(ctx context.Context, id, code string) (string, error) {
	otp, err := s.otpRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrNotFound
		}
		return "", err
	}

	if otp.IsExpired(time.Now()) {
		return "", domain.ErrExpired
	}

	if otp.Code != code {
		return "", domain.ErrMismatch
	}

	consumed, err := s.otpRepo.Consume(ctx, id)
	if err != nil {
		return "", err
	}
	if !consumed {
		// Lost the race against a concurrent verification
		return "", domain.ErrNotFound
	}

	return otp.PhoneNumber, nil
}
