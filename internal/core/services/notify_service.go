package services

import (
	"log"
	"time"
)

// NotifyService simulates SMS delivery of one-time codes. Codes are
// written to the server log only; a production deployment would hand
// them to an SMS gateway here instead.
type NotifyService struct{}

// NewNotifyService creates a new notify service
func NewNotifyService() *NotifyService {
	return &NotifyService{}
}

// SendLoginOTP delivers a login code to the subject phone
func (s *NotifyService) SendLoginOTP(phoneNumber, code string, expiresAt time.Time) {
	log.Printf("📱 OTP for %s: %s (expires %s)", phoneNumber, code, expiresAt.Format(time.RFC3339))
}

// SendPickupCode delivers a pickup code to the parcel receiver
func (s *NotifyService) SendPickupCode(phoneNumber, code, lockerID string) {
	log.Printf("🎯 Pickup code for %s (locker %s): %s", phoneNumber, lockerID, code)
}
