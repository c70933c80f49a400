package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Identity & Session Tables
// ============================================================

// User represents users table. The phone number is the storage key
// (always normalized to 0XXXXXXXXX before any read or write).
type User struct {
	PhoneNumber string    `gorm:"primaryKey;size:15" json:"phone_number"`
	FullName    string    `gorm:"size:100;not null" json:"full_name"`
	Apartment   string    `gorm:"size:20" json:"apartment"`
	Role        string    `gorm:"size:20;default:'resident'" json:"role"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	LastLogin   time.Time `json:"last_login"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	PhoneNumber string    `json:"phone_number"`
	FullName    string    `json:"full_name"`
	Apartment   string    `json:"apartment,omitempty"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	LastLogin   time.Time `json:"last_login"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		PhoneNumber: u.PhoneNumber,
		FullName:    u.FullName,
		Apartment:   u.Apartment,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
		LastLogin:   u.LastLogin,
	}
}

// OTP represents otps table. One row per issued login code; the row is
// deleted exactly once on successful verification (consume-on-success).
type OTP struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	PhoneNumber string    `gorm:"size:15;not null;index" json:"phone_number"`
	Code        string    `gorm:"size:6;not null" json:"-"`
	Purpose     string    `gorm:"size:20;not null" json:"purpose"`
	ExpiresAt   time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (OTP) TableName() string {
	return "otps"
}

func (o *OTP) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	PhoneNumber string     `gorm:"size:15;not null;index" json:"phone_number"`
	TokenHash   string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt   time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt   *time.Time `gorm:"index" json:"revoked_at"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Reservation & Locker Tables
// ============================================================

// Reservation represents reservations table. BookingCode is assigned at
// creation and immutable; PickupCode is set exactly once on the loaded
// transition. ExpiresAt is fixed at creation and never extended.
type Reservation struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	ReceiverPhone string     `gorm:"size:15;not null;index" json:"receiver_phone"`
	LockerID      string     `gorm:"size:40;not null;index" json:"locker_id"`
	BookingCode   string     `gorm:"size:6;not null;index" json:"booking_code"`
	PickupCode    *string    `gorm:"size:6" json:"-"`
	Status        string     `gorm:"size:20;not null;index" json:"status"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LoadedAt      *time.Time `json:"loaded_at"`
	OpenedAt      *time.Time `json:"opened_at"`
	ExpiresAt     time.Time  `gorm:"not null" json:"expires_at"`
}

func (Reservation) TableName() string {
	return "reservations"
}

func (r *Reservation) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// EffectiveStatus reports the stored status, or "expired" when the
// reservation is past its expiry and not yet terminal.
func (r *Reservation) EffectiveStatus(now time.Time) string {
	if r.Status != "opened" && r.IsExpired(now) {
		return "expired"
	}
	return r.Status
}

// ReservationResponse DTO. Never carries the pickup code: that is
// delivered out-of-band only.
type ReservationResponse struct {
	ID            string     `json:"id"`
	ReceiverPhone string     `json:"receiver_phone,omitempty"`
	LockerID      string     `json:"locker_id"`
	BookingCode   string     `json:"booking_code"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	LoadedAt      *time.Time `json:"loaded_at,omitempty"`
	OpenedAt      *time.Time `json:"opened_at,omitempty"`
	ExpiresAt     time.Time  `json:"expires_at"`
}

func (r *Reservation) ToResponse(now time.Time) *ReservationResponse {
	return &ReservationResponse{
		ID:            r.ID,
		ReceiverPhone: r.ReceiverPhone,
		LockerID:      r.LockerID,
		BookingCode:   r.BookingCode,
		Status:        r.EffectiveStatus(now),
		CreatedAt:     r.CreatedAt,
		LoadedAt:      r.LoadedAt,
		OpenedAt:      r.OpenedAt,
		ExpiresAt:     r.ExpiresAt,
	}
}

// ReservationSummary DTO for the receiver's "do I have a parcel" check.
// Exposes neither bookingCode nor pickupCode.
type ReservationSummary struct {
	ID        string     `json:"id"`
	LockerID  string     `json:"locker_id"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	LoadedAt  *time.Time `json:"loaded_at,omitempty"`
	ExpiresAt time.Time  `json:"expires_at"`
}

func (r *Reservation) ToSummary(now time.Time) *ReservationSummary {
	return &ReservationSummary{
		ID:        r.ID,
		LockerID:  r.LockerID,
		Status:    r.EffectiveStatus(now),
		CreatedAt: r.CreatedAt,
		LoadedAt:  r.LoadedAt,
		ExpiresAt: r.ExpiresAt,
	}
}

// LockerState represents locker_states table. A single shared mutable row
// per physical locker; writes are unconditional overwrites (last writer
// wins) and always stamp LastUpdate. The embedded unit polls this row.
type LockerState struct {
	LockerID   string    `gorm:"primaryKey;size:40" json:"locker_id"`
	Status     string    `gorm:"size:20;not null" json:"status"`
	LastUpdate time.Time `gorm:"not null" json:"last_update"`
}

func (LockerState) TableName() string {
	return "locker_states"
}

// AuditLog represents audit_logs table. Append-only: no update or delete
// operation exists anywhere in the codebase.
type AuditLog struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Phone         string    `gorm:"size:15;not null" json:"phone"`
	LockerID      string    `gorm:"size:40;not null" json:"locker_id"`
	Action        string    `gorm:"size:30;not null" json:"action"`
	Result        string    `gorm:"size:20;not null" json:"result"`
	Timestamp     time.Time `gorm:"not null;index" json:"timestamp"`
	ReservationID *string   `gorm:"size:36" json:"reservation_id,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&OTP{},
		&RefreshToken{},
		&Reservation{},
		&LockerState{},
		&AuditLog{},
	)
}
