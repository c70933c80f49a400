package services

import (
	"context"
	"errors"
	"log"
	"time"

	"smartlocker/internal/adapters/persistence/models"
	"smartlocker/internal/adapters/persistence/repositories"
	"smartlocker/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Locker errors
var (
	ErrInvalidAction = errors.New("invalid locker action")
)

// LockerService exposes the locker state register: status reads for any
// authenticated user and direct open/close commands for admins. Admin
// commands are independent of any reservation and can race with
// reservation-driven writes to the same register; the last writer wins.
type LockerService struct {
	lockerRepo repositories.LockerRepository
	auditRepo  repositories.AuditRepository
}

// NewLockerService creates a new locker service
func NewLockerService(lockerRepo repositories.LockerRepository, auditRepo repositories.AuditRepository) *LockerService {
	return &LockerService{
		lockerRepo: lockerRepo,
		auditRepo:  auditRepo,
	}
}

// Status reads the current register of a locker. A locker that was never
// written reports status "unknown".
func (s *LockerService) Status(ctx context.Context, lockerID string) (*models.LockerState, error) {
	state, err := s.lockerRepo.Get(ctx, lockerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.LockerState{LockerID: lockerID, Status: domain.LockerUnknown}, nil
		}
		return nil, err
	}
	return state, nil
}

// Command applies an admin open/close command to the register and
// records the paired audit entry
func (s *LockerService) Command(ctx context.Context, adminPhone, lockerID, action string) error {
	if action != domain.ActionOpen && action != domain.ActionClose {
		return ErrInvalidAction
	}
	if lockerID == "" {
		return ErrLockerRequired
	}

	status := domain.LockerOpen
	if action == domain.ActionClose {
		status = domain.LockerClosed
	}

	now := time.Now()
	if err := s.lockerRepo.Set(ctx, lockerID, status, now); err != nil {
		return err
	}

	if err := s.auditRepo.Record(ctx, &models.AuditLog{
		ID:        uuid.New().String(),
		Phone:     adminPhone,
		LockerID:  lockerID,
		Action:    action,
		Result:    "success",
		Timestamp: now,
	}); err != nil {
		return err
	}

	log.Printf("🔧 Admin %s sent '%s' to %s", adminPhone, action, lockerID)
	return nil
}

// RecentAuditLog returns the most recent audit entries (admin)
func (s *LockerService) RecentAuditLog(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	return s.auditRepo.ListRecent(ctx, limit)
}
