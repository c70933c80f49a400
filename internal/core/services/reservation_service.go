package services

import (
	"context"
	"errors"
	"log"
	"time"

	"smartlocker/internal/adapters/persistence/models"
	"smartlocker/internal/adapters/persistence/repositories"
	"smartlocker/internal/config"
	"smartlocker/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reservation errors
var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrReservationExpired  = errors.New("reservation has expired")
	ErrInvalidTransition   = errors.New("reservation status does not allow this action")
	ErrPickupCodeMismatch  = errors.New("pickup code is not correct")
	ErrNotReceiver         = errors.New("reservation belongs to another receiver")
	ErrLockerRequired      = errors.New("locker id is required")
	ErrBookingCodeDrained  = errors.New("could not allocate a unique booking code")
)

// bookingCodeAttempts bounds the regenerate-on-collision loop at creation
const bookingCodeAttempts = 5

// ReservationService owns the reservation lifecycle:
// booked -> loaded -> opened, with lazy expiry at every access. It is the
// only writer of reservation status and pickup codes, and it pairs every
// locker register write with an audit entry.
type ReservationService struct {
	reservationRepo repositories.ReservationRepository
	lockerRepo      repositories.LockerRepository
	auditRepo       repositories.AuditRepository
	notifyService   *NotifyService
	cfg             *config.Config
}

// NewReservationService creates a new reservation service
func NewReservationService(
	reservationRepo repositories.ReservationRepository,
	lockerRepo repositories.LockerRepository,
	auditRepo repositories.AuditRepository,
	notifyService *NotifyService,
	cfg *config.Config,
) *ReservationService {
	return &ReservationService{
		reservationRepo: reservationRepo,
		lockerRepo:      lockerRepo,
		auditRepo:       auditRepo,
		notifyService:   notifyService,
		cfg:             cfg,
	}
}

// CreateResult represents the outcome of a reservation creation
type CreateResult struct {
	ReservationID string    `json:"reservation_id"`
	LockerID      string    `json:"locker_id"`
	BookingCode   string    `json:"booking_code"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// DepositResult represents the outcome of a booking code redemption
type DepositResult struct {
	LockerID string `json:"locker_id"`
}

// ActiveParcel represents the receiver's active-parcel check
type ActiveParcel struct {
	HasReservation bool                       `json:"has_reservation"`
	Reservation    *models.ReservationSummary `json:"reservation,omitempty"`
}

// Create books a locker for a receiver. The booking code is unique among
// unexpired booked reservations: on collision a fresh code is drawn.
// There is deliberately no check against existing reservations for the
// same locker; any number of booked reservations may coexist.
func (s *ReservationService) Create(ctx context.Context, receiverPhone, lockerID string) (*CreateResult, error) {
	if lockerID == "" {
		return nil, ErrLockerRequired
	}

	now := time.Now()

	var bookingCode string
	for i := 0; i < bookingCodeAttempts; i++ {
		code, err := GenerateCode()
		if err != nil {
			return nil, err
		}
		taken, err := s.reservationRepo.ActiveBookingCodeExists(ctx, code, now)
		if err != nil {
			return nil, err
		}
		if !taken {
			bookingCode = code
			break
		}
	}
	if bookingCode == "" {
		return nil, ErrBookingCodeDrained
	}

	reservation := &models.Reservation{
		ID:            uuid.New().String(),
		ReceiverPhone: receiverPhone,
		LockerID:      lockerID,
		BookingCode:   bookingCode,
		Status:        domain.ReservationBooked,
		ExpiresAt:     now.Add(s.cfg.Locker.ReservationTTL),
	}

	if err := s.reservationRepo.Create(ctx, reservation); err != nil {
		return nil, err
	}

	log.Printf("📦 Reservation %s booked on %s for %s", reservation.ID, lockerID, receiverPhone)

	return &CreateResult{
		ReservationID: reservation.ID,
		LockerID:      reservation.LockerID,
		BookingCode:   reservation.BookingCode,
		ExpiresAt:     reservation.ExpiresAt,
	}, nil
}

// RedeemDeposit redeems a booking code: booked -> loaded. Possession of
// the code is the entire authorization; the delivery agent has no
// account. On success the locker is commanded open, a pickup code is
// generated and sent to the receiver, and the deposit is audited. A
// failed redemption leaves every record untouched: the reservation row
// transitions first, and the locker register is only written after that
// transition has been won.
func (s *ReservationService) RedeemDeposit(ctx context.Context, bookingCode string) (*DepositResult, error) {
	reservation, err := s.reservationRepo.FirstByBookingCode(ctx, bookingCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	now := time.Now()
	if reservation.IsExpired(now) {
		return nil, ErrReservationExpired
	}
	if reservation.Status != domain.ReservationBooked {
		return nil, ErrInvalidTransition
	}

	pickupCode, err := GenerateCode()
	if err != nil {
		return nil, err
	}

	ok, err := s.reservationRepo.Transition(ctx, reservation.ID, domain.ReservationBooked, map[string]interface{}{
		"status":      domain.ReservationLoaded,
		"loaded_at":   now,
		"pickup_code": pickupCode,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		// A concurrent redemption won; this one changes nothing
		return nil, ErrInvalidTransition
	}

	if err := s.openLocker(ctx, reservation.ReceiverPhone, reservation.LockerID, domain.ActionOpenByShipper, &reservation.ID); err != nil {
		return nil, err
	}

	s.notifyService.SendPickupCode(reservation.ReceiverPhone, pickupCode, reservation.LockerID)

	log.Printf("📬 Reservation %s loaded on %s", reservation.ID, reservation.LockerID)

	return &DepositResult{LockerID: reservation.LockerID}, nil
}

// RedeemPickup redeems a pickup code: loaded -> opened. Only the bound
// receiver may redeem, whatever code they present.
func (s *ReservationService) RedeemPickup(ctx context.Context, reservationID, pickupCode, requesterPhone string) error {
	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReservationNotFound
		}
		return err
	}

	if reservation.ReceiverPhone != requesterPhone {
		return ErrNotReceiver
	}
	if reservation.Status != domain.ReservationLoaded {
		return ErrInvalidTransition
	}

	now := time.Now()
	if reservation.IsExpired(now) {
		return ErrReservationExpired
	}
	if reservation.PickupCode == nil || *reservation.PickupCode != pickupCode {
		return ErrPickupCodeMismatch
	}

	ok, err := s.reservationRepo.Transition(ctx, reservation.ID, domain.ReservationLoaded, map[string]interface{}{
		"status":    domain.ReservationOpened,
		"opened_at": now,
	})
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidTransition
	}

	if err := s.openLocker(ctx, requesterPhone, reservation.LockerID, domain.ActionOpenByReceiver, &reservation.ID); err != nil {
		return err
	}

	log.Printf("📭 Reservation %s opened on %s", reservation.ID, reservation.LockerID)

	return nil
}

// CheckActive reports the receiver's most recent unexpired loaded
// reservation. The pickup code is never exposed here; it was delivered
// out-of-band.
func (s *ReservationService) CheckActive(ctx context.Context, receiverPhone string) (*ActiveParcel, error) {
	now := time.Now()
	reservation, err := s.reservationRepo.LatestLoadedByReceiver(ctx, receiverPhone, now)
	if err != nil {
		return nil, err
	}
	if reservation == nil {
		return &ActiveParcel{HasReservation: false}, nil
	}
	return &ActiveParcel{
		HasReservation: true,
		Reservation:    reservation.ToSummary(now),
	}, nil
}

// ListByReceiver lists a receiver's reservations, newest first
func (s *ReservationService) ListByReceiver(ctx context.Context, receiverPhone string) ([]*models.ReservationResponse, error) {
	reservations, err := s.reservationRepo.ListByReceiver(ctx, receiverPhone)
	if err != nil {
		return nil, err
	}
	return toResponses(reservations), nil
}

// ListAll lists reservations newest first with pagination (admin)
func (s *ReservationService) ListAll(ctx context.Context, limit, offset int) ([]*models.ReservationResponse, int64, error) {
	reservations, total, err := s.reservationRepo.ListAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return toResponses(reservations), total, nil
}

// openLocker writes the register and the paired audit entry
func (s *ReservationService) openLocker(ctx context.Context, phoneNumber, lockerID, action string, reservationID *string) error {
	now := time.Now()
	if err := s.lockerRepo.Set(ctx, lockerID, domain.LockerOpen, now); err != nil {
		return err
	}
	return s.auditRepo.Record(ctx, &models.AuditLog{
		ID:            uuid.New().String(),
		Phone:         phoneNumber,
		LockerID:      lockerID,
		Action:        action,
		Result:        "success",
		Timestamp:     now,
		ReservationID: reservationID,
	})
}

func toResponses(reservations []*models.Reservation) []*models.ReservationResponse {
	now := time.Now()
	responses := make([]*models.ReservationResponse, 0, len(reservations))
	for _, r := range reservations {
		responses = append(responses, r.ToResponse(now))
	}
	return responses
}
