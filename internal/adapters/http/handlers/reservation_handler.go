package handlers

import (
	"errors"
	"strings"

	"smartlocker/internal/adapters/http/middleware"
	"smartlocker/internal/core/services"
	"smartlocker/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReservationHandler handles resident-facing reservation endpoints
type ReservationHandler struct {
	reservationService *services.ReservationService
}

// NewReservationHandler creates a new reservation handler
func NewReservationHandler(reservationService *services.ReservationService) *ReservationHandler {
	return &ReservationHandler{
		reservationService: reservationService,
	}
}

// CreateReservationRequest represents reservation creation body
type CreateReservationRequest struct {
	LockerID string `json:"locker_id"`
}

// PickupRequest represents pickup code redemption body
type PickupRequest struct {
	PickupCode string `json:"pickup_code"`
}

// Create books a locker for the caller
// @Summary Create reservation
// @Description Book a locker for an incoming parcel and get a booking code for the delivery agent
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateReservationRequest true "Locker to book"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /reservations [post]
func (h *ReservationHandler) Create(c *fiber.Ctx) error {
	phoneNumber, ok := middleware.CallerPhone(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req CreateReservationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	lockerID := strings.TrimSpace(req.LockerID)
	if lockerID == "" {
		return response.BadRequest(c, "Locker id is required")
	}

	result, err := h.reservationService.Create(c.Context(), phoneNumber, lockerID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLockerRequired):
			return response.BadRequest(c, "Locker id is required")
		case errors.Is(err, services.ErrBookingCodeDrained):
			return response.InternalServerError(c, "Could not allocate a booking code, please retry")
		default:
			return response.InternalServerError(c, "Failed to create reservation")
		}
	}

	return response.Created(c, "Reservation created successfully", result)
}

// List returns the caller's reservations
// @Summary List my reservations
// @Description List the caller's reservations, newest first
// @Tags Reservations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /reservations [get]
func (h *ReservationHandler) List(c *fiber.Ctx) error {
	phoneNumber, ok := middleware.CallerPhone(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	reservations, err := h.reservationService.ListByReceiver(c.Context(), phoneNumber)
	if err != nil {
		return response.InternalServerError(c, "Failed to list reservations")
	}

	return response.Success(c, "Reservations retrieved successfully", fiber.Map{
		"reservations": reservations,
	})
}

// CheckActive reports whether the caller has a parcel waiting
// @Summary Check active parcel
// @Description Report the caller's most recent loaded reservation, if any. The pickup code is never included.
// @Tags Reservations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /reservations/active [get]
func (h *ReservationHandler) CheckActive(c *fiber.Ctx) error {
	phoneNumber, ok := middleware.CallerPhone(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	result, err := h.reservationService.CheckActive(c.Context(), phoneNumber)
	if err != nil {
		return response.InternalServerError(c, "Failed to check active reservation")
	}

	return response.Success(c, "Active reservation checked", result)
}

// Pickup redeems a pickup code and opens the locker
// @Summary Redeem pickup code
// @Description Redeem the pickup code for a loaded reservation and open the locker
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation id"
// @Param body body PickupRequest true "Pickup code"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 410 {object} response.Response
// @Router /reservations/{id}/pickup [post]
func (h *ReservationHandler) Pickup(c *fiber.Ctx) error {
	phoneNumber, ok := middleware.CallerPhone(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	reservationID := c.Params("id")
	if reservationID == "" {
		return response.BadRequest(c, "Reservation id is required")
	}

	var req PickupRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.PickupCode == "" {
		return response.BadRequest(c, "Pickup code is required")
	}

	err := h.reservationService.RedeemPickup(c.Context(), reservationID, req.PickupCode, phoneNumber)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReservationNotFound):
			return response.NotFound(c, "Reservation not found")
		case errors.Is(err, services.ErrNotReceiver):
			return response.Forbidden(c, "This reservation belongs to another receiver")
		case errors.Is(err, services.ErrReservationExpired):
			return response.Gone(c, "Reservation has expired")
		case errors.Is(err, services.ErrInvalidTransition):
			return response.Conflict(c, "Reservation is not awaiting pickup")
		case errors.Is(err, services.ErrPickupCodeMismatch):
			return response.BadRequest(c, "Pickup code is not correct")
		default:
			return response.InternalServerError(c, "Failed to redeem pickup code")
		}
	}

	return response.Success(c, "Locker opened, enjoy your parcel", nil)
}
