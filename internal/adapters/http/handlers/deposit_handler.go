package handlers

import (
	"errors"

	"smartlocker/internal/core/services"
	"smartlocker/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DepositHandler handles the delivery-agent deposit endpoint. It is the
// only unauthenticated surface besides login: possession of a valid
// booking code is the entire authorization.
type DepositHandler struct {
	reservationService *services.ReservationService
}

// NewDepositHandler creates a new deposit handler
func NewDepositHandler(reservationService *services.ReservationService) *DepositHandler {
	return &DepositHandler{
		reservationService: reservationService,
	}
}

// DepositRequest represents booking code redemption body
type DepositRequest struct {
	BookingCode string `json:"booking_code"`
}

// Deposit redeems a booking code and opens the locker for loading
// @Summary Redeem booking code
// @Description Redeem a booking code, open the locker for the parcel, and notify the receiver with a pickup code
// @Tags Deposit
// @Accept json
// @Produce json
// @Param body body DepositRequest true "Booking code"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 410 {object} response.Response
// @Router /deposit [post]
func (h *DepositHandler) Deposit(c *fiber.Ctx) error {
	var req DepositRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.BookingCode == "" {
		return response.BadRequest(c, "Booking code is required")
	}

	result, err := h.reservationService.RedeemDeposit(c.Context(), req.BookingCode)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReservationNotFound):
			return response.NotFound(c, "Booking code not found")
		case errors.Is(err, services.ErrReservationExpired):
			return response.Gone(c, "Reservation has expired")
		case errors.Is(err, services.ErrInvalidTransition):
			return response.Conflict(c, "Booking code already used")
		default:
			return response.InternalServerError(c, "Failed to redeem booking code")
		}
	}

	return response.Success(c, "Locker opened, place the parcel inside", result)
}
