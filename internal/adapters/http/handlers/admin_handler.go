package handlers

import (
	"errors"
	"strconv"

	"smartlocker/internal/adapters/http/middleware"
	"smartlocker/internal/config"
	"smartlocker/internal/core/services"
	"smartlocker/internal/pkg/pagination"
	"smartlocker/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles admin-only endpoints
type AdminHandler struct {
	lockerService      *services.LockerService
	reservationService *services.ReservationService
	cfg                *config.Config
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	lockerService *services.LockerService,
	reservationService *services.ReservationService,
	cfg *config.Config,
) *AdminHandler {
	return &AdminHandler{
		lockerService:      lockerService,
		reservationService: reservationService,
		cfg:                cfg,
	}
}

// LockerCommandRequest represents an admin locker command body
type LockerCommandRequest struct {
	Action string `json:"action"`
}

// LockerCommand sends an open/close command to a locker
// @Summary Command locker
// @Description Directly open or close a locker, independent of any reservation
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Locker id"
// @Param body body LockerCommandRequest true "Action: open or close"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/lockers/{id}/command [post]
func (h *AdminHandler) LockerCommand(c *fiber.Ctx) error {
	phoneNumber, ok := middleware.CallerPhone(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	lockerID := c.Params("id")

	var req LockerCommandRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	err := h.lockerService.Command(c.Context(), phoneNumber, lockerID, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAction):
			return response.BadRequest(c, "Action must be 'open' or 'close'")
		case errors.Is(err, services.ErrLockerRequired):
			return response.BadRequest(c, "Locker id is required")
		default:
			return response.InternalServerError(c, "Failed to command locker")
		}
	}

	return response.Success(c, "Command sent to locker", fiber.Map{
		"locker_id": lockerID,
		"action":    req.Action,
	})
}

// ListReservations lists every reservation in the system
// @Summary List all reservations
// @Description List all reservations across all receivers, newest first
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/reservations [get]
func (h *AdminHandler) ListReservations(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	reservations, total, err := h.reservationService.ListAll(c.Context(), params.Limit, params.Offset)
	if err != nil {
		return response.InternalServerError(c, "Failed to list reservations")
	}

	return response.Success(c, "Reservations retrieved successfully",
		pagination.NewResponse(reservations, params, total))
}

// AuditLog returns recent locker activity
// @Summary Get audit log
// @Description List the most recent locker audit entries
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max entries to return"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/audit [get]
func (h *AdminHandler) AuditLog(c *fiber.Ctx) error {
	limit := h.cfg.Locker.AuditLogLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= h.cfg.Locker.AuditLogLimit {
			limit = n
		}
	}

	entries, err := h.lockerService.RecentAuditLog(c.Context(), limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to read audit log")
	}

	return response.Success(c, "Audit log retrieved successfully", fiber.Map{
		"entries": entries,
	})
}
