package handlers

import (
	"smartlocker/internal/core/services"
	"smartlocker/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LockerHandler handles locker status reads
type LockerHandler struct {
	lockerService *services.LockerService
}

// NewLockerHandler creates a new locker handler
func NewLockerHandler(lockerService *services.LockerService) *LockerHandler {
	return &LockerHandler{
		lockerService: lockerService,
	}
}

// Status returns a locker's current register
// @Summary Get locker status
// @Description Read the last reported state of a locker. A locker never written reports "unknown".
// @Tags Lockers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Locker id"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /lockers/{id}/status [get]
func (h *LockerHandler) Status(c *fiber.Ctx) error {
	lockerID := c.Params("id")
	if lockerID == "" {
		return response.BadRequest(c, "Locker id is required")
	}

	state, err := h.lockerService.Status(c.Context(), lockerID)
	if err != nil {
		return response.InternalServerError(c, "Failed to read locker status")
	}

	return response.Success(c, "Locker status retrieved", state)
}
