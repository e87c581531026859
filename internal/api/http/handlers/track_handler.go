package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jabana-gov/case-service/internal/service"
)

// TrackHandler serves the unauthenticated reference lookup.
type TrackHandler struct {
	tracking *service.TrackingService
}

// NewTrackHandler constructs the handler.
func NewTrackHandler(tracking *service.TrackingService) *TrackHandler {
	return &TrackHandler{tracking: tracking}
}

// Track GET /track/:reference.
func (h *TrackHandler) Track(c *fiber.Ctx) error {
	result, err := h.tracking.Track(c.Context(), c.Params("reference"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}
