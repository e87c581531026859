package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jabana-gov/case-service/internal/api/dto"
	"github.com/jabana-gov/case-service/internal/auth"
	"github.com/jabana-gov/case-service/internal/service"
	apperrors "github.com/jabana-gov/case-service/pkg/util/errorutil"
)

// NotificationsHandler serves the citizen notification feed.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs the handler.
func NewNotificationsHandler(notifications *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// List GET /notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Citizen == nil {
		return apperrors.NewUnauthorized("citizen account required")
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	items, err := h.notifications.ListForUser(c.Context(), principal.Citizen.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewNotifications(items)})
}

// MarkRead POST /notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Citizen == nil {
		return apperrors.NewUnauthorized("citizen account required")
	}
	if err := h.notifications.MarkRead(c.Context(), principal.Citizen.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
