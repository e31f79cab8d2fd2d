package notification

import (
	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	Service Service
}

func NewController(service Service) *Controller {
	return &Controller{
		Service: service,
	}
}

// List godoc
// @Summary List notifications for a recipient
// @Tags notifications
// @Produce json
// @Router /api/notifications [get]
func (ctrl *Controller) List(c *fiber.Ctx) error {
	recipient := c.Query("recipient")
	if recipient == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "recipient is required"})
	}

	notifications, err := ctrl.Service.ListByRecipient(c.UserContext(), recipient, c.QueryBool("unread_only"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(notifications)
}

// MarkAsRead godoc
// @Summary Mark a notification as read
// @Tags notifications
// @Router /api/notifications/{id}/read [patch]
func (ctrl *Controller) MarkAsRead(c *fiber.Ctx) error {
	if err := ctrl.Service.MarkAsRead(c.UserContext(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "success"})
}
