package ticket

import (
	"errors"

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

func (ctrl *Controller) statusFor(err error) int {
	if errors.Is(err, ErrTicketNotFound) {
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

// CreateTicket godoc
// @Summary Create a ticket
// @Tags tickets
// @Accept json
// @Produce json
// @Router /api/tickets [post]
func (ctrl *Controller) CreateTicket(c *fiber.Ctx) error {
	var t Ticket
	if err := c.BodyParser(&t); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := ctrl.Service.CreateTicket(c.UserContext(), &t); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

// GetTicket godoc
// @Summary Get a ticket by ID
// @Tags tickets
// @Produce json
// @Router /api/tickets/{id} [get]
func (ctrl *Controller) GetTicket(c *fiber.Ctx) error {
	t, err := ctrl.Service.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(ctrl.statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	if t == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Ticket not found"})
	}
	return c.JSON(t)
}

// ListTickets godoc
// @Summary List tickets for a workspace
// @Tags tickets
// @Produce json
// @Router /api/tickets [get]
func (ctrl *Controller) ListTickets(c *fiber.Ctx) error {
	workspaceID := c.Query("workspace_id")
	if workspaceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "workspace_id is required"})
	}

	tickets, err := ctrl.Service.ListTickets(c.UserContext(), workspaceID, c.Query("status"))
	if err != nil {
		return c.Status(ctrl.statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(tickets)
}

// UpdateStatus godoc
// @Summary Change ticket status
// @Tags tickets
// @Accept json
// @Router /api/tickets/{id}/status [patch]
func (ctrl *Controller) UpdateStatus(c *fiber.Ctx) error {
	var body struct {
		Status TicketStatus `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := ctrl.Service.UpdateStatus(c.UserContext(), c.Params("id"), body.Status); err != nil {
		return c.Status(ctrl.statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpdatePriority godoc
// @Summary Change ticket priority
// @Tags tickets
// @Accept json
// @Router /api/tickets/{id}/priority [patch]
func (ctrl *Controller) UpdatePriority(c *fiber.Ctx) error {
	var body struct {
		Priority TicketPriority `json:"priority"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := ctrl.Service.UpdatePriority(c.UserContext(), c.Params("id"), body.Priority); err != nil {
		return c.Status(ctrl.statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AssignTicket godoc
// @Summary Assign ticket to an agent
// @Tags tickets
// @Accept json
// @Router /api/tickets/{id}/assign [patch]
func (ctrl *Controller) AssignTicket(c *fiber.Ctx) error {
	var body struct {
		Agent string `json:"agent"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := ctrl.Service.AssignTicket(c.UserContext(), c.Params("id"), body.Agent); err != nil {
		return c.Status(ctrl.statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddMessage godoc
// @Summary Append a message or internal note to a ticket
// @Tags tickets
// @Accept json
// @Produce json
// @Router /api/tickets/{id}/messages [post]
func (ctrl *Controller) AddMessage(c *fiber.Ctx) error {
	var msg Message
	if err := c.BodyParser(&msg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := ctrl.Service.AddMessage(c.UserContext(), c.Params("id"), &msg); err != nil {
		return c.Status(ctrl.statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// ListMessages godoc
// @Summary List ticket messages
// @Tags tickets
// @Produce json
// @Router /api/tickets/{id}/messages [get]
func (ctrl *Controller) ListMessages(c *fiber.Ctx) error {
	messages, err := ctrl.Service.ListMessages(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(ctrl.statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(messages)
}
