package ticket

import (
	"go-helpdesk/internal/common/api"
	"go-helpdesk/internal/config"
	"go-helpdesk/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type Api struct {
	controller *Controller
	config     *config.Config
}

func NewApi(controller *Controller, config *config.Config) api.Route {
	return &Api{
		controller: controller,
		config:     config,
	}
}

func (h *Api) Setup(app *fiber.App) {
	group := app.Group("/api/tickets", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.ListTickets)
	group.Get("/:id", h.controller.GetTicket)
	group.Post("/", h.controller.CreateTicket)
	group.Patch("/:id/status", h.controller.UpdateStatus)
	group.Patch("/:id/priority", h.controller.UpdatePriority)
	group.Patch("/:id/assign", h.controller.AssignTicket)
	group.Get("/:id/messages", h.controller.ListMessages)
	group.Post("/:id/messages", h.controller.AddMessage)
}
