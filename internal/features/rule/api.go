package rule

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
	group := app.Group("/api/automation", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/catalog", h.controller.GetCatalogs)
	group.Get("/rules", h.controller.ListRules)
	group.Get("/rules/:id", h.controller.GetRule)
	group.Post("/rules", h.controller.CreateRule)
	group.Put("/rules/:id", h.controller.UpdateRule)
	group.Patch("/rules/:id/toggle", h.controller.ToggleRule)
	group.Post("/rules/:id/duplicate", h.controller.DuplicateRule)
	group.Delete("/rules/:id", h.controller.DeleteRule)
}
